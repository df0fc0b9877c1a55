// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 The Noisy Sockets Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package conduit unifies heterogeneous listening sockets behind one
// binding and accepting contract, tags every accepted connection with
// normalized address and protocol metadata, and hands raw connections
// to a pluggable HTTP serving capability.
package conduit

import (
	"fmt"
	stdnet "net"
	"net/netip"
)

// TransProto identifies the transport protocol carrying a connection.
type TransProto int

const (
	TransProtoUnknown TransProto = iota
	TransProtoTCP
	TransProtoUDP
	TransProtoUnix
)

func (p TransProto) String() string {
	switch p {
	case TransProtoTCP:
		return "TCP"
	case TransProtoUDP:
		return "UDP"
	case TransProtoUnix:
		return "UNIX"
	default:
		return "UNKNOWN"
	}
}

// AppProto identifies the application protocol spoken over an
// established connection.
type AppProto int

const (
	AppProtoUnknown AppProto = iota
	AppProtoHTTP
	AppProtoHTTPS
)

func (p AppProto) String() string {
	switch p {
	case AppProtoHTTP:
		return "HTTP"
	case AppProtoHTTPS:
		return "HTTPS"
	default:
		return "UNKNOWN"
	}
}

type addrKind int

const (
	addrKindUnknown addrKind = iota
	addrKindIPv4
	addrKindIPv6
	addrKindUnix
)

// SocketAddr is a network socket address of any supported family.
// The zero value is the Unknown address. Exactly one variant is active
// at a time; new families are added by extending the variant set.
type SocketAddr struct {
	kind     addrKind
	addrPort netip.AddrPort
	// unix is shared by every copy of an address produced from the same
	// accept event.
	unix *stdnet.UnixAddr
}

// AddrFromAddrPort converts a standard library address and port into a
// SocketAddr. The conversion is total.
func AddrFromAddrPort(addrPort netip.AddrPort) SocketAddr {
	kind := addrKindIPv6
	if addrPort.Addr().Is4() {
		kind = addrKindIPv4
	}

	return SocketAddr{kind: kind, addrPort: addrPort}
}

// AddrFromUnixAddr converts a unix domain socket address into a
// SocketAddr. A nil address converts to the Unknown address.
func AddrFromUnixAddr(addr *stdnet.UnixAddr) SocketAddr {
	if addr == nil {
		return SocketAddr{}
	}

	return SocketAddr{kind: addrKindUnix, unix: addr}
}

// AddrFromNetAddr converts a native net.Addr into a SocketAddr. The
// conversion is total: unrecognized address types convert to the
// Unknown address.
func AddrFromNetAddr(addr stdnet.Addr) SocketAddr {
	switch addr := addr.(type) {
	case *stdnet.TCPAddr:
		return AddrFromAddrPort(addr.AddrPort())
	case *stdnet.UDPAddr:
		return AddrFromAddrPort(addr.AddrPort())
	case *stdnet.UnixAddr:
		return AddrFromUnixAddr(addr)
	default:
		return SocketAddr{}
	}
}

// IsIPv4 reports whether the address is an IPv4 socket address.
func (a SocketAddr) IsIPv4() bool {
	return a.kind == addrKindIPv4
}

// IsIPv6 reports whether the address is an IPv6 socket address.
func (a SocketAddr) IsIPv6() bool {
	return a.kind == addrKindIPv6
}

// IsUnix reports whether the address is a unix domain socket address.
func (a SocketAddr) IsUnix() bool {
	return a.kind == addrKindUnix
}

// AsIPv4 returns the IPv4 address and port, if that variant is active.
func (a SocketAddr) AsIPv4() (netip.AddrPort, bool) {
	if a.kind != addrKindIPv4 {
		return netip.AddrPort{}, false
	}

	return a.addrPort, true
}

// AsIPv6 returns the IPv6 address and port, if that variant is active.
func (a SocketAddr) AsIPv6() (netip.AddrPort, bool) {
	if a.kind != addrKindIPv6 {
		return netip.AddrPort{}, false
	}

	return a.addrPort, true
}

// AsUnix returns the unix domain socket address, if that variant is active.
func (a SocketAddr) AsUnix() (*stdnet.UnixAddr, bool) {
	if a.kind != addrKindUnix {
		return nil, false
	}

	return a.unix, true
}

// AddrPort converts the address to its standard library form. Unknown
// and unix addresses have no such form.
func (a SocketAddr) AddrPort() (netip.AddrPort, bool) {
	switch a.kind {
	case addrKindIPv4, addrKindIPv6:
		return a.addrPort, true
	default:
		return netip.AddrPort{}, false
	}
}

func (a SocketAddr) String() string {
	switch a.kind {
	case addrKindIPv4, addrKindIPv6:
		return fmt.Sprintf("socket://%s", a.addrPort)
	case addrKindUnix:
		if path := unixPathname(a.unix); path != "" {
			return fmt.Sprintf("unix://%s", path)
		}
		return "unix://unknown"
	default:
		return "unknown"
	}
}

// unixPathname returns the filesystem path of a unix address, or the
// empty string for anonymous and abstract sockets.
func unixPathname(addr *stdnet.UnixAddr) string {
	if addr == nil || addr.Name == "" || addr.Name[0] == '@' {
		return ""
	}

	return addr.Name
}

// LocalAddr pairs a SocketAddr with the transport and application
// protocols spoken on it. It is constructed once at bind time and
// copied by value into every accepted connection. The zero value has
// unknown address and tags.
type LocalAddr struct {
	SocketAddr
	TransProto TransProto
	AppProto   AppProto
}

// NewLocalAddr creates a new LocalAddr.
func NewLocalAddr(addr SocketAddr, transProto TransProto, appProto AppProto) LocalAddr {
	return LocalAddr{
		SocketAddr: addr,
		TransProto: transProto,
		AppProto:   appProto,
	}
}

func (a LocalAddr) String() string {
	switch a.kind {
	case addrKindIPv4, addrKindIPv6:
		return fmt.Sprintf("(%s) %s://%s", a.TransProto, a.AppProto, a.addrPort)
	case addrKindUnix:
		if path := unixPathname(a.unix); path != "" {
			return fmt.Sprintf("(%s) unix://%s", a.TransProto, path)
		}
		return fmt.Sprintf("(%s) unix://unknown", a.TransProto)
	default:
		// Tags are meaningless without a concrete address.
		return "unknown"
	}
}
