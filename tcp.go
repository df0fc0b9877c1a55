// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 The Noisy Sockets Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package conduit

import (
	"context"
	"fmt"
	stdnet "net"
	"net/http"

	"github.com/noisysockets/conduit/network"
)

// TCPListener listens for plain TCP connections.
type TCPListener struct {
	addr string
	net  network.Network
}

// NewTCPListener creates a listener for the given address. The address
// may name a hostname, a literal IP, or a wildcard port.
func NewTCPListener(addr string, opts ...ListenerOption) *TCPListener {
	o := applyListenerOptions(opts)

	return &TCPListener{
		addr: addr,
		net:  o.net,
	}
}

func (l *TCPListener) Bind(ctx context.Context) (Acceptor, error) {
	inner, err := l.net.ListenContext(ctx, "tcp", l.addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind tcp listener: %w", err)
	}

	// The socket reports the address it was actually bound to, which
	// matters when the requested address used a wildcard port.
	localAddr := NewLocalAddr(AddrFromNetAddr(inner.Addr()), TransProtoTCP, AppProtoHTTP)

	return &TCPAcceptor{
		inner:     inner,
		localAddr: localAddr,
	}, nil
}

// TCPAcceptor accepts plain TCP connections.
type TCPAcceptor struct {
	inner     stdnet.Listener
	localAddr LocalAddr
}

func (a *TCPAcceptor) LocalAddrs() []LocalAddr {
	return []LocalAddr{a.localAddr}
}

func (a *TCPAcceptor) Accept() (*Accepted, error) {
	conn, err := a.inner.Accept()
	if err != nil {
		return nil, err
	}

	return &Accepted{
		Conn:       &tcpConn{Conn: conn},
		LocalAddr:  a.localAddr,
		RemoteAddr: AddrFromNetAddr(conn.RemoteAddr()),
	}, nil
}

func (a *TCPAcceptor) Close() error {
	return a.inner.Close()
}

type tcpConn struct {
	stdnet.Conn
}

func (c *tcpConn) Version(_ context.Context) (Version, error) {
	// Plain streams do not negotiate.
	return VersionHTTP11, nil
}

func (c *tcpConn) Serve(ctx context.Context, handler http.Handler, builders *HTTPBuilders) error {
	return builders.serveHTTP1(ctx, c, handler)
}
