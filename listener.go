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
	"io"
	stdnet "net"
	"net/http"

	"github.com/noisysockets/conduit/network"
)

// Version is a negotiated application protocol version.
type Version string

const (
	VersionHTTP11 Version = "HTTP/1.1"
	VersionHTTP2  Version = "HTTP/2.0"
)

// HTTPConnection is the capability every raw connection type must
// support to be driven by the request handling engine. It is the only
// seam between this package and the serving engine.
type HTTPConnection interface {
	stdnet.Conn
	// Version reports the application protocol version negotiated for
	// this connection. Transports that do not negotiate report a
	// constant version.
	Version(ctx context.Context) (Version, error)
	// Serve consumes the connection and runs the request serving loop
	// against handler, using server configuration from the shared
	// builders bundle. It returns once the connection is closed or the
	// protocol terminates.
	Serve(ctx context.Context, handler http.Handler, builders *HTTPBuilders) error
}

// Accepted is a single accepted connection together with its address
// metadata. It is handed off exactly once and never stored.
type Accepted struct {
	// Conn is the raw connection, uniquely owned by this record.
	Conn HTTPConnection
	// LocalAddr is the address of the listener that accepted the
	// connection.
	LocalAddr LocalAddr
	// RemoteAddr is the address of the peer.
	RemoteAddr SocketAddr
}

// Listener describes where and how to listen. Binding it produces a
// live Acceptor.
type Listener interface {
	// Bind creates and binds the listening socket. Any error aborts the
	// transition, no partial acceptor is produced.
	Bind(ctx context.Context) (Acceptor, error)
}

// Acceptor is a live, bound listening socket producing accepted
// connections. The listening socket is exclusively owned by its
// acceptor; Close is the cancellation mechanism for a blocked Accept.
type Acceptor interface {
	io.Closer
	// LocalAddrs returns the addresses the acceptor is bound to.
	LocalAddrs() []LocalAddr
	// Accept blocks until a new connection arrives or an error occurs.
	// A failed accept leaves the acceptor usable for subsequent calls.
	Accept() (*Accepted, error)
}

// ListenerOption configures how a listener binds.
type ListenerOption func(*listenerOptions)

type listenerOptions struct {
	net network.Network
}

// WithNetwork overrides the network used to bind the listening socket.
func WithNetwork(net network.Network) ListenerOption {
	return func(o *listenerOptions) {
		o.net = net
	}
}

func applyListenerOptions(opts []ListenerOption) listenerOptions {
	o := listenerOptions{net: network.Std()}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}
