// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 The Noisy Sockets Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

//go:build unix

package conduit

import (
	"context"
	"fmt"
	stdnet "net"
	"net/http"

	"github.com/noisysockets/conduit/network"
)

// UnixListener listens for unix domain stream connections.
type UnixListener struct {
	path string
	net  network.Network
}

// NewUnixListener creates a listener for the given socket path.
func NewUnixListener(path string, opts ...ListenerOption) *UnixListener {
	o := applyListenerOptions(opts)

	return &UnixListener{
		path: path,
		net:  o.net,
	}
}

func (l *UnixListener) Bind(ctx context.Context) (Acceptor, error) {
	inner, err := l.net.ListenContext(ctx, "unix", l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to bind unix listener: %w", err)
	}

	localAddr := NewLocalAddr(AddrFromNetAddr(inner.Addr()), TransProtoUnix, AppProtoHTTP)

	return &UnixAcceptor{
		inner:     inner,
		localAddr: localAddr,
	}, nil
}

// UnixAcceptor accepts unix domain stream connections.
type UnixAcceptor struct {
	inner     stdnet.Listener
	localAddr LocalAddr
}

func (a *UnixAcceptor) LocalAddrs() []LocalAddr {
	return []LocalAddr{a.localAddr}
}

func (a *UnixAcceptor) Accept() (*Accepted, error) {
	conn, err := a.inner.Accept()
	if err != nil {
		return nil, err
	}

	return &Accepted{
		Conn:       &unixConn{Conn: conn},
		LocalAddr:  a.localAddr,
		RemoteAddr: AddrFromNetAddr(conn.RemoteAddr()),
	}, nil
}

func (a *UnixAcceptor) Close() error {
	return a.inner.Close()
}

type unixConn struct {
	stdnet.Conn
}

func (c *unixConn) Version(_ context.Context) (Version, error) {
	return VersionHTTP11, nil
}

func (c *unixConn) Serve(ctx context.Context, handler http.Handler, builders *HTTPBuilders) error {
	return builders.serveHTTP1(ctx, c, handler)
}

func unixListenerFromConfig(path string, opts []ListenerOption) (Listener, error) {
	return NewUnixListener(path, opts...), nil
}
