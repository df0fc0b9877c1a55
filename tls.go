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
	"crypto/tls"
	"fmt"
	"net/http"

	"golang.org/x/net/http2"
)

// TLSListener wraps an inner listener with TLS. Certificate material
// and handshake behavior come entirely from the supplied tls.Config.
type TLSListener struct {
	inner Listener
	conf  *tls.Config
}

// NewTLSListener creates a TLS wrapped listener. If the config names no
// ALPN protocols, h2 and http/1.1 are offered.
func NewTLSListener(inner Listener, conf *tls.Config) *TLSListener {
	if conf == nil {
		conf = &tls.Config{}
	}

	conf = conf.Clone()
	if len(conf.NextProtos) == 0 {
		conf.NextProtos = []string{http2.NextProtoTLS, "http/1.1"}
	}

	return &TLSListener{
		inner: inner,
		conf:  conf,
	}
}

func (l *TLSListener) Bind(ctx context.Context) (Acceptor, error) {
	inner, err := l.inner.Bind(ctx)
	if err != nil {
		return nil, err
	}

	localAddrs := inner.LocalAddrs()
	for i := range localAddrs {
		localAddrs[i].AppProto = AppProtoHTTPS
	}

	return &TLSAcceptor{
		inner:      inner,
		conf:       l.conf,
		localAddrs: localAddrs,
	}, nil
}

// TLSAcceptor accepts connections from an inner acceptor and wraps them
// with TLS. The handshake is deferred until the connection is first
// used, so the accept loop is never stalled by a slow peer.
type TLSAcceptor struct {
	inner      Acceptor
	conf       *tls.Config
	localAddrs []LocalAddr
}

func (a *TLSAcceptor) LocalAddrs() []LocalAddr {
	return a.localAddrs
}

func (a *TLSAcceptor) Accept() (*Accepted, error) {
	accepted, err := a.inner.Accept()
	if err != nil {
		return nil, err
	}

	accepted.Conn = &tlsConn{Conn: tls.Server(accepted.Conn, a.conf)}
	accepted.LocalAddr.AppProto = AppProtoHTTPS

	return accepted, nil
}

func (a *TLSAcceptor) Close() error {
	return a.inner.Close()
}

type tlsConn struct {
	*tls.Conn
}

func (c *tlsConn) Version(ctx context.Context) (Version, error) {
	if err := c.HandshakeContext(ctx); err != nil {
		return "", fmt.Errorf("tls handshake failed: %w", err)
	}

	if c.ConnectionState().NegotiatedProtocol == http2.NextProtoTLS {
		return VersionHTTP2, nil
	}

	return VersionHTTP11, nil
}

func (c *tlsConn) Serve(ctx context.Context, handler http.Handler, builders *HTTPBuilders) error {
	version, err := c.Version(ctx)
	if err != nil {
		_ = c.Close()
		return serveError(err)
	}

	if version == VersionHTTP2 {
		return builders.serveHTTP2(ctx, c.Conn, handler)
	}

	return builders.serveHTTP1(ctx, c, handler)
}
