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
	"errors"
	"fmt"
	"log/slog"
	stdnet "net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/http2"
)

// HTTPBuilders bundles the server configuration shared by every
// accepted connection. It is read only once constructed and may be
// shared freely across concurrently served connections.
type HTTPBuilders struct {
	// HTTP1 configures HTTP/1.x serving.
	HTTP1 HTTP1Config
	// HTTP2 serves connections that negotiated h2. If nil, such
	// connections are refused.
	HTTP2 *http2.Server
}

// HTTP1Config carries the HTTP/1.x limits applied to each connection.
type HTTP1Config struct {
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
}

// DefaultHTTPBuilders returns a builders bundle with conservative
// limits and HTTP/2 enabled.
func DefaultHTTPBuilders() *HTTPBuilders {
	return &HTTPBuilders{
		HTTP1: HTTP1Config{
			ReadHeaderTimeout: 30 * time.Second,
			IdleTimeout:       2 * time.Minute,
			MaxHeaderBytes:    1 << 20,
		},
		HTTP2: &http2.Server{},
	}
}

// serveHTTP1 serves a single connection with HTTP/1.x. There is no
// public per-connection entry point for HTTP/1.x in net/http, so the
// connection is adapted to a single connection listener which keeps
// http.Server.Serve blocked until the connection is closed. Protocol
// upgrades are available to handlers through the usual Hijacker path.
func (b *HTTPBuilders) serveHTTP1(ctx context.Context, conn stdnet.Conn, handler http.Handler) error {
	lis := newSingleConnListener(conn)

	stop := context.AfterFunc(ctx, func() {
		_ = lis.Close()
	})
	defer stop()

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: b.HTTP1.ReadHeaderTimeout,
		IdleTimeout:       b.HTTP1.IdleTimeout,
		MaxHeaderBytes:    b.HTTP1.MaxHeaderBytes,
	}

	if err := srv.Serve(lis); err != nil && !errors.Is(err, stdnet.ErrClosed) {
		return serveError(err)
	}

	return nil
}

// serveHTTP2 serves a single connection that negotiated h2.
func (b *HTTPBuilders) serveHTTP2(ctx context.Context, conn stdnet.Conn, handler http.Handler) error {
	if b.HTTP2 == nil {
		_ = conn.Close()
		return serveError(errors.New("connection negotiated h2 but HTTP/2 serving is not configured"))
	}

	b.HTTP2.ServeConn(conn, &http2.ServeConnOpts{
		Context: ctx,
		Handler: handler,
	})

	return nil
}

// serveError flattens an internal serving error into this package's
// generic error surface. The underlying protocol error is reduced to a
// string.
func serveError(err error) error {
	return fmt.Errorf("failed to serve connection: %s", err)
}

// Serve drives an acceptor until ctx is canceled, handing each accepted
// connection to its own goroutine. The loop never waits for an
// in-flight connection, so new connections keep being accepted while
// existing ones are served. Accept failures are logged and the loop
// continues.
func Serve(ctx context.Context, logger *slog.Logger, acceptor Acceptor, handler http.Handler, builders *HTTPBuilders) error {
	if builders == nil {
		builders = DefaultHTTPBuilders()
	}

	stop := context.AfterFunc(ctx, func() {
		_ = acceptor.Close()
	})
	defer stop()

	for {
		accepted, err := acceptor.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			if errors.Is(err, stdnet.ErrClosed) {
				return nil
			}

			logger.Warn("Failed to accept connection", slog.Any("error", err))
			continue
		}

		logger.Debug("Accepted connection",
			slog.String("localAddr", accepted.LocalAddr.String()),
			slog.String("remoteAddr", accepted.RemoteAddr.String()))

		go func(accepted *Accepted) {
			if err := accepted.Conn.Serve(ctx, handler, builders); err != nil {
				logger.Warn("Failed to serve connection",
					slog.String("remoteAddr", accepted.RemoteAddr.String()),
					slog.Any("error", err))
			}
		}(accepted)
	}
}

// singleConnListener adapts one already accepted connection to the
// net.Listener interface expected by http.Server. The first Accept
// yields the connection; subsequent Accepts block until the connection
// is closed and then report net.ErrClosed.
type singleConnListener struct {
	mu       sync.Mutex
	accepted bool
	conn     *notifyCloseConn
}

func newSingleConnListener(conn stdnet.Conn) *singleConnListener {
	return &singleConnListener{
		conn: &notifyCloseConn{
			Conn:   conn,
			closed: make(chan struct{}),
		},
	}
}

func (l *singleConnListener) Accept() (stdnet.Conn, error) {
	l.mu.Lock()
	if !l.accepted {
		l.accepted = true
		l.mu.Unlock()
		return l.conn, nil
	}
	l.mu.Unlock()

	<-l.conn.closed
	return nil, stdnet.ErrClosed
}

func (l *singleConnListener) Close() error {
	return l.conn.Close()
}

func (l *singleConnListener) Addr() stdnet.Addr {
	return l.conn.LocalAddr()
}

// notifyCloseConn signals when the connection is closed, so the
// listener can unblock http.Server.Serve. Hijacked connections close
// through the same path.
type notifyCloseConn struct {
	stdnet.Conn
	closeOnce sync.Once
	closed    chan struct{}
}

func (c *notifyCloseConn) Close() error {
	err := c.Conn.Close()
	c.closeOnce.Do(func() {
		close(c.closed)
	})

	return err
}
