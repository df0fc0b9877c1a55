// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 The Noisy Sockets Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package conduit_test

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/neilotoole/slogt"
	"github.com/noisysockets/conduit"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestServe(t *testing.T) {
	logger := slogt.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	acceptor, err := conduit.NewTCPListener("127.0.0.1:0").Bind(ctx)
	require.NoError(t, err)

	addrPort, ok := acceptor.LocalAddrs()[0].AddrPort()
	require.True(t, ok)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "Hello, %s!", r.Proto)
	})

	var g errgroup.Group
	g.Go(func() error {
		return conduit.Serve(ctx, logger, acceptor, handler, conduit.DefaultHTTPBuilders())
	})

	client := &http.Client{Timeout: 10 * time.Second}

	// Dropping the idle connection between requests forces a fresh
	// connection each time, so the accept loop is exercised repeatedly.
	for i := 0; i < 3; i++ {
		resp, err := client.Get(fmt.Sprintf("http://%s/", addrPort))
		require.NoError(t, err)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, resp.Body.Close())
		require.NoError(t, err)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "Hello, HTTP/1.1!", string(body))

		client.CloseIdleConnections()
	}

	cancel()
	require.ErrorIs(t, g.Wait(), context.Canceled)
}

func TestServeSingleConnection(t *testing.T) {
	ctx := context.Background()

	acceptor, err := conduit.NewTCPListener("127.0.0.1:0").Bind(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, acceptor.Close())
	})

	addrPort, _ := acceptor.LocalAddrs()[0].AddrPort()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Hello, world!")
	})

	var g errgroup.Group
	g.Go(func() error {
		client := &http.Client{Timeout: 10 * time.Second}

		resp, err := client.Get(fmt.Sprintf("http://%s/", addrPort))
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		if string(body) != "Hello, world!" {
			return fmt.Errorf("unexpected body: %q", body)
		}

		// Drop the keep-alive connection so Serve returns.
		client.CloseIdleConnections()
		return nil
	})

	accepted, err := acceptor.Accept()
	require.NoError(t, err)

	// Serve consumes the connection and returns once it is closed.
	require.NoError(t, accepted.Conn.Serve(ctx, handler, conduit.DefaultHTTPBuilders()))

	require.NoError(t, g.Wait())
}

func TestServeHTTP2(t *testing.T) {
	logger := slogt.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverConf := &tls.Config{
		Certificates: []tls.Certificate{generateTestCertificate(t)},
	}

	lis := conduit.NewTLSListener(conduit.NewTCPListener("127.0.0.1:0"), serverConf)

	acceptor, err := lis.Bind(ctx)
	require.NoError(t, err)

	addrPort, _ := acceptor.LocalAddrs()[0].AddrPort()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "Hello, %s!", r.Proto)
	})

	var g errgroup.Group
	g.Go(func() error {
		return conduit.Serve(ctx, logger, acceptor, handler, conduit.DefaultHTTPBuilders())
	})

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	transport.ForceAttemptHTTP2 = true

	client := &http.Client{
		Timeout:   10 * time.Second,
		Transport: transport,
	}

	resp, err := client.Get(fmt.Sprintf("https://%s/", addrPort))
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)

	require.Equal(t, "HTTP/2.0", resp.Proto)
	require.Equal(t, "Hello, HTTP/2.0!", string(body))

	cancel()
	require.ErrorIs(t, g.Wait(), context.Canceled)
}
