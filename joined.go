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
	stdnet "net"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// JoinedListener combines several listeners into one, so a service can
// listen on several interfaces or transports at once.
type JoinedListener struct {
	listeners []Listener
}

// NewJoinedListener creates a listener that binds all of the given
// listeners.
func NewJoinedListener(listeners ...Listener) *JoinedListener {
	return &JoinedListener{listeners: listeners}
}

func (l *JoinedListener) Bind(ctx context.Context) (Acceptor, error) {
	acceptors := make([]Acceptor, 0, len(l.listeners))
	for _, inner := range l.listeners {
		acceptor, err := inner.Bind(ctx)
		if err != nil {
			// Unwind the listeners that were already bound.
			result := multierror.Append(nil, err)
			for _, bound := range acceptors {
				if closeErr := bound.Close(); closeErr != nil {
					result = multierror.Append(result, closeErr)
				}
			}
			return nil, result.ErrorOrNil()
		}

		acceptors = append(acceptors, acceptor)
	}

	joined := &JoinedAcceptor{
		inner:   acceptors,
		results: make(chan acceptResult),
		closing: make(chan struct{}),
	}

	for _, acceptor := range acceptors {
		go joined.acceptLoop(acceptor)
	}

	return joined, nil
}

// JoinedAcceptor multiplexes connections from several acceptors, in
// arrival order.
type JoinedAcceptor struct {
	inner     []Acceptor
	closeOnce sync.Once
	results   chan acceptResult
	closing   chan struct{}
}

type acceptResult struct {
	accepted *Accepted
	err      error
}

func (a *JoinedAcceptor) LocalAddrs() []LocalAddr {
	var addrs []LocalAddr
	for _, acceptor := range a.inner {
		addrs = append(addrs, acceptor.LocalAddrs()...)
	}

	return addrs
}

func (a *JoinedAcceptor) Accept() (*Accepted, error) {
	select {
	case result := <-a.results:
		return result.accepted, result.err
	case <-a.closing:
		return nil, stdnet.ErrClosed
	}
}

// acceptLoop continually accepts connections from the given acceptor
// and forwards each result, including accept failures, to the shared
// results channel. Closing the joined acceptor causes the loop to exit.
func (a *JoinedAcceptor) acceptLoop(acceptor Acceptor) {
	for {
		accepted, err := acceptor.Accept()
		r := acceptResult{
			accepted: accepted,
			err:      err,
		}

		select {
		case a.results <- r:
		case <-a.closing:
			if r.err == nil {
				_ = r.accepted.Conn.Close()
			}
			return
		}

		if err != nil {
			select {
			case <-a.closing:
				return
			default:
			}
		}
	}
}

func (a *JoinedAcceptor) Close() error {
	var result *multierror.Error
	a.closeOnce.Do(func() {
		close(a.closing)
		for _, acceptor := range a.inner {
			if err := acceptor.Close(); err != nil {
				result = multierror.Append(result, err)
			}
		}
	})

	return result.ErrorOrNil()
}
