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
	"crypto/tls"
	"errors"
	"fmt"

	"github.com/noisysockets/conduit/config/v1alpha1"
)

// FromConfig builds a listener from the given configuration. Multiple
// configured listeners are joined into a single multi address listener.
func FromConfig(conf *v1alpha1.Config, opts ...ListenerOption) (Listener, error) {
	if len(conf.Listeners) == 0 {
		return nil, errors.New("no listeners configured")
	}

	listeners := make([]Listener, 0, len(conf.Listeners))
	for i, lisConf := range conf.Listeners {
		lis, err := listenerFromConfig(lisConf, opts)
		if err != nil {
			return nil, fmt.Errorf("invalid listener %d: %w", i, err)
		}

		listeners = append(listeners, lis)
	}

	if len(listeners) == 1 {
		return listeners[0], nil
	}

	return NewJoinedListener(listeners...), nil
}

func listenerFromConfig(conf v1alpha1.ListenerConfig, opts []ListenerOption) (Listener, error) {
	switch conf.Transport {
	case v1alpha1.TransportProtocolTCP:
		if conf.Address == "" {
			return nil, errors.New("tcp listener requires an address")
		}

		return NewTCPListener(conf.Address, opts...), nil
	case v1alpha1.TransportProtocolUnix:
		if conf.Path == "" {
			return nil, errors.New("unix listener requires a path")
		}

		return unixListenerFromConfig(conf.Path, opts)
	case v1alpha1.TransportProtocolTLS:
		if conf.Address == "" {
			return nil, errors.New("tls listener requires an address")
		}
		if conf.TLS == nil {
			return nil, errors.New("tls listener requires certificate material")
		}

		cert, err := tls.LoadX509KeyPair(conf.TLS.CertFile, conf.TLS.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load key pair: %w", err)
		}

		return NewTLSListener(NewTCPListener(conf.Address, opts...), &tls.Config{
			Certificates: []tls.Certificate{cert},
		}), nil
	default:
		return nil, fmt.Errorf("unsupported transport: %s", conf.Transport)
	}
}
