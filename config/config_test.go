// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 The Noisy Sockets Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package config_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/noisysockets/conduit/config"
	"github.com/noisysockets/conduit/config/v1alpha1"
	"github.com/stretchr/testify/require"
)

func TestFromYAML(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		confYAML := `apiVersion: conduit.noisysockets.github.com/v1alpha1
kind: ListenersConfig
listeners:
  - transport: tcp
    address: 127.0.0.1:8080
  - transport: unix
    path: /run/conduit.sock
  - transport: tls
    address: 127.0.0.1:8443
    tls:
      certFile: /etc/conduit/tls.crt
      keyFile: /etc/conduit/tls.key
`

		conf, err := config.FromYAML(strings.NewReader(confYAML))
		require.NoError(t, err)

		versionedConf, ok := conf.(*v1alpha1.Config)
		require.True(t, ok)

		require.Len(t, versionedConf.Listeners, 3)

		require.Equal(t, v1alpha1.TransportProtocolTCP, versionedConf.Listeners[0].Transport)
		require.Equal(t, "127.0.0.1:8080", versionedConf.Listeners[0].Address)

		require.Equal(t, v1alpha1.TransportProtocolUnix, versionedConf.Listeners[1].Transport)
		require.Equal(t, "/run/conduit.sock", versionedConf.Listeners[1].Path)

		require.Equal(t, v1alpha1.TransportProtocolTLS, versionedConf.Listeners[2].Transport)
		require.NotNil(t, versionedConf.Listeners[2].TLS)
		require.Equal(t, "/etc/conduit/tls.crt", versionedConf.Listeners[2].TLS.CertFile)
	})

	t.Run("Unknown Transport", func(t *testing.T) {
		confYAML := `apiVersion: conduit.noisysockets.github.com/v1alpha1
kind: ListenersConfig
listeners:
  - transport: carrier-pigeon
    address: 127.0.0.1:8080
`

		_, err := config.FromYAML(strings.NewReader(confYAML))
		require.ErrorContains(t, err, "unknown transport protocol")
	})

	t.Run("Unknown API Version", func(t *testing.T) {
		confYAML := `apiVersion: conduit.noisysockets.github.com/v1beta1
kind: ListenersConfig
`

		_, err := config.FromYAML(strings.NewReader(confYAML))
		require.ErrorContains(t, err, "unsupported api version")
	})

	t.Run("Unknown Kind", func(t *testing.T) {
		confYAML := `apiVersion: conduit.noisysockets.github.com/v1alpha1
kind: RoutersConfig
`

		_, err := config.FromYAML(strings.NewReader(confYAML))
		require.ErrorContains(t, err, "unsupported kind")
	})
}

func TestToYAML(t *testing.T) {
	conf := &v1alpha1.Config{
		Listeners: []v1alpha1.ListenerConfig{
			{
				Transport: v1alpha1.TransportProtocolTCP,
				Address:   "127.0.0.1:8080",
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, config.ToYAML(&buf, conf))

	roundTripped, err := config.FromYAML(&buf)
	require.NoError(t, err)

	require.Equal(t, conf.Listeners, roundTripped.(*v1alpha1.Config).Listeners)
}
