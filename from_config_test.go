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
	"testing"

	"github.com/noisysockets/conduit"
	"github.com/noisysockets/conduit/config/v1alpha1"
	"github.com/stretchr/testify/require"
)

func TestFromConfig(t *testing.T) {
	ctx := context.Background()

	t.Run("Single", func(t *testing.T) {
		lis, err := conduit.FromConfig(&v1alpha1.Config{
			Listeners: []v1alpha1.ListenerConfig{
				{
					Transport: v1alpha1.TransportProtocolTCP,
					Address:   "127.0.0.1:0",
				},
			},
		})
		require.NoError(t, err)

		acceptor, err := lis.Bind(ctx)
		require.NoError(t, err)
		require.NoError(t, acceptor.Close())
	})

	t.Run("Joined", func(t *testing.T) {
		lis, err := conduit.FromConfig(&v1alpha1.Config{
			Listeners: []v1alpha1.ListenerConfig{
				{
					Transport: v1alpha1.TransportProtocolTCP,
					Address:   "127.0.0.1:0",
				},
				{
					Transport: v1alpha1.TransportProtocolTCP,
					Address:   "127.0.0.1:0",
				},
			},
		})
		require.NoError(t, err)

		acceptor, err := lis.Bind(ctx)
		require.NoError(t, err)

		require.Len(t, acceptor.LocalAddrs(), 2)
		require.NoError(t, acceptor.Close())
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := conduit.FromConfig(&v1alpha1.Config{})
		require.Error(t, err)
	})

	t.Run("Missing Address", func(t *testing.T) {
		_, err := conduit.FromConfig(&v1alpha1.Config{
			Listeners: []v1alpha1.ListenerConfig{
				{Transport: v1alpha1.TransportProtocolTCP},
			},
		})
		require.ErrorContains(t, err, "requires an address")
	})

	t.Run("Missing TLS Material", func(t *testing.T) {
		_, err := conduit.FromConfig(&v1alpha1.Config{
			Listeners: []v1alpha1.ListenerConfig{
				{
					Transport: v1alpha1.TransportProtocolTLS,
					Address:   "127.0.0.1:0",
				},
			},
		})
		require.ErrorContains(t, err, "certificate material")
	})
}
