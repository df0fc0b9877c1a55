// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 The Noisy Sockets Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package v1alpha1

import (
	"fmt"
	"strings"

	configtypes "github.com/noisysockets/conduit/config/types"
)

const APIVersion = "conduit.noisysockets.github.com/v1alpha1"

// Config is the configuration for a set of listening sockets.
type Config struct {
	configtypes.TypeMeta `yaml:",inline"`
	// Listeners is the set of listening sockets to open.
	Listeners []ListenerConfig `yaml:"listeners"`
}

// TransportProtocol selects the listener variant for a configured socket.
type TransportProtocol string

const (
	// TransportProtocolTCP is a plain TCP listener.
	TransportProtocolTCP TransportProtocol = "tcp"
	// TransportProtocolUnix is a unix domain stream listener.
	TransportProtocolUnix TransportProtocol = "unix"
	// TransportProtocolTLS is a TLS wrapped TCP listener.
	TransportProtocolTLS TransportProtocol = "tls"
)

func (p *TransportProtocol) UnmarshalYAML(unmarshal func(any) error) error {
	var str string
	if err := unmarshal(&str); err != nil {
		return err
	}
	switch TransportProtocol(strings.ToLower(str)) {
	case TransportProtocolTCP, TransportProtocolUnix, TransportProtocolTLS:
		*p = TransportProtocol(strings.ToLower(str))
		return nil
	default:
		return fmt.Errorf("unknown transport protocol: %s", str)
	}
}

// ListenerConfig is the configuration for a single listening socket.
type ListenerConfig struct {
	// Transport selects the listener variant.
	Transport TransportProtocol `yaml:"transport"`
	// Address is the host:port to bind (tcp and tls transports). The
	// host may be a name, a literal IP, or empty for all interfaces.
	Address string `yaml:"address,omitempty"`
	// Path is the filesystem path of the socket (unix transport).
	Path string `yaml:"path,omitempty"`
	// TLS carries certificate material for the tls transport.
	TLS *TLSConfig `yaml:"tls,omitempty"`
}

// TLSConfig names the certificate material for a TLS listener.
type TLSConfig struct {
	// CertFile is the path to a PEM encoded certificate chain.
	CertFile string `yaml:"certFile"`
	// KeyFile is the path to a PEM encoded private key.
	KeyFile string `yaml:"keyFile"`
}

func (c *Config) GetKind() string {
	return c.Kind
}

func (c *Config) GetAPIVersion() string {
	return c.APIVersion
}

func (c *Config) PopulateTypeMeta() {
	c.Kind = "ListenersConfig"
	c.APIVersion = APIVersion
}

func GetConfigByKind(kind string) (configtypes.Config, error) {
	switch kind {
	case "ListenersConfig":
		return &Config{}, nil
	default:
		return nil, fmt.Errorf("unsupported kind: %s", kind)
	}
}
