// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 The Noisy Sockets Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package config provides the versioned listener configuration.
package config

import (
	"fmt"
	"io"

	configtypes "github.com/noisysockets/conduit/config/types"
	"github.com/noisysockets/conduit/config/v1alpha1"
	"gopkg.in/yaml.v3"
)

// FromYAML reads the given reader and returns a config object.
func FromYAML(r io.Reader) (configtypes.Config, error) {
	confBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config from reader: %w", err)
	}

	var typeMeta configtypes.TypeMeta
	if err := yaml.Unmarshal(confBytes, &typeMeta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal type meta from config file: %w", err)
	}

	var versionedConf configtypes.Config
	switch typeMeta.APIVersion {
	case v1alpha1.APIVersion:
		versionedConf, err = v1alpha1.GetConfigByKind(typeMeta.Kind)
	default:
		return nil, fmt.Errorf("unsupported api version: %s", typeMeta.APIVersion)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get config by kind %q: %w", typeMeta.Kind, err)
	}

	if err := yaml.Unmarshal(confBytes, versionedConf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config from config file: %w", err)
	}

	return versionedConf, nil
}

// ToYAML writes the given config object to the given writer.
func ToYAML(w io.Writer, versionedConf configtypes.Config) error {
	versionedConf.PopulateTypeMeta()

	if err := yaml.NewEncoder(w).Encode(versionedConf); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return nil
}
