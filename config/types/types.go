/* SPDX-License-Identifier: MIT
 *
 * Copyright (c) 2024 The Noisy Sockets Authors.
 */

package types

type TypeMeta struct {
	Kind       string `yaml:"kind"`
	APIVersion string `yaml:"apiVersion"`
}

type Config interface {
	GetKind() string
	GetAPIVersion() string
	PopulateTypeMeta()
}
