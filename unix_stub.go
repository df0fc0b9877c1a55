// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 The Noisy Sockets Authors.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

//go:build !unix

package conduit

import "errors"

func unixListenerFromConfig(_ string, _ []ListenerOption) (Listener, error) {
	return nil, errors.New("unix domain sockets are not supported on this platform")
}
