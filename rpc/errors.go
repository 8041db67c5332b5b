// Copyright (c) 2025 The Akoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import "errors"

// ErrUnknownPath is returned when a decoded request's path does not
// match any operation the router dispatches.
var ErrUnknownPath = errors.New("unknown path")
