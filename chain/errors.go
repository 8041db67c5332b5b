// Copyright (c) 2025 The Akoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import "errors"

// ErrBadChain is returned when a candidate chain is rejected by
// ReplaceChain for being too short or failing block/link validity.
var ErrBadChain = errors.New("bad chain")
