// Copyright (c) 2025 The Akoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "errors"

// ErrBadTransaction is returned when a transaction's signature fails to
// verify, its wire form is malformed, or it carries negative values.
var ErrBadTransaction = errors.New("bad transaction")

// ErrBlockTooLarge is returned when a block is constructed with more than
// Params.MaxBlockTransactions transactions.
var ErrBlockTooLarge = errors.New("block too large")
