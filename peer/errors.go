// Copyright (c) 2025 The Akoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import "errors"

// ErrBadPeer is returned when a peer registration carries an invalid web
// address or public-key string.
var ErrBadPeer = errors.New("bad peer")

// ErrMessageTooLarge is returned when a frame's declared or accumulated
// payload length exceeds Params.MaxMessageSize.
var ErrMessageTooLarge = errors.New("message too large")

// ErrTimeout is returned when a per-operation socket deadline elapses
// before a full frame is read or written.
var ErrTimeout = errors.New("socket timeout")

// ErrSocketClosed is returned when a peer connection is closed, whether
// by an empty header on the first read or an underlying I/O error.
var ErrSocketClosed = errors.New("socket closed")
