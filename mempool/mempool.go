// Copyright (c) 2025 The Akoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import "github.com/akoin-project/akoin/wire"

// MempoolSize reports how many transactions are currently pending. A
// single map keyed by wire form (node.go) stands in for the original
// implementation's pair of parallel sets — one membership check instead
// of two keeps admit-once correct by construction; see DESIGN.md.
func (n *Node) MempoolSize() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.mempool)
}

// PendingTransactions returns a snapshot of the transactions currently
// pending, in no particular order.
func (n *Node) PendingTransactions() []*wire.Transaction {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*wire.Transaction, 0, len(n.mempool))
	for _, t := range n.mempool {
		out = append(out, t)
	}
	return out
}
