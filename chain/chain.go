// Copyright (c) 2025 The Akoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chain implements the ordered sequence of blocks (C5): genesis
// minting, block- and chain-validity predicates, mempool-to-block
// transaction selection (the admission filter), and the
// longest-valid-chain replacement rule. A Chain carries no lock of its
// own — spec.md §5 places the single exclusive section one layer up, in
// the node that owns it, so mining can snapshot the mempool and run its
// proof-of-work loop without ever holding a lock request handlers need.
package chain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/akoin-project/akoin/account"
	"github.com/akoin-project/akoin/chaincfg"
	"github.com/akoin-project/akoin/crypto"
	"github.com/akoin-project/akoin/wire"
)

// Chain is a non-empty, ordered sequence of blocks rooted at a genesis
// block that mints Params.InitialCurrencySupply to minerAddress.
type Chain struct {
	params *chaincfg.Params
	blocks []*wire.Block
}

// NewChain creates a chain with a freshly mined genesis block: index 0,
// previous hash "0", and a single unsigned mint transaction moving the
// initial supply from the all-zeros address to minerAddress.
func NewChain(minerAddress string, params *chaincfg.Params) (*Chain, error) {
	mint := wire.NewTransaction(crypto.ZeroAddress(), minerAddress, params.InitialCurrencySupply, params.GenesisBlockFee)
	genesis, err := wire.NewBlock(0, []*wire.Transaction{mint}, "0", minerAddress, params)
	if err != nil {
		return nil, fmt.Errorf("chain: failed to mine genesis block: %w", err)
	}
	log.Infof("genesis block mined for %s, supply %d", minerAddress, params.InitialCurrencySupply)
	return &Chain{params: params, blocks: []*wire.Block{genesis}}, nil
}

// Params returns the chain's immutable configuration.
func (c *Chain) Params() *chaincfg.Params { return c.params }

// Length returns the number of blocks currently in the chain.
func (c *Chain) Length() int { return len(c.blocks) }

// Blocks returns the chain's blocks. The returned slice must be treated
// as read-only by the caller; Chain only ever grows by append or replaces
// its backing slice wholesale, never mutates an element in place, so a
// previously returned slice stays valid even after a later append or
// replacement.
func (c *Chain) Blocks() []*wire.Block { return c.blocks }

// Last returns the most recently appended block.
func (c *Chain) Last() *wire.Block { return c.blocks[len(c.blocks)-1] }

// IsBlockValid reports whether b's recomputed hash matches its stored
// Hashcode, begins with Params.BlockDifficulty leading zeros, and carries
// no more than Params.MaxBlockTransactions transactions. Comparing the
// recomputed hash against the stored one (rather than only checking the
// difficulty prefix, as the original implementation this was distilled
// from does) catches tampering with any field the pre-hash form covers;
// see the open question in DESIGN.md.
func (c *Chain) IsBlockValid(b *wire.Block) bool {
	recomputed := b.ComputeHash()
	return recomputed == b.Hashcode &&
		strings.HasPrefix(recomputed, strings.Repeat("0", c.params.BlockDifficulty)) &&
		len(b.Transactions) <= c.params.MaxBlockTransactions
}

// IsChainValid reports whether every block from index 1 onward links to
// its predecessor's Hashcode and is individually valid. The genesis
// block itself is never re-validated, only used as the first link.
func (c *Chain) IsChainValid(blocks []*wire.Block) bool {
	if len(blocks) == 0 {
		return false
	}
	for i := 1; i < len(blocks); i++ {
		if blocks[i].PreviousHash != blocks[i-1].Hashcode {
			log.Debugf("chain invalid: block %d does not link to block %d", i, i-1)
			return false
		}
		if !c.IsBlockValid(blocks[i]) {
			log.Debugf("chain invalid: block %d fails block validity", i)
			return false
		}
	}
	return true
}

// CreateBlock runs the admission filter over pending, mines a block from
// the surviving transactions, and appends it. It returns (nil, nil) if
// pending is empty or the admission filter admits nothing — no empty
// blocks are ever appended — and otherwise returns exactly the
// transactions that made it into the new block.
func (c *Chain) CreateBlock(pending []*wire.Transaction, minerAddress string) ([]*wire.Transaction, error) {
	if len(pending) == 0 {
		return nil, nil
	}

	selected := Admit(pending, c.blocks, c.params)
	if len(selected) == 0 {
		return nil, nil
	}
	b, err := wire.NewBlock(int64(len(c.blocks)), selected, c.Last().Hashcode, minerAddress, c.params)
	if err != nil {
		return nil, fmt.Errorf("chain: %w", err)
	}
	c.blocks = append(c.blocks, b)
	return selected, nil
}

// AppendIfStillAtLength appends b iff the chain's length is still
// expectedLength, reporting whether the append happened. This lets a
// caller mine a block against a snapshot outside any lock and then, once
// the mining is done, atomically decide whether the chain grew out from
// under it — in which case the mined block is discarded rather than
// appended, matching the concurrency design in DESIGN.md.
func (c *Chain) AppendIfStillAtLength(b *wire.Block, expectedLength int) bool {
	if len(c.blocks) != expectedLength {
		return false
	}
	c.blocks = append(c.blocks, b)
	return true
}

// Admit runs the fee-descending admission filter described in spec.md
// §4.5 against a snapshot of blocks: sort pending by fee, repeatedly
// simulate the top params.MaxBlockTransactions candidates' running
// balances, and drop any candidate that would drive its sender negative,
// restarting until a full pass removes nothing. A receiver is only
// credited mid-simulation if it already has a running balance entry
// (i.e. it also appears as a sender among the candidates) — this is the
// original implementation's bias (spec.md §9 item 3), preserved here
// rather than silently corrected. It is a free function, not a Chain
// method, so mining can run the filter against an immutable snapshot
// without needing the chain's own state.
func Admit(pending []*wire.Transaction, blocks []*wire.Block, params *chaincfg.Params) []*wire.Transaction {
	sorted := make([]*wire.Transaction, len(pending))
	copy(sorted, pending)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Fee > sorted[j].Fee
	})

	for {
		limit := params.MaxBlockTransactions
		if limit > len(sorted) {
			limit = len(sorted)
		}
		candidates := sorted[:limit]

		balances := make(map[string]int64, limit)
		for _, t := range candidates {
			if _, ok := balances[t.Sender]; !ok {
				balances[t.Sender] = account.BalanceOf(t.Sender, blocks)
			}
		}

		var bad []*wire.Transaction
		for _, t := range candidates {
			if _, ok := balances[t.Receiver]; ok {
				balances[t.Receiver] += t.Amount
			}
			balances[t.Sender] -= t.Amount + t.Fee

			if balances[t.Sender] < 0 {
				balances[t.Sender] += t.Amount + t.Fee
				bad = append(bad, t)
			}
		}

		if len(bad) == 0 {
			log.Debugf("admission filter converged with %d transactions", len(candidates))
			return candidates
		}
		sorted = removeAll(sorted, bad)
	}
}

// removeAll returns a new slice containing list's elements minus those in
// remove, identified by pointer identity, preserving order.
func removeAll(list, remove []*wire.Transaction) []*wire.Transaction {
	if len(remove) == 0 {
		return list
	}
	skip := make(map[*wire.Transaction]bool, len(remove))
	for _, t := range remove {
		skip[t] = true
	}
	out := make([]*wire.Transaction, 0, len(list)-len(remove))
	for _, t := range list {
		if !skip[t] {
			out = append(out, t)
		}
	}
	return out
}

// ReplaceChain accepts candidate iff it is strictly longer than the
// current chain and passes IsChainValid, swapping it in atomically from
// the caller's point of view (Chain has no lock; the node holding the
// exclusive section guarantees readers never see a partial swap).
// Equal-length candidates are rejected: there is no re-org on ties.
func (c *Chain) ReplaceChain(candidate []*wire.Block) (bool, error) {
	if len(candidate) <= len(c.blocks) {
		return false, fmt.Errorf("%w: candidate length %d does not exceed current length %d", ErrBadChain, len(candidate), len(c.blocks))
	}
	if !c.IsChainValid(candidate) {
		return false, fmt.Errorf("%w: candidate chain failed validation", ErrBadChain)
	}
	c.blocks = candidate
	log.Infof("chain replaced, new length %d", len(c.blocks))
	return true, nil
}
