// Copyright (c) 2025 The Akoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package account is the pure balance-computation view over a chain (C6):
// it owns no state of its own and reaches no network or disk, it only
// folds a slice of blocks into a balance or an inclusion proof. Keeping it
// side-effect free means any caller — the node, a test, a future wallet —
// gets the same answer for the same chain without coordinating locks.
package account

import (
	"fmt"

	"github.com/akoin-project/akoin/merkle"
	"github.com/akoin-project/akoin/wire"
)

// BalanceOf folds every block and every transaction in chain into
// address's balance: a debit of amount+fee when address is the sender, a
// credit of amount when address is the receiver, and a credit of fee for
// every transaction in a block address mined. Because the genesis
// block's sender is the all-zeros address, the initial mint credits the
// genesis miner without a matching debit anywhere in the chain — this is
// the system's only monetary-policy hook (spec.md §4.6).
func BalanceOf(address string, blocks []*wire.Block) int64 {
	var balance int64
	for _, b := range blocks {
		for _, t := range b.Transactions {
			if address == t.Sender {
				balance -= t.Amount
				balance -= t.Fee
			}
			if address == t.Receiver {
				balance += t.Amount
			}
			if address == b.Miner {
				balance += t.Fee
			}
		}
	}
	log.Debugf("balance of %s is %d", address, balance)
	return balance
}

// IsTransactionExecuted reports whether t already appears, by wire-form
// identity, in any non-genesis block of chain. This resolves the
// original implementation's ambiguity (spec.md §9 open question 1) in
// favor of the obvious intent — "any non-genesis block" — rather than
// the literal bug of only ever inspecting chain[1]; see DESIGN.md.
func IsTransactionExecuted(t *wire.Transaction, blocks []*wire.Block) bool {
	wireForm := t.Wire()
	for _, b := range blocks[1:] {
		for _, bt := range b.Transactions {
			if bt.Wire() == wireForm {
				return true
			}
		}
	}
	return false
}

// InclusionProof is the payload returned by GenerateInclusionProof: the
// transaction itself, its index within the block, and the Merkle proof
// tying it to the block's MerkleRoot.
type InclusionProof struct {
	Transaction *wire.Transaction
	TxIndex     int
	Proof       []string
}

// GenerateInclusionProof builds the Merkle inclusion proof for the
// transaction at txIndex in the block at blockIndex.
func GenerateInclusionProof(blockIndex, txIndex int, blocks []*wire.Block) (*InclusionProof, error) {
	if blockIndex < 0 || blockIndex >= len(blocks) {
		return nil, fmt.Errorf("account: block index %d out of range", blockIndex)
	}
	b := blocks[blockIndex]
	if txIndex < 0 || txIndex >= len(b.Transactions) {
		return nil, fmt.Errorf("account: transaction index %d out of range for block %d", txIndex, blockIndex)
	}

	proof, err := b.MerkleTree().Proof(txIndex)
	if err != nil {
		return nil, fmt.Errorf("account: %w", err)
	}

	return &InclusionProof{
		Transaction: b.Transactions[txIndex],
		TxIndex:     txIndex,
		Proof:       proof,
	}, nil
}

// VerifyInclusion independently re-derives the leaf hash for transaction
// and checks both that proof's terminal element equals the block's
// recorded MerkleRoot and that the proof itself validates. All three
// checks — leaf hash, root match, and proof validation — must hold for
// this to return true; mutating transaction, txIndex, or reordering
// proof will each make exactly one of them fail.
func VerifyInclusion(blockIndex, txIndex int, transaction *wire.Transaction, proof []string, blocks []*wire.Block) bool {
	if blockIndex < 0 || blockIndex >= len(blocks) {
		return false
	}
	b := blocks[blockIndex]
	if len(proof) == 0 {
		return false
	}

	leafHash := merkle.LeafHash(transaction.Canonical())
	if proof[len(proof)-1] != b.MerkleRoot {
		return false
	}
	return merkle.VerifyProof(leafHash, txIndex, proof)
}
