// Copyright (c) 2025 The Akoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg holds the tunable constants of an Akoin network as an
// immutable value passed at construction time, rather than as package
// globals a test suite (or a misbehaving caller) can mutate out from under
// concurrently running nodes.
package chaincfg

import "time"

// Params is the set of consensus and transport parameters a Node, Chain and
// peer Registry are built with. A Params value is never mutated after
// construction; two nodes built from different Params are free to disagree
// about difficulty or message limits without racing on a shared global.
type Params struct {
	// BlockDifficulty is the number of leading ASCII '0' characters a
	// valid block's hex Hashcode must begin with.
	BlockDifficulty int

	// MaxBlockTransactions is the hard cap on the number of transactions
	// a single block may carry.
	MaxBlockTransactions int

	// InitialCurrencySupply is minted to the local node's address in the
	// genesis block.
	InitialCurrencySupply int64

	// GenesisBlockFee is the fee recorded on the genesis mint
	// transaction.
	GenesisBlockFee int64

	// TransactionMaxAge is the age after which an unconfirmed
	// transaction is evicted from the mempool.
	TransactionMaxAge time.Duration

	// HeaderSize is the fixed width, in bytes, of the ASCII decimal
	// length header that precedes every framed payload.
	HeaderSize int

	// BufferSize is the number of bytes read per socket Read call while
	// assembling a frame.
	BufferSize int

	// MaxMessageSize is the largest payload a frame may declare before
	// the receiver aborts with ErrMessageTooLarge.
	MaxMessageSize int

	// Port is the default listener port.
	Port int

	// LocalHost is the default bind address.
	LocalHost string

	// MaxConnections is the listen backlog.
	MaxConnections int

	// InitialWebAddress is the default web address for a node that has
	// not yet bound a listener. Nothing in this module reads it.
	InitialWebAddress string
}

// MainNetParams returns the reference parameter set: 4 leading zero
// characters of proof-of-work, at most 10 transactions per block, a fixed
// supply of 10000 minted at genesis, and a 30-day mempool eviction age.
func MainNetParams() *Params {
	return &Params{
		BlockDifficulty:       4,
		MaxBlockTransactions:  10,
		InitialCurrencySupply: 10000,
		GenesisBlockFee:       0,
		TransactionMaxAge:     30 * 24 * time.Hour,
		HeaderSize:            10,
		BufferSize:            4096,
		MaxMessageSize:        8 * 1024 * 1024,
		Port:                  5588,
		LocalHost:             "0.0.0.0",
		MaxConnections:        128,
		InitialWebAddress:     "http://0.0.0.0:5588",
	}
}

// TestParams returns a parameter set tuned for fast unit tests: a single
// leading zero of difficulty (so mining does not dominate test wall-clock),
// otherwise identical to MainNetParams.
func TestParams() *Params {
	p := MainNetParams()
	p.BlockDifficulty = 1
	return p
}
