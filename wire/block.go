// Copyright (c) 2025 The Akoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/akoin-project/akoin/chaincfg"
	"github.com/akoin-project/akoin/merkle"
)

// Block is one link of the chain: an index, a link to its predecessor, an
// ordered transaction list, the miner that produced it, and the
// proof-of-work hash that seals all of the above.
type Block struct {
	Index         int64
	Timestamp     string
	UnixTimestamp float64
	PreviousHash  string
	Nonce         uint64
	Miner         string
	Transactions  []*Transaction
	Hashcode      string
	MerkleRoot    string
}

// NewBlock constructs a block over transactions, mining it in place:
// starting from nonce zero, it increments until ComputeHash begins with
// params.BlockDifficulty leading ASCII zeros. It fails with
// ErrBlockTooLarge before ever mining if the transaction count exceeds
// params.MaxBlockTransactions.
func NewBlock(index int64, transactions []*Transaction, previousHash, miner string, params *chaincfg.Params) (*Block, error) {
	if len(transactions) > params.MaxBlockTransactions {
		return nil, fmt.Errorf("%w: %d transactions exceeds max %d", ErrBlockTooLarge, len(transactions), params.MaxBlockTransactions)
	}

	now := time.Now()
	b := &Block{
		Index:         index,
		Timestamp:     now.String(),
		UnixTimestamp: float64(now.UnixNano()) / 1e9,
		PreviousHash:  previousHash,
		Miner:         miner,
		Transactions:  transactions,
	}
	b.MerkleRoot = b.merkleTree().Root()
	b.mine(params.BlockDifficulty)

	log.Infof("new block mined at index %d, hashcode %s", b.Index, b.Hashcode)
	return b, nil
}

// merkleTree builds the Merkle tree over each transaction's canonical
// form, the derived structure backing MerkleRoot and inclusion proofs.
func (b *Block) merkleTree() *merkle.Tree {
	items := make([]string, len(b.Transactions))
	for i, t := range b.Transactions {
		items[i] = t.Canonical()
	}
	return merkle.New(items)
}

// MerkleTree exposes the tree so account inclusion proofs can be built
// without recomputing it from scratch elsewhere.
func (b *Block) MerkleTree() *merkle.Tree {
	return b.merkleTree()
}

// preHashObject is the canonical pre-hash form: every field except
// Hashcode, transactions reduced to their canonical strings, encoded as a
// JSON object whose keys come out sorted because Go already sorts map
// keys on marshal.
func (b *Block) preHashObject() map[string]any {
	txs := make([]string, len(b.Transactions))
	for i, t := range b.Transactions {
		txs[i] = t.Canonical()
	}
	return map[string]any{
		"index":          b.Index,
		"timestamp":      b.Timestamp,
		"unix_timestamp": b.UnixTimestamp,
		"previous_hash":  b.PreviousHash,
		"nonce":          b.Nonce,
		"miner":          b.Miner,
		"transactions":   txs,
	}
}

// ComputeHash recomputes the block's hash from its current contents. It
// is not memoized: callers that tamper with a block's fields and then
// call ComputeHash will observe the tamper, which is exactly how
// chain.IsBlockValid detects a forged block.
func (b *Block) ComputeHash() string {
	data, err := json.Marshal(b.preHashObject())
	if err != nil {
		panic(fmt.Sprintf("wire: block pre-hash encoding failed: %v", err))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// mine performs the proof-of-work search: increment Nonce until
// ComputeHash begins with difficulty leading ASCII '0' characters.
func (b *Block) mine(difficulty int) {
	prefix := strings.Repeat("0", difficulty)
	hash := b.ComputeHash()
	for !strings.HasPrefix(hash, prefix) {
		b.Nonce++
		hash = b.ComputeHash()
	}
	b.Hashcode = hash
}

// wireBlock is the transmissible encoding of a Block.
type wireBlock struct {
	Index         int64          `json:"index"`
	Timestamp     string         `json:"timestamp"`
	UnixTimestamp float64        `json:"unix_timestamp"`
	PreviousHash  string         `json:"previous_hash"`
	Nonce         uint64         `json:"nonce"`
	Miner         string         `json:"miner"`
	Transactions  []wireForm     `json:"transactions"`
	Hashcode      string         `json:"hashcode"`
	MerkleRoot    string         `json:"merkle_root"`
}

// Wire returns the block's wire-form string, suitable for sending a whole
// chain across the peer transport.
func (b *Block) Wire() string {
	wb := wireBlock{
		Index:         b.Index,
		Timestamp:     b.Timestamp,
		UnixTimestamp: b.UnixTimestamp,
		PreviousHash:  b.PreviousHash,
		Nonce:         b.Nonce,
		Miner:         b.Miner,
		Hashcode:      b.Hashcode,
		MerkleRoot:    b.MerkleRoot,
	}
	wb.Transactions = make([]wireForm, len(b.Transactions))
	for i, t := range b.Transactions {
		wb.Transactions[i] = wireForm{
			Sender: t.Sender, Receiver: t.Receiver, Amount: t.Amount,
			Fee: t.Fee, Timestamp: t.Timestamp, Signature: t.Signature,
		}
	}
	data, err := json.Marshal(wb)
	if err != nil {
		panic(fmt.Sprintf("wire: block wire-form encoding failed: %v", err))
	}
	return string(data)
}

// BlockFromWire reconstructs a Block from its wire form. Every carried
// transaction's signature is re-verified, except that when
// allowUnsignedFirstTx is set and the block's index is 0, the first
// transaction (the genesis mint, which has no signer to verify against)
// is taken as-is without any check.
func BlockFromWire(s string, allowUnsignedFirstTx bool) (*Block, error) {
	var wb wireBlock
	if err := json.Unmarshal([]byte(s), &wb); err != nil {
		return nil, fmt.Errorf("malformed wire block: %w", err)
	}

	txs := make([]*Transaction, len(wb.Transactions))
	for i, wf := range wb.Transactions {
		if i == 0 && allowUnsignedFirstTx && wb.Index == 0 {
			txs[i] = NewTransactionAt(wf.Sender, wf.Receiver, wf.Amount, wf.Fee, wf.Timestamp)
			txs[i].Signature = wf.Signature
			continue
		}
		t := NewTransactionAt(wf.Sender, wf.Receiver, wf.Amount, wf.Fee, wf.Timestamp)
		if err := t.AddSignature(wf.Signature); err != nil {
			return nil, fmt.Errorf("block %d transaction %d: %w", wb.Index, i, err)
		}
		txs[i] = t
	}

	return &Block{
		Index:         wb.Index,
		Timestamp:     wb.Timestamp,
		UnixTimestamp: wb.UnixTimestamp,
		PreviousHash:  wb.PreviousHash,
		Nonce:         wb.Nonce,
		Miner:         wb.Miner,
		Transactions:  txs,
		Hashcode:      wb.Hashcode,
		MerkleRoot:    wb.MerkleRoot,
	}, nil
}

// ChainToWire renders an ordered block slice as the wire-form strings
// broadcast for a get_chain response or a replace_chain request.
func ChainToWire(blocks []*Block) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.Wire()
	}
	return out
}

// ChainFromWire reconstructs an ordered block slice from its wire forms.
// Only the first block (index 0, the genesis mint) skips signature
// verification.
func ChainFromWire(wireForms []string) ([]*Block, error) {
	blocks := make([]*Block, len(wireForms))
	for i, s := range wireForms {
		b, err := BlockFromWire(s, i == 0)
		if err != nil {
			return nil, fmt.Errorf("chain block %d: %w", i, err)
		}
		blocks[i] = b
	}
	return blocks, nil
}
