// Copyright (c) 2025 The Akoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wire holds the two serializable record types at the core of the
// ledger (C3, C4) — Transaction and Block — along with their canonical
// and wire encodings. "Canonical form" is the deterministic, sorted-key
// textual encoding that is signed and hashed; "wire form" is what
// actually crosses the network.
package wire

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/akoin-project/akoin/crypto"
)

// Transaction is a signed value transfer from Sender to Receiver.
// Timestamp is pinned at construction and never changes afterward; the
// signature is attached separately once the canonical form has been
// signed by the sender's private key.
type Transaction struct {
	Sender    string
	Receiver  string
	Amount    int64
	Fee       int64
	Timestamp float64
	Signature string
}

// NewTransaction builds an unsigned transaction with the timestamp fixed
// to the current wall-clock time.
func NewTransaction(sender, receiver string, amount, fee int64) *Transaction {
	return NewTransactionAt(sender, receiver, amount, fee, float64(time.Now().UnixNano())/1e9)
}

// NewTransactionAt builds an unsigned transaction with an explicit
// timestamp, used when reconstructing a transaction from its wire form so
// the original signing instant survives the round trip.
func NewTransactionAt(sender, receiver string, amount, fee int64, timestamp float64) *Transaction {
	return &Transaction{
		Sender:    sender,
		Receiver:  receiver,
		Amount:    amount,
		Fee:       fee,
		Timestamp: timestamp,
	}
}

// Canonical returns the JSON projection signed and hashed for a
// transaction. A Go map marshals with its keys already sorted
// lexicographically, which is exactly the canonical-form contract in
// spec.md §3 — no separate sorting pass is needed.
func (t *Transaction) Canonical() string {
	obj := map[string]any{
		"sender":    t.Sender,
		"receiver":  t.Receiver,
		"amount":    t.Amount,
		"fee":       t.Fee,
		"timestamp": t.Timestamp,
	}
	b, err := json.Marshal(obj)
	if err != nil {
		// obj's value types are all JSON-trivial; this cannot fail.
		panic(fmt.Sprintf("wire: canonical encoding failed: %v", err))
	}
	return string(b)
}

// AddSignature attaches signature to the transaction, refusing unless it
// verifies against the transaction's canonical form and sender.
func (t *Transaction) AddSignature(signature string) error {
	if !crypto.Verify(t.Canonical(), signature, t.Sender) {
		log.Debugf("signature did not verify for transaction from %s", t.Sender)
		return fmt.Errorf("%w: signature does not verify for sender", ErrBadTransaction)
	}
	t.Signature = signature
	return nil
}

// Sign signs the transaction's canonical form with priv and attaches the
// resulting signature.
func (t *Transaction) Sign(priv *crypto.KeyPair) {
	t.Signature = crypto.Sign(priv.Private, t.Canonical())
}

// wireForm is the transmissible encoding of a Transaction: its canonical
// fields as flat JSON fields, plus the string-encoded signature. The fee
// appears once, as one of those fields; it is not carried a second time.
type wireForm struct {
	Sender    string  `json:"sender"`
	Receiver  string  `json:"receiver"`
	Amount    int64   `json:"amount"`
	Fee       int64   `json:"fee"`
	Timestamp float64 `json:"timestamp"`
	Signature string  `json:"signature"`
}

// Wire returns the transaction's wire-form string: its identity for
// mempool membership and the payload carried over the peer transport.
func (t *Transaction) Wire() string {
	wf := wireForm{
		Sender:    t.Sender,
		Receiver:  t.Receiver,
		Amount:    t.Amount,
		Fee:       t.Fee,
		Timestamp: t.Timestamp,
		Signature: t.Signature,
	}
	b, err := json.Marshal(wf)
	if err != nil {
		panic(fmt.Sprintf("wire: wire-form encoding failed: %v", err))
	}
	return string(b)
}

// TransactionFromWire reconstructs a Transaction from its wire form,
// re-running signature verification against the recovered canonical
// form. It fails with ErrBadTransaction on a malformed payload or a
// signature that no longer verifies.
func TransactionFromWire(s string) (*Transaction, error) {
	var wf wireForm
	if err := json.Unmarshal([]byte(s), &wf); err != nil {
		return nil, fmt.Errorf("%w: malformed wire transaction: %v", ErrBadTransaction, err)
	}

	t := NewTransactionAt(wf.Sender, wf.Receiver, wf.Amount, wf.Fee, wf.Timestamp)
	if err := t.AddSignature(wf.Signature); err != nil {
		return nil, err
	}
	return t, nil
}
