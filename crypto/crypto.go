// Copyright (c) 2025 The Akoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package crypto is the node's opaque cryptographic capability (C1): key
// generation, signing, verification, and the string (de)serialization of
// public keys and signatures that the rest of the module treats as
// tagged byte strings. Every other package imports only this package's
// exported functions and never reaches into secp256k1 directly, so the
// curve could be swapped without touching the ledger logic.
package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// AddressLength is the length, in hex characters, of a public-key string:
// a compressed secp256k1 point (33 bytes) hex-encoded. The genesis mint's
// all-zeros sender address is padded/truncated to this same length so it
// can never collide with a real address.
const AddressLength = 66

// KeyPair is a generated identity: a private key and the public key it
// derives, plus the public key's canonical string form.
type KeyPair struct {
	Private *secp256k1.PrivateKey
	Public  *secp256k1.PublicKey
}

// PublicKeyString returns the pair's public key in its canonical, opaque
// string form.
func (kp *KeyPair) PublicKeyString() string {
	return PublicKeyString(kp.Public)
}

// GenerateKeyPair creates a fresh secp256k1 identity. Keys are generated
// once at node creation and never rotated (spec.md §3 lifecycle).
func GenerateKeyPair() (*KeyPair, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key pair: %w", err)
	}
	log.Debug("generated new key pair")
	return &KeyPair{Private: priv, Public: priv.PubKey()}, nil
}

// PublicKeyString encodes a public key as its opaque address string: the
// hex of its compressed SEC1 encoding.
func PublicKeyString(pub *secp256k1.PublicKey) string {
	return hex.EncodeToString(pub.SerializeCompressed())
}

// PublicKeyFromString decodes an address string back into a public key.
func PublicKeyFromString(s string) (*secp256k1.PublicKey, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode public key string: %w", err)
	}
	pub, err := secp256k1.ParsePubKey(raw)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return pub, nil
}

// IsPublicKeyStringValid reports whether s decodes to a valid public key.
// Used by the peer registry to reject BadPeer registrations.
func IsPublicKeyStringValid(s string) bool {
	_, err := PublicKeyFromString(s)
	return err == nil
}

// ZeroAddress is the all-zeros sender used on the genesis mint
// transaction. It is the same length as a real public-key string so it
// can never be confused with one, but it decodes to no valid key.
func ZeroAddress() string {
	return strings.Repeat("0", AddressLength)
}

// Sign hashes message with SHA-256 and produces a deterministic-form
// DER-encoded ECDSA signature, hex encoded for wire transport.
func Sign(priv *secp256k1.PrivateKey, message string) string {
	hash := sha256.Sum256([]byte(message))
	sig := ecdsa.Sign(priv, hash[:])
	return hex.EncodeToString(sig.Serialize())
}

// SignatureFromString decodes a hex DER signature string.
func SignatureFromString(s string) (*ecdsa.Signature, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode signature string: %w", err)
	}
	sig, err := ecdsa.ParseDERSignature(raw)
	if err != nil {
		return nil, fmt.Errorf("parse signature: %w", err)
	}
	return sig, nil
}

// Verify reports whether signature is a valid signature of message under
// the public key encoded by publicKeyString. Any malformed input
// (unparsable key or signature) is treated as verification failure rather
// than propagated as an error, matching the opaque-capability contract in
// spec.md §1.
func Verify(message, signature, publicKeyString string) bool {
	pub, err := PublicKeyFromString(publicKeyString)
	if err != nil {
		log.Debugf("verify: bad public key string: %v", err)
		return false
	}
	sig, err := SignatureFromString(signature)
	if err != nil {
		log.Debugf("verify: bad signature string: %v", err)
		return false
	}
	hash := sha256.Sum256([]byte(message))
	return sig.Verify(hash[:], pub)
}
