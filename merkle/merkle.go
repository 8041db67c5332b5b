// Copyright (c) 2025 The Akoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package merkle builds a layered Merkle tree over an ordered sequence of
// textual values and emits/validates inclusion proofs (C2). Inputs are
// expected to already be in their canonical textual form (for Akoin, a
// transaction's canonical serialization); the tree itself only ever deals
// in strings and their SHA-256 hex digests.
package merkle

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Tree is the sequence of layers from leaves upward. An empty input
// produces a Tree with zero layers; a single-element input produces a
// Tree with exactly one layer (the leaf layer, which is also the root).
type Tree struct {
	Layers [][]string
}

// hashHex returns the hex-encoded SHA-256 digest of s's UTF-8 bytes.
func hashHex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// LeafHash returns the leaf-layer hash of a single item, the same hash
// New would compute for that item at its position. Callers validating an
// inclusion proof compute this once for the transaction in hand and feed
// it to VerifyProof rather than rebuilding the whole tree.
func LeafHash(item string) string {
	return hashHex(item)
}

// New builds a Tree over items. Layers are built bottom-up: the leaf
// layer is the per-item hash; each subsequent layer pairs adjacent nodes
// and hashes their concatenation, duplicating the final node of an
// odd-length layer to pair with itself ("same-sibling padding").
func New(items []string) *Tree {
	if len(items) == 0 {
		log.Debug("merkle tree built over zero items")
		return &Tree{}
	}

	leaves := make([]string, len(items))
	for i, item := range items {
		leaves[i] = hashHex(item)
	}
	if len(leaves) == 1 {
		return &Tree{Layers: [][]string{leaves}}
	}

	layers := [][]string{leaves}
	below := leaves
	for len(below) > 1 {
		next := make([]string, 0, (len(below)+1)/2)
		for i := 0; i < len(below); i += 2 {
			if i+1 < len(below) {
				next = append(next, hashHex(below[i]+below[i+1]))
			} else {
				next = append(next, hashHex(below[i]+below[i]))
			}
		}
		layers = append(layers, next)
		below = next
	}

	log.Debugf("merkle tree built: %d leaves, %d layers", len(items), len(layers))
	return &Tree{Layers: layers}
}

// Root returns the tree's top hash, or the empty string for an empty
// tree.
func (t *Tree) Root() string {
	if len(t.Layers) == 0 {
		return ""
	}
	last := t.Layers[len(t.Layers)-1]
	if len(last) == 0 {
		return ""
	}
	return last[0]
}

// Proof returns the inclusion proof for the leaf at index: the sibling at
// every layer from the leaves to the root, with the root itself appended
// as the final element.
func (t *Tree) Proof(index int) ([]string, error) {
	if len(t.Layers) == 0 {
		return nil, fmt.Errorf("merkle: cannot prove membership in an empty tree")
	}
	if index < 0 || index >= len(t.Layers[0]) {
		return nil, fmt.Errorf("merkle: leaf index %d out of range [0,%d)", index, len(t.Layers[0]))
	}

	proof := make([]string, 0, len(t.Layers)+1)
	idx := index
	for _, layer := range t.Layers {
		if idx%2 == 0 {
			if len(layer) == idx+1 {
				// No right sibling: odd-length layer, idx is last.
				proof = append(proof, layer[idx])
			} else {
				proof = append(proof, layer[idx+1])
			}
		} else {
			proof = append(proof, layer[idx-1])
		}
		idx /= 2
	}
	return proof, nil
}

// VerifyProof reports whether proof demonstrates that the leaf whose hash
// is leafHash sits at index in the tree whose root is proof's final
// element. Any non-trivial reordering of proof, a wrong index, or a
// leafHash that doesn't match the original leaf will make this return
// false.
func VerifyProof(leafHash string, index int, proof []string) bool {
	if len(proof) == 0 {
		return false
	}
	root := proof[len(proof)-1]
	current := leafHash
	idx := index
	for i := 0; i < len(proof)-1; i++ {
		sibling := proof[i]
		if idx%2 == 0 {
			current = hashHex(current + sibling)
		} else {
			current = hashHex(sibling + current)
		}
		idx /= 2
	}
	return current == root
}
