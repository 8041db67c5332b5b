package merkle

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEmptyTree(t *testing.T) {
	tree := New(nil)
	assert.Equal(t, "", tree.Root())

	_, err := tree.Proof(0)
	assert.Error(t, err)
}

func TestSingleLeafTree(t *testing.T) {
	tree := New([]string{"only"})
	assert.Equal(t, LeafHash("only"), tree.Root())

	proof, err := tree.Proof(0)
	require.NoError(t, err)
	assert.True(t, VerifyProof(LeafHash("only"), 0, proof))
}

func TestProofRoundTripAcrossSizes(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 7, 8} {
		n := n
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			items := make([]string, n)
			for i := range items {
				items[i] = fmt.Sprintf("item-%d", i)
			}
			tree := New(items)

			for i, item := range items {
				proof, err := tree.Proof(i)
				require.NoError(t, err)
				assert.True(t, VerifyProof(LeafHash(item), i, proof),
					"leaf %d should verify against root %s", i, tree.Root())
			}
		})
	}
}

func TestVerifyProofRejectsTamper(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}
	tree := New(items)

	proof, err := tree.Proof(2)
	require.NoError(t, err)
	require.True(t, VerifyProof(LeafHash("c"), 2, proof))

	t.Run("WrongLeaf", func(t *testing.T) {
		assert.False(t, VerifyProof(LeafHash("z"), 2, proof))
	})

	t.Run("WrongIndex", func(t *testing.T) {
		assert.False(t, VerifyProof(LeafHash("c"), 1, proof))
	})

	t.Run("TamperedProofElement", func(t *testing.T) {
		tampered := append([]string(nil), proof...)
		tampered[0] = LeafHash("not-a-sibling")
		assert.False(t, VerifyProof(LeafHash("c"), 2, tampered))
	})

	t.Run("EmptyProof", func(t *testing.T) {
		assert.False(t, VerifyProof(LeafHash("c"), 2, nil))
	})
}

func TestProofIndexOutOfRange(t *testing.T) {
	tree := New([]string{"a", "b", "c"})
	_, err := tree.Proof(-1)
	assert.Error(t, err)
	_, err = tree.Proof(3)
	assert.Error(t, err)
}

// TestEveryLeafProvesItsOwnInclusion is a property test over spec.md §8's
// Merkle invariant: for any non-empty set of distinct items, every leaf's
// proof verifies against the tree's own root.
func TestEveryLeafProvesItsOwnInclusion(t *testing.T) {
	rapid.Check(t, func(tt *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(tt, "n")
		items := make([]string, n)
		for i := range items {
			items[i] = rapid.StringN(1, 12, -1).Draw(tt, fmt.Sprintf("item-%d", i)) + fmt.Sprintf("#%d", i)
		}

		tree := New(items)
		leaf := rapid.IntRange(0, n-1).Draw(tt, "leaf")

		proof, err := tree.Proof(leaf)
		if err != nil {
			tt.Fatalf("unexpected error building proof: %v", err)
		}
		if !VerifyProof(LeafHash(items[leaf]), leaf, proof) {
			tt.Fatalf("proof for leaf %d did not verify against root %s", leaf, tree.Root())
		}
	})
}
