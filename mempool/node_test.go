package mempool

import (
	"testing"
	"time"

	"github.com/akoin-project/akoin/chaincfg"
	"github.com/akoin-project/akoin/wire"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNode(t *testing.T) *Node {
	t.Helper()
	n, err := NewNode("http://127.0.0.1:0", chaincfg.TestParams())
	require.NoError(t, err)
	return n
}

func TestNewNodeHasGenesisBalance(t *testing.T) {
	n := newTestNode(t)
	assert.Equal(t, n.params.InitialCurrencySupply, n.Balance())
	assert.Equal(t, 1, n.GetChainLength())
}

func TestCreateSignedTransactionInsertsIntoMempool(t *testing.T) {
	n := newTestNode(t)

	tx, err := n.CreateSignedTransaction("receiver-address", 100, 1)
	require.NoError(t, err)
	assert.NotEmpty(t, tx.Signature)
	assert.Equal(t, 1, n.MempoolSize())
}

func TestCreateSignedTransactionRejectsInsufficientBalance(t *testing.T) {
	n := newTestNode(t)

	_, err := n.CreateSignedTransaction("receiver-address", n.params.InitialCurrencySupply+1, 0)
	assert.ErrorIs(t, err, wire.ErrBadTransaction)
	assert.Zero(t, n.MempoolSize())
}

func TestCreateSignedTransactionRejectsNegativeValues(t *testing.T) {
	n := newTestNode(t)
	_, err := n.CreateSignedTransaction("receiver-address", -1, 0)
	assert.ErrorIs(t, err, wire.ErrBadTransaction)
}

func TestAddTransactionIsIdempotent(t *testing.T) {
	n := newTestNode(t)
	tx, err := n.CreateSignedTransaction("receiver-address", 10, 1)
	require.NoError(t, err)

	added, err := n.AddTransaction(tx.Wire())
	require.NoError(t, err)
	assert.False(t, added, "transaction was already in the mempool")
}

func TestMineNewBlockEmptiesMempoolAndExtendsChain(t *testing.T) {
	n := newTestNode(t)
	_, err := n.CreateSignedTransaction("receiver-address", 50, 2)
	require.NoError(t, err)

	selected, err := n.MineNewBlock()
	require.NoError(t, err)
	require.Len(t, selected, 1)
	t.Logf("selected transactions:\n%s", spew.Sdump(selected))

	assert.Equal(t, 2, n.GetChainLength())
	assert.Zero(t, n.MempoolSize())
}

func TestMineNewBlockWithEmptyMempoolIsNoop(t *testing.T) {
	n := newTestNode(t)
	selected, err := n.MineNewBlock()
	require.NoError(t, err)
	assert.Nil(t, selected)
	assert.Equal(t, 1, n.GetChainLength())
}

func TestReplaceChainPrunesExecutedMempoolEntries(t *testing.T) {
	sender := newTestNode(t)
	tx, err := sender.CreateSignedTransaction("receiver-address", 10, 1)
	require.NoError(t, err)

	selected, err := sender.MineNewBlock()
	require.NoError(t, err)
	require.Len(t, selected, 1)

	// The sender has no balance on the receiver's own chain, so the entry
	// is placed in the receiver's mempool directly rather than through
	// AddTransaction's balance check.
	receiver := newTestNode(t)
	receiver.mu.Lock()
	receiver.mempool[tx.Wire()] = tx
	receiver.mu.Unlock()
	require.Equal(t, 1, receiver.MempoolSize())

	replaced, err := receiver.ReplaceChain(sender.GetChain())
	require.NoError(t, err)
	assert.True(t, replaced, "receiver's 1-block chain is shorter than sender's 2-block chain")
	assert.Zero(t, receiver.MempoolSize())
}

func TestCleanupTransactionsEvictsExpiredEntries(t *testing.T) {
	n := newTestNode(t)
	n.params.TransactionMaxAge = 0

	_, err := n.CreateSignedTransaction("receiver-address", 1, 0)
	require.NoError(t, err)
	require.Equal(t, 1, n.MempoolSize())

	time.Sleep(2 * time.Millisecond)
	n.CleanupTransactions(false)
	assert.Zero(t, n.MempoolSize())
}

func TestAddNodeReturnsSelfAndIsIdempotent(t *testing.T) {
	n := newTestNode(t)
	peerAddr := "http://127.0.0.1:9999"

	validPeerAddress := mustPublicKeyString(t)
	self, err := n.AddNode(validPeerAddress, peerAddr)
	require.NoError(t, err)
	assert.Equal(t, n.webAddress, self[n.address])

	self2, err := n.AddNode(validPeerAddress, peerAddr)
	require.NoError(t, err)
	assert.Equal(t, self, self2)
	assert.Len(t, n.GetNodes(), 1)
}

func mustPublicKeyString(t *testing.T) string {
	t.Helper()
	n := newTestNode(t)
	return n.Address()
}
