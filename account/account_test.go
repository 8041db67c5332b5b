package account

import (
	"testing"

	"github.com/akoin-project/akoin/chaincfg"
	"github.com/akoin-project/akoin/crypto"
	"github.com/akoin-project/akoin/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTwoBlockChain(t *testing.T) (miner, recipient *crypto.KeyPair, blocks []*wire.Block) {
	t.Helper()
	params := chaincfg.TestParams()

	miner, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	recipient, err = crypto.GenerateKeyPair()
	require.NoError(t, err)

	mint := wire.NewTransaction(crypto.ZeroAddress(), miner.PublicKeyString(), params.InitialCurrencySupply, 0)
	genesis, err := wire.NewBlock(0, []*wire.Transaction{mint}, "0", miner.PublicKeyString(), params)
	require.NoError(t, err)

	tx := wire.NewTransaction(miner.PublicKeyString(), recipient.PublicKeyString(), 100, 5)
	tx.Sign(miner)
	second, err := wire.NewBlock(1, []*wire.Transaction{tx}, genesis.Hashcode, miner.PublicKeyString(), params)
	require.NoError(t, err)

	return miner, recipient, []*wire.Block{genesis, second}
}

func TestBalanceOfFoldsMintTransferAndFee(t *testing.T) {
	miner, recipient, blocks := buildTwoBlockChain(t)

	assert.Equal(t, int64(10000-100), BalanceOf(miner.PublicKeyString(), blocks))
	assert.Equal(t, int64(100), BalanceOf(recipient.PublicKeyString(), blocks))
}

func TestBalanceOfCreditsMinerFee(t *testing.T) {
	params := chaincfg.TestParams()
	miner, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	other, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	mint := wire.NewTransaction(crypto.ZeroAddress(), other.PublicKeyString(), params.InitialCurrencySupply, 0)
	genesis, err := wire.NewBlock(0, []*wire.Transaction{mint}, "0", other.PublicKeyString(), params)
	require.NoError(t, err)

	tx := wire.NewTransaction(other.PublicKeyString(), "someone-else", 10, 3)
	tx.Sign(other)
	second, err := wire.NewBlock(1, []*wire.Transaction{tx}, genesis.Hashcode, miner.PublicKeyString(), params)
	require.NoError(t, err)

	assert.Equal(t, int64(3), BalanceOf(miner.PublicKeyString(), []*wire.Block{genesis, second}))
}

func TestIsTransactionExecutedChecksAllNonGenesisBlocks(t *testing.T) {
	miner, recipient, blocks := buildTwoBlockChain(t)
	executed := blocks[1].Transactions[0]
	assert.True(t, IsTransactionExecuted(executed, blocks))

	unexecuted := wire.NewTransaction(miner.PublicKeyString(), recipient.PublicKeyString(), 1, 0)
	unexecuted.Sign(miner)
	assert.False(t, IsTransactionExecuted(unexecuted, blocks))
}

func TestGenerateAndVerifyInclusionProof(t *testing.T) {
	_, _, blocks := buildTwoBlockChain(t)

	proof, err := GenerateInclusionProof(1, 0, blocks)
	require.NoError(t, err)
	assert.True(t, VerifyInclusion(1, 0, proof.Transaction, proof.Proof, blocks))
}

func TestVerifyInclusionRejectsTamperedTransaction(t *testing.T) {
	miner, recipient, blocks := buildTwoBlockChain(t)

	proof, err := GenerateInclusionProof(1, 0, blocks)
	require.NoError(t, err)

	tampered := wire.NewTransactionAt(miner.PublicKeyString(), recipient.PublicKeyString(), 999, 5, proof.Transaction.Timestamp)
	tampered.Signature = proof.Transaction.Signature
	assert.False(t, VerifyInclusion(1, 0, tampered, proof.Proof, blocks))
}

func TestGenerateInclusionProofOutOfRange(t *testing.T) {
	_, _, blocks := buildTwoBlockChain(t)

	_, err := GenerateInclusionProof(5, 0, blocks)
	assert.Error(t, err)
	_, err = GenerateInclusionProof(1, 5, blocks)
	assert.Error(t, err)
}
