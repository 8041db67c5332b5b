package rpc

import (
	"encoding/json"
	"testing"

	"github.com/akoin-project/akoin/chaincfg"
	"github.com/akoin-project/akoin/mempool"
	"github.com/akoin-project/akoin/peer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*Router, *mempool.Node) {
	t.Helper()
	node, err := mempool.NewNode("http://127.0.0.1:0", chaincfg.TestParams())
	require.NoError(t, err)
	return New(node), node
}

func request(t *testing.T, path string, data any) peer.Request {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return peer.Request{Path: path, Data: raw}
}

func TestHandleUnknownPath(t *testing.T) {
	router, _ := newTestRouter(t)
	resp := router.Handle(peer.Request{Path: "not_a_real_path"})
	assert.False(t, resp.Success())
}

func TestHandleGetChainLength(t *testing.T) {
	router, _ := newTestRouter(t)
	resp := router.Handle(request(t, "get_chain_length", nil))
	assert.True(t, resp.Success())
	assert.EqualValues(t, 1, resp["chain-length"])
}

func TestHandleGetChainAddress(t *testing.T) {
	router, node := newTestRouter(t)
	resp := router.Handle(request(t, "get_chain_address", nil))
	assert.True(t, resp.Success())
	assert.Equal(t, node.Address(), resp["chain-address"])
}

func TestHandleAddTransactionThenMine(t *testing.T) {
	router, node := newTestRouter(t)

	addResp := router.Handle(request(t, "add_transaction", map[string]any{
		"receiver": "recipient-address",
		"amount":   10,
		"fee":      1,
	}))
	require.True(t, addResp.Success())
	assert.Equal(t, 1, node.MempoolSize())

	mineResp := router.Handle(request(t, "mine", nil))
	require.True(t, mineResp.Success())
	assert.Equal(t, 2, node.GetChainLength())
}

func TestHandleGetChainReturnsWireForms(t *testing.T) {
	router, _ := newTestRouter(t)
	resp := router.Handle(request(t, "get_chain", nil))
	require.True(t, resp.Success())

	forms, ok := resp["chain"].([]string)
	require.True(t, ok)
	assert.Len(t, forms, 1)
}

func TestHandleReplaceChainRejectsMalformedBody(t *testing.T) {
	router, _ := newTestRouter(t)
	resp := router.Handle(peer.Request{Path: "replace_chain", Data: json.RawMessage(`not json`)})
	assert.False(t, resp.Success())
}

func TestHandleGetNodes(t *testing.T) {
	router, _ := newTestRouter(t)
	resp := router.Handle(request(t, "get_nodes", nil))
	assert.True(t, resp.Success())
	assert.Empty(t, resp["nodes"])
}
