// Copyright (c) 2025 The Akoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rpc is the request router (C9): it decodes a peer.Request's
// path and body, dispatches to the owning Node operation, and encodes
// the result as a peer.Response. It is the only package that knows the
// wire shape of every named operation in spec.md §6's path table.
package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/akoin-project/akoin/mempool"
	"github.com/akoin-project/akoin/peer"
	"github.com/akoin-project/akoin/wire"
)

// Router dispatches decoded requests to a single Node.
type Router struct {
	node *mempool.Node
}

// New creates a router over node.
func New(node *mempool.Node) *Router {
	return &Router{node: node}
}

// Handle decodes req's body for its path and dispatches to the matching
// operation, returning ErrUnknownPath wrapped in a failure Response for
// anything else.
func (rt *Router) Handle(req peer.Request) peer.Response {
	handler, ok := handlers[req.Path]
	if !ok {
		log.Debugf("unknown path requested: %s", req.Path)
		return peer.NewResponse(false, fmt.Sprintf("%v: %s", ErrUnknownPath, req.Path))
	}
	return handler(rt, req.Data)
}

type handlerFunc func(rt *Router, data json.RawMessage) peer.Response

// handlers maps each spec.md §6 path to its implementation. Declared at
// package scope so Handle's lookup never allocates.
var handlers = map[string]handlerFunc{
	"mine":                      (*Router).handleMine,
	"get_chain":                 (*Router).handleGetChain,
	"get_chain_length":          (*Router).handleGetChainLength,
	"get_chain_address":         (*Router).handleGetChainAddress,
	"add_transaction":           (*Router).handleAddTransaction,
	"replace_chain":             (*Router).handleReplaceChain,
	"get_nodes":                 (*Router).handleGetNodes,
	"register_node":             (*Router).handleRegisterNode,
	"register_new_transactions": (*Router).handleRegisterNewTransactions,
	"inclusion_proof":           (*Router).handleInclusionProof,
}

func (rt *Router) handleMine(_ json.RawMessage) peer.Response {
	selected, err := rt.node.MineNewBlock()
	if err != nil {
		return peer.NewResponse(false, err.Error())
	}
	if selected == nil {
		return peer.NewResponse(true, "nothing to mine").With("transactions", []string{})
	}
	forms := make([]string, len(selected))
	for i, t := range selected {
		forms[i] = t.Wire()
	}
	return peer.NewResponse(true, "new block forged").With("transactions", forms)
}

func (rt *Router) handleGetChain(_ json.RawMessage) peer.Response {
	return peer.NewResponse(true, "ok").With("chain", wire.ChainToWire(rt.node.GetChain()))
}

func (rt *Router) handleGetChainLength(_ json.RawMessage) peer.Response {
	return peer.NewResponse(true, "ok").With("chain-length", rt.node.GetChainLength())
}

func (rt *Router) handleGetChainAddress(_ json.RawMessage) peer.Response {
	return peer.NewResponse(true, "ok").With("chain-address", rt.node.Address())
}

type addTransactionRequest struct {
	Receiver string `json:"receiver"`
	Amount   int64  `json:"amount"`
	Fee      int64  `json:"fee"`
}

func (rt *Router) handleAddTransaction(data json.RawMessage) peer.Response {
	var req addTransactionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return peer.NewResponse(false, fmt.Sprintf("malformed add_transaction body: %v", err))
	}

	t, err := rt.node.CreateSignedTransaction(req.Receiver, req.Amount, req.Fee)
	if err != nil {
		return peer.NewResponse(false, err.Error())
	}
	rt.node.BroadcastMempool()
	return peer.NewResponse(true, "transaction added").With("transaction", t.Wire())
}

// replaceChainRequest is the replace_chain body: the candidate chain's
// block wire forms as a bare JSON array, as Node.MineNewBlock broadcasts it.
type replaceChainRequest []string

func (rt *Router) handleReplaceChain(data json.RawMessage) peer.Response {
	var req replaceChainRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return peer.NewResponse(false, fmt.Sprintf("malformed replace_chain body: %v", err))
	}

	blocks, err := wire.ChainFromWire(req)
	if err != nil {
		return peer.NewResponse(false, err.Error())
	}
	replaced, err := rt.node.ReplaceChain(blocks)
	if err != nil {
		return peer.NewResponse(false, err.Error())
	}
	return peer.NewResponse(true, "ok").With("replaced", replaced)
}

func (rt *Router) handleGetNodes(_ json.RawMessage) peer.Response {
	return peer.NewResponse(true, "ok").With("nodes", rt.node.GetNodes())
}

// registerNodeRequest is the register_node body: the caller's
// {blockchain address: web address} pair as a flat JSON object, as
// Node.RegisterWithPeer sends it.
type registerNodeRequest map[string]string

func (rt *Router) handleRegisterNode(data json.RawMessage) peer.Response {
	var req registerNodeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return peer.NewResponse(false, fmt.Sprintf("malformed register_node body: %v", err))
	}

	var self map[string]string
	for addr, web := range req {
		added, err := rt.node.AddNode(addr, web)
		if err != nil {
			return peer.NewResponse(false, err.Error())
		}
		self = added
	}
	return peer.NewResponse(true, "node registered").With("node", self)
}

// registerNewTransactionsRequest is the register_new_transactions body:
// the transactions' wire forms as a bare JSON array, as
// Node.BroadcastMempool sends it.
type registerNewTransactionsRequest []string

func (rt *Router) handleRegisterNewTransactions(data json.RawMessage) peer.Response {
	var req registerNewTransactionsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return peer.NewResponse(false, fmt.Sprintf("malformed register_new_transactions body: %v", err))
	}
	rt.node.ReceiveTransactions(req)
	return peer.NewResponse(true, "ok")
}

type inclusionProofRequest struct {
	BlockIndex int `json:"block_index"`
	TxIndex    int `json:"tx_index"`
}

func (rt *Router) handleInclusionProof(data json.RawMessage) peer.Response {
	var req inclusionProofRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return peer.NewResponse(false, fmt.Sprintf("malformed inclusion_proof body: %v", err))
	}

	proof, err := rt.node.GenerateInclusionProof(req.BlockIndex, req.TxIndex)
	if err != nil {
		return peer.NewResponse(false, err.Error())
	}
	return peer.NewResponse(true, "ok").
		With("transaction", proof.Transaction.Wire()).
		With("tx_index", proof.TxIndex).
		With("proof", proof.Proof)
}
