// Copyright (c) 2025 The Akoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command akoind runs a single educational Akoin node: it listens for
// framed peer connections, serves the request paths the router
// dispatches, mines blocks from its mempool, and optionally registers
// itself with an existing peer at startup.
package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/akoin-project/akoin/chaincfg"
	"github.com/akoin-project/akoin/mempool"
	"github.com/akoin-project/akoin/peer"
	"github.com/akoin-project/akoin/rpc"
)

// acceptTimeout bounds how long the accept loop blocks between checks of
// the shutdown signal.
const acceptTimeout = 1 * time.Second

// clientTimeout bounds how long a single connection's read or write may
// take before it is abandoned.
const clientTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		mainLog.Errorf("%v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	if err := initLogRotator(filepath.Join(cfg.LogDir, defaultLogFilename)); err != nil {
		return fmt.Errorf("akoind: init log rotator: %w", err)
	}
	setLogLevels(cfg.LogLevel)

	params := chaincfg.MainNetParams()
	params.BlockDifficulty = cfg.Difficulty
	params.MaxBlockTransactions = cfg.MaxBlockTx

	listener, listenAddr, err := listenWithDryRun(cfg.ListenAddr, cfg.DryRun)
	if err != nil {
		return fmt.Errorf("akoind: listen: %w", err)
	}
	defer listener.Close()

	webAddress := "http://" + listenAddr
	node, err := mempool.NewNode(webAddress, params)
	if err != nil {
		return fmt.Errorf("akoind: create node: %w", err)
	}
	router := rpc.New(node)

	if cfg.ConnectPeer != "" {
		if err := node.RegisterWithPeer(cfg.ConnectPeer); err != nil {
			mainLog.Warnf("could not register with %s: %v", cfg.ConnectPeer, err)
		}
	}

	mainLog.Infof("akoind listening at %s, address %s", webAddress, node.Address())

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-interrupt:
			mainLog.Infof("shutdown requested")
			return nil
		default:
		}

		if tc, ok := listener.(*net.TCPListener); ok {
			tc.SetDeadline(time.Now().Add(acceptTimeout))
		}
		conn, err := listener.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			mainLog.Warnf("accept failed: %v", err)
			continue
		}

		go serveClient(conn, router, params)
	}
}

// listenWithDryRun binds addr, or, if dryRun is set and the configured
// port is already taken, retries on each of the next 16 higher ports and
// fails if none of them is free — the supplemented behavior that lets a second local node
// start for a quick demo without editing configuration.
func listenWithDryRun(addr string, dryRun bool) (net.Listener, string, error) {
	l, err := net.Listen("tcp", addr)
	if err == nil {
		return l, l.Addr().String(), nil
	}
	if !dryRun {
		return nil, "", err
	}

	host, portStr, splitErr := net.SplitHostPort(addr)
	if splitErr != nil {
		return nil, "", err
	}
	port, convErr := strconv.Atoi(portStr)
	if convErr != nil {
		return nil, "", err
	}

	for bump := 1; bump <= 16; bump++ {
		candidate := net.JoinHostPort(host, strconv.Itoa(port+bump))
		if l, err := net.Listen("tcp", candidate); err == nil {
			mainLog.Infof("port %s busy, bound %s instead", addr, candidate)
			return l, l.Addr().String(), nil
		}
	}
	return nil, "", fmt.Errorf("akoind: no free port found near %s", addr)
}

// serveClient reads and answers framed requests from conn until it
// closes, enforcing clientTimeout on every read and write.
func serveClient(conn net.Conn, router *rpc.Router, params *chaincfg.Params) {
	defer conn.Close()

	for {
		conn.SetDeadline(time.Now().Add(clientTimeout))

		payload, err := peer.ReadFrame(conn, params.HeaderSize, params.BufferSize, params.MaxMessageSize)
		if err != nil {
			if err != peer.ErrSocketClosed {
				mainLog.Debugf("read frame from %s: %v", conn.RemoteAddr(), err)
			}
			return
		}

		req, err := peer.DecodeRequest(payload)
		if err != nil {
			mainLog.Debugf("decode request from %s: %v", conn.RemoteAddr(), err)
			return
		}

		resp := router.Handle(req)

		respPayload, err := peer.EncodeResponse(resp)
		if err != nil {
			mainLog.Errorf("encode response for %s: %v", req.Path, err)
			return
		}
		conn.SetDeadline(time.Now().Add(clientTimeout))
		if err := peer.WriteFrame(conn, respPayload, params.HeaderSize); err != nil {
			mainLog.Debugf("write frame to %s: %v", conn.RemoteAddr(), err)
			return
		}
	}
}
