// Copyright (c) 2025 The Akoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"

	"github.com/akoin-project/akoin/account"
	"github.com/akoin-project/akoin/chain"
	"github.com/akoin-project/akoin/crypto"
	"github.com/akoin-project/akoin/mempool"
	"github.com/akoin-project/akoin/merkle"
	"github.com/akoin-project/akoin/peer"
	"github.com/akoin-project/akoin/rpc"
	"github.com/akoin-project/akoin/wire"
	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"
)

// logRotator rotates the node's log file once it reaches a fixed size,
// the same pattern btcd uses so an always-on node never fills a disk
// with one unbounded file.
var logRotator *rotator.Rotator

var backendLog = btclog.NewBackend(logWriter{})

var (
	cryptoLog  = backendLog.Logger("CRPT")
	merkleLog  = backendLog.Logger("MRKL")
	wireLog    = backendLog.Logger("WIRE")
	chainLog   = backendLog.Logger("CHAN")
	accountLog = backendLog.Logger("ACCT")
	peerLog    = backendLog.Logger("PEER")
	mempoolLog = backendLog.Logger("NODE")
	rpcLog     = backendLog.Logger("RPCS")
	mainLog    = backendLog.Logger("AKND")
)

// subsystemLoggers maps each subsystem tag to its logger, so
// setLogLevels can drive every package's logger from one
// config-parsed level string.
var subsystemLoggers = map[string]btclog.Logger{
	"CRPT": cryptoLog,
	"MRKL": merkleLog,
	"WIRE": wireLog,
	"CHAN": chainLog,
	"ACCT": accountLog,
	"PEER": peerLog,
	"NODE": mempoolLog,
	"RPCS": rpcLog,
	"AKND": mainLog,
}

func init() {
	crypto.UseLogger(cryptoLog)
	merkle.UseLogger(merkleLog)
	wire.UseLogger(wireLog)
	chain.UseLogger(chainLog)
	account.UseLogger(accountLog)
	peer.UseLogger(peerLog)
	mempool.UseLogger(mempoolLog)
	rpc.UseLogger(rpcLog)
}

// logWriter implements io.Writer and outputs to both standard output and
// the rotating log file.
type logWriter struct{}

func (logWriter) Write(p []byte) (n int, err error) {
	os.Stdout.Write(p)
	if logRotator != nil {
		logRotator.Write(p)
	}
	return len(p), nil
}

// initLogRotator initializes the rolling file logger at logFile, rotating
// the log every 10 MiB and keeping the most recent few generations.
func initLogRotator(logFile string) error {
	logDir, _ := filepath.Split(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return err
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return err
	}
	logRotator = r
	return nil
}

// setLogLevel sets the logging level for a single subsystem tag.
func setLogLevel(subsystemID, logLevel string) {
	logger, ok := subsystemLoggers[subsystemID]
	if !ok {
		return
	}
	level, _ := btclog.LevelFromString(logLevel)
	logger.SetLevel(level)
}

// setLogLevels sets every subsystem's logging level.
func setLogLevels(logLevel string) {
	for id := range subsystemLoggers {
		setLogLevel(id, logLevel)
	}
}
