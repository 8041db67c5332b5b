// Copyright (c) 2025 The Akoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import (
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/akoin-project/akoin/chaincfg"
)

// dialTimeout bounds how long RegisterNewNode waits for a new outbound
// connection before giving up.
const dialTimeout = 5 * time.Second

// IsURLValid reports whether raw parses as an absolute URL with both a
// scheme and a host, the same check the original implementation's
// helper_functions.is_url_valid performs before a node is trusted as a
// peer's web address.
func IsURLValid(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// Registry is the socket-level peer directory (C8): the set of peer web
// addresses this node has dialed, and the live connection for each. It
// has no notion of blockchain addresses — that pairing is the node's
// peer table (C7); Registry only ever sees URLs and sockets.
type Registry struct {
	mu     sync.Mutex
	conns  map[string]net.Conn
	params *chaincfg.Params
}

// NewRegistry creates an empty peer registry.
func NewRegistry(params *chaincfg.Params) *Registry {
	return &Registry{
		conns:  make(map[string]net.Conn),
		params: params,
	}
}

// RegisterNewNode dials webAddress and adds it to the registry. It is
// idempotent on webAddress: a second call with an already-registered URL
// is a no-op that reports false rather than re-dialing.
func (r *Registry) RegisterNewNode(webAddress string) (bool, error) {
	if !IsURLValid(webAddress) {
		return false, fmt.Errorf("%w: invalid web address %q", ErrBadPeer, webAddress)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[webAddress]; ok {
		log.Debugf("peer already connected: %s", webAddress)
		return false, nil
	}

	u, err := url.Parse(webAddress)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBadPeer, err)
	}
	conn, err := net.DialTimeout("tcp", u.Host, dialTimeout)
	if err != nil {
		return false, fmt.Errorf("peer: dial %s: %w", webAddress, err)
	}
	r.conns[webAddress] = conn
	log.Infof("new socket connection: %s", webAddress)
	return true, nil
}

// URLs returns the currently registered peer web addresses.
func (r *Registry) URLs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	urls := make([]string, 0, len(r.conns))
	for u := range r.conns {
		urls = append(urls, u)
	}
	return urls
}

// Request sends path/data to webAddress and waits for the decoded
// response. webAddress must already be registered.
func (r *Registry) Request(webAddress, path string, data any) (Response, error) {
	r.mu.Lock()
	conn, ok := r.conns[webAddress]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("peer: %s is not a registered peer", webAddress)
	}

	payload, err := EncodeRequest(path, data)
	if err != nil {
		return nil, err
	}
	if err := WriteFrame(conn, payload, r.params.HeaderSize); err != nil {
		return nil, err
	}
	respPayload, err := ReadFrame(conn, r.params.HeaderSize, r.params.BufferSize, r.params.MaxMessageSize)
	if err != nil {
		return nil, err
	}
	return DecodeResponse(respPayload)
}

// Broadcast sends path/data to every registered peer. Broadcasts do not
// retry and do not wait for or return responses; a peer whose send fails
// is logged and skipped, matching spec.md §5's no-retry discipline.
func (r *Registry) Broadcast(path string, data any) {
	payload, err := EncodeRequest(path, data)
	if err != nil {
		log.Errorf("broadcast %s: encode failed: %v", path, err)
		return
	}

	r.mu.Lock()
	conns := make(map[string]net.Conn, len(r.conns))
	for u, c := range r.conns {
		conns[u] = c
	}
	r.mu.Unlock()

	for url, conn := range conns {
		if err := WriteFrame(conn, payload, r.params.HeaderSize); err != nil {
			log.Warnf("broadcast %s to %s failed: %v", path, url, err)
			continue
		}
	}
}
