// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package peer fans transactions and blocks out to the rest of the ring
// over HTTP, and answers the chain-comparison queries fork resolution
// needs. Every call is best-effort: an unreachable peer is logged and
// skipped rather than treated as fatal, since a down peer should never
// stall broadcast to the rest of the ring.
package peer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/nbc-chain/nbc/pkg/chain"
	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds every outbound peer call so one unreachable peer
// can't stall a broadcast indefinitely.
const DefaultTimeout = 3 * time.Second

// Broadcaster fans a transaction or block out to every other ring member.
// pkg/node depends on this interface, not on HTTPClient directly, so
// tests can wire three nodes together with an in-process fake instead of
// real sockets.
type Broadcaster interface {
	BroadcastTransaction(ctx context.Context, peers chain.Ring, selfID int, tx chain.Transaction)
	BroadcastBlock(ctx context.Context, peers chain.Ring, selfID int, b chain.Block)
}

// ChainLength is the scalable fork-resolution probe response: a peer's
// chain length plus the hash of every block it holds, used to compute
// how many trailing blocks are actually missing instead of refetching
// the whole chain.
type ChainLength struct {
	Length int      `json:"length"`
	Hashes []string `json:"chain"`
}

// ChainSnapshot is the non-scalable fork-resolution probe response: a
// peer's full confirmed chain plus its open current block.
type ChainSnapshot struct {
	Chain        chain.Chain `json:"chain"`
	CurrentBlock chain.Block `json:"current_block"`
}

// Querier asks peers for the chain-comparison data fork resolution
// needs, in both the plain full-chain form and the scalable
// suffix-only form.
type Querier interface {
	QueryLength(ctx context.Context, p chain.RingEntry) (ChainLength, bool)
	QueryChain(ctx context.Context, p chain.RingEntry) (ChainSnapshot, bool)
	QuerySuffix(ctx context.Context, p chain.RingEntry, n int) (ChainSnapshot, bool)
}

// HTTPClient is the production Broadcaster/Querier, talking JSON over
// plain net/http.
type HTTPClient struct {
	Client *http.Client
	Log    *logrus.Entry
	NodeID int
}

// NewHTTPClient returns a client bounding every call to DefaultTimeout.
func NewHTTPClient(nodeID int, log *logrus.Entry) *HTTPClient {
	return &HTTPClient{
		Client: &http.Client{Timeout: DefaultTimeout},
		Log:    log,
		NodeID: nodeID,
	}
}

func peerURL(p chain.RingEntry, path string) string {
	return fmt.Sprintf("http://%s:%d%s", p.IP, p.Port, path)
}

func (c *HTTPClient) post(ctx context.Context, p chain.RingEntry, path string, body any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, peerURL(p, path), bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("peer %s%s: status %d", peerURL(p, ""), path, resp.StatusCode)
	}
	return nil
}

func (c *HTTPClient) get(ctx context.Context, p chain.RingEntry, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, peerURL(p, path), nil)
	if err != nil {
		return err
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("peer %s%s: status %d", peerURL(p, ""), path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// BroadcastTransaction sends tx to every ring member besides selfID,
// concurrently, tolerating unreachable peers.
func (c *HTTPClient) BroadcastTransaction(ctx context.Context, peers chain.Ring, selfID int, tx chain.Transaction) {
	c.fanOut(peers, selfID, func(p chain.RingEntry) {
		body := map[string]chain.Transaction{"transaction": tx}
		if err := c.post(ctx, p, "/transaction/receive", body); err != nil {
			c.logSkip(p, "broadcast transaction", err)
		}
	})
}

// BroadcastBlock sends b to every ring member besides selfID.
func (c *HTTPClient) BroadcastBlock(ctx context.Context, peers chain.Ring, selfID int, b chain.Block) {
	c.fanOut(peers, selfID, func(p chain.RingEntry) {
		body := map[string]chain.Block{"block": b}
		if err := c.post(ctx, p, "/block/add", body); err != nil {
			c.logSkip(p, "broadcast block", err)
		}
	})
}

func (c *HTTPClient) fanOut(peers chain.Ring, selfID int, call func(chain.RingEntry)) {
	for _, p := range peers {
		if p.ID == selfID {
			continue
		}
		go call(p)
	}
}

func (c *HTTPClient) logSkip(p chain.RingEntry, action string, err error) {
	if c.Log == nil {
		return
	}
	c.Log.WithFields(logrus.Fields{
		"node_id":   c.NodeID,
		"component": "peer",
		"peer_id":   p.ID,
		"reason":    err.Error(),
	}).Warnf("%s skipped, peer unreachable", action)
}

// QueryLength asks p for its chain length and block-hash list.
func (c *HTTPClient) QueryLength(ctx context.Context, p chain.RingEntry) (ChainLength, bool) {
	var out ChainLength
	if err := c.get(ctx, p, "/chain/length", &out); err != nil {
		c.logSkip(p, "query chain length", err)
		return ChainLength{}, false
	}
	return out, true
}

// QueryChain asks p for its full confirmed chain and open current block.
func (c *HTTPClient) QueryChain(ctx context.Context, p chain.RingEntry) (ChainSnapshot, bool) {
	var out ChainSnapshot
	if err := c.get(ctx, p, "/chain/get", &out); err != nil {
		c.logSkip(p, "query chain", err)
		return ChainSnapshot{}, false
	}
	return out, true
}

// QuerySuffix asks p for its last n confirmed blocks plus its open
// current block, used by the scalable fork-resolution variant once the
// common ancestor's approximate distance is known.
func (c *HTTPClient) QuerySuffix(ctx context.Context, p chain.RingEntry, n int) (ChainSnapshot, bool) {
	var out ChainSnapshot
	if err := c.get(ctx, p, fmt.Sprintf("/chain/get/%d", n), &out); err != nil {
		c.logSkip(p, "query chain suffix", err)
		return ChainSnapshot{}, false
	}
	return out, true
}
