// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mempool provides the data structures the node's single-consumer
// worker loop uses to process transactions: a FIFO that also supports
// pushing a replayed transaction back onto the front, and the
// re-materialization step that preserves a self-authored transaction's
// intent across a changed UTXO landscape.
//
// The FIFO deliberately isn't a channel: a channel can't be pushed onto
// from the front, and fork resolution must be able to replay lost
// transactions ahead of whatever is already queued. It is a slice-backed
// deque, drained by the single worker goroutine, purpose-built for that
// requirement.
package mempool

import "github.com/nbc-chain/nbc/pkg/chain"

// Queue is a FIFO of transactions awaiting the worker, not safe for
// concurrent use on its own; callers hold the node's lock around every
// method call.
type Queue struct {
	items []chain.Transaction
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Len reports how many transactions are queued.
func (q *Queue) Len() int {
	return len(q.items)
}

// PushBack enqueues a transaction behind everything already queued; the
// path for freshly submitted or received transactions.
func (q *Queue) PushBack(tx chain.Transaction) {
	q.items = append(q.items, tx)
}

// PushFront enqueues a transaction ahead of everything already queued;
// the path fork resolution uses to replay a transaction from an abandoned
// block before any newer work.
func (q *Queue) PushFront(tx chain.Transaction) {
	q.items = append([]chain.Transaction{tx}, q.items...)
}

// PopFront removes and returns the oldest queued transaction.
func (q *Queue) PopFront() (chain.Transaction, bool) {
	if len(q.items) == 0 {
		return chain.Transaction{}, false
	}
	tx := q.items[0]
	q.items = q.items[1:]
	return tx, true
}

// RemoveByID drops every queued transaction whose id is in ids. Used by
// block-arrival handling to drop self-authored transactions a peer's
// block has already confirmed.
func (q *Queue) RemoveByID(ids map[string]struct{}) {
	kept := q.items[:0]
	for _, tx := range q.items {
		if _, drop := ids[tx.ID]; !drop {
			kept = append(kept, tx)
		}
	}
	q.items = kept
}

// Filter keeps only the transactions for which keep reports true, in
// their original relative order. Used when a locally mined block seals:
// every non-self-authored transaction is dropped from the queue since
// its owner will rebroadcast or re-mine it.
func (q *Queue) Filter(keep func(chain.Transaction) bool) {
	kept := q.items[:0]
	for _, tx := range q.items {
		if keep(tx) {
			kept = append(kept, tx)
		}
	}
	q.items = kept
}
