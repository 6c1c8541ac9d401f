// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

// RingEntry is one participant's permanent identity: its sequential id,
// its HTTP address, and its public key (which doubles as its wallet
// address).
type RingEntry struct {
	ID        int     `json:"id"`
	IP        string  `json:"ip"`
	Port      int     `json:"port"`
	PublicKey Address `json:"public_key"`
}

// Ring is the sealed roster of participants. Once every node has
// registered, the ring never changes; the bootstrap package is the only
// place new entries get appended, before sealing.
type Ring []RingEntry

// Get looks up a ring member by id.
func (r Ring) Get(id int) (RingEntry, bool) {
	for _, e := range r {
		if e.ID == id {
			return e, true
		}
	}
	return RingEntry{}, false
}

// IndexByAddress recovers a ring member's id from its public key, the
// lookup validateTransaction uses to identify a transaction's sender
// without trusting a claimed id.
func (r Ring) IndexByAddress(addr Address) (int, bool) {
	for _, e := range r {
		if e.PublicKey == addr {
			return e.ID, true
		}
	}
	return 0, false
}

// Clone returns an independent copy of the ring slice.
func (r Ring) Clone() Ring {
	out := make(Ring, len(r))
	copy(out, r)
	return out
}
