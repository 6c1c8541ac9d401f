// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package simulate replays a scripted transaction file against a live
// node: one file per node at transactions/<N>nodes/transactions<id>.txt,
// lines of the form "id<k> <amount>" meaning "send <amount> to ring
// member k". It calls straight into *node.Node.CreateTransaction, the
// same in-process path pkg/cli's `t` command uses; there is no separate
// wire format for simulated versus interactive transactions.
package simulate

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nbc-chain/nbc/pkg/node"
)

var lineRE = regexp.MustCompile(`^id(\d+)\s+(\d+)$`)

// Instruction is one parsed line: pay Amount coins to ring member
// ReceiverID.
type Instruction struct {
	ReceiverID int
	Amount     int64
}

// Parse reads scripted instructions from r, one per non-blank line,
// rejecting any line that doesn't match the "id<k> <amount>" grammar.
func Parse(r io.Reader) ([]Instruction, error) {
	var out []Instruction
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		m := lineRE.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("simulate: line %d: malformed instruction %q", lineNo, line)
		}
		receiverID, _ := strconv.Atoi(m[1])
		amount, _ := strconv.ParseInt(m[2], 10, 64)
		out = append(out, Instruction{ReceiverID: receiverID, Amount: amount})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}
	return out, nil
}

// Path returns the scripted file path assigned to this node's id within
// an n-node ring.
func Path(nodes, id int) string {
	return fmt.Sprintf("transactions/%dnodes/transactions%d.txt", nodes, id)
}

// Driver replays parsed instructions against a live node, one
// CreateTransaction call per line, in file order, preserving the
// mempool-processing order for this node's own transactions.
type Driver struct {
	Node *node.Node
	Log  *logrus.Entry
}

// Run issues every instruction in order. A transaction the node's own
// balance can't cover is logged and dropped rather than aborting the
// whole replay; here, the log is the user.
func (d *Driver) Run(instructions []Instruction) {
	for _, instr := range instructions {
		tx, err := d.Node.CreateTransaction(instr.ReceiverID, instr.Amount)
		if err != nil {
			d.logger().WithFields(logrus.Fields{
				"node_id":   d.Node.ID,
				"component": "simulate",
				"receiver":  instr.ReceiverID,
				"amount":    instr.Amount,
				"reason":    err.Error(),
			}).Warn("dropping scripted transaction")
			continue
		}
		d.logger().WithFields(logrus.Fields{
			"node_id":        d.Node.ID,
			"component":      "simulate",
			"transaction_id": tx.ID,
		}).Info("queued scripted transaction")
	}
}

func (d *Driver) logger() *logrus.Entry {
	if d.Log != nil {
		return d.Log
	}
	return logrus.NewEntry(logrus.New())
}
