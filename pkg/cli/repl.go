// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package cli is the interactive REPL: t, view, balance, balances,
// chain, help, read from stdin with bufio.Scanner. It talks straight to
// this process's own *node.Node, the same in-process access pattern
// pkg/simulate uses for its scripted driver.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"sort"
	"strconv"
	"strings"

	"github.com/nbc-chain/nbc/pkg/chain"
	"github.com/nbc-chain/nbc/pkg/node"
)

// REPL reads commands from In and writes results to Out.
type REPL struct {
	Node *node.Node
	In   io.Reader
	Out  io.Writer
}

// New builds a REPL bound to a live node.
func New(n *node.Node, in io.Reader, out io.Writer) *REPL {
	return &REPL{Node: n, In: in, Out: out}
}

// Run reads one command per line until In is exhausted. Invalid input
// prints an error and continues; a bad line never stops the loop.
func (r *REPL) Run() {
	scanner := bufio.NewScanner(r.In)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := r.dispatch(line); err != nil {
			fmt.Fprintln(r.Out, "error:", err)
		}
	}
}

func (r *REPL) dispatch(line string) error {
	fields := strings.Fields(line)
	switch fields[0] {
	case "t":
		return r.cmdTransfer(fields[1:])
	case "view":
		return r.cmdView()
	case "balance":
		return r.cmdBalance()
	case "balances":
		return r.cmdBalances()
	case "chain":
		return r.cmdChain()
	case "help":
		return r.cmdHelp()
	default:
		return fmt.Errorf("unknown command %q (try 'help')", fields[0])
	}
}

func (r *REPL) cmdTransfer(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: t <ip:port> <amount>")
	}
	host, portStr, err := net.SplitHostPort(args[0])
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", args[0], err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port %q", portStr)
	}
	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q", args[1])
	}

	receiverID, ok := findRingMember(r.Node.Ring, host, port)
	if !ok {
		return fmt.Errorf("no ring member at %s:%d", host, port)
	}

	tx, err := r.Node.CreateTransaction(receiverID, amount)
	if err != nil {
		if errors.Is(err, node.ErrInsufficientFunds) {
			return errors.New("insufficient funds")
		}
		return err
	}
	fmt.Fprintf(r.Out, "queued transaction %s\n", tx.ID)
	return nil
}

func (r *REPL) cmdView() error {
	for _, tx := range r.Node.OpenBlockTransactions() {
		fmt.Fprintf(r.Out, "%s amount=%d\n", tx.ID, tx.Amount)
	}
	return nil
}

func (r *REPL) cmdBalance() error {
	fmt.Fprintln(r.Out, r.Node.Balance(r.Node.ID))
	return nil
}

func (r *REPL) cmdBalances() error {
	balances := r.Node.Balances()
	ids := make([]int, 0, len(balances))
	for id := range balances {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		fmt.Fprintf(r.Out, "%d: %d\n", id, balances[id])
	}
	return nil
}

func (r *REPL) cmdChain() error {
	snap := r.Node.Chain()
	for _, b := range snap.Chain.Blocks {
		fmt.Fprintf(r.Out, "%d %s\n", b.Index, b.CurrentHash)
	}
	return nil
}

func (r *REPL) cmdHelp() error {
	fmt.Fprintln(r.Out, "commands: t <ip:port> <amount>, view, balance, balances, chain, help")
	return nil
}

func findRingMember(ring chain.Ring, ip string, port int) (int, bool) {
	for _, e := range ring {
		if e.IP == ip && e.Port == port {
			return e.ID, true
		}
	}
	return 0, false
}
