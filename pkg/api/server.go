// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package api is the HTTP façade over a ring member: every handler
// decodes a request body, calls exactly one pkg/node or pkg/bootstrap
// method, and encodes the result. Routing uses julienschmidt/httprouter
// rather than bare net/http.ServeMux, giving /chain/get/:n a named path
// parameter.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/nbc-chain/nbc/pkg/bootstrap"
	"github.com/nbc-chain/nbc/pkg/chain"
	"github.com/nbc-chain/nbc/pkg/node"
)

// NodeBuilder constructs this process's *node.Node once /node/initialize
// delivers the sealed ring, genesis chain, and confirmed ledger.
// cmd/nbcnode supplies it as a closure over this node's own private key
// and the Broadcaster/Querier it wires to pkg/peer; Server itself knows
// nothing about key material.
type NodeBuilder func(payload bootstrap.InitializePayload) (*node.Node, error)

// registerRequest is the /node/register body.
type registerRequest struct {
	IP        string        `json:"ip"`
	Port      int           `json:"port"`
	PublicKey chain.Address `json:"public_key"`
}

// Server is the HTTP façade over pkg/node and pkg/bootstrap. Every
// handler is a thin decode/call/encode wrapper that delegates every
// mutation to a Node or Registrar method; no handler touches node state
// directly.
type Server struct {
	mu    sync.Mutex
	node  *node.Node
	begun bool

	build   NodeBuilder
	onBegin func(*node.Node)

	registrar *bootstrap.Registrar
	onSealed  func(chain.Ring)

	log *logrus.Entry
}

// NewServer returns a Server that builds its Node lazily from
// /node/initialize. log may be nil.
func NewServer(build NodeBuilder, log *logrus.Entry) *Server {
	return &Server{build: build, log: log}
}

// EnableBootstrap turns this server into the registration endpoint: only
// the bootstrap node calls this, before it starts listening.
func (s *Server) EnableBootstrap(registrar *bootstrap.Registrar, onSealed func(chain.Ring)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registrar = registrar
	s.onSealed = onSealed
}

// SetOnBegin installs the callback /begin invokes exactly once, after
// this node's Node has already been built by /node/initialize; the hook
// cmd/nbcnode uses to start Node.Run() and the CLI/simulation driver.
func (s *Server) SetOnBegin(f func(*node.Node)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onBegin = f
}

// Node returns the underlying Node, or nil before /node/initialize has
// run.
func (s *Server) Node() *node.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.node
}

func (s *Server) currentNode() (*node.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.node, s.node != nil
}

// Router builds the httprouter.Router serving every node endpoint.
func (s *Server) Router() *httprouter.Router {
	r := httprouter.New()
	r.POST("/node/register", s.handleRegister)
	r.POST("/node/initialize", s.handleInitialize)
	r.POST("/begin", s.handleBegin)
	r.POST("/transaction/receive", s.handleTransactionReceive)
	r.POST("/block/add", s.handleBlockAdd)
	r.GET("/transactions/get", s.handleTransactionsGet)
	r.GET("/balance", s.handleBalance)
	r.GET("/chain/get", s.handleChainGet)
	r.GET("/chain/length", s.handleChainLength)
	r.GET("/chain/get/:n", s.handleChainGetN)
	return r
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.mu.Lock()
	registrar := s.registrar
	s.mu.Unlock()
	if registrar == nil {
		http.Error(w, "not the bootstrap node", http.StatusNotFound)
		return
	}

	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, full := registrar.Register(req.IP, req.Port, req.PublicKey)
	writeJSON(w, map[string]int{"id": id})

	if full {
		ring := registrar.Ring()
		s.mu.Lock()
		onSealed := s.onSealed
		s.mu.Unlock()
		if onSealed != nil {
			go onSealed(ring)
		}
	}
}

func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var payload bootstrap.InitializePayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	n, err := s.build(payload)
	if err != nil {
		s.logger().WithError(err).Error("failed to build node from /node/initialize payload")
		http.Error(w, "failed to initialize node", http.StatusInternalServerError)
		return
	}

	s.mu.Lock()
	s.node = n
	s.mu.Unlock()

	writeOK(w)
}

func (s *Server) handleBegin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	n, ok := s.currentNode()
	if !ok {
		http.Error(w, "node not yet initialized", http.StatusServiceUnavailable)
		return
	}

	s.mu.Lock()
	alreadyBegun := s.begun
	s.begun = true
	onBegin := s.onBegin
	s.mu.Unlock()

	if !alreadyBegun && onBegin != nil {
		onBegin(n)
	}
	writeOK(w)
}

func (s *Server) handleTransactionReceive(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	n, ok := s.currentNode()
	if !ok {
		http.Error(w, "node not yet initialized", http.StatusServiceUnavailable)
		return
	}
	var body struct {
		Transaction chain.Transaction `json:"transaction"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	n.SubmitTransaction(body.Transaction)
	writeOK(w)
}

func (s *Server) handleBlockAdd(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	n, ok := s.currentNode()
	if !ok {
		http.Error(w, "node not yet initialized", http.StatusServiceUnavailable)
		return
	}
	var body struct {
		Block chain.Block `json:"block"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	n.ReceiveBlock(body.Block)
	writeOK(w)
}

func (s *Server) handleTransactionsGet(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	n, ok := s.currentNode()
	if !ok {
		http.Error(w, "node not yet initialized", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string][]chain.Transaction{"transactions": n.OpenBlockTransactions()})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	n, ok := s.currentNode()
	if !ok {
		http.Error(w, "node not yet initialized", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]int64{"balance": n.Balance(n.ID)})
}

func (s *Server) handleChainGet(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	n, ok := s.currentNode()
	if !ok {
		http.Error(w, "node not yet initialized", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, n.Chain())
}

func (s *Server) handleChainLength(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	n, ok := s.currentNode()
	if !ok {
		http.Error(w, "node not yet initialized", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, n.ChainLength())
}

func (s *Server) handleChainGetN(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	n, ok := s.currentNode()
	if !ok {
		http.Error(w, "node not yet initialized", http.StatusServiceUnavailable)
		return
	}
	count, err := strconv.Atoi(ps.ByName("n"))
	if err != nil || count < 0 {
		http.Error(w, "invalid suffix length", http.StatusBadRequest)
		return
	}
	writeJSON(w, n.ChainSuffix(count))
}

func (s *Server) logger() *logrus.Entry {
	if s.log != nil {
		return s.log
	}
	return logrus.NewEntry(logrus.New())
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, "OK")
}
