// Copyright (c) 2026 The NBC developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command nbcnode runs one peer of a permissioned NBC ring: it parses
// startup flags with urfave/cli, registers with (or acts as) the
// bootstrap node, then drops into either the interactive REPL
// (pkg/cli) or the scripted transaction replay (pkg/simulate) once
// /begin arrives.
package main

import (
	"bytes"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/nbc-chain/nbc/pkg/api"
	"github.com/nbc-chain/nbc/pkg/bootstrap"
	"github.com/nbc-chain/nbc/pkg/chain"
	nbcrepl "github.com/nbc-chain/nbc/pkg/cli"
	"github.com/nbc-chain/nbc/pkg/config"
	"github.com/nbc-chain/nbc/pkg/node"
	"github.com/nbc-chain/nbc/pkg/peer"
	"github.com/nbc-chain/nbc/pkg/simulate"
	"github.com/nbc-chain/nbc/pkg/walletkey"
)

func main() {
	app := cli.NewApp()
	app.Name = "nbcnode"
	app.Usage = "run one peer of a permissioned NBC ring"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config", Value: "config.json", Usage: "path to the ring-wide configuration file"},
		cli.StringFlag{Name: "ip", Value: "127.0.0.1", Usage: "this node's own advertised IP"},
		cli.IntFlag{Name: "port", Usage: "this node's HTTP port"},
		cli.StringFlag{Name: "bootstrap-ip", Usage: "override the config file's bootstrap_ip"},
		cli.BoolFlag{Name: "bootstrap", Usage: "run as the bootstrap node: assigns ids and seeds the initial coin supply"},
		cli.IntFlag{Name: "simulation-id", Value: -1, Usage: "this node's id within the scripted transaction set; when the config enables simulation, runs pkg/simulate instead of the interactive REPL"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("nbcnode exited with error")
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if ip := c.String("bootstrap-ip"); ip != "" {
		cfg.BootstrapIP = ip
	}

	log := logrus.WithField("component", "nbcnode")

	priv, err := walletkey.Generate(walletkey.DefaultKeySize)
	if err != nil {
		return fmt.Errorf("generate wallet key: %w", err)
	}
	addr, err := walletkey.AddressOf(&priv.PublicKey)
	if err != nil {
		return err
	}

	selfIP := c.String("ip")
	selfPort := c.Int("port")
	isBootstrap := c.Bool("bootstrap")
	simulationID := c.Int("simulation-id")

	selfID := bootstrap.BootstrapID
	var netClient *peer.HTTPClient // assigned once selfID is known, below

	buildNode := func(payload bootstrap.InitializePayload) (*node.Node, error) {
		return node.New(selfID, priv, payload.Ring, payload.Chain, payload.Ledger(), cfg.NodeConfig(), netClient, netClient, log), nil
	}
	srv := api.NewServer(buildNode, log)
	srv.SetOnBegin(func(n *node.Node) {
		go n.Run()
		if cfg.Simulation && simulationID >= 0 {
			go runSimulation(n, cfg.Nodes, simulationID, log)
			return
		}
		go nbcrepl.New(n, os.Stdin, os.Stdout).Run()
	})

	self := chain.RingEntry{IP: selfIP, Port: selfPort, PublicKey: addr}

	if isBootstrap {
		registrar := bootstrap.NewRegistrar(cfg.Nodes, self)
		srv.EnableBootstrap(registrar, func(ring chain.Ring) {
			settleRing(ring, priv, cfg, log)
		})
	} else {
		id, err := registerWithBootstrap(cfg, self, log)
		if err != nil {
			return err
		}
		selfID = id
	}
	netClient = peer.NewHTTPClient(selfID, log)

	addrStr := fmt.Sprintf(":%d", selfPort)
	log.WithField("addr", addrStr).Info("listening")
	return http.ListenAndServe(addrStr, srv.Router())
}

func runSimulation(n *node.Node, nodes, id int, log *logrus.Entry) {
	f, err := os.Open(simulate.Path(nodes, id))
	if err != nil {
		log.WithError(err).Warn("no scripted transaction file found for this node, nothing to replay")
		return
	}
	defer f.Close()

	instructions, err := simulate.Parse(f)
	if err != nil {
		log.WithError(err).Error("failed to parse scripted transaction file")
		return
	}
	(&simulate.Driver{Node: n, Log: log}).Run(instructions)
}

// registerWithBootstrap posts this node's address and public key to the
// bootstrap's /node/register endpoint, retrying every 500ms for up to 30
// attempts; the bootstrap process may not have started listening yet.
func registerWithBootstrap(cfg *config.Config, self chain.RingEntry, log *logrus.Entry) (int, error) {
	url := fmt.Sprintf("http://%s:%d/node/register", cfg.BootstrapIP, cfg.BootstrapPort)
	body, err := json.Marshal(map[string]any{
		"ip":         self.IP,
		"port":       self.Port,
		"public_key": self.PublicKey,
	})
	if err != nil {
		return 0, err
	}

	const maxAttempts = 30
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := http.Post(url, "application/json", bytes.NewReader(body))
		if err == nil {
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				var out struct {
					ID int `json:"id"`
				}
				if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
					return 0, fmt.Errorf("decode /node/register response: %w", err)
				}
				log.WithField("assigned_id", out.ID).Info("registered with bootstrap")
				return out.ID, nil
			}
			lastErr = fmt.Errorf("bootstrap returned status %d", resp.StatusCode)
		} else {
			lastErr = err
		}
		time.Sleep(500 * time.Millisecond)
	}
	return 0, fmt.Errorf("could not register with bootstrap at %s: %w", url, lastErr)
}

// settleRing runs on the bootstrap node once every peer has registered:
// it assembles genesis, pushes /node/initialize to every ring member
// (itself included, over loopback), queues the seed transactions on
// itself, then signals /begin to every ring member. Serialization or
// ring lookup failures here are fatal.
func settleRing(ring chain.Ring, priv *rsa.PrivateKey, cfg *config.Config, log *logrus.Entry) {
	genesisChain, confirmed := bootstrap.Genesis(cfg.Nodes)
	currentBlock := chain.NewBlock(1, genesisChain.Last().CurrentHash)
	payload := bootstrap.NewInitializePayload(ring, genesisChain, currentBlock, confirmed)

	for _, p := range ring {
		if err := postJSON(peerURL(p, "/node/initialize"), payload); err != nil {
			log.WithError(err).WithField("peer_id", p.ID).Fatal("failed to initialize peer")
		}
	}

	seedTxs, err := bootstrap.SeedTransactions(ring, priv, confirmed, time.Now().UnixNano())
	if err != nil {
		log.WithError(err).Fatal("failed to build seed transactions")
	}
	self, _ := ring.Get(bootstrap.BootstrapID)
	for _, tx := range seedTxs {
		if err := postJSON(peerURL(self, "/transaction/receive"), map[string]chain.Transaction{"transaction": tx}); err != nil {
			log.WithError(err).Fatal("failed to queue seed transaction on bootstrap node")
		}
	}

	for _, p := range ring {
		if err := postJSON(peerURL(p, "/begin"), nil); err != nil {
			log.WithError(err).WithField("peer_id", p.ID).Fatal("failed to signal /begin")
		}
	}
}

func peerURL(p chain.RingEntry, path string) string {
	return fmt.Sprintf("http://%s:%d%s", p.IP, p.Port, path)
}

func postJSON(url string, body any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: status %d", url, resp.StatusCode)
	}
	return nil
}
