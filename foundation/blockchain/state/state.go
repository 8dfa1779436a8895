// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"errors"
	"sync"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/database"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/genesis"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/mempool"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/peer"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/wallet"
)

// EventHandler defines a function that is called when events
// occur in the processing of blocks and transactions.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining, syncing, and transaction sharing.
type Worker interface {
	Shutdown()
	Sync()
	SignalStartMining() bool
	SignalCancelMining() (done func())
	SignalShareTx(tx database.Tx)
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	Wallet     *wallet.Wallet
	Host       string
	Genesis    genesis.Genesis
	KnownPeers *peer.PeerSet
	AutoMine   bool
	EvHandler  EventHandler
}

// State manages the blockchain database.
type State struct {
	host      string
	autoMine  bool
	evHandler EventHandler

	// Serializes writes to the mempool that depend on its current contents.
	mu sync.Mutex

	knownPeers *peer.PeerSet
	genesis    genesis.Genesis
	wallet     *wallet.Wallet
	mempool    *mempool.Mempool
	db         *database.Database

	Worker Worker
}

// New constructs a new blockchain for data management.
func New(cfg Config) (*State, error) {
	if cfg.Wallet == nil {
		return nil, errors.New("wallet is required")
	}

	if err := cfg.Genesis.Validate(); err != nil {
		return nil, err
	}

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	state := State{
		host:      cfg.Host,
		autoMine:  cfg.AutoMine,
		evHandler: ev,

		knownPeers: knownPeers,
		genesis:    cfg.Genesis,
		wallet:     cfg.Wallet,
		mempool:    mempool.New(),
		db:         database.New(cfg.Genesis, ev),

		Worker: nopWorker{},
	}

	// The call to worker.Run will replace the nop worker with the real
	// one and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.Worker.Shutdown()
	return nil
}

// =============================================================================

// nopWorker is used until a worker registers itself with the state.
type nopWorker struct{}

func (nopWorker) Shutdown()                    {}
func (nopWorker) Sync()                        {}
func (nopWorker) SignalStartMining() bool      { return false }
func (nopWorker) SignalCancelMining() func()   { return func() {} }
func (nopWorker) SignalShareTx(tx database.Tx) {}
