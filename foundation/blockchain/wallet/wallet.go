// Package wallet provides key custody for an address, derives its balance
// from the chain and produces signed transactions.
package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/database"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/genesis"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// Wallet owns a private key. The balance is a cached value that is always
// derivable from the chain.
type Wallet struct {
	privateKey *ecdsa.PrivateKey
	address    string
	gen        genesis.Genesis

	mu      sync.RWMutex
	balance uint64
}

// New constructs a wallet with a newly generated key pair.
func New(gen genesis.Genesis) (*Wallet, error) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}

	return NewFromKey(privateKey, gen), nil
}

// NewFromKey constructs a wallet for the specified private key.
func NewFromKey(privateKey *ecdsa.PrivateKey, gen genesis.Genesis) *Wallet {
	return &Wallet{
		privateKey: privateKey,
		address:    signature.PublicKeyToAddress(privateKey.PublicKey),
		gen:        gen,
		balance:    gen.StartingBalance,
	}
}

// Load constructs a wallet from the key file at the specified path. If the
// file doesn't exist, a new key is generated and saved there.
func Load(path string, gen genesis.Genesis) (*Wallet, error) {
	privateKey, err := crypto.LoadECDSA(path)
	switch {
	case err == nil:
		return NewFromKey(privateKey, gen), nil

	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("loading key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating key folder: %w", err)
	}

	w, err := New(gen)
	if err != nil {
		return nil, err
	}

	if err := crypto.SaveECDSA(path, w.privateKey); err != nil {
		return nil, fmt.Errorf("saving key: %w", err)
	}

	return w, nil
}

// Address returns the public key address of the wallet.
func (w *Wallet) Address() string {
	return w.address
}

// Balance returns the last balance calculated for the wallet.
func (w *Wallet) Balance() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.balance
}

// Sign signs the content hash of the value with the wallet's private key.
// Hashing first means the signature always covers a fixed size input.
func (w *Wallet) Sign(value any) (string, error) {
	return signature.Sign(value, w.privateKey)
}

// RefreshBalance recalculates the wallet balance against the chain.
func (w *Wallet) RefreshBalance(blocks []database.Block) uint64 {
	balance := CalculateBalance(blocks, w.address, w.gen)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.balance = balance
	return balance
}

// CreateTransaction produces a new signed transaction paying the recipient.
// If blocks are provided, the balance is refreshed against them first.
func (w *Wallet) CreateTransaction(recipient string, amount uint64, blocks []database.Block) (database.Tx, error) {
	if blocks != nil {
		w.RefreshBalance(blocks)
	}

	if balance := w.Balance(); amount > balance {
		return database.Tx{}, fmt.Errorf("%w: amount %d, balance %d", database.ErrInsufficientBalance, amount, balance)
	}

	return database.NewTx(w, recipient, amount)
}

// =============================================================================

// CalculateBalance returns the balance of any address against the chain.
func CalculateBalance(blocks []database.Block, address string, gen genesis.Genesis) uint64 {
	return database.CalculateBalance(blocks, address, gen.StartingBalance)
}
