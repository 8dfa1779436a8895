// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Block represents the hard coded fields of the first block in the chain.
// These are not produced by mining.
type Block struct {
	Timestamp int64  `json:"timestamp"`
	LastHash  string `json:"last_hash"`
	Hash      string `json:"hash"`
	Nonce     uint64 `json:"nonce"`
}

// Genesis represents the genesis file.
type Genesis struct {
	Date            time.Time `json:"date"`
	Difficulty      uint      `json:"difficulty"`       // Difficulty of the genesis block, the starting point for retargeting.
	MineRateMS      int64     `json:"mine_rate_ms"`     // Target time between blocks in milliseconds.
	MiningReward    uint64    `json:"mining_reward"`    // Reward for mining a block.
	StartingBalance uint64    `json:"starting_balance"` // Balance of an address that has never spent.
	RewardAddress   string    `json:"reward_address"`   // Synthetic input address of reward transactions.
	Block           Block     `json:"block"`
}

// Default returns the genesis information used when no genesis file exists.
func Default() Genesis {
	return Genesis{
		Date:            time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC),
		Difficulty:      3,
		MineRateMS:      1000,
		MiningReward:    50,
		StartingBalance: 1000,
		RewardAddress:   "*authorized-reward*",
		Block: Block{
			Timestamp: 1,
			LastHash:  "-----",
			Hash:      "hash-one",
			Nonce:     0,
		},
	}
}

// MineRate returns the target time between blocks.
func (g Genesis) MineRate() time.Duration {
	return time.Duration(g.MineRateMS) * time.Millisecond
}

// Validate checks the genesis values can be used to run a chain.
func (g Genesis) Validate() error {
	if g.Difficulty < 1 {
		return errors.New("difficulty must be at least 1")
	}

	if g.MineRateMS <= 0 {
		return errors.New("mine rate must be positive")
	}

	if g.RewardAddress == "" {
		return errors.New("reward address is required")
	}

	if g.Block.Hash == "" {
		return errors.New("genesis block hash is required")
	}

	return nil
}

// =============================================================================

// Load opens and consumes the genesis file. If the file doesn't exist, the
// default genesis is returned.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("parsing genesis: %w", err)
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, fmt.Errorf("validating genesis: %w", err)
	}

	return genesis, nil
}
