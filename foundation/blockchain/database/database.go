// Package database maintains the in memory blockchain and implements the
// consensus rules used to validate and replace it.
package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/genesis"
)

// Database manages the chain of blocks. The chain is the single source of
// truth for balances. It only grows by mining a new block on the tip or by
// being replaced wholesale with a longer valid chain.
type Database struct {
	mu        sync.RWMutex
	genesis   genesis.Genesis
	blocks    []Block
	evHandler func(v string, args ...any)
}

// New constructs a new chain holding only the genesis block.
func New(gen genesis.Genesis, evHandler func(v string, args ...any)) *Database {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	return &Database{
		genesis:   gen,
		blocks:    []Block{GenesisBlock(gen)},
		evHandler: ev,
	}
}

// Genesis returns the genesis information the chain was built with.
func (db *Database) Genesis() genesis.Genesis {
	return db.genesis
}

// Blocks returns a copy of the current chain.
func (db *Database) Blocks() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	blocks := make([]Block, len(db.blocks))
	copy(blocks, db.blocks)

	return blocks
}

// LatestBlock returns the block at the tip of the chain.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.blocks[len(db.blocks)-1]
}

// Length returns the number of blocks in the chain, including genesis.
func (db *Database) Length() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return len(db.blocks)
}

// CalculateBalance returns the balance of the address against the
// current chain.
func (db *Database) CalculateBalance(address string) uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return CalculateBalance(db.blocks, address, db.genesis.StartingBalance)
}

// =============================================================================

// Append mines a new block holding the data on top of the current tip and
// adds it to the chain. The data is not validated. Mining happens without
// holding the lock so the chain can be read or replaced in the meantime. If
// the tip changed before the block could be added, ErrChainChanged is
// returned and the block is dropped.
func (db *Database) Append(ctx context.Context, data []Tx) (Block, error) {
	prevBlock := db.LatestBlock()

	block, err := POW(ctx, POWArgs{
		PrevBlock: prevBlock,
		Data:      data,
		MineRate:  db.genesis.MineRate(),
		EvHandler: db.evHandler,
	})
	if err != nil {
		return Block{}, err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if tip := db.blocks[len(db.blocks)-1]; tip.Hash != prevBlock.Hash {
		return Block{}, fmt.Errorf("%w: mined on %s, tip is %s", ErrChainChanged, prevBlock.Hash, tip.Hash)
	}

	db.blocks = append(db.blocks, block)
	db.evHandler("database: Append: blk[%s]: length[%d]", block.Hash, len(db.blocks))

	return block, nil
}

// Replace adopts the candidate chain if it's longer than the current chain
// and valid. When validateTxs is true, the transaction data of the candidate
// must also be valid against the current chain. The onAccept function is
// called before the chain is swapped, while the lock is held, so it must
// not call back into the Database.
func (db *Database) Replace(candidate []Block, validateTxs bool, onAccept func()) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if len(candidate) <= len(db.blocks) {
		return fmt.Errorf("%w: got %d blocks, have %d", ErrChainTooShort, len(candidate), len(db.blocks))
	}

	if err := ValidateChain(db.genesis, candidate); err != nil {
		return err
	}

	if validateTxs {
		if err := db.validTransactionData(candidate); err != nil {
			return err
		}
	}

	if onAccept != nil {
		onAccept()
	}

	blocks := make([]Block, len(candidate))
	copy(blocks, candidate)

	db.evHandler("database: Replace: replacing chain: length[%d]: latestBlk[%s]", len(blocks), blocks[len(blocks)-1].Hash)
	db.blocks = blocks

	return nil
}

// ValidTransactionData validates the transactions held by the candidate
// chain. Balances are checked against the current chain.
func (db *Database) ValidTransactionData(candidate []Block) error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.validTransactionData(candidate)
}

// validTransactionData performs the validation. The caller must hold the lock.
func (db *Database) validTransactionData(candidate []Block) error {
	seen := make(map[string]struct{})

	for i := 1; i < len(candidate); i++ {
		var rewards int
		senders := make(map[string]struct{})

		for _, tx := range candidate[i].Data {
			if tx.IsReward(db.genesis) {
				rewards++
				if rewards > 1 {
					return fmt.Errorf("%w: %w: block[%d]", ErrChainTransactionDataInvalid, ErrRewardCountExceeded, i)
				}

				var payout uint64
				for _, value := range tx.OutputMap {
					payout = value
				}

				if len(tx.OutputMap) != 1 || payout != db.genesis.MiningReward {
					return fmt.Errorf("%w: %w: block[%d]: tx[%s]", ErrChainTransactionDataInvalid, ErrRewardAmountMismatch, i, tx.ID)
				}

				continue
			}

			if err := tx.Validate(); err != nil {
				return fmt.Errorf("%w: block[%d]: tx[%s]: %w", ErrChainTransactionDataInvalid, i, tx.ID, err)
			}

			balance := CalculateBalance(db.blocks, tx.Input.Address, db.genesis.StartingBalance)
			if tx.Input.Amount != balance {
				return fmt.Errorf("%w: %w: block[%d]: tx[%s]: got %d, exp %d", ErrChainTransactionDataInvalid, ErrTxAmountMismatch, i, tx.ID, tx.Input.Amount, balance)
			}

			if _, exists := senders[tx.Input.Address]; exists {
				return fmt.Errorf("%w: %w: block[%d]: tx[%s]: sender[%s]", ErrChainTransactionDataInvalid, ErrDuplicateSender, i, tx.ID, tx.Input.Address)
			}
			senders[tx.Input.Address] = struct{}{}

			if _, exists := seen[tx.ID]; exists {
				return fmt.Errorf("%w: %w: block[%d]: tx[%s]", ErrChainTransactionDataInvalid, ErrDuplicateTx, i, tx.ID)
			}
			seen[tx.ID] = struct{}{}
		}
	}

	return nil
}

// =============================================================================

// ValidateChain checks the structure of a chain. The first block must be the
// canonical genesis block and every other block must link to its parent,
// carry the hash of its own fields, solve its difficulty and not move the
// difficulty by more than one.
func ValidateChain(gen genesis.Genesis, blocks []Block) error {
	if len(blocks) == 0 {
		return fmt.Errorf("%w: chain is empty", ErrChainInvalid)
	}

	if !blocks[0].isGenesis(gen) {
		return fmt.Errorf("%w: first block is not the genesis block", ErrChainInvalid)
	}

	for i := 1; i < len(blocks); i++ {
		if err := blocks[i].ValidateNext(blocks[i-1]); err != nil {
			return fmt.Errorf("%w: block[%d]: %w", ErrChainInvalid, i, err)
		}
	}

	return nil
}

// IsValidChain reports whether the chain passes ValidateChain.
func IsValidChain(gen genesis.Genesis, blocks []Block) bool {
	return ValidateChain(gen, blocks) == nil
}
