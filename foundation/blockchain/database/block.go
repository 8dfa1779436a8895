package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/genesis"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/signature"
)

// Block represents a group of transactions batched together. A block is
// constructed once by mining and never changed after that.
type Block struct {
	Timestamp  int64  `json:"timestamp"`  // Unix milliseconds when the block was mined.
	LastHash   string `json:"last_hash"`  // Hash of the previous block in the chain.
	Hash       string `json:"hash"`       // Content hash of the other fields of this block.
	Difficulty uint   `json:"difficulty"` // Number of leading zero bits needed to solve the hash.
	Nonce      uint64 `json:"nonce"`      // Value identified to solve the hash solution.
	Data       []Tx   `json:"data"`       // Transactions recorded by this block.
}

// GenesisBlock returns the canonical first block of the chain. It's fixed by
// the genesis information and is not mined.
func GenesisBlock(gen genesis.Genesis) Block {
	return Block{
		Timestamp:  gen.Block.Timestamp,
		LastHash:   gen.Block.LastHash,
		Hash:       gen.Block.Hash,
		Difficulty: gen.Difficulty,
		Nonce:      gen.Block.Nonce,
	}
}

// POWArgs represents the set of arguments required to run POW.
type POWArgs struct {
	PrevBlock Block
	Data      []Tx
	MineRate  time.Duration
	EvHandler func(v string, args ...any)
}

// POW constructs a new Block on top of the previous block and performs the
// work to find a nonce that solves the cryptographic POW puzzle. There is no
// bound on the number of attempts, cancel the context to stop the search.
func POW(ctx context.Context, args POWArgs) (Block, error) {
	ev := args.EvHandler
	if ev == nil {
		ev = func(v string, args ...any) {}
	}

	nb := Block{
		LastHash: args.PrevBlock.Hash,
		Data:     args.Data,
	}

	if err := nb.performPOW(ctx, args.PrevBlock, args.MineRate, ev); err != nil {
		return Block{}, err
	}

	return nb, nil
}

// performPOW does the work of mining to find a valid hash for a specified
// block. Pointer semantics are being used since a nonce is being discovered.
func (b *Block) performPOW(ctx context.Context, parent Block, mineRate time.Duration, ev func(v string, args ...any)) error {
	ev("database: PerformPOW: MINING: started")
	defer ev("database: PerformPOW: MINING: completed")

	for _, tx := range b.Data {
		ev("database: PerformPOW: MINING: tx[%s]", tx.ID)
	}

	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: PerformPOW: MINING: attempts[%d]", attempts)
		}

		if ctx.Err() != nil {
			ev("database: PerformPOW: MINING: CANCELLED")
			return ctx.Err()
		}

		// The timestamp moves with every attempt so the difficulty is
		// recalculated against the parent each time.
		b.Nonce++
		b.Timestamp = time.Now().UnixMilli()
		b.Difficulty = AdjustDifficulty(parent, b.Timestamp, mineRate)
		b.Hash = b.ComputeHash()

		if !signature.IsHashSolved(b.Difficulty, b.Hash) {
			continue
		}

		ev("database: PerformPOW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]: difficulty[%d]", b.LastHash, b.Hash, b.Difficulty)
		ev("database: PerformPOW: MINING: attempts[%d]", attempts)

		return nil
	}
}

// AdjustDifficulty returns the difficulty for a block mined at the specified
// timestamp on top of the parent block. A gap larger than the mine rate
// lowers the difficulty by one, otherwise it's raised by one. The result is
// never less than one.
func AdjustDifficulty(parent Block, timestamp int64, mineRate time.Duration) uint {
	if parent.Difficulty < 1 {
		return 1
	}

	gap := time.Duration(timestamp-parent.Timestamp) * time.Millisecond
	if gap > mineRate {
		if parent.Difficulty == 1 {
			return 1
		}
		return parent.Difficulty - 1
	}

	return parent.Difficulty + 1
}

// ComputeHash returns the content hash of the block fields, not including
// the stored hash itself.
func (b Block) ComputeHash() string {
	return signature.Hash(b.Timestamp, b.LastHash, b.Data, b.Nonce, b.Difficulty)
}

// ValidateNext validates the block can follow the previous block in a chain.
func (b Block) ValidateNext(prev Block) error {
	if b.LastHash != prev.Hash {
		return fmt.Errorf("parent block hash doesn't match, got %s, exp %s", b.LastHash, prev.Hash)
	}

	if hash := b.ComputeHash(); b.Hash != hash {
		return fmt.Errorf("block hash doesn't match its fields, got %s, exp %s", b.Hash, hash)
	}

	if b.Difficulty < 1 {
		return fmt.Errorf("block difficulty %d is below the minimum", b.Difficulty)
	}

	delta := int64(prev.Difficulty) - int64(b.Difficulty)
	if delta > 1 || delta < -1 {
		return fmt.Errorf("block difficulty jumped, parent %d, block %d", prev.Difficulty, b.Difficulty)
	}

	if !signature.IsHashSolved(b.Difficulty, b.Hash) {
		return fmt.Errorf("block hash %s does not solve difficulty %d", b.Hash, b.Difficulty)
	}

	return nil
}

// isGenesis checks the block matches the canonical genesis block.
func (b Block) isGenesis(gen genesis.Genesis) bool {
	g := GenesisBlock(gen)

	return b.Timestamp == g.Timestamp &&
		b.LastHash == g.LastHash &&
		b.Hash == g.Hash &&
		b.Difficulty == g.Difficulty &&
		b.Nonce == g.Nonce &&
		len(b.Data) == 0
}
