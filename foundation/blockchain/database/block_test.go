package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/database"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/genesis"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/signature"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/wallet"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// Keys used to construct deterministic wallets.
const (
	senderHexKey    = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	recipientHexKey = "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0"
	minerHexKey     = "9f332e3700d8fc2446eaf6d15034cf96e0c2745e40353deef032a5dbf1dfed93"
)

// =============================================================================

func newWallet(t *testing.T, hexKey string, gen genesis.Genesis) *wallet.Wallet {
	pk, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to load the private key: %v", failed, err)
	}

	return wallet.NewFromKey(pk, gen)
}

func mine(t *testing.T, db *database.Database, data []database.Tx) database.Block {
	block, err := db.Append(context.Background(), data)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
	}

	return block
}

// =============================================================================

func Test_Genesis(t *testing.T) {
	gen := genesis.Default()

	t.Log("Given the need to start a chain with the genesis block.")
	{
		db := database.New(gen, nil)

		blocks := db.Blocks()
		if len(blocks) != 1 {
			t.Fatalf("\t%s\tShould have only one block: got %d", failed, len(blocks))
		}
		t.Logf("\t%s\tShould have only one block.", success)

		g := database.GenesisBlock(gen)
		if blocks[0].Hash != g.Hash || blocks[0].LastHash != g.LastHash || blocks[0].Timestamp != g.Timestamp {
			t.Fatalf("\t%s\tShould start with the genesis block.", failed)
		}
		t.Logf("\t%s\tShould start with the genesis block.", success)

		if !database.IsValidChain(gen, blocks) {
			t.Fatalf("\t%s\tShould have a valid genesis only chain.", failed)
		}
		t.Logf("\t%s\tShould have a valid genesis only chain.", success)
	}
}

func Test_Mining(t *testing.T) {
	gen := genesis.Default()
	miner := newWallet(t, minerHexKey, gen)

	t.Log("Given the need to mine blocks.")
	{
		db := database.New(gen, nil)

		for i := 0; i < 4; i++ {
			prev := db.LatestBlock()
			block := mine(t, db, []database.Tx{database.NewRewardTx(miner.Address(), gen)})

			if block.LastHash != prev.Hash {
				t.Fatalf("\t%s\tTest %d:\tShould link to the previous block.", failed, i)
			}
			t.Logf("\t%s\tTest %d:\tShould link to the previous block.", success, i)

			if block.Hash != block.ComputeHash() {
				t.Fatalf("\t%s\tTest %d:\tShould recompute the same hash from the block fields.", failed, i)
			}
			t.Logf("\t%s\tTest %d:\tShould recompute the same hash from the block fields.", success, i)

			if signature.LeadingZeroBits(block.Hash) < int(block.Difficulty) {
				t.Fatalf("\t%s\tTest %d:\tShould have a hash that solves the difficulty: %s %d", failed, i, block.Hash, block.Difficulty)
			}
			t.Logf("\t%s\tTest %d:\tShould have a hash that solves the difficulty.", success, i)

			delta := int(prev.Difficulty) - int(block.Difficulty)
			if delta > 1 || delta < -1 {
				t.Fatalf("\t%s\tTest %d:\tShould not move the difficulty by more than one: %d %d", failed, i, prev.Difficulty, block.Difficulty)
			}
			t.Logf("\t%s\tTest %d:\tShould not move the difficulty by more than one.", success, i)

			if len(block.Data) != 1 || block.Data[0].ID != db.LatestBlock().Data[0].ID {
				t.Fatalf("\t%s\tTest %d:\tShould be the tip holding the data.", failed, i)
			}
			t.Logf("\t%s\tTest %d:\tShould be the tip holding the data.", success, i)
		}

		if db.Length() != 5 {
			t.Fatalf("\t%s\tShould have five blocks: got %d", failed, db.Length())
		}
		t.Logf("\t%s\tShould have five blocks.", success)
	}
}

func Test_AdjustDifficulty(t *testing.T) {
	type table struct {
		name       string
		parent     database.Block
		timestamp  int64
		difficulty uint
	}

	mineRate := time.Second

	tt := []table{
		{name: "fast", parent: database.Block{Timestamp: 10_000, Difficulty: 5}, timestamp: 10_500, difficulty: 6},
		{name: "exact", parent: database.Block{Timestamp: 10_000, Difficulty: 5}, timestamp: 11_000, difficulty: 6},
		{name: "slow", parent: database.Block{Timestamp: 10_000, Difficulty: 5}, timestamp: 11_001, difficulty: 4},
		{name: "floor", parent: database.Block{Timestamp: 10_000, Difficulty: 0}, timestamp: 10_500, difficulty: 1},
		{name: "clamp", parent: database.Block{Timestamp: 10_000, Difficulty: 1}, timestamp: 20_000, difficulty: 1},
	}

	t.Log("Given the need to retarget the difficulty.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				d := database.AdjustDifficulty(tst.parent, tst.timestamp, mineRate)
				if d != tst.difficulty {
					t.Logf("\t%s\tTest %d:\tgot: %d", failed, testID, d)
					t.Logf("\t%s\tTest %d:\texp: %d", failed, testID, tst.difficulty)
					t.Fatalf("\t%s\tTest %d:\tShould get back the right difficulty.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould get back the right difficulty.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_POWCancel(t *testing.T) {
	t.Log("Given the need to cancel an unbounded mining operation.")
	{
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		// No hash can solve a difficulty this large.
		parent := database.Block{Timestamp: time.Now().UnixMilli(), Hash: "parent", Difficulty: 300}

		_, err := database.POW(ctx, database.POWArgs{
			PrevBlock: parent,
			MineRate:  time.Second,
		})
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("\t%s\tShould stop mining when the context is done: %v", failed, err)
		}
		t.Logf("\t%s\tShould stop mining when the context is done.", success)
	}
}
