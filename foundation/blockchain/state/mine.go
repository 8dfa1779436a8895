package state

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/database"
)

// MineNewBlock takes the valid transactions from the mempool, adds the reward
// for this node and mines them into a new block on top of the chain. The
// mempool is cleared once the block is added. Mining can be cancelled
// through the context.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: select transactions")

	txs := s.selectTransactions()
	data := append(txs, database.NewRewardTx(s.wallet.Address(), s.genesis))

	s.evHandler("state: MineNewBlock: MINING: perform POW: txs[%d]", len(txs))

	block, err := s.db.Append(ctx, data)
	if err != nil {
		return database.Block{}, err
	}

	s.evHandler("state: MineNewBlock: MINING: clear mempool")

	s.mempool.Truncate()
	s.wallet.RefreshBalance(s.db.Blocks())

	s.blockEvent(block)

	return block, nil
}

// ProcessPeerChain takes a chain received from a peer and replaces the local
// chain with it when it's longer and valid, including the transaction data.
// Transactions recorded by the new chain are removed from the mempool.
func (s *State) ProcessPeerChain(blocks []database.Block) error {
	s.evHandler("state: ProcessPeerChain: started: length[%d]", len(blocks))
	defer s.evHandler("state: ProcessPeerChain: completed")

	return s.replaceChain(blocks, true)
}

// SyncPeerChain replaces the local chain with the chain of a peer without
// checking its transaction data against the local chain. It's used when the
// node boots and has no history of its own to compare balances with.
func (s *State) SyncPeerChain(blocks []database.Block) error {
	s.evHandler("state: SyncPeerChain: started: length[%d]", len(blocks))
	defer s.evHandler("state: SyncPeerChain: completed")

	return s.replaceChain(blocks, false)
}

// =============================================================================

// replaceChain attempts to replace the chain. Mining is cancelled only once
// the candidate is accepted.
func (s *State) replaceChain(blocks []database.Block, validateTxs bool) error {
	var done func()

	// If the runMiningOperation function is being executed it needs to stop
	// immediately. The G executing runMiningOperation will not return from the
	// function until done is called. That allows this function to complete
	// its state changes before a new mining operation takes place.
	accept := func() {
		done = s.Worker.SignalCancelMining()

		n := s.mempool.PruneConfirmed(blocks)
		s.evHandler("state: replaceChain: pruned mempool: txs[%d]", n)
	}
	defer func() {
		if done != nil {
			s.evHandler("state: replaceChain: signal runMiningOperation to terminate")
			done()
		}
	}()

	if err := s.db.Replace(blocks, validateTxs, accept); err != nil {
		s.evHandler("state: replaceChain: WARNING: %s", err)
		return err
	}

	s.wallet.RefreshBalance(blocks)
	s.blockEvent(blocks[len(blocks)-1])

	return nil
}

// selectTransactions returns the valid transactions from the mempool whose
// input amount matches the balance of the sender on the current chain. Only
// the first transaction per sender is taken. A block holding any other
// transaction would be rejected by peers.
func (s *State) selectTransactions() []database.Tx {
	var txs []database.Tx
	senders := make(map[string]struct{})
	for _, tx := range s.mempool.ValidSubset() {
		if _, exists := senders[tx.Input.Address]; exists {
			s.evHandler("state: selectTransactions: WARNING: tx[%s]: sender[%s] already selected", tx, tx.Input.Address)
			continue
		}

		balance := s.db.CalculateBalance(tx.Input.Address)
		if tx.Input.Amount != balance {
			s.evHandler("state: selectTransactions: WARNING: tx[%s]: input amount[%d] balance[%d]", tx, tx.Input.Amount, balance)
			continue
		}

		senders[tx.Input.Address] = struct{}{}
		txs = append(txs, tx)
	}

	return txs
}

// blockEvent provides a specific event about a new block in the chain for
// application specific support.
func (s *State) blockEvent(block database.Block) {
	blockJSON, err := json.Marshal(block)
	if err != nil {
		blockJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	s.evHandler(`viewer: block: {"length":%d,"block":%s}`, s.db.Length(), string(blockJSON))
}
