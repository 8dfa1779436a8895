package state

import (
	"fmt"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/database"
)

// SubmitTransfer pays the recipient from this node's wallet. If the wallet
// already has a transaction in the mempool, the payment is merged into it.
// Otherwise a new transaction is created against the current chain. The
// resulting transaction is shared with the known peers.
func (s *State) SubmitTransfer(recipient string, amount uint64) (database.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, exists := s.mempool.FindBySenderAddress(s.wallet.Address())
	switch {
	case exists:
		if err := tx.Update(s.wallet, recipient, amount); err != nil {
			return database.Tx{}, err
		}
		s.evHandler("state: SubmitTransfer: updated tx[%s]", tx.ID)

	default:
		var err error
		tx, err = s.wallet.CreateTransaction(recipient, amount, s.db.Blocks())
		if err != nil {
			return database.Tx{}, err
		}
		s.evHandler("state: SubmitTransfer: created tx[%s]", tx.ID)
	}

	s.mempool.Upsert(tx)

	s.Worker.SignalShareTx(tx)
	if s.autoMine {
		s.Worker.SignalStartMining()
	}

	return tx, nil
}

// UpsertNodeTransaction accepts a transaction from a node for inclusion. A
// sender may hold one pending transaction; a later version of that same
// transaction replaces it, a different one is rejected.
func (s *State) UpsertNodeTransaction(tx database.Tx) error {
	if tx.IsReward(s.genesis) {
		return fmt.Errorf("%w: reward transactions can't be submitted", database.ErrTransactionInvalid)
	}

	if err := tx.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if pending, exists := s.mempool.FindBySenderAddress(tx.Input.Address); exists && pending.ID != tx.ID {
		return fmt.Errorf("%w: %w: tx[%s] pending[%s]", database.ErrTransactionInvalid, database.ErrSenderPending, tx.ID, pending.ID)
	}

	s.mempool.Upsert(tx)
	s.evHandler("state: UpsertNodeTransaction: tx[%s]", tx.ID)

	if s.autoMine {
		s.Worker.SignalStartMining()
	}

	return nil
}

// ReplaceMempool sets the mempool to the valid transactions provided,
// keeping the first transaction seen for each sender. It returns the number
// of transactions kept.
func (s *State) ReplaceMempool(txs []database.Tx) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	valid := make([]database.Tx, 0, len(txs))
	senders := make(map[string]struct{})
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			s.evHandler("state: ReplaceMempool: WARNING: tx[%s]: %s", tx, err)
			continue
		}
		if _, exists := senders[tx.Input.Address]; exists {
			s.evHandler("state: ReplaceMempool: WARNING: tx[%s]: sender[%s] already pending", tx, tx.Input.Address)
			continue
		}
		senders[tx.Input.Address] = struct{}{}
		valid = append(valid, tx)
	}

	s.mempool.Replace(valid)

	return len(valid)
}
