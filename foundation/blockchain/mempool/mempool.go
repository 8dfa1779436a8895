// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"sort"
	"sync"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/database"
)

// Mempool represents a cache of transactions not yet recorded in a block,
// organized by transaction id.
type Mempool struct {
	mu   sync.RWMutex
	pool map[string]database.Tx
}

// New constructs a new empty mempool.
func New() *Mempool {
	return &Mempool{
		pool: make(map[string]database.Tx),
	}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Upsert adds or replaces a transaction in the mempool.
func (mp *Mempool) Upsert(tx database.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool[tx.ID] = tx.Clone()

	return len(mp.pool)
}

// Delete removes a transaction from the mempool.
func (mp *Mempool) Delete(id string) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	delete(mp.pool, id)
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = make(map[string]database.Tx)
}

// Replace sets the pool to the specified transactions, dropping everything
// it held before.
func (mp *Mempool) Replace(txs []database.Tx) {
	pool := make(map[string]database.Tx, len(txs))
	for _, tx := range txs {
		pool[tx.ID] = tx.Clone()
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = pool
}

// Copy returns a list of the current transactions in the pool ordered by
// the time they were signed.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	txs := make([]database.Tx, 0, len(mp.pool))
	for _, tx := range mp.pool {
		txs = append(txs, tx.Clone())
	}

	sort.Slice(txs, func(i, j int) bool {
		if txs[i].Input.Timestamp == txs[j].Input.Timestamp {
			return txs[i].ID < txs[j].ID
		}
		return txs[i].Input.Timestamp < txs[j].Input.Timestamp
	})

	return txs
}

// FindBySenderAddress returns a copy of the pooled transaction signed by the
// specified address. The bool is false when there is none.
func (mp *Mempool) FindBySenderAddress(address string) (database.Tx, bool) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	for _, tx := range mp.pool {
		if tx.Input.Address == address {
			return tx.Clone(), true
		}
	}

	return database.Tx{}, false
}

// ValidSubset returns the transactions in the pool that pass validation,
// in the same order as Copy.
func (mp *Mempool) ValidSubset() []database.Tx {
	var txs []database.Tx
	for _, tx := range mp.Copy() {
		if err := tx.Validate(); err != nil {
			continue
		}
		txs = append(txs, tx)
	}

	return txs
}

// PruneConfirmed removes every transaction recorded in a non-genesis block
// of the specified chain. It returns the number of transactions removed.
func (mp *Mempool) PruneConfirmed(blocks []database.Block) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	var removed int
	for i := 1; i < len(blocks); i++ {
		for _, tx := range blocks[i].Data {
			if _, exists := mp.pool[tx.ID]; exists {
				delete(mp.pool, tx.ID)
				removed++
			}
		}
	}

	return removed
}
