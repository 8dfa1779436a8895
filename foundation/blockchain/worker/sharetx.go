package worker

import "github.com/ardanlabs/cryptochain/foundation/blockchain/database"

// maxTxShareRequests is the number of transactions that can wait to be
// shared. Signals beyond that are dropped.
const maxTxShareRequests = 100

// shareTxOperations shares the transactions queued by SignalShareTx.
func (w *Worker) shareTxOperations() {
	w.evHandler("worker: shareTxOperations: G started")
	defer w.evHandler("worker: shareTxOperations: G completed")

	for {
		select {
		case tx := <-w.txSharing:
			if w.isShutdown() {
				continue
			}
			w.runShareTxOperation(w.drainTxSharing(tx))

		case <-w.shut:
			w.evHandler("worker: shareTxOperations: received shut signal")
			return
		}
	}
}

// drainTxSharing collects the transactions already waiting behind the first
// one. A transaction updated several times while queued is only sent once,
// in its latest form.
func (w *Worker) drainTxSharing(first database.Tx) []database.Tx {
	order := []string{first.ID}
	latest := map[string]database.Tx{first.ID: first}

	for {
		select {
		case tx := <-w.txSharing:
			if _, exists := latest[tx.ID]; !exists {
				order = append(order, tx.ID)
			}
			latest[tx.ID] = tx

		default:
			txs := make([]database.Tx, len(order))
			for i, id := range order {
				txs[i] = latest[id]
			}
			return txs
		}
	}
}

// runShareTxOperation sends the transactions to the known peers.
func (w *Worker) runShareTxOperation(txs []database.Tx) {
	w.evHandler("worker: runShareTxOperation: started: txs[%d]", len(txs))
	defer w.evHandler("worker: runShareTxOperation: completed")

	for _, tx := range txs {
		if err := w.state.NetSendTxToPeers(tx); err != nil {
			w.evHandler("worker: runShareTxOperation: tx[%s]: WARNING: %s", tx.ID, err)
		}
	}
}
