package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/database"
)

// miningOperations waits for mining signals and runs one mining operation
// at a time.
func (w *Worker) miningOperations() {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	for {
		select {
		case <-w.startMining:
			if !w.isShutdown() {
				w.runMiningOperation()
			}
		case <-w.shut:
			w.evHandler("worker: miningOperations: received shut signal")
			return
		}
	}
}

// runMiningOperation mines the mempool into a new block. A chain replacement
// can cancel the operation at any point through SignalCancelMining, in which
// case this function doesn't return until the replacement is done.
func (w *Worker) runMiningOperation() {
	w.evHandler("worker: runMiningOperation: MINING: started")
	defer w.evHandler("worker: runMiningOperation: MINING: completed")

	defer w.signalPendingMining()

	// A cancel request left over from a replacement that happened while
	// no block was being mined doesn't apply to this operation.
	select {
	case <-w.cancelMining:
		w.evHandler("worker: runMiningOperation: MINING: drained cancel channel")
	default:
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hold := make(chan chan struct{}, 1)

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		select {
		case wait := <-w.cancelMining:
			w.evHandler("worker: runMiningOperation: MINING: CANCEL: requested")
			hold <- wait
			cancel()
		case <-ctx.Done():
		}
	}()

	w.mine(ctx)

	cancel()
	wg.Wait()

	select {
	case wait := <-hold:
		w.evHandler("worker: runMiningOperation: MINING: termination signal: waiting")
		<-wait
		w.evHandler("worker: runMiningOperation: MINING: termination signal: received")
	default:
	}
}

// mine performs the work and broadcasts the new chain when a block is added.
func (w *Worker) mine(ctx context.Context) {
	start := time.Now()
	block, err := w.state.MineNewBlock(ctx)
	w.evHandler("worker: runMiningOperation: MINING: mining duration[%v]", time.Since(start))

	switch {
	case err == nil:
	case errors.Is(err, database.ErrChainChanged):
		w.evHandler("worker: runMiningOperation: MINING: WARNING: chain replaced while mining")
		return
	case ctx.Err() != nil:
		w.evHandler("worker: runMiningOperation: MINING: CANCEL: complete")
		return
	default:
		w.evHandler("worker: runMiningOperation: MINING: ERROR: %s", err)
		return
	}

	w.evHandler("worker: runMiningOperation: MINING: SOLVED: blk[%s]", block.Hash)

	if err := w.state.NetSendChainToPeers(); err != nil {
		w.evHandler("worker: runMiningOperation: MINING: NetSendChainToPeers: WARNING: %s", err)
	}
}

// signalPendingMining starts another operation when auto mining is on and
// transactions arrived while the last block was mined.
func (w *Worker) signalPendingMining() {
	length := w.state.QueryMempoolLength()
	if length > 0 && w.state.IsAutoMine() {
		w.evHandler("worker: runMiningOperation: MINING: signal new mining operation: txs[%d]", length)
		w.SignalStartMining()
	}
}
