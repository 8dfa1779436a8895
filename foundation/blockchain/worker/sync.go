package worker

import "github.com/ardanlabs/cryptochain/foundation/blockchain/peer"

// Sync pulls the chain and mempool from the known peer with the longest
// chain. The chain's transaction data isn't checked since this node has no
// history of its own yet.
func (w *Worker) Sync() {
	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")

	var best peer.Peer
	var bestStatus peer.PeerStatus

	for _, pr := range w.state.RetrieveKnownPeers() {
		status, err := w.state.NetRequestPeerStatus(pr)
		if err != nil {
			w.evHandler("worker: sync: queryPeerStatus: %s: ERROR: %s", pr.Host, err)
			continue
		}

		if status.Length > bestStatus.Length {
			best = pr
			bestStatus = status
		}
	}

	if bestStatus.Length == 0 {
		w.evHandler("worker: sync: no peers available")
		return
	}

	if bestStatus.Length > w.state.RetrieveBlocksLength() {
		w.evHandler("worker: sync: retrievePeerChain: %s: length[%d]", best.Host, bestStatus.Length)

		blocks, err := w.state.NetRequestPeerChain(best)
		if err != nil {
			w.evHandler("worker: sync: retrievePeerChain: %s: ERROR: %s", best.Host, err)
		} else if err := w.state.SyncPeerChain(blocks); err != nil {
			w.evHandler("worker: sync: syncPeerChain: %s: ERROR: %s", best.Host, err)
		}
	}

	pool, err := w.state.NetRequestPeerMempool(best)
	if err != nil {
		w.evHandler("worker: sync: retrievePeerMempool: %s: ERROR: %s", best.Host, err)
		return
	}

	n := w.state.ReplaceMempool(pool)
	w.evHandler("worker: sync: retrievePeerMempool: %s: txs[%d]", best.Host, n)
}
