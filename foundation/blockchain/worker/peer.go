package worker

// peerOperations handles checking the known peers for a longer chain.
func (w *Worker) peerOperations() {
	w.evHandler("worker: peerOperations: G started")
	defer w.evHandler("worker: peerOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.runPeersOperation()
			}
		case <-w.shut:
			w.evHandler("worker: peerOperations: received shut signal")
			return
		}
	}
}

// runPeersOperation asks every known peer for its status and requests the
// chain of any peer that has a longer one. The chain goes through the same
// checks as a chain proposed by the peer.
func (w *Worker) runPeersOperation() {
	w.evHandler("worker: runPeersOperation: started")
	defer w.evHandler("worker: runPeersOperation: completed")

	for _, pr := range w.state.RetrieveKnownPeers() {
		status, err := w.state.NetRequestPeerStatus(pr)
		if err != nil {
			w.evHandler("worker: runPeersOperation: queryPeerStatus: %s: ERROR: %s", pr.Host, err)
			continue
		}

		if status.Length <= w.state.RetrieveBlocksLength() {
			continue
		}

		blocks, err := w.state.NetRequestPeerChain(pr)
		if err != nil {
			w.evHandler("worker: runPeersOperation: retrievePeerChain: %s: ERROR: %s", pr.Host, err)
			continue
		}

		if err := w.state.ProcessPeerChain(blocks); err != nil {
			w.evHandler("worker: runPeersOperation: processPeerChain: %s: ERROR: %s", pr.Host, err)
		}
	}
}
