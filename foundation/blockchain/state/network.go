package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/database"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/peer"
)

// client is used for all requests to peers.
var client = http.Client{
	Timeout: 10 * time.Second,
}

// NetSendChainToPeers takes the current chain and sends it to all known
// peers. Each peer decides for itself whether to replace its chain.
func (s *State) NetSendChainToPeers() error {
	s.evHandler("state: NetSendChainToPeers: started")
	defer s.evHandler("state: NetSendChainToPeers: completed")

	blocks := s.db.Blocks()

	var errs []error
	for _, peer := range s.RetrieveKnownPeers() {
		url := peer.NodeURL("/chain/propose")

		if err := send(http.MethodPost, url, blocks, nil); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", peer.Host, err))
			continue
		}

		s.evHandler("state: NetSendChainToPeers: sent to peer[%s]", peer.Host)
	}

	return errors.Join(errs...)
}

// NetSendTxToPeers shares a new transaction with the known peers. Every
// peer is tried, the failures are returned together.
func (s *State) NetSendTxToPeers(tx database.Tx) error {
	s.evHandler("state: NetSendTxToPeers: started: tx[%s]", tx.ID)
	defer s.evHandler("state: NetSendTxToPeers: completed")

	var errs []error
	for _, peer := range s.RetrieveKnownPeers() {
		url := peer.NodeURL("/tx/submit")

		if err := send(http.MethodPost, url, tx, nil); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", peer.Host, err))
		}
	}

	return errors.Join(errs...)
}

// NetRequestPeerStatus asks the peer for the state of its chain.
func (s *State) NetRequestPeerStatus(pr peer.Peer) (peer.PeerStatus, error) {
	s.evHandler("state: NetRequestPeerStatus: started: %s", pr.Host)
	defer s.evHandler("state: NetRequestPeerStatus: completed: %s", pr.Host)

	url := pr.NodeURL("/status")

	var ps peer.PeerStatus
	if err := send(http.MethodGet, url, nil, &ps); err != nil {
		return peer.PeerStatus{}, err
	}

	s.evHandler("state: NetRequestPeerStatus: peer-node[%s]: length[%d]: latest-blk[%s]", pr.Host, ps.Length, ps.LatestBlockHash)

	return ps, nil
}

// NetRequestPeerChain asks the peer for its full chain.
func (s *State) NetRequestPeerChain(pr peer.Peer) ([]database.Block, error) {
	s.evHandler("state: NetRequestPeerChain: started: %s", pr.Host)
	defer s.evHandler("state: NetRequestPeerChain: completed: %s", pr.Host)

	url := pr.NodeURL("/chain")

	var blocks []database.Block
	if err := send(http.MethodGet, url, nil, &blocks); err != nil {
		return nil, err
	}

	s.evHandler("state: NetRequestPeerChain: length[%d]", len(blocks))

	return blocks, nil
}

// NetRequestPeerMempool asks the peer for the transactions in their mempool.
func (s *State) NetRequestPeerMempool(pr peer.Peer) ([]database.Tx, error) {
	s.evHandler("state: NetRequestPeerMempool: started: %s", pr.Host)
	defer s.evHandler("state: NetRequestPeerMempool: completed: %s", pr.Host)

	url := pr.NodeURL("/tx/list")

	var mempool []database.Tx
	if err := send(http.MethodGet, url, nil, &mempool); err != nil {
		return nil, err
	}

	s.evHandler("state: NetRequestPeerMempool: len[%d]", len(mempool))

	return mempool, nil
}

// =============================================================================

// send is a helper function to send an HTTP request to a node.
func send(method string, url string, dataSend any, dataRecv any) error {
	var body io.Reader
	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, msg)
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return err
		}
	}

	return nil
}
