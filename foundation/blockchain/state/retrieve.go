package state

import (
	"github.com/ardanlabs/cryptochain/foundation/blockchain/database"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/genesis"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/peer"
)

// WalletInfo represents the address and balance of this node's wallet.
type WalletInfo struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}

// RetrieveHost returns a copy of host information.
func (s *State) RetrieveHost() string {
	return s.host
}

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveBlocks returns a copy of the chain.
func (s *State) RetrieveBlocks() []database.Block {
	return s.db.Blocks()
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	return s.db.LatestBlock()
}

// RetrieveMempool returns a copy of the mempool.
func (s *State) RetrieveMempool() []database.Tx {
	return s.mempool.Copy()
}

// RetrieveWalletInfo returns the address of this node's wallet and its
// balance against the current chain.
func (s *State) RetrieveWalletInfo() WalletInfo {
	return WalletInfo{
		Address: s.wallet.Address(),
		Balance: s.wallet.RefreshBalance(s.db.Blocks()),
	}
}

// QueryBalance returns the balance of the address against the current chain.
func (s *State) QueryBalance(address string) uint64 {
	return s.db.CalculateBalance(address)
}

// RetrieveStatus returns the status of this node for its peers.
func (s *State) RetrieveStatus() peer.PeerStatus {
	return peer.PeerStatus{
		LatestBlockHash: s.db.LatestBlock().Hash,
		Length:          s.db.Length(),
		MempoolLength:   s.mempool.Count(),
		KnownPeers:      s.RetrieveKnownPeers(),
	}
}

// RetrieveKnownPeers retrieves a copy of the known peer list.
func (s *State) RetrieveKnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// IsAutoMine reports whether new transactions start a mining operation.
func (s *State) IsAutoMine() bool {
	return s.autoMine
}

// RetrieveBlocksLength returns the number of blocks in the chain.
func (s *State) RetrieveBlocksLength() int {
	return s.db.Length()
}
