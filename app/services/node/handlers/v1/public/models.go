package public

import "github.com/ardanlabs/cryptochain/foundation/blockchain/database"

// transfer is the payload a client posts to pay from the node wallet.
type transfer struct {
	Recipient string `json:"recipient" validate:"required"`
	Amount    uint64 `json:"amount" validate:"required,gt=0"`
}

type wallet struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
	Balance uint64 `json:"balance"`
}

type balance struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
	Balance uint64 `json:"balance"`
}

type miningStatus struct {
	Status  string `json:"status"`
	Pending int    `json:"pending"`
}

// txPool mirrors the pool as a map of transaction id to transaction.
type txPool map[string]database.Tx
