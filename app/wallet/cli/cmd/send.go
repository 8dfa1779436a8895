package cmd

import (
	"crypto/ecdsa"
	"fmt"
	"log"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/database"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/genesis"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/wallet"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var (
	peerURL  string
	to       string
	amount   uint64
	fromNode bool
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send an amount to an address",
	Run:   sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&peerURL, "peer", "n", "http://localhost:9080", "Url of the node private api.")
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Address of the recipient.")
	sendCmd.Flags().Uint64VarP(&amount, "amount", "v", 0, "Amount to send.")
	sendCmd.Flags().BoolVar(&fromNode, "from-node", false, "Pay from the node wallet instead of the local key.")
}

func sendRun(cmd *cobra.Command, args []string) {
	var tx database.Tx
	var err error

	switch {
	case fromNode:
		tx, err = transactFromNode(url, to, amount)

	default:
		privateKey, lerr := crypto.LoadECDSA(getPrivateKeyPath())
		if lerr != nil {
			log.Fatal(lerr)
		}
		tx, err = sendFromKey(url, peerURL, privateKey, to, amount)
	}

	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("tx[%s] sent: %d to %s\n", tx.ID, tx.OutputMap[to], to)
}

// transactFromNode asks the node to pay the recipient from its own wallet.
func transactFromNode(url string, to string, amount uint64) (database.Tx, error) {
	req := struct {
		Recipient string `json:"recipient"`
		Amount    uint64 `json:"amount"`
	}{
		Recipient: to,
		Amount:    amount,
	}

	var tx database.Tx
	if err := post(fmt.Sprintf("%s/v1/tx/transact", url), req, &tx); err != nil {
		return database.Tx{}, err
	}

	return tx, nil
}

// sendFromKey signs a transaction with the local key against the chain of
// the node and submits it to the node as a peer would.
func sendFromKey(url string, peerURL string, privateKey *ecdsa.PrivateKey, to string, amount uint64) (database.Tx, error) {
	var gen genesis.Genesis
	if err := get(fmt.Sprintf("%s/v1/genesis", url), &gen); err != nil {
		return database.Tx{}, fmt.Errorf("fetching genesis: %w", err)
	}

	var blocks []database.Block
	if err := get(fmt.Sprintf("%s/v1/blocks", url), &blocks); err != nil {
		return database.Tx{}, fmt.Errorf("fetching chain: %w", err)
	}

	w := wallet.NewFromKey(privateKey, gen)

	tx, err := w.CreateTransaction(to, amount, blocks)
	if err != nil {
		return database.Tx{}, err
	}

	if err := post(fmt.Sprintf("%s/v1/node/tx/submit", peerURL), tx, nil); err != nil {
		return database.Tx{}, fmt.Errorf("submitting transaction: %w", err)
	}

	return tx, nil
}
