package cmd

import (
	"fmt"
	"log"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/signature"
	"github.com/ardanlabs/cryptochain/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var listAccounts bool

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Print the address of the wallet or of every key in the account path",
	Run:   accountRun,
}

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.Flags().BoolVarP(&listAccounts, "list", "l", false, "List every key in the account path.")
}

func accountRun(cmd *cobra.Command, args []string) {
	if listAccounts {
		ns, err := nameservice.New(accountPath)
		if err != nil {
			log.Fatal(err)
		}

		for address, name := range ns.Copy() {
			fmt.Printf("%-12s %s\n", name, address)
		}
		return
	}

	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(signature.PublicKeyToAddress(privateKey.PublicKey))
}
