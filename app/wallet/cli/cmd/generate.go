package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/genesis"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new key pair",
	Run:   generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func generateRun(cmd *cobra.Command, args []string) {
	path := getPrivateKeyPath()

	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("key file %q already exists", path)
	}

	w, err := wallet.Load(path, genesis.Default())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(w.Address())
}
