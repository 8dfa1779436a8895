package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Signal the node to mine the transactions in its pool",
	Run:   mineRun,
}

func init() {
	rootCmd.AddCommand(mineCmd)
}

func mineRun(cmd *cobra.Command, args []string) {
	var resp struct {
		Status  string `json:"status"`
		Pending int    `json:"pending"`
	}

	if err := get(fmt.Sprintf("%s/v1/mining/signal", url), &resp); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s: pending[%d]\n", resp.Status, resp.Pending)
}
