// This program provides a command line wallet for a cryptochain node.
package main

import "github.com/ardanlabs/cryptochain/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
