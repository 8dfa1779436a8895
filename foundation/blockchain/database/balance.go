package database

// CalculateBalance derives the balance of the address from the chain. Blocks
// are scanned from the tip backwards, excluding the genesis block. Every
// output paid to the address is added up until a block holding a spend by
// the address has been fully scanned. That spend carries the address's change,
// so older outputs are already accounted for. An address that has never
// spent gets the starting balance on top of everything it received.
func CalculateBalance(blocks []Block, address string, startingBalance uint64) uint64 {
	var hasSpent bool
	var outputsTotal uint64

	for i := len(blocks) - 1; i > 0; i-- {
		for _, tx := range blocks[i].Data {
			if tx.Input.Address == address {
				hasSpent = true
			}

			outputsTotal += tx.OutputMap[address]
		}

		if hasSpent {
			break
		}
	}

	if hasSpent {
		return outputsTotal
	}

	return startingBalance + outputsTotal
}
