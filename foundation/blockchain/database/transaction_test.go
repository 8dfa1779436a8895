package database_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/database"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/genesis"
)

func sum(outputMap map[string]uint64) uint64 {
	var total uint64
	for _, value := range outputMap {
		total += value
	}
	return total
}

// =============================================================================

func Test_NewTx(t *testing.T) {
	gen := genesis.Default()
	sender := newWallet(t, senderHexKey, gen)
	recipient := newWallet(t, recipientHexKey, gen)

	t.Log("Given the need to create a transaction.")
	{
		tx, err := database.NewTx(sender, recipient.Address(), 50)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create a transaction: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to create a transaction.", success)

		if tx.ID == "" {
			t.Fatalf("\t%s\tShould have an id.", failed)
		}
		t.Logf("\t%s\tShould have an id.", success)

		if tx.OutputMap[recipient.Address()] != 50 {
			t.Fatalf("\t%s\tShould output the amount to the recipient: got %d", failed, tx.OutputMap[recipient.Address()])
		}
		t.Logf("\t%s\tShould output the amount to the recipient.", success)

		if tx.OutputMap[sender.Address()] != gen.StartingBalance-50 {
			t.Fatalf("\t%s\tShould output the remaining balance to the sender: got %d", failed, tx.OutputMap[sender.Address()])
		}
		t.Logf("\t%s\tShould output the remaining balance to the sender.", success)

		if tx.Input.Amount != sender.Balance() || tx.Input.Address != sender.Address() {
			t.Fatalf("\t%s\tShould have an input with the sender balance and address.", failed)
		}
		t.Logf("\t%s\tShould have an input with the sender balance and address.", success)

		if sum(tx.OutputMap) != tx.Input.Amount {
			t.Fatalf("\t%s\tShould have outputs that add up to the input amount.", failed)
		}
		t.Logf("\t%s\tShould have outputs that add up to the input amount.", success)

		if err := tx.Validate(); err != nil {
			t.Fatalf("\t%s\tShould be a valid transaction: %v", failed, err)
		}
		t.Logf("\t%s\tShould be a valid transaction.", success)

		if _, err := database.NewTx(sender, recipient.Address(), gen.StartingBalance+1); !errors.Is(err, database.ErrInsufficientBalance) {
			t.Fatalf("\t%s\tShould not be able to spend more than the balance: %v", failed, err)
		}
		t.Logf("\t%s\tShould not be able to spend more than the balance.", success)

		if _, err := database.NewTx(sender, sender.Address(), 10); !errors.Is(err, database.ErrTransactionInvalid) || !errors.Is(err, database.ErrSelfPayment) {
			t.Fatalf("\t%s\tShould not be able to pay the sender: %v", failed, err)
		}
		t.Logf("\t%s\tShould not be able to pay the sender.", success)

		if _, err := database.NewTx(sender, "", 10); !errors.Is(err, database.ErrTransactionInvalid) || !errors.Is(err, database.ErrRecipientRequired) {
			t.Fatalf("\t%s\tShould require a recipient: %v", failed, err)
		}
		t.Logf("\t%s\tShould require a recipient.", success)
	}
}

func Test_ValidateTx(t *testing.T) {
	gen := genesis.Default()
	sender := newWallet(t, senderHexKey, gen)
	recipient := newWallet(t, recipientHexKey, gen)

	type table struct {
		name   string
		change func(tx *database.Tx)
		err    error
	}

	tt := []table{
		{
			name: "outputs",
			change: func(tx *database.Tx) {
				tx.OutputMap[sender.Address()] = 999_999
			},
			err: database.ErrOutputSumMismatch,
		},
		{
			name: "signature",
			change: func(tx *database.Tx) {
				sig, err := sender.Sign("other data")
				if err != nil {
					t.Fatalf("\t%s\tShould be able to sign data: %v", failed, err)
				}
				tx.Input.Signature = sig
			},
			err: database.ErrSignatureInvalid,
		},
		{
			name: "address",
			change: func(tx *database.Tx) {
				tx.Input.Address = recipient.Address()
			},
			err: database.ErrSignatureInvalid,
		},
	}

	t.Log("Given the need to validate transactions.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				tx, err := database.NewTx(sender, recipient.Address(), 50)
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to create a transaction: %v", failed, testID, err)
				}

				tst.change(&tx)

				err = tx.Validate()
				if !errors.Is(err, database.ErrTransactionInvalid) || !errors.Is(err, tst.err) {
					t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, err)
					t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.err)
					t.Fatalf("\t%s\tTest %d:\tShould report the failed check.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould report the failed check.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_UpdateTx(t *testing.T) {
	gen := genesis.Default()
	sender := newWallet(t, senderHexKey, gen)
	recipient := newWallet(t, recipientHexKey, gen)
	next := newWallet(t, minerHexKey, gen)

	t.Log("Given the need to add recipients to an unconfirmed transaction.")
	{
		tx, err := database.NewTx(sender, recipient.Address(), 50)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to create a transaction: %v", failed, err)
		}

		original := tx.Clone()

		t.Logf("\tWhen the amount exceeds the remaining balance.")
		{
			err := tx.Update(sender, next.Address(), 951)
			if !errors.Is(err, database.ErrInsufficientBalance) {
				t.Fatalf("\t%s\tShould fail with insufficient balance: %v", failed, err)
			}
			t.Logf("\t%s\tShould fail with insufficient balance.", success)

			if !reflect.DeepEqual(tx, original) {
				t.Fatalf("\t%s\tShould leave the transaction unchanged.", failed)
			}
			t.Logf("\t%s\tShould leave the transaction unchanged.", success)
		}

		t.Logf("\tWhen the update is not a valid transfer.")
		{
			tests := []struct {
				name      string
				signer    database.Signer
				recipient string
				err       error
			}{
				{"other signer", next, recipient.Address(), database.ErrNotSender},
				{"no recipient", sender, "", database.ErrRecipientRequired},
				{"self payment", sender, sender.Address(), database.ErrSelfPayment},
			}

			for _, tst := range tests {
				err := tx.Update(tst.signer, tst.recipient, 10)
				if !errors.Is(err, database.ErrTransactionInvalid) || !errors.Is(err, tst.err) {
					t.Fatalf("\t%s\tShould reject the update for %s: %v", failed, tst.name, err)
				}
				t.Logf("\t%s\tShould reject the update for %s.", success, tst.name)
			}

			if !reflect.DeepEqual(tx, original) {
				t.Fatalf("\t%s\tShould leave the transaction unchanged.", failed)
			}
			t.Logf("\t%s\tShould leave the transaction unchanged.", success)
		}

		t.Logf("\tWhen the amount is valid.")
		{
			if err := tx.Update(sender, next.Address(), 100); err != nil {
				t.Fatalf("\t%s\tShould be able to update the transaction: %v", failed, err)
			}
			t.Logf("\t%s\tShould be able to update the transaction.", success)

			if tx.OutputMap[next.Address()] != 100 {
				t.Fatalf("\t%s\tShould output the amount to the next recipient: got %d", failed, tx.OutputMap[next.Address()])
			}
			t.Logf("\t%s\tShould output the amount to the next recipient.", success)

			if tx.OutputMap[sender.Address()] != original.OutputMap[sender.Address()]-100 {
				t.Fatalf("\t%s\tShould subtract the amount from the sender output: got %d", failed, tx.OutputMap[sender.Address()])
			}
			t.Logf("\t%s\tShould subtract the amount from the sender output.", success)

			if tx.Input.Signature == original.Input.Signature {
				t.Fatalf("\t%s\tShould sign the transaction again.", failed)
			}
			t.Logf("\t%s\tShould sign the transaction again.", success)

			if sum(tx.OutputMap) != tx.Input.Amount {
				t.Fatalf("\t%s\tShould have outputs that add up to the input amount.", failed)
			}
			t.Logf("\t%s\tShould have outputs that add up to the input amount.", success)

			if err := tx.Validate(); err != nil {
				t.Fatalf("\t%s\tShould be a valid transaction: %v", failed, err)
			}
			t.Logf("\t%s\tShould be a valid transaction.", success)
		}

		t.Logf("\tWhen the recipient already has an output.")
		{
			if err := tx.Update(sender, next.Address(), 25); err != nil {
				t.Fatalf("\t%s\tShould be able to update the transaction: %v", failed, err)
			}

			if tx.OutputMap[next.Address()] != 125 {
				t.Fatalf("\t%s\tShould add to the existing output: got %d", failed, tx.OutputMap[next.Address()])
			}
			t.Logf("\t%s\tShould add to the existing output.", success)

			if tx.OutputMap[sender.Address()] != gen.StartingBalance-50-125 {
				t.Fatalf("\t%s\tShould subtract the amount from the sender output: got %d", failed, tx.OutputMap[sender.Address()])
			}
			t.Logf("\t%s\tShould subtract the amount from the sender output.", success)

			if err := tx.Validate(); err != nil {
				t.Fatalf("\t%s\tShould be a valid transaction: %v", failed, err)
			}
			t.Logf("\t%s\tShould be a valid transaction.", success)
		}
	}
}

func Test_RewardTx(t *testing.T) {
	gen := genesis.Default()
	miner := newWallet(t, minerHexKey, gen)

	t.Log("Given the need to reward a miner.")
	{
		tx := database.NewRewardTx(miner.Address(), gen)

		if !tx.IsReward(gen) || tx.Input.Address != gen.RewardAddress {
			t.Fatalf("\t%s\tShould use the reward input.", failed)
		}
		t.Logf("\t%s\tShould use the reward input.", success)

		if len(tx.OutputMap) != 1 || tx.OutputMap[miner.Address()] != gen.MiningReward {
			t.Fatalf("\t%s\tShould pay the mining reward to the miner only.", failed)
		}
		t.Logf("\t%s\tShould pay the mining reward to the miner only.", success)
	}
}
