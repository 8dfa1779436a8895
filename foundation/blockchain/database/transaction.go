package database

import (
	"fmt"
	"time"

	"github.com/ardanlabs/cryptochain/foundation/blockchain/genesis"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/signature"
	"github.com/google/uuid"
)

// Signer represents the behavior required to create and sign transactions
// on behalf of an address. The wallet package provides the implementation.
type Signer interface {
	Address() string
	Balance() uint64
	Sign(value any) (string, error)
}

// =============================================================================

// Input identifies who is spending and proves it with a signature over the
// content hash of the output map.
type Input struct {
	Timestamp int64  `json:"timestamp"` // Unix milliseconds when the input was signed.
	Amount    uint64 `json:"amount"`    // Balance of the sender being spent, the sum of all outputs.
	Address   string `json:"address"`   // Public key of the sender.
	Signature string `json:"signature"` // Signature of the output map by the sender.
}

// Tx is a signed transfer record. The output map holds the amount each
// address receives, including the change going back to the sender.
type Tx struct {
	ID        string            `json:"id"`
	Input     Input             `json:"input"`
	OutputMap map[string]uint64 `json:"output_map"`
	Recipient string            `json:"recipient,omitempty"`
	Amount    uint64            `json:"amount,omitempty"`
}

// NewTx constructs a transaction from the sender's currently known balance.
// The output map splits the balance between the recipient and the sender.
func NewTx(sender Signer, recipient string, amount uint64) (Tx, error) {
	from := sender.Address()

	if recipient == "" {
		return Tx{}, fmt.Errorf("%w: %w", ErrTransactionInvalid, ErrRecipientRequired)
	}

	if recipient == from {
		return Tx{}, fmt.Errorf("%w: %w", ErrTransactionInvalid, ErrSelfPayment)
	}

	balance := sender.Balance()
	if amount > balance {
		return Tx{}, fmt.Errorf("%w: amount %d, balance %d", ErrInsufficientBalance, amount, balance)
	}

	outputMap := map[string]uint64{
		recipient: amount,
		from:      balance - amount,
	}

	input, err := newInput(sender, balance, outputMap)
	if err != nil {
		return Tx{}, err
	}

	tx := Tx{
		ID:        uuid.NewString(),
		Input:     input,
		OutputMap: outputMap,
		Recipient: recipient,
		Amount:    amount,
	}

	return tx, nil
}

// NewRewardTx constructs the reward transaction paying the miner. It uses the
// synthetic reward input and is not signed.
func NewRewardTx(minerAddress string, gen genesis.Genesis) Tx {
	return Tx{
		ID: uuid.NewString(),
		Input: Input{
			Timestamp: time.Now().UnixMilli(),
			Address:   gen.RewardAddress,
		},
		OutputMap: map[string]uint64{
			minerAddress: gen.MiningReward,
		},
	}
}

// Update merges another recipient and amount into an unconfirmed transaction
// and signs it again. The amount comes out of the sender's remaining output.
// On any error the transaction is left unchanged.
func (tx *Tx) Update(sender Signer, recipient string, amount uint64) error {
	from := sender.Address()

	if tx.Input.Address != from {
		return fmt.Errorf("%w: %w", ErrTransactionInvalid, ErrNotSender)
	}

	if recipient == "" {
		return fmt.Errorf("%w: %w", ErrTransactionInvalid, ErrRecipientRequired)
	}

	if recipient == from {
		return fmt.Errorf("%w: %w", ErrTransactionInvalid, ErrSelfPayment)
	}

	remaining := tx.OutputMap[from]
	if amount > remaining {
		return fmt.Errorf("%w: amount %d, remaining %d", ErrInsufficientBalance, amount, remaining)
	}

	outputMap := make(map[string]uint64, len(tx.OutputMap)+1)
	for address, value := range tx.OutputMap {
		outputMap[address] = value
	}
	outputMap[recipient] += amount
	outputMap[from] = remaining - amount

	input, err := newInput(sender, tx.Input.Amount, outputMap)
	if err != nil {
		return err
	}

	tx.OutputMap = outputMap
	tx.Input = input

	return nil
}

// Validate checks the outputs add up to the input amount and the input
// signature was produced by the input address over the output map.
func (tx Tx) Validate() error {
	var total uint64
	for _, value := range tx.OutputMap {
		if total+value < total {
			return fmt.Errorf("%w: %w: output total overflows: from %s", ErrTransactionInvalid, ErrOutputSumMismatch, tx.Input.Address)
		}
		total += value
	}

	if total != tx.Input.Amount {
		return fmt.Errorf("%w: %w: got %d, exp %d: from %s", ErrTransactionInvalid, ErrOutputSumMismatch, total, tx.Input.Amount, tx.Input.Address)
	}

	if err := signature.Verify(tx.OutputMap, tx.Input.Address, tx.Input.Signature); err != nil {
		return fmt.Errorf("%w: %w: from %s: %s", ErrTransactionInvalid, ErrSignatureInvalid, tx.Input.Address, err)
	}

	return nil
}

// IsReward reports whether this is a mining reward transaction.
func (tx Tx) IsReward(gen genesis.Genesis) bool {
	return tx.Input.Address == gen.RewardAddress
}

// Clone returns a copy of the transaction that doesn't share the output map.
func (tx Tx) Clone() Tx {
	outputMap := make(map[string]uint64, len(tx.OutputMap))
	for address, value := range tx.OutputMap {
		outputMap[address] = value
	}
	tx.OutputMap = outputMap

	return tx
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	from := tx.Input.Address
	if len(from) > 12 {
		from = from[:12]
	}

	return fmt.Sprintf("%s:%s", from, tx.ID)
}

// =============================================================================

// newInput signs the output map on behalf of the sender.
func newInput(sender Signer, amount uint64, outputMap map[string]uint64) (Input, error) {
	sig, err := sender.Sign(outputMap)
	if err != nil {
		return Input{}, fmt.Errorf("signing output map: %w", err)
	}

	input := Input{
		Timestamp: time.Now().UnixMilli(),
		Amount:    amount,
		Address:   sender.Address(),
		Signature: sig,
	}

	return input, nil
}
