package database

import "errors"

// Set of errors reported when a candidate chain is rejected.
var (
	ErrChainTooShort               = errors.New("chain too short: incoming chain must be longer")
	ErrChainInvalid                = errors.New("chain invalid")
	ErrChainTransactionDataInvalid = errors.New("chain transaction data invalid")
	ErrChainChanged                = errors.New("chain changed while mining")
)

// Set of reasons a chain's transaction data is invalid. These are joined
// with ErrChainTransactionDataInvalid.
var (
	ErrRewardCountExceeded  = errors.New("mining reward limit exceeded")
	ErrRewardAmountMismatch = errors.New("mining reward amount is invalid")
	ErrTxAmountMismatch     = errors.New("input amount does not match balance")
	ErrDuplicateTx          = errors.New("duplicate transaction")
	ErrDuplicateSender      = errors.New("sender has more than one transaction in block")
)

// Set of errors reported when a transaction is validated or built.
var (
	ErrTransactionInvalid  = errors.New("transaction invalid")
	ErrOutputSumMismatch   = errors.New("output total does not match input amount")
	ErrSignatureInvalid    = errors.New("signature invalid")
	ErrInsufficientBalance = errors.New("amount exceeds balance")
	ErrRecipientRequired   = errors.New("recipient is required")
	ErrSelfPayment         = errors.New("recipient can't be the sender")
	ErrNotSender           = errors.New("transaction does not belong to the sender")
	ErrSenderPending       = errors.New("sender already has a pending transaction")
)
