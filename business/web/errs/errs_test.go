package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/ardanlabs/cryptochain/business/web/errs"
	"github.com/ardanlabs/cryptochain/foundation/blockchain/database"
)

func Test_Classify(t *testing.T) {
	type table struct {
		name   string
		err    error
		status int
	}

	tt := []table{
		{name: "short", err: fmt.Errorf("%w: got 1", database.ErrChainTooShort), status: http.StatusConflict},
		{name: "balance", err: fmt.Errorf("%w: amount 10", database.ErrInsufficientBalance), status: http.StatusBadRequest},
		{name: "tx", err: fmt.Errorf("%w: %w", database.ErrTransactionInvalid, database.ErrSignatureInvalid), status: http.StatusBadRequest},
		{name: "pending", err: fmt.Errorf("%w: %w", database.ErrTransactionInvalid, database.ErrSenderPending), status: http.StatusBadRequest},
		{name: "chain", err: fmt.Errorf("%w: block[1]", database.ErrChainInvalid), status: http.StatusBadRequest},
		{name: "data", err: fmt.Errorf("%w: %w", database.ErrChainTransactionDataInvalid, database.ErrDuplicateTx), status: http.StatusBadRequest},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			err := errs.Classify(tst.err)

			trusted := errs.GetTrusted(err)
			if trusted == nil {
				t.Fatalf("Test %s:\tShould get back a trusted error.", tst.name)
			}

			if trusted.Status != tst.status {
				t.Logf("Test %s:\tgot: %d", tst.name, trusted.Status)
				t.Logf("Test %s:\texp: %d", tst.name, tst.status)
				t.Fatalf("Test %s:\tShould get back the right status.", tst.name)
			}

			if !errors.Is(err, tst.err) {
				t.Fatalf("Test %s:\tShould keep the original error.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}

	other := errors.New("disk on fire")
	if err := errs.Classify(other); errs.IsTrusted(err) {
		t.Fatalf("Should not trust an unexpected error.")
	}
}
