package validate_test

import (
	"testing"

	"github.com/ardanlabs/cryptochain/business/sys/validate"
)

type transfer struct {
	Recipient string `json:"recipient" validate:"required,hexadecimal"`
	Amount    uint64 `json:"amount" validate:"required,gt=0"`
}

func Test_Check(t *testing.T) {
	if err := validate.Check(transfer{Recipient: "0x04ab", Amount: 10}); err != nil {
		t.Fatalf("Should accept a valid value: %v", err)
	}

	err := validate.Check(transfer{})
	if !validate.IsFieldErrors(err) {
		t.Fatalf("Should get back field errors: %v", err)
	}

	fields := validate.GetFieldErrors(err).Fields()
	if _, exists := fields["recipient"]; !exists {
		t.Fatalf("Should report the recipient field by its json name: %v", fields)
	}
	if _, exists := fields["amount"]; !exists {
		t.Fatalf("Should report the amount field by its json name: %v", fields)
	}
}
