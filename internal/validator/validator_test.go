package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

type sample struct {
	Currency string `validate:"omitempty,iso4217"`
	Color    string `validate:"omitempty,hex_color"`
	TxType   string `validate:"omitempty,transaction_type"`
	CatType  string `validate:"omitempty,category_type"`
	AccType  string `validate:"omitempty,account_type"`
	Status   string `validate:"omitempty,template_status"`
}

func newValidate(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			t.Fatalf("register %s: %v", tag, err)
		}
	}
	return v
}

func TestCustomValidators(t *testing.T) {
	v := newValidate(t)

	tests := []struct {
		name    string
		in      sample
		wantErr bool
	}{
		{"all_valid", sample{Currency: "EUR", Color: "#a1b2c3", TxType: "transfer", CatType: "expense", AccType: "savings", Status: "inactive"}, false},
		{"short_color", sample{Color: "#abc"}, false},
		{"unknown_currency", sample{Currency: "XYZ"}, true},
		{"bad_color", sample{Color: "red"}, true},
		{"investment_transaction", sample{TxType: "investment"}, true},
		{"transfer_category", sample{CatType: "transfer"}, true},
		{"credit_card_account", sample{AccType: "credit_card"}, true},
		{"paused_status", sample{Status: "paused"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("wantErr %v, got %v", tt.wantErr, err)
			}
		})
	}
}
