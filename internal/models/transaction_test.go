package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransaction_SignedValue(t *testing.T) {
	ten := decimal.NewFromInt(10)

	tests := []struct {
		name string
		tx   Transaction
		want decimal.Decimal
	}{
		{name: "active credit", tx: Transaction{Type: TransactionTypeCredit, Status: TransactionStatusActive, Value: ten}, want: ten},
		{name: "active debit", tx: Transaction{Type: TransactionTypeDebit, Status: TransactionStatusActive, Value: ten}, want: ten.Neg()},
		{name: "incoming transfer", tx: Transaction{Type: TransactionTypeTransferIn, Status: TransactionStatusActive, Value: ten}, want: ten},
		{name: "outgoing transfer", tx: Transaction{Type: TransactionTypeTransferOut, Status: TransactionStatusActive, Value: ten}, want: ten.Neg()},
		{name: "cancelled credit", tx: Transaction{Type: TransactionTypeCredit, Status: TransactionStatusCancelled, Value: ten}, want: decimal.Zero},
		{name: "debit reversing a credit", tx: Transaction{Type: TransactionTypeDebit, Status: TransactionStatusActive, Value: ten, OriginalTransactionID: "c1"}, want: decimal.Zero},
		{name: "transfer reversal leg", tx: Transaction{Type: TransactionTypeTransferIn, Status: TransactionStatusActive, Value: ten, OriginalTransactionID: "t1"}, want: decimal.Zero},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(tt.tx.SignedValue()), "got %s", tt.tx.SignedValue())
		})
	}
}

func TestTransaction_CancelledPairNetsOut(t *testing.T) {
	ten := decimal.NewFromInt(10)
	ledger := []Transaction{
		{ID: "c0", Type: TransactionTypeCredit, Status: TransactionStatusActive, Value: decimal.NewFromInt(40)},
		{ID: "c1", Type: TransactionTypeCredit, Status: TransactionStatusCancelled, Value: ten},
		{ID: "r1", Type: TransactionTypeDebit, Status: TransactionStatusActive, Value: ten, OriginalTransactionID: "c1"},
	}

	sum := decimal.Zero
	for i := range ledger {
		sum = sum.Add(ledger[i].SignedValue())
	}
	assert.True(t, sum.Equal(decimal.NewFromInt(40)), "got %s", sum)
}
