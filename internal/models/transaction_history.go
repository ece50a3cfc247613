package models

// TransactionHistory is a ledger row as shown to wallet owners: debit rows
// carry the product lines they paid for.
type TransactionHistory struct {
	Transaction
	Products []ProductSale `json:"products,omitempty"`
}
