package wallet

import "time"

// Operation names used for metrics and logs
const (
	opCreate      = "create"
	opFindOne     = "find_one"
	opRemove      = "remove"
	opCredit      = "credit"
	opDebit       = "debit"
	opTransfer    = "transfer"
	opCancel      = "cancel_transaction"
	opMarkWinner  = "mark_winner"
	opListWallets = "list_wallets"
)

// Cache durations
const (
	DefaultWalletTTL = 60 * time.Second
	DefaultListTTL   = 30 * time.Second
)

// Listing defaults
const (
	DefaultPage        = 1
	DefaultLimit       = 10
	MaxLimit           = 100
	DefaultSortBy      = "createdAt_desc"
	DefaultEntryPrice  = 10
	moneyDecimalPlaces = 2
)
