package errors

var (
	ErrWalletNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "WALLET_NOT_FOUND",
		Message: "wallet not found",
	}
	ErrWalletExists = &DomainError{
		Kind:    KindConflict,
		Code:    "WALLET_EXISTS",
		Message: "wallet code already exists",
	}
	ErrInsufficientBalance = &DomainError{
		Kind:    KindInsufficientFunds,
		Code:    "INSUFFICIENT_BALANCE",
		Message: "insufficient wallet balance",
	}
	ErrInvalidAmount = &DomainError{
		Kind:    KindInvalidArgument,
		Code:    "INVALID_AMOUNT",
		Message: "invalid amount",
	}
	ErrSelfTransfer = &DomainError{
		Kind:    KindInvalidArgument,
		Code:    "SELF_TRANSFER",
		Message: "cannot transfer to the same wallet",
	}
	ErrMissingDebitSource = &DomainError{
		Kind:    KindInvalidArgument,
		Code:    "MISSING_DEBIT_SOURCE",
		Message: "debit requires items or a value",
	}
	ErrInvalidArgument = &DomainError{
		Kind:    KindInvalidArgument,
		Code:    "INVALID_ARGUMENT",
		Message: "invalid argument",
	}
	ErrAlreadyWinner = &DomainError{
		Kind:    KindAlreadyWinner,
		Code:    "ALREADY_WINNER",
		Message: "wallet has already won",
	}
	ErrNoEligibleWallets = &DomainError{
		Kind:    KindNotFound,
		Code:    "NO_ELIGIBLE_WALLETS",
		Message: "no eligible wallets for this entry price",
	}
)
