package errors

var (
	ErrTransactionNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "TRANSACTION_NOT_FOUND",
		Message: "transaction not found",
	}
	ErrTransactionMismatch = &DomainError{
		Kind:    KindForbidden,
		Code:    "TRANSACTION_MISMATCH",
		Message: "transaction does not belong to this wallet",
	}
	ErrAlreadyCancelled = &DomainError{
		Kind:    KindAlreadyCancelled,
		Code:    "ALREADY_CANCELLED",
		Message: "transaction already cancelled",
	}
	ErrUnsupportedCancellation = &DomainError{
		Kind:    KindInvalidArgument,
		Code:    "UNSUPPORTED_CANCELLATION",
		Message: "transaction type cannot be cancelled",
	}
	ErrReversalNotCancellable = &DomainError{
		Kind:    KindInvalidArgument,
		Code:    "REVERSAL_NOT_CANCELLABLE",
		Message: "reversal transactions cannot be cancelled",
	}
)
