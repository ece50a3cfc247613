package errors

var (
	ErrProductNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "PRODUCT_NOT_FOUND",
		Message: "product not found",
	}
	ErrProductInactive = &DomainError{
		Kind:    KindInvalidState,
		Code:    "PRODUCT_INACTIVE",
		Message: "product is not active",
	}
	ErrProductExists = &DomainError{
		Kind:    KindConflict,
		Code:    "PRODUCT_EXISTS",
		Message: "a product with this name already exists",
	}
)
