package wallet

import (
	"errors"

	apperrors "prizewallet/internal/errors"
	"prizewallet/internal/repositories"

	"github.com/shopspring/decimal"
)

// translateError turns store failures into domain errors. Domain errors
// raised inside an atomic section pass through untouched.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var de *apperrors.DomainError
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, repositories.ErrWalletNotFound):
		return apperrors.ErrWalletNotFound
	case errors.Is(err, repositories.ErrDuplicateWallet):
		return apperrors.ErrWalletExists
	case errors.Is(err, repositories.ErrTransactionNotFound):
		return apperrors.ErrTransactionNotFound
	case errors.Is(err, repositories.ErrTransactionNotActive):
		return apperrors.ErrAlreadyCancelled
	}
	return apperrors.Internal(err)
}

func validateAmount(v decimal.Decimal) error {
	if !v.IsPositive() {
		return apperrors.ErrInvalidAmount
	}
	if !v.Equal(v.Round(moneyDecimalPlaces)) {
		return apperrors.ErrInvalidAmount.Withf("amount must have at most %d decimal places", moneyDecimalPlaces)
	}
	return nil
}

func kindName(err error) string {
	return apperrors.KindOf(err).String()
}
