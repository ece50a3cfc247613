package cache

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	walletPrefix      = "wallet:"
	walletListPrefix  = "wallets:list:"
	lotteryPrefix     = "lottery:eligible:"
	productPrefix     = "product:"
	productListPrefix = "products:"
)

// WalletKey is the root of a wallet's namespace. Every key derived from it
// is removed by InvalidateWallet.
func WalletKey(code int64) string {
	return fmt.Sprintf("%s%d", walletPrefix, code)
}

func WalletDetailsKey(code int64) string {
	return WalletKey(code) + ":details"
}

// WalletListKey builds a listing key from the query parameters.
func WalletListKey(components ...interface{}) string {
	parts := make([]string, 0, len(components))
	for _, c := range components {
		parts = append(parts, fmt.Sprintf("%v", c))
	}
	return walletListPrefix + strings.Join(parts, ":")
}

func LotteryEligibleKey(entryPrice decimal.Decimal) string {
	return lotteryPrefix + entryPrice.String()
}

func ProductKey(id string) string {
	return productPrefix + id
}

func ProductListKey(activeOnly bool) string {
	if activeOnly {
		return productListPrefix + "active"
	}
	return productListPrefix + "all"
}
