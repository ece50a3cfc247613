package cache

import (
	"context"
	"errors"
)

// InvalidateWallet drops everything cached for the wallet plus the wallet
// listings, which aggregate every wallet.
func InvalidateWallet(ctx context.Context, c Cache, code int64) error {
	key := WalletKey(code)
	return errors.Join(
		c.Delete(ctx, key),
		c.DeleteByPrefix(ctx, key+":"),
		InvalidateWalletList(ctx, c),
	)
}

func InvalidateWalletList(ctx context.Context, c Cache) error {
	return c.DeleteByPrefix(ctx, walletListPrefix)
}

// InvalidateLottery drops the eligible sets for every entry price.
func InvalidateLottery(ctx context.Context, c Cache) error {
	return c.DeleteByPrefix(ctx, lotteryPrefix)
}

func InvalidateProduct(ctx context.Context, c Cache, id string) error {
	return errors.Join(
		c.Delete(ctx, ProductKey(id)),
		c.DeleteByPrefix(ctx, productListPrefix),
	)
}
