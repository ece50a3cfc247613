/*
Package wallet implements the wallet ledger.

The service owns every change to a wallet's balance and total credit and
records each one as a transaction row. Mutations run inside the
repository's atomic section, so their reads and writes commit together:

	svc := wallet.NewService(repo, c, catalog, wallet.Config{}, nil, log)

	w, err := svc.Create(ctx, wallet.CreateWalletRequest{
	    Code: 1001,
	    User: wallet.UserInput{Name: "Ana", Phone: "+5511999990000"},
	})

	res, err := svc.Credit(ctx, 1001, decimal.NewFromInt(50))

	_, err = svc.CancelTransaction(ctx, 1001, res.Transaction.ID)

Cancellation never deletes rows. The original is marked cancelled and a
reversal row pointing at it is appended, so a wallet's balance always equals
the signed sum of its active transactions.

Cache:

Wallet details and listings are read through the cache. Every mutation
drops the namespace of each wallet it touched, the listings and the lottery
eligible sets. Cache failures are logged and never fail an operation.

Errors:

Operations return *errors.DomainError values from internal/errors. Use
errors.Is against the sentinels or errors.KindOf to classify them.
*/
package wallet
