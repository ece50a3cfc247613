package wallet

import (
	"context"
	"fmt"
	"time"

	apperrors "prizewallet/internal/errors"
	"prizewallet/internal/models"
	"prizewallet/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func (s *service) Transfer(ctx context.Context, req TransferRequest) (res *TransferResult, err error) {
	defer s.observe(opTransfer, time.Now(), &err)

	if err := validateAmount(req.Value); err != nil {
		return nil, err
	}
	if req.FromCode == req.ToCode {
		return nil, apperrors.ErrSelfTransfer
	}

	// Fail fast. The atomic section repeats every check.
	from, err := s.repo.GetByCode(ctx, req.FromCode)
	if err != nil {
		return nil, translateError(err)
	}
	if _, err := s.repo.GetByCode(ctx, req.ToCode); err != nil {
		return nil, translateError(err)
	}
	if from.Balance.LessThan(req.Value) {
		return nil, insufficient(from.Balance, req.Value)
	}

	err = s.repo.ExecuteInTransaction(ctx, func(tx repositories.WalletRepository) error {
		wallets, err := tx.GetByCodesForUpdate(ctx, req.FromCode, req.ToCode)
		if err != nil {
			return err
		}
		from, to := wallets[req.FromCode], wallets[req.ToCode]
		if from == nil || to == nil {
			return apperrors.ErrWalletNotFound
		}
		if from.Balance.LessThan(req.Value) {
			return insufficient(from.Balance, req.Value)
		}

		from.Balance = from.Balance.Sub(req.Value)
		to.Balance = to.Balance.Add(req.Value)
		if err := tx.UpdateWallet(ctx, from); err != nil {
			return err
		}
		if err := tx.UpdateWallet(ctx, to); err != nil {
			return err
		}

		transferID := uuid.NewString()
		out, in := newTransferPair(from, to, req.Value, transferID, s.now(), "")
		if err := tx.CreateTransaction(ctx, out); err != nil {
			return err
		}
		if err := tx.CreateTransaction(ctx, in); err != nil {
			return err
		}

		res = &TransferResult{
			TransferID: transferID,
			From:       from,
			To:         to,
			Outgoing:   out,
			Incoming:   in,
		}
		return nil
	})
	if err != nil {
		return nil, translateError(err)
	}

	s.invalidateWallets(ctx, true, req.FromCode, req.ToCode)
	s.metrics.RecordBalanceChange(req.FromCode, res.From.Balance.Add(req.Value), res.From.Balance)
	s.metrics.RecordBalanceChange(req.ToCode, res.To.Balance.Sub(req.Value), res.To.Balance)
	s.metrics.RecordTransaction(models.TransactionTypeTransferOut, req.Value)
	s.log.WithFields(logrus.Fields{
		"operation": opTransfer,
		"from":      req.FromCode,
		"to":        req.ToCode,
		"value":     req.Value.String(),
		"transfer":  res.TransferID,
	}).Info("transfer completed")

	return res, nil
}

func (s *service) CancelTransaction(ctx context.Context, code int64, transactionID string) (res *CancelResult, err error) {
	defer s.observe(opCancel, time.Now(), &err)

	original, err := s.repo.GetTransactionByID(ctx, transactionID)
	if err != nil {
		return nil, translateError(err)
	}
	if err := checkCancellable(original, code); err != nil {
		return nil, err
	}

	err = s.repo.ExecuteInTransaction(ctx, func(tx repositories.WalletRepository) error {
		original, err := tx.GetTransactionByID(ctx, transactionID)
		if err != nil {
			return err
		}
		if err := checkCancellable(original, code); err != nil {
			return err
		}

		if original.IsTransfer() {
			res, err = s.reverseTransfer(ctx, tx, original)
		} else {
			res, err = s.reverseSingle(ctx, tx, original)
		}
		return err
	})
	if err != nil {
		return nil, translateError(err)
	}

	codes := make([]int64, 0, len(res.Wallets))
	for _, w := range res.Wallets {
		codes = append(codes, w.Code)
	}
	s.invalidateWallets(ctx, true, codes...)
	s.recordReversals(res)
	s.log.WithFields(logrus.Fields{
		"operation":   opCancel,
		"code":        code,
		"transaction": transactionID,
		"type":        original.Type,
		"value":       original.Value.String(),
	}).Info("transaction cancelled")

	return res, nil
}

// recordReversals reports one balance change per touched wallet. A transfer
// reversal counts once, under its outgoing leg, as transfers do.
func (s *service) recordReversals(res *CancelResult) {
	for _, w := range res.Wallets {
		delta := decimal.Zero
		for _, rev := range res.Reversals {
			if rev.WalletCode == w.Code {
				delta = delta.Add(balanceEffect(rev))
			}
		}
		s.metrics.RecordBalanceChange(w.Code, w.Balance.Sub(delta), w.Balance)
	}
	for _, rev := range res.Reversals {
		if rev.Type != models.TransactionTypeTransferIn {
			s.metrics.RecordTransaction(rev.Type, rev.Value)
		}
	}
}

// balanceEffect is how much a row moved its wallet's balance when it was
// written, regardless of its current status.
func balanceEffect(tx *models.Transaction) decimal.Decimal {
	switch tx.Type {
	case models.TransactionTypeCredit, models.TransactionTypeTransferIn:
		return tx.Value
	}
	return tx.Value.Neg()
}

func checkCancellable(tx *models.Transaction, code int64) error {
	if tx.WalletCode != code {
		return apperrors.ErrTransactionMismatch
	}
	if !tx.IsActive() {
		return apperrors.ErrAlreadyCancelled
	}
	if tx.IsReversal() {
		return apperrors.ErrReversalNotCancellable
	}
	switch tx.Type {
	case models.TransactionTypeCredit, models.TransactionTypeDebit,
		models.TransactionTypeTransferOut, models.TransactionTypeTransferIn:
		return nil
	}
	return apperrors.ErrUnsupportedCancellation.Withf("transaction type %q cannot be cancelled", tx.Type)
}

// reverseSingle cancels a credit or a debit and appends the opposite row.
func (s *service) reverseSingle(ctx context.Context, tx repositories.WalletRepository, original *models.Transaction) (*CancelResult, error) {
	wallet, err := lockOne(ctx, tx, original.WalletCode)
	if err != nil {
		return nil, err
	}

	var reversalType string
	switch original.Type {
	case models.TransactionTypeCredit:
		if wallet.Balance.LessThan(original.Value) {
			return nil, insufficient(wallet.Balance, original.Value)
		}
		wallet.Balance = wallet.Balance.Sub(original.Value)
		wallet.TotalCredit = decimal.Max(decimal.Zero, wallet.TotalCredit.Sub(original.Value))
		reversalType = models.TransactionTypeDebit
	case models.TransactionTypeDebit:
		wallet.Balance = wallet.Balance.Add(original.Value)
		wallet.TotalCredit = wallet.TotalCredit.Add(original.Value)
		reversalType = models.TransactionTypeCredit
	default:
		return nil, apperrors.ErrUnsupportedCancellation
	}

	now := s.now()
	if err := tx.CancelTransaction(ctx, original.ID, now); err != nil {
		return nil, err
	}
	if err := tx.UpdateWallet(ctx, wallet); err != nil {
		return nil, err
	}

	reversal := newTransaction(wallet.Code, reversalType, original.Value, now,
		fmt.Sprintf("Reversal of %s %s", original.Type, original.ID))
	reversal.OriginalTransactionID = original.ID
	if err := tx.CreateTransaction(ctx, reversal); err != nil {
		return nil, err
	}

	cancelled := *original
	cancelled.Status = models.TransactionStatusCancelled
	cancelled.CancelledAt = &now

	return &CancelResult{
		Cancelled: []*models.Transaction{&cancelled},
		Reversals: []*models.Transaction{reversal},
		Wallets:   []*models.Wallet{wallet},
	}, nil
}

// reverseTransfer cancels both legs of a transfer and moves the money back
// with a new pair. The wallet that received the money must still hold it.
func (s *service) reverseTransfer(ctx context.Context, tx repositories.WalletRepository, original *models.Transaction) (*CancelResult, error) {
	legs, err := tx.GetTransactionsByTransferID(ctx, original.TransferID)
	if err != nil {
		return nil, err
	}

	var out, in *models.Transaction
	for _, leg := range legs {
		switch leg.Type {
		case models.TransactionTypeTransferOut:
			out = leg
		case models.TransactionTypeTransferIn:
			in = leg
		}
	}
	if out == nil || in == nil {
		return nil, apperrors.Internal(fmt.Errorf("transfer %s is missing a leg", original.TransferID))
	}
	if !out.IsActive() || !in.IsActive() {
		return nil, apperrors.ErrAlreadyCancelled
	}

	wallets, err := tx.GetByCodesForUpdate(ctx, out.WalletCode, in.WalletCode)
	if err != nil {
		return nil, err
	}
	payer, payee := wallets[out.WalletCode], wallets[in.WalletCode]
	if payer == nil || payee == nil {
		return nil, apperrors.ErrWalletNotFound
	}

	value := in.Value
	if payee.Balance.LessThan(value) {
		return nil, insufficient(payee.Balance, value)
	}

	payee.Balance = payee.Balance.Sub(value)
	payer.Balance = payer.Balance.Add(value)

	now := s.now()
	for _, leg := range []*models.Transaction{out, in} {
		if err := tx.CancelTransaction(ctx, leg.ID, now); err != nil {
			return nil, err
		}
		leg.Status = models.TransactionStatusCancelled
		leg.CancelledAt = &now
	}
	if err := tx.UpdateWallet(ctx, payer); err != nil {
		return nil, err
	}
	if err := tx.UpdateWallet(ctx, payee); err != nil {
		return nil, err
	}

	revOut, revIn := newTransferPair(payee, payer, value, uuid.NewString(), now, original.TransferID)
	if err := tx.CreateTransaction(ctx, revOut); err != nil {
		return nil, err
	}
	if err := tx.CreateTransaction(ctx, revIn); err != nil {
		return nil, err
	}

	return &CancelResult{
		Cancelled: []*models.Transaction{out, in},
		Reversals: []*models.Transaction{revOut, revIn},
		Wallets:   []*models.Wallet{payer, payee},
	}, nil
}

// newTransferPair builds the two legs of a transfer. originalTransferID is
// set when the pair reverses an earlier transfer.
func newTransferPair(from, to *models.Wallet, value decimal.Decimal, transferID string, at time.Time, originalTransferID string) (out, in *models.Transaction) {
	outDesc := fmt.Sprintf("Transfer to %s (%d)", to.User.Name, to.Code)
	inDesc := fmt.Sprintf("Transfer from %s (%d)", from.User.Name, from.Code)
	if originalTransferID != "" {
		outDesc = fmt.Sprintf("Transfer reversal to %s (%d)", to.User.Name, to.Code)
		inDesc = fmt.Sprintf("Transfer reversal from %s (%d)", from.User.Name, from.Code)
	}

	toCode, fromCode := to.Code, from.Code

	out = newTransaction(from.Code, models.TransactionTypeTransferOut, value, at, outDesc)
	out.TransferID = transferID
	out.RelatedWalletCode = &toCode
	out.OriginalTransactionID = originalTransferID

	in = newTransaction(to.Code, models.TransactionTypeTransferIn, value, at, inDesc)
	in.TransferID = transferID
	in.RelatedWalletCode = &fromCode
	in.OriginalTransactionID = originalTransferID

	return out, in
}
