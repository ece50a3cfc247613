package wallet

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	apperrors "prizewallet/internal/errors"
	"prizewallet/internal/logger"
	"prizewallet/internal/models"
	"prizewallet/internal/repositories"
	"prizewallet/internal/repositories/cache"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type service struct {
	repo    repositories.WalletRepository
	cache   cache.Cache
	catalog ProductCatalog
	config  Config
	metrics MetricsCollector
	log     logrus.FieldLogger
	now     func() time.Time
}

// NewService creates a new wallet service
func NewService(
	repo repositories.WalletRepository,
	c cache.Cache,
	catalog ProductCatalog,
	config Config,
	metrics MetricsCollector,
	log logrus.FieldLogger,
) Service {
	if repo == nil {
		panic("repo is required")
	}
	if c == nil {
		panic("cache is required")
	}
	if catalog == nil {
		panic("product catalog is required")
	}

	if config.WalletTTL <= 0 {
		config.WalletTTL = DefaultWalletTTL
	}
	if config.ListTTL <= 0 {
		config.ListTTL = DefaultListTTL
	}
	if !config.DefaultEntryPrice.IsPositive() {
		config.DefaultEntryPrice = decimal.NewFromInt(DefaultEntryPrice)
	}

	// Metrics is optional, create no-op collector if nil
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}
	if log == nil {
		log = logger.Discard()
	}

	return &service{
		repo:    repo,
		cache:   c,
		catalog: catalog,
		config:  config,
		metrics: metrics,
		log:     log.WithField("component", "wallet"),
		now:     time.Now,
	}
}

func (s *service) Create(ctx context.Context, req CreateWalletRequest) (created *models.Wallet, err error) {
	defer s.observe(opCreate, time.Now(), &err)

	if req.Code <= 0 {
		return nil, apperrors.ErrInvalidArgument.Withf("wallet code must be positive")
	}
	name := strings.TrimSpace(req.User.Name)
	if name == "" {
		return nil, apperrors.ErrInvalidArgument.Withf("user name is required")
	}
	if req.InitialBalance.IsNegative() {
		return nil, apperrors.ErrInvalidAmount.Withf("initial balance cannot be negative")
	}
	if req.InitialBalance.IsPositive() {
		if err := validateAmount(req.InitialBalance); err != nil {
			return nil, err
		}
	}

	now := s.now()
	err = s.repo.ExecuteInTransaction(ctx, func(tx repositories.WalletRepository) error {
		if _, err := tx.GetByCode(ctx, req.Code); err == nil {
			return apperrors.ErrWalletExists
		} else if !errors.Is(err, repositories.ErrWalletNotFound) {
			return err
		}

		user := &models.User{Name: name, Phone: strings.TrimSpace(req.User.Phone), CreatedAt: now}
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}

		wallet := &models.Wallet{
			Code:        req.Code,
			Balance:     req.InitialBalance,
			TotalCredit: req.InitialBalance,
			UserID:      user.ID,
			CreatedAt:   now,
		}
		if err := tx.CreateWallet(ctx, wallet); err != nil {
			return err
		}
		wallet.User = *user

		if req.InitialBalance.IsPositive() {
			opening := newTransaction(wallet.Code, models.TransactionTypeCredit, req.InitialBalance, now, "Initial balance")
			if err := tx.CreateTransaction(ctx, opening); err != nil {
				return err
			}
		}

		created = wallet
		return nil
	})
	if err != nil {
		return nil, translateError(err)
	}

	s.invalidateWallets(ctx, req.InitialBalance.IsPositive(), created.Code)
	s.log.WithFields(logrus.Fields{
		"operation": opCreate,
		"code":      created.Code,
		"balance":   created.Balance.String(),
	}).Info("wallet created")

	return created, nil
}

func (s *service) FindOne(ctx context.Context, code int64) (details *WalletDetails, err error) {
	defer s.observe(opFindOne, time.Now(), &err)

	key := cache.WalletDetailsKey(code)
	var cached WalletDetails
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	wallet, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, translateError(err)
	}
	txs, err := s.repo.GetTransactionHistory(ctx, code)
	if err != nil {
		return nil, translateError(err)
	}

	var debitIDs []string
	for _, tx := range txs {
		if tx.HasProducts {
			debitIDs = append(debitIDs, tx.ID)
		}
	}
	salesByTx := make(map[string][]models.ProductSale)
	if len(debitIDs) > 0 {
		sales, err := s.repo.GetProductSalesByTransactionIDs(ctx, debitIDs)
		if err != nil {
			return nil, translateError(err)
		}
		for _, sale := range sales {
			salesByTx[sale.TransactionID] = append(salesByTx[sale.TransactionID], *sale)
		}
	}

	history := make([]models.TransactionHistory, 0, len(txs))
	for _, tx := range txs {
		history = append(history, models.TransactionHistory{
			Transaction: *tx,
			Products:    salesByTx[tx.ID],
		})
	}

	details = &WalletDetails{
		Code:           wallet.Code,
		Balance:        wallet.Balance,
		TotalCredit:    wallet.TotalCredit,
		AlreadyWinner:  wallet.AlreadyWinner,
		WinnerMarkedAt: wallet.WinnerMarkedAt,
		OwnerID:        wallet.UserID,
		User:           wallet.User,
		CreatedAt:      wallet.CreatedAt,
		UpdatedAt:      wallet.UpdatedAt,
		Transactions:   history,
	}
	s.cacheSet(ctx, key, details, s.config.WalletTTL)

	return details, nil
}

func (s *service) Remove(ctx context.Context, code int64) (err error) {
	defer s.observe(opRemove, time.Now(), &err)

	if _, err := s.repo.GetByCode(ctx, code); err != nil {
		return translateError(err)
	}

	err = s.repo.ExecuteInTransaction(ctx, func(tx repositories.WalletRepository) error {
		return tx.DeleteWallet(ctx, code)
	})
	if err != nil {
		return translateError(err)
	}

	s.invalidateWallets(ctx, true, code)
	s.log.WithFields(logrus.Fields{"operation": opRemove, "code": code}).Info("wallet removed")
	return nil
}

func (s *service) Credit(ctx context.Context, code int64, value decimal.Decimal) (res *OperationResult, err error) {
	defer s.observe(opCredit, time.Now(), &err)

	if err := validateAmount(value); err != nil {
		return nil, err
	}

	var oldBalance decimal.Decimal
	err = s.repo.ExecuteInTransaction(ctx, func(tx repositories.WalletRepository) error {
		wallet, err := lockOne(ctx, tx, code)
		if err != nil {
			return err
		}

		now := s.now()
		oldBalance = wallet.Balance
		wallet.Balance = wallet.Balance.Add(value)
		wallet.TotalCredit = wallet.TotalCredit.Add(value)
		if err := tx.UpdateWallet(ctx, wallet); err != nil {
			return err
		}

		txn := newTransaction(code, models.TransactionTypeCredit, value, now, "Credit")
		if err := tx.CreateTransaction(ctx, txn); err != nil {
			return err
		}

		res = &OperationResult{Wallet: wallet, Transaction: txn}
		return nil
	})
	if err != nil {
		return nil, translateError(err)
	}

	s.invalidateWallets(ctx, true, code)
	s.metrics.RecordBalanceChange(code, oldBalance, res.Wallet.Balance)
	s.metrics.RecordTransaction(models.TransactionTypeCredit, value)
	s.log.WithFields(logrus.Fields{
		"operation":   opCredit,
		"code":        code,
		"value":       value.String(),
		"transaction": res.Transaction.ID,
	}).Info("wallet credited")

	return res, nil
}

func (s *service) Debit(ctx context.Context, code int64, req DebitRequest) (res *OperationResult, err error) {
	defer s.observe(opDebit, time.Now(), &err)

	total, lines, err := s.resolveDebit(ctx, req)
	if err != nil {
		return nil, err
	}

	itemsCount := 0
	for _, line := range lines {
		itemsCount += line.Quantity
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = "Debit"
		if len(lines) > 0 {
			description = fmt.Sprintf("Purchase of %d item(s)", itemsCount)
		}
	}

	var oldBalance decimal.Decimal
	err = s.repo.ExecuteInTransaction(ctx, func(tx repositories.WalletRepository) error {
		wallet, err := lockOne(ctx, tx, code)
		if err != nil {
			return err
		}
		if wallet.Balance.LessThan(total) {
			return insufficient(wallet.Balance, total)
		}

		now := s.now()
		oldBalance = wallet.Balance
		wallet.Balance = wallet.Balance.Sub(total)
		if err := tx.UpdateWallet(ctx, wallet); err != nil {
			return err
		}

		txn := newTransaction(code, models.TransactionTypeDebit, total, now, description)
		txn.HasProducts = len(lines) > 0
		txn.ItemsCount = itemsCount
		if err := tx.CreateTransaction(ctx, txn); err != nil {
			return err
		}

		sales := make([]*models.ProductSale, 0, len(lines))
		for _, line := range lines {
			sale := line
			sale.TransactionID = txn.ID
			sale.SoldAt = now
			sales = append(sales, &sale)
		}
		if err := tx.CreateProductSales(ctx, sales); err != nil {
			return err
		}

		res = &OperationResult{Wallet: wallet, Transaction: txn, Sales: sales}
		return nil
	})
	if err != nil {
		return nil, translateError(err)
	}

	s.invalidateWallets(ctx, true, code)
	s.metrics.RecordBalanceChange(code, oldBalance, res.Wallet.Balance)
	s.metrics.RecordTransaction(models.TransactionTypeDebit, total)
	s.log.WithFields(logrus.Fields{
		"operation":   opDebit,
		"code":        code,
		"value":       total.String(),
		"items":       itemsCount,
		"transaction": res.Transaction.ID,
	}).Info("wallet debited")

	return res, nil
}

// resolveDebit prices the request. Product prices are snapshotted here so
// the sale rows record what the customer was charged.
func (s *service) resolveDebit(ctx context.Context, req DebitRequest) (decimal.Decimal, []models.ProductSale, error) {
	if len(req.Items) == 0 {
		if req.Value.IsZero() {
			return decimal.Zero, nil, apperrors.ErrMissingDebitSource
		}
		if err := validateAmount(req.Value); err != nil {
			return decimal.Zero, nil, err
		}
		return req.Value, nil, nil
	}

	total := decimal.Zero
	lines := make([]models.ProductSale, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return decimal.Zero, nil, apperrors.ErrInvalidArgument.Withf("quantity for product %s must be at least 1", item.ProductID)
		}
		product, err := s.catalog.FindOne(ctx, item.ProductID)
		if err != nil {
			var de *apperrors.DomainError
			if errors.As(err, &de) {
				return decimal.Zero, nil, err
			}
			return decimal.Zero, nil, apperrors.Internal(err)
		}
		if !product.IsActive {
			return decimal.Zero, nil, apperrors.ErrProductInactive.Withf("product %q is not active", product.Name)
		}

		subtotal := product.CurrentPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(subtotal)
		lines = append(lines, models.ProductSale{
			ProductID:   product.ID,
			ProductName: product.Name,
			PriceAtSale: product.CurrentPrice,
			Quantity:    item.Quantity,
			Subtotal:    subtotal,
		})
	}

	if !total.IsPositive() {
		return decimal.Zero, nil, apperrors.ErrInvalidAmount.Withf("debit total must be positive")
	}
	return total, lines, nil
}

func (s *service) MarkAsWinner(ctx context.Context, code int64) (marked *models.Wallet, err error) {
	defer s.observe(opMarkWinner, time.Now(), &err)

	wallet, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, translateError(err)
	}
	if wallet.AlreadyWinner {
		return nil, apperrors.ErrAlreadyWinner
	}

	err = s.repo.ExecuteInTransaction(ctx, func(tx repositories.WalletRepository) error {
		wallet, err := lockOne(ctx, tx, code)
		if err != nil {
			return err
		}
		if wallet.AlreadyWinner {
			return apperrors.ErrAlreadyWinner
		}

		now := s.now()
		wallet.AlreadyWinner = true
		wallet.WinnerMarkedAt = &now
		if err := tx.UpdateWallet(ctx, wallet); err != nil {
			return err
		}

		if err := tx.CreateWinnerLog(ctx, &models.WinnerLog{
			WalletCode:  code,
			UserName:    wallet.User.Name,
			TotalCredit: wallet.TotalCredit,
			MarkedAt:    now,
		}); err != nil {
			return err
		}

		marked = wallet
		return nil
	})
	if err != nil {
		return nil, translateError(err)
	}

	s.invalidateWallets(ctx, true, code)
	s.log.WithFields(logrus.Fields{
		"operation":   opMarkWinner,
		"code":        code,
		"totalCredit": marked.TotalCredit.String(),
	}).Info("wallet marked as winner")

	return marked, nil
}

func (s *service) ListWallets(ctx context.Context, params ListWalletsParams) (page *WalletPage, err error) {
	defer s.observe(opListWallets, time.Now(), &err)

	filter, params, err := s.normalizeListParams(params)
	if err != nil {
		return nil, err
	}

	key := cache.WalletListKey(params.Page, params.Limit, strings.ToLower(params.Search), params.SortBy, params.Status, params.EntryPrice.String())
	var cached WalletPage
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	wallets, total, err := s.repo.ListWallets(ctx, filter)
	if err != nil {
		return nil, translateError(err)
	}

	items := make([]WalletListItem, 0, len(wallets))
	for _, w := range wallets {
		items = append(items, WalletListItem{
			Wallet:   *w,
			Eligible: w.IsEligible(params.EntryPrice),
			Entries:  w.Entries(params.EntryPrice),
		})
	}

	page = &WalletPage{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(params.Limit))),
	}
	s.cacheSet(ctx, key, page, s.config.ListTTL)

	return page, nil
}

var sortFields = map[string]bool{
	repositories.SortBalance:     true,
	repositories.SortTotalCredit: true,
	repositories.SortCreatedAt:   true,
	repositories.SortUserName:    true,
	repositories.SortCode:        true,
}

func (s *service) normalizeListParams(p ListWalletsParams) (repositories.WalletFilter, ListWalletsParams, error) {
	if p.Page == 0 {
		p.Page = DefaultPage
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	if p.Page < 1 {
		return repositories.WalletFilter{}, p, apperrors.ErrInvalidArgument.Withf("page must be at least 1")
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		return repositories.WalletFilter{}, p, apperrors.ErrInvalidArgument.Withf("limit must be between 1 and %d", MaxLimit)
	}

	if p.SortBy == "" {
		p.SortBy = DefaultSortBy
	}
	field, direction, ok := strings.Cut(p.SortBy, "_")
	if !ok || !sortFields[field] || (direction != "asc" && direction != "desc") {
		return repositories.WalletFilter{}, p, apperrors.ErrInvalidArgument.Withf("unsupported sortBy %q", p.SortBy)
	}

	if p.Status == "" {
		p.Status = repositories.StatusAll
	}
	switch p.Status {
	case repositories.StatusAll, repositories.StatusWinner, repositories.StatusEligible, repositories.StatusIneligible:
	default:
		return repositories.WalletFilter{}, p, apperrors.ErrInvalidArgument.Withf("unsupported status %q", p.Status)
	}

	if p.EntryPrice.IsNegative() {
		return repositories.WalletFilter{}, p, apperrors.ErrInvalidArgument.Withf("entry price must be positive")
	}
	if p.EntryPrice.IsZero() {
		p.EntryPrice = s.config.DefaultEntryPrice
	}
	p.Search = strings.TrimSpace(p.Search)

	return repositories.WalletFilter{
		Search:     p.Search,
		SortField:  field,
		SortDesc:   direction == "desc",
		Status:     p.Status,
		EntryPrice: p.EntryPrice,
		Offset:     (p.Page - 1) * p.Limit,
		Limit:      p.Limit,
	}, p, nil
}

// Helper methods

func newTransaction(code int64, txType string, value decimal.Decimal, at time.Time, description string) *models.Transaction {
	return &models.Transaction{
		ID:          uuid.NewString(),
		WalletCode:  code,
		Value:       value,
		Type:        txType,
		Status:      models.TransactionStatusActive,
		Date:        at,
		Description: description,
	}
}

func lockOne(ctx context.Context, tx repositories.WalletRepository, code int64) (*models.Wallet, error) {
	wallets, err := tx.GetByCodesForUpdate(ctx, code)
	if err != nil {
		return nil, err
	}
	wallet, ok := wallets[code]
	if !ok {
		return nil, apperrors.ErrWalletNotFound
	}
	return wallet, nil
}

func insufficient(available, required decimal.Decimal) error {
	return apperrors.ErrInsufficientBalance.Withf("insufficient balance: available %s, required %s",
		available.StringFixed(moneyDecimalPlaces), required.StringFixed(moneyDecimalPlaces))
}
