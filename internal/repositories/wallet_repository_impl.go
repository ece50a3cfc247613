package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"prizewallet/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type walletRepository struct {
	db         *gorm.DB
	inTx       bool
	maxRetries int
}

func NewWalletRepository(db *gorm.DB, maxRetries int) WalletRepository {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &walletRepository{
		db:         db,
		maxRetries: maxRetries,
	}
}

func (r *walletRepository) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *walletRepository) CreateWallet(ctx context.Context, wallet *models.Wallet) error {
	result := r.db.WithContext(ctx).Omit("User").Create(wallet)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return ErrDuplicateWallet
		}
		return fmt.Errorf("failed to create wallet: %w", result.Error)
	}
	return nil
}

func (r *walletRepository) GetByCode(ctx context.Context, code int64) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).Preload("User").Where("code = ?", code).First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) GetByCodesForUpdate(ctx context.Context, codes ...int64) (map[int64]*models.Wallet, error) {
	var wallets []*models.Wallet
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code IN ?", codes).
		Order("code ASC").
		Find(&wallets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock wallets: %w", err)
	}

	result := make(map[int64]*models.Wallet, len(wallets))
	userIDs := make([]uint, 0, len(wallets))
	for _, w := range wallets {
		result[w.Code] = w
		userIDs = append(userIDs, w.UserID)
	}
	if len(userIDs) == 0 {
		return result, nil
	}

	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load wallet owners: %w", err)
	}
	byID := make(map[uint]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, w := range result {
		w.User = byID[w.UserID]
	}
	return result, nil
}

func (r *walletRepository) UpdateWallet(ctx context.Context, wallet *models.Wallet) error {
	wallet.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).Model(&models.Wallet{}).
		Where("id = ?", wallet.ID).
		Updates(map[string]interface{}{
			"balance":          wallet.Balance,
			"total_credit":     wallet.TotalCredit,
			"already_winner":   wallet.AlreadyWinner,
			"winner_marked_at": wallet.WinnerMarkedAt,
			"updated_at":       wallet.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update wallet: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrWalletNotFound
	}
	return nil
}

func (r *walletRepository) DeleteWallet(ctx context.Context, code int64) error {
	db := r.db.WithContext(ctx)

	var wallet models.Wallet
	if err := db.Where("code = ?", code).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWalletNotFound
		}
		return fmt.Errorf("failed to get wallet: %w", err)
	}

	txIDs := db.Model(&models.Transaction{}).Select("id").Where("wallet_code = ?", code)
	if err := db.Where("transaction_id IN (?)", txIDs).Delete(&models.ProductSale{}).Error; err != nil {
		return fmt.Errorf("failed to delete product sales: %w", err)
	}
	if err := db.Where("wallet_code = ?", code).Delete(&models.Transaction{}).Error; err != nil {
		return fmt.Errorf("failed to delete transactions: %w", err)
	}
	if err := db.Delete(&models.Wallet{}, wallet.ID).Error; err != nil {
		return fmt.Errorf("failed to delete wallet: %w", err)
	}
	if err := db.Delete(&models.User{}, wallet.UserID).Error; err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

var walletSortColumns = map[string]string{
	SortBalance:     "wallets.balance",
	SortTotalCredit: "wallets.total_credit",
	SortCreatedAt:   "wallets.created_at",
	SortUserName:    `"User"."name"`,
	SortCode:        "wallets.code",
}

func (r *walletRepository) ListWallets(ctx context.Context, filter WalletFilter) ([]*models.Wallet, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Wallet{}).Joins("User")

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		if code, err := strconv.ParseInt(filter.Search, 10, 64); err == nil {
			query = query.Where(`"User"."name" ILIKE ? OR "User"."phone" ILIKE ? OR wallets.code = ?`, like, like, code)
		} else {
			query = query.Where(`"User"."name" ILIKE ? OR "User"."phone" ILIKE ?`, like, like)
		}
	}

	switch filter.Status {
	case StatusWinner:
		query = query.Where("wallets.already_winner = ?", true)
	case StatusEligible:
		query = query.Where("wallets.already_winner = ? AND wallets.total_credit >= ?", false, filter.EntryPrice)
	case StatusIneligible:
		query = query.Where("NOT (wallets.already_winner = ? AND wallets.total_credit >= ?)", false, filter.EntryPrice)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count wallets: %w", err)
	}

	column, ok := walletSortColumns[filter.SortField]
	if !ok {
		column = walletSortColumns[SortCreatedAt]
	}

	var wallets []*models.Wallet
	err := query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: column, Raw: true}, Desc: filter.SortDesc}).
		Order("wallets.code ASC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&wallets).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list wallets: %w", err)
	}
	return wallets, total, nil
}

func (r *walletRepository) ListEligibleWallets(ctx context.Context, entryPrice decimal.Decimal) ([]*models.Wallet, error) {
	var wallets []*models.Wallet
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("already_winner = ? AND total_credit >= ?", false, entryPrice).
		Order("code ASC").
		Find(&wallets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible wallets: %w", err)
	}
	return wallets, nil
}

func (r *walletRepository) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *walletRepository) GetTransactionByID(ctx context.Context, id string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

func (r *walletRepository) GetTransactionsByTransferID(ctx context.Context, transferID string) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	err := r.db.WithContext(ctx).
		Where("transfer_id = ?", transferID).
		Order("seq ASC").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer legs: %w", err)
	}
	return txs, nil
}

func (r *walletRepository) CancelTransaction(ctx context.Context, id string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, models.TransactionStatusActive).
		Updates(map[string]interface{}{
			"status":       models.TransactionStatusCancelled,
			"cancelled_at": at,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to cancel transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotActive
	}
	return nil
}

func (r *walletRepository) GetTransactionHistory(ctx context.Context, code int64) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	err := r.db.WithContext(ctx).
		Where("wallet_code = ?", code).
		Order("date DESC").
		Order("seq DESC").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}
	return txs, nil
}

func (r *walletRepository) CreateProductSales(ctx context.Context, sales []*models.ProductSale) error {
	if len(sales) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(sales).Error; err != nil {
		return fmt.Errorf("failed to create product sales: %w", err)
	}
	return nil
}

func (r *walletRepository) GetProductSalesByTransactionIDs(ctx context.Context, ids []string) ([]*models.ProductSale, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var sales []*models.ProductSale
	err := r.db.WithContext(ctx).
		Where("transaction_id IN ?", ids).
		Order("id ASC").
		Find(&sales).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get product sales: %w", err)
	}
	return sales, nil
}

func (r *walletRepository) CreateWinnerLog(ctx context.Context, log *models.WinnerLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("failed to create winner log: %w", err)
	}
	return nil
}

// ExecuteInTransaction runs fn in a serializable transaction and replays it
// when Postgres reports a serialization failure or deadlock. Calls made from
// inside fn join the running transaction.
func (r *walletRepository) ExecuteInTransaction(ctx context.Context, fn func(WalletRepository) error) error {
	if r.inTx {
		return fn(r)
	}

	var err error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(&walletRepository{db: tx, inTx: true, maxRetries: r.maxRetries})
		}, &sql.TxOptions{Isolation: sql.LevelSerializable})
		if err == nil || !isRetryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return fmt.Errorf("transaction retries exhausted: %w", err)
}

func (r *walletRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
