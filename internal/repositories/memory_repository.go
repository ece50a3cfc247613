package repositories

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"prizewallet/internal/models"

	"github.com/shopspring/decimal"
)

type memoryState struct {
	users        map[uint]models.User
	wallets      map[int64]models.Wallet
	transactions map[string]models.Transaction
	sales        []models.ProductSale
	products     map[string]models.Product
	winners      []models.WinnerLog
	nextID       uint
	nextSeq      int64
}

func newMemoryState() *memoryState {
	return &memoryState{
		users:        make(map[uint]models.User),
		wallets:      make(map[int64]models.Wallet),
		transactions: make(map[string]models.Transaction),
		products:     make(map[string]models.Product),
	}
}

func (s *memoryState) clone() *memoryState {
	c := &memoryState{
		users:        make(map[uint]models.User, len(s.users)),
		wallets:      make(map[int64]models.Wallet, len(s.wallets)),
		transactions: make(map[string]models.Transaction, len(s.transactions)),
		sales:        append([]models.ProductSale(nil), s.sales...),
		products:     make(map[string]models.Product, len(s.products)),
		winners:      append([]models.WinnerLog(nil), s.winners...),
		nextID:       s.nextID,
		nextSeq:      s.nextSeq,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.wallets {
		c.wallets[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	return c
}

func (s *memoryState) id() uint {
	s.nextID++
	return s.nextID
}

func (s *memoryState) walletWithUser(code int64) (*models.Wallet, bool) {
	w, ok := s.wallets[code]
	if !ok {
		return nil, false
	}
	w.User = s.users[w.UserID]
	return &w, true
}

// MemoryStore keeps every record in process memory. Atomic sections run one
// at a time against a private copy of the state that replaces the shared
// state only when the section succeeds, which makes them serializable.
// Copying is linear in the data set, so this store suits tests, demos and
// small single-instance deployments.
type MemoryStore struct {
	mu    sync.RWMutex
	txMu  sync.Mutex
	state *memoryState
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: newMemoryState(),
		now:   time.Now,
	}
}

// Wallets returns a WalletRepository backed by the store.
func (m *MemoryStore) Wallets() WalletRepository {
	return &memoryRepository{store: m}
}

// Products returns a ProductRepository backed by the store.
func (m *MemoryStore) Products() ProductRepository {
	return &memoryRepository{store: m}
}

type memoryRepository struct {
	store *MemoryStore
	tx    *memoryState
}

func (r *memoryRepository) read(fn func(s *memoryState)) {
	if r.tx != nil {
		fn(r.tx)
		return
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	fn(r.store.state)
}

func (r *memoryRepository) write(fn func(s *memoryState) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	return r.ExecuteInTransaction(context.Background(), func(tx WalletRepository) error {
		return fn(tx.(*memoryRepository).tx)
	})
}

func (r *memoryRepository) ExecuteInTransaction(ctx context.Context, fn func(WalletRepository) error) error {
	if r.tx != nil {
		return fn(r)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.store.txMu.Lock()
	defer r.store.txMu.Unlock()

	r.store.mu.RLock()
	working := r.store.state.clone()
	r.store.mu.RUnlock()

	if err := fn(&memoryRepository{store: r.store, tx: working}); err != nil {
		return err
	}

	r.store.mu.Lock()
	r.store.state = working
	r.store.mu.Unlock()
	return nil
}

func (r *memoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *memoryRepository) CreateUser(_ context.Context, user *models.User) error {
	return r.write(func(s *memoryState) error {
		user.ID = s.id()
		if user.CreatedAt.IsZero() {
			user.CreatedAt = r.store.now()
		}
		s.users[user.ID] = *user
		return nil
	})
}

func (r *memoryRepository) CreateWallet(_ context.Context, wallet *models.Wallet) error {
	return r.write(func(s *memoryState) error {
		if _, exists := s.wallets[wallet.Code]; exists {
			return ErrDuplicateWallet
		}
		now := r.store.now()
		wallet.ID = s.id()
		if wallet.CreatedAt.IsZero() {
			wallet.CreatedAt = now
		}
		wallet.UpdatedAt = now
		if wallet.Balance.IsNegative() {
			wallet.Balance = decimal.Zero
		}
		stored := *wallet
		stored.User = models.User{}
		s.wallets[wallet.Code] = stored
		return nil
	})
}

func (r *memoryRepository) GetByCode(_ context.Context, code int64) (*models.Wallet, error) {
	var (
		wallet *models.Wallet
		ok     bool
	)
	r.read(func(s *memoryState) {
		wallet, ok = s.walletWithUser(code)
	})
	if !ok {
		return nil, ErrWalletNotFound
	}
	return wallet, nil
}

func (r *memoryRepository) GetByCodesForUpdate(_ context.Context, codes ...int64) (map[int64]*models.Wallet, error) {
	result := make(map[int64]*models.Wallet, len(codes))
	r.read(func(s *memoryState) {
		for _, code := range codes {
			if w, ok := s.walletWithUser(code); ok {
				result[code] = w
			}
		}
	})
	return result, nil
}

func (r *memoryRepository) UpdateWallet(_ context.Context, wallet *models.Wallet) error {
	return r.write(func(s *memoryState) error {
		current, ok := s.wallets[wallet.Code]
		if !ok || current.ID != wallet.ID {
			return ErrWalletNotFound
		}
		wallet.UpdatedAt = r.store.now()
		current.Balance = wallet.Balance
		current.TotalCredit = wallet.TotalCredit
		current.AlreadyWinner = wallet.AlreadyWinner
		current.WinnerMarkedAt = wallet.WinnerMarkedAt
		current.UpdatedAt = wallet.UpdatedAt
		s.wallets[wallet.Code] = current
		return nil
	})
}

func (r *memoryRepository) DeleteWallet(_ context.Context, code int64) error {
	return r.write(func(s *memoryState) error {
		wallet, ok := s.wallets[code]
		if !ok {
			return ErrWalletNotFound
		}

		removed := make(map[string]bool)
		for id, tx := range s.transactions {
			if tx.WalletCode == code {
				removed[id] = true
				delete(s.transactions, id)
			}
		}
		kept := s.sales[:0:0]
		for _, sale := range s.sales {
			if !removed[sale.TransactionID] {
				kept = append(kept, sale)
			}
		}
		s.sales = kept

		delete(s.wallets, code)
		delete(s.users, wallet.UserID)
		return nil
	})
}

func (r *memoryRepository) ListWallets(_ context.Context, filter WalletFilter) ([]*models.Wallet, int64, error) {
	var matched []*models.Wallet
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	searchCode, codeErr := strconv.ParseInt(search, 10, 64)

	r.read(func(s *memoryState) {
		for code := range s.wallets {
			w, _ := s.walletWithUser(code)
			if search != "" {
				hit := strings.Contains(strings.ToLower(w.User.Name), search) ||
					strings.Contains(strings.ToLower(w.User.Phone), search) ||
					(codeErr == nil && w.Code == searchCode)
				if !hit {
					continue
				}
			}
			if !matchesStatus(w, filter) {
				continue
			}
			matched = append(matched, w)
		}
	})

	sort.SliceStable(matched, func(i, j int) bool {
		c := compareWallets(matched[i], matched[j], filter.SortField)
		if c == 0 {
			return matched[i].Code < matched[j].Code
		}
		if filter.SortDesc {
			return c > 0
		}
		return c < 0
	})

	total := int64(len(matched))
	start := filter.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}
	return matched[start:end], total, nil
}

func matchesStatus(w *models.Wallet, filter WalletFilter) bool {
	switch filter.Status {
	case StatusWinner:
		return w.AlreadyWinner
	case StatusEligible:
		return !w.AlreadyWinner && w.TotalCredit.GreaterThanOrEqual(filter.EntryPrice)
	case StatusIneligible:
		return w.AlreadyWinner || w.TotalCredit.LessThan(filter.EntryPrice)
	}
	return true
}

func compareWallets(a, b *models.Wallet, field string) int {
	switch field {
	case SortBalance:
		return a.Balance.Cmp(b.Balance)
	case SortTotalCredit:
		return a.TotalCredit.Cmp(b.TotalCredit)
	case SortUserName:
		return strings.Compare(strings.ToLower(a.User.Name), strings.ToLower(b.User.Name))
	case SortCode:
		switch {
		case a.Code < b.Code:
			return -1
		case a.Code > b.Code:
			return 1
		}
		return 0
	}
	return a.CreatedAt.Compare(b.CreatedAt)
}

func (r *memoryRepository) ListEligibleWallets(_ context.Context, entryPrice decimal.Decimal) ([]*models.Wallet, error) {
	var wallets []*models.Wallet
	r.read(func(s *memoryState) {
		for code, w := range s.wallets {
			if !w.AlreadyWinner && w.TotalCredit.GreaterThanOrEqual(entryPrice) {
				full, _ := s.walletWithUser(code)
				wallets = append(wallets, full)
			}
		}
	})
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].Code < wallets[j].Code })
	return wallets, nil
}

func (r *memoryRepository) CreateTransaction(_ context.Context, tx *models.Transaction) error {
	return r.write(func(s *memoryState) error {
		if tx.Date.IsZero() {
			tx.Date = r.store.now()
		}
		s.nextSeq++
		tx.Seq = s.nextSeq
		s.transactions[tx.ID] = *tx
		return nil
	})
}

func (r *memoryRepository) GetTransactionByID(_ context.Context, id string) (*models.Transaction, error) {
	var (
		tx models.Transaction
		ok bool
	)
	r.read(func(s *memoryState) {
		tx, ok = s.transactions[id]
	})
	if !ok {
		return nil, ErrTransactionNotFound
	}
	return &tx, nil
}

func (r *memoryRepository) GetTransactionsByTransferID(_ context.Context, transferID string) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	r.read(func(s *memoryState) {
		for _, tx := range s.transactions {
			if tx.TransferID == transferID {
				tx := tx
				txs = append(txs, &tx)
			}
		}
	})
	sort.Slice(txs, func(i, j int) bool { return txs[i].Seq < txs[j].Seq })
	return txs, nil
}

func (r *memoryRepository) CancelTransaction(_ context.Context, id string, at time.Time) error {
	return r.write(func(s *memoryState) error {
		tx, ok := s.transactions[id]
		if !ok {
			return ErrTransactionNotFound
		}
		if !tx.IsActive() {
			return ErrTransactionNotActive
		}
		tx.Status = models.TransactionStatusCancelled
		tx.CancelledAt = &at
		s.transactions[id] = tx
		return nil
	})
}

func (r *memoryRepository) GetTransactionHistory(_ context.Context, code int64) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	r.read(func(s *memoryState) {
		for _, tx := range s.transactions {
			if tx.WalletCode == code {
				tx := tx
				txs = append(txs, &tx)
			}
		}
	})
	sort.Slice(txs, func(i, j int) bool {
		if !txs[i].Date.Equal(txs[j].Date) {
			return txs[i].Date.After(txs[j].Date)
		}
		return txs[i].Seq > txs[j].Seq
	})
	return txs, nil
}

func (r *memoryRepository) CreateProductSales(_ context.Context, sales []*models.ProductSale) error {
	if len(sales) == 0 {
		return nil
	}
	return r.write(func(s *memoryState) error {
		for _, sale := range sales {
			sale.ID = s.id()
			if sale.SoldAt.IsZero() {
				sale.SoldAt = r.store.now()
			}
			s.sales = append(s.sales, *sale)
		}
		return nil
	})
}

func (r *memoryRepository) GetProductSalesByTransactionIDs(_ context.Context, ids []string) ([]*models.ProductSale, error) {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var sales []*models.ProductSale
	r.read(func(s *memoryState) {
		for _, sale := range s.sales {
			if wanted[sale.TransactionID] {
				sale := sale
				sales = append(sales, &sale)
			}
		}
	})
	return sales, nil
}

func (r *memoryRepository) CreateWinnerLog(_ context.Context, log *models.WinnerLog) error {
	return r.write(func(s *memoryState) error {
		log.ID = s.id()
		s.winners = append(s.winners, *log)
		return nil
	})
}

// MemoryCounts is the number of stored records per kind.
type MemoryCounts struct {
	Users        int `json:"users"`
	Wallets      int `json:"wallets"`
	Transactions int `json:"transactions"`
	ProductSales int `json:"productSales"`
	Products     int `json:"products"`
	WinnerLogs   int `json:"winnerLogs"`
}

func (m *MemoryStore) Counts() MemoryCounts {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return MemoryCounts{
		Users:        len(m.state.users),
		Wallets:      len(m.state.wallets),
		Transactions: len(m.state.transactions),
		ProductSales: len(m.state.sales),
		Products:     len(m.state.products),
		WinnerLogs:   len(m.state.winners),
	}
}

// WinnerLogs returns every recorded winner in insertion order.
func (m *MemoryStore) WinnerLogs() []models.WinnerLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.WinnerLog(nil), m.state.winners...)
}

func (r *memoryRepository) CreateProduct(_ context.Context, product *models.Product) error {
	return r.write(func(s *memoryState) error {
		now := r.store.now()
		if product.CreatedAt.IsZero() {
			product.CreatedAt = now
		}
		product.UpdatedAt = now
		s.products[product.ID] = *product
		return nil
	})
}

func (r *memoryRepository) GetProductByID(_ context.Context, id string) (*models.Product, error) {
	var (
		p  models.Product
		ok bool
	)
	r.read(func(s *memoryState) {
		p, ok = s.products[id]
	})
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

func (r *memoryRepository) FindActiveProductByName(_ context.Context, name string) (*models.Product, error) {
	var found *models.Product
	r.read(func(s *memoryState) {
		for _, p := range s.products {
			if p.IsActive && p.Name == name {
				p := p
				found = &p
				return
			}
		}
	})
	if found == nil {
		return nil, ErrProductNotFound
	}
	return found, nil
}

func (r *memoryRepository) ListProducts(_ context.Context, activeOnly bool) ([]*models.Product, error) {
	var products []*models.Product
	r.read(func(s *memoryState) {
		for _, p := range s.products {
			if activeOnly && !p.IsActive {
				continue
			}
			p := p
			products = append(products, &p)
		}
	})
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (r *memoryRepository) UpdateProduct(_ context.Context, product *models.Product) error {
	return r.write(func(s *memoryState) error {
		if _, ok := s.products[product.ID]; !ok {
			return ErrProductNotFound
		}
		product.UpdatedAt = r.store.now()
		s.products[product.ID] = *product
		return nil
	})
}

func (r *memoryRepository) ListProductSales(_ context.Context, filter SaleFilter) ([]*models.ProductSale, error) {
	var sales []*models.ProductSale
	r.read(func(s *memoryState) {
		for _, sale := range s.sales {
			if tx, ok := s.transactions[sale.TransactionID]; !ok || !tx.IsActive() {
				continue
			}
			if filter.ProductID != "" && sale.ProductID != filter.ProductID {
				continue
			}
			if !filter.From.IsZero() && sale.SoldAt.Before(filter.From) {
				continue
			}
			if !filter.To.IsZero() && sale.SoldAt.After(filter.To) {
				continue
			}
			sale := sale
			sales = append(sales, &sale)
		}
	})
	sort.SliceStable(sales, func(i, j int) bool { return sales[i].SoldAt.After(sales[j].SoldAt) })
	return sales, nil
}
