package lottery

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	apperrors "prizewallet/internal/errors"
	"prizewallet/internal/logger"
	"prizewallet/internal/models"
	"prizewallet/internal/repositories"
	"prizewallet/internal/repositories/cache"
	"prizewallet/internal/services/wallet"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noCatalog struct{}

func (noCatalog) FindOne(context.Context, string) (*models.Product, error) {
	return nil, apperrors.ErrProductNotFound
}

type fixture struct {
	repo    repositories.WalletRepository
	cache   *cache.MemoryCache
	wallets wallet.Service
}

func newFixture(t *testing.T, credits map[int64]int64) *fixture {
	t.Helper()
	store := repositories.NewMemoryStore()
	f := &fixture{
		repo:  store.Wallets(),
		cache: cache.NewMemoryCache(time.Minute),
	}
	f.wallets = wallet.NewService(f.repo, f.cache, noCatalog{}, wallet.Config{}, nil, logger.Discard())
	for code, credit := range credits {
		_, err := f.wallets.Create(context.Background(), wallet.CreateWalletRequest{
			Code:           code,
			User:           wallet.UserInput{Name: "Player", Phone: "555"},
			InitialBalance: decimal.NewFromInt(credit),
		})
		require.NoError(t, err)
	}
	return f
}

func (f *fixture) service(opts ...Option) Service {
	return NewService(f.repo, f.cache, f.wallets, Config{}, logger.Discard(), opts...)
}

func TestPick_AssignsTicketsByCumulativeEntries(t *testing.T) {
	participants := []Participant{{Code: 1, Entries: 2}, {Code: 2, Entries: 4}, {Code: 3, Entries: 1}}

	wins := map[int64]int{}
	for ticket := int64(0); ticket < 7; ticket++ {
		wins[participants[pick(participants, ticket)].Code]++
	}
	assert.Equal(t, map[int64]int{1: 2, 2: 4, 3: 1}, wins)

	assert.Equal(t, 0, pick(participants, 1))
	assert.Equal(t, 1, pick(participants, 2))
	assert.Equal(t, 2, pick(participants, 6))
}

func TestPick_WinRateFollowsEntries(t *testing.T) {
	participants := []Participant{{Code: 1, Entries: 2}, {Code: 2, Entries: 4}}
	r := rand.New(rand.NewPCG(7, 11))

	wins := map[int64]int{}
	for i := 0; i < 60000; i++ {
		wins[participants[pick(participants, r.Int64N(6))].Code]++
	}

	ratio := float64(wins[2]) / float64(wins[1])
	assert.InDelta(t, 2.0, ratio, 0.1)
}

func TestService_EligibleWallets(t *testing.T) {
	f := newFixture(t, map[int64]int64{1: 100, 2: 200, 3: 49, 4: 50})
	ctx := context.Background()
	_, err := f.wallets.MarkAsWinner(ctx, 4)
	require.NoError(t, err)

	svc := f.service()
	participants, err := svc.EligibleWallets(ctx, decimal.NewFromInt(50))
	require.NoError(t, err)
	require.Len(t, participants, 2)
	assert.Equal(t, int64(1), participants[0].Code)
	assert.Equal(t, int64(2), participants[0].Entries)
	assert.Equal(t, int64(2), participants[1].Code)
	assert.Equal(t, int64(4), participants[1].Entries)
	assert.Contains(t, f.cache.Stats().Keys, cache.LotteryEligibleKey(decimal.NewFromInt(50)))

	t.Run("credit refreshes the cached set", func(t *testing.T) {
		_, err := f.wallets.Credit(ctx, 3, decimal.NewFromInt(1))
		require.NoError(t, err)

		participants, err := svc.EligibleWallets(ctx, decimal.NewFromInt(50))
		require.NoError(t, err)
		assert.Len(t, participants, 3)
	})

	t.Run("entry price must be positive", func(t *testing.T) {
		_, err := svc.EligibleWallets(ctx, decimal.Zero)
		assert.Equal(t, apperrors.KindInvalidArgument, apperrors.KindOf(err))
	})
}

func TestService_Entries(t *testing.T) {
	f := newFixture(t, map[int64]int64{1: 100, 2: 200})

	report, err := f.service().Entries(context.Background(), decimal.NewFromInt(50))
	require.NoError(t, err)
	assert.Equal(t, int64(6), report.TotalEntries)
	assert.Equal(t, 2, report.TotalParticipants)
	assert.InDelta(t, 1.0/3.0, report.Participants[0].Chance, 1e-9)
	assert.InDelta(t, 2.0/3.0, report.Participants[1].Chance, 1e-9)
}

func TestService_Draw(t *testing.T) {
	f := newFixture(t, map[int64]int64{1: 100, 2: 200, 3: 300})
	ctx := context.Background()
	_, err := f.wallets.MarkAsWinner(ctx, 3)
	require.NoError(t, err)

	drawnAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := f.service(WithRand(rand.New(rand.NewPCG(1, 2))), WithClock(func() time.Time { return drawnAt }))
	price := decimal.NewFromInt(50)

	first, err := svc.Draw(ctx, price)
	require.NoError(t, err)
	assert.NotEqual(t, int64(3), first.Winner.Code)
	assert.True(t, first.Winner.AlreadyWinner)
	assert.Equal(t, int64(6), first.TotalEntries)
	assert.Equal(t, 2, first.TotalParticipants)
	assert.InDelta(t, float64(first.Entries)/6.0, first.WinnerChance, 1e-9)
	assert.Equal(t, drawnAt, first.DrawnAt)
	assert.True(t, first.EntryPrice.Equal(price))

	second, err := svc.Draw(ctx, price)
	require.NoError(t, err)
	assert.NotEqual(t, first.Winner.Code, second.Winner.Code)
	assert.NotEqual(t, int64(3), second.Winner.Code)
	assert.Equal(t, 1, second.TotalParticipants)
	assert.InDelta(t, 1.0, second.WinnerChance, 1e-9)

	_, err = svc.Draw(ctx, price)
	assert.ErrorIs(t, err, apperrors.ErrNoEligibleWallets)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = svc.Draw(ctx, decimal.NewFromInt(-1))
	assert.Equal(t, apperrors.KindInvalidArgument, apperrors.KindOf(err))
}

func TestService_DrawNeverPicksWinners(t *testing.T) {
	for seed := uint64(0); seed < 20; seed++ {
		f := newFixture(t, map[int64]int64{1: 100, 2: 200, 3: 5000})
		ctx := context.Background()
		_, err := f.wallets.MarkAsWinner(ctx, 3)
		require.NoError(t, err)

		res, err := f.service(WithRand(rand.New(rand.NewPCG(seed, seed+1)))).Draw(ctx, decimal.NewFromInt(50))
		require.NoError(t, err)
		assert.NotEqual(t, int64(3), res.Winner.Code)
	}
}
