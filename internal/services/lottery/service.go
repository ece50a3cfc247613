// Package lottery draws prize winners among wallets, weighting each wallet
// by the number of entries its total credit buys.
package lottery

import (
	"context"
	"math/rand/v2"
	"sort"
	"time"

	apperrors "prizewallet/internal/errors"
	"prizewallet/internal/logger"
	"prizewallet/internal/models"
	"prizewallet/internal/repositories"
	"prizewallet/internal/repositories/cache"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const DefaultEligibleTTL = 30 * time.Second

// WinnerMarker flags the drawn wallet. The wallet service implements it.
type WinnerMarker interface {
	MarkAsWinner(ctx context.Context, code int64) (*models.Wallet, error)
}

type Service interface {
	// EligibleWallets returns every wallet that may win at entryPrice,
	// ordered by code.
	EligibleWallets(ctx context.Context, entryPrice decimal.Decimal) ([]Participant, error)
	Entries(ctx context.Context, entryPrice decimal.Decimal) (*EntriesReport, error)
	Draw(ctx context.Context, entryPrice decimal.Decimal) (*DrawResult, error)
}

type Config struct {
	EligibleTTL time.Duration
}

type Participant struct {
	Code        int64           `json:"code"`
	UserName    string          `json:"userName"`
	Phone       string          `json:"phone"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	Entries     int64           `json:"entries"`
}

type EntriesReport struct {
	EntryPrice        decimal.Decimal    `json:"entryPrice"`
	TotalEntries      int64              `json:"totalEntries"`
	TotalParticipants int                `json:"totalParticipants"`
	Participants      []ParticipantShare `json:"participants"`
}

type ParticipantShare struct {
	Participant
	Chance float64 `json:"chance"`
}

type DrawResult struct {
	Winner            *models.Wallet  `json:"winner"`
	Entries           int64           `json:"entries"`
	TotalEntries      int64           `json:"totalEntries"`
	TotalParticipants int             `json:"totalParticipants"`
	WinnerChance      float64         `json:"winnerChance"`
	EntryPrice        decimal.Decimal `json:"entryPrice"`
	DrawnAt           time.Time       `json:"drawnAt"`
}

type Option func(*service)

// WithRand replaces the random source used by Draw.
func WithRand(r *rand.Rand) Option {
	return func(s *service) {
		s.intN = r.Int64N
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

type service struct {
	repo   repositories.WalletRepository
	cache  cache.Cache
	marker WinnerMarker
	config Config
	log    logrus.FieldLogger
	intN   func(n int64) int64
	now    func() time.Time
}

func NewService(
	repo repositories.WalletRepository,
	c cache.Cache,
	marker WinnerMarker,
	config Config,
	log logrus.FieldLogger,
	opts ...Option,
) Service {
	if repo == nil {
		panic("repo is required")
	}
	if c == nil {
		panic("cache is required")
	}
	if marker == nil {
		panic("winner marker is required")
	}
	if config.EligibleTTL <= 0 {
		config.EligibleTTL = DefaultEligibleTTL
	}
	if log == nil {
		log = logger.Discard()
	}

	s := &service{
		repo:   repo,
		cache:  c,
		marker: marker,
		config: config,
		log:    log.WithField("component", "lottery"),
		intN:   rand.Int64N,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) EligibleWallets(ctx context.Context, entryPrice decimal.Decimal) ([]Participant, error) {
	if !entryPrice.IsPositive() {
		return nil, apperrors.ErrInvalidArgument.Withf("entry price must be positive")
	}

	key := cache.LotteryEligibleKey(entryPrice)
	var participants []Participant
	found, err := s.cache.Get(ctx, key, &participants)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache read failed")
	}
	if found && err == nil {
		return participants, nil
	}

	wallets, err := s.repo.ListEligibleWallets(ctx, entryPrice)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	participants = make([]Participant, 0, len(wallets))
	for _, w := range wallets {
		entries := w.Entries(entryPrice)
		if !w.IsEligible(entryPrice) || entries < 1 {
			continue
		}
		participants = append(participants, Participant{
			Code:        w.Code,
			UserName:    w.User.Name,
			Phone:       w.User.Phone,
			TotalCredit: w.TotalCredit,
			Entries:     entries,
		})
	}
	sort.Slice(participants, func(i, j int) bool { return participants[i].Code < participants[j].Code })

	if err := s.cache.Set(ctx, key, participants, s.config.EligibleTTL); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
	return participants, nil
}

func (s *service) Entries(ctx context.Context, entryPrice decimal.Decimal) (*EntriesReport, error) {
	participants, err := s.EligibleWallets(ctx, entryPrice)
	if err != nil {
		return nil, err
	}

	total := totalEntries(participants)
	report := &EntriesReport{
		EntryPrice:        entryPrice,
		TotalEntries:      total,
		TotalParticipants: len(participants),
		Participants:      make([]ParticipantShare, 0, len(participants)),
	}
	for _, p := range participants {
		report.Participants = append(report.Participants, ParticipantShare{
			Participant: p,
			Chance:      float64(p.Entries) / float64(total),
		})
	}
	return report, nil
}

func (s *service) Draw(ctx context.Context, entryPrice decimal.Decimal) (*DrawResult, error) {
	participants, err := s.EligibleWallets(ctx, entryPrice)
	if err != nil {
		return nil, err
	}
	if len(participants) == 0 {
		return nil, apperrors.ErrNoEligibleWallets
	}

	total := totalEntries(participants)
	picked := participants[pick(participants, s.intN(total))]

	winner, err := s.marker.MarkAsWinner(ctx, picked.Code)
	if err != nil {
		return nil, err
	}

	result := &DrawResult{
		Winner:            winner,
		Entries:           picked.Entries,
		TotalEntries:      total,
		TotalParticipants: len(participants),
		WinnerChance:      float64(picked.Entries) / float64(total),
		EntryPrice:        entryPrice,
		DrawnAt:           s.now(),
	}

	s.log.WithFields(logrus.Fields{
		"code":         winner.Code,
		"entries":      picked.Entries,
		"totalEntries": total,
		"participants": len(participants),
		"entryPrice":   entryPrice.String(),
	}).Info("lottery winner drawn")

	return result, nil
}

func totalEntries(participants []Participant) int64 {
	var total int64
	for _, p := range participants {
		total += p.Entries
	}
	return total
}

// pick maps ticket, a number in [0, total entries), to the participant
// holding it. Participant i holds the tickets between the cumulative
// entries of those before it and its own cumulative entries.
func pick(participants []Participant, ticket int64) int {
	cumulative := make([]int64, len(participants))
	var running int64
	for i, p := range participants {
		running += p.Entries
		cumulative[i] = running
	}
	return sort.Search(len(cumulative), func(i int) bool {
		return cumulative[i] > ticket
	})
}
