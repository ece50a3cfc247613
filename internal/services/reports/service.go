// Package reports aggregates product sales. It only reads.
package reports

import (
	"context"
	"sort"
	"time"

	apperrors "prizewallet/internal/errors"
	"prizewallet/internal/models"
	"prizewallet/internal/repositories"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type Service interface {
	SalesToday(ctx context.Context) (*DailySales, error)
	SalesByProduct(ctx context.Context, productID string) (*ProductSales, error)
	// SalesByPeriod covers whole days from startDate to endDate inclusive.
	// Dates use the YYYY-MM-DD layout.
	SalesByPeriod(ctx context.Context, startDate, endDate string) (*PeriodSales, error)
}

type Summary struct {
	TotalValue    decimal.Decimal `json:"totalValue"`
	TotalQuantity int             `json:"totalQuantity"`
	SalesCount    int             `json:"salesCount"`
}

type SaleLine struct {
	PriceAtSale decimal.Decimal `json:"priceAtSale"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	SoldAt      time.Time       `json:"soldAt"`
}

type ProductTotals struct {
	ProductID     string          `json:"productId"`
	ProductName   string          `json:"productName"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalValue    decimal.Decimal `json:"totalValue"`
	Sales         []SaleLine      `json:"sales"`
}

type DailySales struct {
	Date     string          `json:"date"`
	Summary  Summary         `json:"summary"`
	Products []ProductTotals `json:"products"`
}

type ProductSales struct {
	ProductID   string                `json:"productId"`
	ProductName string                `json:"productName,omitempty"`
	Summary     Summary               `json:"summary"`
	Sales       []*models.ProductSale `json:"sales"`
}

type DayTotals struct {
	Date          string          `json:"date"`
	TotalValue    decimal.Decimal `json:"totalValue"`
	TotalQuantity int             `json:"totalQuantity"`
}

type PeriodSales struct {
	StartDate    string      `json:"startDate"`
	EndDate      string      `json:"endDate"`
	Summary      Summary     `json:"summary"`
	DaysWithSale int         `json:"daysWithSales"`
	Days         []DayTotals `json:"salesByDate"`
}

type Option func(*service)

func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

type service struct {
	repo repositories.ProductRepository
	loc  *time.Location
	now  func() time.Time
}

// NewService reports days as seen from loc. A nil loc means UTC.
func NewService(repo repositories.ProductRepository, loc *time.Location, opts ...Option) Service {
	if repo == nil {
		panic("repo is required")
	}
	if loc == nil {
		loc = time.UTC
	}
	s := &service{repo: repo, loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) SalesToday(ctx context.Context) (*DailySales, error) {
	now := s.now().In(s.loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)

	sales, err := s.repo.ListProductSales(ctx, repositories.SaleFilter{From: start, To: endOfDay(start)})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	byProduct := make(map[string]*ProductTotals)
	for _, sale := range sales {
		totals, ok := byProduct[sale.ProductID]
		if !ok {
			totals = &ProductTotals{ProductID: sale.ProductID, ProductName: sale.ProductName}
			byProduct[sale.ProductID] = totals
		}
		totals.TotalQuantity += sale.Quantity
		totals.TotalValue = totals.TotalValue.Add(sale.Subtotal)
		totals.Sales = append(totals.Sales, SaleLine{
			PriceAtSale: sale.PriceAtSale,
			Quantity:    sale.Quantity,
			Subtotal:    sale.Subtotal,
			SoldAt:      sale.SoldAt,
		})
	}

	products := make([]ProductTotals, 0, len(byProduct))
	for _, totals := range byProduct {
		products = append(products, *totals)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ProductName < products[j].ProductName })

	return &DailySales{
		Date:     start.Format(dateLayout),
		Summary:  summarize(sales),
		Products: products,
	}, nil
}

func (s *service) SalesByProduct(ctx context.Context, productID string) (*ProductSales, error) {
	if productID == "" {
		return nil, apperrors.ErrInvalidArgument.Withf("product id is required")
	}

	sales, err := s.repo.ListProductSales(ctx, repositories.SaleFilter{ProductID: productID})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	report := &ProductSales{
		ProductID: productID,
		Summary:   summarize(sales),
		Sales:     sales,
	}
	if report.Sales == nil {
		report.Sales = []*models.ProductSale{}
	}
	if len(sales) > 0 {
		report.ProductName = sales[0].ProductName
	}
	return report, nil
}

func (s *service) SalesByPeriod(ctx context.Context, startDate, endDate string) (*PeriodSales, error) {
	start, err := time.ParseInLocation(dateLayout, startDate, s.loc)
	if err != nil {
		return nil, apperrors.ErrInvalidArgument.Withf("startDate must use the YYYY-MM-DD format")
	}
	end, err := time.ParseInLocation(dateLayout, endDate, s.loc)
	if err != nil {
		return nil, apperrors.ErrInvalidArgument.Withf("endDate must use the YYYY-MM-DD format")
	}
	if end.Before(start) {
		return nil, apperrors.ErrInvalidArgument.Withf("endDate cannot be before startDate")
	}

	sales, err := s.repo.ListProductSales(ctx, repositories.SaleFilter{From: start, To: endOfDay(end)})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	byDay := make(map[string]*DayTotals)
	for _, sale := range sales {
		day := sale.SoldAt.In(s.loc).Format(dateLayout)
		totals, ok := byDay[day]
		if !ok {
			totals = &DayTotals{Date: day}
			byDay[day] = totals
		}
		totals.TotalValue = totals.TotalValue.Add(sale.Subtotal)
		totals.TotalQuantity += sale.Quantity
	}

	days := make([]DayTotals, 0, len(byDay))
	for _, totals := range byDay {
		days = append(days, *totals)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })

	return &PeriodSales{
		StartDate:    startDate,
		EndDate:      endDate,
		Summary:      summarize(sales),
		DaysWithSale: len(days),
		Days:         days,
	}, nil
}

func summarize(sales []*models.ProductSale) Summary {
	summary := Summary{TotalValue: decimal.Zero, SalesCount: len(sales)}
	for _, sale := range sales {
		summary.TotalValue = summary.TotalValue.Add(sale.Subtotal)
		summary.TotalQuantity += sale.Quantity
	}
	return summary
}

func endOfDay(start time.Time) time.Time {
	return start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}
