package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ganamos/backend/internal/cache"
	"github.com/ganamos/backend/internal/models"
	repo "github.com/ganamos/backend/internal/repository"
)

// PriceService fetches the BTC spot price on a schedule and serves the
// latest reading from redis first, the database second.
type PriceService struct {
	prices   repo.Prices
	cache    *cache.Cache
	currency string
	urlFmt   string // format string taking the currency
	http     *http.Client
}

func NewPriceService(p repo.Prices, c *cache.Cache, currency, urlFmt string) *PriceService {
	return &PriceService{
		prices:   p,
		cache:    c,
		currency: currency,
		urlFmt:   urlFmt,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Refresh pulls the spot price from the exchange API and persists it.
func (s *PriceService) Refresh(ctx context.Context) (models.BitcoinPrice, error) {
	url := fmt.Sprintf(s.urlFmt, s.currency)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.BitcoinPrice{}, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return models.BitcoinPrice{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return models.BitcoinPrice{}, fmt.Errorf("price fetch: status %d", resp.StatusCode)
	}

	// coinbase spot shape: {"data":{"amount":"67123.45","currency":"USD"}}
	var body struct {
		Data struct {
			Amount   string `json:"amount"`
			Currency string `json:"currency"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.BitcoinPrice{}, err
	}
	amount, err := strconv.ParseFloat(body.Data.Amount, 64)
	if err != nil {
		return models.BitcoinPrice{}, fmt.Errorf("price fetch: bad amount %q", body.Data.Amount)
	}

	p, err := s.prices.Insert(ctx, models.BitcoinPrice{
		Currency: s.currency,
		Price:    amount,
	})
	if err != nil {
		return models.BitcoinPrice{}, err
	}
	s.cache.SetPrice(ctx, p)
	return p, nil
}

func (s *PriceService) Latest(ctx context.Context) (models.BitcoinPrice, error) {
	if p, ok := s.cache.GetPrice(ctx, s.currency); ok {
		return p, nil
	}
	p, err := s.prices.Latest(ctx, s.currency)
	if err != nil {
		return models.BitcoinPrice{}, err
	}
	s.cache.SetPrice(ctx, p)
	return p, nil
}
