package models

import "time"

type BitcoinPrice struct {
	ID        int64     `json:"id"`
	Currency  string    `json:"currency"`
	Price     float64   `json:"price"`
	FetchedAt time.Time `json:"fetched_at"`
}

// FiatValue converts sats to fiat at this price.
func (p BitcoinPrice) FiatValue(sats int64) float64 {
	return float64(sats) / 1e8 * p.Price
}
