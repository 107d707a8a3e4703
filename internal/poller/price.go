package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrNoPrice = errors.New("no price in response")

// FetchPrice reads the BTC-USD spot price. Coinbase's
// {"data":{"amount":"..."}} is the expected shape; a top-level "price" or
// "amount" field is accepted as well.
func (p *Poller) FetchPrice(ctx context.Context) (decimal.Decimal, error) {
	var resp struct {
		Data struct {
			Amount json.RawMessage `json:"amount"`
		} `json:"data"`
		Price  json.RawMessage `json:"price"`
		Amount json.RawMessage `json:"amount"`
	}
	if err := getJSON(ctx, p.client, p.cfg.PriceURL, p.cfg.UserAgent, &resp); err != nil {
		return decimal.Zero, err
	}

	for _, raw := range []json.RawMessage{resp.Data.Amount, resp.Price, resp.Amount} {
		if len(raw) == 0 {
			continue
		}
		s := looseString(raw, "")
		if s == "" {
			continue
		}
		price, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse price %q: %w", s, err)
		}
		if !price.IsPositive() {
			return decimal.Zero, fmt.Errorf("implausible price %s", price)
		}
		return price, nil
	}
	return decimal.Zero, ErrNoPrice
}
