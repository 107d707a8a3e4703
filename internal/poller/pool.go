package poller

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
)

var ErrNotObject = errors.New("pool response is not a JSON object")

// PoolStatus is the subset of a ckpool user record the tile shows.
type PoolStatus struct {
	Hashrate string // hashrate5m, already formatted by the pool ("12.3M")
	Shares   int64
	BestEver int64
}

// FetchPoolStatus reads {poolURL}/users/{address}. Missing or odd fields
// take defaults; only transport, status and top-level JSON errors fail.
func (p *Poller) FetchPoolStatus(ctx context.Context, address string) (*PoolStatus, error) {
	u := strings.TrimRight(p.cfg.PoolURL, "/") + "/users/" + url.PathEscape(address)

	var raw map[string]json.RawMessage
	if err := getJSON(ctx, p.client, u, p.cfg.UserAgent, &raw); err != nil {
		return nil, err
	}
	// A literal null decodes without error but carries no fields
	if raw == nil {
		return nil, ErrNotObject
	}
	return parsePoolStatus(raw), nil
}

func parsePoolStatus(raw map[string]json.RawMessage) *PoolStatus {
	return &PoolStatus{
		Hashrate: looseString(raw["hashrate5m"], "0"),
		Shares:   looseInt(raw["shares"]),
		BestEver: looseInt(raw["bestever"]),
	}
}
