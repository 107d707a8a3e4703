package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var ErrEmptyBlocks = errors.New("pool has no recent blocks")

// FetchLastPoolBlock returns the timestamp of the pool's most recent block
// from {explorerURL}/v1/mining/pool/{slug}/blocks (most recent first).
func (p *Poller) FetchLastPoolBlock(ctx context.Context) (time.Time, error) {
	u := strings.TrimRight(p.cfg.ExplorerURL, "/") + "/v1/mining/pool/" + url.PathEscape(p.cfg.PoolSlug) + "/blocks"

	var blocks []struct {
		Timestamp json.RawMessage `json:"timestamp"`
	}
	if err := getJSON(ctx, p.client, u, p.cfg.UserAgent, &blocks); err != nil {
		return time.Time{}, err
	}
	if len(blocks) == 0 {
		return time.Time{}, ErrEmptyBlocks
	}

	ts := looseInt(blocks[0].Timestamp)
	if ts == 0 {
		return time.Time{}, fmt.Errorf("latest block has no timestamp")
	}
	return time.Unix(ts, 0), nil
}
