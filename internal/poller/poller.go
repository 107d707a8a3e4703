// Package poller runs one refresh cycle of the mining tile: three
// independent upstream fetches, best-ever tracking and per-field fallback to
// the last good value.
package poller

import (
	"context"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/b0ase/ckwidget/internal/address"
	"github.com/b0ase/ckwidget/internal/format"
	"github.com/b0ase/ckwidget/internal/settings"
)

// Source names one upstream.
type Source string

const (
	SourcePool   Source = "pool"
	SourcePrice  Source = "price"
	SourceBlocks Source = "blocks"
)

// Tile field names used in Tile.Stale.
const (
	FieldHashrate  = "hashrate"
	FieldShares    = "shares"
	FieldPrice     = "price"
	FieldLastBlock = "last_block"
)

// Texts shown while no address is configured.
const (
	SetupHashrate = "Open"
	SetupShares   = "App"
	SetupBest     = "Setup"
)

// Config configures the upstream endpoints.
type Config struct {
	PoolURL     string
	PriceURL    string
	ExplorerURL string
	PoolSlug    string
	Timeout     time.Duration
	UserAgent   string
	Debug       bool
}

// Colors are the user's display colours as #RRGGBB.
type Colors struct {
	Rate   string `json:"rate"`
	Shares string `json:"shares"`
	Best   string `json:"best"`
}

// Tile is the rendered view of one refresh cycle.
type Tile struct {
	Setup     bool     `json:"setup"`
	Address   string   `json:"address,omitempty"`
	Hashrate  string   `json:"hashrate"`
	Shares    string   `json:"shares"`
	Best      string   `json:"best"`
	BestDate  string   `json:"best_date,omitempty"`
	Price     string   `json:"price"`
	LastBlock string   `json:"last_block"`
	UpdatedAt string   `json:"updated_at"`
	Colors    Colors   `json:"colors"`
	Stale     []string `json:"stale,omitempty"` // fields showing a cached or default value
}

// Partial is the outcome of one upstream fetch. Exactly one of the value
// fields is meaningful for a given Source; Err non-nil means fall back.
type Partial struct {
	Source    Source
	Pool      *PoolStatus
	Price     string
	LastBlock string
	Err       error
}

// Poller fetches the three upstreams. It holds no tile state between cycles;
// everything is read from and written back to the store.
type Poller struct {
	cfg     Config
	client  *http.Client
	metrics *Metrics
	now     func() time.Time

	// OnPartial, if set, is called from the Refresh goroutine after each
	// partial result has been applied, with the tile so far.
	OnPartial func(Tile)
}

// New creates a Poller. metrics may be nil.
func New(cfg Config, metrics *Metrics) *Poller {
	return &Poller{
		cfg:     cfg,
		client:  newHTTPClient(cfg.Timeout),
		metrics: metrics,
		now:     time.Now,
	}
}

// Refresh runs one cycle against store and returns the merged tile. Fetch
// failures never produce an error; they show the cached value for the
// affected fields instead. The error is non-nil only if the store could not
// be read.
func (p *Poller) Refresh(ctx context.Context, store settings.Store) (Tile, error) {
	st, err := settings.Load(ctx, store)
	if err != nil {
		p.metrics.refreshed("error")
		return Tile{}, err
	}
	now := p.now()

	tile := Tile{
		Address:   st.Settings.Address,
		Hashrate:  orDefault(st.Cache.Hashrate, "?"),
		Shares:    orDefault(st.Cache.Shares, "?"),
		Best:      format.Number(float64(st.Best.Value)),
		BestDate:  st.Best.Date,
		Price:     orDefault(st.Cache.Price, "?"),
		LastBlock: orDefault(st.Cache.LastBlock, "N/A"),
		UpdatedAt: now.Format("15:04"),
		Colors: Colors{
			Rate:   st.Settings.RateColor,
			Shares: st.Settings.SharesColor,
			Best:   st.Settings.BestColor,
		},
	}

	if !st.Settings.Configured() {
		tile.Setup = true
		tile.Hashrate = SetupHashrate
		tile.Shares = SetupShares
		tile.Best = SetupBest
		tile.BestDate = ""
		p.metrics.refreshed("setup")
		return tile, nil
	}

	// Worker suffixes are not part of the pool's user path
	user, _ := address.Split(st.Settings.Address)

	results := make(chan Partial, 3)
	go func() { results <- p.fetchPool(ctx, user) }()
	go func() { results <- p.fetchPrice(ctx) }()
	go func() { results <- p.fetchBlocks(ctx, now) }()

	for range 3 {
		part := <-results
		p.apply(st, &tile, part, now)
		if p.OnPartial != nil {
			p.OnPartial(tile)
		}
	}
	sort.Strings(tile.Stale)

	n, err := st.Persist(ctx, store)
	if err != nil {
		log.Printf("[poller] Persist failed after %d writes: %v", n, err)
	} else if p.cfg.Debug && n > 0 {
		log.Printf("[poller] Persisted %d keys", n)
	}
	p.metrics.setBest(st.Best.Value)
	p.metrics.refreshed("ok")
	return tile, nil
}

// apply merges one partial into the state and the tile.
func (p *Poller) apply(st *settings.State, tile *Tile, part Partial, now time.Time) {
	if part.Err != nil {
		log.Printf("[poller] %s fetch failed, using cache: %v", part.Source, part.Err)
		switch part.Source {
		case SourcePool:
			tile.Stale = append(tile.Stale, FieldHashrate, FieldShares)
		case SourcePrice:
			tile.Stale = append(tile.Stale, FieldPrice)
		case SourceBlocks:
			tile.Stale = append(tile.Stale, FieldLastBlock)
		}
		return
	}

	switch part.Source {
	case SourcePool:
		ps := part.Pool
		st.Cache.Hashrate = ps.Hashrate
		st.Cache.Shares = format.Number(float64(ps.Shares))
		tile.Hashrate = st.Cache.Hashrate
		tile.Shares = st.Cache.Shares

		best, changed := ApplyBestEver(st.Best, ps.BestEver, now.Format("2006-01-02"))
		if changed {
			log.Printf("[poller] New best-ever %d (was %d)", best.Value, st.Best.Value)
			st.Best = best
		}
		tile.Best = format.Number(float64(st.Best.Value))
		tile.BestDate = st.Best.Date
	case SourcePrice:
		st.Cache.Price = part.Price
		tile.Price = part.Price
	case SourceBlocks:
		st.Cache.LastBlock = part.LastBlock
		tile.LastBlock = part.LastBlock
	}
}

func (p *Poller) fetchPool(ctx context.Context, user string) Partial {
	start := time.Now()
	ps, err := p.FetchPoolStatus(ctx, user)
	p.metrics.observeFetch(SourcePool, time.Since(start).Seconds(), err)
	if err == nil && p.cfg.Debug {
		log.Printf("[poller] pool: hashrate=%s shares=%d best=%d", ps.Hashrate, ps.Shares, ps.BestEver)
	}
	return Partial{Source: SourcePool, Pool: ps, Err: err}
}

func (p *Poller) fetchPrice(ctx context.Context) Partial {
	start := time.Now()
	price, err := p.FetchPrice(ctx)
	p.metrics.observeFetch(SourcePrice, time.Since(start).Seconds(), err)
	if err != nil {
		return Partial{Source: SourcePrice, Err: err}
	}
	if p.cfg.Debug {
		log.Printf("[poller] price: %s", price)
	}
	return Partial{Source: SourcePrice, Price: format.Price(price)}
}

func (p *Poller) fetchBlocks(ctx context.Context, now time.Time) Partial {
	start := time.Now()
	ts, err := p.FetchLastPoolBlock(ctx)
	p.metrics.observeFetch(SourceBlocks, time.Since(start).Seconds(), err)
	if err != nil {
		return Partial{Source: SourceBlocks, Err: err}
	}
	if p.cfg.Debug {
		log.Printf("[poller] last pool block at %s", ts.UTC().Format(time.RFC3339))
	}
	return Partial{Source: SourceBlocks, LastBlock: format.BlockAge(ts, now)}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
