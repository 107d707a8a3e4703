// Package settings is the typed view of the widget's flat key-value state:
// user preferences, the best-ever record and the last-known-good display
// strings. Nothing here is kept in memory between refresh cycles.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Store is a flat string key-value store. Missing keys report ok=false.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

const (
	KeyAddress     = "bitcoin_address"
	KeyRateColor   = "rate_color"
	KeySharesColor = "shares_color"
	KeyBestColor   = "best_color"

	KeyBestEver     = "best_ever"
	KeyBestEverDate = "best_ever_date"

	KeyCachedHashrate  = "cached_hashrate"
	KeyCachedShares    = "cached_shares"
	KeyCachedPrice     = "cached_price"
	KeyCachedLastBlock = "cached_last_block"
)

const (
	DefaultRateColor   = "#00FF00"
	DefaultSharesColor = "#00BFFF"
	DefaultBestColor   = "#FFD700"
)

var (
	ErrAddressRequired = errors.New("bitcoin address is required")
	ErrInvalidColor    = errors.New("color must be #RRGGBB")
)

// Settings are the user preferences.
type Settings struct {
	Address     string `json:"address"`
	RateColor   string `json:"rate_color"`
	SharesColor string `json:"shares_color"`
	BestColor   string `json:"best_color"`
}

func DefaultSettings() Settings {
	return Settings{
		RateColor:   DefaultRateColor,
		SharesColor: DefaultSharesColor,
		BestColor:   DefaultBestColor,
	}
}

// Configured reports whether a mining address has been set.
func (s Settings) Configured() bool {
	return s.Address != ""
}

// BestEver is the highest share difficulty seen for the address. Date is
// empty when the value was first observed without a known achievement date.
type BestEver struct {
	Value int64  `json:"value"`
	Date  string `json:"date,omitempty"`
}

// Cache holds the last successfully fetched display string per source.
// An empty field means nothing has been cached yet.
type Cache struct {
	Hashrate  string `json:"hashrate"`
	Shares    string `json:"shares"`
	Price     string `json:"price"`
	LastBlock string `json:"last_block"`
}

// State is everything a refresh cycle reads and may write back.
type State struct {
	Settings Settings
	Best     BestEver
	Cache    Cache

	loaded map[string]string
}

// LoadSettings reads only the user preferences.
func LoadSettings(ctx context.Context, store Store) (Settings, error) {
	s := DefaultSettings()
	var err error
	if s.Address, err = getString(ctx, store, KeyAddress, ""); err != nil {
		return s, err
	}
	if s.RateColor, err = getColor(ctx, store, KeyRateColor, DefaultRateColor); err != nil {
		return s, err
	}
	if s.SharesColor, err = getColor(ctx, store, KeySharesColor, DefaultSharesColor); err != nil {
		return s, err
	}
	if s.BestColor, err = getColor(ctx, store, KeyBestColor, DefaultBestColor); err != nil {
		return s, err
	}
	return s, nil
}

// SaveSettings validates and stores the user preferences.
func SaveSettings(ctx context.Context, store Store, s Settings) error {
	s.Address = strings.TrimSpace(s.Address)
	if s.Address == "" {
		return ErrAddressRequired
	}
	for _, c := range []string{s.RateColor, s.SharesColor, s.BestColor} {
		if !IsSettableColor(c) {
			return fmt.Errorf("%w: %q", ErrInvalidColor, c)
		}
	}

	pairs := [][2]string{
		{KeyAddress, s.Address},
		{KeyRateColor, s.RateColor},
		{KeySharesColor, s.SharesColor},
		{KeyBestColor, s.BestColor},
	}
	for _, kv := range pairs {
		if err := store.Set(ctx, kv[0], kv[1]); err != nil {
			return fmt.Errorf("save %s: %w", kv[0], err)
		}
	}
	return nil
}

// Load reads the full state at the start of a refresh cycle.
func Load(ctx context.Context, store Store) (*State, error) {
	st := &State{loaded: make(map[string]string)}

	s, err := LoadSettings(ctx, store)
	if err != nil {
		return nil, err
	}
	st.Settings = s

	raw := make(map[string]string)
	for _, key := range cycleKeys {
		v, err := getString(ctx, store, key, "")
		if err != nil {
			return nil, err
		}
		raw[key] = v
	}

	st.Best = BestEver{Value: parseBest(raw[KeyBestEver]), Date: raw[KeyBestEverDate]}
	st.Cache = Cache{
		Hashrate:  raw[KeyCachedHashrate],
		Shares:    raw[KeyCachedShares],
		Price:     raw[KeyCachedPrice],
		LastBlock: raw[KeyCachedLastBlock],
	}
	st.loaded = st.values()
	return st, nil
}

// Keys a refresh cycle owns. Preferences are only written by SaveSettings.
var cycleKeys = []string{
	KeyBestEver, KeyBestEverDate,
	KeyCachedHashrate, KeyCachedShares, KeyCachedPrice, KeyCachedLastBlock,
}

func (st *State) values() map[string]string {
	return map[string]string{
		KeyBestEver:        strconv.FormatInt(st.Best.Value, 10),
		KeyBestEverDate:    st.Best.Date,
		KeyCachedHashrate:  st.Cache.Hashrate,
		KeyCachedShares:    st.Cache.Shares,
		KeyCachedPrice:     st.Cache.Price,
		KeyCachedLastBlock: st.Cache.LastBlock,
	}
}

// Changed lists the cycle-owned keys that differ from what Load read.
func (st *State) Changed() []string {
	cur := st.values()
	var keys []string
	for _, k := range cycleKeys {
		if cur[k] != st.loaded[k] {
			keys = append(keys, k)
		}
	}
	return keys
}

// Persist writes the changed cycle-owned keys and returns how many were
// written. The best-ever pair is re-checked against the store first so an
// overlapping cycle that loaded an older value can never lower it.
func (st *State) Persist(ctx context.Context, store Store) (int, error) {
	changed := st.Changed()
	if len(changed) == 0 {
		return 0, nil
	}
	cur := st.values()

	skipBest := false
	if contains(changed, KeyBestEver) {
		stored, err := getString(ctx, store, KeyBestEver, "")
		if err != nil {
			return 0, err
		}
		if parseBest(stored) >= st.Best.Value {
			skipBest = true
		}
	}

	written := 0
	for _, k := range changed {
		if skipBest && (k == KeyBestEver || k == KeyBestEverDate) {
			continue
		}
		if err := store.Set(ctx, k, cur[k]); err != nil {
			return written, fmt.Errorf("persist %s: %w", k, err)
		}
		st.loaded[k] = cur[k]
		written++
	}
	return written, nil
}

func getString(ctx context.Context, store Store, key, def string) (string, error) {
	v, ok, err := store.Get(ctx, key)
	if err != nil {
		return def, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// A stored colour that no longer parses falls back to its default.
func getColor(ctx context.Context, store Store, key, def string) (string, error) {
	v, err := getString(ctx, store, key, def)
	if err != nil {
		return def, err
	}
	if _, err := ParseColor(v); err != nil {
		return def, nil
	}
	return v, nil
}

func parseBest(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
