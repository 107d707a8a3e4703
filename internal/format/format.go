// Package format renders pool numbers for the status tile.
package format

import (
	"fmt"
	"time"

	"github.com/hako/durafmt"
	"github.com/shopspring/decimal"
)

var units = []struct {
	threshold float64
	suffix    string
}{
	{1e12, "T"},
	{1e9, "G"},
	{1e6, "M"},
	{1e3, "k"},
}

// Number scales n by the largest of 10^12/10^9/10^6/10^3 it reaches and
// appends T/G/M/k, always with two decimals.
func Number(n float64) string {
	for _, u := range units {
		if n >= u.threshold {
			return fmt.Sprintf("%.2f %s", n/u.threshold, u.suffix)
		}
	}
	return fmt.Sprintf("%.2f", n)
}

var thousand = decimal.NewFromInt(1000)

// Price renders a USD price in thousands: 67512.3 -> "$68k".
func Price(p decimal.Decimal) string {
	return "$" + p.Div(thousand).StringFixed(0) + "k"
}

// BlockAge renders how long ago ts was, relative to now.
func BlockAge(ts, now time.Time) string {
	ago := now.Sub(ts)
	switch {
	case ago >= 24*time.Hour:
		return fmt.Sprintf("%dd ago", int64(ago/(24*time.Hour)))
	case ago >= time.Hour:
		return fmt.Sprintf("%dh ago", int64(ago/time.Hour))
	default:
		return "< 1h ago"
	}
}

// Uptime renders d with its two most significant units.
func Uptime(d time.Duration) string {
	return durafmt.Parse(d.Round(time.Second)).LimitFirstN(2).String()
}
