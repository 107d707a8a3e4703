package poller

import "github.com/b0ase/ckwidget/internal/settings"

// ApplyBestEver folds an observed pool best into the saved record.
//
// A saved non-zero best that is beaten gets today's date. The first non-zero
// observation is stored undated because when it was achieved is unknown.
// Anything else leaves the record alone, so the value never decreases.
func ApplyBestEver(saved settings.BestEver, observed int64, today string) (settings.BestEver, bool) {
	switch {
	case saved.Value > 0 && observed > saved.Value:
		return settings.BestEver{Value: observed, Date: today}, true
	case saved.Value == 0 && observed > 0:
		return settings.BestEver{Value: observed}, true
	default:
		return saved, false
	}
}
