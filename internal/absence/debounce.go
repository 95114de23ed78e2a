package absence

import (
	"fmt"
	"time"

	"github.com/example/edutrack/internal/persistence"
)

// DedupMode selects what makes two alerts duplicates.
type DedupMode string

const (
	// DedupByMessage treats alerts for the same recipient with identical text
	// as duplicates, even when they come from different sessions.
	DedupByMessage DedupMode = "message"
	// DedupByKey treats alerts for the same recipient with the same alert id
	// as duplicates. The id already encodes the alert kind and session.
	DedupByKey DedupMode = "key"
)

// DefaultDebounceWindow is how long an alert suppresses its duplicates.
const DefaultDebounceWindow = 10 * time.Minute

// ParseDedupMode validates a configured mode name.
func ParseDedupMode(value string) (DedupMode, error) {
	switch DedupMode(value) {
	case DedupByMessage, DedupByKey:
		return DedupMode(value), nil
	}
	return "", fmt.Errorf("absence: unknown dedup mode %q", value)
}

// Debouncer filters alert intents against recently persisted alerts.
type Debouncer struct {
	Mode   DedupMode
	Window time.Duration
}

// NewDebouncer returns a Debouncer, defaulting empty values to message mode
// and DefaultDebounceWindow.
func NewDebouncer(mode DedupMode, window time.Duration) Debouncer {
	if mode == "" {
		mode = DedupByMessage
	}
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return Debouncer{Mode: mode, Window: window}
}

// Apply returns existing with every non-duplicate intent prepended, newest
// first, plus the alerts that were added. An alert is a duplicate when an
// alert with the same key for the same recipient is younger than Window at
// now. Intents accepted earlier in the same call count as existing.
func (d Debouncer) Apply(existing []persistence.Alert, intents []AlertIntent, now time.Time) ([]persistence.Alert, []persistence.Alert) {
	if len(intents) == 0 {
		return existing, nil
	}

	cutoff := now.Add(-d.Window).UnixMilli()
	recent := make(map[string]struct{})
	for _, alert := range existing {
		if alert.Timestamp > cutoff {
			recent[d.key(alert)] = struct{}{}
		}
	}

	var added []persistence.Alert
	for _, intent := range intents {
		alert := intent.Alert()
		key := d.key(alert)
		if _, dup := recent[key]; dup {
			continue
		}
		recent[key] = struct{}{}
		added = append(added, alert)
	}
	if len(added) == 0 {
		return existing, nil
	}

	merged := make([]persistence.Alert, 0, len(added)+len(existing))
	for i := len(added) - 1; i >= 0; i-- {
		merged = append(merged, added[i])
	}
	merged = append(merged, existing...)
	return merged, added
}

func (d Debouncer) key(alert persistence.Alert) string {
	if d.Mode == DedupByKey {
		return alert.RecipientID + "\x00" + alert.ID
	}
	return alert.RecipientID + "\x00" + alert.Message
}
