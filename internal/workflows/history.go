package workflows

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PolarWolf314/keymaker/internal/audit"
	kerrors "github.com/PolarWolf314/keymaker/internal/errors"
)

// HistoryOptions configures the history workflow.
type HistoryOptions struct {
	// Limit is the maximum number of changes to return. 0 means no limit.
	Limit int

	// Reverse orders changes from most recent to oldest when true.
	Reverse bool

	// Operations filters changes by operation types (comma-separated).
	Operations string

	// Since filters changes after this date (YYYY-MM-DD format).
	Since string

	// Until filters changes before this date (YYYY-MM-DD format).
	Until string
}

// Change is one history entry with its summary decrypted.
type Change struct {
	audit.Entry

	// Text is the decrypted summary. It is empty if the summary could not
	// be decrypted, for example when it was written under another key.
	Text string
}

// HistoryResult contains the outcome of a history query.
type HistoryResult struct {
	// Changes are the filtered changes.
	Changes []Change

	// TotalEntriesBeforeFilter is the count of changes before filtering.
	TotalEntriesBeforeFilter int
}

// History reads, filters and decrypts the open keyring's change history.
//
// Returns ErrInvalidDateFormat if a date filter is invalid.
func (s *Session) History(ctx context.Context, opts HistoryOptions) (*HistoryResult, error) {
	if err := s.requireOpen(); err != nil {
		return nil, err
	}

	entries, err := s.store.History(ctx, s.ring.ID())
	if err != nil {
		return nil, err
	}

	filtered, err := filterHistory(entries, opts)
	if err != nil {
		return nil, err
	}

	result := &HistoryResult{TotalEntriesBeforeFilter: len(entries)}
	for _, e := range filtered {
		text, err := decryptSummary(s.enc, e.Summary)
		if err != nil {
			s.log.Debugf("Could not decrypt summary of %s change at %s: %v", e.Operation, e.Timestamp, err)
			text = ""
		}
		result.Changes = append(result.Changes, Change{Entry: e, Text: text})
	}

	return result, nil
}

func filterHistory(entries []audit.Entry, opts HistoryOptions) ([]audit.Entry, error) {
	if len(entries) == 0 {
		return entries, nil
	}

	filtered := entries

	if opts.Operations != "" {
		ops := strings.Split(opts.Operations, ",")
		for i := range ops {
			ops[i] = strings.TrimSpace(ops[i])
		}
		filtered = filterByOperations(filtered, ops)
	}

	if opts.Since != "" {
		sinceTime, err := time.Parse("2006-01-02", opts.Since)
		if err != nil {
			return nil, fmt.Errorf("%w: --since date format invalid, use YYYY-MM-DD", kerrors.ErrInvalidDateFormat)
		}
		filtered = filterSince(filtered, sinceTime)
	}

	if opts.Until != "" {
		untilTime, err := time.Parse("2006-01-02", opts.Until)
		if err != nil {
			return nil, fmt.Errorf("%w: --until date format invalid, use YYYY-MM-DD", kerrors.ErrInvalidDateFormat)
		}
		// Include the entire day by setting to end of day.
		untilTime = untilTime.Add(24*time.Hour - time.Nanosecond)
		filtered = filterUntil(filtered, untilTime)
	}

	// Filters above allocate new slices; copy before reversing so the
	// caller's slice is never reordered.
	if opts.Reverse {
		reversed := make([]audit.Entry, len(filtered))
		for i, e := range filtered {
			reversed[len(filtered)-1-i] = e
		}
		filtered = reversed
	}

	// Apply limit.
	if opts.Limit > 0 && len(filtered) > opts.Limit {
		if opts.Reverse {
			// When reversed, limit takes first N (most recent).
			filtered = filtered[:opts.Limit]
		} else {
			// When not reversed, limit takes last N (most recent).
			filtered = filtered[len(filtered)-opts.Limit:]
		}
	}

	return filtered, nil
}

// filterByOperations filters entries by operation types.
func filterByOperations(entries []audit.Entry, ops []string) []audit.Entry {
	opSet := make(map[string]bool)
	for _, op := range ops {
		opSet[strings.ToLower(op)] = true
	}

	var result []audit.Entry
	for _, e := range entries {
		if opSet[strings.ToLower(e.Operation)] {
			result = append(result, e)
		}
	}
	return result
}

// filterSince filters entries to only include those at or after the given time.
func filterSince(entries []audit.Entry, since time.Time) []audit.Entry {
	var result []audit.Entry
	for _, e := range entries {
		t, err := e.Time()
		if err != nil {
			continue
		}
		if !t.Before(since) {
			result = append(result, e)
		}
	}
	return result
}

// filterUntil filters entries to only include those at or before the given time.
func filterUntil(entries []audit.Entry, until time.Time) []audit.Entry {
	var result []audit.Entry
	for _, e := range entries {
		t, err := e.Time()
		if err != nil {
			continue
		}
		if !t.After(until) {
			result = append(result, e)
		}
	}
	return result
}

// FormatDateTime formats a timestamp string to YYYY-MM-DD HH:MM:SS format.
func FormatDateTime(ts string) string {
	t, err := audit.Entry{Timestamp: ts}.Time()
	if err != nil {
		if len(ts) >= 19 {
			return ts[:19]
		}
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}
