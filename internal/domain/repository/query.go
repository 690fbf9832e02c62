package repository

import (
	"sort"
	"strings"

	"InsiderPulse/internal/domain/models"
)

// TransactionQuery selects transactions overlapping Window. Empty filters match everything.
type TransactionQuery struct {
	Window       models.Window
	EntityIDs    []string
	Jurisdiction string
	Source       string
}

// Matches applies the query to one transaction. Stores that cannot push a
// filter down use this to apply it in memory.
func (q TransactionQuery) Matches(t models.Transaction) bool {
	if !q.Window.Contains(t.Timestamp) {
		return false
	}
	if len(q.EntityIDs) > 0 && !containsFold(q.EntityIDs, t.EntityID) {
		return false
	}
	if q.Jurisdiction != "" && !strings.EqualFold(q.Jurisdiction, t.Jurisdiction) {
		return false
	}
	if q.Source != "" && !strings.EqualFold(q.Source, t.Source) {
		return false
	}
	return true
}

// CacheKey is a stable string for coalescing identical queries.
func (q TransactionQuery) CacheKey() string {
	ids := NormalizeEntityIDs(q.EntityIDs)
	return strings.Join([]string{
		q.Window.Start.UTC().Format("20060102T150405"),
		q.Window.End.UTC().Format("20060102T150405"),
		strings.Join(ids, ","),
		strings.ToUpper(q.Jurisdiction),
		strings.ToLower(q.Source),
	}, "|")
}

// NormalizeEntityIDs upper-cases, trims, dedups and sorts ISINs.
func NormalizeEntityIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.ToUpper(strings.TrimSpace(id))
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// SplitEntityIDs parses a comma separated ISIN list.
func SplitEntityIDs(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	return NormalizeEntityIDs(strings.Split(csv, ","))
}

func containsFold(list []string, s string) bool {
	for _, x := range list {
		if strings.EqualFold(x, s) {
			return true
		}
	}
	return false
}
