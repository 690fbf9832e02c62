package analytics

import (
	"sort"
	"strings"

	"InsiderPulse/internal/domain/models"

	"github.com/shopspring/decimal"
)

// DedupPolicy decides what survives a DedupKey collision.
type DedupPolicy string

const (
	// KeepFirst keeps the earliest transaction and drops the rest.
	KeepFirst DedupPolicy = "keep_first"
	// SumVolume keeps the earliest transaction with the summed amount of
	// the collided transactions on the same side.
	SumVolume DedupPolicy = "sum_volume"
	// KeepFirstQualifying keeps the earliest BUY or SELL of the group, so a
	// gift booked before a purchase on the same day does not hide it.
	KeepFirstQualifying DedupPolicy = "keep_first_qualifying"
)

// ReasonMissingTimestamp marks transactions that cannot be keyed.
const ReasonMissingTimestamp = "missing_timestamp"

// DedupReport describes one deduplication pass.
type DedupReport struct {
	Input     int
	Output    int
	Collapsed int
	Excluded  map[string]int
}

func (r DedupReport) ExcludedTotal() int {
	n := 0
	for _, c := range r.Excluded {
		n += c
	}
	return n
}

// Deduplicator collapses same-day transactions of one insider in one entity.
type Deduplicator struct {
	policy DedupPolicy
}

func NewDeduplicator(policy DedupPolicy) *Deduplicator {
	switch policy {
	case SumVolume, KeepFirstQualifying:
	default:
		policy = KeepFirst
	}
	return &Deduplicator{policy: policy}
}

func (d *Deduplicator) Policy() DedupPolicy { return d.policy }

// Dedup returns one transaction per DedupKey, ordered by timestamp. The
// representative is the earliest transaction of the group; under
// KeepFirstQualifying it is the earliest BUY or SELL when there is one.
// Transactions without a timestamp are dropped and counted in the report.
func (d *Deduplicator) Dedup(txs []models.Transaction) ([]models.Transaction, DedupReport) {
	rep := DedupReport{Input: len(txs), Excluded: map[string]int{}}
	groups := make(map[models.DedupKey][]models.Transaction, len(txs))
	for _, t := range txs {
		key, ok := t.Key()
		if !ok {
			rep.Excluded[ReasonMissingTimestamp]++
			continue
		}
		groups[key] = append(groups[key], t)
	}

	out := make([]models.Transaction, 0, len(groups))
	for _, g := range groups {
		rep.Collapsed += len(g) - 1
		out = append(out, d.collapse(g))
	}
	sort.Slice(out, func(i, j int) bool { return txLess(out[i], out[j]) })
	rep.Output = len(out)
	return out, rep
}

func (d *Deduplicator) collapse(g []models.Transaction) models.Transaction {
	best := g[0]
	for _, t := range g[1:] {
		if d.preferred(t, best) {
			best = t
		}
	}
	if d.policy != SumVolume || len(g) == 1 {
		return best
	}
	side := best.Class()
	sum := decimal.Zero
	for _, t := range g {
		if t.Class() == side {
			sum = sum.Add(t.Amount.Abs())
		}
	}
	best.Amount = sum
	return best
}

// preferred reports whether a should represent a group over b.
func (d *Deduplicator) preferred(a, b models.Transaction) bool {
	if d.policy == KeepFirstQualifying {
		if aq, bq := a.Qualifies(), b.Qualifies(); aq != bq {
			return aq
		}
	}
	return txLess(a, b)
}

// txLess is a total order on transactions so results never depend on input order.
func txLess(a, b models.Transaction) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	if c := a.Amount.Cmp(b.Amount); c != 0 {
		return c < 0
	}
	for _, p := range [][2]string{
		{a.EntityID, b.EntityID},
		{a.InsiderID, b.InsiderID},
		{string(a.Direction), string(b.Direction)},
		{a.TransactionMethod, b.TransactionMethod},
		{a.InsiderName, b.InsiderName},
		{a.CompanyName, b.CompanyName},
		{a.Ticker, b.Ticker},
		{a.Jurisdiction, b.Jurisdiction},
		{a.Source, b.Source},
		{a.Currency, b.Currency},
	} {
		if c := strings.Compare(p[0], p[1]); c != 0 {
			return c < 0
		}
	}
	return false
}
