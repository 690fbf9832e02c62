package analytics

import (
	"sort"
	"strings"

	"InsiderPulse/internal/domain/models"
)

// AggregateFilter narrows aggregation. Empty fields match everything.
type AggregateFilter struct {
	EntityIDs    []string
	Jurisdiction string
}

func (f AggregateFilter) match(t models.Transaction) bool {
	if f.Jurisdiction != "" && !strings.EqualFold(f.Jurisdiction, t.Jurisdiction) {
		return false
	}
	if len(f.EntityIDs) == 0 {
		return true
	}
	for _, id := range f.EntityIDs {
		if strings.EqualFold(id, t.EntityID) {
			return true
		}
	}
	return false
}

// Aggregate folds deduplicated transactions inside w into per-entity
// aggregates. OTHER transactions are skipped; entities without a qualifying
// transaction are absent. The result does not depend on input order.
func Aggregate(txs []models.Transaction, w models.Window, f AggregateFilter) map[string]*models.WindowAggregate {
	out := make(map[string]*models.WindowAggregate)
	latest := make(map[string]models.Transaction)
	buyers := make(map[string]map[string]models.Transaction) // entity -> insider -> first buy

	for _, t := range txs {
		if !w.Contains(t.Timestamp) || !f.match(t) {
			continue
		}
		class := t.Class()
		if class != models.DirectionBuy && class != models.DirectionSell {
			continue
		}
		a, ok := out[t.EntityID]
		if !ok {
			a = models.NewWindowAggregate(t.EntityID)
			out[t.EntityID] = a
			buyers[t.EntityID] = make(map[string]models.Transaction)
		}
		a.TradeCount++
		amount := t.Amount.Abs()
		if class == models.DirectionBuy {
			a.BuyCount++
			a.BuyVolume = a.BuyVolume.Add(amount)
			a.UniqueBuyers[t.InsiderID] = struct{}{}
			if first, ok := buyers[t.EntityID][t.InsiderID]; !ok || txLess(t, first) {
				buyers[t.EntityID][t.InsiderID] = t
			}
		} else {
			a.SellCount++
			a.SellVolume = a.SellVolume.Add(amount)
			a.UniqueSellers[t.InsiderID] = struct{}{}
		}
		if cur, ok := latest[t.EntityID]; !ok || txLess(cur, t) {
			latest[t.EntityID] = t
		}
	}

	for id, a := range out {
		l := latest[id]
		a.Ticker = l.Ticker
		a.CompanyName = l.CompanyName
		a.Jurisdiction = l.Jurisdiction
		a.Source = l.Source
		a.Currency = l.Currency
		a.LastTransaction = l.Timestamp
		a.BuyerNames = buyerNames(buyers[id])
	}
	return out
}

func buyerNames(seen map[string]models.Transaction) []string {
	firsts := make([]models.Transaction, 0, len(seen))
	for _, t := range seen {
		firsts = append(firsts, t)
	}
	sort.Slice(firsts, func(i, j int) bool { return txLess(firsts[i], firsts[j]) })
	names := make([]string, 0, len(firsts))
	for _, t := range firsts {
		names = append(names, t.DisplayName())
	}
	return names
}

// SortedEntityIDs returns the keys of aggs in ascending order.
func SortedEntityIDs(aggs map[string]*models.WindowAggregate) []string {
	ids := make([]string, 0, len(aggs))
	for id := range aggs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Totals sums buys and sells across aggregates.
func Totals(aggs map[string]*models.WindowAggregate) (buys, sells int) {
	for _, a := range aggs {
		buys += a.BuyCount
		sells += a.SellCount
	}
	return buys, sells
}
