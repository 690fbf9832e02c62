package analytics

import (
	"math"
	"sort"
	"strings"

	"InsiderPulse/internal/domain/models"
)

const unknownJurisdiction = "UNKNOWN"

// RankingEngine computes market breadth and top movers from aggregates.
type RankingEngine struct {
	topActive int
}

func NewRankingEngine(cfg Config) *RankingEngine {
	return &RankingEngine{topActive: cfg.withDefaults().TopActiveCompanies}
}

// Activity summarizes one aggregate.
func Activity(a *models.WindowAggregate) models.CompanyActivity {
	ind := a.Indicator()
	uniq := a.UniqueInsiders()
	return models.CompanyActivity{
		EntityID:       a.EntityID,
		Ticker:         a.Ticker,
		CompanyName:    a.CompanyName,
		Jurisdiction:   a.Jurisdiction,
		Transactions:   a.TradeCount,
		Buys:           a.BuyCount,
		Sells:          a.SellCount,
		UniqueInsiders: uniq,
		BuyRatio:       round4(a.BuyRatio()),
		ActivityScore:  a.TradeCount * uniq,
		Indicator:      ind.Round(2),
		Sentiment:      CompanySentiment(ind),
	}
}

// Breadth classifies every aggregate and tallies classes and jurisdictions.
// Filtering must already have been applied when aggs were built.
func (r *RankingEngine) Breadth(aggs map[string]*models.WindowAggregate) models.MarketBreadth {
	var mb models.MarketBreadth
	juris := make(map[string]*models.JurisdictionBreakdown)
	acts := make([]models.CompanyActivity, 0, len(aggs))

	for _, id := range SortedEntityIDs(aggs) {
		a := aggs[id]
		act := Activity(a)
		acts = append(acts, act)
		mb.TotalActiveCompanies++
		switch act.Sentiment {
		case CompanyBullish:
			mb.Bullish++
		case CompanyBearish:
			mb.Bearish++
		default:
			mb.Neutral++
		}

		key := strings.ToUpper(strings.TrimSpace(a.Jurisdiction))
		if key == "" {
			key = unknownJurisdiction
		}
		jb, ok := juris[key]
		if !ok {
			jb = &models.JurisdictionBreakdown{Jurisdiction: key}
			juris[key] = jb
		}
		jb.Companies++
		jb.Transactions += a.TradeCount
		jb.Buys += a.BuyCount
		jb.Sells += a.SellCount
	}

	denom := mb.Bullish + mb.Bearish
	if denom < 1 {
		denom = 1
	}
	mb.BreadthRatio = round4(float64(mb.Bullish) / float64(denom))
	if mb.Bullish+mb.Bearish == 0 {
		mb.Interpretation = CompanyNeutral
	} else {
		mb.Interpretation = BreadthRatioBands.LabelValue(mb.BreadthRatio)
	}

	mb.Jurisdictions = make([]models.JurisdictionBreakdown, 0, len(juris))
	for _, jb := range juris {
		if jb.Transactions > 0 {
			jb.BuyRatio = round4(float64(jb.Buys) / float64(jb.Transactions))
		}
		mb.Jurisdictions = append(mb.Jurisdictions, *jb)
	}
	sort.Slice(mb.Jurisdictions, func(i, j int) bool {
		a, b := mb.Jurisdictions[i], mb.Jurisdictions[j]
		if a.Transactions != b.Transactions {
			return a.Transactions > b.Transactions
		}
		return a.Jurisdiction < b.Jurisdiction
	})

	sort.SliceStable(acts, func(i, j int) bool {
		return acts[i].Transactions > acts[j].Transactions
	})
	if len(acts) > r.topActive {
		acts = acts[:r.topActive]
	}
	mb.TopActiveCompanies = acts
	return mb
}

// TopMovers drops entities below minTransactions, ranks by activity score,
// then buy ratio, then entity id, and truncates to limit (0 = no limit).
func (r *RankingEngine) TopMovers(aggs map[string]*models.WindowAggregate, minTransactions, limit int) []models.CompanyActivity {
	movers := make([]models.CompanyActivity, 0, len(aggs))
	for _, a := range aggs {
		if a.TradeCount < minTransactions {
			continue
		}
		act := Activity(a)
		act.Sentiment = MoverBands.LabelValue(100 * a.BuyRatio())
		movers = append(movers, act)
	}
	sort.Slice(movers, func(i, j int) bool {
		a, b := movers[i], movers[j]
		if a.ActivityScore != b.ActivityScore {
			return a.ActivityScore > b.ActivityScore
		}
		if a.BuyRatio != b.BuyRatio {
			return a.BuyRatio > b.BuyRatio
		}
		return a.EntityID < b.EntityID
	})
	if limit > 0 && len(movers) > limit {
		movers = movers[:limit]
	}
	return movers
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
