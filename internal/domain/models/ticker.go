package models

import "time"

// Signal is a boolean anomaly flag on one entity's aggregate.
type Signal string

const (
	SignalClusterBuying  Signal = "CLUSTER_BUYING"
	SignalHighVolume     Signal = "HIGH_VOLUME"
	SignalPureBuying     Signal = "PURE_BUYING"
	SignalDominantBuying Signal = "DOMINANT_BUYING"
)

// TickerSignalSet is derived from one WindowAggregate and never stored.
type TickerSignalSet struct {
	Signals  []Signal `json:"signals"`
	Headline string   `json:"headline"`
}

func (s TickerSignalSet) Has(sig Signal) bool {
	for _, x := range s.Signals {
		if x == sig {
			return true
		}
	}
	return false
}

// TickerItem is one entry of the screening feed.
type TickerItem struct {
	UID       string           `json:"uid"`
	Aggregate *WindowAggregate `json:"aggregate"`
	TickerSignalSet
}

// TickerQuery parameterizes a ticker computation.
type TickerQuery struct {
	AsOf           time.Time
	Days           int
	MinTrades      int
	MinTotalAmount float64
	ISINs          []string
	Source         string
	Limit          int
}

// TickerFeed is the ticker result.
type TickerFeed struct {
	AsOf     time.Time    `json:"asOf"`
	Days     int          `json:"days"`
	Total    int          `json:"total"`
	Items    []TickerItem `json:"items"`
	Excluded int          `json:"excludedTransactions"`
}
