package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// WindowAggregate holds one entity's counts and volumes over a window.
// BuyCount + SellCount == TradeCount always holds.
type WindowAggregate struct {
	EntityID     string
	Ticker       string
	CompanyName  string
	Jurisdiction string
	Source       string
	Currency     string

	TradeCount int
	BuyCount   int
	SellCount  int
	BuyVolume  decimal.Decimal
	SellVolume decimal.Decimal

	UniqueBuyers  map[string]struct{}
	UniqueSellers map[string]struct{}

	// BuyerNames lists unique buyers ordered by their first buy.
	BuyerNames      []string
	LastTransaction time.Time
}

// NewWindowAggregate returns an empty aggregate for entityID.
func NewWindowAggregate(entityID string) *WindowAggregate {
	return &WindowAggregate{
		EntityID:      entityID,
		UniqueBuyers:  make(map[string]struct{}),
		UniqueSellers: make(map[string]struct{}),
	}
}

func (a *WindowAggregate) NetVolume() decimal.Decimal {
	return a.BuyVolume.Sub(a.SellVolume)
}

// UniqueInsiders counts distinct insiders on either side.
func (a *WindowAggregate) UniqueInsiders() int {
	n := len(a.UniqueBuyers)
	for id := range a.UniqueSellers {
		if _, ok := a.UniqueBuyers[id]; !ok {
			n++
		}
	}
	return n
}

// BuyRatio is buys / trades in [0, 1]; zero for an empty aggregate.
func (a *WindowAggregate) BuyRatio() float64 {
	if a.TradeCount == 0 {
		return 0
	}
	return float64(a.BuyCount) / float64(a.TradeCount)
}

// Indicator is the insider indicator of this entity alone.
func (a *WindowAggregate) Indicator() Metric {
	return Ratio(a.BuyCount, a.BuyCount+a.SellCount)
}

type windowAggregateJSON struct {
	EntityID        string          `json:"isin"`
	Ticker          string          `json:"ticker,omitempty"`
	CompanyName     string          `json:"companyName"`
	Jurisdiction    string          `json:"jurisdiction,omitempty"`
	Source          string          `json:"source,omitempty"`
	Currency        string          `json:"currency,omitempty"`
	TradeCount      int             `json:"tradeCount"`
	BuyCount        int             `json:"buyCount"`
	SellCount       int             `json:"sellCount"`
	BuyVolume       decimal.Decimal `json:"buyVolume"`
	SellVolume      decimal.Decimal `json:"sellVolume"`
	NetVolume       decimal.Decimal `json:"netVolume"`
	UniqueBuyers    int             `json:"uniqueBuyers"`
	UniqueSellers   int             `json:"uniqueSellers"`
	Buyers          []string        `json:"buyers"`
	LastTransaction time.Time       `json:"lastTransaction"`
}

func (a *WindowAggregate) MarshalJSON() ([]byte, error) {
	buyers := a.BuyerNames
	if buyers == nil {
		buyers = []string{}
	}
	return json.Marshal(windowAggregateJSON{
		EntityID:        a.EntityID,
		Ticker:          a.Ticker,
		CompanyName:     a.CompanyName,
		Jurisdiction:    a.Jurisdiction,
		Source:          a.Source,
		Currency:        a.Currency,
		TradeCount:      a.TradeCount,
		BuyCount:        a.BuyCount,
		SellCount:       a.SellCount,
		BuyVolume:       a.BuyVolume,
		SellVolume:      a.SellVolume,
		NetVolume:       a.NetVolume(),
		UniqueBuyers:    len(a.UniqueBuyers),
		UniqueSellers:   len(a.UniqueSellers),
		Buyers:          buyers,
		LastTransaction: a.LastTransaction,
	})
}
