package models

import "time"

// CompanyActivity is one entity's activity summary used by breadth and movers.
type CompanyActivity struct {
	EntityID       string  `json:"isin"`
	Ticker         string  `json:"ticker,omitempty"`
	CompanyName    string  `json:"companyName"`
	Jurisdiction   string  `json:"jurisdiction,omitempty"`
	Transactions   int     `json:"transactions"`
	Buys           int     `json:"buys"`
	Sells          int     `json:"sells"`
	UniqueInsiders int     `json:"uniqueInsiders"`
	BuyRatio       float64 `json:"buyRatio"`
	ActivityScore  int     `json:"activityScore"`
	Indicator      Metric  `json:"indicator"`
	Sentiment      string  `json:"sentiment"`
}

// JurisdictionBreakdown aggregates activity per jurisdiction.
type JurisdictionBreakdown struct {
	Jurisdiction string  `json:"jurisdiction"`
	Companies    int     `json:"companies"`
	Transactions int     `json:"transactions"`
	Buys         int     `json:"buys"`
	Sells        int     `json:"sells"`
	BuyRatio     float64 `json:"buyRatio"`
}

// MarketBreadth tallies bullish and bearish entities.
// Bullish + Bearish + Neutral == TotalActiveCompanies.
type MarketBreadth struct {
	AsOf                 time.Time               `json:"asOf"`
	Days                 int                     `json:"days"`
	Jurisdiction         string                  `json:"jurisdiction,omitempty"`
	TotalActiveCompanies int                     `json:"totalActiveCompanies"`
	Bullish              int                     `json:"bullishCompanies"`
	Bearish              int                     `json:"bearishCompanies"`
	Neutral              int                     `json:"neutralCompanies"`
	BreadthRatio         float64                 `json:"breadthRatio"`
	Interpretation       string                  `json:"interpretation"`
	Jurisdictions        []JurisdictionBreakdown `json:"jurisdictionBreakdown"`
	TopActiveCompanies   []CompanyActivity       `json:"topActiveCompanies"`
}

// TopMovers is the ranked list of most active entities.
type TopMovers struct {
	AsOf            time.Time         `json:"asOf"`
	Days            int               `json:"days"`
	Jurisdiction    string            `json:"jurisdiction,omitempty"`
	MinTransactions int               `json:"minTransactions"`
	Movers          []CompanyActivity `json:"movers"`
}

// RankingQuery parameterizes breadth and top movers.
type RankingQuery struct {
	AsOf            time.Time
	Days            int
	Jurisdiction    string
	ISINs           []string
	Limit           int
	MinTransactions int
}

// TrendWindow is the insider indicator over one trailing window.
type TrendWindow struct {
	Days         int    `json:"days"`
	AvgIndicator Metric `json:"avgIndicator"`
	RecentBuys   int    `json:"recentBuys"`
	RecentSells  int    `json:"recentSells"`
	Sentiment    string `json:"sentiment"`
}

// Momentum holds deltas between adjacent trend windows.
type Momentum struct {
	ShortTerm      Metric `json:"shortTerm"`
	MediumTerm     Metric `json:"mediumTerm"`
	LongTerm       Metric `json:"longTerm"`
	Interpretation string `json:"interpretation"`
}

// TrendReport is the multi-window momentum view.
type TrendReport struct {
	AsOf         time.Time     `json:"asOf"`
	Jurisdiction string        `json:"jurisdiction,omitempty"`
	Windows      []TrendWindow `json:"windows"`
	Momentum     Momentum      `json:"momentum"`
}

// DashboardOverview composes the dashboard sections.
type DashboardOverview struct {
	Sentiment *SentimentSnapshot `json:"sentiment"`
	Breadth   *MarketBreadth     `json:"breadth"`
	Movers    *TopMovers         `json:"topMovers"`
	Trends    *TrendReport       `json:"trends"`

	// Errors names sections that failed; the others are still returned.
	Errors map[string]string `json:"errors,omitempty"`
}
