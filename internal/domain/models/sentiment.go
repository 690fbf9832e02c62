package models

import "time"

// Interpretation labels that do not come from a band table.
const NoData = "no_data"

// IndicatorReading is the insider indicator over the short window.
type IndicatorReading struct {
	Value          Metric `json:"value"`
	Buys           int    `json:"buys"`
	Sells          int    `json:"sells"`
	WindowDays     int    `json:"windowDays"`
	Interpretation string `json:"interpretation"`
}

// BarometerReading compares the current indicator with its 12-month mean.
type BarometerReading struct {
	Value          Metric  `json:"value"`
	Normalized     Metric  `json:"normalized"`
	Current        Metric  `json:"currentIndicator"`
	Average12m     Metric  `json:"average12mIndicator"`
	Scale          float64 `json:"scale"`
	Interpretation string  `json:"interpretation"`
}

// ActivityReading is the transaction rate against its 12-month mean.
type ActivityReading struct {
	Value            float64 `json:"value"`
	Transactions     int     `json:"transactions"`
	WindowDays       int     `json:"windowDays"`
	Average12m       Metric  `json:"average12m"`
	DeviationPercent Metric  `json:"deviationPercent"`
	Interpretation   string  `json:"interpretation"`
}

// SentimentPoint is one day of the charting series.
type SentimentPoint struct {
	Date      string `json:"date"`
	Indicator Metric `json:"indicator"`
	Barometer Metric `json:"barometer"`
	Activity  Metric `json:"activity"`
	Buys      int    `json:"buys"`
	Sells     int    `json:"sells"`
}

// MarketStatistics summarizes the requested history range.
type MarketStatistics struct {
	TotalTransactions    int     `json:"totalTransactions"`
	TotalBuys            int     `json:"totalBuys"`
	TotalSells           int     `json:"totalSells"`
	AvgDailyTransactions float64 `json:"avgDailyTransactions"`
	BuySellRatio         float64 `json:"buySellRatio"`
	ActiveDays           int     `json:"activeDays"`
	DaysWithoutActivity  int     `json:"daysWithoutActivity"`
}

// DataQuality grades how much history backs the indicators.
type DataQuality struct {
	ActivityRatio float64 `json:"activityRatio"`
	Level         string  `json:"level"`
}

// SentimentSnapshot is the full result of one sentiment computation.
type SentimentSnapshot struct {
	AsOf         time.Time        `json:"asOf"`
	Days         int              `json:"days"`
	Jurisdiction string           `json:"jurisdiction,omitempty"`
	Indicator    IndicatorReading `json:"insiderIndicator"`
	Barometer    BarometerReading `json:"insiderBarometer"`
	Activity     ActivityReading  `json:"activityIndicator"`
	History      []SentimentPoint `json:"history,omitempty"`
	Statistics   MarketStatistics `json:"marketStatistics"`
	Quality      DataQuality      `json:"dataQuality"`
	Excluded     int              `json:"excludedTransactions"`
}

// SentimentQuery parameterizes a sentiment computation.
type SentimentQuery struct {
	AsOf           time.Time
	Days           int
	Jurisdiction   string
	IncludeHistory bool
}
