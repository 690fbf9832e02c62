package analytics

import "InsiderPulse/internal/domain/models"

// Band matches values at or above Lower (strictly above when Strict).
type Band struct {
	Lower  float64
	Strict bool
	Label  string
}

func (b Band) matches(v float64) bool {
	if b.Strict {
		return v > b.Lower
	}
	return v >= b.Lower
}

// BandTable is an ordered list of bands evaluated first-match from the top.
// Values below every band get Floor.
type BandTable struct {
	Bands []Band
	Floor string
}

// Label bands a defined metric. Undefined metrics are never banded.
func (t BandTable) Label(m models.Metric) string {
	v, ok := m.Get()
	if !ok {
		return models.NoData
	}
	return t.LabelValue(v)
}

func (t BandTable) LabelValue(v float64) string {
	for _, b := range t.Bands {
		if b.matches(v) {
			return b.Label
		}
	}
	return t.Floor
}

var (
	IndicatorBands = BandTable{
		Bands: []Band{
			{Lower: 60, Label: "bullish"},
			{Lower: 45, Label: "slightly_bullish"},
			{Lower: 40, Label: "neutral"},
			{Lower: 30, Label: "slightly_bearish"},
		},
		Floor: "bearish",
	}

	BarometerBands = BandTable{
		Bands: []Band{
			{Lower: 50, Label: "strong_bullish"},
			{Lower: 20, Label: "bullish"},
			{Lower: -20, Strict: true, Label: "neutral"},
			{Lower: -50, Strict: true, Label: "bearish"},
		},
		Floor: "strong_bearish",
	}

	ActivityBands = BandTable{
		Bands: []Band{
			{Lower: 50, Label: "very_high"},
			{Lower: 20, Label: "high"},
			{Lower: -20, Strict: true, Label: "normal"},
		},
		Floor: "low",
	}

	// MoverBands apply to the buy ratio in percent.
	MoverBands = BandTable{
		Bands: []Band{
			{Lower: 70, Label: "strong_bullish"},
			{Lower: 55, Label: "bullish"},
			{Lower: 45, Label: "neutral"},
			{Lower: 30, Label: "bearish"},
		},
		Floor: "strong_bearish",
	}

	// BreadthRatioBands interpret bullish / (bullish + bearish).
	BreadthRatioBands = BandTable{
		Bands: []Band{
			{Lower: 0.6, Label: "bullish"},
			{Lower: 0.4, Strict: true, Label: "neutral"},
		},
		Floor: "bearish",
	}
)

// Company sentiment classes used by market breadth.
const (
	CompanyBullish = "bullish"
	CompanyBearish = "bearish"
	CompanyNeutral = "neutral"
)

// CompanySentiment collapses an indicator band into a breadth class.
func CompanySentiment(indicator models.Metric) string {
	switch IndicatorBands.Label(indicator) {
	case "bullish":
		return CompanyBullish
	case "slightly_bearish", "bearish":
		return CompanyBearish
	default:
		return CompanyNeutral
	}
}
