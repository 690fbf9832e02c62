package analytics

import "github.com/shopspring/decimal"

// Config holds the tunables of the analytics engines.
type Config struct {
	ShortWindowDays     int
	ReferenceDays       int
	BarometerScale      float64
	HighVolumeThreshold decimal.Decimal
	MomentumThreshold   float64
	TrendWindows        []int
	TrendSmoothingDays  int
	TopActiveCompanies  int
	DedupPolicy         DedupPolicy
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		ShortWindowDays:     28,
		ReferenceDays:       365,
		BarometerScale:      25,
		HighVolumeThreshold: decimal.NewFromInt(100000),
		MomentumThreshold:   5,
		TrendWindows:        []int{7, 28, 90, 365},
		TrendSmoothingDays:  7,
		TopActiveCompanies:  20,
		DedupPolicy:         KeepFirst,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ShortWindowDays <= 0 {
		c.ShortWindowDays = d.ShortWindowDays
	}
	if c.ReferenceDays <= 0 {
		c.ReferenceDays = d.ReferenceDays
	}
	if c.BarometerScale <= 0 {
		c.BarometerScale = d.BarometerScale
	}
	if c.HighVolumeThreshold.IsZero() {
		c.HighVolumeThreshold = d.HighVolumeThreshold
	}
	if c.MomentumThreshold <= 0 {
		c.MomentumThreshold = d.MomentumThreshold
	}
	if len(c.TrendWindows) == 0 {
		c.TrendWindows = d.TrendWindows
	}
	if c.TrendSmoothingDays <= 0 {
		c.TrendSmoothingDays = d.TrendSmoothingDays
	}
	if c.TopActiveCompanies <= 0 {
		c.TopActiveCompanies = d.TopActiveCompanies
	}
	if c.DedupPolicy == "" {
		c.DedupPolicy = d.DedupPolicy
	}
	return c
}
