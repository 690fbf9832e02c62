package analytics

import (
	"fmt"
	"strings"

	"InsiderPulse/internal/domain/models"

	"github.com/shopspring/decimal"
)

const headlineBuyerNames = 2

var two = decimal.NewFromInt(2)

// SignalDetector flags buying patterns on a single aggregate.
type SignalDetector struct {
	highVolume decimal.Decimal
}

func NewSignalDetector(cfg Config) *SignalDetector {
	return &SignalDetector{highVolume: cfg.withDefaults().HighVolumeThreshold}
}

// Detect evaluates the fixed thresholds. PURE_BUYING and DOMINANT_BUYING
// never fire together: dominance needs some sell volume.
func (d *SignalDetector) Detect(a *models.WindowAggregate) models.TickerSignalSet {
	set := models.TickerSignalSet{Signals: []models.Signal{}}
	if len(a.UniqueBuyers) >= 2 {
		set.Signals = append(set.Signals, models.SignalClusterBuying)
	}
	if a.BuyVolume.GreaterThan(d.highVolume) {
		set.Signals = append(set.Signals, models.SignalHighVolume)
	}
	if a.BuyCount > 0 && a.SellCount == 0 {
		set.Signals = append(set.Signals, models.SignalPureBuying)
	}
	if a.SellVolume.IsPositive() && a.BuyVolume.GreaterThan(a.SellVolume.Mul(two)) {
		set.Signals = append(set.Signals, models.SignalDominantBuying)
	}
	set.Headline = Headline(a)
	return set
}

// Headline renders a one-line summary of the buying. Empty without buyers.
func Headline(a *models.WindowAggregate) string {
	n := len(a.UniqueBuyers)
	if n == 0 {
		return ""
	}
	names := a.BuyerNames
	if len(names) > headlineBuyerNames {
		names = names[:headlineBuyerNames]
	}
	who := strings.Join(names, ", ")
	if rest := n - len(names); rest > 0 {
		who = fmt.Sprintf("%s and %d more", who, rest)
	}
	noun := "insiders"
	if n == 1 {
		noun = "insider"
	}
	company := a.CompanyName
	if company == "" {
		company = a.EntityID
	}
	amount := strings.TrimSpace(FormatThousands(a.BuyVolume) + " " + a.Currency)
	return fmt.Sprintf("%d %s (%s) bought %s shares for %s.", n, noun, who, company, amount)
}

// FormatThousands renders d rounded to whole units with comma separators.
func FormatThousands(d decimal.Decimal) string {
	s := d.Round(0).StringFixed(0)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
