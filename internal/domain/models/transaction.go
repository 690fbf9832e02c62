package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side of an insider transaction.
type Direction string

const (
	DirectionBuy   Direction = "BUY"
	DirectionSell  Direction = "SELL"
	DirectionOther Direction = "OTHER"
)

// ParseDirection normalizes raw direction strings ("buy", "P", "Sale", ...).
func ParseDirection(s string) Direction {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY", "B", "P", "PURCHASE":
		return DirectionBuy
	case "SELL", "S", "SALE":
		return DirectionSell
	default:
		return DirectionOther
	}
}

// excludedMethods are not open-market trades. Keys are lower case.
var excludedMethods = map[string]struct{}{
	"award_or_grant":                   {},
	"gift":                             {},
	"tax_withholding_or_exercise_cost": {},
	"option_exercise":                  {},
	"transfer":                         {},
	"award":                            {},
	"tax_withholding":                  {},
}

// IsExcludedMethod reports whether a transaction method never counts as a buy or sell.
func IsExcludedMethod(method string) bool {
	_, ok := excludedMethods[strings.ToLower(strings.TrimSpace(method))]
	return ok
}

// Transaction is one normalized insider trade. Read-only to the analytics core.
type Transaction struct {
	InsiderID         string          `json:"insiderId"`
	InsiderName       string          `json:"insiderName,omitempty"`
	EntityID          string          `json:"isin"`
	Ticker            string          `json:"ticker,omitempty"`
	CompanyName       string          `json:"companyName"`
	Jurisdiction      string          `json:"jurisdiction"`
	Source            string          `json:"source,omitempty"`
	Currency          string          `json:"currency"`
	Timestamp         time.Time       `json:"timestamp"`
	Direction         Direction       `json:"direction"`
	Amount            decimal.Decimal `json:"amount"`
	TransactionMethod string          `json:"transactionMethod,omitempty"`
}

// Class returns the effective direction: excluded methods are always OTHER.
func (t Transaction) Class() Direction {
	if IsExcludedMethod(t.TransactionMethod) {
		return DirectionOther
	}
	switch t.Direction {
	case DirectionBuy, DirectionSell:
		return t.Direction
	default:
		return ParseDirection(string(t.Direction))
	}
}

// Qualifies reports whether the transaction takes part in counts and volumes.
func (t Transaction) Qualifies() bool {
	c := t.Class()
	return c == DirectionBuy || c == DirectionSell
}

// Normalize canonicalizes identifiers and the direction of an ingested
// record: upper-case ISIN and jurisdiction, lower-case source, UTC time.
func (t Transaction) Normalize() Transaction {
	t.InsiderID = strings.TrimSpace(t.InsiderID)
	t.InsiderName = strings.TrimSpace(t.InsiderName)
	t.EntityID = strings.ToUpper(strings.TrimSpace(t.EntityID))
	t.Ticker = strings.ToUpper(strings.TrimSpace(t.Ticker))
	t.CompanyName = strings.TrimSpace(t.CompanyName)
	t.Jurisdiction = strings.ToUpper(strings.TrimSpace(t.Jurisdiction))
	t.Source = strings.ToLower(strings.TrimSpace(t.Source))
	t.Currency = strings.ToUpper(strings.TrimSpace(t.Currency))
	t.TransactionMethod = strings.TrimSpace(t.TransactionMethod)
	t.Direction = ParseDirection(string(t.Direction))
	if !t.Timestamp.IsZero() {
		t.Timestamp = t.Timestamp.UTC()
	}
	return t
}

// DisplayName is the insider name, falling back to the id.
func (t Transaction) DisplayName() string {
	if t.InsiderName != "" {
		return t.InsiderName
	}
	return t.InsiderID
}

// DedupKey identifies same-day transactions of one insider in one entity.
type DedupKey struct {
	InsiderID string
	EntityID  string
	Day       string // YYYY-MM-DD, UTC
}

// Key returns the dedup key. ok is false when the timestamp is missing.
func (t Transaction) Key() (DedupKey, bool) {
	if t.Timestamp.IsZero() {
		return DedupKey{}, false
	}
	return DedupKey{
		InsiderID: t.InsiderID,
		EntityID:  t.EntityID,
		Day:       t.Timestamp.UTC().Format(DayLayout),
	}, true
}

// DayLayout is the calendar-day format used across the analytics.
const DayLayout = "2006-01-02"
