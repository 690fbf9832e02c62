package models

// Requests for the HTTP endpoints. Bounds follow the public API contract.

type SentimentRequest struct {
	Days         int    `query:"days" json:"days" default:"90" validate:"gte=1,lte=730"`
	Jurisdiction string `query:"jurisdiction" json:"jurisdiction" validate:"omitempty,alpha,max=8"`
	AsOf         string `query:"asOf" json:"asOf" validate:"omitempty,datetime=2006-01-02"`
	Compact      bool   `query:"compact" json:"compact"`
}

type CurrentSentimentRequest struct {
	Jurisdiction string `query:"jurisdiction" json:"jurisdiction" validate:"omitempty,alpha,max=8"`
	AsOf         string `query:"asOf" json:"asOf" validate:"omitempty,datetime=2006-01-02"`
}

type BreadthRequest struct {
	Days         int    `query:"days" json:"days" default:"30" validate:"gte=1,lte=365"`
	Jurisdiction string `query:"jurisdiction" json:"jurisdiction" validate:"omitempty,alpha,max=8"`
	AsOf         string `query:"asOf" json:"asOf" validate:"omitempty,datetime=2006-01-02"`
}

type TopMoversRequest struct {
	Days            int    `query:"days" json:"days" default:"7" validate:"gte=1,lte=90"`
	Limit           int    `query:"limit" json:"limit" default:"20" validate:"gte=1,lte=100"`
	Jurisdiction    string `query:"jurisdiction" json:"jurisdiction" validate:"omitempty,alpha,max=8"`
	MinTransactions int    `query:"minTransactions" json:"minTransactions" default:"3" validate:"gte=1"`
	AsOf            string `query:"asOf" json:"asOf" validate:"omitempty,datetime=2006-01-02"`
}

type TrendsRequest struct {
	Jurisdiction string `query:"jurisdiction" json:"jurisdiction" validate:"omitempty,alpha,max=8"`
	AsOf         string `query:"asOf" json:"asOf" validate:"omitempty,datetime=2006-01-02"`
}

type TickerRequest struct {
	Days           int     `query:"days" json:"days" default:"30" validate:"gte=1,lte=365"`
	MinTrades      int     `query:"minTrades" json:"minTrades" default:"1" validate:"gte=1"`
	MinTotalAmount float64 `query:"minTotalAmount" json:"minTotalAmount" default:"10000" validate:"gte=0"`
	ISIN           string  `query:"isin" json:"isin" validate:"omitempty,max=512,isin_csv"`
	Source         string  `query:"source" json:"source" validate:"omitempty,oneof=sec bafin ser SEC BAFIN SER"`
	Limit          int     `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=500"`
	AsOf           string  `query:"asOf" json:"asOf" validate:"omitempty,datetime=2006-01-02"`
}

type TickerByISINRequest struct {
	ISIN           string  `param:"isin" json:"isin" validate:"required,isin"`
	Days           int     `query:"days" json:"days" default:"30" validate:"gte=1,lte=365"`
	MinTrades      int     `query:"minTrades" json:"minTrades" default:"1" validate:"gte=1"`
	MinTotalAmount float64 `query:"minTotalAmount" json:"minTotalAmount" default:"10000" validate:"gte=0"`
	Source         string  `query:"source" json:"source" validate:"omitempty,oneof=sec bafin ser SEC BAFIN SER"`
	Limit          int     `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=500"`
	AsOf           string  `query:"asOf" json:"asOf" validate:"omitempty,datetime=2006-01-02"`
}

type DashboardRequest struct {
	Jurisdiction string `query:"jurisdiction" json:"jurisdiction" validate:"omitempty,alpha,max=8"`
	AsOf         string `query:"asOf" json:"asOf" validate:"omitempty,datetime=2006-01-02"`
}
