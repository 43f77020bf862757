package models

// Requests for the fund HTTP endpoints. Defined in domain for consistency and reuse.

type AnalysisRequest struct {
	Code       string `param:"code" query:"code" json:"code" validate:"required,max=32"`
	Start      string `query:"start" json:"start" validate:"omitempty,len=8,numeric"`
	End        string `query:"end" json:"end" validate:"omitempty,len=8,numeric"`
	Benchmark  string `query:"benchmark" json:"benchmark" validate:"omitempty,max=32"`
	Short      int    `query:"short" json:"short" default:"20" validate:"gte=2,lte=250,ltfield=Long"`
	Long       int    `query:"long" json:"long" default:"60" validate:"gte=3,lte=500"`
	RSI        int    `query:"rsi" json:"rsi" default:"14" validate:"gte=2,lte=100"`
	Indicators string `query:"indicators" json:"indicators"`
}

type ProfileRequest struct {
	Code string `param:"code" query:"code" json:"code" validate:"required,max=32"`
}
