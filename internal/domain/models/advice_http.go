package models

// Requests for advisory HTTP endpoints. Defined in domain for consistency and reuse.

type AdviseRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required"`
	N        int    `query:"n" json:"n" default:"240" validate:"gte=1,lte=5000"`
	TF       string `query:"tf" json:"tf" default:"1m" validate:"oneof=1s 1m 5m 1d"`
	Industry string `query:"industry" json:"industry" validate:"omitempty,max=64"`
}

type WavesRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"240" validate:"gte=1,lte=5000"`
	TF     string `query:"tf" json:"tf" default:"1m" validate:"oneof=1s 1m 5m 1d"`
	Window int    `query:"window" json:"window" default:"3" validate:"gte=1,lte=20"`
}

type PivotsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"240" validate:"gte=1,lte=5000"`
	TF     string `query:"tf" json:"tf" default:"1m" validate:"oneof=1s 1m 5m 1d"`
	Window int    `query:"window" json:"window" default:"3" validate:"gte=1,lte=20"`
}

type VolatilityRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"240" validate:"gte=1,lte=5000"`
	TF     string `query:"tf" json:"tf" default:"1m" validate:"oneof=1s 1m 5m 1d"`
	Period int    `query:"period" json:"period" default:"14" validate:"gte=2,lte=200"`
}

// AdviseBatchRequest is the payload of a queued batch advisory job.
type AdviseBatchRequest struct {
	Symbols  []string `json:"symbols" validate:"required,min=1,max=100,dive,required"`
	N        int      `json:"n" default:"240" validate:"gte=1,lte=5000"`
	TF       string   `json:"tf" default:"1m" validate:"oneof=1s 1m 5m 1d"`
	Industry string   `json:"industry" validate:"omitempty,max=64"`
}
