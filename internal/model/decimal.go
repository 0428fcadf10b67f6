package model

import "github.com/shopspring/decimal"

func init() {
	// The remote API expects money as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}
