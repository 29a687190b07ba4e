package domain

import "context"

// MonthBucket is one month of shipment counts broken down by transport
// mode.
type MonthBucket struct {
	// Month is formatted YYYY-MM.
	Month  string           `json:"month"`
	Counts map[string]int64 `json:"counts"`
	Total  int64            `json:"total"`
}

// ChartData feeds the back-office dashboard chart.
type ChartData struct {
	Months     []MonthBucket `json:"months"`
	Transports []string      `json:"transports"`
	// Payments counts parcels per payment status.
	Payments map[string]int64 `json:"payments"`
	// InvoiceTotals sums final amounts per invoice status, formatted
	// with two decimal places.
	InvoiceTotals map[string]string `json:"invoice_totals"`
}

type Service interface {
	ChartData(ctx context.Context) (ChartData, error)
}
