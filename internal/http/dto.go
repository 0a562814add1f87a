// Package httpapi provides HTTP handlers and data transfer objects for the listmatch API.
package httpapi

import "github.com/dsjohal14/listmatch/internal/libs/jobs"

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	RunCount int    `json:"run_count"`
}

// MatchRequest carries both catalogs as newline-delimited JSON text
type MatchRequest struct {
	Products string `json:"products"`
	Listings string `json:"listings"`
}

// RunsResponse lists known runs, oldest first
type RunsResponse struct {
	Runs  []jobs.Job `json:"runs"`
	Count int        `json:"count"`
}

// ErrorResponse represents API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
