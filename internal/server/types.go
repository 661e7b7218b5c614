// File: types.go
package server

import (
	"scratchCard/internal/card"
	"scratchCard/internal/session"
)

// StartResponse is returned by POST /api/scratch/start
type StartResponse struct {
	UUID   string `json:"uuid"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Radius int    `json:"radius"`
	Image  string `json:"image"` // Base64 PNG of the covered card
}

// StrokeRequest is the JSON body for POST /api/scratch/{id}/strokes
type StrokeRequest struct {
	Events []session.Event `json:"events"`
}

// StrokeResponse reports coverage after a batch of pointer events.
type StrokeResponse struct {
	Revealed  float64 `json:"revealed"`
	Won       bool    `json:"won"`
	WinSignal bool    `json:"winSignal"` // true only for the batch that crossed the threshold
}

// ClaimResponse is returned by POST /api/scratch/{id}/claim
type ClaimResponse struct {
	Prize card.Prize `json:"prize"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
