// Package types contains common types used across the application
package types

import (
	"time"

	"github.com/okian/forest/internal/domain/flicker"
	"github.com/okian/forest/internal/domain/scene"
)

// EntryRequest is the body of POST /entries. Both fields are optional.
type EntryRequest struct {
	ID        string     `json:"id,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Entry is the wire shape of an entry reference. Rank is the zero-based
// newest-first position over every stored entry.
type Entry struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Href      string    `json:"href"`
	Rank      int       `json:"rank"`
}

// Ack acknowledges an ingest request.
type Ack struct {
	Status    string `json:"status"`
	ID        string `json:"id"`
	Duplicate bool   `json:"duplicate"`
}

// Scene is the composed scene returned by GET /scene.
type Scene = scene.Scene

// Frame carries live flicker offsets of mounted lights.
type Frame struct {
	Version uint64                    `json:"version"`
	Offsets map[string]flicker.Offset `json:"offsets"`
}

// ErrorResponse is the JSON body of every error.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
