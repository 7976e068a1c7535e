package network

import (
	"encoding/json"

	"github.com/gravitas-015/hexward/pkg/hex"
	"github.com/paulmach/orb"
)

// Message types - Client → Server
const (
	MsgTypeCell      = "cell"
	MsgTypeSet       = "set"
	MsgTypeRemove    = "remove"
	MsgTypeNeighbors = "neighbors"
	MsgTypeRange     = "range"
	MsgTypeRing      = "ring"
	MsgTypeLine      = "line"
	MsgTypePixel     = "pixel"
	MsgTypePing      = "ping"
)

// Message types - Server → Client
const (
	MsgTypeWelcome = "welcome"
	MsgTypeCells   = "cells"
	MsgTypePoint   = "point"
	MsgTypeRemoved = "removed"
	MsgTypeError   = "error"
	MsgTypePong    = "pong"
)

// Error codes carried in ErrorPayload
const (
	ErrCodeInvalidMessage    = "invalid_message"
	ErrCodeInvalidPayload    = "invalid_payload"
	ErrCodeUnknownType       = "unknown_message_type"
	ErrCodeInvalidCoordinate = "invalid_coordinate"
	ErrCodeOutOfBounds       = "out_of_bounds"
	ErrCodeAbsent            = "absent"
	ErrCodeRadiusTooLarge    = "radius_too_large"
	ErrCodeForbidden         = "forbidden"
	ErrCodeRateLimited       = "rate_limited"
)

// ClientMessage represents any message from client to server.
// ID is echoed back on the reply.
type ClientMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// ServerMessage represents any message from server to client
type ServerMessage struct {
	Type    string      `json:"type"`
	ID      string      `json:"id,omitempty"`
	Payload interface{} `json:"payload"`
}

// --- Client Message Payloads ---

// PointPayload addresses a single cell (cell, remove, neighbors)
type PointPayload struct {
	Point hex.Point `json:"point"`
}

// SetPayload stores a terrain value at a cell
type SetPayload struct {
	Point   hex.Point `json:"point"`
	Terrain string    `json:"terrain"`
}

// AreaPayload asks for cells around a center (range, ring)
type AreaPayload struct {
	Center hex.Point `json:"center"`
	Radius int       `json:"radius"`
}

// LinePayload asks for cells on a straight segment
type LinePayload struct {
	From hex.Point `json:"from"`
	To   hex.Point `json:"to"`
}

// PixelPayload asks which cell lies under a pixel
type PixelPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// --- Server Message Payloads ---

// WelcomePayload is sent to client after successful connection
type WelcomePayload struct {
	PlayerID     string  `json:"player_id"`
	Username     string  `json:"username"`
	ConnectionID string  `json:"connection_id"`
	CanRead      bool    `json:"can_read"`
	CanEdit      bool    `json:"can_edit"`
	Map          MapInfo `json:"map"`
}

// MapInfo describes the shared map's shape and layout
type MapInfo struct {
	Radius      int             `json:"radius"`
	Orientation hex.Orientation `json:"orientation"`
	CellSize    float64         `json:"cell_size"`
	Cells       int             `json:"cells"`
}

// Cell is one cell with the geometry a renderer needs
type Cell struct {
	Point   hex.Point    `json:"point"`
	Col     int          `json:"col"`
	Row     int          `json:"row"`
	Center  orb.Point    `json:"center"`
	Corners [6]orb.Point `json:"corners"`
	Terrain string       `json:"terrain"`
}

// CellsPayload carries cells in query order
type CellsPayload struct {
	Cells []Cell `json:"cells"`
}

// PointResultPayload answers a pixel query
type PointResultPayload struct {
	Point    hex.Point `json:"point"`
	InBounds bool      `json:"in_bounds"`
}

// ErrorPayload contains error information
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
