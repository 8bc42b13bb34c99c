package server

import (
	"log"
	"math"
	"strings"
	"unicode"

	"github.com/lab1702/marksman/game"
)

// Handler data structures

// ScanData is a scan of an opponent. Either X and Y give an absolute
// location, or Bearing and Distance are relative to the last status.
type ScanData struct {
	Name     string   `json:"name"`
	Tick     int64    `json:"tick"`
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Bearing  float64  `json:"bearing"`  // Degrees from the shooter's heading
	Distance float64  `json:"distance"` // Units from the shooter
	Heading  float64  `json:"heading"`
	Velocity float64  `json:"velocity"`
	Energy   float64  `json:"energy"`
}

// DeathData names an opponent that was destroyed
type DeathData struct {
	Name string `json:"name"`
}

// FriendlyData places or removes a teammate
type FriendlyData struct {
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Remove bool    `json:"remove,omitempty"`
}

// PredictData asks for an opponent's state at a tick
type PredictData struct {
	Name string `json:"name"`
	Tick int64  `json:"tick"`
}

// SolveData asks for a firing solution. Without a tick the last status is used.
type SolveData struct {
	Name string `json:"name"`
	Tick *int64 `json:"tick,omitempty"`
}

// SelectData asks for the best target. Without a tick the last status is used.
type SelectData struct {
	Tick *int64 `json:"tick,omitempty"`
}

// Reply data structures

// PredictionReply answers a predict request
type PredictionReply struct {
	Name     string         `json:"name"`
	Tick     int64          `json:"tick"`
	Found    bool           `json:"found"`
	Location *game.Location `json:"location,omitempty"`
	Heading  *float64       `json:"heading,omitempty"`
	Pattern  string         `json:"pattern"`
}

// SolutionReply answers a solve request
type SolutionReply struct {
	Name     string          `json:"name"`
	Found    bool            `json:"found"`
	Solution *FiringSolution `json:"solution,omitempty"`
}

// TargetReply answers a select request
type TargetReply struct {
	Name  string `json:"name"`
	Found bool   `json:"found"`
}

// AckReply confirms a state change
type AckReply struct {
	Type     string `json:"type"`
	Accepted bool   `json:"accepted"`
}

// ErrorReply reports a rejected message
type ErrorReply struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Utility functions

// sanitizeName trims whitespace and drops control characters
func sanitizeName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(name))

	// Limit name length using runes to avoid splitting multi-byte characters
	const maxNameLength = 64
	runes := []rune(cleaned)
	if len(runes) > maxNameLength {
		cleaned = string(runes[:maxNameLength])
	}
	return cleaned
}

// validNumber rejects NaN and infinities
func validNumber(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// sendMessage queues a message without blocking the read pump
func (c *Client) sendMessage(msgType string, data interface{}) {
	select {
	case c.send <- ServerMessage{Type: msgType, Data: data}:
	default:
		// Client send channel is full, skip this message
		log.Printf("Warning: session %s send buffer full, dropping %s", c.ID, msgType)
	}
}

func (c *Client) sendError(requestType, message string) {
	c.sendMessage(MsgTypeError, ErrorReply{Type: requestType, Message: message})
}

func (c *Client) sendAck(requestType string, accepted bool) {
	c.sendMessage(MsgTypeAck, AckReply{Type: requestType, Accepted: accepted})
}
