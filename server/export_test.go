package server

import (
	"github.com/lab1702/marksman/game"
)

// Test helpers shared by the server tests

// newTestClient creates a client with its own engine and a buffered send
// channel and no connection.
func newTestClient(cfg EngineConfig) *Client {
	server := NewServer(cfg)
	return &Client{
		ID:     "test-session",
		server: server,
		send:   make(chan ServerMessage, 64),
		engine: NewEngine(cfg),
	}
}

// IsStale reports whether observations arrived since the last classification
func (e *Engine) IsStale() bool {
	return e.stale
}

// feed observes pings given oldest first
func feed(e *Engine, name string, pings ...game.Ping) {
	for _, p := range pings {
		e.Observe(Observation{Name: name, Ping: p})
	}
}

// parkedPings returns pings at a fixed location on consecutive ticks
func parkedPings(loc game.Location, energy float64, from, to int64) []game.Ping {
	var pings []game.Ping
	for tick := from; tick <= to; tick++ {
		pings = append(pings, game.Ping{Tick: tick, Location: loc, Heading: 0, Energy: energy})
	}
	return pings
}

// orbitPings drives clockwise around center, one ping per tick
func orbitPings(center game.Location, radius, velocity, energy float64, from, to int64) []game.Ping {
	step := game.Circle{Center: center, Radius: radius}.StepAngle(velocity)
	var pings []game.Ping
	for tick := from; tick <= to; tick++ {
		angle := step * float64(tick)
		pings = append(pings, game.Ping{
			Tick:     tick,
			Location: game.Project(center, angle, radius),
			Heading:  game.NormalizeHeading(angle + 90),
			Velocity: velocity,
			Energy:   energy,
		})
	}
	return pings
}

// shuttle backs up and down y=y0 between x0 and x0+60 at speed 4
func shuttle(x0, y0, energy float64) []game.Ping {
	var pings []game.Ping
	tick := int64(1)
	add := func(x, v float64) {
		pings = append(pings, game.Ping{Tick: tick, Location: game.Location{X: x, Y: y0}, Heading: 90, Velocity: v, Energy: energy})
		tick++
	}
	add(x0, 0)
	for x := x0 + 4; x <= x0+56; x += 4 {
		add(x, 4)
	}
	add(x0+60, 0)
	for x := x0 + 56; x >= x0+4; x -= 4 {
		add(x, -4)
	}
	add(x0, 0)
	add(x0+4, 4)
	return pings
}
