package server

import (
	"encoding/json"
	"log"

	"github.com/lab1702/marksman/game"
)

// handleScan records a scan of an opponent
func (c *Client) handleScan(data json.RawMessage) {
	var scan ScanData
	if err := json.Unmarshal(data, &scan); err != nil {
		log.Printf("Error unmarshaling scan data: %v", err)
		c.sendError(MsgTypeScan, "invalid scan")
		return
	}

	name := sanitizeName(scan.Name)
	if name == "" {
		c.sendError(MsgTypeScan, "scan needs an opponent name")
		return
	}

	var loc game.Location
	switch {
	case scan.X != nil && scan.Y != nil:
		loc = game.Location{X: *scan.X, Y: *scan.Y}
	case scan.X != nil || scan.Y != nil:
		c.sendError(MsgTypeScan, "scan needs both x and y")
		return
	default:
		shooter, _, ok := c.engine.Shooter()
		if !ok {
			c.sendError(MsgTypeScan, "relative scan before any status")
			return
		}
		loc = game.ScanLocation(shooter.Location, shooter.Heading, scan.Bearing, scan.Distance)
	}

	if !loc.IsFinite() || !validNumber(scan.Heading, scan.Velocity, scan.Energy) {
		c.sendError(MsgTypeScan, "scan values must be finite")
		return
	}

	accepted := c.engine.Observe(Observation{
		Name: name,
		Ping: game.Ping{
			Tick:     scan.Tick,
			Location: loc,
			Heading:  game.NormalizeHeading(scan.Heading),
			Velocity: scan.Velocity,
			Energy:   scan.Energy,
		},
	})
	c.sendAck(MsgTypeScan, accepted)
}

// handleStatus records the shooter's own state
func (c *Client) handleStatus(data json.RawMessage) {
	var status ShooterStatus
	if err := json.Unmarshal(data, &status); err != nil {
		log.Printf("Error unmarshaling status data: %v", err)
		c.sendError(MsgTypeStatus, "invalid status")
		return
	}

	if !status.Location.IsFinite() || !validNumber(status.Heading, status.Velocity, status.GunHeading) {
		c.sendError(MsgTypeStatus, "status values must be finite")
		return
	}

	c.engine.UpdateShooter(status)
	c.sendAck(MsgTypeStatus, true)
}

// handleDeath drops a destroyed opponent
func (c *Client) handleDeath(data json.RawMessage) {
	var death DeathData
	if err := json.Unmarshal(data, &death); err != nil {
		log.Printf("Error unmarshaling death data: %v", err)
		c.sendError(MsgTypeDeath, "invalid death")
		return
	}

	name := sanitizeName(death.Name)
	removed := c.engine.RemoveOpponent(name)
	if !removed {
		// A dead teammate no longer blocks the line of fire
		c.engine.RemoveFriendly(name)
	}
	c.sendAck(MsgTypeDeath, removed)
}

// handleFriendly places or removes a teammate
func (c *Client) handleFriendly(data json.RawMessage) {
	var friendly FriendlyData
	if err := json.Unmarshal(data, &friendly); err != nil {
		log.Printf("Error unmarshaling friendly data: %v", err)
		c.sendError(MsgTypeFriendly, "invalid friendly")
		return
	}

	name := sanitizeName(friendly.Name)
	if name == "" {
		c.sendError(MsgTypeFriendly, "friendly needs a name")
		return
	}

	if friendly.Remove {
		c.engine.RemoveFriendly(name)
		c.sendAck(MsgTypeFriendly, true)
		return
	}

	if !validNumber(friendly.X, friendly.Y) {
		c.sendError(MsgTypeFriendly, "friendly location must be finite")
		return
	}
	c.engine.SetFriendly(name, game.Location{X: friendly.X, Y: friendly.Y})
	c.sendAck(MsgTypeFriendly, true)
}

// handlePredict answers with an opponent's predicted location and heading
func (c *Client) handlePredict(data json.RawMessage) {
	var req PredictData
	if err := json.Unmarshal(data, &req); err != nil {
		log.Printf("Error unmarshaling predict data: %v", err)
		c.sendError(MsgTypePredict, "invalid predict")
		return
	}

	name := sanitizeName(req.Name)
	reply := PredictionReply{Name: name, Tick: req.Tick, Pattern: game.PatternNone.String()}

	loc, locOK := c.engine.PredictLocation(name, req.Tick)
	heading, headingOK := c.engine.PredictHeading(name, req.Tick)
	if locOK && headingOK {
		reply.Found = true
		reply.Location = &loc
		reply.Heading = &heading
	}
	if tracker, ok := c.engine.Tracker(name); ok {
		reply.Pattern = tracker.Kind().String()
	}

	c.sendMessage(MsgTypePrediction, reply)
}

// handleSolve answers with a firing solution against an opponent
func (c *Client) handleSolve(data json.RawMessage) {
	var req SolveData
	if err := json.Unmarshal(data, &req); err != nil {
		log.Printf("Error unmarshaling solve data: %v", err)
		c.sendError(MsgTypeSolve, "invalid solve")
		return
	}

	shooter, tick, ok := c.engine.Shooter()
	if !ok {
		c.sendError(MsgTypeSolve, "solve before any status")
		return
	}
	if req.Tick != nil {
		tick = *req.Tick
	}

	name := sanitizeName(req.Name)
	reply := SolutionReply{Name: name}
	if solution, ok := c.engine.SolveFiring(name, tick, shooter); ok {
		reply.Found = true
		reply.Solution = &solution

		c.mu.Lock()
		c.stats.Solutions++
		c.mu.Unlock()
	}
	c.sendMessage(MsgTypeSolution, reply)
}

// handleRank answers with every opponent in ranking order
func (c *Client) handleRank() {
	c.sendMessage(MsgTypeRanking, c.engine.RankTargets())
}

// handleSelect answers with the most wanted opponent in a clear line of fire
func (c *Client) handleSelect(data json.RawMessage) {
	var req SelectData
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			log.Printf("Error unmarshaling select data: %v", err)
			c.sendError(MsgTypeSelect, "invalid select")
			return
		}
	}
	_, tick, _ := c.engine.Shooter()
	if req.Tick != nil {
		tick = *req.Tick
	}

	name, found := c.engine.SelectTarget(tick)
	c.sendMessage(MsgTypeTarget, TargetReply{Name: name, Found: found})
}

// handleReset forgets everything the session has learned
func (c *Client) handleReset() {
	c.engine.Reset()
	c.sendAck(MsgTypeReset, true)
}
