package server

import (
	"log"

	"github.com/lab1702/marksman/game"
)

// Debug flags for various subsystems
var (
	DebugSolver     = false // Set to true to log every firing solution search
	DebugClassifier = false // Set to true to log pattern changes
)

// logSolverDecision logs firing solver outcomes when debugging is enabled
func logSolverDecision(target, decision string, tick int64, lead int64, reason string) {
	if DebugSolver {
		log.Printf("[SOLVER DEBUG] %s: %s - Tick:%d Lead:%d Reason:%s",
			target, decision, tick, lead, reason)
	}
}

// logClassification logs a pattern change for an opponent
func logClassification(target string, from, to game.Pattern) {
	if DebugClassifier && from.Kind() != to.Kind() {
		log.Printf("[CLASSIFIER DEBUG] %s: %s -> %s", target, from.Kind(), game.Describe(to))
	}
}
