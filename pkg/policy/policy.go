package policy

import (
	"time"

	"github.com/younsl/reapd/internal/models"
)

// Engine decides which lifecycle transition applies to an instance.
// It is a pure function over its inputs: all provider mutation happens
// in the executor, and no decision depends on any other instance.
type Engine struct {
	cpuThresholdPercent float64
	deleteAfterDays     int
}

// NewEngine creates a policy engine with the given thresholds.
func NewEngine(cpuThresholdPercent float64, deleteAfterDays int) *Engine {
	return &Engine{
		cpuThresholdPercent: cpuThresholdPercent,
		deleteAfterDays:     deleteAfterDays,
	}
}

// Decide returns the action for a single instance.
//
// Running instances are stopped when their average CPU over the lookback
// window is strictly below the threshold. Missing datapoints count as
// zero: an instance CloudWatch knows nothing about is treated as idle.
// This is a single-sample decision with no memory of prior runs.
//
// Stopped instances are terminated once they have been stopped for at
// least deleteAfterDays whole days. If no stop time can be resolved the
// instance is left alone indefinitely.
func (e *Engine) Decide(inst models.Instance, util models.Utilization, now time.Time) models.Decision {
	decision := models.Decision{
		Instance:    inst,
		Action:      models.ActionNone,
		Utilization: util,
	}

	switch inst.State {
	case models.StateRunning:
		avg := 0.0
		if util.Present {
			avg = util.AverageCPU
		}
		if avg < e.cpuThresholdPercent {
			decision.Action = models.ActionStop
		}

	case models.StateStopped:
		stopTime, ok := ResolveStopTime(inst)
		if !ok {
			return decision
		}
		decision.StopTime = &stopTime
		decision.ElapsedDays = elapsedWholeDays(stopTime, now)
		if decision.ElapsedDays >= e.deleteAfterDays {
			decision.Action = models.ActionTerminate
		}
	}

	// Any other state is policy-irrelevant and falls through as none.
	return decision
}

// elapsedWholeDays truncates to whole days; partial days do not count.
func elapsedWholeDays(since, now time.Time) int {
	if now.Before(since) {
		return 0
	}
	return int(now.Sub(since).Hours() / 24)
}
