package models

import (
	"fmt"
	"time"
)

// InstanceState is the coarse lifecycle state of an EC2 instance.
// Only running and stopped instances are eligible for cleanup; the
// EC2 adapter filters everything else out at the API level.
type InstanceState string

const (
	StateRunning InstanceState = "running"
	StateStopped InstanceState = "stopped"
)

// Instance represents one EC2 instance at scan time, decoupled from
// the SDK types. Built fresh from DescribeInstances on every run and
// never mutated locally.
type Instance struct {
	InstanceID            string
	Name                  string
	InstanceType          string
	Region                string
	State                 InstanceState
	Tags                  map[string]string
	StateTransitionReason string
	LaunchTime            time.Time
}

// Utilization is the averaged CPU utilization (percent) of an instance
// over the lookback window. Present is false when CloudWatch returned
// no datapoints; policy treats that the same as zero, but the two are
// kept distinguishable for reporting and tests.
type Utilization struct {
	AverageCPU float64
	Present    bool
}

// Action is the state transition chosen for an instance.
type Action int

const (
	ActionNone Action = iota
	ActionStop
	ActionTerminate
)

// String returns the action name for logs and tables.
func (a Action) String() string {
	switch a {
	case ActionStop:
		return "stop"
	case ActionTerminate:
		return "terminate"
	default:
		return "none"
	}
}

// Decision records the action chosen for a single instance together
// with the inputs that led to it, for reporting.
type Decision struct {
	Instance    Instance
	Action      Action
	Utilization Utilization
	StopTime    *time.Time
	ElapsedDays int
}

// RunSummary aggregates the actions taken by one cleanup invocation.
type RunSummary struct {
	Examined        int
	StoppedCount    int
	TerminatedCount int
}

// Add merges another summary into this one (used when aggregating
// across regions).
func (s *RunSummary) Add(other RunSummary) {
	s.Examined += other.Examined
	s.StoppedCount += other.StoppedCount
	s.TerminatedCount += other.TerminatedCount
}

// String renders the terminal summary line.
func (s RunSummary) String() string {
	return fmt.Sprintf("Cleanup completed. Stopped: %d, Terminated: %d", s.StoppedCount, s.TerminatedCount)
}
