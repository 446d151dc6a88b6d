package reaper

import (
	"context"
	"fmt"
	"time"

	"github.com/younsl/reapd/internal/config"
	"github.com/younsl/reapd/internal/models"
	"github.com/younsl/reapd/pkg/policy"
)

// InstanceSource lists the instances eligible for cleanup: those that
// carry the provisioning tag and are running or stopped.
type InstanceSource interface {
	ListTargetInstances(ctx context.Context) ([]models.Instance, error)
}

// UtilizationSource returns the averaged CPU utilization of an instance
// over a time window. An empty metric result is reported as absent, not
// as an error.
type UtilizationSource interface {
	AverageCPUUtilization(ctx context.Context, instanceID string, start, end time.Time) (models.Utilization, error)
}

// ActionExecutor applies state transitions against the provider. Each
// method is a single provider call with no retries.
type ActionExecutor interface {
	StopInstance(ctx context.Context, instanceID string) error
	TerminateInstance(ctx context.Context, instanceID string) error
	TagInstance(ctx context.Context, instanceID, key, value string) error
}

// Reaper runs one cleanup pass over a region's instances. Instances are
// processed sequentially; each decision is independent of every other.
type Reaper struct {
	instances InstanceSource
	metrics   UtilizationSource
	executor  ActionExecutor
	engine    *policy.Engine
	cfg       *config.Config

	// DryRun computes and reports decisions without mutating anything.
	DryRun bool

	// now is swapped out in tests.
	now func() time.Time
}

// New creates a Reaper wired to the given collaborators.
func New(cfg *config.Config, instances InstanceSource, metrics UtilizationSource, executor ActionExecutor) *Reaper {
	return &Reaper{
		instances: instances,
		metrics:   metrics,
		executor:  executor,
		engine:    policy.NewEngine(cfg.CPUThresholdPercent, cfg.DeleteAfterDays),
		cfg:       cfg,
		now:       time.Now,
	}
}

// Run performs a single cleanup pass and returns the summary together
// with the per-instance decisions for reporting.
//
// There is one failure boundary: any collaborator error aborts the whole
// run with no partial summary. Decisions already executed stay executed;
// the rest are simply re-evaluated on the next scheduled run.
func (r *Reaper) Run(ctx context.Context) (models.RunSummary, []models.Decision, error) {
	now := r.now()
	summary := models.RunSummary{}

	instances, err := r.instances.ListTargetInstances(ctx)
	if err != nil {
		return models.RunSummary{}, nil, fmt.Errorf("error listing target instances: %w", err)
	}

	fmt.Printf("Found %d instances with target tag\n", len(instances))

	decisions := make([]models.Decision, 0, len(instances))
	for _, inst := range instances {
		summary.Examined++

		util := models.Utilization{}
		if inst.State == models.StateRunning {
			start := now.AddDate(0, 0, -r.cfg.StopAfterDays)
			util, err = r.metrics.AverageCPUUtilization(ctx, inst.InstanceID, start, now)
			if err != nil {
				return models.RunSummary{}, nil, fmt.Errorf("error querying CPU utilization for %s: %w", inst.InstanceID, err)
			}
		}

		decision := r.engine.Decide(inst, util, now)
		decisions = append(decisions, decision)

		if err := r.execute(ctx, decision, now); err != nil {
			return models.RunSummary{}, nil, err
		}

		switch decision.Action {
		case models.ActionStop:
			summary.StoppedCount++
		case models.ActionTerminate:
			summary.TerminatedCount++
		}
	}

	return summary, decisions, nil
}

// execute applies a non-none decision. A stop is a compound action: the
// stop call goes out first, then the AutoStopTime tag write. If the tag
// write fails after a successful stop, the instance is left stopped
// without a tier-1 timestamp and the transition-reason fallback covers
// it on later runs.
func (r *Reaper) execute(ctx context.Context, decision models.Decision, now time.Time) error {
	if r.DryRun || decision.Action == models.ActionNone {
		return nil
	}

	id := decision.Instance.InstanceID
	switch decision.Action {
	case models.ActionStop:
		if err := r.executor.StopInstance(ctx, id); err != nil {
			return fmt.Errorf("error stopping instance %s: %w", id, err)
		}
		stopTime := now.UTC().Format(time.RFC3339)
		if err := r.executor.TagInstance(ctx, id, policy.AutoStopTimeTag, stopTime); err != nil {
			return fmt.Errorf("error tagging instance %s: %w", id, err)
		}
	case models.ActionTerminate:
		if err := r.executor.TerminateInstance(ctx, id); err != nil {
			return fmt.Errorf("error terminating instance %s: %w", id, err)
		}
	}
	return nil
}
