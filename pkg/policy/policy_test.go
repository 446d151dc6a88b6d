package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/younsl/reapd/internal/models"
)

var now = time.Date(2024, 10, 26, 12, 0, 0, 0, time.UTC)

func runningInstance() models.Instance {
	return models.Instance{
		InstanceID: "i-running",
		State:      models.StateRunning,
		Tags:       map[string]string{"Provisioner": "Terraform via Semaphore"},
	}
}

func stoppedInstance(stoppedAt time.Time) models.Instance {
	return models.Instance{
		InstanceID: "i-stopped",
		State:      models.StateStopped,
		Tags: map[string]string{
			AutoStopTimeTag: stoppedAt.Format(time.RFC3339),
		},
	}
}

func TestDecide_Running(t *testing.T) {
	engine := NewEngine(1.0, 2)

	t.Run("idle instance is stopped", func(t *testing.T) {
		d := engine.Decide(runningInstance(), models.Utilization{AverageCPU: 0.2, Present: true}, now)
		assert.Equal(t, models.ActionStop, d.Action)
	})

	t.Run("no datapoints counts as idle", func(t *testing.T) {
		d := engine.Decide(runningInstance(), models.Utilization{Present: false}, now)
		assert.Equal(t, models.ActionStop, d.Action)
	})

	t.Run("utilization at threshold is kept running", func(t *testing.T) {
		// Strict less-than: exactly 1.0 against a 1.0 threshold is busy.
		d := engine.Decide(runningInstance(), models.Utilization{AverageCPU: 1.0, Present: true}, now)
		assert.Equal(t, models.ActionNone, d.Action)
	})

	t.Run("busy instance is kept running", func(t *testing.T) {
		d := engine.Decide(runningInstance(), models.Utilization{AverageCPU: 42.5, Present: true}, now)
		assert.Equal(t, models.ActionNone, d.Action)
	})
}

func TestDecide_Stopped(t *testing.T) {
	engine := NewEngine(1.0, 2)

	t.Run("past grace period is terminated", func(t *testing.T) {
		d := engine.Decide(stoppedInstance(now.AddDate(0, 0, -3)), models.Utilization{}, now)
		assert.Equal(t, models.ActionTerminate, d.Action)
		assert.Equal(t, 3, d.ElapsedDays)
	})

	t.Run("exactly at grace period is terminated", func(t *testing.T) {
		d := engine.Decide(stoppedInstance(now.AddDate(0, 0, -2)), models.Utilization{}, now)
		assert.Equal(t, models.ActionTerminate, d.Action)
	})

	t.Run("one hour short of grace period is kept", func(t *testing.T) {
		d := engine.Decide(stoppedInstance(now.Add(-47*time.Hour)), models.Utilization{}, now)
		assert.Equal(t, models.ActionNone, d.Action)
		assert.Equal(t, 1, d.ElapsedDays)
	})

	t.Run("within grace period is kept", func(t *testing.T) {
		d := engine.Decide(stoppedInstance(now.AddDate(0, 0, -1)), models.Utilization{}, now)
		assert.Equal(t, models.ActionNone, d.Action)
	})

	t.Run("unresolvable stop time is left alone", func(t *testing.T) {
		inst := models.Instance{
			InstanceID:            "i-unknown",
			State:                 models.StateStopped,
			Tags:                  map[string]string{},
			StateTransitionReason: "",
		}
		d := engine.Decide(inst, models.Utilization{}, now)
		assert.Equal(t, models.ActionNone, d.Action)
		assert.Nil(t, d.StopTime)
	})

	t.Run("transition reason alone drives termination", func(t *testing.T) {
		inst := models.Instance{
			InstanceID:            "i-manual",
			State:                 models.StateStopped,
			Tags:                  map[string]string{},
			StateTransitionReason: "User initiated (" + now.AddDate(0, 0, -5).Format("2006-01-02 15:04:05") + " GMT)",
		}
		d := engine.Decide(inst, models.Utilization{}, now)
		assert.Equal(t, models.ActionTerminate, d.Action)
	})
}

func TestDecide_OtherStatesAreIgnored(t *testing.T) {
	engine := NewEngine(1.0, 2)

	inst := models.Instance{
		InstanceID: "i-pending",
		State:      models.InstanceState("pending"),
	}
	d := engine.Decide(inst, models.Utilization{}, now)
	assert.Equal(t, models.ActionNone, d.Action)
}
