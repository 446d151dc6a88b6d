package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/younsl/reapd/internal/models"
)

func TestResolveStopTime_TagTakesPriority(t *testing.T) {
	tagged := time.Date(2024, 10, 20, 8, 0, 0, 0, time.UTC)

	inst := models.Instance{
		InstanceID: "i-0abc",
		State:      models.StateStopped,
		Tags: map[string]string{
			AutoStopTimeTag: tagged.Format(time.RFC3339),
		},
		// Reason carries a different, older timestamp; it must be ignored.
		StateTransitionReason: "User initiated (2024-01-01 00:00:00 GMT)",
	}

	got, ok := ResolveStopTime(inst)
	require.True(t, ok)
	assert.True(t, got.Equal(tagged), "tag value must win over transition reason")
}

func TestResolveStopTime_TransitionReasonFallback(t *testing.T) {
	inst := models.Instance{
		InstanceID:            "i-0abc",
		State:                 models.StateStopped,
		Tags:                  map[string]string{},
		StateTransitionReason: "User initiated (2024-10-23 12:34:56 GMT)",
	}

	got, ok := ResolveStopTime(inst)
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2024, 10, 23, 12, 34, 56, 0, time.UTC)))
}

func TestResolveStopTime_MalformedTagFallsThrough(t *testing.T) {
	inst := models.Instance{
		InstanceID: "i-0abc",
		State:      models.StateStopped,
		Tags: map[string]string{
			AutoStopTimeTag: "not-a-timestamp",
		},
		StateTransitionReason: "User initiated (2024-10-23 12:34:56 GMT)",
	}

	got, ok := ResolveStopTime(inst)
	require.True(t, ok, "malformed tag should fall back to transition reason")
	assert.True(t, got.Equal(time.Date(2024, 10, 23, 12, 34, 56, 0, time.UTC)))
}

func TestResolveStopTime_Absent(t *testing.T) {
	cases := []struct {
		name   string
		reason string
	}{
		{"empty reason", ""},
		{"no parens", "User initiated shutdown"},
		{"unclosed paren", "User initiated (2024-10-23 12:34:56 GMT"},
		{"garbage inside parens", "Server.SpotInstanceTermination (capacity)"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inst := models.Instance{
				InstanceID:            "i-0abc",
				State:                 models.StateStopped,
				Tags:                  map[string]string{},
				StateTransitionReason: tc.reason,
			}

			_, ok := ResolveStopTime(inst)
			assert.False(t, ok)
		})
	}
}

func TestParseTransitionTime_FirstParenPair(t *testing.T) {
	got, ok := parseTransitionTime("User initiated (2024-10-23 12:34:56 GMT) (ignored)")
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2024, 10, 23, 12, 34, 56, 0, time.UTC)))
}
