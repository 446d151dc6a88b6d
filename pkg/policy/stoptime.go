package policy

import (
	"strings"
	"time"

	"github.com/younsl/reapd/internal/models"
)

// AutoStopTimeTag is written on every instance this tool stops, holding
// the stop instant in RFC 3339 form. It is the authoritative stop-time
// source on later runs.
const AutoStopTimeTag = "AutoStopTime"

// transitionTimeLayout matches the timestamp EC2 embeds in
// StateTransitionReason, e.g. "User initiated (2024-10-23 12:34:56 GMT)".
const transitionTimeLayout = "2006-01-02 15:04:05 MST"

// ResolveStopTime recovers when a stopped instance was stopped.
//
// The AutoStopTime tag takes priority: it was written by us at stop time
// and is exact. Instances stopped outside this tool never got the tag,
// so the resolver falls back to scraping the timestamp EC2 records in
// StateTransitionReason. That field is free text and not contractually
// guaranteed, so any parse failure yields absent rather than an error;
// a malformed tag likewise falls through to the reason field instead of
// aborting the run.
func ResolveStopTime(inst models.Instance) (time.Time, bool) {
	if raw, ok := inst.Tags[AutoStopTimeTag]; ok {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t, true
		}
	}
	return parseTransitionTime(inst.StateTransitionReason)
}

// parseTransitionTime extracts the parenthesized timestamp from an EC2
// state transition reason string.
func parseTransitionTime(reason string) (time.Time, bool) {
	open := strings.Index(reason, "(")
	if open < 0 {
		return time.Time{}, false
	}
	end := strings.Index(reason[open+1:], ")")
	if end < 0 {
		return time.Time{}, false
	}

	dateStr := strings.TrimSpace(reason[open+1 : open+1+end])
	t, err := time.Parse(transitionTimeLayout, dateStr)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
