package tracker

import (
	"time"

	k8stypes "k8s.io/apimachinery/pkg/types"

	"github.com/kimiroo/k3s-upgrade-monitor/internal/types"
)

// record is the per-job state. reported tracks which transitions have
// already been emitted so each kind fires at most once.
type record struct {
	phase    types.Phase
	reported map[types.TransitionKind]bool
}

// Tracker owns the job UID → lifecycle record map.
type Tracker struct {
	jobs map[k8stypes.UID]*record
}

// New creates an empty Tracker.
func New() *Tracker {
	return &Tracker{jobs: make(map[k8stypes.UID]*record)}
}

// Seed registers a pre-existing job as initialized. Jobs already known keep
// their current state. Returns true if the job was newly registered.
func (t *Tracker) Seed(uid k8stypes.UID) bool {
	if _, exists := t.jobs[uid]; exists {
		return false
	}
	t.jobs[uid] = &record{phase: types.PhaseInitialized}
	return true
}

// Phase returns the recorded phase for a job, or PhaseUnseen.
func (t *Tracker) Phase(uid k8stypes.UID) types.Phase {
	if r, ok := t.jobs[uid]; ok {
		return r.phase
	}
	return types.PhaseUnseen
}

// Len returns the number of tracked jobs.
func (t *Tracker) Len() int {
	return len(t.jobs)
}

// Observe records a status update and returns the transition it represents,
// or nil if it is a duplicate or uninteresting update.
func (t *Tracker) Observe(obs types.Observation) *types.Transition {
	r := t.jobs[obs.UID]

	switch {
	case obs.IsActive && r == nil:
		t.jobs[obs.UID] = &record{
			phase:    types.PhaseRunning,
			reported: map[types.TransitionKind]bool{types.TransitionStarted: true},
		}
		return &types.Transition{Kind: types.TransitionStarted, Observation: obs}

	case obs.Succeeded > 0 && !r.hasReported(types.TransitionCompleted):
		t.mark(obs.UID, types.PhaseSucceeded, types.TransitionCompleted)
		return &types.Transition{
			Kind:        types.TransitionCompleted,
			Observation: obs,
			Duration:    duration(obs),
		}

	case obs.Failed > 0 && !r.hasReported(types.TransitionFailed):
		t.mark(obs.UID, types.PhaseFailed, types.TransitionFailed)
		return &types.Transition{Kind: types.TransitionFailed, Observation: obs}
	}

	return nil
}

func (t *Tracker) mark(uid k8stypes.UID, phase types.Phase, kind types.TransitionKind) {
	r, ok := t.jobs[uid]
	if !ok {
		r = &record{}
		t.jobs[uid] = r
	}
	if r.reported == nil {
		r.reported = make(map[types.TransitionKind]bool, 2)
	}
	r.phase = phase
	r.reported[kind] = true
}

func (r *record) hasReported(kind types.TransitionKind) bool {
	return r != nil && r.reported[kind]
}

// duration returns completion minus start truncated to whole seconds, or nil
// if either timestamp is missing.
func duration(obs types.Observation) *time.Duration {
	if obs.StartTime == nil || obs.CompletionTime == nil {
		return nil
	}
	d := obs.CompletionTime.Sub(*obs.StartTime).Truncate(time.Second)
	return &d
}
