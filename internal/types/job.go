package types

import (
	"strings"
	"time"

	batchv1 "k8s.io/api/batch/v1"
	"k8s.io/apimachinery/pkg/types"
)

// Phase is the last lifecycle phase recorded for a job identity.
type Phase string

const (
	PhaseUnseen      Phase = ""            // never observed
	PhaseInitialized Phase = "initialized" // existed when the monitor (re)started
	PhaseRunning     Phase = "running"
	PhaseSucceeded   Phase = "succeeded"
	PhaseFailed      Phase = "failed"
)

// TransitionKind identifies a reportable lifecycle change.
type TransitionKind string

const (
	TransitionStarted   TransitionKind = "Started"
	TransitionCompleted TransitionKind = "Completed"
	TransitionFailed    TransitionKind = "Failed"
)

// Observation is a snapshot of a job's identity and status counters at one
// point in the watch stream.
type Observation struct {
	UID       types.UID
	Namespace string
	Name      string

	IsActive  bool
	Succeeded int32
	Failed    int32

	StartTime      *time.Time
	CompletionTime *time.Time
}

// ObservationFromJob projects the fields the monitor cares about out of a Job.
func ObservationFromJob(job *batchv1.Job) Observation {
	obs := Observation{
		UID:       job.UID,
		Namespace: job.Namespace,
		Name:      job.Name,
		IsActive:  job.Status.Active > 0,
		Succeeded: job.Status.Succeeded,
		Failed:    job.Status.Failed,
	}
	if job.Status.StartTime != nil {
		t := job.Status.StartTime.Time
		obs.StartTime = &t
	}
	if job.Status.CompletionTime != nil {
		t := job.Status.CompletionTime.Time
		obs.CompletionTime = &t
	}
	return obs
}

// Target is the node and upgrade plan a job works on.
type Target struct {
	Node string
	Plan string
}

// NodeType classifies the target as "Master" or "Worker" from the plan name.
func (t Target) NodeType() string {
	if strings.Contains(t.Plan, "master") {
		return "Master"
	}
	return "Worker"
}

// Transition is emitted by the tracker when a job reaches a new reportable phase.
type Transition struct {
	Kind        TransitionKind
	Observation Observation

	// Duration is completion minus start, truncated to whole seconds. Only set
	// for Completed transitions where both timestamps are known.
	Duration *time.Duration
}
