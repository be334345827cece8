// Package testutil provides shared test helpers for the monitor packages.
// Import this in test files to avoid duplicating Job fixtures and builders.
package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	batchv1 "k8s.io/api/batch/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	k8stypes "k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/yaml"
)

// UpgradeNamespace is the namespace the system-upgrade-controller runs jobs in.
const UpgradeNamespace = "system-upgrade"

// LoadJobFixture reads a YAML Job manifest.
// Fails the test immediately if the file can't be read or parsed.
func LoadJobFixture(t *testing.T, path string) *batchv1.Job {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err, "failed to read fixture %s", path)
	job := &batchv1.Job{}
	require.NoError(t, yaml.Unmarshal(data, job), "failed to parse fixture %s", path)
	return job
}

// MakeJob creates a Job with no status in the given namespace.
func MakeJob(uid, ns, name string) *batchv1.Job {
	return &batchv1.Job{
		ObjectMeta: metav1.ObjectMeta{
			UID:       k8stypes.UID(uid),
			Name:      name,
			Namespace: ns,
		},
	}
}

// Active returns a copy of job with one active pod and a start time.
func Active(job *batchv1.Job, start time.Time) *batchv1.Job {
	j := job.DeepCopy()
	j.Status.Active = 1
	j.Status.StartTime = &metav1.Time{Time: start}
	return j
}

// Succeeded returns a copy of job that finished successfully at end.
// A zero start leaves StartTime unset.
func Succeeded(job *batchv1.Job, start, end time.Time) *batchv1.Job {
	j := job.DeepCopy()
	j.Status.Active = 0
	j.Status.Succeeded = 1
	if !start.IsZero() {
		j.Status.StartTime = &metav1.Time{Time: start}
	}
	j.Status.CompletionTime = &metav1.Time{Time: end}
	return j
}

// Failed returns a copy of job whose pods have failed.
func Failed(job *batchv1.Job) *batchv1.Job {
	j := job.DeepCopy()
	j.Status.Active = 0
	j.Status.Failed = 1
	return j
}
