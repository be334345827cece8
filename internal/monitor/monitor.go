package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	batchv1 "k8s.io/api/batch/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/kubernetes"

	"github.com/kimiroo/k3s-upgrade-monitor/internal/jobname"
	"github.com/kimiroo/k3s-upgrade-monitor/internal/notifier"
	"github.com/kimiroo/k3s-upgrade-monitor/internal/tracker"
	"github.com/kimiroo/k3s-upgrade-monitor/internal/types"
)

var (
	// ErrStreamClosed is returned when the API server closes the watch channel.
	ErrStreamClosed = errors.New("job watch stream closed")

	// ErrStreamFailed wraps list, watch and ERROR-event failures.
	ErrStreamFailed = errors.New("job watch stream failed")
)

// VersionLookup resolves a node's current software version.
type VersionLookup interface {
	Version(ctx context.Context, nodeName string) string
}

// Options configures the Monitor.
type Options struct {
	Namespace           string        // the single namespace monitored
	JobPrefix           string        // job name prefix
	RestartDelay        time.Duration // fixed wait before restarting the loop
	StartupNotification bool          // send "Monitor Started" once on Start

	// Now returns the wall-clock time printed in messages. Defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns the defaults used by the system-upgrade-controller.
func DefaultOptions() Options {
	return Options{
		Namespace:           "system-upgrade",
		JobPrefix:           "apply-",
		RestartDelay:        10 * time.Second,
		StartupNotification: true,
		Now:                 time.Now,
	}
}

// Monitor watches upgrade Jobs and reports their lifecycle transitions.
type Monitor struct {
	logger   *zap.Logger
	client   kubernetes.Interface
	tracker  *tracker.Tracker
	versions VersionLookup
	sender   notifier.Sender
	opts     Options
	seeded   atomic.Bool
}

// New creates a Monitor. The tracker is owned by the Monitor from here on.
func New(client kubernetes.Interface, tr *tracker.Tracker, versions VersionLookup, sender notifier.Sender, logger *zap.Logger, opts Options) *Monitor {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Monitor{
		logger:   logger.Named("monitor"),
		client:   client,
		tracker:  tr,
		versions: versions,
		sender:   sender,
		opts:     opts,
	}
}

// Ready reports whether the first seeding pass has completed.
func (m *Monitor) Ready() bool {
	return m.seeded.Load()
}

// Start runs the seed/stream loop. Blocks until ctx is cancelled, restarting
// after every stream failure.
func (m *Monitor) Start(ctx context.Context) error {
	m.logger.Info("Starting K3s upgrade monitor",
		zap.String("namespace", m.opts.Namespace),
		zap.String("job_prefix", m.opts.JobPrefix),
		zap.Duration("restart_delay", m.opts.RestartDelay),
	)

	if m.opts.StartupNotification {
		notifier.Send(ctx, m.sender, notifier.RenderMonitorStarted(m.opts.Namespace, m.opts.Now()))
	}

	for {
		err := m.run(ctx)
		if ctx.Err() != nil {
			m.logger.Info("Monitor stopped")
			return nil
		}

		reason := "failed"
		if errors.Is(err, ErrStreamClosed) {
			reason = "closed"
		}
		streamRestartsTotal.WithLabelValues(reason).Inc()
		m.logger.Error("Job watch ended, restarting",
			zap.String("reason", reason),
			zap.Duration("restart_delay", m.opts.RestartDelay),
			zap.Error(err),
		)
		notifier.Send(ctx, m.sender, notifier.RenderMonitorError(err, m.opts.RestartDelay))

		if !sleep(ctx, m.opts.RestartDelay) {
			m.logger.Info("Monitor stopped")
			return nil
		}
	}
}

// run performs one Seeding pass followed by Streaming until the stream ends.
func (m *Monitor) run(ctx context.Context) error {
	if err := m.seed(ctx); err != nil {
		return err
	}
	return m.stream(ctx)
}

// seed registers every existing matching job without notifying.
func (m *Monitor) seed(ctx context.Context) error {
	jobs, err := m.client.BatchV1().Jobs("").List(ctx, metav1.ListOptions{})
	if err != nil {
		return fmt.Errorf("%w: list jobs: %w", ErrStreamFailed, err)
	}

	added := 0
	for i := range jobs.Items {
		job := &jobs.Items[i]
		if !m.matches(job) {
			continue
		}
		if m.tracker.Seed(job.UID) {
			added++
		}
	}
	trackedJobs.Set(float64(m.tracker.Len()))
	m.seeded.Store(true)

	m.logger.Info("Seeded existing upgrade jobs",
		zap.Int("seeded", added),
		zap.Int("tracked", m.tracker.Len()),
	)
	return nil
}

// stream watches jobs until the channel closes, an ERROR event arrives or ctx
// is cancelled.
func (m *Monitor) stream(ctx context.Context) error {
	watcher, err := m.client.BatchV1().Jobs("").Watch(ctx, metav1.ListOptions{})
	if err != nil {
		return fmt.Errorf("%w: watch jobs: %w", ErrStreamFailed, err)
	}
	defer watcher.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.ResultChan():
			if !ok {
				return ErrStreamClosed
			}
			switch event.Type {
			case watch.Added, watch.Modified:
				m.handleEvent(ctx, event.Object)
			case watch.Error:
				return fmt.Errorf("%w: %w", ErrStreamFailed, apierrors.FromObject(event.Object))
			}
		}
	}
}

// handleEvent processes a single job event. Panics are recovered so one bad
// event cannot take down the watch.
func (m *Monitor) handleEvent(ctx context.Context, obj runtime.Object) {
	defer func() {
		if r := recover(); r != nil {
			eventHandlerPanicsTotal.Inc()
			m.logger.Error("Error handling job event", zap.Any("panic", r))
		}
	}()

	job, ok := obj.(*batchv1.Job)
	if !ok || !m.matches(job) {
		return
	}

	target, ok := jobname.Parse(job.Name)
	if !ok {
		return
	}

	tn := m.tracker.Observe(types.ObservationFromJob(job))
	trackedJobs.Set(float64(m.tracker.Len()))
	if tn == nil {
		return
	}
	transitionsTotal.WithLabelValues(string(tn.Kind)).Inc()

	version := m.versions.Version(ctx, target.Node)
	msg := notifier.RenderTransition(*tn, target, version, m.opts.Now())
	notifier.Send(ctx, m.sender, msg)

	m.logger.Info("Job "+strings.ToLower(string(tn.Kind)),
		zap.String("job", job.Name),
		zap.String("node", target.Node),
		zap.String("plan", target.Plan),
		zap.String("version", version),
	)
}

func (m *Monitor) matches(job *batchv1.Job) bool {
	return job.Namespace == m.opts.Namespace && strings.HasPrefix(job.Name, m.opts.JobPrefix)
}

// sleep waits for d or until ctx is cancelled. Returns false if cancelled.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
