package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	"k8s.io/client-go/kubernetes"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	"github.com/kimiroo/k3s-upgrade-monitor/internal/config"
	"github.com/kimiroo/k3s-upgrade-monitor/internal/monitor"
	"github.com/kimiroo/k3s-upgrade-monitor/internal/nodeversion"
	"github.com/kimiroo/k3s-upgrade-monitor/internal/notifier"
	"github.com/kimiroo/k3s-upgrade-monitor/internal/tracker"
)

var scheme = runtime.NewScheme()

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	level, _ := cfg.ZapLevel()
	logConfig := zap.NewProductionConfig()
	logConfig.Level = zap.NewAtomicLevelAt(level)
	logConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := logConfig.Build()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()
	ctrl.SetLogger(zapr.NewLogger(logger))

	logger.Info("Starting K3s upgrade monitor",
		zap.String("version", "dev"),
		zap.String("namespace", cfg.WatchNamespace),
		zap.String("job_prefix", cfg.JobNamePrefix),
		zap.Bool("notifications", cfg.NotificationsEnabled()),
		zap.String("ntfy_url", notifier.RedactURL(cfg.NtfyURL)),
	)

	restConfig, err := ctrl.GetConfig()
	if err != nil {
		logger.Fatal("Unable to load cluster config", zap.Error(err))
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		logger.Fatal("Failed to create clientset", zap.Error(err))
	}

	// Fail fast if the API server cannot be reached at all. Later outages
	// are handled by the monitor's restart loop.
	serverVersion, err := clientset.Discovery().ServerVersion()
	if err != nil {
		logger.Fatal("Unable to reach cluster API", zap.Error(err))
	}
	logger.Info("Connected to cluster", zap.String("server_version", serverVersion.GitVersion))

	mgr, err := ctrl.NewManager(restConfig, ctrl.Options{
		Scheme:                 scheme,
		LeaderElection:         false,
		HealthProbeBindAddress: cfg.HealthProbeBindAddress,
		Metrics: metricsserver.Options{
			BindAddress: cfg.MetricsBindAddress,
		},
	})
	if err != nil {
		logger.Fatal("Unable to create manager", zap.Error(err))
	}

	sender, err := notifier.NewWebhookSender(logger, notifier.WebhookSenderConfig{
		URL:         cfg.NtfyURL,
		TitlePrefix: cfg.NtfyTitlePrefix,
		Timeout:     cfg.NtfyTimeout,
	})
	if err != nil {
		logger.Fatal("Failed to create notification sender", zap.Error(err))
	}

	opts := monitor.DefaultOptions()
	opts.Namespace = cfg.WatchNamespace
	opts.JobPrefix = cfg.JobNamePrefix
	opts.RestartDelay = cfg.RestartDelay
	opts.StartupNotification = cfg.StartupNotification && sender.Enabled()

	mon := monitor.New(
		clientset,
		tracker.New(),
		nodeversion.New(clientset, logger, cfg.NodeLookupTimeout),
		sender,
		logger,
		opts,
	)

	// Register health checks
	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		logger.Fatal("Unable to set up health check", zap.Error(err))
	}
	if err := mgr.AddReadyzCheck("seeded", func(*http.Request) error {
		if !mon.Ready() {
			return errors.New("initial job listing has not completed")
		}
		return nil
	}); err != nil {
		logger.Fatal("Unable to set up readiness check", zap.Error(err))
	}

	if err := mgr.Add(&runnableFunc{fn: mon.Start}); err != nil {
		logger.Fatal("Failed to add monitor to manager", zap.Error(err))
	}

	// Start manager (blocks until context is cancelled)
	ctx := ctrl.SetupSignalHandler()
	logger.Info("Starting manager")
	if err := mgr.Start(ctx); err != nil {
		logger.Fatal("Manager exited with error", zap.Error(err))
	}
}

// runnableFunc is a helper to convert a function to a controller-runtime Runnable.
type runnableFunc struct {
	fn func(context.Context) error
}

func (r *runnableFunc) Start(ctx context.Context) error {
	return r.fn(ctx)
}

// NeedLeaderElection reports false: the monitor never writes to the cluster.
func (r *runnableFunc) NeedLeaderElection() bool {
	return false
}
