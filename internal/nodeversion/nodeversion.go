// Package nodeversion reads the kubelet version a node currently reports.
package nodeversion

import (
	"context"
	"time"

	"go.uber.org/zap"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// Unknown is returned whenever the version cannot be determined.
const Unknown = "unknown"

const defaultTimeout = 10 * time.Second

// Lookup resolves node versions against the cluster API. Every call performs
// a fresh read so the reported version reflects the node at notification time.
type Lookup struct {
	client  kubernetes.Interface
	logger  *zap.Logger
	timeout time.Duration
}

// New creates a Lookup. A zero timeout falls back to 10 seconds.
func New(client kubernetes.Interface, logger *zap.Logger, timeout time.Duration) *Lookup {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Lookup{
		client:  client,
		logger:  logger.Named("nodeversion"),
		timeout: timeout,
	}
}

// Version returns the node's kubelet version, or Unknown on any failure.
func (l *Lookup) Version(ctx context.Context, nodeName string) string {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	node, err := l.client.CoreV1().Nodes().Get(ctx, nodeName, metav1.GetOptions{})
	if err != nil {
		l.logger.Warn("Failed to read node version",
			zap.String("node", nodeName),
			zap.Error(err),
		)
		return Unknown
	}

	version := node.Status.NodeInfo.KubeletVersion
	if version == "" {
		return Unknown
	}
	return version
}
