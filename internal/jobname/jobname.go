// Package jobname decodes the names the system-upgrade-controller gives to its
// upgrade Jobs.
//
// Jobs are named apply-<plan>-on-<node>-with-<hash>. The plan and node are
// recovered by splitting on "-" and locating the first bare "on" and "with"
// segments. A plan or node name that itself contains "on" or "with" as a
// whole segment cannot be told apart from the markers and mis-parses; the
// controller's naming contract gives no way to resolve that, so it is left
// as is.
package jobname

import (
	"strings"

	"github.com/kimiroo/k3s-upgrade-monitor/internal/types"
)

const (
	nodeMarker = "on"
	hashMarker = "with"
	minParts   = 4
)

// Parse extracts the node and plan from a job name. The second return value is
// false when the name does not have the expected shape.
func Parse(name string) (types.Target, bool) {
	parts := strings.Split(name, "-")
	if len(parts) < minParts {
		return types.Target{}, false
	}

	onIdx := indexOf(parts, nodeMarker)
	withIdx := indexOf(parts, hashMarker)
	if onIdx < 0 || withIdx < 0 || withIdx < onIdx {
		return types.Target{}, false
	}

	target := types.Target{
		Plan: strings.Join(parts[1:onIdx], "-"),
		Node: strings.Join(parts[onIdx+1:withIdx], "-"),
	}
	if target.Plan == "" || target.Node == "" {
		return types.Target{}, false
	}
	return target, true
}

func indexOf(parts []string, s string) int {
	for i, p := range parts {
		if p == s {
			return i
		}
	}
	return -1
}
