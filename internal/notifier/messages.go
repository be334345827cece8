package notifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kimiroo/k3s-upgrade-monitor/internal/types"
)

// TimestampFormat is the local wall-clock layout used in message bodies.
const TimestampFormat = "2006-01-02 15:04:05"

// Message is a rendered notification ready for a Sender.
type Message struct {
	Title    string
	Body     string
	Priority Priority
}

// RenderTransition builds the message for a job transition on target. version
// is the node's version at render time.
func RenderTransition(tn types.Transition, target types.Target, version string, now time.Time) Message {
	nodeType := target.NodeType()
	ts := now.Format(TimestampFormat)

	switch tn.Kind {
	case types.TransitionStarted:
		title := nodeType + " Upgrade Started"
		return Message{
			Title: title,
			Body: lines(
				"🚀 **"+title+"**",
				"📍 **Node:** "+target.Node,
				"📊 **Current Version:** "+version,
				"📋 **Plan:** "+target.Plan,
				"⏰ **Started:** "+ts,
			),
			Priority: PriorityDefault,
		}

	case types.TransitionCompleted:
		title := nodeType + " Upgrade Completed"
		body := []string{
			"✅ **" + title + "**",
			"📍 **Node:** " + target.Node,
			"🎉 **New Version:** " + version,
			"📋 **Plan:** " + target.Plan,
			"⏰ **Completed:** " + ts,
		}
		if tn.Duration != nil {
			body = append(body, fmt.Sprintf("⚡ **Duration:** %ds", int64(tn.Duration.Seconds())))
		}
		return Message{Title: title, Body: lines(body...), Priority: PriorityDefault}

	case types.TransitionFailed:
		title := nodeType + " Upgrade Failed"
		obs := tn.Observation
		return Message{
			Title: title,
			Body: lines(
				"❌ **"+title+"**",
				"📍 **Node:** "+target.Node,
				"📊 **Version:** "+version,
				"📋 **Plan:** "+target.Plan,
				"⏰ **Failed:** "+ts,
				fmt.Sprintf("🔍 **Action:** Check logs with `kubectl logs -n %s job/%s`", obs.Namespace, obs.Name),
			),
			Priority: PriorityHigh,
		}
	}

	return Message{
		Title:    nodeType + " Upgrade " + string(tn.Kind),
		Body:     fmt.Sprintf("Job %s/%s: %s", tn.Observation.Namespace, tn.Observation.Name, tn.Kind),
		Priority: PriorityDefault,
	}
}

// RenderMonitorStarted builds the one-shot startup message.
func RenderMonitorStarted(namespace string, now time.Time) Message {
	return Message{
		Title: "Monitor Started",
		Body: fmt.Sprintf("📡 K3s upgrade monitoring service started at %s (namespace `%s`)",
			now.Format(TimestampFormat), namespace),
		Priority: PriorityDefault,
	}
}

// RenderMonitorError builds the high-priority message sent when the watch
// loop fails and is about to restart.
func RenderMonitorError(err error, restartIn time.Duration) Message {
	reason := "unknown error"
	if err != nil {
		reason = strings.TrimSpace(err.Error())
	}
	return Message{
		Title: "Monitor Error",
		Body: fmt.Sprintf("⚠️ K3s upgrade monitor encountered an error: %s\nRestarting in %s.",
			reason, restartIn),
		Priority: PriorityHigh,
	}
}

// Send delivers a rendered message through s.
func Send(ctx context.Context, s Sender, m Message) {
	s.Notify(ctx, m.Title, m.Body, m.Priority)
}

func lines(parts ...string) string {
	return strings.Join(parts, "\n")
}
