// Package notifier renders upgrade transition messages and delivers them to an
// ntfy-compatible push endpoint.
//
// # Contract
//
// The WebhookSender:
//  1. POSTs the message body as UTF-8 markdown to the configured URL
//  2. Carries the title ("<prefix> - <title>") and priority in headers
//  3. Logs and swallows transport errors and non-2xx responses
//  4. Logs and skips delivery entirely when no URL is configured
//
// Delivery is best-effort: there is no retry and no acknowledgment tracking.
// A failed delivery is indistinguishable from a missed transition.
//
// # Rendering
//
// Message bodies follow a fixed markdown layout per transition kind:
//
//	🚀 **Master Upgrade Started**
//	📍 **Node:** node-1
//	📊 **Current Version:** v1.30.4+k3s1
//	📋 **Plan:** k3s-master-plan
//	⏰ **Started:** 2026-03-14 09:26:53
//
// Failed transitions are sent at high priority and include a kubectl hint.
package notifier
