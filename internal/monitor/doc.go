// Package monitor runs the watch loop that turns Job status changes in the
// upgrade namespace into push notifications.
//
// # Contract
//
// The Monitor cycles through two states until its context is cancelled:
//
//   - Seeding: list every Job, and Seed each one in the watched namespace
//     whose name carries the job prefix. No notifications are sent.
//   - Streaming: watch Jobs with no timeout. ADDED and MODIFIED events for
//     matching jobs are parsed into a node/plan target and observed by the
//     Tracker. New transitions are rendered with the node's current version
//     and handed to the Sender.
//
// When the stream fails (list/watch error, ERROR event) or closes, the
// Monitor sends a high-priority error notification, sleeps for a fixed
// delay and starts over at Seeding. The Tracker survives restarts, so jobs
// already known keep their state and only new jobs are seeded.
//
// Events are handled one at a time: the version lookup and HTTP delivery
// for event N finish before event N+1 is read. A panic while handling one
// event is recovered and logged.
package monitor
