// Package tracker decides which job status updates are new lifecycle
// transitions worth reporting.
//
// # Contract
//
// The watch stream is level-triggered and replays state on every restart, so
// the same status is delivered many times. The Tracker keeps one record per
// job UID and turns that stream into at most one Started, one Completed and
// one Failed transition per job.
//
// Rules are evaluated in order and at most one fires per Observe call:
//  1. active and never seen            → running,   Started
//  2. succeeded > 0, not yet reported  → succeeded, Completed
//  3. failed > 0, not yet reported     → failed,    Failed
//
// Jobs that already existed when the monitor (re)started are Seeded as
// initialized. They never produce Started, but still report their terminal
// outcome. Completed and Failed only guard against themselves: a job that
// reports both (in either order) produces both transitions.
//
// The Tracker is not safe for concurrent use.
package tracker
