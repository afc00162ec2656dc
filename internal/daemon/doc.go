// Package daemon runs the long-lived clipforge process: it owns the workflow
// manager, serves the HTTP API, enforces single-instance execution via a lock
// file, and evicts finished jobs on a retention schedule.
package daemon
