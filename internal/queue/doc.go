// Package queue persists pipeline jobs in SQLite and exposes the status state
// machine the workflow manager drives. Each stage has a start status and a
// processing status; jobs move forward only through atomic claims, so a job is
// owned by exactly one stage worker at a time.
package queue
