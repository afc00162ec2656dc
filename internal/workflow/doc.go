// Package workflow orchestrates the clip pipeline. A Manager runs a worker
// pool per stage, claims jobs through the queue's status machine, applies
// the retry policy with exponential backoff, and keeps heartbeats fresh so a
// crashed worker's jobs are reclaimed.
package workflow
