// Package jobdata defines the structured payload that pipeline stages
// accumulate on a job. The envelope is stored as JSON on the queue record so
// a restarted daemon can resume from the last completed stage.
package jobdata
