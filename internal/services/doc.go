// Package services holds the shared error taxonomy and context plumbing used
// by the external-operation clients and the workflow manager. Stage failures
// are tagged with sentinel markers so the orchestrator can decide between
// retrying and failing a job outright.
package services
