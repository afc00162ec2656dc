// Package api defines the transport-neutral job lifecycle surface: submission
// validation, status snapshots, cancellation, and the DTOs shared by the HTTP
// server and the CLI.
package api
