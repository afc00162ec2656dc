// Package export implements the final stage: moving rendered clips to the
// output directory and recording the aggregate job result.
package export
