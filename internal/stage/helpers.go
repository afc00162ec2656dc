package stage

import (
	"clipforge/internal/jobdata"
	"clipforge/internal/queue"
	"clipforge/internal/services"
)

// ParseEnvelope parses a job's accumulated data envelope. On failure it
// returns a services.ErrValidation suitable for stage Execute methods.
func ParseEnvelope(job *queue.Job) (jobdata.Envelope, error) {
	env, err := jobdata.Parse(job.DataJSON)
	if err != nil {
		return jobdata.Envelope{}, services.Wrap(
			services.ErrValidation, "stage", "parse job data",
			"job data envelope missing or invalid", err)
	}
	return env, nil
}

// SaveEnvelope merges a stage's output into the job's envelope and writes the
// result back onto the job record. Ownership violations surface as validation
// errors so they fail the stage instead of corrupting earlier output.
func SaveEnvelope(job *queue.Job, stageName string, patch jobdata.Envelope) error {
	env, err := ParseEnvelope(job)
	if err != nil {
		return err
	}
	if err := env.Merge(stageName, patch); err != nil {
		return services.Wrap(services.ErrValidation, stageName, "merge stage output", "stage output rejected", err)
	}
	encoded, err := env.Encode()
	if err != nil {
		return services.Wrap(services.ErrValidation, stageName, "encode job data", "could not serialize job data", err)
	}
	job.DataJSON = encoded
	return nil
}
