package workflow

import (
	"context"

	"clipforge/internal/stage"
)

// StageHealth reports the readiness of every configured stage handler.
func (m *Manager) StageHealth(ctx context.Context) []stage.Health {
	out := make([]stage.Health, 0, len(m.stages))
	for _, stg := range m.stages {
		if stg.handler == nil {
			out = append(out, stage.Unhealthy(stg.name, "handler not configured"))
			continue
		}
		out = append(out, stg.handler.HealthCheck(ctx))
	}
	return out
}
