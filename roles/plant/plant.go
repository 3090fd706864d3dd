// Package plant binds the generic Resource Lifecycle Engine to the Plant
// role: no upstream, two downstream routers (Downstream for subordinate
// Lines, External for the demo client), per §6's endpoint table.
package plant

import (
	"fmt"

	"github.com/maccradar/picknpack/internal/config"
	"github.com/maccradar/picknpack/internal/resource"
	"github.com/maccradar/picknpack/internal/telemetry"
	"github.com/maccradar/picknpack/internal/transport"
)

// New builds a Plant Actor from the embedded role table and the given
// timing/telemetry configuration. The caller is responsible for calling
// Actor.Run with a boot signal (normally lifecycle.Run).
func New(name string, timing config.Timing, log telemetry.Logger, metrics telemetry.Metrics, tracer telemetry.Tracer) (*resource.Actor, error) {
	table, err := config.LoadRoleTable()
	if err != nil {
		return nil, fmt.Errorf("plant: load role table: %w", err)
	}
	role, ok := table["plant"]
	if !ok {
		return nil, fmt.Errorf("plant: role table has no \"plant\" entry")
	}

	tr := transport.NewTCP()
	r := resource.New(name, role, timing, tr, tr, log, metrics, tracer)
	return resource.NewActor(r), nil
}
