// Package device binds the generic Resource Lifecycle Engine to the
// Device role: upstream-only leaf nodes that poll a single dealer socket
// and never bind a router (§4.D, §6).
package device

import (
	"fmt"

	"github.com/maccradar/picknpack/internal/config"
	"github.com/maccradar/picknpack/internal/resource"
	"github.com/maccradar/picknpack/internal/telemetry"
	"github.com/maccradar/picknpack/internal/transport"
)

// New builds a Device Actor from the embedded role table.
func New(name string, timing config.Timing, log telemetry.Logger, metrics telemetry.Metrics, tracer telemetry.Tracer) (*resource.Actor, error) {
	table, err := config.LoadRoleTable()
	if err != nil {
		return nil, fmt.Errorf("device: load role table: %w", err)
	}
	role, ok := table["device"]
	if !ok {
		return nil, fmt.Errorf("device: role table has no \"device\" entry")
	}

	tr := transport.NewTCP()
	r := resource.New(name, role, timing, tr, tr, log, metrics, tracer)
	return resource.NewActor(r), nil
}
