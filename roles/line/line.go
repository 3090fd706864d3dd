// Package line binds the generic Resource Lifecycle Engine to the Line
// role: one upstream dealer to its Plant, one downstream router accepting
// its required modules (QAS and Printing, per §6), required-peer gating
// left non-blocking per the Open Question decision recorded in DESIGN.md.
package line

import (
	"fmt"

	"github.com/maccradar/picknpack/internal/config"
	"github.com/maccradar/picknpack/internal/resource"
	"github.com/maccradar/picknpack/internal/telemetry"
	"github.com/maccradar/picknpack/internal/transport"
)

// New builds a Line Actor from the embedded role table.
func New(name string, timing config.Timing, log telemetry.Logger, metrics telemetry.Metrics, tracer telemetry.Tracer) (*resource.Actor, error) {
	table, err := config.LoadRoleTable()
	if err != nil {
		return nil, fmt.Errorf("line: load role table: %w", err)
	}
	role, ok := table["line"]
	if !ok {
		return nil, fmt.Errorf("line: role table has no \"line\" entry")
	}

	tr := transport.NewTCP()
	r := resource.New(name, role, timing, tr, tr, log, metrics, tracer)
	return resource.NewActor(r), nil
}
