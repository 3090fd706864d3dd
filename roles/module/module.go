// Package module binds the generic Resource Lifecycle Engine to the
// Module role. A Module is a stand-in for any of the mid-tier equipment
// kinds named in §6's symbolic-ID table (Thermoformer, RobotCell, QAS,
// Ceiling, Printing): the endpoint shape is identical across all of them,
// so the role table carries one generic binding and the deployment picks
// the concrete symbolic ID it advertises upstream.
package module

import (
	"fmt"

	"github.com/maccradar/picknpack/internal/config"
	"github.com/maccradar/picknpack/internal/resource"
	"github.com/maccradar/picknpack/internal/telemetry"
	"github.com/maccradar/picknpack/internal/transport"
	"github.com/maccradar/picknpack/internal/wire"
)

// New builds a Module Actor from the embedded role table. When symbolicID
// is non-zero it overrides the role table's default, letting one binary
// serve as whichever equipment kind the deployment names (Thermoformer,
// RobotCell, QAS, Ceiling, or Printing).
func New(name string, symbolicID wire.SymbolicID, timing config.Timing, log telemetry.Logger, metrics telemetry.Metrics, tracer telemetry.Tracer) (*resource.Actor, error) {
	table, err := config.LoadRoleTable()
	if err != nil {
		return nil, fmt.Errorf("module: load role table: %w", err)
	}
	role, ok := table["module"]
	if !ok {
		return nil, fmt.Errorf("module: role table has no \"module\" entry")
	}
	if symbolicID != 0 {
		role.SymbolicID = symbolicID
	}

	tr := transport.NewTCP()
	r := resource.New(name, role, timing, tr, tr, log, metrics, tracer)
	return resource.NewActor(r), nil
}
