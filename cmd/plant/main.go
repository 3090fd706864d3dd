// Command plant runs the Plant node: the root of the resource tree, with
// no upstream and two downstream routers — one accepting subordinate
// Lines, one accepting the demo client (§6). The node name is argv[1]
// (default: "plant").
//
// Environment variables:
//
//	PICKNPACK_LIVENESS        - heartbeat miss budget before reconnect (default: 3)
//	PICKNPACK_HEARTBEAT_INTERVAL - heartbeat cadence (default: "1s")
//	PICKNPACK_RECONNECT_INITIAL - initial reconnect backoff (default: "1s")
//	PICKNPACK_RECONNECT_MAX   - reconnect backoff ceiling (default: "32s")
//	PICKNPACK_REDIS_URL       - federation Redis address; unset disables federation
//	PICKNPACK_DEBUG           - "1" enables debug-level logging
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	cluelog "goa.design/clue/log"

	"github.com/maccradar/picknpack/internal/config"
	"github.com/maccradar/picknpack/internal/federation"
	"github.com/maccradar/picknpack/internal/lifecycle"
	"github.com/maccradar/picknpack/internal/telemetry"
	"github.com/maccradar/picknpack/roles/plant"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	format := cluelog.FormatJSON
	if cluelog.IsTerminal() {
		format = cluelog.FormatTerminal
	}
	ctx = cluelog.Context(ctx, cluelog.WithFormat(format))
	if os.Getenv("PICKNPACK_DEBUG") == "1" {
		ctx = cluelog.Context(ctx, cluelog.WithDebug())
	}

	name := config.NodeName(os.Args, "plant")
	timing := config.LoadTiming()

	logger := telemetry.NewClueLogger()
	metrics := telemetry.NewClueMetrics()
	tracer := telemetry.NewClueTracer()

	actor, err := plant.New(name, timing, logger, metrics, tracer)
	if err != nil {
		return fmt.Errorf("plant %s: %w", name, err)
	}

	if fedCfg := config.LoadFederation(); os.Getenv("PICKNPACK_REDIS_URL") != "" {
		fed, err := federation.Connect(ctx, fedCfg, logger)
		if err != nil {
			return fmt.Errorf("plant %s: connect federation: %w", name, err)
		}
		defer fed.Close()

		r := actor.Resource
		if err := fed.StartPublishing(ctx, name, timing.HeartbeatInterval, func() federation.Snapshot {
			size := 0
			if r.Registry != nil {
				size = len(r.Registry.Peers())
			}
			return federation.Snapshot{
				PlantName:    name,
				SymbolicID:   r.SymbolicID,
				State:        r.CurrentState,
				RegistrySize: size,
				UpdatedAt:    time.Now(),
			}
		}); err != nil {
			return fmt.Errorf("plant %s: start federation publishing: %w", name, err)
		}

		// Every plant in the cluster calls StartAggregating; Pulse's
		// distributed ticker elects exactly one of them to actually log the
		// cross-plant totals, with failover if that one goes away.
		if err := fed.StartAggregating(ctx, timing.HeartbeatInterval); err != nil {
			return fmt.Errorf("plant %s: start federation aggregation: %w", name, err)
		}
	}

	cluelog.Printf(ctx, "starting plant %s", name)
	if err := actor.Run(ctx, lifecycle.Run); err != nil {
		return fmt.Errorf("plant %s: %w", name, err)
	}
	return nil
}
