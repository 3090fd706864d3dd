// Command module runs a Module node. PICKNPACK_MODULE_KIND selects which
// equipment kind this instance advertises upstream (thermoformer,
// robotcell, qas, ceiling, printing); defaults to the role table's
// configured symbolic ID when unset.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	cluelog "goa.design/clue/log"

	"github.com/maccradar/picknpack/internal/config"
	"github.com/maccradar/picknpack/internal/lifecycle"
	"github.com/maccradar/picknpack/internal/telemetry"
	"github.com/maccradar/picknpack/internal/wire"
	"github.com/maccradar/picknpack/roles/module"
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

	name := config.NodeName(os.Args, "module")
	timing := config.LoadTiming()
	kind := moduleKind(os.Getenv("PICKNPACK_MODULE_KIND"))

	logger := telemetry.NewClueLogger()
	metrics := telemetry.NewClueMetrics()
	tracer := telemetry.NewClueTracer()

	actor, err := module.New(name, kind, timing, logger, metrics, tracer)
	if err != nil {
		return fmt.Errorf("module %s: %w", name, err)
	}

	cluelog.Printf(ctx, "starting module %s (kind=%s)", name, kind)
	if err := actor.Run(ctx, lifecycle.Run); err != nil {
		return fmt.Errorf("module %s: %w", name, err)
	}
	return nil
}

// moduleKind maps a PICKNPACK_MODULE_KIND value to its symbolic ID. An
// unrecognized or empty value returns 0, which tells module.New to keep
// the role table's default.
func moduleKind(s string) wire.SymbolicID {
	switch strings.ToLower(s) {
	case "thermoformer":
		return wire.Thermoformer
	case "robotcell":
		return wire.RobotCell
	case "qas":
		return wire.QAS
	case "ceiling":
		return wire.Ceiling
	case "printing":
		return wire.Printing
	default:
		return 0
	}
}
