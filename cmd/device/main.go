// Command device runs a Device node: a leaf that only dials its upstream
// module and polls a single socket (§4.D, §6).
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	cluelog "goa.design/clue/log"

	"github.com/maccradar/picknpack/internal/config"
	"github.com/maccradar/picknpack/internal/lifecycle"
	"github.com/maccradar/picknpack/internal/telemetry"
	"github.com/maccradar/picknpack/roles/device"
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

	name := config.NodeName(os.Args, "device")
	timing := config.LoadTiming()

	logger := telemetry.NewClueLogger()
	metrics := telemetry.NewClueMetrics()
	tracer := telemetry.NewClueTracer()

	actor, err := device.New(name, timing, logger, metrics, tracer)
	if err != nil {
		return fmt.Errorf("device %s: %w", name, err)
	}

	cluelog.Printf(ctx, "starting device %s", name)
	if err := actor.Run(ctx, lifecycle.Run); err != nil {
		return fmt.Errorf("device %s: %w", name, err)
	}
	return nil
}
