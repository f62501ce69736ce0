// Command pwrsim is the CLI entry-point for the plant simulator core.
//
// Usage:
//
//	pwrsim presets                                    List built-in scenario presets
//	pwrsim run [flags] <preset>                       Run a scenario and print snapshots as JSON
//
// run flags:
//
//	--steps N        number of steps to advance (default 60)
//	--dt-hr F         step size in simulated hours (default 1/60, one minute)
//	--db PATH         record snapshots/events to a sqlite run log at PATH
//	--redis addr      publish events to Redis Pub/Sub at addr
//	--channel name    Redis channel to publish events on (default "pwrsim.events")
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/fourloop/pwrcore/internal/engine"
	"github.com/fourloop/pwrcore/internal/eventbus"
	"github.com/fourloop/pwrcore/internal/persistence"
	"github.com/fourloop/pwrcore/internal/plantconfig"
	"github.com/fourloop/pwrcore/internal/plantconst"
	"github.com/fourloop/pwrcore/internal/protocol"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "presets":
		cmdPresets(os.Args[2:])
	case "run":
		cmdRun(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  pwrsim presets                                        List built-in scenario presets")
	fmt.Fprintln(os.Stderr, "  pwrsim run [--steps N] [--dt-hr F] [--db path]")
	fmt.Fprintln(os.Stderr, "             [--redis addr] [--channel name] <preset>  Run a scenario")
}

// ---------------------------------------------------------------------------
// presets
// ---------------------------------------------------------------------------

func cmdPresets(args []string) {
	presets := plantconfig.BuiltinPresets()
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(names); err != nil {
		fmt.Fprintf(os.Stderr, "json encode: %v\n", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// run
// ---------------------------------------------------------------------------

func cmdRun(args []string) {
	steps := 60
	dtHr := 1.0 / 60.0
	dbPath := ""
	redisAddr := ""
	channel := "pwrsim.events"
	var presetName string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--steps":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "--steps requires a value")
				os.Exit(1)
			}
			n, err := strconv.Atoi(args[i])
			if err != nil {
				fmt.Fprintf(os.Stderr, "--steps: %v\n", err)
				os.Exit(1)
			}
			steps = n
		case "--dt-hr":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "--dt-hr requires a value")
				os.Exit(1)
			}
			f, err := strconv.ParseFloat(args[i], 64)
			if err != nil {
				fmt.Fprintf(os.Stderr, "--dt-hr: %v\n", err)
				os.Exit(1)
			}
			dtHr = f
		case "--db":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "--db requires a path")
				os.Exit(1)
			}
			dbPath = args[i]
		case "--redis":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "--redis requires an address")
				os.Exit(1)
			}
			redisAddr = args[i]
		case "--channel":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "--channel requires a name")
				os.Exit(1)
			}
			channel = args[i]
		default:
			presetName = args[i]
		}
	}

	if presetName == "" {
		fmt.Fprintln(os.Stderr, "run requires a preset name")
		os.Exit(1)
	}

	presets := plantconfig.BuiltinPresets()
	ic, ok := presets[presetName]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown preset %q (see pwrsim presets)\n", presetName)
		os.Exit(1)
	}

	var opts []engine.Option
	runID := uuid.NewString()
	var sink *eventbus.Sink

	if dbPath != "" {
		store, err := persistence.New(dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "opening run log: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		if err := store.CreateRun(runID, presetName); err != nil {
			fmt.Fprintf(os.Stderr, "recording run start: %v\n", err)
			os.Exit(1)
		}
		opts = append(opts, engine.WithPersistence(store, runID))
	}

	if redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		defer rdb.Close()
		source := protocol.Source{Service: "pwrsim", Instance: runID, Version: "1.0.0"}
		sink = eventbus.New(rdb, channel, source, log.New(os.Stderr, "pwrsim: ", log.LstdFlags))
		defer sink.Close()
		opts = append(opts, engine.WithEventSink(sink))
	}

	e := engine.New(plantconst.Default(), &ic, opts...)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	for i := 0; i < steps; i++ {
		res, err := e.Step(engine.Inputs{DtHr: dtHr})
		if err != nil {
			fmt.Fprintf(os.Stderr, "step %d: %v\n", i, err)
			os.Exit(1)
		}
		if err := enc.Encode(res.Snapshot); err != nil {
			fmt.Fprintf(os.Stderr, "json encode: %v\n", err)
			os.Exit(1)
		}
	}

	if sink.TransportDegraded() {
		fmt.Fprintln(os.Stderr, "pwrsim: event transport was degraded at end of run; some events may not have reached subscribers")
	}
}
