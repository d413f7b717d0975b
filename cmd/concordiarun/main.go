// Command concordiarun is the thin outer binary wrapping the simulation
// kernel: run/observer/benchmark/profile subcommands and the exit-code
// contract design doc Section 6 names. It is deliberately small — the CLI
// itself, the game-data text-format parser, and the network/UI layer
// around it are named external collaborators/non-goals, so this binary
// exists only to prove the kernel runs, not to be a product surface.
//
// Grounded on the teacher's cmd/worldsim and cmd/gardener mains (slog
// logging, flat main-per-binary layout); the subcommand dispatch itself
// is grounded on github.com/spf13/cobra, already part of the retrieval
// pack's dependency graph (AKJUS-bsc-erigon's node binary).
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/pprof"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/talgya/concordia/internal/integrity"
	"github.com/talgya/concordia/internal/orchestrator"
	"github.com/talgya/concordia/internal/replay"
)

// Exit codes per design doc Section 6.
const (
	exitSuccess = 0
	exitBadArgs = 1
	exitDataLoad = 2
	exitIntegrity = 3
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	os.Exit(run())
}

func run() int {
	var (
		ticks            int
		seed             int64
		checksumInterval uint64
		replayPath       string
		cpuProfile       string
	)

	root := &cobra.Command{
		Use:   "concordiarun",
		Short: "Deterministic grand-strategy simulation kernel",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Advance a world N ticks and report its final checksum",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTicks(ticks, seed, checksumInterval, replayPath)
		},
	}
	runCmd.Flags().IntVar(&ticks, "ticks", 30, "number of daily ticks to advance")
	runCmd.Flags().Int64Var(&seed, "seed", 1, "deterministic RNG seed")
	runCmd.Flags().Uint64Var(&checksumInterval, "checksum-interval", 1, "compute a checksum every N ticks (<=1 means every tick)")
	runCmd.Flags().StringVar(&replayPath, "record", "", "optional path to record a replay log to")

	observerCmd := &cobra.Command{
		Use:   "observer",
		Short: "Replay a recorded log's tick inputs to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			return observeReplay(replayPath)
		},
	}
	observerCmd.Flags().StringVar(&replayPath, "replay", "", "path to a replay log written by `run --record`")

	benchmarkCmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Time N ticks of the demo scenario with no I/O",
		RunE: func(cmd *cobra.Command, args []string) error {
			return benchmark(ticks, seed)
		},
	}
	benchmarkCmd.Flags().IntVar(&ticks, "ticks", 3650, "number of daily ticks to advance")
	benchmarkCmd.Flags().Int64Var(&seed, "seed", 1, "deterministic RNG seed")

	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Run the benchmark scenario under a CPU profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Create(cpuProfile)
			if err != nil {
				slog.Error("create profile output", "error", err)
				return errExit(exitDataLoad)
			}
			defer f.Close()
			if err := pprof.StartCPUProfile(f); err != nil {
				return errExit(exitDataLoad)
			}
			defer pprof.StopCPUProfile()
			return benchmark(ticks, seed)
		},
	}
	profileCmd.Flags().IntVar(&ticks, "ticks", 3650, "number of daily ticks to advance")
	profileCmd.Flags().Int64Var(&seed, "seed", 1, "deterministic RNG seed")
	profileCmd.Flags().StringVar(&cpuProfile, "out", "concordiarun.pprof", "CPU profile output path")

	root.AddCommand(runCmd, observerCmd, benchmarkCmd, profileCmd)
	root.SilenceUsage = true
	root.SilenceErrors = true

	if err := root.Execute(); err != nil {
		if ee, ok := err.(exitError); ok {
			return int(ee)
		}
		slog.Error("command failed", "error", err)
		return exitBadArgs
	}
	return exitSuccess
}

// exitError lets a RunE func request a specific exit code without cobra
// printing its own generic error wrapper for codes that aren't "bad args".
type exitError int

func (e exitError) Error() string { return fmt.Sprintf("exit %d", int(e)) }

func errExit(code int) error { return exitError(code) }

func runTicks(ticks int, seed int64, checksumInterval uint64, recordTo string) error {
	state, data := demoScenario(uint64(seed))

	var log *replay.Log
	bus := replay.NewBus()
	if recordTo != "" {
		var err error
		log, err = replay.OpenLog(recordTo)
		if err != nil {
			slog.Error("open replay log", "error", err)
			return errExit(exitDataLoad)
		}
		defer log.Close()
		if err := log.WriteHeader(replay.Header{
			ReplayID:          uuid.New(),
			ManifestHash:      "dev",
			SimulationVersion: "concordia-kernel-dev",
			InitialStateHash:  state.Checksum(),
		}); err != nil {
			slog.Error("write replay header", "error", err)
			return errExit(exitIntegrity)
		}
	}

	cfg := orchestrator.Config{
		Checksum: integrity.ChecksumSchedule{IntervalTicks: checksumInterval},
		Bus:      bus,
		Mode:     orchestrator.ModeAI,
	}

	var lastChecksum uint64
	for i := 0; i < ticks; i++ {
		result := orchestrator.StepWorld(state, nil, data, cfg)
		state = result.State
		if result.Checksum != nil {
			lastChecksum = *result.Checksum
		}
		if log != nil {
			if err := log.AppendTick(replay.TickInputs{Tick: state.Tick}); err != nil {
				slog.Error("append replay tick", "error", err)
				return errExit(exitIntegrity)
			}
		}
	}

	slog.Info("run complete", "ticks", ticks, "final_tick", state.Tick, "checksum", lastChecksum)
	return nil
}

func observeReplay(path string) error {
	if path == "" {
		slog.Error("observer requires --replay")
		return errExit(exitBadArgs)
	}
	log, err := replay.OpenLog(path)
	if err != nil {
		slog.Error("open replay log", "error", err)
		return errExit(exitDataLoad)
	}
	defer log.Close()

	header, err := log.ReadHeader()
	if err != nil {
		slog.Error("read replay header", "error", err)
		return errExit(exitIntegrity)
	}
	slog.Info("replay header", "replay_id", header.ReplayID, "manifest_hash", header.ManifestHash)

	for tick := uint64(1); ; tick++ {
		in, err := log.ReadTick(tick)
		if err != nil {
			break
		}
		slog.Info("tick", "tick", in.Tick, "players", len(in.Players))
	}
	return nil
}

func benchmark(ticks int, seed int64) error {
	state, data := demoScenario(uint64(seed))
	// No schedule tick will ever be due against this interval, so the
	// benchmark measures StepWorld alone with no checksum overhead.
	cfg := orchestrator.Config{
		Checksum: integrity.ChecksumSchedule{IntervalTicks: ^uint64(0)},
		Bus:      replay.NewBus(),
		Mode:     orchestrator.ModeAI,
	}

	start := time.Now()
	for i := 0; i < ticks; i++ {
		state = orchestrator.StepWorld(state, nil, data, cfg).State
	}
	elapsed := time.Since(start)

	slog.Info("benchmark complete",
		"ticks", ticks,
		"elapsed", elapsed,
		"ticks_per_sec", float64(ticks)/elapsed.Seconds(),
	)
	return nil
}
