package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wealthpath/retiresim/internal/config"
	"github.com/wealthpath/retiresim/internal/output"
	"github.com/wealthpath/retiresim/internal/returngen"
	"github.com/wealthpath/retiresim/internal/simulation"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "retiresim",
	Short: "Retirement Monte Carlo simulator",
	Long:  "Tax-aware Monte Carlo retirement planner: stochastic market paths, bucket-ordered withdrawals, spending guardrails and long-term-care stress testing",
}

var (
	flagIterations   int
	flagWorkers      int
	flagSeed         uint64
	flagStartYear    int
	flagDistribution string
	flagDF           float64
	flagAntithetic   bool
	flagControlVar   bool
	flagStratified   bool
	flagFormat       string
	flagTrajectories bool
	flagVerbose      bool
)

func simConfig() simulation.SimConfig {
	level := zerolog.WarnLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	return simulation.SimConfig{
		Iterations:         flagIterations,
		Workers:            flagWorkers,
		Seed:               flagSeed,
		StartYear:          flagStartYear,
		Distribution:       returngen.Distribution(flagDistribution),
		DegreesOfFreedom:   flagDF,
		UseAntithetic:      flagAntithetic,
		UseControlVariates: flagControlVar,
		UseStratified:      flagStratified,
		RecordTrajectories: flagTrajectories,
		Logger:             logger,
	}
}

var simulateCmd = &cobra.Command{
	Use:   "simulate [scenario-file]",
	Short: "Run the Monte Carlo ensemble for a scenario",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := config.NewInputParser().LoadFromFile(args[0])
		if err != nil {
			return err
		}
		cfg := simConfig()
		orch, err := simulation.NewOrchestrator(params, nil, cfg)
		if err != nil {
			return err
		}
		result, runErr := orch.Run(cmd.Context())
		if result == nil {
			return runErr
		}
		formatter, err := output.FormatterFor(flagFormat)
		if err != nil {
			return err
		}
		rendered, err := formatter.Format(result)
		if err != nil {
			return err
		}
		if _, err := os.Stdout.Write(rendered); err != nil {
			return err
		}
		return runErr
	},
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "retiresim %s (commit %s, built %s)\n", version, commit, date)
			if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
				fmt.Fprintln(os.Stdout, bi.Main.Path)
			}
		},
	}
}

func main() {
	rootCmd.PersistentFlags().IntVar(&flagIterations, "iterations", simulation.DefaultIterations, "number of Monte Carlo scenarios")
	rootCmd.PersistentFlags().IntVar(&flagWorkers, "workers", 0, "worker goroutines (0 = all CPUs)")
	rootCmd.PersistentFlags().Uint64Var(&flagSeed, "seed", 42, "base random seed; identical seeds reproduce identical results")
	rootCmd.PersistentFlags().IntVar(&flagStartYear, "start-year", 2025, "first simulated calendar year")
	rootCmd.PersistentFlags().StringVar(&flagDistribution, "distribution", string(returngen.DistStudentT), "return shock distribution: student_t or normal")
	rootCmd.PersistentFlags().Float64Var(&flagDF, "degrees-of-freedom", returngen.DefaultDegreesOfFreedom, "Student-t degrees of freedom")
	rootCmd.PersistentFlags().BoolVar(&flagAntithetic, "antithetic", true, "antithetic path mirroring")
	rootCmd.PersistentFlags().BoolVar(&flagControlVar, "control-variates", false, "control-variate balance adjustment")
	rootCmd.PersistentFlags().BoolVar(&flagStratified, "stratified", false, "stratified first-year sampling")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "debug logging")

	simulateCmd.Flags().StringVar(&flagFormat, "format", "console", "output format: console, json or csv")
	simulateCmd.Flags().BoolVar(&flagTrajectories, "trajectories", true, "record per-year trajectories for bands and drawdown stats")

	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(claimingCmd)
	rootCmd.AddCommand(ltcCmd)
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
