// Command hopsim estimates the time it takes to move data across a chain of
// intermittently connected hops.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/sarchlab/hopsim"
	"github.com/sarchlab/hopsim/connectivity"
	"github.com/sarchlab/hopsim/recording"
	"github.com/sarchlab/hopsim/sweep"
	"github.com/sarchlab/hopsim/timemodel"
	"github.com/sarchlab/hopsim/transfer"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
	"gitlab.com/akita/akita/v3/sim"
)

// Exit codes
const (
	exitCompleted   = 0
	exitTimedOut    = 1
	exitConfigError = 2
	exitInternal    = 3
)

var (
	runFlags     configFlags
	quiet        bool
	recordCSV    string
	recordSQLite string

	sweepFlags        configFlags
	scenarioFile      string
	sweepResultCSV    string
	sweepRecordSQLite string
)

var rootCmd = &cobra.Command{
	Use:   "hopsim",
	Short: "Estimate the time to move data across intermittently connected hops.",
	Long: `hopsim simulates a bulk transfer over a linear chain of hops whose ` +
		`links open and close on a scripted schedule, and reports the time ` +
		`until all the data reaches the last hop.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		atexit.Exit(runSingle(cmd))
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Compare every connectivity schedule and hop mode.",
	Long: `sweep runs one simulation for every combination of connectivity ` +
		`mode and hop mode, or one per row of a scenario CSV file, and prints ` +
		`a table of the outcomes.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		atexit.Exit(runSweep(cmd))
	},
}

func init() {
	runFlags.bind(rootCmd, true)
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false,
		"Only print the outcome.")
	rootCmd.Flags().StringVar(&recordCSV, "record-csv", "",
		"Record the run into a CSV file.")
	rootCmd.Flags().StringVar(&recordSQLite, "record-sqlite", "",
		"Record the run into a SQLite database.")

	sweepFlags.bind(sweepCmd, false)
	sweepCmd.Flags().StringVar(&scenarioFile, "scenarios", "",
		"A CSV file with one scenario per row.")
	sweepCmd.Flags().StringVar(&sweepResultCSV, "record-csv", "",
		"Write the outcomes to a CSV file.")
	sweepCmd.Flags().StringVar(&sweepRecordSQLite, "record-sqlite", "",
		"Record every run of the sweep into a SQLite database.")

	rootCmd.AddCommand(sweepCmd)
}

func main() {
	rootCmd.SetOut(os.Stdout)

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(exitConfigError)
	}
}

func runSingle(cmd *cobra.Command) int {
	cfg, err := runFlags.config(cmd)
	if err != nil {
		return configError(err)
	}

	if len(cfg.MissingOptions()) > 0 {
		_ = cmd.Usage()
		return exitCompleted
	}

	s, err := transfer.NewSimulation(cfg, &timemodel.OptimisticEstimator{})
	if err != nil {
		return configError(err)
	}

	if !quiet {
		s.AcceptHook(recording.NewProgressPrinter(os.Stdout, cfg.MessageBits()))
	}

	err = attachRecorders(s)
	if err != nil {
		log.Printf("cannot record the run: %v", err)
		return exitInternal
	}

	result, err := s.Run()
	if err != nil {
		log.Printf("simulation aborted: %v", err)
		return exitInternal
	}

	switch result.State {
	case transfer.Completed:
		fmt.Println("all data transferred...")
		fmt.Printf("ELAPSED %d\n", int64(result.Elapsed))
		return exitCompleted
	default:
		fmt.Printf("maximum simulation time (%d) reached... ending simulation\n",
			int64(connectivity.Deadline))
		return exitTimedOut
	}
}

func attachRecorders(s *transfer.Simulation) error {
	if recordCSV != "" {
		backend := recording.NewCSVBackend(recordCSV)
		if err := backend.Init(); err != nil {
			return err
		}
		s.AcceptHook(recording.NewRunRecorder(backend))
	}

	if recordSQLite != "" {
		backend := recording.NewSQLiteBackend(recordSQLite)
		if err := backend.Init(); err != nil {
			return err
		}
		s.AcceptHook(recording.NewRunRecorder(backend))
	}

	return nil
}

func runSweep(cmd *cobra.Command) int {
	scenarios, err := sweepScenarios(cmd)
	if err != nil {
		return configError(err)
	}

	runner := &sweep.Runner{}
	if sweepRecordSQLite != "" {
		backend := recording.NewSQLiteBackend(sweepRecordSQLite)
		if err := backend.Init(); err != nil {
			log.Printf("cannot record the sweep: %v", err)
			return exitInternal
		}
		runner.NewHooks = func(hopsim.Scenario) []sim.Hook {
			return []sim.Hook{recording.NewRunRecorder(backend)}
		}
	}

	outcomes, err := runner.Run(scenarios)
	if err != nil {
		log.Printf("sweep aborted: %v", err)
		return exitInternal
	}

	err = sweep.WriteTable(os.Stdout, outcomes)
	if err != nil {
		log.Print(err)
		return exitInternal
	}

	if sweepResultCSV != "" {
		err = writeSweepCSV(sweepResultCSV, outcomes)
		if err != nil {
			log.Print(err)
			return exitInternal
		}
	}

	return exitCompleted
}

func sweepScenarios(cmd *cobra.Command) ([]hopsim.Scenario, error) {
	if scenarioFile != "" {
		loader := &hopsim.ScenarioLoader{Path: scenarioFile}
		return loader.Load()
	}

	cfg, err := sweepFlags.config(cmd)
	if err != nil {
		return nil, err
	}

	// The grid fills in both modes.
	cfg.HopMode = hopsim.HopByHop
	cfg.Conn = hopsim.ConnAlwaysUp
	if missing := cfg.MissingOptions(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %v", hopsim.ErrMissingOption, missing)
	}

	return sweep.Grid(cfg), nil
}

func writeSweepCSV(path string, outcomes []sweep.Outcome) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	err = sweep.WriteCSV(f, outcomes)
	if err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

func configError(err error) int {
	if errors.Is(err, hopsim.ErrMissingOption) {
		fmt.Fprintln(os.Stderr, err)
	} else {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
	}

	return exitConfigError
}
