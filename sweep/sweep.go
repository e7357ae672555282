// Package sweep runs batches of simulations so that connectivity schedules
// and forwarding modes can be compared side by side.
package sweep

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/sarchlab/hopsim"
	"github.com/sarchlab/hopsim/timemodel"
	"github.com/sarchlab/hopsim/transfer"
	"gitlab.com/akita/akita/v3/sim"
)

// An Outcome is the result of running one scenario. Err is set if the
// scenario could not be simulated, for example because its schedule is
// infeasible.
type Outcome struct {
	Scenario hopsim.Scenario
	Result   transfer.Result
	Err      error
}

// Grid returns one scenario per combination of connectivity mode and hop
// mode, all sharing the other options of base.
func Grid(base hopsim.Config) []hopsim.Scenario {
	scenarios := make([]hopsim.Scenario, 0,
		len(hopsim.ConnModes)*len(hopsim.HopModes))

	for _, conn := range hopsim.ConnModes {
		for _, hopMode := range hopsim.HopModes {
			cfg := base
			cfg.Conn = conn
			cfg.HopMode = hopMode
			scenarios = append(scenarios, hopsim.Scenario{
				Name:   fmt.Sprintf("%s/%s", conn, hopMode),
				Config: cfg,
			})
		}
	}

	return scenarios
}

// A Runner runs scenarios one after another.
type Runner struct {
	// Estimator is shared by all the runs. It defaults to the optimistic
	// estimator.
	Estimator timemodel.TimeEstimator

	// NewHooks, if set, returns the hooks to attach to the simulation of a
	// scenario.
	NewHooks func(s hopsim.Scenario) []sim.Hook
}

// Run simulates every scenario. An internal error of a simulation aborts the
// sweep, while configuration errors are reported in the outcome.
func (r *Runner) Run(scenarios []hopsim.Scenario) ([]Outcome, error) {
	estimator := r.Estimator
	if estimator == nil {
		estimator = &timemodel.OptimisticEstimator{}
	}

	outcomes := make([]Outcome, 0, len(scenarios))
	for _, scenario := range scenarios {
		outcome := Outcome{Scenario: scenario}

		s, err := transfer.NewSimulation(scenario.Config, estimator)
		if err != nil {
			outcome.Err = err
			outcomes = append(outcomes, outcome)
			continue
		}

		if r.NewHooks != nil {
			for _, h := range r.NewHooks(scenario) {
				s.AcceptHook(h)
			}
		}

		outcome.Result, err = s.Run()
		if err != nil {
			return outcomes, fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}

		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

// WriteTable prints the outcomes as an aligned table.
func WriteTable(w io.Writer, outcomes []Outcome) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tCONN\tHOP_MODE\tHOPS\tSTATE\tELAPSED\tDELIVERED")

	for _, o := range outcomes {
		cfg := o.Scenario.Config
		if o.Err != nil {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\terror: %v\t-\t-\n",
				o.Scenario.Name, cfg.Conn, cfg.HopMode, cfg.NumHops, o.Err)
			continue
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%d\t%.0f/%.0f\n",
			o.Scenario.Name, cfg.Conn, cfg.HopMode, cfg.NumHops,
			o.Result.State, int64(o.Result.Elapsed),
			o.Result.Delivered, cfg.TotalBits())
	}

	return tw.Flush()
}

// WriteCSV writes the outcomes as CSV with a header row.
func WriteCSV(w io.Writer, outcomes []Outcome) error {
	cw := csv.NewWriter(w)

	err := cw.Write([]string{
		"name", "count", "size", "num_hops", "bw", "hop_mode", "conn",
		"uptime", "downtime", "state", "elapsed", "delivered", "error",
	})
	if err != nil {
		return err
	}

	for _, o := range outcomes {
		cfg := o.Scenario.Config
		record := []string{
			o.Scenario.Name,
			strconv.Itoa(cfg.Count),
			strconv.Itoa(cfg.Size),
			strconv.Itoa(cfg.NumHops),
			strconv.Itoa(cfg.Bandwidth),
			string(cfg.HopMode),
			string(cfg.Conn),
			strconv.Itoa(cfg.Uptime),
			strconv.Itoa(cfg.Downtime),
		}

		if o.Err != nil {
			record = append(record, "error", "", "", o.Err.Error())
		} else {
			record = append(record,
				o.Result.State.String(),
				strconv.FormatFloat(float64(o.Result.Elapsed), 'f', -1, 64),
				strconv.FormatFloat(o.Result.Delivered, 'f', -1, 64),
				"")
		}

		err = cw.Write(record)
		if err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}
