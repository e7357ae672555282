package hopsim

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// A Scenario is a named configuration that is part of a batch of runs.
type Scenario struct {
	Name   string
	Config Config
}

// A ScenarioLoader loads a list of scenarios from a CSV file.
//
// The first row of the file is a header that names the columns. Recognized
// columns are name, count, size, num_hops, bw, hop_mode, conn, uptime, and
// downtime. Optional columns that are missing take the default values.
type ScenarioLoader struct {
	// The path to the CSV file.
	Path string
}

// Load reads all the scenarios in the file.
func (l *ScenarioLoader) Load() ([]Scenario, error) {
	absPath, err := filepath.Abs(l.Path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(absPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		closeErr := f.Close()
		if closeErr != nil {
			panic(closeErr)
		}
	}()

	reader := csv.NewReader(f)
	reader.Comma = ','
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, nil
	}

	columns := l.parseHeader(records[0])
	scenarios := make([]Scenario, 0, len(records)-1)

	for i, record := range records[1:] {
		scenario, err := l.parseScenario(record, columns)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", l.Path, i+2, err)
		}

		if scenario.Name == "" {
			scenario.Name = fmt.Sprintf("%s-%s-%d",
				scenario.Config.Conn, scenario.Config.HopMode, i)
		}

		scenarios = append(scenarios, scenario)
	}

	return scenarios, nil
}

func (l *ScenarioLoader) parseHeader(record []string) map[string]int {
	columns := make(map[string]int, len(record))
	for i, name := range record {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	return columns
}

func (l *ScenarioLoader) parseScenario(
	record []string,
	columns map[string]int,
) (Scenario, error) {
	scenario := Scenario{Config: DefaultConfig()}
	cfg := &scenario.Config

	field := func(name string) (string, bool) {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return "", false
		}

		v := strings.TrimSpace(record[i])

		return v, v != ""
	}

	intFields := []struct {
		name string
		dst  *int
	}{
		{"count", &cfg.Count},
		{"size", &cfg.Size},
		{"num_hops", &cfg.NumHops},
		{"bw", &cfg.Bandwidth},
		{"uptime", &cfg.Uptime},
		{"downtime", &cfg.Downtime},
	}

	for _, f := range intFields {
		v, ok := field(f.name)
		if !ok {
			continue
		}

		n, err := strconv.Atoi(v)
		if err != nil {
			return scenario, fmt.Errorf("column %s: %w", f.name, err)
		}
		*f.dst = n
	}

	if v, ok := field("hop_mode"); ok {
		cfg.HopMode = HopMode(v)
	}

	if v, ok := field("conn"); ok {
		cfg.Conn = ConnMode(v)
	}

	scenario.Name, _ = field("name")

	return scenario, nil
}
