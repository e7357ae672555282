// Package hopsim provides a simulator that estimates how long it takes to
// move data across a chain of intermittently connected hops.
package hopsim

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Configuration errors.
var (
	ErrMissingOption      = errors.New("missing mandatory option")
	ErrUnknownConnMode    = errors.New("conn mode not defined")
	ErrUnknownHopMode     = errors.New("hop mode not defined")
	ErrInfeasibleSchedule = errors.New("infeasible connectivity schedule")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// A HopMode determines how far data can travel once a link opens.
type HopMode string

// HopMode constants
const (
	// HopByHop forwards data one hop at a time, gated by the next link only.
	HopByHop HopMode = "hop"

	// EndToEnd forwards data straight to the sink, but only while every link
	// on the remaining path is up.
	EndToEnd HopMode = "e2e"
)

// HopModes lists all the supported hop modes.
var HopModes = []HopMode{HopByHop, EndToEnd}

// A ConnMode names a scripted pattern of link availability.
type ConnMode string

// ConnMode constants
const (
	ConnAlwaysUp   ConnMode = "conn"
	ConnAll2       ConnMode = "all2"
	ConnSequential ConnMode = "sequential"
	ConnOffset2    ConnMode = "offset2"
	ConnShift10    ConnMode = "shift10"
)

// ConnModes lists all the supported connectivity modes.
var ConnModes = []ConnMode{
	ConnAlwaysUp,
	ConnAll2,
	ConnSequential,
	ConnOffset2,
	ConnShift10,
}

// Default option values.
const (
	DefaultNumHops  = 5
	DefaultUptime   = 60
	DefaultDowntime = 240
)

// Config describes one simulation run. It never changes once a run starts.
type Config struct {
	Count     int      `yaml:"count" toml:"count"`
	Size      int      `yaml:"size" toml:"size"`
	NumHops   int      `yaml:"num_hops" toml:"num_hops"`
	Bandwidth int      `yaml:"bw" toml:"bw"`
	HopMode   HopMode  `yaml:"hop_mode" toml:"hop_mode"`
	Conn      ConnMode `yaml:"conn" toml:"conn"`
	Uptime    int      `yaml:"uptime" toml:"uptime"`
	Downtime  int      `yaml:"downtime" toml:"downtime"`
}

// DefaultConfig returns a Config with only the optional fields filled.
func DefaultConfig() Config {
	return Config{
		NumHops:  DefaultNumHops,
		Uptime:   DefaultUptime,
		Downtime: DefaultDowntime,
	}
}

// Last returns the index of the sink node.
func (c Config) Last() int {
	return c.NumHops - 1
}

// TotalBits returns the number of bits that has to reach the sink.
func (c Config) TotalBits() float64 {
	return float64(c.Count) * float64(c.Size) * 8
}

// MessageBits returns the size of a single message in bits.
func (c Config) MessageBits() float64 {
	return float64(c.Size) * 8
}

// String returns a short description of the run.
func (c Config) String() string {
	return fmt.Sprintf(
		"count=%d size=%d num_hops=%d bw=%d hop_mode=%s conn=%s uptime=%d downtime=%d",
		c.Count, c.Size, c.NumHops, c.Bandwidth,
		c.HopMode, c.Conn, c.Uptime, c.Downtime)
}

// MissingOptions returns the names of the mandatory options that are not set.
func (c Config) MissingOptions() []string {
	var missing []string

	if c.Count == 0 {
		missing = append(missing, "count")
	}
	if c.Size == 0 {
		missing = append(missing, "size")
	}
	if c.Bandwidth == 0 {
		missing = append(missing, "bw")
	}
	if c.HopMode == "" {
		missing = append(missing, "hop_mode")
	}
	if c.Conn == "" {
		missing = append(missing, "conn")
	}

	return missing
}

// Validate checks the options that can be checked without building a
// connectivity schedule.
func (c Config) Validate() error {
	if missing := c.MissingOptions(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingOption, strings.Join(missing, ", "))
	}

	if _, err := ParseHopMode(string(c.HopMode)); err != nil {
		return err
	}

	if _, err := ParseConnMode(string(c.Conn)); err != nil {
		return err
	}

	switch {
	case c.NumHops < 2:
		return fmt.Errorf("%w: num_hops must be at least 2, got %d",
			ErrInvalidConfig, c.NumHops)
	case c.Count < 0 || c.Size < 0:
		return fmt.Errorf("%w: count and size must be positive",
			ErrInvalidConfig)
	case c.Bandwidth < 0:
		return fmt.Errorf("%w: bw must be positive", ErrInvalidConfig)
	case c.Uptime < 0 || c.Downtime < 0:
		return fmt.Errorf("%w: uptime and downtime cannot be negative",
			ErrInvalidConfig)
	case c.Uptime+c.Downtime == 0 && c.Conn != ConnAlwaysUp:
		return fmt.Errorf("%w: links of %s cannot cycle with zero uptime and downtime",
			ErrInvalidConfig, c.Conn)
	}

	return nil
}

// ParseHopMode converts a string into a HopMode.
func ParseHopMode(s string) (HopMode, error) {
	for _, m := range HopModes {
		if string(m) == s {
			return m, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownHopMode, s)
}

// ParseConnMode converts a string into a ConnMode.
func ParseConnMode(s string) (ConnMode, error) {
	for _, m := range ConnModes {
		if string(m) == s {
			return m, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownConnMode, s)
}

// LoadConfigFile reads options from a YAML or TOML file on top of base. The
// format is picked by the file extension.
func LoadConfigFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, err
	}

	cfg := base
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return base, fmt.Errorf("%w: unsupported config file %s",
			ErrInvalidConfig, path)
	}

	if err != nil {
		return base, fmt.Errorf("parsing %s: %w", path, err)
	}

	return cfg, nil
}
