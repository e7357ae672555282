package main

import (
	"fmt"

	"github.com/sarchlab/hopsim"
	"github.com/spf13/cobra"
)

// configFlags holds the simulation options as given on the command line.
type configFlags struct {
	configFile string

	count, size, numHops, bw int
	uptime, downtime         int
	hopMode, conn            string
}

func (f *configFlags) bind(cmd *cobra.Command, withModes bool) {
	flags := cmd.Flags()
	flags.StringVar(&f.configFile, "config", "",
		"A YAML or TOML file providing the options. Flags take precedence.")
	flags.IntVar(&f.count, "count", 0, "number of messages")
	flags.IntVar(&f.size, "size", 0, "size of each message")
	flags.IntVar(&f.numHops, "num_hops", hopsim.DefaultNumHops, "number of hops")
	flags.IntVar(&f.bw, "bw", 0, "bandwidth")
	flags.IntVar(&f.uptime, "uptime", hopsim.DefaultUptime, "uptime in seconds")
	flags.IntVar(&f.downtime, "downtime", hopsim.DefaultDowntime,
		"downtime in seconds")

	if withModes {
		flags.StringVar(&f.hopMode, "hop_mode", "", "hop mode (hop or e2e)")
		flags.StringVar(&f.conn, "conn", "",
			"connectivity mode (conn, all2, sequential, offset2, or shift10)")
	}
}

// config merges the defaults, the config file, and the flags that were set
// explicitly, in increasing order of precedence.
func (f *configFlags) config(cmd *cobra.Command) (hopsim.Config, error) {
	cfg := hopsim.DefaultConfig()

	if f.configFile != "" {
		var err error
		cfg, err = hopsim.LoadConfigFile(f.configFile, cfg)
		if err != nil {
			return cfg, fmt.Errorf("%w: %v", hopsim.ErrInvalidConfig, err)
		}
	}

	changed := cmd.Flags().Changed
	intFlags := []struct {
		name string
		src  int
		dst  *int
	}{
		{"count", f.count, &cfg.Count},
		{"size", f.size, &cfg.Size},
		{"num_hops", f.numHops, &cfg.NumHops},
		{"bw", f.bw, &cfg.Bandwidth},
		{"uptime", f.uptime, &cfg.Uptime},
		{"downtime", f.downtime, &cfg.Downtime},
	}

	for _, fl := range intFlags {
		if changed(fl.name) {
			*fl.dst = fl.src
		}
	}

	if changed("hop_mode") {
		cfg.HopMode = hopsim.HopMode(f.hopMode)
	}

	if changed("conn") {
		cfg.Conn = hopsim.ConnMode(f.conn)
	}

	return cfg, nil
}
