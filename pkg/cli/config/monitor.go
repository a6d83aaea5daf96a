package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

// Monitor is the worktree monitoring config. It is loaded from a YAML
// file so that the set of watched repository roots can be edited
// without touching flags.
type Monitor struct {
	Roots    []string
	Interval time.Duration
}

const defaultMonitorInterval = 5 * time.Minute

func LoadMonitor(path string) (*Monitor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read monitor config", goerr.V("path", path))
	}

	var doc struct {
		Roots    []string `yaml:"roots"`
		Interval string   `yaml:"interval"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, goerr.Wrap(err, "failed to parse monitor config", goerr.V("path", path))
	}

	if len(doc.Roots) == 0 {
		return nil, goerr.New("monitor config has no roots", goerr.V("path", path))
	}

	cfg := &Monitor{
		Roots:    doc.Roots,
		Interval: defaultMonitorInterval,
	}
	if doc.Interval != "" {
		interval, err := time.ParseDuration(doc.Interval)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid interval in monitor config", goerr.V("interval", doc.Interval))
		}
		cfg.Interval = interval
	}

	return cfg, nil
}
