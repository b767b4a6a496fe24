package cli

import (
	"os"
	"path/filepath"
	"time"
)

// DefaultProcessesFile is looked up next to the plan when no process config is given.
const DefaultProcessesFile = "processes.yaml"

// RunOptions contains the configuration shared by the run, serve and mcp commands.
type RunOptions struct {
	PlanPath string
	Interval time.Duration
	Key      string // Snapshot key, defaults to the plan name
	Fresh    bool   // Delete the stored snapshot before running
	Debug    bool
	Quiet    bool
	Watch    bool

	Interactive bool // Render banner and glamour report

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	ProcessesPath string
	UnsafeInline  bool
}

// processesPath resolves the process config, preferring an explicit path and
// falling back to the file next to the plan.
func (o RunOptions) processesPath() string {
	if o.ProcessesPath != "" {
		return o.ProcessesPath
	}
	candidate := filepath.Join(filepath.Dir(o.PlanPath), DefaultProcessesFile)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}
