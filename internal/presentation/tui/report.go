package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/cadence/pkg/domain"
)

// Report formats a snapshot as a markdown run report.
func Report(snap domain.Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", snap.Name)
	fmt.Fprintf(&sb, "**Status:** %s", snap.Status)
	if snap.Frozen {
		sb.WriteString(" (frozen)")
	}
	sb.WriteString("\n\n")

	if active := snap.Active(); len(active) > 0 {
		sb.WriteString("## Active\n\n")
		for _, s := range active {
			fmt.Fprintf(&sb, "- %s (%s left)\n", s.Name, round(s.Remaining))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## States\n\n")
	sb.WriteString("| State | Kind | Status | Elapsed | Duration |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	snap.Walk(func(path string, node domain.Snapshot) bool {
		depth := strings.Count(path, "/")
		name := strings.Repeat("  ", depth) + node.Name
		status := string(node.Status)
		if node.Frozen {
			status += " ❄️"
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n",
			name, node.Kind, status, round(node.Elapsed), round(node.Duration))
		return true
	})
	return sb.String()
}

func round(d time.Duration) time.Duration {
	return d.Round(100 * time.Millisecond)
}
