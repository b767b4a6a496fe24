package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/plan"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	Visited []string // Names of ended states
	Current []string // Names of running leaves
}

// OverlayFromSnapshot builds an overlay from a running machine.
func OverlayFromSnapshot(snap domain.Snapshot) *GraphOverlay {
	overlay := &GraphOverlay{}
	snap.Walk(func(_ string, node domain.Snapshot) bool {
		if node.Kind == domain.KindProxy {
			return true
		}
		switch {
		case node.Status == domain.StatusEnded:
			overlay.Visited = append(overlay.Visited, node.Name)
		case node.Status == domain.StatusRunning && len(node.Children) == 0:
			overlay.Current = append(overlay.Current, node.Name)
		}
		return true
	})
	return overlay
}

// GenerateMermaid produces a Mermaid flowchart of a plan.
// Composites are rendered as subgraphs:
// - Series: children chained in order
// - Group: children side by side, no edges
// - Repeat: chained children plus a dotted loop edge labelled with the count
// Leaves use a shape per kind:
// - Wait: [Rectangle]
// - Log: [/Parallelogram/]
// - Custom kinds: [[Subroutine]]
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(def plan.Definition, overlay *GraphOverlay) string {
	g := &generator{ids: make(map[string][]string), seen: make(map[string]int)}
	g.sb.WriteString("graph TD\n")
	g.node(def, "", 1)

	if overlay != nil {
		g.sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast regardless of theme
		g.sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		g.sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		g.class(overlay.Visited, "visited")
		g.class(overlay.Current, "current")
	}

	return g.sb.String()
}

type generator struct {
	sb   strings.Builder
	ids  map[string][]string // name -> mermaid ids
	seen map[string]int
}

// node writes def and returns its mermaid id.
func (g *generator) node(def plan.Definition, parentID string, depth int) string {
	id := g.id(parentID, def.Name)
	g.ids[def.Name] = append(g.ids[def.Name], id)
	indent := strings.Repeat("    ", depth)

	if !plan.IsStructural(def.Kind) {
		opener, closer := "[", "]"
		switch def.Kind {
		case plan.KindWait:
		case plan.KindLog:
			opener, closer = "[/", "/]"
		default:
			opener, closer = "[[", "]]"
		}
		label := escape(def.Name)
		if def.Duration > 0 {
			label = fmt.Sprintf("%s <br/> ⏱️ %s", label, def.Duration)
		}
		if def.Frozen {
			label += " <br/> ❄️"
		}
		fmt.Fprintf(&g.sb, "%s%s%s\"%s\"%s\n", indent, id, opener, label, closer)
		return id
	}

	title := escape(def.Name)
	switch def.Kind {
	case plan.KindGroup:
		title += " ∥"
	case plan.KindRepeat:
		title = fmt.Sprintf("%s ×%d", title, def.Times)
	}
	fmt.Fprintf(&g.sb, "%ssubgraph %s[\"%s\"]\n", indent, id, title)

	children := make([]string, 0, len(def.Children))
	for _, child := range def.Children {
		children = append(children, g.node(child, id, depth+1))
	}

	if def.Kind != plan.KindGroup {
		for i := 1; i < len(children); i++ {
			fmt.Fprintf(&g.sb, "%s    %s --> %s\n", indent, children[i-1], children[i])
		}
	}
	if def.Kind == plan.KindRepeat && def.Times > 1 && len(children) > 0 {
		fmt.Fprintf(&g.sb, "%s    %s -. \"×%d\" .-> %s\n", indent, children[len(children)-1], def.Times, children[0])
	}

	fmt.Fprintf(&g.sb, "%send\n", indent)
	return id
}

func (g *generator) id(parentID, name string) string {
	id := sanitizeMermaidID(name)
	if parentID != "" {
		id = parentID + "_" + id
	}
	g.seen[id]++
	if n := g.seen[id]; n > 1 {
		id = fmt.Sprintf("%s_%d", id, n)
	}
	return id
}

func (g *generator) class(names []string, class string) {
	// Deduplicate ids, several names may repeat across iterations
	done := make(map[string]bool)
	for _, name := range names {
		for _, id := range g.ids[name] {
			if done[id] {
				continue
			}
			done[id] = true
			fmt.Fprintf(&g.sb, "    class %s %s;\n", id, class)
		}
	}
}

func escape(label string) string {
	return strings.ReplaceAll(label, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "#", "_")
	return s
}
