package scheduler

import (
	"fmt"
	"strings"

	"github.com/gammazero/toposort"

	"github.com/aristath/zappy/internal/agent"
)

// Stage is one node in the pipeline graph.
type Stage struct {
	Role      agent.Role
	DependsOn []agent.Role
}

// StageGraph is a directed acyclic graph of pipeline stages.
type StageGraph struct {
	stages map[agent.Role]*Stage
	order  []agent.Role // insertion order, used to order stages within a wave
}

// NewStageGraph creates an empty graph.
func NewStageGraph() *StageGraph {
	return &StageGraph{stages: make(map[agent.Role]*Stage)}
}

// PipelineGraph returns the fixed content pipeline:
// researcher -> writer -> {compliance, enhancer, seo} -> editor.
func PipelineGraph() *StageGraph {
	g := NewStageGraph()
	_ = g.AddStage(agent.RoleResearcher)
	_ = g.AddStage(agent.RoleWriter, agent.RoleResearcher)
	for _, r := range agent.ReviewRoles {
		_ = g.AddStage(r, agent.RoleWriter)
	}
	_ = g.AddStage(agent.RoleEditor, agent.ReviewRoles...)
	return g
}

// AddStage adds a stage. Returns error if the role already exists.
func (g *StageGraph) AddStage(role agent.Role, dependsOn ...agent.Role) error {
	if _, exists := g.stages[role]; exists {
		return fmt.Errorf("stage %q already exists", role)
	}
	g.stages[role] = &Stage{Role: role, DependsOn: append([]agent.Role(nil), dependsOn...)}
	g.order = append(g.order, role)
	return nil
}

// Len returns the number of stages.
func (g *StageGraph) Len() int { return len(g.stages) }

// Validate runs a topological sort and returns the stage order.
// Fails on cycles and on dependencies that are not in the graph.
func (g *StageGraph) Validate() ([]agent.Role, error) {
	for _, role := range g.order {
		for _, dep := range g.stages[role].DependsOn {
			if _, exists := g.stages[dep]; !exists {
				return nil, fmt.Errorf("stage %q depends on non-existent stage %q", role, dep)
			}
		}
	}

	var edges []toposort.Edge
	for _, role := range g.order {
		s := g.stages[role]
		if len(s.DependsOn) == 0 {
			edges = append(edges, toposort.Edge{nil, role})
			continue
		}
		for _, dep := range s.DependsOn {
			edges = append(edges, toposort.Edge{dep, role})
		}
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("stage graph contains cycle: %w", err)
	}

	order := make([]agent.Role, 0, len(sorted))
	for _, id := range sorted {
		if id != nil {
			order = append(order, id.(agent.Role))
		}
	}

	if len(order) != len(g.stages) {
		found := make(map[agent.Role]bool, len(order))
		for _, r := range order {
			found[r] = true
		}
		var missing []string
		for _, r := range g.order {
			if !found[r] {
				missing = append(missing, string(r))
			}
		}
		return nil, fmt.Errorf("topological sort lost %d stages: %s", len(missing), strings.Join(missing, ", "))
	}

	return order, nil
}

// Waves groups stages into sets that may run together: every stage in a wave
// depends only on stages of earlier waves. Within a wave, stages keep their
// insertion order.
func (g *StageGraph) Waves() ([][]agent.Role, error) {
	if _, err := g.Validate(); err != nil {
		return nil, err
	}

	level := make(map[agent.Role]int, len(g.stages))
	var depth func(agent.Role) int
	depth = func(r agent.Role) int {
		if l, ok := level[r]; ok {
			return l
		}
		l := 0
		for _, dep := range g.stages[r].DependsOn {
			l = max(l, depth(dep)+1)
		}
		level[r] = l
		return l
	}

	var waves [][]agent.Role
	for _, r := range g.order {
		l := depth(r)
		for len(waves) <= l {
			waves = append(waves, nil)
		}
		waves[l] = append(waves[l], r)
	}
	return waves, nil
}
