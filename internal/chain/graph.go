package chain

import (
	"fmt"
	"strings"

	docsmitherrors "github.com/alexisbeaulieu97/docsmith/pkg/errors"
)

type node struct {
	step       *Step
	dependents []string
}

// graph holds the dependency adjacency computed once at validation time,
// plus the deterministic execution order.
type graph struct {
	nodes map[string]*node
	order []string
}

// buildGraph validates the declared steps and computes the execution
// order. It rejects empty or duplicate step names, self-dependencies,
// dependencies on unknown steps, and dependency cycles. Among steps whose
// dependencies are all resolved, ties are broken by declaration order so
// the result is reproducible across runs.
func buildGraph(steps []*Step) (*graph, error) {
	g := &graph{nodes: make(map[string]*node, len(steps))}

	for i, step := range steps {
		if step == nil {
			return nil, docsmitherrors.NewValidationError("steps", fmt.Sprintf("steps[%d] is nil", i), nil)
		}
		if step.Name == "" {
			return nil, docsmitherrors.NewValidationError("steps", fmt.Sprintf("steps[%d] has an empty name", i), nil)
		}
		if _, exists := g.nodes[step.Name]; exists {
			return nil, docsmitherrors.NewValidationError("steps", fmt.Sprintf("duplicate step name %q", step.Name), nil)
		}
		g.nodes[step.Name] = &node{step: step}
	}

	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if dep == step.Name {
				return nil, docsmitherrors.NewValidationError("steps", fmt.Sprintf("step %q depends on itself", step.Name), nil)
			}
			source, ok := g.nodes[dep]
			if !ok {
				return nil, docsmitherrors.NewValidationError("steps", fmt.Sprintf("step %q depends on unknown step %q", step.Name, dep), nil)
			}
			source.dependents = append(source.dependents, step.Name)
		}
	}

	if cycle := g.detectCycle(steps); len(cycle) > 0 {
		return nil, docsmitherrors.NewValidationError("steps", fmt.Sprintf("dependency cycle detected: %s", strings.Join(cycle, " -> ")), nil)
	}

	g.order = g.topologicalOrder(steps)
	return g, nil
}

// detectCycle returns the steps participating in a dependency cycle, or
// nil if none exists. Depth-first walk tracking nodes on the current
// recursion path; revisiting an in-progress node is a cycle.
func (g *graph) detectCycle(steps []*Step) []string {
	visiting := make(map[string]bool, len(steps))
	visited := make(map[string]bool, len(steps))
	var stack []string

	var cycle []string
	var dfs func(string) bool
	dfs = func(name string) bool {
		visiting[name] = true
		stack = append(stack, name)

		for _, dep := range g.nodes[name].step.DependsOn {
			if !visited[dep] {
				if visiting[dep] {
					idx := indexOf(stack, dep)
					if idx >= 0 {
						cycle = append([]string{}, stack[idx:]...)
						cycle = append(cycle, dep)
					}
					return true
				}
				if dfs(dep) {
					return true
				}
			}
		}

		visiting[name] = false
		visited[name] = true
		stack = stack[:len(stack)-1]
		return false
	}

	for _, step := range steps {
		if visited[step.Name] {
			continue
		}
		if dfs(step.Name) {
			break
		}
	}

	return cycle
}

// topologicalOrder computes the execution order via Kahn's algorithm,
// always picking the ready step declared earliest. Assumes the graph is
// acyclic.
func (g *graph) topologicalOrder(steps []*Step) []string {
	indegree := make(map[string]int, len(steps))
	for _, step := range steps {
		indegree[step.Name] = len(step.DependsOn)
	}

	order := make([]string, 0, len(steps))
	scheduled := make(map[string]bool, len(steps))

	for len(order) < len(steps) {
		next := ""
		for _, step := range steps {
			if !scheduled[step.Name] && indegree[step.Name] == 0 {
				next = step.Name
				break
			}
		}
		if next == "" {
			break
		}

		scheduled[next] = true
		order = append(order, next)
		for _, dependent := range g.nodes[next].dependents {
			indegree[dependent]--
		}
	}

	return order
}

func indexOf(slice []string, target string) int {
	for i, v := range slice {
		if v == target {
			return i
		}
	}
	return -1
}
