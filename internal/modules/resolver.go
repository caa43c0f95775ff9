package modules

import "fmt"

// Resolve orders the requested module codes so every dependency precedes
// its dependents. Only edges whose target is itself requested are honored.
// The sort is deterministic: zero-in-degree modules are processed FIFO in
// the caller's input order. Duplicates collapse to their first occurrence.
func Resolve(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return nil, nil
	}

	// First occurrence wins; input position breaks ordering ties.
	order := make([]string, 0, len(requested))
	seen := make(map[string]bool, len(requested))
	for _, code := range requested {
		if seen[code] {
			continue
		}
		if _, ok := byCode[code]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownModule, code)
		}
		seen[code] = true
		order = append(order, code)
	}

	dependsOn := make(map[string][]string, len(order))
	for _, code := range order {
		dependsOn[code] = byCode[code].DependsOn
	}

	return sortModules(order, dependsOn)
}

// sortModules runs Kahn's algorithm over the subgraph induced by order.
// Edges pointing outside the set are dropped rather than enforced.
func sortModules(order []string, dependsOn map[string][]string) ([]string, error) {
	requested := make(map[string]bool, len(order))
	for _, code := range order {
		requested[code] = true
	}

	inDegree := make(map[string]int, len(order))
	dependents := make(map[string][]string, len(order))
	for _, code := range order {
		inDegree[code] = 0
	}
	for _, code := range order {
		for _, dep := range dependsOn[code] {
			if !requested[dep] {
				continue
			}
			dependents[dep] = append(dependents[dep], code)
			inDegree[code]++
		}
	}

	queue := make([]string, 0, len(order))
	for _, code := range order {
		if inDegree[code] == 0 {
			queue = append(queue, code)
		}
	}

	resolved := make([]string, 0, len(order))
	for len(queue) > 0 {
		code := queue[0]
		queue = queue[1:]
		resolved = append(resolved, code)

		for _, dependent := range dependents[code] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	// Fewer nodes than requested means a cycle survived induction.
	if len(resolved) != len(order) {
		return nil, fmt.Errorf("%w: resolved %d of %d modules", ErrCircularDependency, len(resolved), len(order))
	}

	return resolved, nil
}
