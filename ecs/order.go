package ecs

import (
	"fmt"
	"sort"
	"strings"
)

// sortByDependencies orders insts so every component follows the components
// it depends on. Ties keep attach order.
func sortByDependencies(insts []*instance) ([]*instance, error) {
	byName := make(map[string]*instance, len(insts))
	for _, inst := range insts {
		byName[inst.name] = inst
	}

	indegree := make(map[*instance]int, len(insts))
	dependents := make(map[*instance][]*instance, len(insts))
	for _, inst := range insts {
		for _, dep := range inst.deps {
			target, ok := byName[dep]
			if !ok {
				return nil, fmt.Errorf("%w: %q needs %q, which is not attached", ErrBadDependency, inst.name, dep)
			}
			if target == inst {
				return nil, fmt.Errorf("%w: %q depends on itself", ErrBadDependency, inst.name)
			}
			indegree[inst]++
			dependents[target] = append(dependents[target], inst)
		}
	}

	var ready []*instance
	for _, inst := range insts {
		if indegree[inst] == 0 {
			ready = append(ready, inst)
		}
	}

	out := make([]*instance, 0, len(insts))
	for len(ready) > 0 {
		sort.SliceStable(ready, func(i, j int) bool { return ready[i].seq < ready[j].seq })
		next := ready[0]
		ready = ready[1:]
		out = append(out, next)
		for _, d := range dependents[next] {
			indegree[d]--
			if indegree[d] == 0 {
				ready = append(ready, d)
			}
		}
	}

	if len(out) != len(insts) {
		var cycle []string
		for _, inst := range insts {
			if indegree[inst] > 0 {
				cycle = append(cycle, inst.name)
			}
		}
		return nil, fmt.Errorf("%w: cycle among %s", ErrBadDependency, strings.Join(cycle, ", "))
	}
	return out, nil
}
