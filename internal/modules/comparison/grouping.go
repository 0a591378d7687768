// Package comparison diffs two assignment snapshots along a dimension, derives
// efficiency and trend metrics from the pair, and turns them into insights.
package comparison

import "github.com/aristath/stockroom/internal/modules/snapshots"

// UnclassifiedGroup is the group key for agents with no office or department
const UnclassifiedGroup = "미분류"

// Group is an office or department and the agents assigned to it
type Group struct {
	TotalQuantity int               `json:"total_quantity"`
	AgentCount    int               `json:"agent_count"`
	Agents        []snapshots.Agent `json:"agents"`
}

// ModelGroup is one model summed across every agent holding it
type ModelGroup struct {
	TotalQuantity int            `json:"total_quantity"`
	AgentCount    int            `json:"agent_count"`
	Colors        map[string]int `json:"colors"`
}

// GroupByOffice folds the snapshot's agents by office
func GroupByOffice(s snapshots.Snapshot) map[string]Group {
	return groupAgents(s.Agents, func(a snapshots.Agent) string { return a.Office })
}

// GroupByDepartment folds the snapshot's agents by department
func GroupByDepartment(s snapshots.Snapshot) map[string]Group {
	return groupAgents(s.Agents, func(a snapshots.Agent) string { return a.Department })
}

func groupAgents(agents []snapshots.Agent, keyOf func(snapshots.Agent) string) map[string]Group {
	groups := make(map[string]Group)

	for _, agent := range agents {
		key := keyOf(agent)
		if key == "" {
			key = UnclassifiedGroup
		}

		group := groups[key]
		group.TotalQuantity += agent.Quantity
		group.AgentCount++
		group.Agents = append(group.Agents, agent)
		groups[key] = group
	}

	return groups
}

// GroupByModel folds every agent's holdings by model, summing colors across agents.
// AgentCount is the number of agents that hold the model at all, zero quantity included.
func GroupByModel(s snapshots.Snapshot) map[string]ModelGroup {
	groups := make(map[string]ModelGroup)

	for _, agent := range s.Agents {
		for name, holding := range agent.Models {
			group, ok := groups[name]
			if !ok {
				group.Colors = make(map[string]int)
			}
			group.TotalQuantity += holding.Quantity
			group.AgentCount++
			for color, n := range holding.Colors {
				group.Colors[color] += n
			}
			groups[name] = group
		}
	}

	return groups
}
