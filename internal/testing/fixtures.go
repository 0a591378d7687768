package testing

import (
	"sort"
	"time"

	"github.com/aristath/stockroom/internal/modules/snapshots"
)

// BaseTime is a fixed instant fixtures are stamped relative to
var BaseTime = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// NewAgent builds an agent whose model and total quantities are the sums of the
// given color counts (model -> color -> count).
func NewAgent(id, office, department string, models map[string]map[string]int) snapshots.Agent {
	agent := snapshots.Agent{
		AgentID:    id,
		Target:     id,
		Office:     office,
		Department: department,
		Models:     make(map[string]snapshots.ModelHolding, len(models)),
	}

	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		holding := snapshots.ModelHolding{Colors: make(map[string]int, len(models[name]))}
		for color, n := range models[name] {
			holding.Colors[color] = n
			holding.Quantity += n
		}
		agent.Models[name] = holding
		agent.Quantity += holding.Quantity
	}

	return agent
}

// NewSnapshot builds a snapshot directly, bypassing the store, with metadata
// derived from the agents.
func NewSnapshot(id string, ts time.Time, agents ...snapshots.Agent) snapshots.Snapshot {
	models := map[string]snapshots.ModelTotals{}
	for _, agent := range agents {
		for name, holding := range agent.Models {
			totals := models[name]
			totals.AssignedQuantity += holding.Quantity
			totals.TotalQuantity += holding.Quantity
			models[name] = totals
		}
	}

	snapshot := snapshots.Snapshot{
		ID:             id,
		Timestamp:      ts,
		AssignmentData: snapshots.AssignmentData{Models: models},
		Settings: snapshots.Settings{Ratios: snapshots.Ratios{
			TurnoverRate:       0.4,
			StoreCount:         0.3,
			RemainingInventory: 0.2,
			SalesVolume:        0.1,
		}},
		Agents: agents,
	}
	if snapshot.Agents == nil {
		snapshot.Agents = []snapshots.Agent{}
	}

	snapshot.Metadata.TotalAgents = len(agents)
	snapshot.Metadata.TotalModels = len(models)
	for _, totals := range models {
		snapshot.Metadata.TotalAssigned += totals.AssignedQuantity
		snapshot.Metadata.TotalQuantity += totals.TotalQuantity
	}

	return snapshot
}
