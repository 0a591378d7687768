// Package snapshots records the outcome of assignment runs and keeps a bounded,
// most-recent-first history of them.
package snapshots

import "time"

// ModelTotals is the stock position of one model when the assignment ran
type ModelTotals struct {
	TotalQuantity    int `json:"total_quantity"`
	AssignedQuantity int `json:"assigned_quantity"`
}

// AssignmentData is the model-level outcome of an assignment run
type AssignmentData struct {
	Models map[string]ModelTotals `json:"models"`
}

// Ratios are the weighting factors the assignment was produced with.
// The struct is comparable so identical settings can be counted as one.
type Ratios struct {
	TurnoverRate       float64 `json:"turnover_rate"`
	StoreCount         float64 `json:"store_count"`
	RemainingInventory float64 `json:"remaining_inventory"`
	SalesVolume        float64 `json:"sales_volume"`
}

// Settings holds the assignment settings that were in effect
type Settings struct {
	Ratios Ratios `json:"ratios"`
}

// ModelHolding is what one agent received of one model
type ModelHolding struct {
	Quantity int            `json:"quantity"`
	Colors   map[string]int `json:"colors"`
}

// Agent is a salesperson (or office/department target) and what they were assigned
type Agent struct {
	AgentID    string                  `json:"agent_id"`
	Target     string                  `json:"target"`
	Office     string                  `json:"office"`
	Department string                  `json:"department"`
	Quantity   int                     `json:"quantity"`
	Models     map[string]ModelHolding `json:"models"`
}

// Metadata holds totals computed once, when the snapshot is created
type Metadata struct {
	TotalAgents   int               `json:"total_agents"`
	TotalModels   int               `json:"total_models"`
	TotalAssigned int               `json:"total_assigned"`
	TotalQuantity int               `json:"total_quantity"`
	Extra         map[string]string `json:"extra,omitempty"`
}

// Snapshot is the immutable record of one assignment run.
// Values handed out by the Store are deep copies.
type Snapshot struct {
	ID             string         `json:"id"`
	Timestamp      time.Time      `json:"timestamp"`
	AssignmentData AssignmentData `json:"assignment_data"`
	Settings       Settings       `json:"settings"`
	Agents         []Agent        `json:"agents"`
	Metadata       Metadata       `json:"metadata"`
}

// Clone returns a deep copy of the snapshot
func (s Snapshot) Clone() Snapshot {
	out := s

	out.AssignmentData.Models = make(map[string]ModelTotals, len(s.AssignmentData.Models))
	for name, totals := range s.AssignmentData.Models {
		out.AssignmentData.Models[name] = totals
	}

	out.Agents = make([]Agent, len(s.Agents))
	for i, agent := range s.Agents {
		out.Agents[i] = agent.Clone()
	}

	if s.Metadata.Extra != nil {
		out.Metadata.Extra = make(map[string]string, len(s.Metadata.Extra))
		for k, v := range s.Metadata.Extra {
			out.Metadata.Extra[k] = v
		}
	}

	return out
}

// Clone returns a deep copy of the agent
func (a Agent) Clone() Agent {
	out := a
	out.Models = make(map[string]ModelHolding, len(a.Models))
	for name, holding := range a.Models {
		colors := make(map[string]int, len(holding.Colors))
		for color, n := range holding.Colors {
			colors[color] = n
		}
		out.Models[name] = ModelHolding{Quantity: holding.Quantity, Colors: colors}
	}
	return out
}

// normalize replaces absent collections with empty ones so folds never see nil
func (s *Snapshot) normalize() {
	if s.AssignmentData.Models == nil {
		s.AssignmentData.Models = map[string]ModelTotals{}
	}
	if s.Agents == nil {
		s.Agents = []Agent{}
	}
	for i := range s.Agents {
		agent := &s.Agents[i]
		if agent.Models == nil {
			agent.Models = map[string]ModelHolding{}
		}
		for name, holding := range agent.Models {
			if holding.Colors == nil {
				holding.Colors = map[string]int{}
				agent.Models[name] = holding
			}
		}
	}
}
