package snapshots

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// newID builds "<unix-millis>_<uuid>". The uuid keeps ids unique for
// snapshots created in the same millisecond.
func newID(now time.Time) string {
	return fmt.Sprintf("%d_%s", now.UnixMilli(), uuid.NewString())
}

// buildSnapshot validates the input and assembles a snapshot with computed metadata.
// Inputs are deep-copied; the caller may keep mutating its own values.
func buildSnapshot(
	now time.Time,
	assignmentData AssignmentData,
	settings Settings,
	agents []Agent,
	extraMetadata map[string]string,
) (Snapshot, error) {
	if err := validate(assignmentData, agents); err != nil {
		return Snapshot{}, err
	}

	snapshot := Snapshot{
		ID:             newID(now),
		Timestamp:      now.UTC(),
		AssignmentData: assignmentData,
		Settings:       settings,
		Agents:         agents,
		Metadata:       Metadata{Extra: extraMetadata},
	}
	snapshot = snapshot.Clone()
	snapshot.normalize()

	snapshot.Metadata.TotalAgents = len(snapshot.Agents)
	snapshot.Metadata.TotalModels = len(snapshot.AssignmentData.Models)
	for _, totals := range snapshot.AssignmentData.Models {
		snapshot.Metadata.TotalAssigned += totals.AssignedQuantity
		snapshot.Metadata.TotalQuantity += totals.TotalQuantity
	}

	return snapshot, nil
}

func validate(assignmentData AssignmentData, agents []Agent) error {
	problems := &MalformedSnapshotError{}

	for name, totals := range assignmentData.Models {
		if name == "" {
			problems.add("assignment model with empty name")
		}
		if totals.TotalQuantity < 0 || totals.AssignedQuantity < 0 {
			problems.add("assignment model %q has negative quantity", name)
		}
	}

	seen := make(map[string]bool, len(agents))
	for i, agent := range agents {
		if agent.AgentID == "" {
			problems.add("agents[%d] has empty agent_id", i)
		} else if seen[agent.AgentID] {
			problems.add("agents[%d] duplicates agent_id %q", i, agent.AgentID)
		}
		seen[agent.AgentID] = true

		if agent.Quantity < 0 {
			problems.add("agent %q has negative quantity %d", agent.AgentID, agent.Quantity)
		}
		for model, holding := range agent.Models {
			if model == "" {
				problems.add("agent %q holds a model with empty name", agent.AgentID)
			}
			if holding.Quantity < 0 {
				problems.add("agent %q has negative quantity for model %q", agent.AgentID, model)
			}
			for color, n := range holding.Colors {
				if n < 0 {
					problems.add("agent %q has negative count for %s/%s", agent.AgentID, model, color)
				}
			}
		}
	}

	if len(problems.Problems) > 0 {
		return problems
	}
	return nil
}
