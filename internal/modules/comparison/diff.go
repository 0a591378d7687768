package comparison

import (
	"fmt"

	"github.com/aristath/stockroom/internal/modules/snapshots"
)

// Dimension is the axis two snapshots are compared along
type Dimension string

const (
	DimensionAgent      Dimension = "agent"
	DimensionOffice     Dimension = "office"
	DimensionDepartment Dimension = "department"
	DimensionModel      Dimension = "model"
	// DimensionOverall compares along all four dimensions at once
	DimensionOverall Dimension = "overall"
)

// Dimensions lists the single dimensions in the order overall comparisons run them
var Dimensions = []Dimension{DimensionAgent, DimensionOffice, DimensionDepartment, DimensionModel}

// ParseDimension accepts the dimension names; empty means overall
func ParseDimension(name string) (Dimension, error) {
	switch d := Dimension(name); d {
	case "":
		return DimensionOverall, nil
	case DimensionAgent, DimensionOffice, DimensionDepartment, DimensionModel, DimensionOverall:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDimension, name)
	}
}

// Status is how a key changed between two snapshots
type Status string

const (
	StatusAdded     Status = "added"
	StatusRemoved   Status = "removed"
	StatusChanged   Status = "changed"
	StatusUnchanged Status = "unchanged"
)

// Figures are the tracked scalars of one key. Agents track quantity and model count,
// groups track quantity and agent count.
type Figures struct {
	Quantity   int `json:"quantity"`
	AgentCount int `json:"agent_count,omitempty"`
	ModelCount int `json:"model_count,omitempty"`
}

func (f Figures) sub(o Figures) Figures {
	return Figures{
		Quantity:   f.Quantity - o.Quantity,
		AgentCount: f.AgentCount - o.AgentCount,
		ModelCount: f.ModelCount - o.ModelCount,
	}
}

func (f Figures) neg() Figures {
	return Figures{}.sub(f)
}

// Entry is the classification of one key.
// NestedChange is the per-model (agent dimension) or per-color (model dimension)
// delta and is only filled for changed entries.
type Entry struct {
	Status       Status         `json:"status"`
	Before       *Figures       `json:"before,omitempty"`
	After        *Figures       `json:"after,omitempty"`
	Change       Figures        `json:"change"`
	NestedChange map[string]int `json:"nested_change,omitempty"`
}

// ClassificationSummary counts entries per status
type ClassificationSummary struct {
	Added     int `json:"added"`
	Removed   int `json:"removed"`
	Changed   int `json:"changed"`
	Unchanged int `json:"unchanged"`
}

// Total is the number of classified keys
func (c ClassificationSummary) Total() int {
	return c.Added + c.Removed + c.Changed + c.Unchanged
}

// DimensionDiff is the diff of two snapshots along one dimension
type DimensionDiff struct {
	Entries map[string]Entry      `json:"entries"`
	Summary ClassificationSummary `json:"summary"`
}

func (d DimensionDiff) clone() DimensionDiff {
	out := DimensionDiff{Summary: d.Summary}
	if d.Entries == nil {
		return out
	}
	out.Entries = make(map[string]Entry, len(d.Entries))
	for key, entry := range d.Entries {
		if entry.Before != nil {
			before := *entry.Before
			entry.Before = &before
		}
		if entry.After != nil {
			after := *entry.After
			entry.After = &after
		}
		if entry.NestedChange != nil {
			nested := make(map[string]int, len(entry.NestedChange))
			for k, v := range entry.NestedChange {
				nested[k] = v
			}
			entry.NestedChange = nested
		}
		out.Entries[key] = entry
	}
	return out
}

// viewItem is one key of a per-dimension view
type viewItem struct {
	figures Figures
	nested  map[string]int
}

// Diff compares two snapshots along a single dimension
func Diff(s1, s2 snapshots.Snapshot, dim Dimension) (DimensionDiff, error) {
	viewOf, err := viewFunc(dim)
	if err != nil {
		return DimensionDiff{}, err
	}
	return classify(viewOf(s1), viewOf(s2)), nil
}

// CompareOverall diffs along every single dimension
func CompareOverall(s1, s2 snapshots.Snapshot) map[Dimension]DimensionDiff {
	out := make(map[Dimension]DimensionDiff, len(Dimensions))
	for _, dim := range Dimensions {
		viewOf, _ := viewFunc(dim)
		out[dim] = classify(viewOf(s1), viewOf(s2))
	}
	return out
}

func viewFunc(dim Dimension) (func(snapshots.Snapshot) map[string]viewItem, error) {
	switch dim {
	case DimensionAgent:
		return agentView, nil
	case DimensionOffice:
		return func(s snapshots.Snapshot) map[string]viewItem { return groupView(GroupByOffice(s)) }, nil
	case DimensionDepartment:
		return func(s snapshots.Snapshot) map[string]viewItem { return groupView(GroupByDepartment(s)) }, nil
	case DimensionModel:
		return modelView, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDimension, dim)
	}
}

func agentView(s snapshots.Snapshot) map[string]viewItem {
	view := make(map[string]viewItem, len(s.Agents))
	for _, agent := range s.Agents {
		nested := make(map[string]int, len(agent.Models))
		for name, holding := range agent.Models {
			nested[name] = holding.Quantity
		}
		view[agent.AgentID] = viewItem{
			figures: Figures{Quantity: agent.Quantity, ModelCount: len(agent.Models)},
			nested:  nested,
		}
	}
	return view
}

func groupView(groups map[string]Group) map[string]viewItem {
	view := make(map[string]viewItem, len(groups))
	for key, group := range groups {
		view[key] = viewItem{figures: Figures{Quantity: group.TotalQuantity, AgentCount: group.AgentCount}}
	}
	return view
}

func modelView(s snapshots.Snapshot) map[string]viewItem {
	groups := GroupByModel(s)
	view := make(map[string]viewItem, len(groups))
	for key, group := range groups {
		view[key] = viewItem{
			figures: Figures{Quantity: group.TotalQuantity, AgentCount: group.AgentCount},
			nested:  group.Colors,
		}
	}
	return view
}

// classify assigns exactly one status to every key of the union of both views.
// Only the top-level figures decide between changed and unchanged.
func classify(view1, view2 map[string]viewItem) DimensionDiff {
	diff := DimensionDiff{Entries: make(map[string]Entry, len(view1)+len(view2))}

	for key, before := range view1 {
		b := before.figures
		after, ok := view2[key]
		if !ok {
			diff.Entries[key] = Entry{Status: StatusRemoved, Before: &b, Change: b.neg()}
			diff.Summary.Removed++
			continue
		}

		a := after.figures
		if a == b {
			diff.Entries[key] = Entry{Status: StatusUnchanged, Before: &b, After: &a}
			diff.Summary.Unchanged++
			continue
		}

		diff.Entries[key] = Entry{
			Status:       StatusChanged,
			Before:       &b,
			After:        &a,
			Change:       a.sub(b),
			NestedChange: nestedDelta(before.nested, after.nested),
		}
		diff.Summary.Changed++
	}

	for key, after := range view2 {
		if _, ok := view1[key]; ok {
			continue
		}
		a := after.figures
		diff.Entries[key] = Entry{Status: StatusAdded, After: &a, Change: a}
		diff.Summary.Added++
	}

	return diff
}

// nestedDelta is after-before over the union of keys; nil when neither side has nested values
func nestedDelta(before, after map[string]int) map[string]int {
	if len(before) == 0 && len(after) == 0 {
		return nil
	}
	delta := make(map[string]int, len(after))
	for key, n := range after {
		delta[key] = n - before[key]
	}
	for key, n := range before {
		if _, ok := after[key]; !ok {
			delta[key] = -n
		}
	}
	return delta
}
