package usecase

import (
	"github.com/nirik/fas/internal/domain"
)

// GroupGraph is a snapshot of the prerequisite forest indexed by group id.
type GroupGraph struct {
	prerequisite map[int64]int64
	names        map[int64]string
	ids          map[string]int64
}

func NewGroupGraph(groups []domain.Group) *GroupGraph {
	g := &GroupGraph{
		prerequisite: make(map[int64]int64, len(groups)),
		names:        make(map[int64]string, len(groups)),
		ids:          make(map[string]int64, len(groups)),
	}
	for _, group := range groups {
		g.names[group.ID] = group.Name
		g.ids[group.Name] = group.ID
		if group.PrerequisiteID != nil {
			g.prerequisite[group.ID] = *group.PrerequisiteID
		}
	}
	return g
}

// Chain returns groupID followed by its prerequisites, nearest first.
// A chain that revisits a group yields a GraphCycleError.
func (g *GroupGraph) Chain(groupID int64) ([]int64, error) {
	visited := make(map[int64]struct{})
	chain := []int64{}

	current := groupID
	for {
		if _, seen := visited[current]; seen {
			return chain, domain.GraphCycleError{GroupID: current}
		}
		visited[current] = struct{}{}
		chain = append(chain, current)

		next, ok := g.prerequisite[current]
		if !ok {
			return chain, nil
		}
		current = next
	}
}

// DependsOn reports whether groupID is one of the named groups or has one of
// them somewhere in its prerequisite chain.
func (g *GroupGraph) DependsOn(groupID int64, names ...string) (bool, error) {
	targets := make(map[int64]struct{}, len(names))
	for _, name := range names {
		if id, ok := g.ids[name]; ok {
			targets[id] = struct{}{}
		}
	}
	if len(targets) == 0 {
		return false, nil
	}

	chain, err := g.Chain(groupID)
	for _, id := range chain {
		if _, ok := targets[id]; ok {
			return true, nil
		}
	}
	return false, err
}

// IsClaDependent reports whether groupID is the CLA group, the CLA meta group,
// or requires either of them through its prerequisite chain.
func (g *GroupGraph) IsClaDependent(groupID int64, config domain.Config) (bool, error) {
	return g.DependsOn(groupID, config.ClaGroup, config.ClaMetaGroup)
}

// WouldCycle reports whether making prerequisiteID the prerequisite of
// groupID closes a loop.
func (g *GroupGraph) WouldCycle(groupID, prerequisiteID int64) bool {
	if groupID == prerequisiteID {
		return true
	}
	chain, err := g.Chain(prerequisiteID)
	if err != nil {
		return true
	}
	for _, id := range chain {
		if id == groupID {
			return true
		}
	}
	return false
}

func (g *GroupGraph) Name(groupID int64) string {
	return g.names[groupID]
}
