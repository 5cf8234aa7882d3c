package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryValid(t *testing.T) {
	for _, cat := range Categories {
		assert.True(t, cat.Valid(), "category %q should be valid", cat)
	}
	assert.False(t, Category("databases").Valid())
	assert.False(t, Category("").Valid())
}

func TestMaxPriority(t *testing.T) {
	assert.Equal(t, PriorityHigh, MaxPriority(PriorityLow, PriorityHigh))
	assert.Equal(t, PriorityHigh, MaxPriority(PriorityHigh, PriorityLow))
	assert.Equal(t, PriorityMedium, MaxPriority(PriorityMedium, PriorityLow))
	assert.Equal(t, PriorityLow, MaxPriority(PriorityLow, PriorityLow))

	// Commutative and associative over all values, so edge merging cannot
	// depend on observation order.
	all := []Priority{PriorityLow, PriorityMedium, PriorityHigh}
	for _, a := range all {
		for _, b := range all {
			assert.Equal(t, MaxPriority(a, b), MaxPriority(b, a))
			for _, c := range all {
				assert.Equal(t,
					MaxPriority(MaxPriority(a, b), c),
					MaxPriority(a, MaxPriority(b, c)))
			}
		}
	}
}

func TestAddEvidence(t *testing.T) {
	c := &Component{Category: CategoryService, Name: "user_service"}

	c.AddEvidence("services/user_service.py")
	c.AddEvidence("api/user_service.py")
	c.AddEvidence("services/user_service.py") // duplicate

	assert.Equal(t, []string{"api/user_service.py", "services/user_service.py"}, c.Evidence)
	assert.Equal(t, 2, c.Count)
}

func TestAddEvidenceOrderIndependent(t *testing.T) {
	a := &Component{Category: CategoryService, Name: "s"}
	b := &Component{Category: CategoryService, Name: "s"}

	paths := []string{"c.py", "a.py", "b.py"}
	for _, p := range paths {
		a.AddEvidence(p)
	}
	for i := len(paths) - 1; i >= 0; i-- {
		b.AddEvidence(paths[i])
	}

	assert.Equal(t, a.Evidence, b.Evidence)
	assert.Equal(t, a.Count, b.Count)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "user-service", NormalizeName("user_service"))
	assert.Equal(t, "user-service", NormalizeName("User.Service"))
	assert.Equal(t, "userservice", NormalizeName("UserService"))
}

func edge(from, to string, p Priority) Edge {
	return Edge{
		From:     ComponentRef{Category: CategoryService, Name: from},
		To:       ComponentRef{Category: CategoryService, Name: to},
		Kind:     KindServiceToService,
		Priority: p,
	}
}

func TestEdgeSetRejectsSelfLoops(t *testing.T) {
	s := NewEdgeSet()
	assert.False(t, s.Add(edge("user", "user", PriorityHigh)))
	assert.Equal(t, 0, s.Len())
}

func TestEdgeSetMergesMaxPriority(t *testing.T) {
	s := NewEdgeSet()
	require.True(t, s.Add(edge("user", "auth", PriorityLow)))
	require.True(t, s.Add(edge("user", "auth", PriorityHigh)))
	require.True(t, s.Add(edge("user", "auth", PriorityMedium)))

	edges := s.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, PriorityHigh, edges[0].Priority)
}

func TestEdgeSetOrdering(t *testing.T) {
	s := NewEdgeSet()
	s.Add(edge("zeta", "auth", PriorityLow))
	s.Add(edge("auth", "zeta", PriorityLow))
	s.Add(edge("auth", "billing", PriorityLow))

	edges := s.Edges()
	require.Len(t, edges, 3)
	assert.Equal(t, "auth", edges[0].From.Name)
	assert.Equal(t, "billing", edges[0].To.Name)
	assert.Equal(t, "zeta", edges[1].To.Name)
	assert.Equal(t, "zeta", edges[2].From.Name)
}

func TestEdgeSetMergeMonotonic(t *testing.T) {
	a := NewEdgeSet()
	a.Add(edge("user", "auth", PriorityMedium))

	b := NewEdgeSet()
	b.Add(edge("user", "auth", PriorityLow))
	b.Add(edge("billing", "auth", PriorityHigh))

	a.Merge(b)

	edges := a.Edges()
	require.Len(t, edges, 2)
	for _, e := range edges {
		if e.From.Name == "user" {
			// Lower-priority duplicate must never downgrade.
			assert.Equal(t, PriorityMedium, e.Priority)
		}
	}
	assert.True(t, a.Contains(
		ComponentRef{Category: CategoryService, Name: "billing"},
		ComponentRef{Category: CategoryService, Name: "auth"},
		KindServiceToService))
}
