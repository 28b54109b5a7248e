package registry

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/catbus/internal/model"
)

func seeded(t *testing.T) *Registry {
	t.Helper()
	r, err := New(
		model.Proposal{ID: 1, Name: "a", Description: "x", Votes: 12},
		model.Proposal{ID: 2, Name: "b", Description: "y", Votes: 7},
		model.Proposal{ID: 3, Name: "c", Description: "z", Votes: 5},
	)
	require.NoError(t, err)
	return r
}

func ids(ps []model.Proposal) []int {
	out := make([]int, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestSubmitOnEmptyRegistry(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	p, err := r.Submit("A", "B")
	require.NoError(t, err)
	assert.Equal(t, model.Proposal{ID: 1, Name: "A", Description: "B", Votes: 0}, p)
	assert.Equal(t, []model.Proposal{{ID: 1, Name: "A", Description: "B"}}, r.List())
}

func TestSubmitAssignsSequentialIDs(t *testing.T) {
	r := seeded(t)
	for want := 4; want <= 10; want++ {
		p, err := r.Submit("name", "desc")
		require.NoError(t, err)
		assert.Equal(t, want, p.ID)
		assert.Zero(t, p.Votes)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, ids(r.List()))
}

func TestSubmitStartsAfterMaxSeedID(t *testing.T) {
	r, err := New(
		model.Proposal{ID: 9, Name: "a", Description: "x"},
		model.Proposal{ID: 4, Name: "b", Description: "y"},
	)
	require.NoError(t, err)

	p, err := r.Submit("c", "z")
	require.NoError(t, err)
	assert.Equal(t, 10, p.ID)
	assert.Equal(t, []int{9, 4, 10}, ids(r.List()))
}

func TestSubmitTrimsInput(t *testing.T) {
	r, _ := New()
	p, err := r.Submit("  Nap Icons \n", "\tcats ")
	require.NoError(t, err)
	assert.Equal(t, "Nap Icons", p.Name)
	assert.Equal(t, "cats", p.Description)
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name, pname, desc, field string
	}{
		{"empty name", "", "x", "name"},
		{"empty description", "x", "", "description"},
		{"both empty", "", "", "name"},
		{"whitespace name", "   ", "x", "name"},
		{"whitespace description", "x", " \t\n", "description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := seeded(t)
			before := r.List()

			_, err := r.Submit(tt.pname, tt.desc)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, before, r.List())

			// a failed submit must not burn an id
			p, err := r.Submit("ok", "ok")
			require.NoError(t, err)
			assert.Equal(t, 4, p.ID)
		})
	}
}

func TestUpvoteIncrementsOnlyTarget(t *testing.T) {
	r := seeded(t)
	for i := 0; i < 3; i++ {
		_, err := r.Upvote(2)
		require.NoError(t, err)
	}

	got := r.List()
	assert.Equal(t, []int{1, 2, 3}, ids(got))
	assert.Equal(t, 12, got[0].Votes)
	assert.Equal(t, 10, got[1].Votes)
	assert.Equal(t, 5, got[2].Votes)
}

func TestUpvoteReturnsUpdatedEntry(t *testing.T) {
	r := seeded(t)
	p, err := r.Upvote(3)
	require.NoError(t, err)
	assert.Equal(t, model.Proposal{ID: 3, Name: "c", Description: "z", Votes: 6}, p)
}

func TestUpvoteUnknownID(t *testing.T) {
	r := seeded(t)
	before := r.List()

	for _, id := range []int{0, -1, 4, 1000} {
		_, err := r.Upvote(id)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
		var nf *NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, id, nf.ID)
	}
	assert.Equal(t, before, r.List())
}

func TestUpvoteDoesNotReorder(t *testing.T) {
	r := seeded(t)
	for i := 0; i < 20; i++ {
		_, err := r.Upvote(3)
		require.NoError(t, err)
	}
	assert.Equal(t, []int{1, 2, 3}, ids(r.List()))
}

func TestListIsASnapshot(t *testing.T) {
	r := seeded(t)
	got := r.List()
	got[0].Votes = 999
	got[0].Name = "changed"

	p, err := r.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 12, p.Votes)
	assert.Equal(t, "a", p.Name)
}

func TestGet(t *testing.T) {
	r := seeded(t)
	p, err := r.Get(2)
	require.NoError(t, err)
	assert.Equal(t, "b", p.Name)

	_, err = r.Get(42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTotals(t *testing.T) {
	r := seeded(t)
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, 24, r.TotalVotes())
}

func TestNewRejectsBadSeed(t *testing.T) {
	tests := []struct {
		name string
		seed []model.Proposal
	}{
		{"zero id", []model.Proposal{{ID: 0, Name: "a", Description: "b"}}},
		{"negative votes", []model.Proposal{{ID: 1, Name: "a", Description: "b", Votes: -1}}},
		{"missing name", []model.Proposal{{ID: 1, Description: "b"}}},
		{"missing description", []model.Proposal{{ID: 1, Name: "a"}}},
		{"duplicate id", []model.Proposal{
			{ID: 1, Name: "a", Description: "b"},
			{ID: 1, Name: "c", Description: "d"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.seed...)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestNewDefault(t *testing.T) {
	r := NewDefault()
	assert.Equal(t, model.DefaultSeed(), r.List())
}

func TestSubscribe(t *testing.T) {
	r := seeded(t)
	var got []Event
	unsubscribe := r.Subscribe(func(ev Event) {
		// reading from inside a callback must not deadlock
		_ = r.List()
		got = append(got, ev)
	})

	_, _ = r.Upvote(1)
	_, _ = r.Submit("d", "w")
	_, _ = r.Upvote(99)
	_, _ = r.Submit("", "")

	require.Len(t, got, 2)
	assert.Equal(t, EventUpvoted, got[0].Kind)
	assert.Equal(t, 13, got[0].Proposal.Votes)
	assert.Equal(t, EventSubmitted, got[1].Kind)
	assert.Equal(t, 4, got[1].Proposal.ID)

	unsubscribe()
	unsubscribe()
	_, _ = r.Upvote(1)
	assert.Len(t, got, 2)
}

func TestConcurrentMutations(t *testing.T) {
	r := seeded(t)
	const workers = 16
	const each = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				_, _ = r.Upvote(1)
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				_, _ = r.Submit("n", "d")
				_ = r.List()
			}
		}()
	}
	wg.Wait()

	p, err := r.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 12+workers*each, p.Votes)

	list := r.List()
	require.Len(t, list, 3+workers*each)
	seen := make(map[int]bool, len(list))
	for i, p := range list {
		assert.False(t, seen[p.ID], "duplicate id %d", p.ID)
		seen[p.ID] = true
		if i >= 3 {
			assert.Equal(t, i+1, p.ID)
		}
	}
}
