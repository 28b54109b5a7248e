// Package registry holds the ordered, in-memory proposal list and its vote counts.
package registry

import (
	"strings"
	"sync"

	"github.com/idilsaglam/catbus/internal/model"
)

// EventKind names a committed mutation.
type EventKind string

const (
	EventSubmitted EventKind = "submitted"
	EventUpvoted   EventKind = "upvoted"
)

// Event is delivered to subscribers after a mutation has been applied.
type Event struct {
	Kind     EventKind
	Proposal model.Proposal
}

// Registry owns the proposals in insertion order. The zero value is not usable;
// build one with New or NewDefault.
type Registry struct {
	mu    sync.RWMutex
	items []model.Proposal
	index map[int]int // id -> position in items
	maxID int

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

// New creates a registry seeded with the given proposals, kept in the given order.
func New(seed ...model.Proposal) (*Registry, error) {
	r := &Registry{
		items: make([]model.Proposal, 0, len(seed)),
		index: make(map[int]int, len(seed)),
		subs:  make(map[int]func(Event)),
	}
	for _, p := range seed {
		if err := validateSeed(p); err != nil {
			return nil, err
		}
		if _, dup := r.index[p.ID]; dup {
			return nil, &ValidationError{Field: "id", Reason: "duplicate seed id"}
		}
		p.Name = strings.TrimSpace(p.Name)
		p.Description = strings.TrimSpace(p.Description)
		r.index[p.ID] = len(r.items)
		r.items = append(r.items, p)
		if p.ID > r.maxID {
			r.maxID = p.ID
		}
	}
	return r, nil
}

// NewDefault creates a registry seeded with model.DefaultSeed.
func NewDefault() *Registry {
	r, err := New(model.DefaultSeed()...)
	if err != nil {
		panic("registry: invalid default seed: " + err.Error())
	}
	return r
}

func validateSeed(p model.Proposal) error {
	switch {
	case p.ID <= 0:
		return &ValidationError{Field: "id", Reason: "must be positive"}
	case p.Votes < 0:
		return &ValidationError{Field: "votes", Reason: "must not be negative"}
	case strings.TrimSpace(p.Name) == "":
		return &ValidationError{Field: "name", Reason: "required"}
	case strings.TrimSpace(p.Description) == "":
		return &ValidationError{Field: "description", Reason: "required"}
	}
	return nil
}

// List returns a snapshot of all proposals in insertion order.
func (r *Registry) List() []model.Proposal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Proposal, len(r.items))
	copy(out, r.items)
	return out
}

// Get returns the proposal with the given id.
func (r *Registry) Get(id int) (model.Proposal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return model.Proposal{}, &NotFoundError{ID: id}
	}
	return r.items[i], nil
}

// Len is the number of proposals.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// TotalVotes sums the votes of every proposal.
func (r *Registry) TotalVotes() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	for _, p := range r.items {
		total += p.Votes
	}
	return total
}

// Submit appends a new proposal with zero votes. Name and description are
// trimmed and must both be non-empty.
func (r *Registry) Submit(name, description string) (model.Proposal, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" {
		return model.Proposal{}, &ValidationError{Field: "name", Reason: "required"}
	}
	if description == "" {
		return model.Proposal{}, &ValidationError{Field: "description", Reason: "required"}
	}

	r.mu.Lock()
	r.maxID++
	p := model.Proposal{ID: r.maxID, Name: name, Description: description}
	r.index[p.ID] = len(r.items)
	r.items = append(r.items, p)
	r.mu.Unlock()

	r.publish(Event{Kind: EventSubmitted, Proposal: p})
	return p, nil
}

// Upvote adds exactly one vote to the proposal with the given id.
func (r *Registry) Upvote(id int) (model.Proposal, error) {
	r.mu.Lock()
	i, ok := r.index[id]
	if !ok {
		r.mu.Unlock()
		return model.Proposal{}, &NotFoundError{ID: id}
	}
	r.items[i].Votes++
	p := r.items[i]
	r.mu.Unlock()

	r.publish(Event{Kind: EventUpvoted, Proposal: p})
	return p, nil
}

// Subscribe registers fn for every committed mutation. Callbacks run on the
// mutating goroutine after the registry lock is released, so they may read the
// registry. The returned func removes the subscription.
func (r *Registry) Subscribe(fn func(Event)) (unsubscribe func()) {
	r.subMu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.subMu.Lock()
			delete(r.subs, id)
			r.subMu.Unlock()
		})
	}
}

func (r *Registry) publish(ev Event) {
	r.subMu.Lock()
	fns := make([]func(Event), 0, len(r.subs))
	for id := 0; id < r.nextSub; id++ {
		if fn, ok := r.subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	r.subMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
