// Package registry keeps the boats known to the host, addressed either by
// name or by a generation-checked handle, plus the named groups boats belong
// to.
package registry

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

var (
	ErrEmptyName     = errors.New("boat name is empty")
	ErrDuplicateName = errors.New("boat name already registered")
	ErrNotFound      = errors.New("boat not found")
)

// Handle addresses a boat slot. The zero Handle is never valid.
type Handle uint64

func makeHandle(index int, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(index+1))
}

func (h Handle) split() (int, uint32) {
	return int(uint32(h)) - 1, uint32(h >> 32)
}

// Boat is the per-boat state carried between steps.
type Boat struct {
	Name       string
	Type       int32
	SailArea   float64
	SpeedAhead float64
	SpeedAbeam float64
	Heel       float64
}

// Entry pairs a boat with its handle.
type Entry struct {
	Handle Handle
	Boat   Boat
}

type slot struct {
	gen  uint32
	used bool
	boat Boat
}

// Registry is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	slots  []slot
	free   []int
	byName map[string]int

	// group name -> boat name -> alt name (nil when absent)
	groups map[string]map[string]*string
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		byName: make(map[string]int),
		groups: make(map[string]map[string]*string),
	}
}

// Add registers a boat under name and returns its handle.
func (r *Registry) Add(name string, b Boat) (Handle, error) {
	if name == "" {
		return 0, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[name]; ok {
		return 0, ErrDuplicateName
	}

	b.Name = name

	var idx int
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		idx = len(r.slots)
		r.slots = append(r.slots, slot{})
	}

	s := &r.slots[idx]
	s.used = true
	s.boat = b
	r.byName[name] = idx

	return makeHandle(idx, s.gen), nil
}

// Get returns the boat behind h.
func (r *Registry) Get(h Handle) (Boat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.slotLocked(h)
	if !ok {
		return Boat{}, ErrNotFound
	}
	return s.boat, nil
}

// Lookup finds a boat by name.
func (r *Registry) Lookup(name string) (Handle, Boat, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byName[name]
	if !ok {
		return 0, Boat{}, false
	}
	s := &r.slots[idx]
	return makeHandle(idx, s.gen), s.boat, true
}

// Remove unregisters a boat and returns its last state. Handles to the boat
// become stale; its slot is reused by later adds.
func (r *Registry) Remove(name string) (Boat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.byName[name]
	if !ok {
		return Boat{}, ErrNotFound
	}

	s := &r.slots[idx]
	b := s.boat
	s.used = false
	s.boat = Boat{}
	s.gen++
	delete(r.byName, name)
	r.free = append(r.free, idx)

	return b, nil
}

// Update applies fn to the boat behind h under the write lock. fn must not
// call back into the registry. The name cannot be changed.
func (r *Registry) Update(h Handle, fn func(*Boat)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slotLocked(h)
	if !ok {
		return ErrNotFound
	}
	name := s.boat.Name
	fn(&s.boat)
	s.boat.Name = name
	return nil
}

// All returns a snapshot of every registered boat ordered by handle index.
func (r *Registry) All() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.byName))
	for i := range r.slots {
		s := &r.slots[i]
		if !s.used {
			continue
		}
		out = append(out, Entry{Handle: makeHandle(i, s.gen), Boat: s.boat})
	}
	return out
}

// Len returns the number of registered boats.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

func (r *Registry) slotLocked(h Handle) (*slot, bool) {
	idx, gen := h.split()
	if idx < 0 || idx >= len(r.slots) {
		return nil, false
	}
	s := &r.slots[idx]
	if !s.used || s.gen != gen {
		return nil, false
	}
	return s, true
}

// AddToGroup puts boat into group, creating the group on first use. An
// existing member gets its alt name replaced. Reports whether the boat was
// not already a member.
func (r *Registry) AddToGroup(group, boat string, altName *string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.groups[group]
	if !ok {
		members = make(map[string]*string)
		r.groups[group] = members
	}

	_, existed := members[boat]
	if altName != nil {
		an := *altName
		altName = &an
	}
	members[boat] = altName
	return !existed
}

// RemoveFromGroup drops boat from group. A group left empty is deleted.
func (r *Registry) RemoveFromGroup(group, boat string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.groups[group]
	if !ok {
		return
	}
	delete(members, boat)
	if len(members) == 0 {
		delete(r.groups, group)
	}
}

// GroupMembership lists the members of group, one "boat,altname\n" line each,
// with "!" standing in for a missing alt name. Lines are sorted by boat name.
// An unknown group yields an empty string.
func (r *Registry) GroupMembership(group string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.groups[group]
	if !ok {
		return ""
	}

	names := make([]string, 0, len(members))
	for name := range members {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(name)
		sb.WriteByte(',')
		if an := members[name]; an != nil {
			sb.WriteString(*an)
		} else {
			sb.WriteByte('!')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// GroupCount returns the number of non-empty groups.
func (r *Registry) GroupCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups)
}
