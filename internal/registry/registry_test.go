package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestRegistry_New(t *testing.T) {
	r := New()

	require.NotNil(t, r)
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.All())
	assert.Equal(t, 0, r.GroupCount())
}

func TestRegistry_AddAndGet(t *testing.T) {
	r := New()

	h, err := r.Add("Kestrel", Boat{Type: 0, SailArea: 30, SpeedAhead: 1.5})
	require.NoError(t, err)
	assert.NotZero(t, h)

	got, err := r.Get(h)
	require.NoError(t, err)
	assert.Equal(t, "Kestrel", got.Name)
	assert.Equal(t, 30.0, got.SailArea)
	assert.Equal(t, 1.5, got.SpeedAhead)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_Add_Errors(t *testing.T) {
	r := New()

	_, err := r.Add("", Boat{})
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = r.Add("Kestrel", Boat{})
	require.NoError(t, err)

	_, err = r.Add("Kestrel", Boat{SailArea: 99})
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, b, ok := r.Lookup("Kestrel")
	require.True(t, ok)
	assert.Equal(t, 0.0, b.SailArea, "duplicate add must not overwrite")
}

func TestRegistry_Lookup(t *testing.T) {
	r := New()
	h, err := r.Add("Kestrel", Boat{SailArea: 12})
	require.NoError(t, err)

	got, b, ok := r.Lookup("Kestrel")
	require.True(t, ok)
	assert.Equal(t, h, got)
	assert.Equal(t, 12.0, b.SailArea)

	_, _, ok = r.Lookup("nonexistent")
	assert.False(t, ok)
}

func TestRegistry_Remove(t *testing.T) {
	r := New()
	h, err := r.Add("Kestrel", Boat{SailArea: 12})
	require.NoError(t, err)

	b, err := r.Remove("Kestrel")
	require.NoError(t, err)
	assert.Equal(t, "Kestrel", b.Name)
	assert.Equal(t, 12.0, b.SailArea)
	assert.Equal(t, 0, r.Len())

	_, err = r.Get(h)
	assert.ErrorIs(t, err, ErrNotFound, "handle goes stale after remove")

	_, err = r.Remove("Kestrel")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_SlotReuseKeepsOldHandleStale(t *testing.T) {
	r := New()
	old, err := r.Add("A", Boat{})
	require.NoError(t, err)
	_, err = r.Remove("A")
	require.NoError(t, err)

	reused, err := r.Add("B", Boat{SailArea: 7})
	require.NoError(t, err)
	assert.NotEqual(t, old, reused)

	_, err = r.Get(old)
	assert.ErrorIs(t, err, ErrNotFound)

	b, err := r.Get(reused)
	require.NoError(t, err)
	assert.Equal(t, "B", b.Name)
	assert.Len(t, r.slots, 1, "freed slot is reused")
}

func TestRegistry_Get_InvalidHandle(t *testing.T) {
	r := New()
	_, err := r.Get(0)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.Get(makeHandle(42, 0))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistry_Update(t *testing.T) {
	r := New()
	h, err := r.Add("Kestrel", Boat{SailArea: 20})
	require.NoError(t, err)

	err = r.Update(h, func(b *Boat) {
		b.SpeedAhead = 3.2
		b.SpeedAbeam = -0.4
		b.Heel = 11
		b.Name = "renamed"
	})
	require.NoError(t, err)

	b, err := r.Get(h)
	require.NoError(t, err)
	assert.Equal(t, 3.2, b.SpeedAhead)
	assert.Equal(t, -0.4, b.SpeedAbeam)
	assert.Equal(t, 11.0, b.Heel)
	assert.Equal(t, "Kestrel", b.Name, "name is fixed")

	_, _, ok := r.Lookup("renamed")
	assert.False(t, ok)

	assert.ErrorIs(t, r.Update(0, func(*Boat) {}), ErrNotFound)
}

func TestRegistry_AllOrderedByHandle(t *testing.T) {
	r := New()
	for _, name := range []string{"c", "a", "b"} {
		_, err := r.Add(name, Boat{})
		require.NoError(t, err)
	}
	_, err := r.Remove("a")
	require.NoError(t, err)

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "c", all[0].Boat.Name)
	assert.Equal(t, "b", all[1].Boat.Name)

	for _, e := range all {
		b, err := r.Get(e.Handle)
		require.NoError(t, err)
		assert.Equal(t, e.Boat, b)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := New()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("boat-%d", i)
			h, err := r.Add(name, Boat{})
			if err != nil {
				return
			}
			_ = r.Update(h, func(b *Boat) { b.SpeedAhead = float64(i) })
			_, _ = r.Get(h)
			_ = r.All()
			r.AddToGroup("fleet", name, nil)
			_ = r.GroupMembership("fleet")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, r.Len())
	for i := 0; i < 50; i++ {
		_, b, ok := r.Lookup(fmt.Sprintf("boat-%d", i))
		require.True(t, ok)
		assert.Equal(t, float64(i), b.SpeedAhead)
	}
}

func TestRegistry_Groups(t *testing.T) {
	r := New()

	assert.True(t, r.AddToGroup("race", "Kestrel", strPtr("K1")))
	assert.True(t, r.AddToGroup("race", "Albatross", nil))
	assert.False(t, r.AddToGroup("race", "Kestrel", strPtr("K2")), "existing member")
	assert.Equal(t, 1, r.GroupCount())

	assert.Equal(t, "Albatross,!\nKestrel,K2\n", r.GroupMembership("race"))
	assert.Equal(t, "", r.GroupMembership("cruise"))

	r.RemoveFromGroup("race", "Kestrel")
	assert.Equal(t, "Albatross,!\n", r.GroupMembership("race"))

	r.RemoveFromGroup("race", "Albatross")
	assert.Equal(t, 0, r.GroupCount(), "empty group is dropped")
	assert.Equal(t, "", r.GroupMembership("race"))

	// removing from an unknown group is a no-op
	r.RemoveFromGroup("nonexistent", "Kestrel")
}

func TestRegistry_AddToGroup_CopiesAltName(t *testing.T) {
	r := New()
	alt := "K1"
	r.AddToGroup("race", "Kestrel", &alt)
	alt = "changed"
	assert.Equal(t, "Kestrel,K1\n", r.GroupMembership("race"))
}

func TestRegistry_GroupsIndependentOfBoats(t *testing.T) {
	r := New()
	_, err := r.Add("Kestrel", Boat{})
	require.NoError(t, err)
	r.AddToGroup("race", "Kestrel", nil)

	_, err = r.Remove("Kestrel")
	require.NoError(t, err)
	assert.Equal(t, "Kestrel,!\n", r.GroupMembership("race"))
}
