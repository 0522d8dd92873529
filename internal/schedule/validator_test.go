package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore serves canned neighbours per hall.
type fakeStore struct {
	prev  map[uint64]*Neighbor
	next  map[uint64]*Neighbor
	names map[uint64]string
}

func (f *fakeStore) PrevNeighbor(_ context.Context, hallID uint64, _ time.Time, _ uint64) (*Neighbor, error) {
	return f.prev[hallID], nil
}

func (f *fakeStore) NextNeighbor(_ context.Context, hallID uint64, _ time.Time, _ uint64) (*Neighbor, error) {
	return f.next[hallID], nil
}

func (f *fakeStore) HallName(_ context.Context, hallID uint64) (string, error) {
	return f.names[hallID], nil
}

func newTestValidator(t *testing.T) (*Clock, *Validator) {
	t.Helper()
	clock, err := NewClock("Europe/Kyiv")
	require.NoError(t, err)
	return clock, NewValidator(clock, 15)
}

func mustNormalize(t *testing.T, c *Clock, raw string) time.Time {
	t.Helper()
	ts, err := c.Normalize(raw)
	require.NoError(t, err)
	return ts
}

func TestValidateBatchBackToBackWithExactBuffer(t *testing.T) {
	clock, v := newTestValidator(t)

	// A 120-minute movie starting at 12:00 frees the hall at 14:15
	// once the 15-minute break is included.
	store := &fakeStore{
		prev: map[uint64]*Neighbor{
			1: {StartsAt: mustNormalize(t, clock, "2025-07-01 12:00:00"), Duration: 120, MovieTitle: "Dune"},
		},
		names: map[uint64]string{1: "Blue"},
	}

	ok := []Proposal{{
		MovieID: 7, HallID: 1,
		StartsAt: mustNormalize(t, clock, "2025-07-01 14:15:00"),
		Duration: 90, MovieTitle: "Heat",
	}}
	assert.NoError(t, v.ValidateBatch(context.Background(), store, ok, 0))
}

func TestValidateBatchOneMinuteShortOfBuffer(t *testing.T) {
	clock, v := newTestValidator(t)

	store := &fakeStore{
		prev: map[uint64]*Neighbor{
			1: {StartsAt: mustNormalize(t, clock, "2025-07-01 12:00:00"), Duration: 120, MovieTitle: "Dune"},
		},
		names: map[uint64]string{1: "Blue"},
	}

	bad := []Proposal{{
		MovieID: 7, HallID: 1,
		StartsAt: mustNormalize(t, clock, "2025-07-01 14:14:00"),
		Duration: 90, MovieTitle: "Heat",
	}}
	err := v.ValidateBatch(context.Background(), store, bad, 0)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, uint64(1), conflict.HallID)
	assert.Equal(t, "Blue", conflict.HallName)
	assert.Equal(t, "2025-07-01 14:14:00", conflict.ProposedLocal)
	assert.Equal(t, "2025-07-01 12:00:00", conflict.ConflictLocal)
	assert.Equal(t, "session at 2025-07-01 14:14:00 in hall Blue conflicts with session at 2025-07-01 12:00:00", err.Error())
}

func TestValidateBatchNextNeighborConflict(t *testing.T) {
	clock, v := newTestValidator(t)

	// The hall has a session at 18:00; a 120-minute movie at 16:00
	// would release the hall at 18:15, too late.
	store := &fakeStore{
		next: map[uint64]*Neighbor{
			2: {StartsAt: mustNormalize(t, clock, "2025-07-01 18:00:00"), Duration: 100, MovieTitle: "Alien"},
		},
		names: map[uint64]string{2: "Red"},
	}

	err := v.ValidateBatch(context.Background(), store, []Proposal{{
		MovieID: 3, HallID: 2,
		StartsAt: mustNormalize(t, clock, "2025-07-01 16:00:00"),
		Duration: 120, MovieTitle: "Solaris",
	}}, 0)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "Red", conflict.HallName)
	assert.Equal(t, "2025-07-01 18:00:00", conflict.ConflictLocal)
}

func TestValidateBatchDuplicateStartAcrossHalls(t *testing.T) {
	clock, v := newTestValidator(t)
	store := &fakeStore{}

	// Same instant in two different halls is still rejected: batch
	// start instants must be globally unique.
	at := mustNormalize(t, clock, "2025-07-02 10:00:00")
	err := v.ValidateBatch(context.Background(), store, []Proposal{
		{MovieID: 1, HallID: 1, StartsAt: at, Duration: 90},
		{MovieID: 2, HallID: 2, StartsAt: at, Duration: 90},
	}, 0)
	assert.ErrorIs(t, err, ErrDuplicateDate)
}

func TestValidateBatchIntraBatchOverlap(t *testing.T) {
	clock, v := newTestValidator(t)
	store := &fakeStore{names: map[uint64]string{5: "IMAX"}}

	// Two proposals for the same empty hall that overlap each other.
	err := v.ValidateBatch(context.Background(), store, []Proposal{
		{MovieID: 1, HallID: 5, StartsAt: mustNormalize(t, clock, "2025-07-03 12:00:00"), Duration: 120, MovieTitle: "Dune"},
		{MovieID: 2, HallID: 5, StartsAt: mustNormalize(t, clock, "2025-07-03 13:00:00"), Duration: 90, MovieTitle: "Heat"},
	}, 0)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "IMAX", conflict.HallName)
	assert.Equal(t, "2025-07-03 13:00:00", conflict.ProposedLocal)
	assert.Equal(t, "2025-07-03 12:00:00", conflict.ConflictLocal)
	assert.Equal(t, "Heat", conflict.MovieTitle)
}

func TestValidateBatchIndependentHallsPass(t *testing.T) {
	clock, v := newTestValidator(t)
	store := &fakeStore{}

	// Overlapping instants are fine when the halls differ and the
	// starts are distinct.
	err := v.ValidateBatch(context.Background(), store, []Proposal{
		{MovieID: 1, HallID: 1, StartsAt: mustNormalize(t, clock, "2025-07-04 12:00:00"), Duration: 120},
		{MovieID: 2, HallID: 2, StartsAt: mustNormalize(t, clock, "2025-07-04 12:30:00"), Duration: 120},
	}, 0)
	assert.NoError(t, err)
}
