package schedule

import (
	"context"
	"sort"
	"time"
)

// Proposal is one session a scheduling batch wants to create or move.
// StartsAt is already normalized to UTC; Duration is the runtime of
// the proposed movie in minutes.
type Proposal struct {
	MovieID    uint64
	HallID     uint64
	StartsAt   time.Time
	Duration   uint32
	MovieTitle string
}

// Neighbor is the persisted session closest to a proposed start on
// either side within the same hall.
type Neighbor struct {
	StartsAt   time.Time
	Duration   uint32
	MovieTitle string
}

// Store is the validator's view of persisted sessions.  Cancelled
// sessions must not be returned as neighbours.  The excludeID
// parameter drops one session from consideration so an update does
// not collide with its own old slot; pass 0 when creating.
type Store interface {
	PrevNeighbor(ctx context.Context, hallID uint64, at time.Time, excludeID uint64) (*Neighbor, error)
	NextNeighbor(ctx context.Context, hallID uint64, at time.Time, excludeID uint64) (*Neighbor, error)
	HallName(ctx context.Context, hallID uint64) (string, error)
}

// Validator checks a batch of proposals against each other and against
// the persisted schedule.  A hall needs a cleaning break between
// screenings, so two sessions in the same hall must satisfy
//
//	later.start >= earlier.start + earlier.duration + buffer
//
// The first violation found aborts the whole batch.
type Validator struct {
	clock  *Clock
	buffer time.Duration
}

// NewValidator builds a Validator with the given cleaning buffer in
// minutes.
func NewValidator(clock *Clock, bufferMin int) *Validator {
	return &Validator{clock: clock, buffer: time.Duration(bufferMin) * time.Minute}
}

// Buffer exposes the configured cleaning break.
func (v *Validator) Buffer() time.Duration {
	return v.buffer
}

// ValidateBatch runs all scheduling rules over the batch:
//
//  1. every proposal carries a distinct start instant, across all
//     halls;
//  2. proposals for the same hall keep the buffer between each other;
//  3. every proposal keeps the buffer against its previous and next
//     persisted neighbour in the hall.
//
// Returns nil when the whole batch is admissible, ErrDuplicateDate or
// a *ConflictError otherwise.
func (v *Validator) ValidateBatch(ctx context.Context, store Store, proposals []Proposal, excludeID uint64) error {
	seen := make(map[int64]struct{}, len(proposals))
	for _, p := range proposals {
		key := p.StartsAt.Unix()
		if _, dup := seen[key]; dup {
			return ErrDuplicateDate
		}
		seen[key] = struct{}{}
	}

	byHall := make(map[uint64][]Proposal)
	for _, p := range proposals {
		byHall[p.HallID] = append(byHall[p.HallID], p)
	}
	for hallID, batch := range byHall {
		sort.Slice(batch, func(i, j int) bool { return batch[i].StartsAt.Before(batch[j].StartsAt) })
		for i := 1; i < len(batch); i++ {
			prev, curr := batch[i-1], batch[i]
			if curr.StartsAt.Before(v.endWithBuffer(prev.StartsAt, prev.Duration)) {
				return v.conflict(ctx, store, hallID, curr, prev.StartsAt)
			}
		}
	}

	for _, p := range proposals {
		prev, err := store.PrevNeighbor(ctx, p.HallID, p.StartsAt, excludeID)
		if err != nil {
			return err
		}
		if prev != nil && p.StartsAt.Before(v.endWithBuffer(prev.StartsAt, prev.Duration)) {
			return v.conflict(ctx, store, p.HallID, p, prev.StartsAt)
		}

		next, err := store.NextNeighbor(ctx, p.HallID, p.StartsAt, excludeID)
		if err != nil {
			return err
		}
		if next != nil && v.endWithBuffer(p.StartsAt, p.Duration).After(next.StartsAt) {
			return v.conflict(ctx, store, p.HallID, p, next.StartsAt)
		}
	}
	return nil
}

// endWithBuffer is the earliest instant the hall is free again after a
// session starting at start with the given runtime.
func (v *Validator) endWithBuffer(start time.Time, durationMin uint32) time.Time {
	return start.Add(time.Duration(durationMin)*time.Minute + v.buffer)
}

// conflict assembles the ConflictError for a rejected proposal.  The
// hall name lookup is best effort; the IDs and instants are the
// authoritative part of the report.
func (v *Validator) conflict(ctx context.Context, store Store, hallID uint64, p Proposal, with time.Time) error {
	name, err := store.HallName(ctx, hallID)
	if err != nil {
		name = ""
	}
	return &ConflictError{
		HallID:        hallID,
		HallName:      name,
		ProposedAt:    p.StartsAt,
		ConflictsWith: with,
		MovieTitle:    p.MovieTitle,
		Duration:      p.Duration,
		ProposedLocal: v.clock.FormatLocal(p.StartsAt),
		ConflictLocal: v.clock.FormatLocal(with),
	}
}
