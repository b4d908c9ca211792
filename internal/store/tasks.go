// Package store holds the observable, persisted app stores. All three
// follow one shape: lazy idempotent Init (restore-or-seed), Snapshot,
// Subscribe, and mutate -> persist -> notify. A per-store mutex keeps a
// mutation and its persistence write single-flight, so two racing calls
// cannot interleave their whole-state blob writes.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"mzstay/internal/domain"
	"mzstay/internal/events"
	"mzstay/internal/merge"
	"mzstay/internal/storage"
)

// TasksState is the whole-state blob persisted under storage.KeyTasks.
type TasksState struct {
	Items []domain.Task `json:"items"`
}

// Tasks owns the authoritative in-memory task list. Construct with
// NewTasks and call Init before anything else.
type Tasks struct {
	kv  storage.KV
	log *zap.Logger

	// Now is injectable for tests; seeding anchors dates to it.
	Now func() time.Time

	mu          sync.Mutex
	initialized bool
	state       TasksState
	hub         *events.Hub
}

func NewTasks(kv storage.KV, log *zap.Logger) *Tasks {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tasks{
		kv:  kv,
		log: log,
		Now: time.Now,
		hub: events.NewHub(),
	}
}

// Init restores persisted state, or seeds demo data when none exists.
// Restored items always pass through the merge engine, so previously
// unmerged or re-imported data becomes consistent on every load. A second
// call is a no-op; a failed call leaves the store uninitialized so the
// caller may retry.
func (s *Tasks) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}
	var saved TasksState
	err := storage.GetJSON(ctx, s.kv, storage.KeyTasks, &saved)
	switch {
	case err == nil && len(saved.Items) > 0:
		s.state = TasksState{Items: merge.Tasks(saved.Items)}
		s.log.Debug("tasks restored",
			zap.Int("raw", len(saved.Items)),
			zap.Int("merged", len(s.state.Items)))
	case err == nil || errors.Is(err, storage.ErrNotFound):
		s.state = TasksState{Items: merge.Tasks(seedTasks(s.Now()))}
		if err := storage.SetJSON(ctx, s.kv, storage.KeyTasks, s.state); err != nil {
			return fmt.Errorf("persist seed: %w", err)
		}
		s.log.Info("tasks seeded", zap.Int("count", len(s.state.Items)))
	default:
		return fmt.Errorf("restore tasks: %w", err)
	}
	s.initialized = true
	return nil
}

// Snapshot returns the current state. The slice is shared; callers must
// treat it as immutable.
func (s *Tasks) Snapshot() TasksState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers a callback invoked after every committed mutation
// and returns its cancel func.
func (s *Tasks) Subscribe(fn func()) (cancel func()) {
	return s.hub.Subscribe(fn)
}

// SetKeyPhoto records the key-handover photo for taskID and advances the
// task to cleaning, unless it is already completed: a re-upload on a
// completed task updates the photo but never regresses the status. An
// unknown taskID is a silent no-op that still persists and notifies.
func (s *Tasks) SetKeyPhoto(ctx context.Context, taskID, uri string) error {
	return s.mutate(ctx, func(items []domain.Task) []domain.Task {
		next := make([]domain.Task, len(items))
		copy(next, items)
		for i := range next {
			if next[i].ID != taskID {
				continue
			}
			next[i].KeyPhotoURI = uri
			if next[i].Status != domain.TaskCompleted {
				next[i].Status = domain.TaskCleaning
			}
		}
		return next
	})
}

// CompleteParams carries the completion facts. The note length cap
// (500 chars) is enforced by the caller, not here.
type CompleteParams struct {
	TaskID      string
	Supplies    []string
	Note        string
	CompletedAt string
	CompletedBy string
}

// Complete marks the task completed and overwrites all completion
// metadata unconditionally; a re-completion fully replaces the prior
// supplies and note rather than merging with them.
func (s *Tasks) Complete(ctx context.Context, p CompleteParams) error {
	return s.mutate(ctx, func(items []domain.Task) []domain.Task {
		next := make([]domain.Task, len(items))
		copy(next, items)
		for i := range next {
			if next[i].ID != p.TaskID {
				continue
			}
			next[i].Status = domain.TaskCompleted
			next[i].CompletedAt = p.CompletedAt
			next[i].CompletedBy = p.CompletedBy
			next[i].CompletionNote = p.Note
			next[i].CompletionSupplies = p.Supplies
		}
		return next
	})
}

// mutate applies fn to the item list, persists the full state, then
// notifies. On a persistence failure the in-memory change stays applied
// but subscribers are not notified; the error propagates untranslated.
func (s *Tasks) mutate(ctx context.Context, fn func([]domain.Task) []domain.Task) error {
	s.mu.Lock()
	s.state = TasksState{Items: fn(s.state.Items)}
	err := storage.SetJSON(ctx, s.kv, storage.KeyTasks, s.state)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.hub.Notify()
	return nil
}

const seedMasterCode = "8888"

// seedTasks builds the demo assignment set: four distinct properties at
// fixed offsets from today.
func seedTasks(now time.Time) []domain.Task {
	day := func(offset int) string {
		return now.AddDate(0, 0, offset).Format("2006-01-02")
	}
	return []domain.Task{
		{
			ID: "t1", Date: day(0), Title: "WSP3702A",
			Region: "Sydney CBD", Address: "45 Green Ln", UnitType: "STUDIO",
			Status:      domain.TaskPendingKeyPhoto,
			HasCheckout: true, HasCheckin: true,
			CheckoutTime: "10:00", NextCheckinTime: "13:00",
			OldCode: "4321", MasterCode: seedMasterCode, NewCode: "8765", KeypadCode: "9876#",
		},
		{
			ID: "t2", Date: day(1), Title: "WSP1290B",
			Region: "Waterloo", Address: "12 King St", UnitType: "1BR",
			Status:      domain.TaskPendingKeyPhoto,
			HasCheckout: true, HasCheckin: true,
			CheckoutTime: "09:30", NextCheckinTime: "14:00",
			OldCode: "2211", MasterCode: seedMasterCode, NewCode: "9900", KeypadCode: "5544#",
		},
		{
			ID: "t3", Date: day(3), Title: "WSP4401C",
			Region: "Pyrmont", Address: "8 Harbour Rd", UnitType: "2BR",
			Status:      domain.TaskPendingKeyPhoto,
			HasCheckout: true, HasCheckin: true,
			CheckoutTime: "11:00", NextCheckinTime: "15:00",
			OldCode: "1357", MasterCode: seedMasterCode, NewCode: "2468", KeypadCode: "1122#",
		},
		{
			ID: "t4", Date: day(10), Title: "WSP7820D",
			Region: "Bondi", Address: "99 Ocean Ave", UnitType: "STUDIO",
			Status:      domain.TaskPendingKeyPhoto,
			HasCheckout: true, HasCheckin: true,
			CheckoutTime: "10:00", NextCheckinTime: "13:00",
			OldCode: "1234", MasterCode: seedMasterCode, NewCode: "5678", KeypadCode: "9988#",
		},
	}
}
