package store

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"mzstay/internal/domain"
	"mzstay/internal/events"
	"mzstay/internal/storage"
)

// refreshNoticeChance is the probability that a refresh surfaces a new
// simulated system notice instead of only re-notifying.
const refreshNoticeChance = 0.35

// NoticesState is the whole-state blob persisted under storage.KeyNotices.
// UnreadIDs maps notice id -> presence; insertion order is irrelevant.
type NoticesState struct {
	Items     []domain.Notice `json:"items"`
	UnreadIDs map[string]bool `json:"unreadIds"`
}

// Notices is the company-notice store: read/unread tracking, pull-down
// refresh and pull-up load-more on top of the shared store shape.
type Notices struct {
	kv  storage.KV
	log *zap.Logger

	// Now and Rand are injectable so tests can pin ids, timestamps and the
	// refresh branch.
	Now  func() time.Time
	Rand func() float64

	mu          sync.Mutex
	initialized bool
	state       NoticesState
	hub         *events.Hub
}

func NewNotices(kv storage.KV, log *zap.Logger) *Notices {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notices{
		kv:   kv,
		log:  log,
		Now:  time.Now,
		Rand: rand.Float64,
		hub:  events.NewHub(),
	}
}

func (s *Notices) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initLocked(ctx)
}

func (s *Notices) initLocked(ctx context.Context) error {
	if s.initialized {
		return nil
	}
	var saved NoticesState
	err := storage.GetJSON(ctx, s.kv, storage.KeyNotices, &saved)
	switch {
	case err == nil && len(saved.Items) > 0:
		if saved.UnreadIDs == nil {
			saved.UnreadIDs = map[string]bool{}
		}
		s.state = saved
	case err == nil || errors.Is(err, storage.ErrNotFound):
		items := seedNotices(s.Now())
		unread := make(map[string]bool, len(items))
		for _, n := range items {
			unread[n.ID] = true
		}
		s.state = NoticesState{Items: items, UnreadIDs: unread}
		if err := storage.SetJSON(ctx, s.kv, storage.KeyNotices, s.state); err != nil {
			return fmt.Errorf("persist seed: %w", err)
		}
		s.log.Info("notices seeded", zap.Int("count", len(items)))
	default:
		return fmt.Errorf("restore notices: %w", err)
	}
	s.initialized = true
	return nil
}

// Snapshot returns the current state; treat it as immutable.
func (s *Notices) Snapshot() NoticesState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Notices) Subscribe(fn func()) (cancel func()) {
	return s.hub.Subscribe(fn)
}

// MarkRead clears the unread flag for id. Already-read (or unknown) ids
// are a no-op: nothing is persisted and subscribers are not notified.
func (s *Notices) MarkRead(ctx context.Context, id string) error {
	s.mu.Lock()
	if !s.state.UnreadIDs[id] {
		s.mu.Unlock()
		return nil
	}
	unread := make(map[string]bool, len(s.state.UnreadIDs))
	for k, v := range s.state.UnreadIDs {
		if k != id {
			unread[k] = v
		}
	}
	s.state = NoticesState{Items: s.state.Items, UnreadIDs: unread}
	err := storage.SetJSON(ctx, s.kv, storage.KeyNotices, s.state)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.hub.Notify()
	return nil
}

// PrependInput describes a notice to surface at the top of the feed. ID
// and CreatedAt default to a time-based id and now.
type PrependInput struct {
	ID        string
	Type      domain.NoticeType
	Title     string
	Summary   string
	Content   string
	CreatedAt string
}

// Prepend adds a notice to the front of the feed and marks it unread.
func (s *Notices) Prepend(ctx context.Context, in PrependInput) error {
	s.mu.Lock()
	now := s.Now()
	id := in.ID
	if id == "" {
		id = nextNoticeID(now)
	}
	createdAt := in.CreatedAt
	if createdAt == "" {
		createdAt = now.UTC().Format(time.RFC3339)
	}
	n := domain.Notice{
		ID:        id,
		Type:      in.Type,
		Title:     in.Title,
		Summary:   in.Summary,
		Content:   in.Content,
		CreatedAt: createdAt,
	}
	items := make([]domain.Notice, 0, len(s.state.Items)+1)
	items = append(items, n)
	items = append(items, s.state.Items...)
	unread := cloneSet(s.state.UnreadIDs)
	unread[id] = true
	s.state = NoticesState{Items: items, UnreadIDs: unread}
	err := storage.SetJSON(ctx, s.kv, storage.KeyNotices, s.state)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.hub.Notify()
	return nil
}

// Refresh simulates a pull-down: with probability refreshNoticeChance it
// prepends a new system notice, otherwise it only re-notifies subscribers.
func (s *Notices) Refresh(ctx context.Context) error {
	if err := s.Init(ctx); err != nil {
		return err
	}
	if s.Rand() < refreshNoticeChance {
		return s.Prepend(ctx, PrependInput{
			Type:    domain.NoticeSystem,
			Title:   "System notice: today's tasks updated",
			Summary: "Pull down to see the latest announcements",
			Content: "Task information changed. Refresh the task list to confirm the latest status and times.",
		})
	}
	s.hub.Notify()
	return nil
}

// LoadMore appends count synthetic older notices (default 10), each 45
// minutes older than the previous and starting 12 hours before the current
// tail, cycling update/system/key by position. All are marked unread.
func (s *Notices) LoadMore(ctx context.Context, count int) error {
	if err := s.Init(ctx); err != nil {
		return err
	}
	if count <= 0 {
		count = 10
	}
	s.mu.Lock()
	now := s.Now()
	baseTime := now
	if n := len(s.state.Items); n > 0 {
		if t, err := time.Parse(time.RFC3339, s.state.Items[n-1].CreatedAt); err == nil {
			baseTime = t
		}
	}
	batchID := nextNoticeID(now)
	items := make([]domain.Notice, len(s.state.Items), len(s.state.Items)+count)
	copy(items, s.state.Items)
	unread := cloneSet(s.state.UnreadIDs)
	for i := 0; i < count; i++ {
		n := syntheticNotice(batchID, i, baseTime)
		items = append(items, n)
		unread[n.ID] = true
	}
	s.state = NoticesState{Items: items, UnreadIDs: unread}
	err := storage.SetJSON(ctx, s.kv, storage.KeyNotices, s.state)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.hub.Notify()
	return nil
}

func syntheticNotice(batchID string, idx int, baseTime time.Time) domain.Notice {
	createdAt := baseTime.Add(-time.Duration(720+idx*45) * time.Minute).UTC().Format(time.RFC3339)
	n := domain.Notice{
		ID:        fmt.Sprintf("%s-%d", batchID, idx),
		Content:   "Archived announcement, loaded on demand.",
		CreatedAt: createdAt,
	}
	switch idx % 3 {
	case 0:
		n.Type = domain.NoticeUpdate
		n.Title = fmt.Sprintf("Update: release note %d", idx+1)
		n.Summary = "Tap to read the full announcement"
	case 1:
		n.Type = domain.NoticeSystem
		n.Title = fmt.Sprintf("System notice: reminder %d", idx+1)
		n.Summary = "Tap to read the full announcement"
	default:
		n.Type = domain.NoticeKey
		n.Title = fmt.Sprintf("Spare key: property %d", idx+1)
		n.Summary = "Keep the cabinet code confidential"
	}
	return n
}

func nextNoticeID(now time.Time) string {
	return fmt.Sprintf("n%d", now.Unix())
}

func cloneSet(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func seedNotices(now time.Time) []domain.Notice {
	at := func(minsAgo int) string {
		return now.Add(-time.Duration(minsAgo) * time.Minute).UTC().Format(time.RFC3339)
	}
	return []domain.Notice{
		{
			ID:        "n1",
			Type:      domain.NoticeSystem,
			Title:     "System notice: today's cleaning schedule updated",
			Summary:   "Check route order and priority flags",
			Content:   "Today's cleaning schedule changed. Handle properties flagged early check-in first.",
			CreatedAt: at(12),
		},
		{
			ID:        "n2",
			Type:      domain.NoticeUpdate,
			Title:     "Update: offline demo sign-in available",
			Summary:   "Preview the app without a backend",
			Content:   "The app now supports a local demo account for offline preview and UI work.",
			CreatedAt: at(90),
		},
		{
			ID:        "n3",
			Type:      domain.NoticeKey,
			Title:     "Spare key: WSP3702A",
			Summary:   "Cabinet code: 9876#",
			Content:   "The WSP3702A spare key is in the front-desk cabinet, code 9876#. Return it and confirm the lock afterwards.",
			CreatedAt: at(320),
		},
	}
}
