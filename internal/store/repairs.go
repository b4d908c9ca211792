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
	"mzstay/internal/storage"
)

// RepairsState is the whole-state blob persisted under storage.KeyRepairs.
type RepairsState struct {
	Items []domain.RepairTicket `json:"items"`
}

// Repairs is the append-only maintenance ticket log. Tickets are never
// mutated after creation.
type Repairs struct {
	kv  storage.KV
	log *zap.Logger
	Now func() time.Time

	mu          sync.Mutex
	initialized bool
	state       RepairsState
	hub         *events.Hub
}

func NewRepairs(kv storage.KV, log *zap.Logger) *Repairs {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repairs{
		kv:  kv,
		log: log,
		Now: time.Now,
		hub: events.NewHub(),
	}
}

// Init restores persisted tickets; with nothing persisted it starts empty
// without writing anything.
func (s *Repairs) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}
	var saved RepairsState
	err := storage.GetJSON(ctx, s.kv, storage.KeyRepairs, &saved)
	switch {
	case err == nil:
		s.state = RepairsState{Items: saved.Items}
	case errors.Is(err, storage.ErrNotFound):
		s.state = RepairsState{Items: []domain.RepairTicket{}}
	default:
		return fmt.Errorf("restore repairs: %w", err)
	}
	s.initialized = true
	return nil
}

// Snapshot returns the current state; treat it as immutable.
func (s *Repairs) Snapshot() RepairsState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Repairs) Subscribe(fn func()) (cancel func()) {
	return s.hub.Subscribe(fn)
}

// CreateTicketParams is a RepairTicket minus its id, which the store
// assigns.
type CreateTicketParams struct {
	TaskID        string
	PropertyTitle string
	Address       string
	Type          string
	Description   string
	Urgency       domain.RepairUrgency
	Contact       string
	CreatedAt     string
	CreatedBy     string
}

// CreateTicket prepends a new ticket and returns it with its assigned id.
func (s *Repairs) CreateTicket(ctx context.Context, p CreateTicketParams) (domain.RepairTicket, error) {
	s.mu.Lock()
	ticket := domain.RepairTicket{
		ID:            fmt.Sprintf("r_%d", s.Now().UnixMilli()),
		TaskID:        p.TaskID,
		PropertyTitle: p.PropertyTitle,
		Address:       p.Address,
		Type:          p.Type,
		Description:   p.Description,
		Urgency:       p.Urgency,
		Contact:       p.Contact,
		CreatedAt:     p.CreatedAt,
		CreatedBy:     p.CreatedBy,
	}
	if ticket.CreatedAt == "" {
		ticket.CreatedAt = s.Now().UTC().Format(time.RFC3339)
	}
	items := make([]domain.RepairTicket, 0, len(s.state.Items)+1)
	items = append(items, ticket)
	items = append(items, s.state.Items...)
	s.state = RepairsState{Items: items}
	err := storage.SetJSON(ctx, s.kv, storage.KeyRepairs, s.state)
	s.mu.Unlock()
	if err != nil {
		return domain.RepairTicket{}, err
	}
	s.log.Info("repair ticket created",
		zap.String("id", ticket.ID),
		zap.String("property", ticket.PropertyTitle),
		zap.String("urgency", string(ticket.Urgency)))
	s.hub.Notify()
	return ticket, nil
}
