package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"mzstay/internal/domain"
	"mzstay/internal/storage"
)

func TestRepairsInitEmptyWritesNothing(t *testing.T) {
	mem := storage.NewMemory()
	s := NewRepairs(mem, nil)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	if mem.Sets != 0 {
		t.Fatalf("empty init persisted %d times, want 0", mem.Sets)
	}
	if got := s.Snapshot().Items; len(got) != 0 {
		t.Fatalf("items = %v, want empty", got)
	}
}

func TestCreateTicketPrepends(t *testing.T) {
	mem := storage.NewMemory()
	s := NewRepairs(mem, nil)
	s.Now = testNow
	ctx := context.Background()
	if err := s.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	first, err := s.CreateTicket(ctx, CreateTicketParams{
		TaskID: "t1", PropertyTitle: "WSP3702A", Type: "plumbing",
		Description: "bathroom tap leaking", Urgency: domain.RepairHigh,
		CreatedBy: "demo",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	wantID := fmt.Sprintf("r_%d", testNow().UnixMilli())
	if first.ID != wantID {
		t.Fatalf("id = %s, want %s", first.ID, wantID)
	}
	if first.CreatedAt == "" {
		t.Fatalf("created at not defaulted")
	}

	second, err := s.CreateTicket(ctx, CreateTicketParams{
		PropertyTitle: "WSP1290B", Type: "appliance",
		Description: "dishwasher error E4", Urgency: domain.RepairLow,
		CreatedAt: "2026-08-28T11:00:00Z",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if second.CreatedAt != "2026-08-28T11:00:00Z" {
		t.Fatalf("explicit created at overwritten: %s", second.CreatedAt)
	}
	items := s.Snapshot().Items
	if len(items) != 2 || items[0].PropertyTitle != "WSP1290B" {
		t.Fatalf("newest ticket not first: %+v", items)
	}
}

func TestCreateTicketSurvivesRestart(t *testing.T) {
	mem := storage.NewMemory()
	ctx := context.Background()
	s := NewRepairs(mem, nil)
	if err := s.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := s.CreateTicket(ctx, CreateTicketParams{
		PropertyTitle: "WSP4401C", Type: "furniture",
		Description: "broken chair leg", Urgency: domain.RepairMedium,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	reopened := NewRepairs(mem, nil)
	if err := reopened.Init(ctx); err != nil {
		t.Fatalf("reopen init: %v", err)
	}
	items := reopened.Snapshot().Items
	if len(items) != 1 || items[0].Description != "broken chair leg" {
		t.Fatalf("ticket lost on restart: %+v", items)
	}
}

func TestCreateTicketPersistFailure(t *testing.T) {
	mem := storage.NewMemory()
	s := NewRepairs(mem, nil)
	ctx := context.Background()
	if err := s.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	notified := 0
	s.Subscribe(func() { notified++ })
	mem.Fail = errors.New("write failed")
	if _, err := s.CreateTicket(ctx, CreateTicketParams{
		PropertyTitle: "WSP1", Description: "x", Urgency: domain.RepairLow,
	}); err == nil {
		t.Fatalf("expected persistence error")
	}
	if notified != 0 {
		t.Fatalf("notified despite failed persist")
	}
}
