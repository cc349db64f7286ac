package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"leadqual_backend/internal/qualification/assignment"
)

type fakeAssigner struct {
	agent *assignment.Member
	err   error
}

func (f *fakeAssigner) Assign(_ context.Context, _, _ uuid.UUID) (*assignment.Member, error) {
	return f.agent, f.err
}

type fakeNotifier struct {
	notified []uuid.UUID
	err      error
}

func (f *fakeNotifier) LeadAssigned(_ context.Context, agent assignment.Member, _ uuid.UUID, _ int, _ string) error {
	f.notified = append(f.notified, agent.ID)
	return f.err
}

func TestHandoffAssignsAndNotifies(t *testing.T) {
	agent := &assignment.Member{ID: uuid.New(), FullName: "Agent A", Email: "a@example.com"}
	notifier := &fakeNotifier{}
	h := NewHandoff(&fakeAssigner{agent: agent}, notifier, testLogger())

	chosen, err := h.Run(context.Background(), uuid.New(), uuid.New(), 92, "priority")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if chosen == nil || chosen.ID != agent.ID {
		t.Fatalf("chosen = %+v, want the assigner's agent", chosen)
	}
	if len(notifier.notified) != 1 || notifier.notified[0] != agent.ID {
		t.Error("the chosen agent should be notified")
	}
}

func TestHandoffEmptyPoolIsNotAnError(t *testing.T) {
	notifier := &fakeNotifier{}
	h := NewHandoff(&fakeAssigner{}, notifier, testLogger())

	chosen, err := h.Run(context.Background(), uuid.New(), uuid.New(), 70, "hot")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if chosen != nil {
		t.Fatalf("chosen = %+v, want nil", chosen)
	}
	if len(notifier.notified) != 0 {
		t.Error("no one should be notified when no agent was assigned")
	}
}

func TestHandoffNotificationFailureIsNonFatal(t *testing.T) {
	agent := &assignment.Member{ID: uuid.New(), FullName: "Agent A"}
	h := NewHandoff(&fakeAssigner{agent: agent}, &fakeNotifier{err: errors.New("smtp down")}, testLogger())

	if _, err := h.Run(context.Background(), uuid.New(), uuid.New(), 70, "hot"); err != nil {
		t.Fatalf("a notification failure must not fail the handoff, got %v", err)
	}
}

func TestHandoffAssignerErrorPropagates(t *testing.T) {
	h := NewHandoff(&fakeAssigner{err: errors.New("db down")}, &fakeNotifier{}, testLogger())

	if _, err := h.Run(context.Background(), uuid.New(), uuid.New(), 70, "hot"); err == nil {
		t.Fatal("an assignment error should propagate")
	}
}
