package service

import (
	"context"
	"sync"
	"time"

	"webhook-dispatch-service/internal/core/domain"
	"webhook-dispatch-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EventNotifier exposes typed helpers that domain code calls after a business
// operation commits. Dispatch runs asynchronously on a detached context with
// a bounded lifetime: the caller never waits on, and never fails because of,
// webhook delivery.
type EventNotifier struct {
	dispatcher ports.DispatcherService
	timeout    time.Duration
	log        zerolog.Logger
	wg         sync.WaitGroup
}

func NewEventNotifier(dispatcher ports.DispatcherService, timeout time.Duration, log zerolog.Logger) *EventNotifier {
	return &EventNotifier{dispatcher: dispatcher, timeout: timeout, log: log}
}

// Wait blocks until all in-flight dispatches complete. Called on shutdown.
func (n *EventNotifier) Wait() {
	n.wg.Wait()
}

func (n *EventNotifier) notify(ctx context.Context, orgID uuid.UUID, event domain.EventType, data map[string]any) {
	detached := context.WithoutCancel(ctx)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(detached, n.timeout)
		defer cancel()
		n.dispatcher.DispatchEvent(ctx, orgID, event, data)
	}()
}

func (n *EventNotifier) CheckinCompleted(ctx context.Context, orgID uuid.UUID, clientID, clientName, checkinID string) {
	n.notify(ctx, orgID, domain.EventCheckinCompleted, map[string]any{
		"clientId":   clientID,
		"clientName": clientName,
		"checkinId":  checkinID,
	})
}

func (n *EventNotifier) GoalAchieved(ctx context.Context, orgID uuid.UUID, clientID, goalID, goalTitle string) {
	n.notify(ctx, orgID, domain.EventGoalAchieved, map[string]any{
		"clientId":  clientID,
		"goalId":    goalID,
		"goalTitle": goalTitle,
	})
}

func (n *EventNotifier) SessionCompleted(ctx context.Context, orgID uuid.UUID, clientID, coachID, sessionID string) {
	n.notify(ctx, orgID, domain.EventSessionCompleted, map[string]any{
		"clientId":  clientID,
		"coachId":   coachID,
		"sessionId": sessionID,
	})
}

func (n *EventNotifier) ProgramPurchased(ctx context.Context, orgID uuid.UUID, clientID, programID, programName string, amount float64, currency string) {
	n.notify(ctx, orgID, domain.EventProgramPurchased, map[string]any{
		"clientId":    clientID,
		"programId":   programID,
		"programName": programName,
		"amount":      amount,
		"currency":    currency,
	})
}

func (n *EventNotifier) SquadMemberJoined(ctx context.Context, orgID uuid.UUID, squadID, squadName, memberID string) {
	n.notify(ctx, orgID, domain.EventSquadMemberJoined, map[string]any{
		"squadId":   squadID,
		"squadName": squadName,
		"memberId":  memberID,
	})
}

func (n *EventNotifier) PaymentReceived(ctx context.Context, orgID uuid.UUID, clientID, invoiceID string, amount float64, currency string) {
	n.notify(ctx, orgID, domain.EventPaymentReceived, map[string]any{
		"clientId":  clientID,
		"invoiceId": invoiceID,
		"amount":    amount,
		"currency":  currency,
	})
}
