package services

import (
	"context"
	"time"

	"github.com/anthdm/hollywood/actor"

	"github.com/ZanzyTHEbar/firedragon-ledger/domain/models"
	"github.com/ZanzyTHEbar/firedragon-ledger/interfaces"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal/nats_common"
)

// LedgerEventsService is the name the ledger event actor is registered under
const LedgerEventsService = "ledger_events"

const publishTimeout = 5 * time.Second

// RecordAppendedMsg carries a record that became durable in some ledger
type RecordAppendedMsg struct {
	Record models.Record
}

// AtmDepositMsg carries a new entry of the bank's ATM log
type AtmDepositMsg struct {
	Deposit models.AtmDeposit
}

// LedgerEventActor turns ledger notifications into published events.
// All state is owned by the actor goroutine.
type LedgerEventActor struct {
	BaseActor
	messaging     nats_common.MessagingPort
	subjectPrefix string
	clientID      string

	running       bool
	startTime     time.Time
	eventsHandled int64
	dropped       int64
	errorCount    int
	lastError     error
	lastErrorTime time.Time
	byKind        map[models.RecordKind]int64
	atmCashIn     map[int64]string
}

// NewLedgerEventActor creates the actor publishing through messaging below subjectPrefix
func NewLedgerEventActor(messaging nats_common.MessagingPort, subjectPrefix, clientID string, logger *internal.Logger) *LedgerEventActor {
	return &LedgerEventActor{
		BaseActor:     NewBaseActor(LedgerEventsService, logger),
		messaging:     messaging,
		subjectPrefix: subjectPrefix,
		clientID:      clientID,
		byKind:        make(map[models.RecordKind]int64),
		atmCashIn:     make(map[int64]string),
	}
}

// Receive implements the actor.Receiver interface
func (a *LedgerEventActor) Receive(ctx *actor.Context) {
	switch msg := ctx.Message().(type) {
	case actor.Started:
		a.logger.Debug(internal.ComponentService, "%s actor spawned", a.name)

	case actor.Stopped:
		a.logger.Debug(internal.ComponentService, "%s actor stopped after %d events", a.name, a.eventsHandled)

	case StartMsg:
		if !a.running {
			a.running = true
			a.startTime = time.Now()
			a.logger.Info(internal.ComponentService, "%s started", a.name)
		}

	case StopMsg:
		if a.running {
			a.running = false
			a.logger.Info(internal.ComponentService, "%s stopped", a.name)
		}

	case RecordAppendedMsg:
		if !a.accept() {
			return
		}
		a.byKind[msg.Record.Kind]++
		event := interfaces.NewEvent(interfaces.EventTypeRecordAppended, a.name).
			WithClientID(a.clientID).
			WithData("record", msg.Record)
		a.publish(event)

	case AtmDepositMsg:
		if !a.accept() {
			return
		}
		a.atmCashIn[msg.Deposit.AtmID] = msg.Deposit.Amount.String()
		event := interfaces.NewEvent(interfaces.EventTypeAtmDeposit, a.name).
			WithClientID(a.clientID).
			WithData("deposit", msg.Deposit)
		a.publish(event)

	case StatusRequestMsg:
		ctx.Respond(a.status())

	case FlushMsg:
		ctx.Respond(FlushedMsg{EventsHandled: a.eventsHandled})
	}
}

// accept counts events received while stopped as dropped
func (a *LedgerEventActor) accept() bool {
	if !a.running {
		a.dropped++
		return false
	}
	return true
}

func (a *LedgerEventActor) publish(event *interfaces.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	a.eventsHandled++
	if err := a.messaging.PublishMessage(ctx, event.Subject(a.subjectPrefix), event); err != nil {
		a.errorCount++
		a.lastError = err
		a.lastErrorTime = time.Now()
		a.logger.Error(internal.ComponentService, "Failed to publish %s: %v", event.Type, err)
		return
	}
	a.logger.Debug(internal.ComponentService, "Published %s", event.Type)
}

func (a *LedgerEventActor) status() StatusResponseMsg {
	status := interfaces.ServiceStatusStopped
	if a.running {
		status = interfaces.ServiceStatusRunning
	}

	byKind := make(map[string]int64, len(a.byKind))
	for kind, n := range a.byKind {
		byKind[string(kind)] = n
	}
	lastCashIn := make(map[int64]string, len(a.atmCashIn))
	for atm, amount := range a.atmCashIn {
		lastCashIn[atm] = amount
	}

	return StatusResponseMsg{
		Status:        status,
		StartTime:     a.startTime,
		EventsHandled: a.eventsHandled,
		ErrorCount:    a.errorCount,
		LastError:     a.lastError,
		LastErrorTime: a.lastErrorTime,
		CustomStats: map[string]interface{}{
			"records_by_kind":  byKind,
			"last_atm_cash_in": lastCashIn,
			"dropped":          a.dropped,
		},
	}
}
