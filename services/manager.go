package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/anthdm/hollywood/actor"
	"golang.org/x/sync/errgroup"

	"github.com/ZanzyTHEbar/firedragon-ledger/domain/ledger"
	"github.com/ZanzyTHEbar/firedragon-ledger/domain/models"
	"github.com/ZanzyTHEbar/firedragon-ledger/domain/usecases"
	"github.com/ZanzyTHEbar/firedragon-ledger/interfaces"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal/nats_common"
)

const requestTimeout = 5 * time.Second

// ActorServiceManager owns the actor engine and the services running on it.
// It also forwards ledger notifications to the ledger event actor.
type ActorServiceManager struct {
	config    *internal.Config
	logger    *internal.Logger
	messaging nats_common.MessagingPort

	engine *actor.Engine

	mu          sync.RWMutex
	services    map[string]*actor.PID
	serviceInfo map[string]*interfaces.ServiceInfo
}

var (
	_ interfaces.ServiceManager = (*ActorServiceManager)(nil)
	_ ledger.Observer           = (*ActorServiceManager)(nil)
	_ usecases.AtmLogObserver   = (*ActorServiceManager)(nil)
)

// NewActorServiceManager creates a new actor-based service manager
func NewActorServiceManager(config *internal.Config, messaging nats_common.MessagingPort, logger *internal.Logger) (*ActorServiceManager, error) {
	if logger == nil {
		logger = internal.GetLogger()
	}
	if messaging == nil {
		messaging = nats_common.NoopMessaging{}
	}

	engine, err := actor.NewEngine(actor.NewEngineConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create actor engine: %w", err)
	}

	return &ActorServiceManager{
		config:      config,
		logger:      logger,
		messaging:   messaging,
		engine:      engine,
		services:    make(map[string]*actor.PID),
		serviceInfo: make(map[string]*interfaces.ServiceInfo),
	}, nil
}

// Initialize registers the ledger event actor
func (m *ActorServiceManager) Initialize() error {
	prefix := "firedragon"
	if m.config != nil && m.config.NATS.Subject != "" {
		prefix = m.config.NATS.Subject
	}
	clientID := internal.GenerateClientID()

	m.Register(LedgerEventsService, func() actor.Receiver {
		return NewLedgerEventActor(m.messaging, prefix, clientID, m.logger)
	})
	return nil
}

// Register spawns an actor service under a unique name
func (m *ActorServiceManager) Register(name string, producer actor.Producer) {
	m.logger.Debug(internal.ComponentService, "Registering actor service: %s", name)

	pid := m.engine.Spawn(producer, name)

	m.mu.Lock()
	m.services[name] = pid
	m.serviceInfo[name] = &interfaces.ServiceInfo{
		Name:   name,
		Status: interfaces.ServiceStatusStopped,
	}
	m.mu.Unlock()
}

func (m *ActorServiceManager) pid(name string) (*actor.PID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pid, exists := m.services[name]
	if !exists {
		return nil, fmt.Errorf("service %s not found", name)
	}
	return pid, nil
}

func (m *ActorServiceManager) setStatus(name string, status interfaces.ServiceStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if info, ok := m.serviceInfo[name]; ok {
		info.Status = status
		if status == interfaces.ServiceStatusRunning {
			info.StartTime = time.Now()
		}
	}
}

// StartService starts a specific actor service by name
func (m *ActorServiceManager) StartService(name string) error {
	pid, err := m.pid(name)
	if err != nil {
		return err
	}
	m.engine.Send(pid, StartMsg{})
	m.setStatus(name, interfaces.ServiceStatusRunning)
	return nil
}

// StopService stops a specific actor service by name
func (m *ActorServiceManager) StopService(name string) error {
	pid, err := m.pid(name)
	if err != nil {
		return err
	}
	m.engine.Send(pid, StopMsg{})
	m.setStatus(name, interfaces.ServiceStatusStopped)
	return nil
}

func (m *ActorServiceManager) names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.services))
	for name := range m.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StartAll starts all registered actor services
func (m *ActorServiceManager) StartAll() error {
	m.logger.Debug(internal.ComponentService, "Starting all actor services")

	var g errgroup.Group
	for _, name := range m.names() {
		g.Go(func() error {
			return m.StartService(name)
		})
	}
	return g.Wait()
}

// StopAll stops all running actor services
func (m *ActorServiceManager) StopAll() error {
	m.logger.Debug(internal.ComponentService, "Stopping all actor services")

	var g errgroup.Group
	for _, name := range m.names() {
		g.Go(func() error {
			return m.StopService(name)
		})
	}
	return g.Wait()
}

// Flush waits until every message sent to the service so far has been handled
func (m *ActorServiceManager) Flush(name string) (int64, error) {
	pid, err := m.pid(name)
	if err != nil {
		return 0, err
	}

	result, err := m.engine.Request(pid, FlushMsg{}, requestTimeout).Result()
	if err != nil {
		return 0, fmt.Errorf("flush %s: %w", name, err)
	}
	flushed, ok := result.(FlushedMsg)
	if !ok {
		return 0, fmt.Errorf("flush %s: unexpected response %T", name, result)
	}
	return flushed.EventsHandled, nil
}

// Shutdown drains every service, stops it and poisons its actor
func (m *ActorServiceManager) Shutdown() error {
	m.logger.Debug(internal.ComponentService, "Shutting down actor service manager")

	var errs []error
	for _, name := range m.names() {
		if _, err := m.Flush(name); err != nil {
			errs = append(errs, err)
		}
	}
	if err := m.StopAll(); err != nil {
		errs = append(errs, err)
	}

	m.mu.Lock()
	for name, pid := range m.services {
		m.engine.Poison(pid)
		delete(m.services, name)
	}
	m.mu.Unlock()

	if len(errs) > 0 {
		return fmt.Errorf("shutdown: %v", errs)
	}
	return nil
}

// GetServiceInfo asks the actor for its current status
func (m *ActorServiceManager) GetServiceInfo(name string) (*interfaces.ServiceInfo, error) {
	pid, err := m.pid(name)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	info := *m.serviceInfo[name]
	m.mu.RUnlock()

	result, err := m.engine.Request(pid, StatusRequestMsg{}, requestTimeout).Result()
	if err != nil {
		info.Status = interfaces.ServiceStatusUnknown
		return &info, nil
	}

	if response, ok := result.(StatusResponseMsg); ok {
		info.Status = response.Status
		info.StartTime = response.StartTime
		info.EventsHandled = response.EventsHandled
		info.ErrorCount = response.ErrorCount
		info.LastErrorTime = response.LastErrorTime
		info.CustomStats = response.CustomStats
		if response.LastError != nil {
			info.LastError = response.LastError.Error()
		}
	}
	return &info, nil
}

// GetAllServicesInfo returns information about all registered services
func (m *ActorServiceManager) GetAllServicesInfo() []*interfaces.ServiceInfo {
	var result []*interfaces.ServiceInfo
	for _, name := range m.names() {
		info, err := m.GetServiceInfo(name)
		if err != nil {
			continue
		}
		result = append(result, info)
	}
	return result
}

// RecordAppended forwards a ledger record to the ledger event actor
func (m *ActorServiceManager) RecordAppended(rec models.Record) {
	m.send(RecordAppendedMsg{Record: rec})
}

// AtmDepositRecorded forwards a bank log entry to the ledger event actor
func (m *ActorServiceManager) AtmDepositRecorded(deposit models.AtmDeposit) {
	m.send(AtmDepositMsg{Deposit: deposit})
}

func (m *ActorServiceManager) send(msg any) {
	pid, err := m.pid(LedgerEventsService)
	if err != nil {
		return
	}
	m.engine.Send(pid, msg)
}
