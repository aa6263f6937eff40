package agent

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is the lifecycle state of a registered agent.
type State string

const (
	StateActive   State = "active"
	StateInactive State = "inactive"
)

// Status describes one registered agent.
type Status struct {
	Name              string     `json:"name"`
	Type              Kind       `json:"type"`
	Description       string     `json:"description,omitempty"`
	Enabled           bool       `json:"enabled"`
	State             State      `json:"status"`
	LastActivity      *time.Time `json:"last_activity,omitempty"`
	MessagesProcessed int64      `json:"messages_processed"`
	Errors            int64      `json:"errors"`
	UptimeSeconds     float64    `json:"uptime_seconds"`
}

// AgentHealth is the per-agent part of a health report.
type AgentHealth struct {
	State             State   `json:"status"`
	MessagesProcessed int64   `json:"messages_processed"`
	Errors            int64   `json:"errors"`
	ErrorRate         float64 `json:"error_rate"`
}

// Health summarises the manager and every registered agent.
type Health struct {
	ManagerStatus string                 `json:"manager_status"`
	TotalAgents   int                    `json:"total_agents"`
	ActiveAgents  int                    `json:"active_agents"`
	Agents        map[string]AgentHealth `json:"agent_health"`
}

type entry struct {
	cfg          Config
	agent        *Agent
	startedAt    time.Time
	lastActivity time.Time
	messages     int64
	errors       int64
}

// Manager owns the registered agents and their lifecycle. Safe for
// concurrent use.
type Manager struct {
	mu        sync.RWMutex
	logger    *zap.Logger
	engines   Engines
	formatter *Formatter
	entries   map[string]*entry
	closed    bool
	now       func() time.Time
}

// NewManager registers configs without starting them.
func NewManager(logger *zap.Logger, engines Engines, formatter *Formatter, configs []Config) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if formatter == nil {
		formatter = NewFormatter(nil)
	}
	m := &Manager{
		logger:    logger,
		engines:   engines,
		formatter: formatter,
		entries:   make(map[string]*entry),
		now:       time.Now,
	}
	for _, cfg := range configs {
		if err := m.Register(cfg); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Register adds an agent configuration. The agent starts inactive.
func (m *Manager) Register(cfg Config) error {
	if cfg.Name == "" {
		return ErrEmptyAgentName
	}
	if !cfg.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrManagerClosed
	}
	if _, exists := m.entries[cfg.Name]; exists {
		return fmt.Errorf("%w: %s", ErrAgentExists, cfg.Name)
	}
	m.entries[cfg.Name] = &entry{cfg: cfg}
	return nil
}

// Start activates a registered agent. Starting a running agent is a no-op.
func (m *Manager) Start(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startLocked(name)
}

func (m *Manager) startLocked(name string) error {
	if m.closed {
		return ErrManagerClosed
	}
	e, ok := m.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}
	if e.agent != nil {
		return nil
	}
	if !e.cfg.Enabled {
		return fmt.Errorf("%w: %s", ErrAgentDisabled, name)
	}

	a, err := New(m.logger, e.cfg, m.engines, m.formatter)
	if err != nil {
		return fmt.Errorf("failed to create agent %q: %w", name, err)
	}
	e.agent = a
	e.startedAt = m.now()
	e.lastActivity = e.startedAt

	m.logger.Info("agent started",
		zap.String("op", "agent.Manager.Start"),
		zap.String("agent", name),
		zap.String("kind", string(e.cfg.Kind)),
	)
	return nil
}

// StartEnabled starts every enabled agent and returns how many are running.
func (m *Manager) StartEnabled() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	running := 0
	for _, name := range m.namesLocked() {
		e := m.entries[name]
		if !e.cfg.Enabled {
			continue
		}
		if err := m.startLocked(name); err != nil {
			return running, err
		}
		running++
	}
	return running, nil
}

// Stop deactivates an agent. Stopping an inactive agent is a no-op.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}
	m.stopLocked(e)
	return nil
}

func (m *Manager) stopLocked(e *entry) {
	if e.agent == nil {
		return
	}
	e.agent = nil
	e.startedAt = time.Time{}
	m.logger.Info("agent stopped",
		zap.String("op", "agent.Manager.Stop"),
		zap.String("agent", e.cfg.Name),
	)
}

// Restart stops and starts an agent.
func (m *Manager) Restart(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}
	m.stopLocked(e)
	return m.startLocked(name)
}

// Configure replaces an agent's configuration. A running agent is restarted
// with the new configuration, or stopped if the new configuration disables it.
func (m *Manager) Configure(name string, cfg Config) error {
	if cfg.Name == "" {
		cfg.Name = name
	}
	if cfg.Name != name {
		return fmt.Errorf("cannot rename agent %q to %q", name, cfg.Name)
	}
	if !cfg.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}
	wasRunning := e.agent != nil
	m.stopLocked(e)
	e.cfg = cfg
	if wasRunning && cfg.Enabled {
		return m.startLocked(name)
	}
	return nil
}

// Send delivers msg to a running agent. A stopped agent yields
// ErrAgentNotRunning and no counters change; a failed call counts as an error.
func (m *Manager) Send(ctx context.Context, name string, msg Message) (*Response, error) {
	m.mu.RLock()
	e, ok := m.entries[name]
	var a *Agent
	if ok {
		a = e.agent
	}
	closed := m.closed
	m.mu.RUnlock()

	switch {
	case closed:
		return nil, ErrManagerClosed
	case !ok:
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	case a == nil:
		return nil, fmt.Errorf("%w: %s", ErrAgentNotRunning, name)
	}

	resp, err := a.Handle(ctx, msg)

	m.mu.Lock()
	e.messages++
	e.lastActivity = m.now()
	if err != nil {
		e.errors++
	}
	m.mu.Unlock()

	if err != nil {
		m.logger.Warn("agent message failed",
			zap.String("op", "agent.Manager.Send"),
			zap.String("agent", name),
			zap.Error(err),
		)
		return nil, err
	}
	return resp, nil
}

// Status reports a single agent.
func (m *Manager) Status(name string) (Status, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[name]
	if !ok {
		return Status{}, fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}
	return m.statusLocked(e), nil
}

// List reports every registered agent, sorted by name.
func (m *Manager) List() []Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	statuses := make([]Status, 0, len(m.entries))
	for _, name := range m.namesLocked() {
		statuses = append(statuses, m.statusLocked(m.entries[name]))
	}
	return statuses
}

// Health reports message and error counts for every agent.
func (m *Manager) Health() Health {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h := Health{
		ManagerStatus: "healthy",
		TotalAgents:   len(m.entries),
		Agents:        make(map[string]AgentHealth, len(m.entries)),
	}
	if m.closed {
		h.ManagerStatus = "stopped"
	}
	for name, e := range m.entries {
		state := StateInactive
		if e.agent != nil {
			state = StateActive
			h.ActiveAgents++
		}
		rate := 0.0
		if e.messages > 0 {
			rate = float64(e.errors) / float64(e.messages)
		}
		h.Agents[name] = AgentHealth{
			State:             state,
			MessagesProcessed: e.messages,
			Errors:            e.errors,
			ErrorRate:         rate,
		}
	}
	return h
}

// Shutdown stops every agent. Later lifecycle calls fail with ErrManagerClosed.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	for _, name := range m.namesLocked() {
		m.stopLocked(m.entries[name])
	}
	m.closed = true
	m.logger.Info("agent manager shut down", zap.String("op", "agent.Manager.Shutdown"))
}

func (m *Manager) statusLocked(e *entry) Status {
	s := Status{
		Name:              e.cfg.Name,
		Type:              e.cfg.Kind,
		Description:       e.cfg.Description,
		Enabled:           e.cfg.Enabled,
		State:             StateInactive,
		MessagesProcessed: e.messages,
		Errors:            e.errors,
	}
	if !e.lastActivity.IsZero() {
		last := e.lastActivity
		s.LastActivity = &last
	}
	if e.agent != nil {
		s.State = StateActive
		s.UptimeSeconds = m.now().Sub(e.startedAt).Seconds()
	}
	return s
}

func (m *Manager) namesLocked() []string {
	names := make([]string, 0, len(m.entries))
	for name := range m.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
