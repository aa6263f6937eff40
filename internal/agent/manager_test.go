package agent

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/iwvelando/open-logistics/internal/forecast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(nil, testEngines(t), nil, DefaultConfigs())
	require.NoError(t, err)
	return m
}

func TestManagerRegistersDefaultsInactive(t *testing.T) {
	m := newTestManager(t)

	statuses := m.List()
	require.Len(t, statuses, 4)

	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, s.Name)
		assert.Equal(t, StateInactive, s.State, s.Name)
		assert.True(t, s.Enabled, s.Name)
		assert.Nil(t, s.LastActivity, s.Name)
	}
	assert.Equal(t, []string{"mission-coordinator", "resource-optimizer", "supply-chain", "threat-assessment"}, names)
}

func TestManagerRegisterErrors(t *testing.T) {
	m := newTestManager(t)

	assert.ErrorIs(t, m.Register(Config{Name: "supply-chain", Kind: KindSupplyChain}), ErrAgentExists)
	assert.ErrorIs(t, m.Register(Config{Kind: KindSupplyChain}), ErrEmptyAgentName)
	assert.ErrorIs(t, m.Register(Config{Name: "weather", Kind: "weather"}), ErrUnknownKind)

	_, err := NewManager(nil, Engines{}, nil, []Config{
		{Name: "a", Kind: KindSupplyChain},
		{Name: "a", Kind: KindThreatAssessment},
	})
	assert.ErrorIs(t, err, ErrAgentExists)
}

func TestManagerLifecycle(t *testing.T) {
	m := newTestManager(t)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	assert.ErrorIs(t, m.Start("non-existent"), ErrAgentNotFound)
	assert.ErrorIs(t, m.Stop("non-existent"), ErrAgentNotFound)
	assert.ErrorIs(t, m.Restart("non-existent"), ErrAgentNotFound)

	require.NoError(t, m.Start("supply-chain"))
	require.NoError(t, m.Start("supply-chain"), "starting a running agent is a no-op")

	clock = clock.Add(90 * time.Second)
	status, err := m.Status("supply-chain")
	require.NoError(t, err)
	assert.Equal(t, StateActive, status.State)
	assert.Equal(t, 90.0, status.UptimeSeconds)
	require.NotNil(t, status.LastActivity)

	require.NoError(t, m.Stop("supply-chain"))
	require.NoError(t, m.Stop("supply-chain"), "stopping an inactive agent is a no-op")
	status, err = m.Status("supply-chain")
	require.NoError(t, err)
	assert.Equal(t, StateInactive, status.State)
	assert.Zero(t, status.UptimeSeconds)

	require.NoError(t, m.Restart("supply-chain"))
	status, err = m.Status("supply-chain")
	require.NoError(t, err)
	assert.Equal(t, StateActive, status.State)

	_, err = m.Status("non-existent")
	assert.ErrorIs(t, err, ErrAgentNotFound)
}

func TestManagerDisabledAgent(t *testing.T) {
	m, err := NewManager(nil, testEngines(t), nil, []Config{
		{Name: "on", Kind: KindSupplyChain, Enabled: true},
		{Name: "off", Kind: KindThreatAssessment, Enabled: false},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, m.Start("off"), ErrAgentDisabled)

	running, err := m.StartEnabled()
	require.NoError(t, err)
	assert.Equal(t, 1, running)
	assert.Equal(t, 1, m.Health().ActiveAgents)
}

func TestManagerSendToStoppedAgent(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Send(context.Background(), "supply-chain", Message{Text: "hello"})
	require.ErrorIs(t, err, ErrAgentNotRunning)
	assert.Contains(t, err.Error(), "not running")

	status, err := m.Status("supply-chain")
	require.NoError(t, err)
	assert.Zero(t, status.MessagesProcessed)
	assert.Zero(t, status.Errors)

	_, err = m.Send(context.Background(), "non-existent", Message{})
	assert.ErrorIs(t, err, ErrAgentNotFound)
}

func TestManagerHealthCountsMessagesAndErrors(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Start("supply-chain"))

	for i := 0; i < 8; i++ {
		resp, err := m.Send(context.Background(), "supply-chain", withOptimization("plan"))
		require.NoError(t, err)
		assert.Equal(t, "supply-chain", resp.AgentName)
	}
	bad := forecast.Request{TimeHorizon: 0, HistoricalData: []float64{1}}
	for i := 0; i < 2; i++ {
		_, err := m.Send(context.Background(), "supply-chain", Message{Context: &MessageContext{Forecast: &bad}})
		require.Error(t, err)
	}

	health := m.Health()
	assert.Equal(t, "healthy", health.ManagerStatus)
	assert.Equal(t, 4, health.TotalAgents)
	assert.Equal(t, 1, health.ActiveAgents)

	sc := health.Agents["supply-chain"]
	assert.Equal(t, StateActive, sc.State)
	assert.Equal(t, int64(10), sc.MessagesProcessed)
	assert.Equal(t, int64(2), sc.Errors)
	assert.InDelta(t, 0.2, sc.ErrorRate, 1e-12)

	assert.Zero(t, health.Agents["threat-assessment"].ErrorRate)
}

func TestManagerConfigure(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Start("supply-chain"))

	require.NoError(t, m.Configure("supply-chain", Config{Kind: KindSupplyChain, Enabled: true, Description: "theatre stock"}))
	status, err := m.Status("supply-chain")
	require.NoError(t, err)
	assert.Equal(t, StateActive, status.State)
	assert.Equal(t, "theatre stock", status.Description)

	require.NoError(t, m.Configure("supply-chain", Config{Name: "supply-chain", Kind: KindSupplyChain, Enabled: false}))
	status, err = m.Status("supply-chain")
	require.NoError(t, err)
	assert.Equal(t, StateInactive, status.State)
	assert.False(t, status.Enabled)

	assert.Error(t, m.Configure("supply-chain", Config{Name: "renamed", Kind: KindSupplyChain}))
	assert.ErrorIs(t, m.Configure("supply-chain", Config{Kind: "weather"}), ErrUnknownKind)
	assert.ErrorIs(t, m.Configure("non-existent", Config{Kind: KindSupplyChain}), ErrAgentNotFound)
}

func TestManagerShutdown(t *testing.T) {
	m := newTestManager(t)
	_, err := m.StartEnabled()
	require.NoError(t, err)
	require.Equal(t, 4, m.Health().ActiveAgents)

	m.Shutdown()
	m.Shutdown()

	health := m.Health()
	assert.Equal(t, "stopped", health.ManagerStatus)
	assert.Zero(t, health.ActiveAgents)
	assert.ErrorIs(t, m.Start("supply-chain"), ErrManagerClosed)
	assert.ErrorIs(t, m.Register(Config{Name: "late", Kind: KindSupplyChain}), ErrManagerClosed)

	_, err = m.Send(context.Background(), "supply-chain", Message{})
	assert.ErrorIs(t, err, ErrManagerClosed)
}

func TestManagerConcurrentSend(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Start("resource-optimizer"))

	const workers = 32
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Send(context.Background(), "resource-optimizer", withOptimization("score")); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Send() error = %v", err)
	}
	status, err := m.Status("resource-optimizer")
	require.NoError(t, err)
	assert.Equal(t, int64(workers), status.MessagesProcessed)
}
