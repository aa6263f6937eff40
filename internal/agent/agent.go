// Package agent exposes the optimization and forecasting engines through
// named conversational agents. Agents carry no analysis of their own: they
// invoke the engines, pass results through unchanged, derive a few labelled
// attributes from them and render a text reply.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/open-logistics/internal/forecast"
	"github.com/iwvelando/open-logistics/internal/optimizer"
	"go.uber.org/zap"
)

// Kind names an agent behaviour.
type Kind string

const (
	KindSupplyChain        Kind = "supply-chain"
	KindResourceOptimizer  Kind = "resource-optimizer"
	KindThreatAssessment   Kind = "threat-assessment"
	KindMissionCoordinator Kind = "mission-coordinator"
)

// Kinds lists every supported kind in registration order.
var Kinds = []Kind{KindSupplyChain, KindThreatAssessment, KindResourceOptimizer, KindMissionCoordinator}

// Valid reports whether k is a supported kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Config declares one agent instance.
type Config struct {
	Name        string `json:"name"`
	Kind        Kind   `json:"type"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description,omitempty"`
}

// DefaultConfigs returns one enabled agent of each kind, named after its kind.
func DefaultConfigs() []Config {
	return []Config{
		{Name: string(KindSupplyChain), Kind: KindSupplyChain, Enabled: true, Description: "Plans stock levels and projects demand"},
		{Name: string(KindThreatAssessment), Kind: KindThreatAssessment, Enabled: true, Description: "Grades plan risk from engine confidence"},
		{Name: string(KindResourceOptimizer), Kind: KindResourceOptimizer, Enabled: true, Description: "Scores allocations and flags saturated resources"},
		{Name: string(KindMissionCoordinator), Kind: KindMissionCoordinator, Enabled: true, Description: "Tracks mission readiness across plans and forecasts"},
	}
}

// Message is a request sent to an agent. Context optionally carries the
// engine requests the agent should run.
type Message struct {
	Text    string          `json:"message" yaml:"message"`
	Context *MessageContext `json:"context,omitempty" yaml:"context,omitempty"`
}

// MessageContext holds structured engine requests attached to a message.
type MessageContext struct {
	Optimization *optimizer.Request `json:"optimization,omitempty" yaml:"optimization,omitempty"`
	Forecast     *forecast.Request  `json:"forecast,omitempty" yaml:"forecast,omitempty"`
}

// Response is an agent reply. Optimization and Forecast are the engine
// results, unchanged.
type Response struct {
	ID              string                 `json:"id"`
	AgentName       string                 `json:"agent_name"`
	AgentType       Kind                   `json:"agent_type"`
	Response        string                 `json:"response"`
	Optimization    *optimizer.Result      `json:"optimization,omitempty"`
	Forecast        *forecast.Result       `json:"forecast,omitempty"`
	Recommendations []string               `json:"recommendations,omitempty"`
	Attributes      map[string]interface{} `json:"attributes,omitempty"`
	Timestamp       time.Time              `json:"timestamp"`
}

// Engines are the core collaborators an agent may invoke. Either may be nil,
// in which case requests needing it fail.
type Engines struct {
	Optimizer  *optimizer.Optimizer
	Forecaster *forecast.Forecaster
}

// ErrEngineUnavailable is returned when a message needs an engine that was not provided.
var ErrEngineUnavailable = errors.New("engine unavailable")

// Agent handles messages for one configured instance. It is immutable and
// safe for concurrent use.
type Agent struct {
	cfg       Config
	engines   Engines
	formatter *Formatter
	logger    *zap.Logger
}

// New builds an agent for cfg.
func New(logger *zap.Logger, cfg Config, engines Engines, formatter *Formatter) (*Agent, error) {
	if cfg.Name == "" {
		return nil, ErrEmptyAgentName
	}
	if !cfg.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if formatter == nil {
		formatter = NewFormatter(nil)
	}
	return &Agent{cfg: cfg, engines: engines, formatter: formatter, logger: logger}, nil
}

// Name returns the configured agent name.
func (a *Agent) Name() string { return a.cfg.Name }

// Kind returns the agent kind.
func (a *Agent) Kind() Kind { return a.cfg.Kind }

// Handle runs the engine requests carried by msg and builds the reply.
func (a *Agent) Handle(ctx context.Context, msg Message) (*Response, error) {
	op := "agent.Handle"
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp := &Response{
		ID:         uuid.NewString(),
		AgentName:  a.cfg.Name,
		AgentType:  a.cfg.Kind,
		Attributes: map[string]interface{}{},
		Timestamp:  time.Now().UTC(),
	}

	var optReq *optimizer.Request
	if msg.Context != nil && msg.Context.Optimization != nil {
		if a.engines.Optimizer == nil {
			return nil, fmt.Errorf("%w: optimizer", ErrEngineUnavailable)
		}
		optReq = msg.Context.Optimization
		result, err := a.engines.Optimizer.Optimize(*optReq)
		if err != nil {
			return nil, fmt.Errorf("agent %s optimization failed: %w", a.cfg.Name, err)
		}
		resp.Optimization = result
	}
	if msg.Context != nil && msg.Context.Forecast != nil {
		if a.engines.Forecaster == nil {
			return nil, fmt.Errorf("%w: forecaster", ErrEngineUnavailable)
		}
		result, err := a.engines.Forecaster.Forecast(*msg.Context.Forecast)
		if err != nil {
			return nil, fmt.Errorf("agent %s forecast failed: %w", a.cfg.Name, err)
		}
		resp.Forecast = result
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	derive(a.cfg.Kind, optReq, resp)
	resp.Response = a.formatter.Format(msg.Text, resp)

	a.logger.Debug("agent handled message",
		zap.String("op", op),
		zap.String("agent", a.cfg.Name),
		zap.String("kind", string(a.cfg.Kind)),
		zap.Bool("optimization", resp.Optimization != nil),
		zap.Bool("forecast", resp.Forecast != nil),
	)
	return resp, nil
}
