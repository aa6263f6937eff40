package agent

import "errors"

var (
	// ErrAgentNotFound indicates the requested agent name is not registered.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrAgentExists indicates an agent with the same name is already registered.
	ErrAgentExists = errors.New("agent already registered")

	// ErrEmptyAgentName indicates an agent was registered without a name.
	ErrEmptyAgentName = errors.New("agent name is empty")

	// ErrAgentNotRunning indicates a message was sent to a stopped agent.
	ErrAgentNotRunning = errors.New("agent is not running")

	// ErrAgentDisabled indicates a start was requested for a disabled agent.
	ErrAgentDisabled = errors.New("agent is disabled")

	// ErrUnknownKind indicates an agent type outside the supported set.
	ErrUnknownKind = errors.New("unknown agent type")

	// ErrManagerClosed indicates the manager has been shut down.
	ErrManagerClosed = errors.New("agent manager is shut down")
)
