package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/open-logistics/internal/agent"
	"github.com/iwvelando/open-logistics/internal/config"
	"github.com/iwvelando/open-logistics/pkg/constants"
	"github.com/iwvelando/open-logistics/pkg/format"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newAgentsCommand(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Inspect and message the configured agents",
	}

	cmd.AddCommand(newAgentsListCommand(root))
	cmd.AddCommand(newAgentsStatusCommand(root))
	cmd.AddCommand(newAgentsAskCommand(root))

	return cmd
}

// withManager opens a session, starts the enabled agents and runs fn
// against them.
func withManager(root *rootFlags, cmd *cobra.Command, fn func(*session, *agent.Manager) error) error {
	s, err := root.open(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	manager, err := s.newManager()
	if err != nil {
		return err
	}
	defer manager.Shutdown()

	return fn(s, manager)
}

func newAgentsListCommand(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the configured agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(root, cmd, func(s *session, manager *agent.Manager) error {
				statuses := manager.List()
				w := cmd.OutOrStdout()
				if s.format == constants.OutputFormatJSON {
					return writeJSON(w, statuses)
				}
				for _, status := range statuses {
					printStatusLine(w, status)
				}
				return nil
			})
		},
	}
}

func newAgentsStatusCommand(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status [name]",
		Short: "Show one agent, or the health of all agents",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withManager(root, cmd, func(s *session, manager *agent.Manager) error {
				w := cmd.OutOrStdout()
				if len(args) == 0 {
					health := manager.Health()
					if s.format == constants.OutputFormatJSON {
						return writeJSON(w, health)
					}
					fmt.Fprintf(w, "Manager: %s (%d of %d agents active)\n",
						health.ManagerStatus, health.ActiveAgents, health.TotalAgents)
					for _, status := range manager.List() {
						printStatusLine(w, status)
					}
					return nil
				}

				status, err := manager.Status(args[0])
				if err != nil {
					return err
				}
				if s.format == constants.OutputFormatJSON {
					return writeJSON(w, status)
				}
				printStatusLine(w, status)
				if status.Description != "" {
					fmt.Fprintf(w, "  %s\n", status.Description)
				}
				return nil
			})
		},
	}
}

func newAgentsAskCommand(root *rootFlags) *cobra.Command {
	var requestPath string

	cmd := &cobra.Command{
		Use:   "ask <name> <message>",
		Short: "Send a message to an agent",
		Example: `  # Ask the threat assessment agent about a plan
  open-logistics agents ask threat-assessment "assess the convoy plan" --request request.yaml`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := agent.Message{Text: strings.Join(args[1:], " ")}
			if requestPath != "" {
				msgCtx, err := config.LoadMessageContext(requestPath)
				if err != nil {
					return err
				}
				msg.Context = msgCtx
			}

			return withManager(root, cmd, func(s *session, manager *agent.Manager) error {
				resp, err := manager.Send(cmd.Context(), args[0], msg)
				if err != nil {
					s.logger.Error("agent message failed",
						zap.String("op", "main.agentsAsk"),
						zap.String("agent", args[0]),
						zap.Error(err),
					)
					return err
				}
				if s.format == constants.OutputFormatJSON {
					return writeJSON(cmd.OutOrStdout(), resp)
				}
				_, err = io.WriteString(cmd.OutOrStdout(), resp.Response)
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&requestPath, "request", "r", "", "optimization and/or forecast request file (YAML or JSON)")

	return cmd
}

func printStatusLine(w io.Writer, status agent.Status) {
	enabled := "enabled"
	if !status.Enabled {
		enabled = "disabled"
	}
	fmt.Fprintf(w, "%s (%s): %s, %s, %s messages, %s errors\n",
		status.Name, status.Type, status.State, enabled,
		format.Quantity(float64(status.MessagesProcessed)), format.Quantity(float64(status.Errors)))
}
