package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iwvelando/open-logistics/internal/config"
	"github.com/iwvelando/open-logistics/internal/optimizer"
	"github.com/iwvelando/open-logistics/pkg/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type optimizeFlags struct {
	requestPath string
	inventory   []string
	constraints []string
	unitCosts   []string
	objectives  []string
	horizon     int
	priority    string
}

func newOptimizeCommand(root *rootFlags) *cobra.Command {
	flags := &optimizeFlags{}

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Recommend an allocation plan for a supply network",
		Example: `  # Optimize from a request file
  open-logistics optimize --request request.yaml

  # Optimize from flags
  open-logistics optimize --inventory fuel=500 --inventory spares=120 \
    --constraint budget=25000 --objective maximize_readiness --priority high`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			req, err := flags.request(cmd)
			if err != nil {
				return err
			}

			result, err := s.optimizer.Optimize(req)
			if err != nil {
				s.logger.Error("failed to compute optimization",
					zap.String("op", "main.optimize"),
					zap.Error(err),
				)
				return err
			}
			return output.WriteOptimization(cmd.OutOrStdout(), s.format, result)
		},
	}

	cmd.Flags().StringVarP(&flags.requestPath, "request", "r", "", "optimization request file (YAML or JSON)")
	cmd.Flags().StringArrayVar(&flags.inventory, "inventory", nil, "on-hand quantity as item=qty (repeatable)")
	cmd.Flags().StringArrayVar(&flags.constraints, "constraint", nil, "constraint as key=value (repeatable)")
	cmd.Flags().StringArrayVar(&flags.unitCosts, "unit-cost", nil, "unit cost as item=cost (repeatable)")
	cmd.Flags().StringSliceVar(&flags.objectives, "objective", []string{"minimize_cost"}, "objectives in priority order (repeatable)")
	cmd.Flags().IntVar(&flags.horizon, "horizon", 30, "planning horizon in periods")
	cmd.Flags().StringVar(&flags.priority, "priority", "", "priority level: low, medium or high")

	return cmd
}

// request builds the optimization request from --request or from the
// individual flags. With --request, explicitly set --horizon and --priority
// override the file.
func (f *optimizeFlags) request(cmd *cobra.Command) (optimizer.Request, error) {
	if f.requestPath != "" {
		if len(f.inventory) > 0 || len(f.constraints) > 0 || len(f.unitCosts) > 0 {
			return optimizer.Request{}, fmt.Errorf("use either --request or --inventory/--constraint/--unit-cost, not both")
		}
		req, err := config.LoadOptimizationRequest(f.requestPath)
		if err != nil {
			return req, err
		}
		if cmd.Flags().Changed("horizon") {
			req.TimeHorizon = f.horizon
		}
		if cmd.Flags().Changed("priority") {
			req.PriorityLevel = f.priority
		}
		if cmd.Flags().Changed("objective") {
			req.Objectives = f.objectives
		}
		return req, nil
	}

	if len(f.inventory) == 0 {
		return optimizer.Request{}, fmt.Errorf("either --request or at least one --inventory is required")
	}

	data := &optimizer.SupplyChainData{Inventory: map[string]float64{}}
	for _, raw := range f.inventory {
		item, qty, err := parseQuantity("inventory", raw)
		if err != nil {
			return optimizer.Request{}, err
		}
		data.Inventory[item] = qty
	}
	for _, raw := range f.unitCosts {
		item, cost, err := parseQuantity("unit-cost", raw)
		if err != nil {
			return optimizer.Request{}, err
		}
		if data.UnitCosts == nil {
			data.UnitCosts = map[string]float64{}
		}
		data.UnitCosts[item] = cost
	}
	for _, raw := range f.constraints {
		key, value, err := parseAssignment("constraint", raw)
		if err != nil {
			return optimizer.Request{}, err
		}
		if data.Constraints == nil {
			data.Constraints = map[string]interface{}{}
		}
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			data.Constraints[key] = n
		} else {
			data.Constraints[key] = value
		}
	}

	return optimizer.Request{
		SupplyChainData: data,
		Objectives:      f.objectives,
		TimeHorizon:     f.horizon,
		PriorityLevel:   f.priority,
	}, nil
}

func parseAssignment(flag, raw string) (string, string, error) {
	key, value, ok := strings.Cut(raw, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("--%s expects key=value, got %q", flag, raw)
	}
	return key, strings.TrimSpace(value), nil
}

func parseQuantity(flag, raw string) (string, float64, error) {
	key, value, err := parseAssignment(flag, raw)
	if err != nil {
		return "", 0, err
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return "", 0, fmt.Errorf("--%s %s: %q is not a number", flag, key, value)
	}
	return key, n, nil
}
