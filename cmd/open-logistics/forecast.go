package main

import (
	"fmt"

	"github.com/iwvelando/open-logistics/internal/config"
	"github.com/iwvelando/open-logistics/internal/forecast"
	"github.com/iwvelando/open-logistics/pkg/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newForecastCommand(root *rootFlags) *cobra.Command {
	var (
		requestPath string
		history     []float64
		horizon     int
	)

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast demand from a historical series",
		Example: `  # Forecast the next week from a daily series
  open-logistics forecast --history 100,120,110,130,125,140,135 --horizon 7

  # Forecast from a request file
  open-logistics forecast --request demand.yaml --output-format csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			var req forecast.Request
			switch {
			case requestPath != "" && len(history) > 0:
				return fmt.Errorf("use either --request or --history, not both")
			case requestPath != "":
				if req, err = config.LoadForecastRequest(requestPath); err != nil {
					return err
				}
				if cmd.Flags().Changed("horizon") {
					req.TimeHorizon = horizon
				}
			case len(history) > 0:
				req = forecast.Request{HistoricalData: history, TimeHorizon: horizon}
			default:
				return fmt.Errorf("either --request or --history is required")
			}

			result, err := s.forecaster.Forecast(req)
			if err != nil {
				s.logger.Error("failed to compute forecast",
					zap.String("op", "main.forecast"),
					zap.Error(err),
				)
				return err
			}
			return output.WriteForecast(cmd.OutOrStdout(), s.format, result, s.labels)
		},
	}

	cmd.Flags().StringVarP(&requestPath, "request", "r", "", "forecast request file (YAML or JSON)")
	cmd.Flags().Float64SliceVar(&history, "history", nil, "comma-separated historical demand series")
	cmd.Flags().IntVar(&horizon, "horizon", 7, "number of future periods to forecast")

	return cmd
}
