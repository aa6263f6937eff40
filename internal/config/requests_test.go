package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/iwvelando/open-logistics/pkg/validation"
)

func TestDecodeOptimizationRequest(t *testing.T) {
	tests := []struct {
		name   string
		format string
		doc    string
	}{
		{
			name:   "YAML",
			format: DocumentYAML,
			doc: `supply_chain_data:
  inventory:
    Missiles: 1000
    radar_systems: 50
  constraints:
    budget: 10000000
    timeline: 30
    security_clearance: SECRET
  unit_costs:
    Missiles: 2500
objectives:
  - minimize_cost
  - maximize_readiness
time_horizon: 30
priority_level: high
`,
		},
		{
			name:   "JSON",
			format: DocumentJSON,
			doc: `{
	"supply_chain_data": {
		"inventory": {"Missiles": 1000, "radar_systems": 50},
		"constraints": {"budget": 10000000, "timeline": "30", "security_clearance": "SECRET"},
		"unit_costs": {"Missiles": 2500}
	},
	"objectives": ["minimize_cost", "maximize_readiness"],
	"time_horizon": 30,
	"priority_level": "high"
}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := DecodeOptimizationRequest([]byte(tt.doc), tt.format)
			if err != nil {
				t.Fatalf("DecodeOptimizationRequest() error = %v", err)
			}
			if req.SupplyChainData == nil {
				t.Fatalf("DecodeOptimizationRequest() returned nil supply chain data")
			}
			wantInventory := map[string]float64{"Missiles": 1000, "radar_systems": 50}
			if !reflect.DeepEqual(req.SupplyChainData.Inventory, wantInventory) {
				t.Errorf("Inventory = %v, expected %v (item key case preserved)", req.SupplyChainData.Inventory, wantInventory)
			}
			if req.SupplyChainData.Constraints["security_clearance"] != "SECRET" {
				t.Errorf("Constraints[security_clearance] = %v, expected SECRET", req.SupplyChainData.Constraints["security_clearance"])
			}
			if req.SupplyChainData.UnitCosts["Missiles"] != 2500 {
				t.Errorf("UnitCosts[Missiles] = %v, expected 2500", req.SupplyChainData.UnitCosts["Missiles"])
			}
			if !reflect.DeepEqual(req.Objectives, []string{"minimize_cost", "maximize_readiness"}) {
				t.Errorf("Objectives = %v", req.Objectives)
			}
			if req.TimeHorizon != 30 || req.PriorityLevel != "high" {
				t.Errorf("TimeHorizon = %d, PriorityLevel = %q", req.TimeHorizon, req.PriorityLevel)
			}
		})
	}
}

func TestDecodeOptimizationRequestRejects(t *testing.T) {
	tests := []struct {
		name   string
		format string
		doc    string
	}{
		{name: "Empty document", format: DocumentYAML, doc: "   \n"},
		{name: "Malformed JSON", format: DocumentJSON, doc: `{"supply_chain_data": `},
		{name: "Supply chain data is a list", format: DocumentYAML, doc: "supply_chain_data:\n  - fuel\n"},
		{name: "Supply chain data is a string", format: DocumentJSON, doc: `{"supply_chain_data": "fuel"}`},
		{name: "Non-numeric quantity", format: DocumentJSON, doc: `{"supply_chain_data": {"inventory": {"fuel": "lots"}}}`},
		{name: "Objectives not a list", format: DocumentYAML, doc: "objectives: minimize_cost\n"},
		{name: "Top-level list", format: DocumentYAML, doc: "- a\n- b\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeOptimizationRequest([]byte(tt.doc), tt.format)
			if err == nil {
				t.Fatalf("DecodeOptimizationRequest() expected error but got none")
			}
			if !validation.IsRejected(err) {
				t.Errorf("DecodeOptimizationRequest() error = %v, expected rejected input", err)
			}
		})
	}
}

func TestDecodeForecastRequest(t *testing.T) {
	want := []float64{100, 120, 110, 130, 125}
	tests := []struct {
		name   string
		format string
		doc    string
	}{
		{name: "historical_data", format: DocumentJSON, doc: `{"historical_data": [100, 120, 110, 130, 125], "time_horizon": 7}`},
		{name: "demand_history alias", format: DocumentJSON, doc: `{"demand_history": [100, 120, 110, 130, 125], "time_horizon": 7}`},
		{name: "Nested demand_history", format: DocumentYAML, doc: "historical_data:\n  demand_history: [100, 120, 110, 130, 125]\ntime_horizon: 7\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := DecodeForecastRequest([]byte(tt.doc), tt.format)
			if err != nil {
				t.Fatalf("DecodeForecastRequest() error = %v", err)
			}
			if !reflect.DeepEqual(req.HistoricalData, want) {
				t.Errorf("HistoricalData = %v, expected %v", req.HistoricalData, want)
			}
			if req.TimeHorizon != 7 {
				t.Errorf("TimeHorizon = %d, expected 7", req.TimeHorizon)
			}
		})
	}
}

func TestDecodeForecastRequestRejectsNonNumericSeries(t *testing.T) {
	_, err := DecodeForecastRequest([]byte(`{"historical_data": [1, "two"], "time_horizon": 3}`), DocumentJSON)
	if !validation.IsRejected(err) {
		t.Errorf("DecodeForecastRequest() error = %v, expected rejected input", err)
	}
}

func TestLoadRequestFiles(t *testing.T) {
	dir := t.TempDir()
	optPath := filepath.Join(dir, "optimize.yaml")
	fcPath := filepath.Join(dir, "forecast.json")
	if err := os.WriteFile(optPath, []byte("supply_chain_data:\n  inventory:\n    fuel: 10\nobjectives: [minimize_cost]\ntime_horizon: 5\n"), 0600); err != nil {
		t.Fatalf("failed to write request: %v", err)
	}
	if err := os.WriteFile(fcPath, []byte(`{"historical_data": [1, 2, 3], "time_horizon": 2}`), 0600); err != nil {
		t.Fatalf("failed to write request: %v", err)
	}

	opt, err := LoadOptimizationRequest(optPath)
	if err != nil {
		t.Fatalf("LoadOptimizationRequest() error = %v", err)
	}
	if opt.SupplyChainData.Inventory["fuel"] != 10 || opt.TimeHorizon != 5 {
		t.Errorf("LoadOptimizationRequest() = %+v", opt)
	}

	fc, err := LoadForecastRequest(fcPath)
	if err != nil {
		t.Fatalf("LoadForecastRequest() error = %v", err)
	}
	if len(fc.HistoricalData) != 3 || fc.TimeHorizon != 2 {
		t.Errorf("LoadForecastRequest() = %+v", fc)
	}

	if _, err := LoadForecastRequest(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Errorf("LoadForecastRequest() expected error for a missing file")
	}
}

func TestDocumentFormat(t *testing.T) {
	tests := []struct {
		input    string
		byPath   bool
		expected string
	}{
		{input: "req.json", byPath: true, expected: DocumentJSON},
		{input: "req.JSON", byPath: true, expected: DocumentJSON},
		{input: "req.yml", byPath: true, expected: DocumentYAML},
		{input: "req", byPath: true, expected: DocumentYAML},
		{input: "application/json; charset=utf-8", expected: DocumentJSON},
		{input: "application/yaml", expected: DocumentYAML},
		{input: "text/x-yaml", expected: DocumentYAML},
		{input: "", expected: DocumentJSON},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var got string
			if tt.byPath {
				got = DocumentFormatForPath(tt.input)
			} else {
				got = DocumentFormatForContentType(tt.input)
			}
			if got != tt.expected {
				t.Errorf("format(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDecodeMessageContext(t *testing.T) {
	tests := []struct {
		name             string
		format           string
		doc              string
		wantOptimization bool
		wantForecast     bool
	}{
		{
			name:   "Both sections",
			format: DocumentYAML,
			doc: `optimization:
  supply_chain_data:
    inventory:
      fuel: 10
  objectives: [minimize_cost]
  time_horizon: 5
forecast:
  historical_data: [1, 2, 3]
  time_horizon: 2
`,
			wantOptimization: true,
			wantForecast:     true,
		},
		{
			name:             "Bare optimization request",
			format:           DocumentJSON,
			doc:              `{"supply_chain_data":{"inventory":{"fuel":10}},"objectives":["minimize_cost"],"time_horizon":5}`,
			wantOptimization: true,
		},
		{
			name:         "Bare forecast request with alias",
			format:       DocumentJSON,
			doc:          `{"demand_history":[1,2,3],"time_horizon":2}`,
			wantForecast: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgCtx, err := DecodeMessageContext([]byte(tt.doc), tt.format)
			if err != nil {
				t.Fatalf("DecodeMessageContext() error = %v", err)
			}
			if (msgCtx.Optimization != nil) != tt.wantOptimization {
				t.Errorf("optimization present = %v, expected %v", msgCtx.Optimization != nil, tt.wantOptimization)
			}
			if (msgCtx.Forecast != nil) != tt.wantForecast {
				t.Errorf("forecast present = %v, expected %v", msgCtx.Forecast != nil, tt.wantForecast)
			}
			if msgCtx.Forecast != nil && len(msgCtx.Forecast.HistoricalData) != 3 {
				t.Errorf("expected 3 history points, got %v", msgCtx.Forecast.HistoricalData)
			}
			if msgCtx.Optimization != nil && msgCtx.Optimization.SupplyChainData.Inventory["fuel"] != 10 {
				t.Errorf("expected fuel inventory 10, got %v", msgCtx.Optimization.SupplyChainData.Inventory)
			}
		})
	}

	if _, err := DecodeMessageContext([]byte(`{"note":"nothing here"}`), DocumentJSON); !validation.IsRejected(err) {
		t.Errorf("expected rejected input for empty context, got %v", err)
	}
	if _, err := DecodeMessageContext([]byte(`{"optimization":{"supply_chain_data":[1]}}`), DocumentJSON); !validation.IsRejected(err) {
		t.Errorf("expected rejected input for malformed optimization, got %v", err)
	}
}
