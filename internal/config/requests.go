package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/iwvelando/open-logistics/internal/agent"
	"github.com/iwvelando/open-logistics/internal/forecast"
	"github.com/iwvelando/open-logistics/internal/optimizer"
	"github.com/iwvelando/open-logistics/pkg/validation"
	"gopkg.in/yaml.v3"
)

// Request document encodings.
const (
	DocumentJSON = "json"
	DocumentYAML = "yaml"
)

// DocumentFormatForPath picks the encoding of a request file from its extension.
func DocumentFormatForPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return DocumentJSON
	}
	return DocumentYAML
}

// DocumentFormatForContentType picks the encoding of a request body from its
// Content-Type header. Anything that is not YAML is treated as JSON.
func DocumentFormatForContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	switch strings.ToLower(mediaType) {
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return DocumentYAML
	}
	return DocumentJSON
}

// LoadOptimizationRequest reads an optimization request from a YAML or JSON file.
func LoadOptimizationRequest(path string) (optimizer.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return optimizer.Request{}, fmt.Errorf("failed to read request file: %w", err)
	}
	return DecodeOptimizationRequest(data, DocumentFormatForPath(path))
}

// LoadForecastRequest reads a forecast request from a YAML or JSON file.
func LoadForecastRequest(path string) (forecast.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return forecast.Request{}, fmt.Errorf("failed to read request file: %w", err)
	}
	return DecodeForecastRequest(data, DocumentFormatForPath(path))
}

// DecodeOptimizationRequest decodes an optimization request document. Item
// keys keep their case. A supply_chain_data value that is not a mapping, or
// any value of the wrong type, is rejected input.
func DecodeOptimizationRequest(data []byte, format string) (optimizer.Request, error) {
	op := "config.DecodeOptimizationRequest"
	var req optimizer.Request

	doc, err := decodeDocument(op, data, format)
	if err != nil {
		return req, err
	}
	if raw, ok := doc["supply_chain_data"]; ok && raw != nil {
		if _, isMap := raw.(map[string]interface{}); !isMap {
			return req, validation.Rejectf(op, "supply_chain_data", "must be a mapping, got %T", raw)
		}
	}
	if err := remarshal(op, doc, &req); err != nil {
		return req, err
	}
	return req, nil
}

// DecodeForecastRequest decodes a forecast request document. The series may
// be given as historical_data, as a top-level demand_history, or as a
// historical_data mapping holding demand_history.
func DecodeForecastRequest(data []byte, format string) (forecast.Request, error) {
	op := "config.DecodeForecastRequest"
	var req forecast.Request

	doc, err := decodeDocument(op, data, format)
	if err != nil {
		return req, err
	}
	switch hd := doc["historical_data"].(type) {
	case map[string]interface{}:
		doc["historical_data"] = hd["demand_history"]
	case nil:
		if series, ok := doc["demand_history"]; ok {
			doc["historical_data"] = series
		}
	}
	delete(doc, "demand_history")

	if err := remarshal(op, doc, &req); err != nil {
		return req, err
	}
	return req, nil
}

// LoadMessageContext reads the engine requests attached to an agent message.
func LoadMessageContext(path string) (*agent.MessageContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read request file: %w", err)
	}
	return DecodeMessageContext(data, DocumentFormatForPath(path))
}

// DecodeMessageContext decodes a message context document. It holds an
// optimization and/or forecast request under those keys, or is a bare
// optimization or forecast request.
func DecodeMessageContext(data []byte, format string) (*agent.MessageContext, error) {
	op := "config.DecodeMessageContext"

	doc, err := decodeDocument(op, data, format)
	if err != nil {
		return nil, err
	}

	sections := map[string]interface{}{}
	for _, key := range []string{"optimization", "forecast"} {
		if raw, ok := doc[key]; ok && raw != nil {
			sections[key] = raw
		}
	}
	if len(sections) == 0 {
		switch {
		case doc["supply_chain_data"] != nil:
			sections["optimization"] = doc
		case doc["historical_data"] != nil, doc["demand_history"] != nil:
			sections["forecast"] = doc
		default:
			return nil, validation.Rejectf(op, "", "document holds neither an optimization nor a forecast request")
		}
	}

	msgCtx := &agent.MessageContext{}
	if raw, ok := sections["optimization"]; ok {
		encoded, err := json.Marshal(raw)
		if err != nil {
			return nil, validation.Rejectf(op, "optimization", "unsupported value: %v", err)
		}
		req, err := DecodeOptimizationRequest(encoded, DocumentJSON)
		if err != nil {
			return nil, err
		}
		msgCtx.Optimization = &req
	}
	if raw, ok := sections["forecast"]; ok {
		encoded, err := json.Marshal(raw)
		if err != nil {
			return nil, validation.Rejectf(op, "forecast", "unsupported value: %v", err)
		}
		req, err := DecodeForecastRequest(encoded, DocumentJSON)
		if err != nil {
			return nil, err
		}
		msgCtx.Forecast = &req
	}
	return msgCtx, nil
}

func decodeDocument(op string, data []byte, format string) (map[string]interface{}, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, validation.Rejectf(op, "", "request document is empty")
	}

	doc := map[string]interface{}{}
	switch format {
	case DocumentJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, validation.Rejectf(op, "", "malformed JSON: %v", err)
		}
	case DocumentYAML, "":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, validation.Rejectf(op, "", "malformed YAML: %v", err)
		}
	default:
		return nil, fmt.Errorf("%s: unsupported document format %q", op, format)
	}
	return doc, nil
}

// remarshal moves a generic document into a typed request through JSON so
// both encodings share one set of field rules.
func remarshal(op string, doc map[string]interface{}, out interface{}) error {
	encoded, err := json.Marshal(doc)
	if err != nil {
		return validation.Rejectf(op, "", "unsupported value in document: %v", err)
	}
	if err := json.Unmarshal(encoded, out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return validation.Rejectf(op, typeErr.Field, "has the wrong type: %v", typeErr.Value)
		}
		return validation.Rejectf(op, "", "%v", err)
	}
	return nil
}
