package server

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iwvelando/open-logistics/internal/agent"
	"github.com/iwvelando/open-logistics/internal/config"
	"github.com/iwvelando/open-logistics/internal/forecast"
	"github.com/iwvelando/open-logistics/internal/optimizer"
	"github.com/iwvelando/open-logistics/pkg/constants"
	"github.com/iwvelando/open-logistics/pkg/datetime"
)

// Options defines runtime parameters and collaborators for the HTTP handler.
type Options struct {
	MaxBodySize    int64
	RequestTimeout time.Duration
	Version        string
	AllowedOrigins []string
	MetricsEnabled bool

	Optimizer  *optimizer.Optimizer
	Forecaster *forecast.Forecaster
	Agents     *agent.Manager
	// Labels names forecast periods in responses; nil labels by index.
	Labels *datetime.Labeler
}

// OptionsFromConfig parses the server section of the configuration. The
// engines and agent manager are left for the caller to attach.
func OptionsFromConfig(cfg config.ServerConfig) (Options, error) {
	size, err := ParseSize(cfg.MaxBodySize)
	if err != nil {
		return Options{}, err
	}
	if size <= 0 {
		size = constants.DefaultMaxBodySizeBytes
	}

	timeout, err := ParseTimeout(cfg.RequestTimeout)
	if err != nil {
		return Options{}, err
	}

	return Options{
		MaxBodySize:    size,
		RequestTimeout: timeout,
		Version:        constants.Version,
		AllowedOrigins: cfg.AllowedOrigins,
		MetricsEnabled: cfg.MetricsOn(),
	}, nil
}

func (o *Options) normalize() {
	if o.MaxBodySize <= 0 {
		o.MaxBodySize = constants.DefaultMaxBodySizeBytes
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout, _ = time.ParseDuration(constants.DefaultRequestTimeout)
	}
	o.Version = strings.TrimSpace(o.Version)
	if o.Version == "" {
		o.Version = "dev"
	}
}

// ParseTimeout parses a Go duration string ("5s", "1m30s"). Empty yields the default.
func ParseTimeout(value string) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		trimmed = constants.DefaultRequestTimeout
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid request timeout %q: %w", value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("request timeout must be positive, got %s", value)
	}
	return d, nil
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "10M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxBodySizeBytes, nil
	}

	upper := strings.ToUpper(trimmed)
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart := strings.TrimSpace(upper[:idx])
	unitPart := strings.TrimSpace(upper[idx:])

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var multiplier int64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	case "G", "GB":
		multiplier = 1024 * 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	result := n * multiplier
	if result < 0 || (n != 0 && result/n != multiplier) {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return result, nil
}
