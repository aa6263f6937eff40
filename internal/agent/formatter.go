package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iwvelando/open-logistics/pkg/datetime"
	"github.com/iwvelando/open-logistics/pkg/output"
)

// Formatter renders a response as text using the pretty output tables.
type Formatter struct {
	labels *datetime.Labeler
}

// NewFormatter builds a Formatter. A nil labeler labels forecast steps by index.
func NewFormatter(labels *datetime.Labeler) *Formatter {
	return &Formatter{labels: labels}
}

// Format renders the reply text for resp, answering the message text.
func (f *Formatter) Format(text string, resp *Response) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s (%s)", resp.AgentName, resp.AgentType)
	if text = strings.TrimSpace(text); text != "" {
		fmt.Fprintf(&b, " re: %s", text)
	}
	b.WriteString("\n")

	if len(resp.Attributes) > 0 {
		keys := make([]string, 0, len(resp.Attributes))
		for k := range resp.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "%s: %v\n", k, resp.Attributes[k])
		}
	}

	if resp.Optimization != nil {
		b.WriteString("\n")
		_ = output.PrettyOptimization(&b, resp.Optimization)
	}
	if resp.Forecast != nil {
		b.WriteString("\n")
		_ = output.PrettyForecast(&b, resp.Forecast, f.labels)
	}
	if resp.Optimization == nil && resp.Forecast == nil {
		b.WriteString("No optimization or forecast request was attached.\n")
	}

	if len(resp.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for _, rec := range resp.Recommendations {
			fmt.Fprintf(&b, "  - %s\n", rec)
		}
	}
	return b.String()
}
