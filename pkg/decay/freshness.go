package decay

import (
	"fmt"
	"time"
)

// FreshnessWeight is the freshness signal's share of the confidence score.
const FreshnessWeight = 0.3

// validityWindows holds the expected useful lifetime per document type.
var validityWindows = map[string]time.Duration{
	"policy":  180 * 24 * time.Hour,
	"guide":   365 * 24 * time.Hour,
	"api_doc": 90 * 24 * time.Hour,
}

const defaultValidityWindow = 365 * 24 * time.Hour

// FreshnessEvaluator flags documents whose age exceeds their type's validity
// window or that declare an expiry date already in the past.
type FreshnessEvaluator struct {
	clock Clock
}

func NewFreshnessEvaluator(clock Clock) *FreshnessEvaluator {
	if clock == nil {
		clock = systemClock{}
	}
	return &FreshnessEvaluator{clock: clock}
}

func (e *FreshnessEvaluator) Name() string { return "freshness" }

func (e *FreshnessEvaluator) Evaluate(document Document, _ []Version, _ []Document) Signal {
	signal := Signal{Weight: FreshnessWeight}
	now := e.clock.Now()

	window, ok := validityWindows[document.Type]
	if !ok {
		window = defaultValidityWindow
	}

	age := now.Sub(document.UpdatedAt)
	if age > window {
		signal.Detected = true
		signal.Reasons = append(signal.Reasons, fmt.Sprintf(
			"content is %d days old, beyond the %d-day validity window for type %q",
			int(age.Hours()/24), int(window.Hours()/24), document.Type,
		))
		signal.Citations = append(signal.Citations, Citation{DocumentId: document.Id})
	}

	if expiry, ok := declaredExpiry(document.Content); ok && now.After(expiry) {
		signal.Detected = true
		signal.Reasons = append(signal.Reasons, "declared effective period has elapsed")
		if len(signal.Citations) == 0 {
			signal.Citations = append(signal.Citations, Citation{DocumentId: document.Id})
		}
	}

	return signal
}
