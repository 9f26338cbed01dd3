// Package application holds the review monitoring and merge-readiness
// services. It depends only on domain models and port interfaces.
package application

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfiguration is returned before any I/O when engine settings
// cannot be used, such as a non-positive timeout or poll interval.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// EngineConfig carries the policy knobs shared by the coordinator and the
// evaluator. It is passed explicitly; no component reads ambient state.
type EngineConfig struct {
	ReviewTimeout        time.Duration
	PollInterval         time.Duration
	RequireHumanApproval bool
	RequireCIPass        bool
	AutopilotMode        bool

	// ReviewerBWorkflow is the CI workflow name whose failure marks reviewer B
	// as failed. Empty disables the workflow check.
	ReviewerBWorkflow string
	// DeferredLabels are applied to deferred-work tracking issues.
	DeferredLabels []string
}

// DefaultEngineConfig returns the default policy: 10m timeout, 30s polling,
// human approval and passing CI required, autopilot off.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		ReviewTimeout:        10 * time.Minute,
		PollInterval:         30 * time.Second,
		RequireHumanApproval: true,
		RequireCIPass:        true,
		AutopilotMode:        false,
		ReviewerBWorkflow:    "Perplexity Code Review",
		DeferredLabels:       []string{"deferred", "technical-debt", "reviewgate"},
	}
}

// Validate returns an ErrInvalidConfiguration-wrapped error for unusable settings.
func (c EngineConfig) Validate() error {
	return validateWait(c.ReviewTimeout, c.PollInterval)
}

func validateWait(timeout, pollInterval time.Duration) error {
	if timeout <= 0 {
		return fmt.Errorf("%w: review timeout must be positive, got %s", ErrInvalidConfiguration, timeout)
	}
	if pollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive, got %s", ErrInvalidConfiguration, pollInterval)
	}
	return nil
}
