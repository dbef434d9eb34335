// Package flows holds the built-in commerce decision flows and typed
// wrappers for calling them.
package flows

import (
	"fmt"

	"github.com/subhasish12345/SHOPSAGE/internal/flow"
)

// Definitions returns the built-in flows in a stable order.
func Definitions() []flow.Definition {
	return []flow.Definition{
		fraudRefundDetection,
		productDescriptionGeneration,
		deliveryDelayPrediction,
		productRecommendations,
		campaignOptimization,
	}
}

// RegisterAll adds every built-in flow to reg.
func RegisterAll(reg *flow.Registry) error {
	for _, def := range Definitions() {
		if err := reg.Register(def); err != nil {
			return fmt.Errorf("register %s: %w", def.Name, err)
		}
	}
	return nil
}

// NewRegistry returns a registry holding the built-in flows plus any extra
// definitions, in that order.
func NewRegistry(extra ...flow.Definition) (*flow.Registry, error) {
	reg := flow.NewRegistry()
	if err := RegisterAll(reg); err != nil {
		return nil, err
	}
	for _, def := range extra {
		if err := reg.Register(def); err != nil {
			return nil, fmt.Errorf("register %s: %w", def.Name, err)
		}
	}
	return reg, nil
}
