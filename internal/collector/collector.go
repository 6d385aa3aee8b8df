// Package collector supplies market price observations to the engine.
package collector

import (
	"context"

	"OptionPulse/internal/model"
)

// Provider fetches the latest price observation for an instrument. A
// provider error means "no update this cycle"; the engine skips the tick,
// it does not halt.
type Provider interface {
	Quote(ctx context.Context, instrument string) (model.PriceObservation, error)
	Name() string
}
