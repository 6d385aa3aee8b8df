// Package notifier delivers signal views to subscribers. Delivery is
// best-effort with bounded retry; a failed delivery never affects engine
// state.
package notifier

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"OptionPulse/internal/access"
	"OptionPulse/internal/model"
)

// Publisher delivers views for a fixed access tier.
type Publisher interface {
	Name() string
	Tier() access.Tier
	Publish(ctx context.Context, view access.SignalView) error
}

// Distributor fans a signal event out to every publisher, projecting the
// signal through the access filter per publisher tier. Publishing is
// fire-and-forget; the caller never blocks on delivery.
type Distributor struct {
	publishers []Publisher
	hub        *Hub
	log        zerolog.Logger
	onFailure  func(publisher string) // metrics hook, may be nil
	wg         sync.WaitGroup
}

// NewDistributor creates a Distributor. hub and onFailure may be nil.
func NewDistributor(publishers []Publisher, hub *Hub, log zerolog.Logger, onFailure func(string)) *Distributor {
	return &Distributor{
		publishers: publishers,
		hub:        hub,
		log:        log.With().Str("component", "distributor").Logger(),
		onFailure:  onFailure,
	}
}

// Distribute announces a signal (new or transitioned) to all channels.
func (d *Distributor) Distribute(ctx context.Context, sig *model.Signal) {
	for _, p := range d.publishers {
		view := access.Project(sig, p.Tier())
		d.wg.Add(1)
		go func(p Publisher, view access.SignalView) {
			defer d.wg.Done()
			if err := p.Publish(ctx, view); err != nil {
				d.log.Warn().Err(err).Str("publisher", p.Name()).Str("signal", sig.ID).
					Msg("delivery failed")
				if d.onFailure != nil {
					d.onFailure(p.Name())
				}
			}
		}(p, view)
	}
	if d.hub != nil {
		d.hub.Broadcast(sig)
	}
}

// Wait blocks until in-flight deliveries finish, used on shutdown.
func (d *Distributor) Wait() { d.wg.Wait() }
