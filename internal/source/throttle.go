package source

import "context"

// Throttle gates outbound requests. Adapters must call Wait before every
// HTTP request they issue; this is the contract that keeps the pipeline from
// hammering a board and getting IP-banned.
type Throttle interface {
	// Wait blocks until the next request slot is available or ctx is done.
	Wait(ctx context.Context) error
}

// NopThrottle performs no throttling. Test use only.
type NopThrottle struct{}

func (NopThrottle) Wait(ctx context.Context) error { return ctx.Err() }
