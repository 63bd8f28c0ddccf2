package integrations

import (
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"
)

// breakers holds one circuit breaker per registry host. A host that fails
// five times in a row is skipped until its backoff expires, so a dead
// registry costs one timeout per run instead of one per package.
type breakers struct {
	mu sync.Mutex
	m  map[string]*circuit.Breaker
}

func newBreakers() *breakers {
	return &breakers{m: make(map[string]*circuit.Breaker)}
}

func (b *breakers) get(host string) *circuit.Breaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	if br, ok := b.m[host]; ok {
		return br
	}
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	br := circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(5),
	})
	b.m[host] = br
	return br
}

// states reports "open" or "closed" per host.
func (b *breakers) states() map[string]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]string, len(b.m))
	for host, br := range b.m {
		if br.Tripped() {
			out[host] = "open"
		} else {
			out[host] = "closed"
		}
	}
	return out
}
