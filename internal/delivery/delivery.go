// Package delivery defines the contract shared by the inbound adapters.
package delivery

import "context"

// Delivery is a long-running inbound adapter (HTTP server, worker) started by main.
type Delivery interface {
	Serve(ctx context.Context) error
}
