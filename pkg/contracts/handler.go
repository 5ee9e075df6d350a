package contracts

import (
	"context"

	"github.com/julienschmidt/httprouter"
)

// Handler mounts its routes on the application router.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// Closer is released during graceful shutdown, after the HTTP server has
// drained. Event producers register here.
type Closer interface {
	Close() error
}

// Runner is a background loop owned by a worker binary.
type Runner interface {
	Start(ctx context.Context) error
	Close() error
}
