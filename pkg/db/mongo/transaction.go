package mongo

import (
	"context"
	"errors"

	apperrors "bedbook/pkg/errors"

	cr "github.com/cockroachdb/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// ErrStoreUnavailable marks driver errors caused by timeouts or a lost
// connection rather than by the data itself.
var ErrStoreUnavailable = cr.New("store unavailable")

type TransactionFunc func(ctx mongo.SessionContext) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type mongoTransactionManager struct {
	client *mongo.Client
}

func NewTransactionManager(client *mongo.Client) TransactionManager {
	return &mongoTransactionManager{
		client: client,
	}
}

// ExecuteTransaction runs fn with snapshot reads and majority writes. The
// driver retries fn on transient transaction errors, so fn must be safe to
// re-run from the top.
func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return Classify(err, "failed to start session")
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	}, txnOpts)

	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		return Classify(err, "transaction failed")
	}

	return nil
}

// Classify wraps err with msg and marks it ErrStoreUnavailable when the
// failure is a timeout, cancellation or network error.
func Classify(err error, msg string) error {
	if err == nil {
		return nil
	}
	wrapped := cr.Wrap(err, msg)
	if isTransient(err) {
		return cr.Mark(wrapped, ErrStoreUnavailable)
	}
	return wrapped
}

func IsStoreUnavailable(err error) bool {
	return cr.Is(err, ErrStoreUnavailable)
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if errors.Is(err, mongo.ErrClientDisconnected) {
		return true
	}
	return mongo.IsTimeout(err) || mongo.IsNetworkError(err)
}
