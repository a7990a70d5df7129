package mongo

import (
	"context"
	"fmt"

	apperrors "mise/pkg/errors"

	"go.mongodb.org/mongo-driver/mongo"
)

type TransactionFunc func(ctx mongo.SessionContext) error

// TransactionManager runs a function inside a single multi-document
// transaction. The store's transaction isolation is the engine's only
// synchronization point: conflict checks and the writes they guard must both
// happen inside the same TransactionFunc.
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

func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	})

	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// IsWriteConflict reports whether err is a transient transaction error, i.e.
// this transaction lost a race to a concurrent writer and may be retried by
// the caller.
func IsWriteConflict(err error) bool {
	if cmdErr, ok := err.(mongo.CommandError); ok {
		return cmdErr.HasErrorLabel("TransientTransactionError") || cmdErr.Name == "WriteConflict"
	}
	var we mongo.WriteException
	if ok := asWriteException(err, &we); ok {
		for _, e := range we.WriteErrors {
			if e.Code == 112 { // WriteConflict
				return true
			}
		}
	}
	return false
}

func asWriteException(err error, target *mongo.WriteException) bool {
	we, ok := err.(mongo.WriteException)
	if ok {
		*target = we
	}
	return ok
}

// IsDuplicateKey reports a unique-index violation. The pending-extension
// uniqueness guarantee rides on this.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
