// internal/app/system/txn/txn.go

// Package txn runs multi-document mutations in a Mongo transaction when the
// deployment supports one (replica set / mongos) and falls back to plain
// sequential writes when it does not (standalone mongod). Club membership
// mutations touch two or three documents across collections; the fallback
// path can leave cross-references transiently inconsistent if the process
// dies mid-sequence, which is an accepted limitation of non-replica-set
// deployments.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn inside a transaction when possible. fn must be safe to
// call with either the session context or the original context, and must
// perform all writes through the context it is given.
func Run(ctx context.Context, client *mongo.Client, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		if log != nil {
			log.Debug("transactions unsupported by deployment; using sequential writes")
		}
		return fn(ctx)
	}
	return err
}

// Server error codes that indicate transactions are unavailable rather
// than that the transaction body failed.
var notSupportedCodes = map[int32]bool{
	20:  true, // IllegalOperation (txn numbers need a replica set)
	51:  true,
	263: true, // OperationNotSupportedInTransaction
}

// IsNotSupported reports whether err means the deployment cannot run
// multi-document transactions, as opposed to a failure inside one.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		if notSupportedCodes[ce.Code] {
			return true
		}
	}

	s := strings.ToLower(err.Error())
	pairs := [][2]string{
		{"transaction", "replica set"},
		{"session", "not supported"},
		{"transaction", "session"},
		{"illegal operation", "transaction"},
	}
	for _, p := range pairs {
		if strings.Contains(s, p[0]) && strings.Contains(s, p[1]) {
			return true
		}
	}
	return false
}
