package mongo

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// isTxnNotSupported reports whether err means the deployment cannot run
// multi-document transactions (standalone mongod, some managed offerings).
func isTxnNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, 51, 263: // IllegalOperation, CommandNotSupported, OperationNotSupportedInTransaction
			return true
		}
	}
	// Transient transaction failures also mention transactions and sessions,
	// so only the standalone server's own wording counts.
	return strings.Contains(err.Error(), "only allowed on a replica set member or mongos")
}
