package mongo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/csr-bridge/backend/internal/store/storetest"
	"github.com/csr-bridge/backend/pkg/database"
)

func TestStoreContract(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URL")
	if uri == "" {
		t.Skip("MONGO_TEST_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := database.NewMongoClient(ctx, uri, zap.NewNop())
	require.NoError(t, err)
	dbName := "csr_test_" + uuid.NewString()[:8]
	t.Cleanup(func() {
		_ = client.Database(dbName).Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	s := New(client, dbName, zap.NewNop())
	require.NoError(t, s.EnsureIndexes(ctx))
	storetest.Run(t, s)
}

func TestIsTxnNotSupported(t *testing.T) {
	assert.False(t, isTxnNotSupported(nil))
	assert.True(t, isTxnNotSupported(mongo.CommandError{Code: 20, Message: "IllegalOperation"}))
	assert.True(t, isTxnNotSupported(errors.New("Transaction numbers are only allowed on a replica set member or mongos")))
	assert.False(t, isTxnNotSupported(errors.New("connection refused")))
	assert.False(t, isTxnNotSupported(errors.New("transaction aborted: session expired")))
	assert.False(t, isTxnNotSupported(mongo.CommandError{Code: 112, Message: "WriteConflict in transaction", Labels: []string{"TransientTransactionError"}}))
}
