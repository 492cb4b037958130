package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/dukandar/khata/internal/apperr"
	"github.com/dukandar/khata/internal/clock"
	"github.com/dukandar/khata/internal/config"
	drawerdomain "github.com/dukandar/khata/internal/drawer/domain"
	"github.com/dukandar/khata/internal/drawer/repository"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDrawerTest(t *testing.T) (drawerdomain.Service, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&drawerdomain.Transaction{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{
		Repo:   repository.NewRepository(db),
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  clock.SystemClock{},
		Config: config.Config{DrawerCountPolicy: "overwrite"},
	})
	return svc, node
}

func record(t *testing.T, svc drawerdomain.Service, orgID snowflake.ID, drawerID string, op drawerdomain.Operation, amount int64) *drawerdomain.Transaction {
	t.Helper()
	txn, err := svc.RecordOperation(context.Background(), drawerdomain.OperationRequest{
		OrgID:     orgID,
		DrawerID:  drawerID,
		ActorID:   "cashier-1",
		Operation: op,
		Amount:    decimal.NewFromInt(amount),
	})
	require.NoError(t, err)
	return txn
}

func TestDrawerSession_BalanceRunsThroughOperations(t *testing.T) {
	svc, node := setupDrawerTest(t)
	orgID := node.Generate()

	txn := record(t, svc, orgID, "till-1", drawerdomain.OperationInitialization, 1000)
	assert.True(t, txn.Balance.Equal(decimal.NewFromInt(1000)))
	assert.True(t, txn.PreviousBalance.IsZero())

	txn = record(t, svc, orgID, "till-1", drawerdomain.OperationSale, 500)
	assert.True(t, txn.Balance.Equal(decimal.NewFromInt(1500)))

	txn = record(t, svc, orgID, "till-1", drawerdomain.OperationExpense, 200)
	assert.True(t, txn.Balance.Equal(decimal.NewFromInt(1300)))

	closed, err := svc.Close(context.Background(), orgID, "till-1", "cashier-1", decimal.NewFromInt(1300), "end of day")
	require.NoError(t, err)
	assert.True(t, closed.Balance.IsZero())

	// A closed drawer rejects everything except re-initialization.
	_, err = svc.RecordOperation(context.Background(), drawerdomain.OperationRequest{
		OrgID:     orgID,
		DrawerID:  "till-1",
		ActorID:   "cashier-1",
		Operation: drawerdomain.OperationSale,
		Amount:    decimal.NewFromInt(10),
	})
	require.ErrorIs(t, err, drawerdomain.ErrDrawerClosed)
	require.ErrorIs(t, err, apperr.KindConflict)

	txn = record(t, svc, orgID, "till-1", drawerdomain.OperationInitialization, 500)
	assert.True(t, txn.Balance.Equal(decimal.NewFromInt(500)))
}

func TestDrawerSession_FirstOperationMustInitialize(t *testing.T) {
	svc, node := setupDrawerTest(t)
	orgID := node.Generate()

	_, err := svc.RecordOperation(context.Background(), drawerdomain.OperationRequest{
		OrgID:     orgID,
		DrawerID:  "till-1",
		ActorID:   "cashier-1",
		Operation: drawerdomain.OperationSale,
		Amount:    decimal.NewFromInt(100),
	})
	require.ErrorIs(t, err, drawerdomain.ErrDrawerNotInitialized)
}

func TestDrawerSession_DoubleInitializationRejected(t *testing.T) {
	svc, node := setupDrawerTest(t)
	orgID := node.Generate()

	record(t, svc, orgID, "till-1", drawerdomain.OperationInitialization, 100)
	_, err := svc.RecordOperation(context.Background(), drawerdomain.OperationRequest{
		OrgID:     orgID,
		DrawerID:  "till-1",
		ActorID:   "cashier-1",
		Operation: drawerdomain.OperationInitialization,
		Amount:    decimal.NewFromInt(100),
	})
	require.ErrorIs(t, err, drawerdomain.ErrDrawerAlreadyOpen)
}

func TestDrawerSession_ValidationErrors(t *testing.T) {
	svc, node := setupDrawerTest(t)
	orgID := node.Generate()

	_, err := svc.RecordOperation(context.Background(), drawerdomain.OperationRequest{
		OrgID:     orgID,
		DrawerID:  "till-1",
		ActorID:   "cashier-1",
		Operation: drawerdomain.OperationInitialization,
		Amount:    decimal.NewFromInt(-5),
	})
	require.ErrorIs(t, err, drawerdomain.ErrNegativeAmount)
	require.ErrorIs(t, err, apperr.KindValidation)

	_, err = svc.RecordOperation(context.Background(), drawerdomain.OperationRequest{
		OrgID:     orgID,
		DrawerID:  "till-1",
		ActorID:   "cashier-1",
		Operation: drawerdomain.Operation("withdraw"),
		Amount:    decimal.NewFromInt(5),
	})
	require.ErrorIs(t, err, drawerdomain.ErrInvalidOperation)

	_, err = svc.RecordOperation(context.Background(), drawerdomain.OperationRequest{
		OrgID:     orgID,
		DrawerID:  "till-1",
		Operation: drawerdomain.OperationInitialization,
		Amount:    decimal.NewFromInt(5),
	})
	require.ErrorIs(t, err, drawerdomain.ErrInvalidActor)
}

func TestDrawerSession_CountOverwritesWithDiscrepancy(t *testing.T) {
	svc, node := setupDrawerTest(t)
	orgID := node.Generate()

	record(t, svc, orgID, "till-1", drawerdomain.OperationInitialization, 1000)
	record(t, svc, orgID, "till-1", drawerdomain.OperationSale, 250)

	txn := record(t, svc, orgID, "till-1", drawerdomain.OperationCount, 1200)
	assert.True(t, txn.Balance.Equal(decimal.NewFromInt(1200)))
	assert.True(t, txn.PreviousBalance.Equal(decimal.NewFromInt(1250)))
	assert.Contains(t, txn.Notes, "discrepancy=-50")

	balance, err := svc.Balance(context.Background(), orgID, "till-1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(1200)))
}

func TestDrawerSession_HistoryAscendingAndBounded(t *testing.T) {
	svc, node := setupDrawerTest(t)
	orgID := node.Generate()

	record(t, svc, orgID, "till-1", drawerdomain.OperationInitialization, 100)
	record(t, svc, orgID, "till-1", drawerdomain.OperationAdd, 50)
	record(t, svc, orgID, "till-1", drawerdomain.OperationRemove, 30)

	history, err := svc.History(context.Background(), orgID, "till-1", drawerdomain.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].CreatedAt.Before(history[i-1].CreatedAt))
	}

	history, err = svc.History(context.Background(), orgID, "till-1", drawerdomain.HistoryFilter{
		To: time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestDrawerSession_EmptyDrawerBalanceIsZero(t *testing.T) {
	svc, node := setupDrawerTest(t)

	balance, err := svc.Balance(context.Background(), node.Generate(), "till-9")
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

// The read-modify-append cycle is serialized per drawer: concurrent sales
// must never lose an update.
func TestDrawerSession_ConcurrentOperationsKeepInvariant(t *testing.T) {
	svc, node := setupDrawerTest(t)
	orgID := node.Generate()

	record(t, svc, orgID, "till-1", drawerdomain.OperationInitialization, 0)

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.RecordOperation(context.Background(), drawerdomain.OperationRequest{
				OrgID:     orgID,
				DrawerID:  "till-1",
				ActorID:   "cashier-1",
				Operation: drawerdomain.OperationSale,
				Amount:    decimal.NewFromInt(10),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	balance, err := svc.Balance(context.Background(), orgID, "till-1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(workers*10)))

	history, err := svc.History(context.Background(), orgID, "till-1", drawerdomain.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, history, workers+1)
	for i := 1; i < len(history); i++ {
		assert.True(t, history[i].PreviousBalance.Equal(history[i-1].Balance),
			"transaction %d must chain from its predecessor", i)
	}
}
