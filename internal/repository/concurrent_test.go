package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/alexanderramin/sisara/internal/db"
	"github.com/alexanderramin/sisara/internal/domain"
	"github.com/alexanderramin/sisara/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentAccess_ReplaceInTxNeverExposesEmptyStore runs the
// delete-all-then-insert replacement inside a transaction while readers list
// the store. WAL readers see the last committed snapshot, so no reader may
// observe zero rows.
func TestConcurrentAccess_ReplaceInTxNeverExposesEmptyStore(t *testing.T) {
	database := testutil.NewTestFileDB(t)
	ctx := context.Background()
	repo := NewSQLiteLineItemRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	var seed []*domain.LineItem
	for i := 0; i < 50; i++ {
		seed = append(seed, testutil.NewTestItem(fmt.Sprintf("A%02d", i), testutil.WithOrder(i)))
	}
	require.NoError(t, repo.BulkCreate(ctx, seed))

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				items, err := repo.ListAll(ctx)
				if err != nil {
					t.Errorf("reader %d: list all: %v", reader, err)
					return
				}
				if len(items) == 0 {
					t.Errorf("reader %d: observed an empty store mid-replace", reader)
					return
				}
			}
		}(r)
	}

	for round := 0; round < 10; round++ {
		err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			txRepo := NewSQLiteLineItemRepo(tx)
			if _, err := txRepo.DeleteAll(ctx); err != nil {
				return err
			}
			var next []*domain.LineItem
			for i := 0; i < 50; i++ {
				next = append(next, testutil.NewTestItem(fmt.Sprintf("R%d-%02d", round, i), testutil.WithOrder(i)))
			}
			return txRepo.BulkCreate(ctx, next)
		})
		require.NoError(t, err)
	}

	close(stop)
	wg.Wait()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, count)
}

// TestConcurrentAccess_MonthlyUpsertsDoNotClobber writes every month of one
// row from separate goroutines. Each write touches only its own key.
func TestConcurrentAccess_MonthlyUpsertsDoNotClobber(t *testing.T) {
	database := testutil.NewTestFileDB(t)
	ctx := context.Background()
	repo := NewSQLiteLineItemRepo(database)

	item := testutil.NewTestItem("521211")
	require.NoError(t, repo.Create(ctx, item))

	var wg sync.WaitGroup
	for m := 0; m < domain.MonthsPerYear; m++ {
		wg.Add(1)
		go func(month int) {
			defer wg.Done()
			detail := domain.MonthlyDetail{Planned: float64(1000 * (month + 1))}
			if _, err := repo.SetMonthly(ctx, item.ID, month, detail); err != nil {
				t.Errorf("month %d: %v", month, err)
			}
		}(m)
	}
	wg.Wait()

	got, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, got.MonthlyAllocation, domain.MonthsPerYear)
	for m := 0; m < domain.MonthsPerYear; m++ {
		assert.Equal(t, float64(1000*(m+1)), got.MonthlyAllocation[domain.MonthKey(m)].Planned)
	}
}
