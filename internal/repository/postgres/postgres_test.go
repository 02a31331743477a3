package postgres_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/junusg25/kamer-modul-sub006/internal/repository"
	"github.com/junusg25/kamer-modul-sub006/internal/repository/postgres"
)

func TestStore_WithinTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM machines WHERE id = \\$1 FOR UPDATE").
			WithArgs(int32(1)).
			WillReturnRows(machineRows(1))
		mock.ExpectCommit()

		store := postgres.NewStore(db)
		err = store.WithinTx(ctx, func(r repository.Repositories) error {
			_, err := r.Machines.GetForUpdate(ctx, 1)
			return err
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		store := postgres.NewStore(db)
		boom := errors.New("boom")
		err = store.WithinTx(ctx, func(r repository.Repositories) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
