package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/composable-commerce/storefront/pkg/types"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	added, err := store.Add(ctx, types.Subscriber{Email: " Ada@Example.com ", Source: "footer"})
	require.NoError(t, err)
	assert.True(t, added)

	added, err = store.Add(ctx, types.Subscriber{Email: "ada@example.com"})
	require.NoError(t, err)
	assert.False(t, added, "duplicate email")

	_, err = store.Add(ctx, types.Subscriber{Email: "   "})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	exists, err := store.Exists(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = store.Add(ctx, types.Subscriber{Email: "old@example.com", CreatedAt: older})
	require.NoError(t, err)

	subs, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "ada@example.com", subs[0].Email)
	assert.Equal(t, "footer", subs[0].Source)
	assert.Equal(t, "old@example.com", subs[1].Email)

	subs, err = store.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, subs, 1)

	assert.NoError(t, store.Ping(ctx))
	assert.NoError(t, store.Close())
}

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresStore(db), mock
}

func TestPostgresMigrate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS newsletter_subscribers")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAdd(t *testing.T) {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		affected  int64
		execErr   error
		wantAdded bool
		wantErr   bool
	}{
		{name: "new subscriber", affected: 1, wantAdded: true},
		{name: "existing subscriber", affected: 0, wantAdded: false},
		{name: "database error", execErr: errors.New("connection reset"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockStore(t)

			exp := mock.ExpectExec(regexp.QuoteMeta("INSERT INTO newsletter_subscribers")).
				WithArgs("ada@example.com", "footer", "en-us", created)
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, tt.affected))
			}

			added, err := store.Add(context.Background(), types.Subscriber{
				Email:     "Ada@example.com",
				Source:    "footer",
				Locale:    "en-us",
				CreatedAt: created,
			})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantAdded, added)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresAddRejectsEmptyEmail(t *testing.T) {
	store, mock := newMockStore(t)

	_, err := store.Add(context.Background(), types.Subscriber{Email: ""})
	assert.ErrorIs(t, err, ErrInvalidEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresExists(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := store.Exists(context.Background(), "ADA@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresList(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT email, source, locale, created_at FROM newsletter_subscribers")).
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows([]string{"email", "source", "locale", "created_at"}).
			AddRow("b@example.com", "footer", "", now).
			AddRow("a@example.com", "footer", "en-gb", now.Add(-time.Hour)))

	subs, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "b@example.com", subs[0].Email)
	assert.Equal(t, "en-gb", subs[1].Locale)
	assert.NoError(t, mock.ExpectationsWereMet())
}
