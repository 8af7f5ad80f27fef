package session

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/brandscope/internal/model"
)

func TestPostgres_CreateSession(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO sessions").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	st := NewPostgresFromPool(mock)
	sess, err := st.CreateSession(context.Background(), model.Project{BrandName: "Acme"})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "Acme", sess.Project.BrandName)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetSession(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	stored := model.Session{ID: "abc", Project: model.Project{BrandName: "Acme"}}
	data, err := json.Marshal(stored)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT data FROM sessions").
		WithArgs("abc").
		WillReturnRows(pgxmock.NewRows([]string{"data"}).AddRow(string(data)))

	st := NewPostgresFromPool(mock)
	got, err := st.GetSession(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Project.BrandName)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetSessionNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT data FROM sessions").
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"data"}))

	st := NewPostgresFromPool(mock)
	_, err = st.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgres_SaveSessionNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("UPDATE sessions").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	st := NewPostgresFromPool(mock)
	err = st.SaveSession(context.Background(), &model.Session{ID: "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgres_ListSessions(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	a, _ := json.Marshal(model.Session{ID: "a"})
	b, _ := json.Marshal(model.Session{ID: "b"})

	mock.ExpectQuery("SELECT data FROM sessions ORDER BY updated_at").
		WithArgs(10, 0).
		WillReturnRows(pgxmock.NewRows([]string{"data"}).
			AddRow(string(a)).
			AddRow(string(b)))

	st := NewPostgresFromPool(mock)
	sessions, err := st.ListSessions(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "a", sessions[0].ID)
	assert.Equal(t, "b", sessions[1].ID)
}

func TestPostgres_DeleteSession(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM sessions").
		WithArgs("abc").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	st := NewPostgresFromPool(mock)
	assert.NoError(t, st.DeleteSession(context.Background(), "abc"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
