package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/chucky-1/teadiary/internal/repository"
)

var testNow = time.Date(2024, 5, 17, 22, 30, 0, 0, time.UTC)

func newStore(t *testing.T, clock clockwork.Clock) *repository.SQLite {
	t.Helper()
	s, err := repository.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "tastings.db"), clock)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}
