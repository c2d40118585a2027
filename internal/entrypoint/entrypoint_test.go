package entrypoint

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type calls struct {
	migrate atomic.Int32
	bot     atomic.Int32
}

func (c *calls) steps(migrateErr error) Steps {
	return Steps{
		Target: Target{
			User:        "tea",
			Host:        "db:5432",
			DB:          "diary",
			RedactedURL: "postgresql://tea:***@db:5432/diary?sslmode=disable",
		},
		Migrate: func(context.Context) error {
			c.migrate.Add(1)
			return migrateErr
		},
		Bot: func(context.Context) error {
			c.bot.Add(1)
			return nil
		},
	}
}

func messages(hook *test.Hook) string {
	var b strings.Builder
	for _, e := range hook.AllEntries() {
		b.WriteString(e.Message)
		b.WriteString("\n")
	}
	return b.String()
}

func TestRun_Maintenance(t *testing.T) {
	hook := test.NewGlobal()
	clock := clockwork.NewFakeClock()
	ctx, cancel := context.WithCancel(context.Background())
	c := &calls{}

	done := make(chan error)
	go func() {
		done <- Run(ctx, clock, Flags{Maintenance: true}, c.steps(nil))
	}()

	clock.BlockUntil(1)
	clock.Advance(Heartbeat)
	require.Eventually(t, func() bool {
		return strings.Contains(messages(hook), "still idle")
	}, time.Second, 10*time.Millisecond)

	select {
	case <-done:
		t.Fatal("maintenance mode must block")
	default:
	}
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("maintenance mode did not stop")
	}
	require.Zero(t, c.migrate.Load())
	require.Zero(t, c.bot.Load())
}

func TestRun_MaintenanceWinsOverSkip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &calls{}
	require.NoError(t, Run(ctx, clockwork.NewFakeClock(), Flags{Maintenance: true, SkipMigrations: true}, c.steps(nil)))
	require.Zero(t, c.migrate.Load())
	require.Zero(t, c.bot.Load())
}

func TestRun_SkipMigrations(t *testing.T) {
	hook := test.NewGlobal()
	c := &calls{}
	require.NoError(t, Run(context.Background(), clockwork.NewFakeClock(), Flags{SkipMigrations: true}, c.steps(nil)))
	require.Zero(t, c.migrate.Load())
	require.EqualValues(t, 1, c.bot.Load())
	require.NotContains(t, messages(hook), "Using DB URL")
}

func TestRun_Migrate(t *testing.T) {
	hook := test.NewGlobal()
	c := &calls{}
	require.NoError(t, Run(context.Background(), clockwork.NewFakeClock(), Flags{}, c.steps(nil)))
	require.EqualValues(t, 1, c.migrate.Load())
	require.EqualValues(t, 1, c.bot.Load())

	logs := messages(hook)
	require.Contains(t, logs, "ENV user=tea host=db:5432 db=diary")
	require.Contains(t, logs, "Using DB URL: postgresql://tea:***@db:5432/diary?sslmode=disable")
}

func TestRun_MigrateFailureAborts(t *testing.T) {
	c := &calls{}
	migrateErr := errors.New("dial tcp: connection refused")
	err := Run(context.Background(), clockwork.NewFakeClock(), Flags{}, c.steps(migrateErr))
	require.ErrorIs(t, err, migrateErr)
	require.EqualValues(t, 1, c.migrate.Load())
	require.Zero(t, c.bot.Load())
}

func TestRun_BotCanceled(t *testing.T) {
	steps := (&calls{}).steps(nil)
	steps.Bot = func(context.Context) error { return context.Canceled }
	require.NoError(t, Run(context.Background(), clockwork.NewFakeClock(), Flags{SkipMigrations: true}, steps))

	steps.Bot = func(context.Context) error { return errors.New("unauthorized") }
	require.Error(t, Run(context.Background(), clockwork.NewFakeClock(), Flags{SkipMigrations: true}, steps))
}
