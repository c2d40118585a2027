// Package entrypoint decides what a starting container does: idle in
// maintenance mode, migrate the schema, then run the bot.
package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// Heartbeat is how often maintenance mode reports that it is still idle.
const Heartbeat = time.Hour

// Flags are read once at start.
type Flags struct {
	Maintenance    bool
	SkipMigrations bool
}

// Target describes the database the migrate step works on. RedactedURL must
// not contain the password.
type Target struct {
	User        string
	Host        string
	DB          string
	RedactedURL string
}

// Steps are the stages a start runs through.
type Steps struct {
	Target  Target
	Migrate func(ctx context.Context) error
	Bot     func(ctx context.Context) error
}

// Run blocks in maintenance mode until ctx is done. Otherwise it migrates,
// unless skipped, and hands over to the bot. A failed migration stops the start.
func Run(ctx context.Context, clock clockwork.Clock, flags Flags, steps Steps) error {
	if flags.Maintenance {
		return idle(ctx, clock)
	}

	if flags.SkipMigrations {
		logrus.Info("SKIP_MIGRATIONS is set, skipping migrations")
	} else {
		t := steps.Target
		logrus.Infof("ENV user=%s host=%s db=%s", t.User, t.Host, t.DB)
		logrus.Infof("Using DB URL: %s", t.RedactedURL)
		if err := steps.Migrate(ctx); err != nil {
			return fmt.Errorf("entrypoint, migrate error: %w", err)
		}
		logrus.Info("migrations applied")
	}

	logrus.Info("starting bot")
	if err := steps.Bot(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("entrypoint, bot error: %w", err)
	}
	return nil
}

func idle(ctx context.Context, clock clockwork.Clock) error {
	logrus.Warn("MAINTENANCE mode is on: the bot will not start, container stays idle")
	ticker := clock.NewTicker(Heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logrus.Info("maintenance mode stopped")
			return nil
		case <-ticker.Chan():
			logrus.Info("maintenance mode, still idle")
		}
	}
}
