package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/chucky-1/teadiary/internal/model"
	"github.com/chucky-1/teadiary/internal/repository"
	"github.com/jonboulle/clockwork"
)

var BadTZErr = errors.New("bad timezone offset")

type Users struct {
	repo  repository.Users
	clock clockwork.Clock
}

func NewUsers(repo repository.Users, clock clockwork.Clock) *Users {
	return &Users{
		repo:  repo,
		clock: clock,
	}
}

func (u *Users) Ensure(ctx context.Context, userID int64) (*model.User, error) {
	user, err := u.repo.EnsureUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.Users, ensure user %d error: %w", userID, err)
	}
	return user, nil
}

// SetTZ stores the offset from UTC given in hours, fractions allowed.
func (u *Users) SetTZ(ctx context.Context, userID int64, hours float64) error {
	if err := u.repo.SetUserTZ(ctx, userID, int(math.Round(hours*60))); err != nil {
		return fmt.Errorf("service.Users, set tz error: %w", err)
	}
	return nil
}

// LocalNowHM is the user's wall clock time as HH:MM.
func (u *Users) LocalNowHM(ctx context.Context, userID int64) (string, error) {
	user, err := u.Ensure(ctx, userID)
	if err != nil {
		return "", err
	}
	local := u.clock.Now().UTC().Add(time.Duration(user.TZOffsetMin) * time.Minute)
	return local.Format("15:04"), nil
}

// ParseTZ reads "+3", "-5.5" or "UTC+3".
func ParseTZ(text string) (float64, error) {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(strings.ReplaceAll(text, "UTC", ""), "utc", "")
	hours, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(hours) || validate.Var(hours, "min=-14,max=14") != nil {
		return 0, BadTZErr
	}
	return hours, nil
}

// FormatTZ renders UTC+3, UTC-5.5, UTC+0.
func FormatTZ(hours float64) string {
	sign := ""
	if hours >= 0 {
		sign = "+"
	}
	return "UTC" + sign + strconv.FormatFloat(hours, 'g', -1, 64)
}

func OffsetHours(offsetMin int) float64 {
	return float64(offsetMin) / 60
}
