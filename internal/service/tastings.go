package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/chucky-1/teadiary/internal/metrics"
	"github.com/chucky-1/teadiary/internal/model"
	"github.com/chucky-1/teadiary/internal/repository"
	"github.com/sirupsen/logrus"
)

const (
	PageSize    = 5
	saveAttempt = 2
)

// Page is one screen of search results, newest first.
type Page struct {
	Tastings []model.Tasting
	HasMore  bool
}

// MinID is the cursor for the next page.
func (p *Page) MinID() int64 {
	if len(p.Tastings) == 0 {
		return 0
	}
	return p.Tastings[len(p.Tastings)-1].ID
}

type Tastings struct {
	repo repository.Tastings
}

func NewTastings(repo repository.Tastings) *Tastings {
	return &Tastings{
		repo: repo,
	}
}

// SearchFilter builds the filter for a search kind. ok is false when extra
// does not make sense for the kind.
func SearchFilter(userID int64, kind model.SearchKind, extra string) (model.Filter, bool) {
	f := model.Filter{UserID: userID}
	extra = strings.TrimSpace(extra)
	switch kind {
	case model.SearchLast:
	case model.SearchName:
		if extra == "" {
			return f, false
		}
		f.Name = extra
	case model.SearchCategory:
		if extra == "" {
			return f, false
		}
		f.Category = extra
	case model.SearchYear:
		if !isDigits(extra) {
			return f, false
		}
		year, err := strconv.Atoi(extra)
		if err != nil {
			return f, false
		}
		f.Year = &year
	case model.SearchRating:
		if !isDigits(extra) {
			return f, false
		}
		rating, err := strconv.Atoi(extra)
		if err != nil {
			return f, false
		}
		f.MinRating = &rating
	default:
		return f, false
	}
	return f, true
}

// Save stores a finished draft. A concurrent save of the same user can take the
// sequence number first, then the insert is retried once.
func (s *Tastings) Save(ctx context.Context, d *model.Draft) (*model.Card, error) {
	t, infusions, photos := TastingFromDraft(d)
	var err error
	for attempt := 1; attempt <= saveAttempt; attempt++ {
		err = s.repo.CreateTasting(ctx, t, infusions, photos)
		if !errors.Is(err, repository.DuplicateSeqErr) {
			break
		}
		logrus.WithField("user_id", d.UserID).Warnf("service.Tastings, seq_no conflict, attempt %d", attempt)
	}
	if err != nil {
		return nil, fmt.Errorf("service.Tastings, save error: %w", err)
	}
	metrics.TastingsSavedTotal.Inc()
	return &model.Card{Tasting: t, Infusions: infusions, PhotoIDs: photos, PhotoCount: len(photos)}, nil
}

// Page returns up to PageSize matching tastings older than beforeID.
func (s *Tastings) Page(ctx context.Context, userID int64, kind model.SearchKind, extra string, beforeID int64) (*Page, error) {
	filter, ok := SearchFilter(userID, kind, extra)
	if !ok {
		return &Page{}, nil
	}
	rows, err := s.repo.FindTastings(ctx, filter, beforeID, PageSize+1)
	if err != nil {
		return nil, fmt.Errorf("service.Tastings, page error: %w", err)
	}
	page := &Page{Tastings: rows}
	if len(rows) > PageSize {
		page.Tastings = rows[:PageSize]
		page.HasMore = true
	}
	return page, nil
}

// Resolve finds a tasting by "#N" (sequence number) or by plain id.
func (s *Tastings) Resolve(ctx context.Context, userID int64, ref string) (*model.Tasting, error) {
	ref = strings.TrimSpace(ref)
	if seq, ok := strings.CutPrefix(ref, "#"); ok {
		n, err := strconv.Atoi(seq)
		if err != nil || n <= 0 {
			return nil, repository.TastingNotFoundErr
		}
		return s.repo.GetTastingBySeq(ctx, userID, n)
	}
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil || id <= 0 {
		return nil, repository.TastingNotFoundErr
	}
	return s.repo.GetTasting(ctx, userID, id)
}

func (s *Tastings) Get(ctx context.Context, userID, id int64) (*model.Tasting, error) {
	return s.repo.GetTasting(ctx, userID, id)
}

// Card loads a tasting with its infusions and first photos.
func (s *Tastings) Card(ctx context.Context, userID, id int64) (*model.Card, error) {
	t, err := s.repo.GetTasting(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	infusions, err := s.repo.Infusions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.Tastings, card infusions error: %w", err)
	}
	photos, count, err := s.repo.Photos(ctx, id, model.MaxPhotos)
	if err != nil {
		return nil, fmt.Errorf("service.Tastings, card photos error: %w", err)
	}
	return &model.Card{Tasting: t, Infusions: infusions, PhotoIDs: photos, PhotoCount: count}, nil
}

func (s *Tastings) Photos(ctx context.Context, userID, id int64) ([]string, error) {
	if _, err := s.repo.GetTasting(ctx, userID, id); err != nil {
		return nil, err
	}
	photos, _, err := s.repo.Photos(ctx, id, model.MaxPhotos)
	return photos, err
}

// UpdateField validates text for the field and stores it.
func (s *Tastings) UpdateField(ctx context.Context, userID, id int64, field EditField, text string) error {
	value, err := ParseEditValue(field, text)
	if err != nil {
		return err
	}
	return s.SetField(ctx, userID, id, field, value)
}

// SetField stores an already validated value.
func (s *Tastings) SetField(ctx context.Context, userID, id int64, field EditField, value any) error {
	return s.repo.UpdateTasting(ctx, userID, id, field.Column, value)
}

func (s *Tastings) Delete(ctx context.Context, userID, id int64) error {
	return s.repo.DeleteTasting(ctx, userID, id)
}
