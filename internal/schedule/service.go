package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/nekogravitycat/barbershop-backend/internal/barber"
)

// CreateWindowRequest carries data to add a working window to a barber.
type CreateWindowRequest struct {
	BarberID  string
	DayOfWeek int
	StartTime string
	EndTime   string
	IsActive  *bool
}

// UpdateWindowRequest carries data for partial updates.
type UpdateWindowRequest struct {
	DayOfWeek *int
	StartTime *string
	EndTime   *string
	IsActive  *bool
}

// BarberReader is the part of barber.Service the schedule depends on.
type BarberReader interface {
	GetByID(ctx context.Context, id string) (*barber.Barber, error)
}

// CacheInvalidator drops cached availability after a barber's hours change.
type CacheInvalidator interface {
	InvalidateBarber(ctx context.Context, barberID string) error
}

type Service interface {
	// ResolveWindow returns the window that governs barberID on the given
	// YYYY-MM-DD date, or nil when the barber does not work that day.
	ResolveWindow(ctx context.Context, barberID, date string) (*WorkingWindow, error)

	CreateWindow(ctx context.Context, req CreateWindowRequest) (*WorkingWindow, error)
	GetWindow(ctx context.Context, barberID string, id int64) (*WorkingWindow, error)
	ListWindows(ctx context.Context, barberID string) ([]*WorkingWindow, error)
	UpdateWindow(ctx context.Context, barberID string, id int64, req UpdateWindowRequest) (*WorkingWindow, error)
	DeleteWindow(ctx context.Context, barberID string, id int64) error
}

type service struct {
	repo    Repository
	barbers BarberReader
	cache   CacheInvalidator
	loc     *time.Location
}

// NewService creates a schedule Service. Dates are interpreted in loc; cache may be nil.
func NewService(repo Repository, barbers BarberReader, cache CacheInvalidator, loc *time.Location) Service {
	if loc == nil {
		loc = time.UTC
	}
	return &service{repo: repo, barbers: barbers, cache: cache, loc: loc}
}

func (s *service) ResolveWindow(ctx context.Context, barberID, date string) (*WorkingWindow, error) {
	day, err := ParseDate(date, s.loc)
	if err != nil {
		return nil, err
	}

	windows, err := s.repo.ListForDay(ctx, barberID, WeekdayOf(day))
	if err != nil {
		return nil, err
	}
	return pickWindow(windows), nil
}

func (s *service) CreateWindow(ctx context.Context, req CreateWindowRequest) (*WorkingWindow, error) {
	if err := s.ensureBarber(ctx, req.BarberID); err != nil {
		return nil, err
	}

	w := &WorkingWindow{
		BarberID:  req.BarberID,
		DayOfWeek: Weekday(req.DayOfWeek),
		IsActive:  true,
	}
	if req.IsActive != nil {
		w.IsActive = *req.IsActive
	}

	var err error
	if w.StartTime, err = ParseClock(req.StartTime); err != nil {
		return nil, err
	}
	if w.EndTime, err = ParseClock(req.EndTime); err != nil {
		return nil, err
	}
	if err := validateWindow(w); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, w); err != nil {
		return nil, err
	}
	s.invalidate(ctx, w.BarberID)
	return w, nil
}

func (s *service) GetWindow(ctx context.Context, barberID string, id int64) (*WorkingWindow, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// A window is only addressable through its own barber.
	if w.BarberID != barberID {
		return nil, ErrWindowNotFound
	}
	return w, nil
}

func (s *service) ListWindows(ctx context.Context, barberID string) ([]*WorkingWindow, error) {
	if err := s.ensureBarber(ctx, barberID); err != nil {
		return nil, err
	}
	return s.repo.ListByBarber(ctx, barberID)
}

func (s *service) UpdateWindow(ctx context.Context, barberID string, id int64, req UpdateWindowRequest) (*WorkingWindow, error) {
	w, err := s.GetWindow(ctx, barberID, id)
	if err != nil {
		return nil, err
	}

	if req.DayOfWeek != nil {
		w.DayOfWeek = Weekday(*req.DayOfWeek)
	}
	if req.StartTime != nil {
		if w.StartTime, err = ParseClock(*req.StartTime); err != nil {
			return nil, err
		}
	}
	if req.EndTime != nil {
		if w.EndTime, err = ParseClock(*req.EndTime); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil {
		w.IsActive = *req.IsActive
	}
	if err := validateWindow(w); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, w); err != nil {
		return nil, err
	}
	s.invalidate(ctx, barberID)
	return w, nil
}

func (s *service) DeleteWindow(ctx context.Context, barberID string, id int64) error {
	if _, err := s.GetWindow(ctx, barberID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, barberID)
	return nil
}

func (s *service) ensureBarber(ctx context.Context, barberID string) error {
	if _, err := s.barbers.GetByID(ctx, barberID); err != nil {
		if errors.Is(err, barber.ErrNotFound) {
			return ErrBarberNotFound
		}
		return err
	}
	return nil
}

// invalidate is best effort: stale entries expire on their own.
func (s *service) invalidate(ctx context.Context, barberID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateBarber(ctx, barberID); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("barber_id", barberID).Msg("availability cache invalidation failed")
	}
}

func validateWindow(w *WorkingWindow) error {
	if !w.DayOfWeek.Valid() {
		return ErrInvalidDayOfWeek
	}
	if w.Malformed() {
		return ErrInvalidWindow
	}
	return nil
}
