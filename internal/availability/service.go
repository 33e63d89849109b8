package availability

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/nekogravitycat/barbershop-backend/internal/barber"
	"github.com/nekogravitycat/barbershop-backend/internal/booking"
	"github.com/nekogravitycat/barbershop-backend/internal/metrics"
	"github.com/nekogravitycat/barbershop-backend/internal/offering"
	"github.com/nekogravitycat/barbershop-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/barbershop-backend/internal/schedule"
)

var (
	ErrBarberNotFound  = apperror.NotFound("barber not found")
	ErrServiceNotFound = apperror.NotFound("service not found")
)

// Query selects one barber, one catalog service and one shop-local date (YYYY-MM-DD).
type Query struct {
	BarberID  string
	ServiceID string
	Date      string
}

type BarberReader interface {
	GetByID(ctx context.Context, id string) (*barber.Barber, error)
}

type OfferingReader interface {
	GetByID(ctx context.Context, id string) (*offering.Offering, error)
}

type WindowResolver interface {
	ResolveWindow(ctx context.Context, barberID, date string) (*schedule.WorkingWindow, error)
}

type BookingLister interface {
	ListActiveForDay(ctx context.Context, barberID string, day time.Time) ([]*booking.Booking, error)
}

// SlotCache is satisfied by *Cache.
type SlotCache interface {
	Get(ctx context.Context, barberID, date, serviceID string) ([]schedule.Slot, bool, error)
	Set(ctx context.Context, barberID, date, serviceID string, slots []schedule.Slot) error
}

type Service interface {
	// GetAvailability returns the bookable slots, never nil. A day off yields an empty slice.
	GetAvailability(ctx context.Context, q Query) ([]schedule.Slot, error)
}

type service struct {
	barbers   BarberReader
	offerings OfferingReader
	windows   WindowResolver
	bookings  BookingLister
	cache     SlotCache
	loc       *time.Location
}

// NewService wires the availability pipeline. cache may be nil.
func NewService(barbers BarberReader, offerings OfferingReader, windows WindowResolver, bookings BookingLister, cache SlotCache, loc *time.Location) Service {
	if loc == nil {
		loc = time.UTC
	}
	return &service{
		barbers:   barbers,
		offerings: offerings,
		windows:   windows,
		bookings:  bookings,
		cache:     cache,
		loc:       loc,
	}
}

func (s *service) GetAvailability(ctx context.Context, q Query) ([]schedule.Slot, error) {
	day, err := schedule.ParseDate(q.Date, s.loc)
	if err != nil {
		return nil, err
	}

	b, err := s.barbers.GetByID(ctx, q.BarberID)
	if err != nil {
		if errors.Is(err, barber.ErrNotFound) {
			return nil, ErrBarberNotFound
		}
		return nil, err
	}
	o, err := s.offerings.GetByID(ctx, q.ServiceID)
	if err != nil {
		if errors.Is(err, offering.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	if !b.IsActive || !o.IsActive {
		return []schedule.Slot{}, nil
	}

	if slots, ok := s.fromCache(ctx, q); ok {
		return slots, nil
	}

	slots, err := s.compute(ctx, q.BarberID, q.Date, day, o.DurationMinutes)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, q.BarberID, q.Date, q.ServiceID, slots); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("barber_id", q.BarberID).Msg("availability cache write failed")
		}
	}
	return slots, nil
}

func (s *service) fromCache(ctx context.Context, q Query) ([]schedule.Slot, bool) {
	if s.cache == nil {
		metrics.IncAvailabilityLookup("bypass")
		return nil, false
	}
	slots, ok, err := s.cache.Get(ctx, q.BarberID, q.Date, q.ServiceID)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("barber_id", q.BarberID).Msg("availability cache read failed")
		metrics.IncAvailabilityLookup("bypass")
		return nil, false
	}
	if !ok {
		metrics.IncAvailabilityLookup("miss")
		return nil, false
	}
	metrics.IncAvailabilityLookup("hit")
	return slots, true
}

// compute runs resolve window, generate slots, filter against active bookings.
func (s *service) compute(ctx context.Context, barberID, date string, day time.Time, durationMinutes int) ([]schedule.Slot, error) {
	w, err := s.windows.ResolveWindow(ctx, barberID, date)
	if err != nil {
		return nil, err
	}
	if w == nil || w.Malformed() {
		return []schedule.Slot{}, nil
	}

	candidates := schedule.GenerateSlots(*w, durationMinutes, day)
	if len(candidates) == 0 {
		return candidates, nil
	}

	existing, err := s.bookings.ListActiveForDay(ctx, barberID, day)
	if err != nil {
		return nil, err
	}
	return schedule.FilterAvailable(candidates, existing), nil
}
