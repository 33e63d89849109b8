package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/nekogravitycat/barbershop-backend/internal/barber"
	"github.com/nekogravitycat/barbershop-backend/internal/events"
	"github.com/nekogravitycat/barbershop-backend/internal/metrics"
	"github.com/nekogravitycat/barbershop-backend/internal/offering"
	"github.com/nekogravitycat/barbershop-backend/internal/schedule"
)

var tracer = otel.Tracer("github.com/nekogravitycat/barbershop-backend/internal/booking")

type CreateRequest struct {
	BarberID string
	// ServiceID picks a catalog entry. When empty, Service must describe the service inline.
	ServiceID       string
	Service         *ServiceDescriptor
	StartTime       time.Time
	CustomerName    string
	CustomerContact string
	Notes           *string
	// OwnerID is empty for guest bookings.
	OwnerID string
}

// CreateResult carries the plaintext cancellation token of a guest booking.
// It is never stored and cannot be recovered later.
type CreateResult struct {
	Booking     *Booking
	CancelToken string
}

type UpdateRequest struct {
	StartTime       *time.Time
	CustomerName    *string
	CustomerContact *string
	Notes           *string
}

type CancelRequest struct {
	RequesterID string
	IsStaff     bool
	// Token is the guest cancellation token.
	Token string
}

type BarberReader interface {
	GetByID(ctx context.Context, id string) (*barber.Barber, error)
}

type OfferingReader interface {
	GetByID(ctx context.Context, id string) (*offering.Offering, error)
}

type EventEmitter interface {
	Emit(ctx context.Context, e events.Event)
}

// CacheInvalidator drops cached availability for one barber and shop-local date.
type CacheInvalidator interface {
	InvalidateDay(ctx context.Context, barberID, date string) error
}

// TokenHasher hashes guest cancellation tokens. auth.PasswordHasher satisfies it.
type TokenHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) error
}

type Options struct {
	Events   EventEmitter
	Cache    CacheInvalidator
	Location *time.Location
	Now      func() time.Time
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*CreateResult, error)
	GetByID(ctx context.Context, id string, actor Actor) (*Booking, error)
	List(ctx context.Context, filter Filter, actor Actor) ([]*Booking, int, error)
	// ListActiveForDay returns the barber's pending and confirmed bookings touching a shop-local day.
	ListActiveForDay(ctx context.Context, barberID string, day time.Time) ([]*Booking, error)
	Update(ctx context.Context, id string, req UpdateRequest, actor Actor) (*Booking, error)
	Confirm(ctx context.Context, id string) (*Booking, error)
	Complete(ctx context.Context, id string) (*Booking, error)
	Cancel(ctx context.Context, id string, req CancelRequest) (*Booking, error)
	// CompleteElapsed completes every confirmed booking that has ended and returns how many changed.
	CompleteElapsed(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo      Repository
	barbers   BarberReader
	offerings OfferingReader
	hasher    TokenHasher
	events    EventEmitter
	cache     CacheInvalidator
	loc       *time.Location
	now       func() time.Time
}

func NewService(repo Repository, barbers BarberReader, offerings OfferingReader, hasher TokenHasher, opts Options) Service {
	s := &service{
		repo:      repo,
		barbers:   barbers,
		offerings: offerings,
		hasher:    hasher,
		events:    opts.Events,
		cache:     opts.Cache,
		loc:       opts.Location,
		now:       opts.Now,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	ctx, span := tracer.Start(ctx, "booking.Create")
	defer span.End()
	span.SetAttributes(attribute.String("barber_id", req.BarberID))

	res, err := s.create(ctx, req)
	switch {
	case err == nil:
		metrics.IncBookingOutcome("created")
	case errors.Is(err, ErrTimeConflict):
		metrics.IncBookingOutcome("conflict")
		span.SetStatus(codes.Error, err.Error())
	default:
		metrics.IncBookingOutcome("rejected")
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}

func (s *service) create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	name := strings.TrimSpace(req.CustomerName)
	contact := strings.TrimSpace(req.CustomerContact)
	if name == "" || contact == "" {
		return nil, ErrCustomerRequired
	}
	if err := s.validateStart(req.StartTime); err != nil {
		return nil, err
	}

	br, err := s.barbers.GetByID(ctx, req.BarberID)
	if err != nil {
		if errors.Is(err, barber.ErrNotFound) {
			return nil, ErrBarberNotFound
		}
		return nil, err
	}
	if !br.IsActive {
		return nil, ErrBarberInactive
	}

	desc, err := s.resolveService(ctx, req)
	if err != nil {
		return nil, err
	}

	b := &Booking{
		BarberID:        br.ID,
		BarberName:      br.Name,
		CustomerName:    name,
		CustomerContact: contact,
		Service:         desc,
		StartTime:       req.StartTime,
		EndTime:         req.StartTime.Add(desc.Duration()),
		Status:          StatusPending,
		Notes:           req.Notes,
	}

	var token string
	if req.OwnerID != "" {
		ownerID := req.OwnerID
		b.OwnerID = &ownerID
	} else {
		token = uuid.NewString()
		hash, err := s.hasher.Hash(token)
		if err != nil {
			return nil, err
		}
		b.CancelTokenHash = &hash
	}

	err = s.repo.WithTx(ctx, func(repo Repository) error {
		if err := s.checkSlot(ctx, repo, b); err != nil {
			return err
		}
		return repo.Create(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, events.TypeBookingCreated, b, s.daysOf(b)...)
	return &CreateResult{Booking: b, CancelToken: token}, nil
}

func (s *service) validateStart(start time.Time) error {
	if start.IsZero() {
		return ErrStartRequired
	}
	if start.Second() != 0 || start.Nanosecond() != 0 {
		return ErrStartNotAligned
	}
	if start.Before(s.now()) {
		return ErrStartTimePast
	}
	return nil
}

func (s *service) resolveService(ctx context.Context, req CreateRequest) (ServiceDescriptor, error) {
	if req.ServiceID != "" {
		o, err := s.offerings.GetByID(ctx, req.ServiceID)
		if err != nil {
			if errors.Is(err, offering.ErrNotFound) {
				return ServiceDescriptor{}, ErrServiceNotFound
			}
			return ServiceDescriptor{}, err
		}
		if !o.IsActive {
			return ServiceDescriptor{}, ErrServiceInactive
		}
		return DescriptorFrom(o), nil
	}

	if req.Service == nil || strings.TrimSpace(req.Service.Name) == "" {
		return ServiceDescriptor{}, ErrServiceRequired
	}
	desc := *req.Service
	desc.ServiceID = nil
	desc.Name = strings.TrimSpace(desc.Name)
	if desc.DurationMinutes <= 0 || desc.DurationMinutes > offering.MaxDurationMinutes {
		return ServiceDescriptor{}, ErrInvalidDuration
	}
	if desc.PriceCents < 0 {
		desc.PriceCents = 0
	}
	return desc, nil
}

// checkSlot locks every shop-local day b touches, in calendar order, and
// rejects b if it overlaps an active booking of the same barber.
func (s *service) checkSlot(ctx context.Context, repo Repository, b *Booking) error {
	days := s.daysOf(b)
	for _, day := range days {
		if err := repo.LockBarberDay(ctx, b.BarberID, day); err != nil {
			return err
		}
	}

	from, to := s.dayBounds(b.StartTime, b.EndTime)
	existing, err := repo.ListActive(ctx, b.BarberID, from, to, b.ID)
	if err != nil {
		return err
	}
	if schedule.Conflicts(b.StartTime, b.EndTime, existing) {
		return ErrTimeConflict
	}
	return nil
}

// daysOf lists the shop-local dates (YYYY-MM-DD) covered by [start, end).
func (s *service) daysOf(b *Booking) []string {
	from, to := s.dayBounds(b.StartTime, b.EndTime)
	var days []string
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(time.DateOnly))
	}
	return days
}

// dayBounds widens [start, end) to whole shop-local days.
func (s *service) dayBounds(start, end time.Time) (time.Time, time.Time) {
	from := midnight(start.In(s.loc))
	last := end.Add(-time.Nanosecond)
	if last.Before(start) {
		last = start
	}
	to := midnight(last.In(s.loc)).AddDate(0, 0, 1)
	return from, to
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (s *service) GetByID(ctx context.Context, id string, actor Actor) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(b) {
		return nil, ErrPermissionDenied
	}
	return b, nil
}

func (s *service) List(ctx context.Context, filter Filter, actor Actor) ([]*Booking, int, error) {
	if !actor.IsStaff {
		if actor.UserID == "" {
			return nil, 0, ErrPermissionDenied
		}
		// Customers only ever see their own bookings.
		filter.OwnerID = actor.UserID
	}
	if filter.Status != "" && !Status(filter.Status).Valid() {
		return nil, 0, ErrInvalidStatus
	}
	return s.repo.List(ctx, filter)
}

func (s *service) ListActiveForDay(ctx context.Context, barberID string, day time.Time) ([]*Booking, error) {
	from := midnight(day.In(s.loc))
	return s.repo.ListActive(ctx, barberID, from, from.AddDate(0, 0, 1), "")
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest, actor Actor) (*Booking, error) {
	ctx, span := tracer.Start(ctx, "booking.Update")
	defer span.End()

	var (
		b       *Booking
		oldDays []string
	)
	err := s.repo.WithTx(ctx, func(repo Repository) error {
		var err error
		b, err = repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !actor.CanAccess(b) {
			return ErrPermissionDenied
		}
		if err := terminalError(b.Status); err != nil {
			return err
		}
		oldDays = s.daysOf(b)

		if req.CustomerName != nil {
			name := strings.TrimSpace(*req.CustomerName)
			if name == "" {
				return ErrCustomerRequired
			}
			b.CustomerName = name
		}
		if req.CustomerContact != nil {
			contact := strings.TrimSpace(*req.CustomerContact)
			if contact == "" {
				return ErrCustomerRequired
			}
			b.CustomerContact = contact
		}
		if req.Notes != nil {
			b.Notes = req.Notes
		}

		if req.StartTime != nil && !req.StartTime.Equal(b.StartTime) {
			if err := s.validateStart(*req.StartTime); err != nil {
				return err
			}
			b.StartTime = *req.StartTime
			b.EndTime = b.StartTime.Add(b.Service.Duration())
			if err := s.checkSlot(ctx, repo, b); err != nil {
				return err
			}
		}
		return repo.Update(ctx, b)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.afterWrite(ctx, events.TypeBookingUpdated, b, append(oldDays, s.daysOf(b)...)...)
	return b, nil
}

func (s *service) Confirm(ctx context.Context, id string) (*Booking, error) {
	return s.transition(ctx, id, StatusConfirmed, events.TypeBookingUpdated, func(b *Booking) error {
		if b.Status != StatusPending {
			return ErrNotPending
		}
		return nil
	})
}

func (s *service) Complete(ctx context.Context, id string) (*Booking, error) {
	return s.transition(ctx, id, StatusCompleted, events.TypeBookingUpdated, func(b *Booking) error {
		if b.Status != StatusConfirmed {
			return ErrNotConfirmed
		}
		return nil
	})
}

func (s *service) Cancel(ctx context.Context, id string, req CancelRequest) (*Booking, error) {
	return s.transition(ctx, id, StatusCancelled, events.TypeBookingCancelled, func(b *Booking) error {
		if err := s.authorizeCancel(b, req); err != nil {
			return err
		}
		return terminalError(b.Status)
	})
}

// authorizeCancel must run before the state checks.
func (s *service) authorizeCancel(b *Booking, req CancelRequest) error {
	if req.IsStaff {
		return nil
	}
	if !b.IsGuest() {
		if b.OwnedBy(req.RequesterID) {
			return nil
		}
		return ErrNotOwner
	}
	if req.Token == "" || b.CancelTokenHash == nil {
		return ErrInvalidToken
	}
	if err := s.hasher.Compare(*b.CancelTokenHash, req.Token); err != nil {
		return ErrInvalidToken
	}
	return nil
}

func terminalError(status Status) error {
	switch status {
	case StatusCancelled:
		return ErrAlreadyCancelled
	case StatusCompleted:
		return ErrCompleted
	}
	return nil
}

// transition moves one booking to target under a row lock. check sees the
// current row and vetoes the move by returning an error.
func (s *service) transition(ctx context.Context, id string, target Status, eventType string, check func(*Booking) error) (*Booking, error) {
	var b *Booking
	err := s.repo.WithTx(ctx, func(repo Repository) error {
		var err error
		b, err = repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := check(b); err != nil {
			return err
		}
		b.Status = target
		return repo.Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	metrics.IncBookingTransition(string(target))
	s.afterWrite(ctx, eventType, b, s.daysOf(b)...)
	return b, nil
}

func (s *service) CompleteElapsed(ctx context.Context) (int, error) {
	completed, err := s.repo.CompleteElapsed(ctx, s.now())
	if err != nil {
		return 0, err
	}
	for _, b := range completed {
		metrics.IncBookingTransition(string(StatusCompleted))
		s.afterWrite(ctx, events.TypeBookingUpdated, b, s.daysOf(b)...)
	}
	return len(completed), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, b.BarberID, s.daysOf(b))
	return nil
}

// eventPayload is the public shape of a booking on the event bus.
type eventPayload struct {
	BookingID       string    `json:"booking_id"`
	BarberID        string    `json:"barber_id"`
	BarberName      string    `json:"barber_name"`
	CustomerName    string    `json:"customer_name"`
	CustomerContact string    `json:"customer_contact"`
	ServiceID       *string   `json:"service_id"`
	ServiceName     string    `json:"service_name"`
	PriceCents      int64     `json:"price_cents"`
	DurationMinutes int       `json:"duration_minutes"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Status          Status    `json:"status"`
	OwnerID         *string   `json:"owner_id"`
}

func newEventPayload(b *Booking) eventPayload {
	return eventPayload{
		BookingID:       b.ID,
		BarberID:        b.BarberID,
		BarberName:      b.BarberName,
		CustomerName:    b.CustomerName,
		CustomerContact: b.CustomerContact,
		ServiceID:       b.Service.ServiceID,
		ServiceName:     b.Service.Name,
		PriceCents:      b.Service.PriceCents,
		DurationMinutes: b.Service.DurationMinutes,
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		Status:          b.Status,
		OwnerID:         b.OwnerID,
	}
}

// afterWrite runs once the transaction has committed. Nothing here can fail the request.
func (s *service) afterWrite(ctx context.Context, eventType string, b *Booking, days ...string) {
	s.invalidate(ctx, b.BarberID, days)

	if s.events == nil {
		return
	}
	e, err := events.New(eventType, b.BarberID, newEventPayload(b))
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("booking_id", b.ID).Msg("build booking event failed")
		return
	}
	s.events.Emit(ctx, e)
}

func (s *service) invalidate(ctx context.Context, barberID string, days []string) {
	if s.cache == nil {
		return
	}
	seen := make(map[string]bool, len(days))
	for _, day := range days {
		if seen[day] {
			continue
		}
		seen[day] = true
		if err := s.cache.InvalidateDay(ctx, barberID, day); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).
				Str("barber_id", barberID).
				Str("date", day).
				Msg("availability cache invalidation failed")
		}
	}
}
