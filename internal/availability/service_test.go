package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/barbershop-backend/internal/barber"
	"github.com/nekogravitycat/barbershop-backend/internal/booking"
	"github.com/nekogravitycat/barbershop-backend/internal/offering"
	"github.com/nekogravitycat/barbershop-backend/internal/schedule"
)

type mockBarbers struct{ mock.Mock }

func (m *mockBarbers) GetByID(ctx context.Context, id string) (*barber.Barber, error) {
	args := m.Called(ctx, id)
	if b, ok := args.Get(0).(*barber.Barber); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockOfferings struct{ mock.Mock }

func (m *mockOfferings) GetByID(ctx context.Context, id string) (*offering.Offering, error) {
	args := m.Called(ctx, id)
	if o, ok := args.Get(0).(*offering.Offering); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockWindows struct{ mock.Mock }

func (m *mockWindows) ResolveWindow(ctx context.Context, barberID, date string) (*schedule.WorkingWindow, error) {
	args := m.Called(ctx, barberID, date)
	if w, ok := args.Get(0).(*schedule.WorkingWindow); ok {
		return w, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockBookings struct{ mock.Mock }

func (m *mockBookings) ListActiveForDay(ctx context.Context, barberID string, day time.Time) ([]*booking.Booking, error) {
	args := m.Called(ctx, barberID, day)
	if b, ok := args.Get(0).([]*booking.Booking); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

const (
	testBarber  = "barber-1"
	testService = "svc-30"
	testDate    = "2025-08-18" // a Monday
)

type deps struct {
	barbers   *mockBarbers
	offerings *mockOfferings
	windows   *mockWindows
	bookings  *mockBookings
}

func newDeps(barberActive, serviceActive bool) *deps {
	d := &deps{&mockBarbers{}, &mockOfferings{}, &mockWindows{}, &mockBookings{}}
	d.barbers.On("GetByID", mock.Anything, testBarber).
		Return(&barber.Barber{ID: testBarber, IsActive: barberActive}, nil)
	d.offerings.On("GetByID", mock.Anything, testService).
		Return(&offering.Offering{ID: testService, DurationMinutes: 30, IsActive: serviceActive}, nil)
	return d
}

func (d *deps) service(cache SlotCache) Service {
	return NewService(d.barbers, d.offerings, d.windows, d.bookings, cache, time.UTC)
}

func mondayWindow() *schedule.WorkingWindow {
	return &schedule.WorkingWindow{
		ID:        1,
		BarberID:  testBarber,
		DayOfWeek: schedule.Monday,
		StartTime: 10 * 60,
		EndTime:   18 * 60,
		IsActive:  true,
	}
}

func at(hour, minute int) time.Time {
	return time.Date(2025, 8, 18, hour, minute, 0, 0, time.UTC)
}

func TestGetAvailability_ExcludesBookedSlot(t *testing.T) {
	d := newDeps(true, true)
	d.windows.On("ResolveWindow", mock.Anything, testBarber, testDate).Return(mondayWindow(), nil)
	d.bookings.On("ListActiveForDay", mock.Anything, testBarber, mock.Anything).Return([]*booking.Booking{
		{StartTime: at(15, 0), EndTime: at(15, 30), Status: booking.StatusConfirmed},
		// Cancelled bookings no longer hold their slot.
		{StartTime: at(11, 0), EndTime: at(11, 30), Status: booking.StatusCancelled},
	}, nil)

	slots, err := d.service(nil).GetAvailability(context.Background(),
		Query{BarberID: testBarber, ServiceID: testService, Date: testDate})
	require.NoError(t, err)

	assert.Len(t, slots, 15)
	assert.Contains(t, slots, schedule.Slot{Start: at(14, 30), End: at(15, 0)})
	assert.Contains(t, slots, schedule.Slot{Start: at(15, 30), End: at(16, 0)})
	assert.Contains(t, slots, schedule.Slot{Start: at(11, 0), End: at(11, 30)})
	assert.NotContains(t, slots, schedule.Slot{Start: at(15, 0), End: at(15, 30)})
	assert.Equal(t, at(10, 0), slots[0].Start)
	assert.Equal(t, at(18, 0), slots[len(slots)-1].End)
}

func TestGetAvailability_EmptyResults(t *testing.T) {
	t.Run("no window that day", func(t *testing.T) {
		d := newDeps(true, true)
		d.windows.On("ResolveWindow", mock.Anything, testBarber, testDate).Return(nil, nil)

		slots, err := d.service(nil).GetAvailability(context.Background(),
			Query{BarberID: testBarber, ServiceID: testService, Date: testDate})
		require.NoError(t, err)
		assert.NotNil(t, slots)
		assert.Empty(t, slots)
		d.bookings.AssertNotCalled(t, "ListActiveForDay", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed window", func(t *testing.T) {
		d := newDeps(true, true)
		w := mondayWindow()
		w.StartTime, w.EndTime = w.EndTime, w.StartTime
		d.windows.On("ResolveWindow", mock.Anything, testBarber, testDate).Return(w, nil)

		slots, err := d.service(nil).GetAvailability(context.Background(),
			Query{BarberID: testBarber, ServiceID: testService, Date: testDate})
		require.NoError(t, err)
		assert.Empty(t, slots)
	})

	t.Run("inactive barber", func(t *testing.T) {
		d := newDeps(false, true)

		slots, err := d.service(nil).GetAvailability(context.Background(),
			Query{BarberID: testBarber, ServiceID: testService, Date: testDate})
		require.NoError(t, err)
		assert.Empty(t, slots)
		d.windows.AssertNotCalled(t, "ResolveWindow", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("inactive service", func(t *testing.T) {
		d := newDeps(true, false)

		slots, err := d.service(nil).GetAvailability(context.Background(),
			Query{BarberID: testBarber, ServiceID: testService, Date: testDate})
		require.NoError(t, err)
		assert.Empty(t, slots)
	})
}

func TestGetAvailability_Errors(t *testing.T) {
	t.Run("bad date", func(t *testing.T) {
		d := newDeps(true, true)
		_, err := d.service(nil).GetAvailability(context.Background(),
			Query{BarberID: testBarber, ServiceID: testService, Date: "18/08/2025"})
		assert.ErrorIs(t, err, schedule.ErrInvalidDate)
	})

	t.Run("unknown barber", func(t *testing.T) {
		d := newDeps(true, true)
		d.barbers.On("GetByID", mock.Anything, "ghost").Return(nil, barber.ErrNotFound)

		_, err := d.service(nil).GetAvailability(context.Background(),
			Query{BarberID: "ghost", ServiceID: testService, Date: testDate})
		assert.ErrorIs(t, err, ErrBarberNotFound)
	})

	t.Run("unknown service", func(t *testing.T) {
		d := newDeps(true, true)
		d.offerings.On("GetByID", mock.Anything, "ghost").Return(nil, offering.ErrNotFound)

		_, err := d.service(nil).GetAvailability(context.Background(),
			Query{BarberID: testBarber, ServiceID: "ghost", Date: testDate})
		assert.ErrorIs(t, err, ErrServiceNotFound)
	})

	t.Run("booking lookup fails", func(t *testing.T) {
		d := newDeps(true, true)
		d.windows.On("ResolveWindow", mock.Anything, testBarber, testDate).Return(mondayWindow(), nil)
		d.bookings.On("ListActiveForDay", mock.Anything, testBarber, mock.Anything).Return(nil, errors.New("db down"))

		_, err := d.service(nil).GetAvailability(context.Background(),
			Query{BarberID: testBarber, ServiceID: testService, Date: testDate})
		assert.Error(t, err)
	})
}

func TestGetAvailability_Cache(t *testing.T) {
	cache, _ := newTestCache(t)
	d := newDeps(true, true)
	d.windows.On("ResolveWindow", mock.Anything, testBarber, testDate).Return(mondayWindow(), nil).Once()
	d.bookings.On("ListActiveForDay", mock.Anything, testBarber, mock.Anything).Return([]*booking.Booking{}, nil).Once()
	svc := d.service(cache)
	q := Query{BarberID: testBarber, ServiceID: testService, Date: testDate}

	first, err := svc.GetAvailability(context.Background(), q)
	require.NoError(t, err)
	second, err := svc.GetAvailability(context.Background(), q)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	assert.True(t, first[0].Start.Equal(second[0].Start))
	d.windows.AssertNumberOfCalls(t, "ResolveWindow", 1)

	// A booking write drops the day, so the next lookup recomputes.
	require.NoError(t, cache.InvalidateDay(context.Background(), testBarber, testDate))
	d.windows.On("ResolveWindow", mock.Anything, testBarber, testDate).Return(mondayWindow(), nil).Once()
	d.bookings.On("ListActiveForDay", mock.Anything, testBarber, mock.Anything).Return([]*booking.Booking{
		{StartTime: at(10, 0), EndTime: at(10, 30), Status: booking.StatusPending},
	}, nil).Once()

	third, err := svc.GetAvailability(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, third, len(first)-1)
	d.windows.AssertNumberOfCalls(t, "ResolveWindow", 2)
}
