package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/barbershop-backend/internal/barber"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) Create(ctx context.Context, w *WorkingWindow) error {
	args := m.Called(ctx, w)
	if args.Error(0) == nil {
		w.ID = 7
	}
	return args.Error(0)
}

func (m *mockRepo) GetByID(ctx context.Context, id int64) (*WorkingWindow, error) {
	args := m.Called(ctx, id)
	if w, ok := args.Get(0).(*WorkingWindow); ok {
		c := *w
		return &c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) ListByBarber(ctx context.Context, barberID string) ([]*WorkingWindow, error) {
	args := m.Called(ctx, barberID)
	return args.Get(0).([]*WorkingWindow), args.Error(1)
}

func (m *mockRepo) ListForDay(ctx context.Context, barberID string, day Weekday) ([]*WorkingWindow, error) {
	args := m.Called(ctx, barberID, day)
	return args.Get(0).([]*WorkingWindow), args.Error(1)
}

func (m *mockRepo) Update(ctx context.Context, w *WorkingWindow) error {
	return m.Called(ctx, w).Error(0)
}

func (m *mockRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockBarbers struct{ mock.Mock }

func (m *mockBarbers) GetByID(ctx context.Context, id string) (*barber.Barber, error) {
	args := m.Called(ctx, id)
	if b, ok := args.Get(0).(*barber.Barber); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockInvalidator struct{ mock.Mock }

func (m *mockInvalidator) InvalidateBarber(ctx context.Context, barberID string) error {
	return m.Called(ctx, barberID).Error(0)
}

func newTestService() (Service, *mockRepo, *mockBarbers, *mockInvalidator) {
	repo := &mockRepo{}
	barbers := &mockBarbers{}
	cache := &mockInvalidator{}
	barbers.On("GetByID", mock.Anything, "b1").Return(&barber.Barber{ID: "b1", IsActive: true}, nil).Maybe()
	barbers.On("GetByID", mock.Anything, mock.Anything).Return(nil, barber.ErrNotFound).Maybe()
	return NewService(repo, barbers, cache, time.UTC), repo, barbers, cache
}

func TestResolveWindow(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.On("ListForDay", mock.Anything, "b1", Monday).Return([]*WorkingWindow{
		{ID: 9, DayOfWeek: Monday, StartTime: 9 * 60, EndTime: 12 * 60, IsActive: true},
		{ID: 4, DayOfWeek: Monday, StartTime: 10 * 60, EndTime: 18 * 60, IsActive: true},
	}, nil)
	repo.On("ListForDay", mock.Anything, "b1", Sunday).Return([]*WorkingWindow{}, nil)

	w, err := svc.ResolveWindow(context.Background(), "b1", "2025-08-18")
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, int64(4), w.ID)

	w, err = svc.ResolveWindow(context.Background(), "b1", "2025-08-17")
	require.NoError(t, err)
	assert.Nil(t, w)

	_, err = svc.ResolveWindow(context.Background(), "b1", "2025-13-01")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestCreateWindow(t *testing.T) {
	t.Run("success invalidates the barber", func(t *testing.T) {
		svc, repo, _, cache := newTestService()
		repo.On("Create", mock.Anything, mock.AnythingOfType("*schedule.WorkingWindow")).Return(nil)
		cache.On("InvalidateBarber", mock.Anything, "b1").Return(nil).Once()

		w, err := svc.CreateWindow(context.Background(), CreateWindowRequest{
			BarberID: "b1", DayOfWeek: int(Monday), StartTime: "10:00", EndTime: "18:00",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(7), w.ID)
		assert.Equal(t, ClockTime(600), w.StartTime)
		assert.Equal(t, ClockTime(1080), w.EndTime)
		assert.True(t, w.IsActive)
		cache.AssertExpectations(t)
	})

	t.Run("cache failure does not fail the write", func(t *testing.T) {
		svc, repo, _, cache := newTestService()
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		cache.On("InvalidateBarber", mock.Anything, "b1").Return(errors.New("redis down"))

		_, err := svc.CreateWindow(context.Background(), CreateWindowRequest{
			BarberID: "b1", DayOfWeek: int(Friday), StartTime: "09:00", EndTime: "17:00",
		})
		assert.NoError(t, err)
	})

	tests := []struct {
		name string
		req  CreateWindowRequest
		want error
	}{
		{"unknown barber", CreateWindowRequest{BarberID: "nobody", StartTime: "10:00", EndTime: "11:00"}, ErrBarberNotFound},
		{"bad clock", CreateWindowRequest{BarberID: "b1", StartTime: "10am", EndTime: "11:00"}, ErrInvalidClock},
		{"end before start", CreateWindowRequest{BarberID: "b1", StartTime: "18:00", EndTime: "10:00"}, ErrInvalidWindow},
		{"empty window", CreateWindowRequest{BarberID: "b1", StartTime: "10:00", EndTime: "10:00"}, ErrInvalidWindow},
		{"day out of range", CreateWindowRequest{BarberID: "b1", DayOfWeek: 7, StartTime: "10:00", EndTime: "11:00"}, ErrInvalidDayOfWeek},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _, _ := newTestService()
			_, err := svc.CreateWindow(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestWindowsAreScopedToTheirBarber(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.On("GetByID", mock.Anything, int64(3)).Return(&WorkingWindow{ID: 3, BarberID: "b2"}, nil)

	_, err := svc.GetWindow(context.Background(), "b1", 3)
	assert.ErrorIs(t, err, ErrWindowNotFound)

	err = svc.DeleteWindow(context.Background(), "b1", 3)
	assert.ErrorIs(t, err, ErrWindowNotFound)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestUpdateWindow(t *testing.T) {
	svc, repo, _, cache := newTestService()
	repo.On("GetByID", mock.Anything, int64(3)).
		Return(&WorkingWindow{ID: 3, BarberID: "b1", DayOfWeek: Monday, StartTime: 600, EndTime: 1080, IsActive: true}, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	cache.On("InvalidateBarber", mock.Anything, "b1").Return(nil)

	end := "12:00"
	w, err := svc.UpdateWindow(context.Background(), "b1", 3, UpdateWindowRequest{EndTime: &end})
	require.NoError(t, err)
	assert.Equal(t, ClockTime(720), w.EndTime)

	tooEarly := "09:00"
	_, err = svc.UpdateWindow(context.Background(), "b1", 3, UpdateWindowRequest{EndTime: &tooEarly})
	assert.ErrorIs(t, err, ErrInvalidWindow)
	repo.AssertNumberOfCalls(t, "Update", 1)
}

func TestListWindows(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.On("ListByBarber", mock.Anything, "b1").Return([]*WorkingWindow{{ID: 1}, {ID: 2}}, nil)

	got, err := svc.ListWindows(context.Background(), "b1")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = svc.ListWindows(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrBarberNotFound)
}
