package offering

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) Create(ctx context.Context, o *Offering) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockRepo) GetByID(ctx context.Context, id string) (*Offering, error) {
	args := m.Called(ctx, id)
	if o, ok := args.Get(0).(*Offering); ok {
		c := *o
		return &c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepo) List(ctx context.Context, filter Filter) ([]*Offering, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*Offering), args.Int(1), args.Error(2)
}

func (m *mockRepo) Update(ctx context.Context, o *Offering) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestCreate(t *testing.T) {
	t.Run("defaults to active", func(t *testing.T) {
		repo := &mockRepo{}
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)

		o, err := NewService(repo).Create(context.Background(), CreateRequest{
			Name: "  Haircut ", PriceCents: 2500, DurationMinutes: 30,
		})
		require.NoError(t, err)
		assert.Equal(t, "Haircut", o.Name)
		assert.True(t, o.IsActive)
	})

	tests := []struct {
		name string
		req  CreateRequest
		want error
	}{
		{"blank name", CreateRequest{Name: " ", DurationMinutes: 30}, ErrNameRequired},
		{"zero duration", CreateRequest{Name: "Trim"}, ErrInvalidDuration},
		{"longer than a day", CreateRequest{Name: "Trim", DurationMinutes: MaxDurationMinutes + 1}, ErrInvalidDuration},
		{"negative price", CreateRequest{Name: "Trim", DurationMinutes: 15, PriceCents: -1}, ErrInvalidPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepo{}
			_, err := NewService(repo).Create(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestUpdate(t *testing.T) {
	existing := &Offering{ID: "o1", Name: "Haircut", PriceCents: 2500, DurationMinutes: 30, IsActive: true}

	t.Run("partial update", func(t *testing.T) {
		repo := &mockRepo{}
		repo.On("GetByID", mock.Anything, "o1").Return(existing, nil)
		repo.On("Update", mock.Anything, mock.Anything).Return(nil)

		duration := 45
		o, err := NewService(repo).Update(context.Background(), "o1", UpdateRequest{DurationMinutes: &duration})
		require.NoError(t, err)
		assert.Equal(t, 45, o.DurationMinutes)
		assert.Equal(t, "Haircut", o.Name)
	})

	t.Run("invalid result is not saved", func(t *testing.T) {
		repo := &mockRepo{}
		repo.On("GetByID", mock.Anything, "o1").Return(existing, nil)

		price := int64(-5)
		_, err := NewService(repo).Update(context.Background(), "o1", UpdateRequest{PriceCents: &price})
		assert.ErrorIs(t, err, ErrInvalidPrice)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		repo := &mockRepo{}
		repo.On("GetByID", mock.Anything, "missing").Return(nil, ErrNotFound)

		_, err := NewService(repo).Update(context.Background(), "missing", UpdateRequest{})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
