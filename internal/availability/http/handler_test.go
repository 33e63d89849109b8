package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/barbershop-backend/internal/availability"
	"github.com/nekogravitycat/barbershop-backend/internal/pkg/response"
	"github.com/nekogravitycat/barbershop-backend/internal/schedule"
)

type mockService struct{ mock.Mock }

func (m *mockService) GetAvailability(ctx context.Context, q availability.Query) ([]schedule.Slot, error) {
	args := m.Called(ctx, q)
	if slots, ok := args.Get(0).([]schedule.Slot); ok {
		return slots, args.Error(1)
	}
	return nil, args.Error(1)
}

const (
	barberID  = "00000000-0000-0000-0000-0000000000a1"
	serviceID = "00000000-0000-0000-0000-0000000000c3"
)

func newRouter(svc availability.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/v1"), NewHandler(svc))
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestGetAvailability(t *testing.T) {
	base := "/v1/barbers/" + barberID + "/availability"

	t.Run("lists slots", func(t *testing.T) {
		svc := &mockService{}
		start := time.Date(2025, 8, 18, 10, 0, 0, 0, time.UTC)
		svc.On("GetAvailability", mock.Anything, availability.Query{
			BarberID: barberID, ServiceID: serviceID, Date: "2025-08-18",
		}).Return([]schedule.Slot{
			{Start: start, End: start.Add(30 * time.Minute)},
			{Start: start.Add(30 * time.Minute), End: start.Add(time.Hour)},
		}, nil)

		w := get(newRouter(svc), base+"?service_id="+serviceID+"&date=2025-08-18")
		require.Equal(t, http.StatusOK, w.Code)

		var resp AvailabilityResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, barberID, resp.BarberID)
		assert.Equal(t, "2025-08-18", resp.Date)
		require.Len(t, resp.Slots, 2)
		assert.True(t, resp.Slots[0].Start.Equal(start))
		assert.True(t, resp.Slots[1].End.Equal(start.Add(time.Hour)))
	})

	t.Run("day off renders an empty array", func(t *testing.T) {
		svc := &mockService{}
		svc.On("GetAvailability", mock.Anything, mock.Anything).Return([]schedule.Slot{}, nil)

		w := get(newRouter(svc), base+"?service_id="+serviceID+"&date=2025-08-17")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"slots":[]`)
	})

	t.Run("bad date is 400", func(t *testing.T) {
		svc := &mockService{}
		svc.On("GetAvailability", mock.Anything, mock.Anything).Return(nil, schedule.ErrInvalidDate)

		w := get(newRouter(svc), base+"?service_id="+serviceID+"&date=18-08-2025")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp response.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "invalid_argument", resp.Code)
	})

	t.Run("unknown barber is 404", func(t *testing.T) {
		svc := &mockService{}
		svc.On("GetAvailability", mock.Anything, mock.Anything).Return(nil, availability.ErrBarberNotFound)

		w := get(newRouter(svc), base+"?service_id="+serviceID+"&date=2025-08-18")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing query parameters", func(t *testing.T) {
		svc := &mockService{}

		w := get(newRouter(svc), base+"?date=2025-08-18")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = get(newRouter(svc), "/v1/barbers/not-a-uuid/availability?service_id="+serviceID+"&date=2025-08-18")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "GetAvailability", mock.Anything, mock.Anything)
	})
}
