package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/barbershop-backend/internal/auth"
	"github.com/nekogravitycat/barbershop-backend/internal/booking"
	"github.com/nekogravitycat/barbershop-backend/internal/pkg/response"
	"github.com/nekogravitycat/barbershop-backend/internal/user"
)

type mockService struct{ mock.Mock }

func (m *mockService) Create(ctx context.Context, req booking.CreateRequest) (*booking.CreateResult, error) {
	args := m.Called(ctx, req)
	if r, ok := args.Get(0).(*booking.CreateResult); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) GetByID(ctx context.Context, id string, actor booking.Actor) (*booking.Booking, error) {
	args := m.Called(ctx, id, actor)
	return bookingOrNil(args.Get(0)), args.Error(1)
}

func (m *mockService) List(ctx context.Context, filter booking.Filter, actor booking.Actor) ([]*booking.Booking, int, error) {
	args := m.Called(ctx, filter, actor)
	list, _ := args.Get(0).([]*booking.Booking)
	return list, args.Int(1), args.Error(2)
}

func (m *mockService) ListActiveForDay(ctx context.Context, barberID string, day time.Time) ([]*booking.Booking, error) {
	args := m.Called(ctx, barberID, day)
	list, _ := args.Get(0).([]*booking.Booking)
	return list, args.Error(1)
}

func (m *mockService) Update(ctx context.Context, id string, req booking.UpdateRequest, actor booking.Actor) (*booking.Booking, error) {
	args := m.Called(ctx, id, req, actor)
	return bookingOrNil(args.Get(0)), args.Error(1)
}

func (m *mockService) Confirm(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	return bookingOrNil(args.Get(0)), args.Error(1)
}

func (m *mockService) Complete(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	return bookingOrNil(args.Get(0)), args.Error(1)
}

func (m *mockService) Cancel(ctx context.Context, id string, req booking.CancelRequest) (*booking.Booking, error) {
	args := m.Called(ctx, id, req)
	return bookingOrNil(args.Get(0)), args.Error(1)
}

func (m *mockService) CompleteElapsed(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func bookingOrNil(v any) *booking.Booking {
	b, _ := v.(*booking.Booking)
	return b
}

type staticUsers map[string]*user.User

func (u staticUsers) GetByID(ctx context.Context, id string) (*user.User, error) {
	if found, ok := u[id]; ok {
		return found, nil
	}
	return nil, user.ErrNotFound
}

const (
	bookingID  = "00000000-0000-0000-0000-0000000000b5"
	barberID   = "00000000-0000-0000-0000-0000000000a1"
	serviceID  = "00000000-0000-0000-0000-0000000000c3"
	customerID = "00000000-0000-0000-0000-0000000000d1"
	strangerID = "00000000-0000-0000-0000-0000000000d2"
	staffID    = "00000000-0000-0000-0000-0000000000e1"
)

type testServer struct {
	router  *gin.Engine
	service *mockService
	jwt     *auth.JWTManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithUsers(t, staticUsers{
		customerID: {ID: customerID, IsActive: true},
		strangerID: {ID: strangerID, IsActive: true},
		staffID:    {ID: staffID, IsActive: true, IsSystemAdmin: true},
	})
}

func newTestServerWithUsers(t *testing.T, users UserReader) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := &mockService{}
	jwtManager := auth.NewJWTManager("handler-test-secret", time.Hour)
	staffOnly := func(c *gin.Context) {
		if u, err := users.GetByID(c.Request.Context(), auth.GetUserID(c)); err != nil || !u.IsSystemAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, response.ErrorResponse{Error: "forbidden", Code: "forbidden"})
			return
		}
		c.Next()
	}

	r := gin.New()
	RegisterRoutes(r.Group("/v1"), NewHandler(svc, users),
		auth.AuthOptional(jwtManager), auth.AuthRequired(jwtManager), staffOnly)
	return &testServer{router: r, service: svc, jwt: jwtManager}
}

func (s *testServer) do(t *testing.T, method, path string, body any, userID string) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody []byte
	if body != nil {
		var err error
		reqBody, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		token, err := s.jwt.GenerateAccessToken(userID, userID+"@example.com")
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func sampleBooking(status booking.Status, owner *string) *booking.Booking {
	start := time.Date(2025, 8, 18, 15, 0, 0, 0, time.UTC)
	sid := serviceID
	return &booking.Booking{
		ID:              bookingID,
		BarberID:        barberID,
		BarberName:      "Sam",
		CustomerName:    "Alex",
		CustomerContact: "alex@example.com",
		Service:         booking.ServiceDescriptor{ServiceID: &sid, Name: "Haircut", PriceCents: 2500, DurationMinutes: 30},
		StartTime:       start,
		EndTime:         start.Add(30 * time.Minute),
		Status:          status,
		OwnerID:         owner,
	}
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Code
}

func createBody() CreateBookingRequest {
	return CreateBookingRequest{
		BarberID:        barberID,
		ServiceID:       serviceID,
		StartTime:       time.Date(2025, 8, 18, 15, 0, 0, 0, time.UTC),
		CustomerName:    "Alex",
		CustomerContact: "alex@example.com",
	}
}

func TestCreateBooking(t *testing.T) {
	t.Run("guest receives a cancel token", func(t *testing.T) {
		s := newTestServer(t)
		s.service.On("Create", mock.Anything, mock.MatchedBy(func(r booking.CreateRequest) bool {
			return r.OwnerID == "" && r.ServiceID == serviceID && r.BarberID == barberID
		})).Return(&booking.CreateResult{Booking: sampleBooking(booking.StatusPending, nil), CancelToken: "tok"}, nil)

		w := s.do(t, http.MethodPost, "/v1/bookings", createBody(), "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp CreateBookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, bookingID, resp.ID)
		assert.Equal(t, "tok", resp.CancelToken)
		assert.Equal(t, "pending", resp.Status)
		assert.Equal(t, "Haircut", resp.Service.Name)
		assert.Equal(t, "Sam", resp.Barber.Name)
	})

	t.Run("signed-in customer owns the booking", func(t *testing.T) {
		s := newTestServer(t)
		owner := customerID
		s.service.On("Create", mock.Anything, mock.MatchedBy(func(r booking.CreateRequest) bool {
			return r.OwnerID == customerID
		})).Return(&booking.CreateResult{Booking: sampleBooking(booking.StatusPending, &owner)}, nil)

		w := s.do(t, http.MethodPost, "/v1/bookings", createBody(), customerID)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.NotContains(t, w.Body.String(), "cancel_token")
	})

	t.Run("inline service", func(t *testing.T) {
		s := newTestServer(t)
		s.service.On("Create", mock.Anything, mock.MatchedBy(func(r booking.CreateRequest) bool {
			return r.ServiceID == "" && r.Service != nil && r.Service.DurationMinutes == 15
		})).Return(&booking.CreateResult{Booking: sampleBooking(booking.StatusPending, nil)}, nil)

		body := createBody()
		body.ServiceID = ""
		body.Service = &ServiceBody{Name: "Beard trim", PriceCents: 900, DurationMinutes: 15}
		w := s.do(t, http.MethodPost, "/v1/bookings", body, "")
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("conflict maps to 409", func(t *testing.T) {
		s := newTestServer(t)
		s.service.On("Create", mock.Anything, mock.Anything).Return(nil, booking.ErrTimeConflict)

		w := s.do(t, http.MethodPost, "/v1/bookings", createBody(), customerID)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "conflict", errorCode(t, w))
	})

	t.Run("malformed body", func(t *testing.T) {
		s := newTestServer(t)
		body := createBody()
		body.BarberID = "not-a-uuid"

		w := s.do(t, http.MethodPost, "/v1/bookings", body, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_argument", errorCode(t, w))
		s.service.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("bad token is rejected even on guest routes", func(t *testing.T) {
		s := newTestServer(t)
		req := httptest.NewRequest(http.MethodPost, "/v1/bookings", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestCancelBooking(t *testing.T) {
	path := "/v1/bookings/" + bookingID + "/cancel"

	t.Run("someone else's booking is forbidden", func(t *testing.T) {
		s := newTestServer(t)
		s.service.On("Cancel", mock.Anything, bookingID, booking.CancelRequest{RequesterID: strangerID}).
			Return(nil, booking.ErrNotOwner)

		w := s.do(t, http.MethodPost, path, nil, strangerID)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "forbidden", errorCode(t, w))
	})

	t.Run("already cancelled is 422", func(t *testing.T) {
		s := newTestServer(t)
		s.service.On("Cancel", mock.Anything, bookingID, mock.Anything).Return(nil, booking.ErrAlreadyCancelled)

		w := s.do(t, http.MethodPost, path, nil, customerID)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "invalid_state", errorCode(t, w))
	})

	t.Run("guest with token", func(t *testing.T) {
		s := newTestServer(t)
		s.service.On("Cancel", mock.Anything, bookingID, booking.CancelRequest{Token: "tok"}).
			Return(sampleBooking(booking.StatusCancelled, nil), nil)

		w := s.do(t, http.MethodPost, path, CancelBookingRequest{Token: "tok"}, "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp BookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "cancelled", resp.Status)
	})

	t.Run("staff flag comes from the user record", func(t *testing.T) {
		s := newTestServer(t)
		s.service.On("Cancel", mock.Anything, bookingID, booking.CancelRequest{RequesterID: staffID, IsStaff: true}).
			Return(sampleBooking(booking.StatusCancelled, nil), nil)

		w := s.do(t, http.MethodPost, path, nil, staffID)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(t, http.MethodPost, "/v1/bookings/5/cancel", nil, customerID)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

type unreachableUsers struct{}

func (unreachableUsers) GetByID(context.Context, string) (*user.User, error) {
	return nil, errors.New("connection reset by peer")
}

func TestCallerLookup(t *testing.T) {
	path := "/v1/bookings/" + bookingID + "/cancel"

	t.Run("lookup failure is a server error, not a demotion", func(t *testing.T) {
		s := newTestServerWithUsers(t, unreachableUsers{})

		w := s.do(t, http.MethodPost, path, nil, staffID)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal", errorCode(t, w))
		s.service.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything)

		w = s.do(t, http.MethodGet, "/v1/bookings/"+bookingID, nil, staffID)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		s.service.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("deleted user is treated as a customer", func(t *testing.T) {
		s := newTestServerWithUsers(t, staticUsers{})
		s.service.On("Cancel", mock.Anything, bookingID, booking.CancelRequest{RequesterID: customerID}).
			Return(nil, booking.ErrNotOwner)

		w := s.do(t, http.MethodPost, path, nil, customerID)
		assert.Equal(t, http.StatusForbidden, w.Code)
		s.service.AssertExpectations(t)
	})
}

func TestListBookings(t *testing.T) {
	t.Run("requires a token", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(t, http.MethodGet, "/v1/bookings", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("customer filter by user id is ignored", func(t *testing.T) {
		s := newTestServer(t)
		s.service.On("List", mock.Anything, mock.MatchedBy(func(f booking.Filter) bool {
			return f.OwnerID == "" && f.Page == 1 && f.PageSize == 20 && f.SortOrder == "DESC"
		}), booking.Actor{UserID: customerID}).Return([]*booking.Booking{sampleBooking(booking.StatusPending, nil)}, 1, nil)

		w := s.do(t, http.MethodGet, "/v1/bookings?user_id="+strangerID, nil, customerID)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var page response.PageResponse[BookingResponse]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Equal(t, 1, page.Total)
		require.Len(t, page.Items, 1)
	})

	t.Run("staff may filter by user", func(t *testing.T) {
		s := newTestServer(t)
		s.service.On("List", mock.Anything, mock.MatchedBy(func(f booking.Filter) bool {
			return f.OwnerID == customerID && f.Status == "confirmed"
		}), booking.Actor{UserID: staffID, IsStaff: true}).Return([]*booking.Booking{}, 0, nil)

		w := s.do(t, http.MethodGet, "/v1/bookings?status=confirmed&user_id="+customerID, nil, staffID)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("inverted range", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(t, http.MethodGet,
			"/v1/bookings?from=2025-08-19T00:00:00Z&to=2025-08-18T00:00:00Z", nil, customerID)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStaffTransitions(t *testing.T) {
	t.Run("customers cannot confirm", func(t *testing.T) {
		s := newTestServer(t)
		w := s.do(t, http.MethodPost, "/v1/bookings/"+bookingID+"/confirm", nil, customerID)
		assert.Equal(t, http.StatusForbidden, w.Code)
		s.service.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything)
	})

	t.Run("confirm non-pending", func(t *testing.T) {
		s := newTestServer(t)
		s.service.On("Confirm", mock.Anything, bookingID).Return(nil, booking.ErrNotPending)

		w := s.do(t, http.MethodPost, "/v1/bookings/"+bookingID+"/confirm", nil, staffID)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("complete", func(t *testing.T) {
		s := newTestServer(t)
		s.service.On("Complete", mock.Anything, bookingID).Return(sampleBooking(booking.StatusCompleted, nil), nil)

		w := s.do(t, http.MethodPost, "/v1/bookings/"+bookingID+"/complete", nil, staffID)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		s := newTestServer(t)
		s.service.On("Delete", mock.Anything, bookingID).Return(nil)

		w := s.do(t, http.MethodDelete, "/v1/bookings/"+bookingID, nil, staffID)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestUpdateBooking(t *testing.T) {
	s := newTestServer(t)
	newStart := time.Date(2025, 8, 18, 16, 0, 0, 0, time.UTC)
	s.service.On("Update", mock.Anything, bookingID, mock.MatchedBy(func(r booking.UpdateRequest) bool {
		return r.StartTime != nil && r.StartTime.Equal(newStart)
	}), booking.Actor{UserID: customerID}).Return(nil, booking.ErrTimeConflict)

	w := s.do(t, http.MethodPatch, "/v1/bookings/"+bookingID, UpdateBookingRequest{StartTime: &newStart}, customerID)
	assert.Equal(t, http.StatusConflict, w.Code)
}
