package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "bedbook/pkg/errors"
	"bedbook/pkg/logger"
	"bedbook/pkg/middleware"
	"bedbook/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockConcernService struct {
	availableBedsFunc     func(ctx context.Context, p model.Principal, bookingID, sharingType string) (*model.ChangeOptions, error)
	availableRoomsFunc    func(ctx context.Context, p model.Principal, bookingID, sharingType string) (*model.ChangeOptions, error)
	propertyRoomTypesFunc func(ctx context.Context, propertyID string) ([]model.RoomTypeConfig, error)
	submitFunc            func(ctx context.Context, p model.Principal, req *model.ConcernRequest) (*model.Concern, error)
	listForUserFunc       func(ctx context.Context, p model.Principal) ([]*model.Concern, error)
	getByIDFunc           func(ctx context.Context, p model.Principal, id string) (*model.Concern, error)
	updateStatusFunc      func(ctx context.Context, p model.Principal, id string, req *model.ConcernStatusUpdate) (*model.Concern, error)
	addNoteFunc           func(ctx context.Context, p model.Principal, id string, req *model.NoteRequest) (*model.Concern, error)
}

func (m *mockConcernService) AvailableBeds(ctx context.Context, p model.Principal, bookingID, sharingType string) (*model.ChangeOptions, error) {
	return m.availableBedsFunc(ctx, p, bookingID, sharingType)
}

func (m *mockConcernService) AvailableRooms(ctx context.Context, p model.Principal, bookingID, sharingType string) (*model.ChangeOptions, error) {
	return m.availableRoomsFunc(ctx, p, bookingID, sharingType)
}

func (m *mockConcernService) PropertyRoomTypes(ctx context.Context, propertyID string) ([]model.RoomTypeConfig, error) {
	return m.propertyRoomTypesFunc(ctx, propertyID)
}

func (m *mockConcernService) Submit(ctx context.Context, p model.Principal, req *model.ConcernRequest) (*model.Concern, error) {
	return m.submitFunc(ctx, p, req)
}

func (m *mockConcernService) ListForUser(ctx context.Context, p model.Principal) ([]*model.Concern, error) {
	return m.listForUserFunc(ctx, p)
}

func (m *mockConcernService) ListForClient(ctx context.Context, p model.Principal) ([]*model.Concern, error) {
	return nil, nil
}

func (m *mockConcernService) GetByID(ctx context.Context, p model.Principal, id string) (*model.Concern, error) {
	return m.getByIDFunc(ctx, p, id)
}

func (m *mockConcernService) UpdateStatus(ctx context.Context, p model.Principal, id string, req *model.ConcernStatusUpdate) (*model.Concern, error) {
	return m.updateStatusFunc(ctx, p, id, req)
}

func (m *mockConcernService) AddNote(ctx context.Context, p model.Principal, id string, req *model.NoteRequest) (*model.Concern, error) {
	return m.addNoteFunc(ctx, p, id, req)
}

var (
	tenant = model.Principal{UserID: "user-1", Role: model.RoleUser}
	owner  = model.Principal{UserID: "owner-1", Role: model.RoleClient, ClientID: "client-1"}
)

func newRouter(svc *mockConcernService) http.Handler {
	router := httprouter.New()
	NewConcernHandler(svc, logger.Discard()).RegisterRoutes(router)
	return middleware.Principal(func(*http.Request) bool { return false }, logger.Discard())(router)
}

func serve(t *testing.T, h http.Handler, method, path, body string, p *model.Principal) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if p != nil {
		req.Header.Set(middleware.UserIDHeader, p.UserID)
		req.Header.Set(middleware.UserRoleHeader, p.Role)
		req.Header.Set(middleware.ClientIDHeader, p.ClientID)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	return rec, decoded
}

func TestSubmit_Created(t *testing.T) {
	var got *model.ConcernRequest
	svc := &mockConcernService{
		submitFunc: func(ctx context.Context, p model.Principal, req *model.ConcernRequest) (*model.Concern, error) {
			got = req
			assert.Equal(t, tenant.UserID, p.UserID)
			return &model.Concern{ID: "65f1c0ffee0000000abcdef1", BookingID: req.BookingID, Type: req.Type, Status: model.ConcernPending}, nil
		},
	}

	rec, body := serve(t, newRouter(svc), http.MethodPost, "/api/v1/concerns",
		`{"type":"bed-change","currentBookingId":"b1","requestedRoom":"201","requestedBed":"Bed B"}`, &tenant)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "CN0ABCDEF1", body["reference"])
	require.NotNil(t, got)
	assert.Equal(t, "b1", got.BookingID)
	assert.Equal(t, model.ConcernBedChange, got.Type)
}

func TestSubmit_MalformedBody(t *testing.T) {
	rec, body := serve(t, newRouter(&mockConcernService{}), http.MethodPost, "/api/v1/concerns", `{`, &tenant)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperrors.CodeInvalidInput, body["code"])
}

func TestSubmit_RequiresPrincipal(t *testing.T) {
	rec, _ := serve(t, newRouter(&mockConcernService{}), http.MethodPost, "/api/v1/concerns", `{}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubmit_BedTaken(t *testing.T) {
	svc := &mockConcernService{
		submitFunc: func(ctx context.Context, p model.Principal, req *model.ConcernRequest) (*model.Concern, error) {
			return nil, apperrors.BedsUnavailable([]string{"double-201-Bed B"})
		},
	}

	rec, body := serve(t, newRouter(svc), http.MethodPost, "/api/v1/concerns",
		`{"type":"bed-change","currentBookingId":"b1","requestedRoom":"201","requestedBed":"Bed B"}`, &tenant)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apperrors.CodeConflict, body["code"])
}

func TestAvailableBeds_PassesRoomType(t *testing.T) {
	svc := &mockConcernService{
		availableBedsFunc: func(ctx context.Context, p model.Principal, bookingID, sharingType string) (*model.ChangeOptions, error) {
			assert.Equal(t, "b1", bookingID)
			assert.Equal(t, "triple", sharingType)
			return &model.ChangeOptions{
				SharingType: sharingType,
				Beds:        []model.BedOption{{Floor: 1, RoomNumber: "102", BedIdentifier: "triple-102-A", Available: true}},
			}, nil
		},
	}

	rec, body := serve(t, newRouter(svc), http.MethodGet, "/api/v1/concerns/available-beds/b1?roomType=triple", "", &tenant)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "triple", body["sharingType"])
	beds, ok := body["availableBeds"].([]any)
	require.True(t, ok, body)
	assert.Len(t, beds, 1)
}

func TestAvailableRooms_GroupedByFloor(t *testing.T) {
	svc := &mockConcernService{
		availableRoomsFunc: func(ctx context.Context, p model.Principal, bookingID, sharingType string) (*model.ChangeOptions, error) {
			bed := model.BedOption{Floor: 2, RoomNumber: "201", BedIdentifier: "double-201-Bed A"}
			return &model.ChangeOptions{SharingType: sharingType, Floors: map[int][]model.BedOption{2: {bed}}}, nil
		},
	}

	rec, body := serve(t, newRouter(svc), http.MethodGet, "/api/v1/concerns/available-rooms/b1?sharingType=double", "", &tenant)

	assert.Equal(t, http.StatusOK, rec.Code)
	floors, ok := body["availableRooms"].(map[string]any)
	require.True(t, ok, body)
	assert.Contains(t, floors, "2")
}

func TestPropertyRoomTypes(t *testing.T) {
	svc := &mockConcernService{
		propertyRoomTypesFunc: func(ctx context.Context, propertyID string) ([]model.RoomTypeConfig, error) {
			assert.Equal(t, "prop-1", propertyID)
			return []model.RoomTypeConfig{{Type: "double", Capacity: 2}}, nil
		},
	}

	rec, body := serve(t, newRouter(svc), http.MethodGet, "/api/v1/concerns/property-room-types/prop-1", "", &tenant)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "prop-1", body["propertyId"])
}

func TestListForUser_EmptyList(t *testing.T) {
	svc := &mockConcernService{
		listForUserFunc: func(ctx context.Context, p model.Principal) ([]*model.Concern, error) {
			return nil, nil
		},
	}

	rec, body := serve(t, newRouter(svc), http.MethodGet, "/api/v1/concerns/user", "", &tenant)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), body["count"])
	assert.Equal(t, []any{}, body["concerns"])
}

func TestUpdateStatus(t *testing.T) {
	svc := &mockConcernService{
		updateStatusFunc: func(ctx context.Context, p model.Principal, id string, req *model.ConcernStatusUpdate) (*model.Concern, error) {
			assert.Equal(t, "c1", id)
			assert.Equal(t, owner.ClientID, p.ClientID)
			assert.Equal(t, model.ConcernApproved, req.Status)
			return &model.Concern{ID: id, Status: req.Status}, nil
		},
	}

	rec, body := serve(t, newRouter(svc), http.MethodPatch, "/api/v1/concerns/id/c1/status", `{"status":"approved"}`, &owner)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Concern status updated successfully", body["message"])
}

func TestUpdateStatus_InvalidTransition(t *testing.T) {
	svc := &mockConcernService{
		updateStatusFunc: func(ctx context.Context, p model.Principal, id string, req *model.ConcernStatusUpdate) (*model.Concern, error) {
			return nil, apperrors.InvalidTransition("Concern is already completed", string(model.ConcernCompleted))
		},
	}

	_, body := serve(t, newRouter(svc), http.MethodPatch, "/api/v1/concerns/id/c1/status", `{"status":"completed"}`, &owner)

	assert.Equal(t, apperrors.CodeInvalidTransition, body["code"])
}

func TestAddNote(t *testing.T) {
	svc := &mockConcernService{
		addNoteFunc: func(ctx context.Context, p model.Principal, id string, req *model.NoteRequest) (*model.Concern, error) {
			return &model.Concern{ID: id, InternalNotes: []model.InternalNote{{Note: req.Note, CreatedBy: p.UserID}}}, nil
		},
	}

	rec, body := serve(t, newRouter(svc), http.MethodPost, "/api/v1/concerns/id/c1/notes", `{"note":"Called tenant"}`, &owner)

	assert.Equal(t, http.StatusOK, rec.Code)
	concern, ok := body["concern"].(map[string]any)
	require.True(t, ok, body)
	assert.Len(t, concern["internalNotes"], 1)
}

func TestGetByID_NotFound(t *testing.T) {
	svc := &mockConcernService{
		getByIDFunc: func(ctx context.Context, p model.Principal, id string) (*model.Concern, error) {
			return nil, apperrors.NotFoundWithID("Concern", id)
		},
	}

	rec, body := serve(t, newRouter(svc), http.MethodGet, "/api/v1/concerns/id/missing", "", &tenant)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperrors.CodeNotFound, body["code"])
}
