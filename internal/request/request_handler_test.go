package request_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"spa-portal/internal/domain"
	"spa-portal/internal/middleware"
	"spa-portal/internal/request"
	requesterrors "spa-portal/internal/request/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeRequestService struct {
	submitLeaveFn    func(ctx context.Context, actor domain.Principal, req request.SubmitLeaveRequest) (request.RequestResponse, error)
	submitOvertimeFn func(ctx context.Context, actor domain.Principal, req request.SubmitOvertimeRequest) (request.RequestResponse, error)
	listOwnFn        func(ctx context.Context, actor domain.Principal) ([]request.RequestResponse, error)
	listDepartmentFn func(ctx context.Context, actor domain.Principal, status string) ([]request.RequestResponse, error)
	listAllFn        func(ctx context.Context) ([]request.RequestResponse, error)
	approveFn        func(ctx context.Context, actor domain.Principal, kind, id string) (request.RequestResponse, error)
	rejectFn         func(ctx context.Context, actor domain.Principal, kind, id string) (request.RequestResponse, error)
}

func (f *fakeRequestService) SubmitLeave(ctx context.Context, actor domain.Principal, req request.SubmitLeaveRequest) (request.RequestResponse, error) {
	if f.submitLeaveFn != nil {
		return f.submitLeaveFn(ctx, actor, req)
	}
	return request.RequestResponse{}, nil
}

func (f *fakeRequestService) SubmitOvertime(ctx context.Context, actor domain.Principal, req request.SubmitOvertimeRequest) (request.RequestResponse, error) {
	if f.submitOvertimeFn != nil {
		return f.submitOvertimeFn(ctx, actor, req)
	}
	return request.RequestResponse{}, nil
}

func (f *fakeRequestService) ListOwn(ctx context.Context, actor domain.Principal) ([]request.RequestResponse, error) {
	if f.listOwnFn != nil {
		return f.listOwnFn(ctx, actor)
	}
	return nil, nil
}

func (f *fakeRequestService) ListDepartment(ctx context.Context, actor domain.Principal, status string) ([]request.RequestResponse, error) {
	if f.listDepartmentFn != nil {
		return f.listDepartmentFn(ctx, actor, status)
	}
	return nil, nil
}

func (f *fakeRequestService) ListAll(ctx context.Context) ([]request.RequestResponse, error) {
	if f.listAllFn != nil {
		return f.listAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeRequestService) Approve(ctx context.Context, actor domain.Principal, kind, id string) (request.RequestResponse, error) {
	if f.approveFn != nil {
		return f.approveFn(ctx, actor, kind, id)
	}
	return request.RequestResponse{}, nil
}

func (f *fakeRequestService) Reject(ctx context.Context, actor domain.Principal, kind, id string) (request.RequestResponse, error) {
	if f.rejectFn != nil {
		return f.rejectFn(ctx, actor, kind, id)
	}
	return request.RequestResponse{}, nil
}

type requestEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func setupRequestRouter(svc request.Service, principal *domain.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	handler := request.NewHandler(svc, nil, nil)
	if principal != nil {
		r.Use(func(c *gin.Context) {
			middleware.SetPrincipal(c, *principal)
			c.Next()
		})
	}

	r.POST("/requests/leave", handler.SubmitLeave)
	r.GET("/requests/department", handler.ListDepartment)
	r.POST("/requests/:kind/:id/approve", handler.Approve)
	return r
}

func TestRequestHandler_SubmitLeave(t *testing.T) {
	actor := testActor(domain.RoleEmployee, "Massage Therapy")

	t.Run("success", func(t *testing.T) {
		svc := &fakeRequestService{
			submitLeaveFn: func(ctx context.Context, got domain.Principal, req request.SubmitLeaveRequest) (request.RequestResponse, error) {
				assert.Equal(t, actor.EmployeeCode, got.EmployeeCode)
				assert.Equal(t, "Annual Leave", req.LeaveType)
				days := 3
				return request.RequestResponse{
					Kind:      request.KindLeave,
					Status:    request.StatusPending,
					TotalDays: &days,
				}, nil
			},
		}
		router := setupRequestRouter(svc, &actor)

		body, _ := json.Marshal(request.SubmitLeaveRequest{
			LeaveType: "Annual Leave",
			StartDate: "2024-01-01",
			EndDate:   "2024-01-03",
			Reason:    "Family trip",
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/requests/leave", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		var env requestEnvelope
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.True(t, env.Ok)
	})

	t.Run("missing principal", func(t *testing.T) {
		router := setupRequestRouter(&fakeRequestService{}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/requests/leave", bytes.NewReader([]byte(`{}`)))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("validation failure", func(t *testing.T) {
		router := setupRequestRouter(&fakeRequestService{}, &actor)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/requests/leave", bytes.NewReader([]byte(`{"leave_type":"Annual Leave"}`)))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var env requestEnvelope
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.False(t, env.Ok)
	})
}

func TestRequestHandler_ListDepartment(t *testing.T) {
	head := testActor(domain.RoleHead, "Massage Therapy")

	svc := &fakeRequestService{
		listDepartmentFn: func(ctx context.Context, actor domain.Principal, status string) ([]request.RequestResponse, error) {
			assert.Equal(t, "Massage Therapy", actor.Department)
			assert.Equal(t, "Approved", status)
			return []request.RequestResponse{{Kind: request.KindLeave, Status: request.StatusApproved}}, nil
		},
	}
	router := setupRequestRouter(svc, &head)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/requests/department?status=Approved", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestHandler_Approve(t *testing.T) {
	head := testActor(domain.RoleHead, "Massage Therapy")

	t.Run("already decided maps to conflict", func(t *testing.T) {
		svc := &fakeRequestService{
			approveFn: func(ctx context.Context, actor domain.Principal, kind, id string) (request.RequestResponse, error) {
				return request.RequestResponse{}, requesterrors.ErrAlreadyDecided
			},
		}
		router := setupRequestRouter(svc, &head)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/requests/leave/abc/approve", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		var env requestEnvelope
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, "INVALID_STATE", env.Error.Code)
	})

	t.Run("success passes kind and id through", func(t *testing.T) {
		svc := &fakeRequestService{
			approveFn: func(ctx context.Context, actor domain.Principal, kind, id string) (request.RequestResponse, error) {
				assert.Equal(t, "leave", kind)
				assert.Equal(t, "abc", id)
				return request.RequestResponse{Status: request.StatusApproved}, nil
			},
		}
		router := setupRequestRouter(svc, &head)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/requests/leave/abc/approve", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
