package employee_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"spa-portal/internal/employee"
	employeeerrors "spa-portal/internal/employee/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeEmployeeService struct {
	createFn     func(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error)
	getAllFn     func(ctx context.Context) ([]employee.EmployeeResponse, error)
	getOptionsFn func(ctx context.Context) ([]employee.EmployeeResponse, error)
	getByIDFn    func(ctx context.Context, id string) (employee.EmployeeResponse, error)
	getByEmailFn func(ctx context.Context, email string) (employee.EmployeeResponse, error)
	updateFn     func(ctx context.Context, id string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error)
	deleteFn     func(ctx context.Context, id string) error
}

func (f *fakeEmployeeService) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}
	return employee.EmployeeResponse{}, nil
}

func (f *fakeEmployeeService) GetAll(ctx context.Context) ([]employee.EmployeeResponse, error) {
	if f.getAllFn != nil {
		return f.getAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeEmployeeService) GetOptions(ctx context.Context) ([]employee.EmployeeResponse, error) {
	if f.getOptionsFn != nil {
		return f.getOptionsFn(ctx)
	}
	return nil, nil
}

func (f *fakeEmployeeService) GetByID(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return employee.EmployeeResponse{}, nil
}

func (f *fakeEmployeeService) GetByEmail(ctx context.Context, email string) (employee.EmployeeResponse, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return employee.EmployeeResponse{}, nil
}

func (f *fakeEmployeeService) Update(ctx context.Context, id string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return employee.EmployeeResponse{}, nil
}

func (f *fakeEmployeeService) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type employeeEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func setupEmployeeRouter(svc employee.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := employee.NewHandler(svc)

	r.POST("/employees", h.Create)
	r.GET("/employees", h.GetAll)
	r.GET("/employees/departments", h.GetDepartments)
	r.GET("/employees/:id", h.GetById)
	r.PUT("/employees/:id", h.Update)
	r.DELETE("/employees/:id", h.Delete)
	return r
}

func decodeEmployeeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) employeeEnvelope {
	t.Helper()
	var env employeeEnvelope
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestEmployeeHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &fakeEmployeeService{
			createFn: func(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
				assert.Equal(t, "maria@luocityspa.com", req.Email)
				return employee.EmployeeResponse{
					ID:           "f6f2c1f2-7f27-4f3e-9a6d-0f1f7a3f1b2c",
					FullName:     req.FullName,
					Email:        req.Email,
					Role:         req.Role,
					Department:   req.Department,
					EmployeeCode: "EMP0001",
					HireDate:     "2023-01-15",
				}, nil
			},
		}
		r := setupEmployeeRouter(svc)

		body, _ := json.Marshal(map[string]string{
			"full_name":  "Maria Garcia",
			"email":      "maria@luocityspa.com",
			"role":       "EMPLOYEE",
			"department": "Massage Therapy",
			"hire_date":  "2023-01-15",
		})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/employees", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		env := decodeEmployeeEnvelope(t, rec)
		assert.True(t, env.Ok)

		var resp employee.EmployeeResponse
		assert.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Equal(t, "EMP0001", resp.EmployeeCode)
	})

	t.Run("rejects malformed body before the service runs", func(t *testing.T) {
		svc := &fakeEmployeeService{
			createFn: func(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
				t.Fatal("service must not be called on a validation failure")
				return employee.EmployeeResponse{}, nil
			},
		}
		r := setupEmployeeRouter(svc)

		body, _ := json.Marshal(map[string]string{"email": "not-an-email"})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/employees", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env := decodeEmployeeEnvelope(t, rec)
		assert.False(t, env.Ok)
	})

	t.Run("conflict maps to 409", func(t *testing.T) {
		svc := &fakeEmployeeService{
			createFn: func(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
				return employee.EmployeeResponse{}, employeeerrors.ErrEmailAlreadyExists
			},
		}
		r := setupEmployeeRouter(svc)

		body, _ := json.Marshal(map[string]string{
			"full_name":  "Maria Garcia",
			"email":      "maria@luocityspa.com",
			"role":       "EMPLOYEE",
			"department": "Massage Therapy",
		})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/employees", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
		env := decodeEmployeeEnvelope(t, rec)
		assert.False(t, env.Ok)
		assert.NotNil(t, env.Error)
	})
}

func TestEmployeeHandler_GetDepartments(t *testing.T) {
	r := setupEmployeeRouter(&fakeEmployeeService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/employees/departments", nil)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEmployeeEnvelope(t, rec)

	var departments []string
	assert.NoError(t, json.Unmarshal(env.Data, &departments))
	assert.Len(t, departments, 7)
	assert.Contains(t, departments, "Massage Therapy")
	assert.Contains(t, departments, "Human Resources")
}

func TestEmployeeHandler_GetAll(t *testing.T) {
	listing := make([]employee.EmployeeResponse, 0, 25)
	for i := 0; i < 25; i++ {
		listing = append(listing, employee.EmployeeResponse{
			EmployeeCode: fmt.Sprintf("EMP%04d", i+1),
		})
	}
	svc := &fakeEmployeeService{
		getAllFn: func(ctx context.Context) ([]employee.EmployeeResponse, error) {
			return listing, nil
		},
	}
	r := setupEmployeeRouter(svc)

	t.Run("second page", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/employees?page=2&page_size=20", nil)
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		env := decodeEmployeeEnvelope(t, rec)

		var page []employee.EmployeeResponse
		assert.NoError(t, json.Unmarshal(env.Data, &page))
		assert.Len(t, page, 5)
		assert.Equal(t, "EMP0021", page[0].EmployeeCode)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/employees?page=9&page_size=20", nil)
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		env := decodeEmployeeEnvelope(t, rec)

		var page []employee.EmployeeResponse
		assert.NoError(t, json.Unmarshal(env.Data, &page))
		assert.Empty(t, page)
	})
}

func TestEmployeeHandler_Delete(t *testing.T) {
	t.Run("unknown id maps to 404", func(t *testing.T) {
		svc := &fakeEmployeeService{
			deleteFn: func(ctx context.Context, id string) error {
				return employeeerrors.ErrEmployeeNotFound
			},
		}
		r := setupEmployeeRouter(svc)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/employees/f6f2c1f2-7f27-4f3e-9a6d-0f1f7a3f1b2c", nil)
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
