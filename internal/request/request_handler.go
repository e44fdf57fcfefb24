package request

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"spa-portal/internal/messaging/kafka/consumer"
	"spa-portal/internal/middleware"
	"spa-portal/internal/shared/apperror"
	"spa-portal/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	watcher *Watcher
	rdb     *redis.Client
	logger  *zap.Logger
}

func NewHandler(service Service, watcher *Watcher, rdb *redis.Client, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("request.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("request.handler")
	}
	return &Handler{service: service, watcher: watcher, rdb: rdb, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("request action failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) SubmitLeave(c *gin.Context) {
	actor, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "missing session principal", nil)
		return
	}

	var req SubmitLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http submit leave validation failed", zap.Error(err))
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}

	resp, err := h.service.SubmitLeave(c.Request.Context(), actor, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.finishIdempotency(c, resp)
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) SubmitOvertime(c *gin.Context) {
	actor, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "missing session principal", nil)
		return
	}

	var req SubmitOvertimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http submit overtime validation failed", zap.Error(err))
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}

	resp, err := h.service.SubmitOvertime(c.Request.Context(), actor, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.finishIdempotency(c, resp)
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) ListOwn(c *gin.Context) {
	actor, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "missing session principal", nil)
		return
	}

	resp, err := h.service.ListOwn(c.Request.Context(), actor)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ListDepartment(c *gin.Context) {
	actor, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "missing session principal", nil)
		return
	}

	resp, err := h.service.ListDepartment(c.Request.Context(), actor, c.Query("status"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ListAll(c *gin.Context) {
	resp, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if pageSize < 1 {
		pageSize = 20
	}

	total := int64(len(resp))
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(resp) {
		start = len(resp)
	}
	if end > len(resp) {
		end = len(resp)
	}

	meta := response.NewPaginationMeta(total, page, pageSize)
	response.Success(c, http.StatusOK, resp[start:end], &meta)
}

func (h *Handler) Approve(c *gin.Context) {
	actor, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "missing session principal", nil)
		return
	}

	resp, err := h.service.Approve(c.Request.Context(), actor, c.Param("kind"), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Reject(c *gin.Context) {
	actor, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "missing session principal", nil)
		return
	}

	resp, err := h.service.Reject(c.Request.Context(), actor, c.Param("kind"), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

// Notifications returns the caller's most recent decision notifications,
// newest first, as stored by the decision consumer.
func (h *Handler) Notifications(c *gin.Context) {
	actor, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "missing session principal", nil)
		return
	}
	if h.rdb == nil {
		response.Success(c, http.StatusOK, []json.RawMessage{}, nil)
		return
	}

	items, err := h.rdb.LRange(c.Request.Context(), consumer.NotificationListKey(actor.EmployeeCode), 0, 49).Result()
	if err != nil {
		h.logger.Error("read notifications failed",
			zap.String("employee_code", actor.EmployeeCode),
			zap.Error(err),
		)
		response.Error(c, http.StatusServiceUnavailable, apperror.CodeServiceUnavailable, "notification store unavailable", nil)
		return
	}

	payload := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		payload = append(payload, json.RawMessage(item))
	}
	response.Success(c, http.StatusOK, payload, nil)
}

// Feed streams the department's pending set over SSE: one event with the full
// snapshot on connect, then one per change, until the client disconnects.
func (h *Handler) Feed(c *gin.Context) {
	actor, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "missing session principal", nil)
		return
	}

	ctx := c.Request.Context()
	snapshots := make(chan []RequestResponse, 1)

	sub, err := h.watcher.Subscribe(ctx, actor.Department, func(snapshot []RequestResponse) {
		// Keep only the latest snapshot for slow clients.
		for {
			select {
			case snapshots <- snapshot:
				return
			default:
				select {
				case <-snapshots:
				default:
				}
			}
		}
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	defer sub.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case snapshot := <-snapshots:
			c.SSEvent("requests", snapshot)
			return true
		}
	})
}

// finishIdempotency caches a successful submission under the Idempotency-Key
// reservation, and releases the in-flight lock.
func (h *Handler) finishIdempotency(c *gin.Context, data any) {
	if h.rdb == nil {
		return
	}

	cacheKey := c.GetString(middleware.IdempotencyCacheKey)
	lockKey := c.GetString(middleware.IdempotencyLockKey)
	if cacheKey == "" {
		return
	}

	payload, err := json.Marshal(data)
	if err != nil {
		h.logger.Error("idempotency cache marshal failed", zap.Error(err))
		return
	}
	if err := h.rdb.Set(c.Request.Context(), cacheKey, payload, 24*time.Hour).Err(); err != nil {
		h.logger.Error("idempotency cache store failed", zap.Error(err))
	}
	if lockKey != "" {
		if err := h.rdb.Del(c.Request.Context(), lockKey).Err(); err != nil {
			h.logger.Error("idempotency lock release failed", zap.Error(err))
		}
	}
}
