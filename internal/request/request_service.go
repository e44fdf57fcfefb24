package request

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"spa-portal/internal/domain"
	"spa-portal/internal/events"
	"spa-portal/internal/messaging/kafka"
	requesterrors "spa-portal/internal/request/errors"
	"spa-portal/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notifier signals department subscribers that the pending set may have
// changed. Fired after a successful commit, never before.
type Notifier interface {
	PublishChange(ctx context.Context, department string)
}

//go:generate mockgen -source=request_service.go -destination=mock/request_service_mock.go -package=mock
type Service interface {
	SubmitLeave(ctx context.Context, actor domain.Principal, req SubmitLeaveRequest) (RequestResponse, error)
	SubmitOvertime(ctx context.Context, actor domain.Principal, req SubmitOvertimeRequest) (RequestResponse, error)
	ListOwn(ctx context.Context, actor domain.Principal) ([]RequestResponse, error)
	ListDepartment(ctx context.Context, actor domain.Principal, status string) ([]RequestResponse, error)
	ListAll(ctx context.Context) ([]RequestResponse, error)
	Approve(ctx context.Context, actor domain.Principal, kind, id string) (RequestResponse, error)
	Reject(ctx context.Context, actor domain.Principal, kind, id string) (RequestResponse, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	outbox   kafka.OutboxRepository
	notifier Notifier
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	notifier Notifier,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("request.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("request.service")
	}
	return &service{db: db, repo: repo, outbox: outboxRepo, notifier: notifier, logger: l}
}

// NormalizeKind maps a route segment or payload value onto a request kind.
func NormalizeKind(kind string) (string, error) {
	switch strings.ToLower(kind) {
	case "leave":
		return KindLeave, nil
	case "overtime":
		return KindOvertime, nil
	}
	return "", requesterrors.ErrUnknownKind
}

func (s *service) SubmitLeave(ctx context.Context, actor domain.Principal, req SubmitLeaveRequest) (RequestResponse, error) {
	s.logger.Debug("submit leave requested",
		zap.String("employee_code", actor.EmployeeCode),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	if actor.EmployeeCode == "" {
		return RequestResponse{}, requesterrors.ErrMissingEmployeeCode
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return RequestResponse{}, requesterrors.ErrInvalidDateFormat
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return RequestResponse{}, requesterrors.ErrInvalidDateFormat
	}

	totalDays := DaysBetween(startDate, endDate)
	if totalDays <= 0 {
		s.logger.Warn("submit leave invalid range",
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return RequestResponse{}, requesterrors.ErrInvalidDateRange
	}

	l := &LeaveRequest{
		ID:             uuid.New(),
		EmployeeName:   actor.Name,
		EmployeeCode:   actor.EmployeeCode,
		Department:     actor.Department,
		LeaveType:      req.LeaveType,
		StartDate:      startDate,
		EndDate:        endDate,
		TotalDays:      totalDays,
		Reason:         req.Reason,
		Status:         StatusPending,
		SubmissionDate: time.Now().UTC(),
	}

	if err := s.repo.CreateLeave(ctx, l); err != nil {
		s.logger.Error("submit leave persist failed", zap.Error(err))
		return RequestResponse{}, err
	}

	s.notifyChange(ctx, l.Department)

	s.logger.Info("submit leave success",
		zap.String("request_id", l.ID.String()),
		zap.String("employee_code", l.EmployeeCode),
		zap.Int("total_days", totalDays),
	)

	return mapLeaveToResponse(*l), nil
}

func (s *service) SubmitOvertime(ctx context.Context, actor domain.Principal, req SubmitOvertimeRequest) (RequestResponse, error) {
	s.logger.Debug("submit overtime requested",
		zap.String("employee_code", actor.EmployeeCode),
		zap.String("start", req.StartDate),
		zap.String("end", req.EndDate),
	)

	if actor.EmployeeCode == "" {
		return RequestResponse{}, requesterrors.ErrMissingEmployeeCode
	}

	start, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		return RequestResponse{}, requesterrors.ErrInvalidDateTimeFormat
	}
	end, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		return RequestResponse{}, requesterrors.ErrInvalidDateTimeFormat
	}

	totalHours := HoursBetween(start, end)
	if totalHours <= 0 {
		s.logger.Warn("submit overtime invalid range",
			zap.String("start", req.StartDate),
			zap.String("end", req.EndDate),
		)
		return RequestResponse{}, requesterrors.ErrInvalidTimeRange
	}

	o := &OvertimeRequest{
		ID:             uuid.New(),
		EmployeeName:   actor.Name,
		EmployeeCode:   actor.EmployeeCode,
		Department:     actor.Department,
		AdjustmentType: req.AdjustmentType,
		StartDate:      start,
		EndDate:        end,
		TotalHours:     totalHours,
		Reason:         req.Reason,
		Status:         StatusPending,
		SubmissionDate: time.Now().UTC(),
	}

	if err := s.repo.CreateOvertime(ctx, o); err != nil {
		s.logger.Error("submit overtime persist failed", zap.Error(err))
		return RequestResponse{}, err
	}

	s.notifyChange(ctx, o.Department)

	s.logger.Info("submit overtime success",
		zap.String("request_id", o.ID.String()),
		zap.String("employee_code", o.EmployeeCode),
		zap.Float64("total_hours", totalHours),
	)

	return mapOvertimeToResponse(*o), nil
}

func (s *service) ListOwn(ctx context.Context, actor domain.Principal) ([]RequestResponse, error) {
	if actor.EmployeeCode == "" {
		return nil, requesterrors.ErrMissingEmployeeCode
	}

	leaves, err := s.repo.FindLeaveByEmployee(ctx, actor.EmployeeCode)
	if err != nil {
		return nil, err
	}
	overtimes, err := s.repo.FindOvertimeByEmployee(ctx, actor.EmployeeCode)
	if err != nil {
		return nil, err
	}

	return mergeBySubmission(leaves, overtimes), nil
}

func (s *service) ListDepartment(ctx context.Context, actor domain.Principal, status string) ([]RequestResponse, error) {
	if status == "" {
		status = StatusPending
	}
	switch status {
	case StatusPending, StatusApproved, StatusRejected:
	default:
		return nil, requesterrors.ErrInvalidStatusFilter
	}

	// Department comes from the principal, never from the caller, so a head
	// can only ever see their own queue.
	leaves, err := s.repo.FindLeaveByDepartment(ctx, actor.Department, status)
	if err != nil {
		return nil, err
	}
	overtimes, err := s.repo.FindOvertimeByDepartment(ctx, actor.Department, status)
	if err != nil {
		return nil, err
	}

	return mergeBySubmission(leaves, overtimes), nil
}

func (s *service) ListAll(ctx context.Context) ([]RequestResponse, error) {
	leaves, err := s.repo.FindAllLeave(ctx)
	if err != nil {
		return nil, err
	}
	overtimes, err := s.repo.FindAllOvertime(ctx)
	if err != nil {
		return nil, err
	}

	return mergeBySubmission(leaves, overtimes), nil
}

func (s *service) Approve(ctx context.Context, actor domain.Principal, kind, id string) (RequestResponse, error) {
	return s.decide(ctx, actor, kind, id, StatusApproved)
}

func (s *service) Reject(ctx context.Context, actor domain.Principal, kind, id string) (RequestResponse, error) {
	return s.decide(ctx, actor, kind, id, StatusRejected)
}

func (s *service) decide(ctx context.Context, actor domain.Principal, kind, id, targetStatus string) (RequestResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("decide request",
		zap.String("request_id", rid),
		zap.String("target_id", id),
		zap.String("kind", kind),
		zap.String("target_status", targetStatus),
	)

	normalized, err := NormalizeKind(kind)
	if err != nil {
		return RequestResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("decide request begin tx failed", zap.Error(err))
		return RequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := time.Now().UTC()
	approver := actor.Name

	var resp RequestResponse
	var department, employeeCode string

	switch normalized {
	case KindLeave:
		l, err := s.repo.FindLeaveByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return RequestResponse{}, requesterrors.ErrRequestNotFound
			}
			return RequestResponse{}, err
		}
		if err := s.checkDecidable(l.Status, l.Department, actor); err != nil {
			return RequestResponse{}, err
		}

		l.Status = targetStatus
		l.ApprovedBy = &approver
		l.ApprovedAt = &now
		if err := qtx.UpdateLeaveDecision(ctx, l); err != nil {
			s.logger.Error("decide leave persist failed", zap.Error(err))
			return RequestResponse{}, err
		}
		resp = mapLeaveToResponse(*l)
		department = l.Department
		employeeCode = l.EmployeeCode

	case KindOvertime:
		o, err := s.repo.FindOvertimeByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return RequestResponse{}, requesterrors.ErrRequestNotFound
			}
			return RequestResponse{}, err
		}
		if err := s.checkDecidable(o.Status, o.Department, actor); err != nil {
			return RequestResponse{}, err
		}

		o.Status = targetStatus
		o.ApprovedBy = &approver
		o.ApprovedAt = &now
		if err := qtx.UpdateOvertimeDecision(ctx, o); err != nil {
			s.logger.Error("decide overtime persist failed", zap.Error(err))
			return RequestResponse{}, err
		}
		resp = mapOvertimeToResponse(*o)
		department = o.Department
		employeeCode = o.EmployeeCode
	}

	if s.outbox != nil {
		event := events.RequestDecidedEvent{
			EventType:    "request_decided",
			RequestID:    rid,
			RecordID:     id,
			Kind:         normalized,
			EmployeeCode: employeeCode,
			Department:   department,
			Status:       targetStatus,
			DecidedBy:    actor.Name,
			OccurredAt:   now,
		}
		payload, err := json.Marshal(event)
		if err != nil {
			return RequestResponse{}, err
		}

		outboxRepo := s.outbox.WithTx(tx)
		if err := outboxRepo.Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     rid,
			AggregateType: "request",
			AggregateID:   id,
			EventType:     event.EventType,
			Topic:         events.RequestDecidedTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			s.logger.Error("decide request outbox persist failed", zap.Error(err))
			return RequestResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("decide request commit failed", zap.Error(err))
		return RequestResponse{}, err
	}

	s.notifyChange(ctx, department)

	s.logger.Info("decide request success",
		zap.String("target_id", id),
		zap.String("kind", normalized),
		zap.String("status", targetStatus),
		zap.String("decided_by", actor.Name),
	)

	return resp, nil
}

// checkDecidable is the guard the repository deliberately does not have: a
// decision is only valid on a Pending record in the approver's own
// department. This keeps the lifecycle monotonic for every caller that goes
// through the service.
func (s *service) checkDecidable(status, department string, actor domain.Principal) error {
	if status != StatusPending {
		return requesterrors.ErrAlreadyDecided
	}
	if department != actor.Department {
		s.logger.Warn("decide request department mismatch",
			zap.String("request_department", department),
			zap.String("actor_department", actor.Department),
		)
		return requesterrors.ErrDepartmentMismatch
	}
	return nil
}

func (s *service) notifyChange(ctx context.Context, department string) {
	if s.notifier != nil {
		s.notifier.PublishChange(ctx, department)
	}
}

func mapLeaveToResponse(l LeaveRequest) RequestResponse {
	days := l.TotalDays
	resp := RequestResponse{
		ID:             l.ID.String(),
		Kind:           KindLeave,
		EmployeeName:   l.EmployeeName,
		EmployeeCode:   l.EmployeeCode,
		Department:     l.Department,
		Category:       l.LeaveType,
		StartDate:      l.StartDate.Format("2006-01-02"),
		EndDate:        l.EndDate.Format("2006-01-02"),
		TotalDays:      &days,
		Reason:         l.Reason,
		Status:         l.Status,
		SubmissionDate: l.SubmissionDate.Format(time.RFC3339),
	}
	resp.ApprovedBy = l.ApprovedBy
	if l.ApprovedAt != nil {
		v := l.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	return resp
}

func mapOvertimeToResponse(o OvertimeRequest) RequestResponse {
	hours := o.TotalHours
	resp := RequestResponse{
		ID:             o.ID.String(),
		Kind:           KindOvertime,
		EmployeeName:   o.EmployeeName,
		EmployeeCode:   o.EmployeeCode,
		Department:     o.Department,
		Category:       o.AdjustmentType,
		StartDate:      o.StartDate.Format(time.RFC3339),
		EndDate:        o.EndDate.Format(time.RFC3339),
		TotalHours:     &hours,
		Reason:         o.Reason,
		Status:         o.Status,
		SubmissionDate: o.SubmissionDate.Format(time.RFC3339),
	}
	resp.ApprovedBy = o.ApprovedBy
	if o.ApprovedAt != nil {
		v := o.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	return resp
}

// mergeBySubmission folds both kinds into one list, newest submission first.
func mergeBySubmission(leaves []LeaveRequest, overtimes []OvertimeRequest) []RequestResponse {
	merged := make([]RequestResponse, 0, len(leaves)+len(overtimes))
	for _, l := range leaves {
		merged = append(merged, mapLeaveToResponse(l))
	}
	for _, o := range overtimes {
		merged = append(merged, mapOvertimeToResponse(o))
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].SubmissionDate > merged[j].SubmissionDate
	})
	return merged
}
