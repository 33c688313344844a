package payrollrun

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/heyyrintu/hrms-sub003/internal/events"
	"github.com/heyyrintu/hrms-sub003/internal/messaging/kafka"
	payrollrunerrors "github.com/heyyrintu/hrms-sub003/internal/payrollrun/errors"
	"github.com/heyyrintu/hrms-sub003/internal/shared/apperror"
	"github.com/heyyrintu/hrms-sub003/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	EmployeePayslipsKeyPrefix = "payroll:payslips:employee:"
	employeePayslipsCacheTTL  = 5 * time.Minute

	factRetryBackoff = 200 * time.Millisecond
)

// Config tunes the processing fan-out. Zero values fall back to the
// defaults below.
type Config struct {
	// Concurrency bounds the number of employees computed in parallel.
	Concurrency int
	// FactTimeout bounds a single attendance facts fetch.
	FactTimeout time.Duration
	// FactRetries is how many times a failed facts fetch is retried
	// before the employee is recorded as failed.
	FactRetries int
	// StaleProcessingAfter is how long a PROCESSING claim is honoured
	// before another worker may take the run over.
	StaleProcessingAfter time.Duration
}

func (c Config) withDefaults() Config {
	if c.Concurrency <= 0 {
		c.Concurrency = 8
	}
	if c.FactTimeout <= 0 {
		c.FactTimeout = 5 * time.Second
	}
	if c.FactRetries < 0 {
		c.FactRetries = 0
	}
	if c.StaleProcessingAfter <= 0 {
		c.StaleProcessingAfter = 30 * time.Minute
	}
	return c
}

// Providers groups the cross-module inputs the orchestrator pulls per
// employee. All of them are resolved at processing time, never cached
// across runs.
type Providers struct {
	Assignments AssignmentResolver
	Facts       FactsProvider
	OtRates     OtRateProvider
	Directory   EmployeeDirectory
	Numbers     PayslipNumberer
}

//go:generate mockgen -source=payroll_run_service.go -destination=mock/payroll_run_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID, actorID string, req CreateRunRequest) (RunResponse, error)
	GetAll(ctx context.Context, companyID string) ([]RunResponse, error)
	GetByID(ctx context.Context, companyID, id string) (RunSummaryResponse, error)
	Process(ctx context.Context, companyID, actorID, id string, reset bool) (RunResponse, error)
	Approve(ctx context.Context, companyID, actorID, id string, req ApproveRunRequest) (RunResponse, error)
	MarkPaid(ctx context.Context, companyID, actorID, id string) (RunResponse, error)
	Delete(ctx context.Context, companyID, id string) error
	GetPayslips(ctx context.Context, companyID, runID string) ([]PayslipResponse, error)
	GetFailures(ctx context.Context, companyID, runID string) ([]RunFailureResponse, error)
	GetEmployeePayslips(ctx context.Context, companyID, employeeID string) ([]PayslipResponse, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	outbox    kafka.OutboxRepository
	providers Providers
	rdb       *redis.Client
	sf        *singleflight.Group
	cfg       Config
	logger    *zap.Logger
}

func NewService(db *sql.DB, repo Repository, providers Providers, rdb *redis.Client, cfg Config, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, nil, providers, rdb, cfg, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	providers Providers,
	rdb *redis.Client,
	cfg Config,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payrollrun.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payrollrun.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		outbox:    outboxRepo,
		providers: providers,
		rdb:       rdb,
		sf:        &singleflight.Group{},
		cfg:       cfg.withDefaults(),
		logger:    l,
	}
}

func (s *service) Create(
	ctx context.Context,
	companyID, actorID string,
	req CreateRunRequest,
) (RunResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return RunResponse{}, payrollrunerrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return RunResponse{}, payrollrunerrors.ErrInvalidActorID
	}
	if req.Month < 1 || req.Month > 12 || req.Year < 2000 || req.Year > 2100 {
		return RunResponse{}, payrollrunerrors.ErrInvalidPeriod
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create run begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return RunResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	run := &PayrollRun{
		ID:        uuid.New(),
		CompanyID: companyUUID,
		Month:     req.Month,
		Year:      req.Year,
		Status:    StatusDraft,
		Remarks:   req.Remarks,
		CreatedBy: actorUUID,
	}

	if err := qtx.CreateRun(ctx, run); err != nil {
		s.logger.Error("create run persist failed", zap.String("request_id", rid), zap.Error(err))
		return RunResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create run commit failed", zap.String("request_id", rid), zap.Error(err))
		return RunResponse{}, err
	}

	s.logger.Info("create run success",
		zap.String("request_id", rid),
		zap.String("run_id", run.ID.String()),
		zap.Int("month", req.Month),
		zap.Int("year", req.Year),
	)

	return mapRunToResponse(*run), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]RunResponse, error) {
	runs, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	resp := make([]RunResponse, 0, len(runs))
	for _, r := range runs {
		resp = append(resp, mapRunToResponse(r))
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (RunSummaryResponse, error) {
	run, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return RunSummaryResponse{}, mapRepositoryError(err)
	}

	summary := RunSummaryResponse{Run: mapRunToResponse(*run)}
	if run.ErrorCount > 0 {
		failures, err := s.repo.ListFailuresByRun(ctx, companyID, id)
		if err != nil {
			return RunSummaryResponse{}, mapRepositoryError(err)
		}
		summary.Failures = mapFailuresToResponse(failures)
	}
	return summary, nil
}

// runTotals accumulates the aggregate row under a mutex while the
// per-employee goroutines fan out.
type runTotals struct {
	gross      int64
	deductions int64
	net        int64
	processed  int
	failed     int
}

// Process claims the run, computes a payslip per eligible employee with
// a bounded worker pool, and lands the run on COMPUTED. Employees that
// already carry a payslip from a previous attempt are skipped unless
// reset is set, which makes reprocessing after partial failure cheap
// and idempotent.
func (s *service) Process(
	ctx context.Context,
	companyID, actorID, id string,
	reset bool,
) (RunResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	if _, err := uuid.Parse(companyID); err != nil {
		return RunResponse{}, payrollrunerrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(actorID); err != nil {
		return RunResponse{}, payrollrunerrors.ErrInvalidActorID
	}
	if _, err := uuid.Parse(id); err != nil {
		return RunResponse{}, payrollrunerrors.ErrRunNotFound
	}

	run, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return RunResponse{}, mapRepositoryError(err)
	}

	staleBefore := time.Now().UTC().Add(-s.cfg.StaleProcessingAfter)
	claimed, err := s.repo.BeginProcessing(ctx, companyID, id, staleBefore)
	if err != nil {
		s.logger.Error("claim run failed", zap.String("request_id", rid), zap.Error(err))
		return RunResponse{}, err
	}
	if !claimed {
		current, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
		if err != nil {
			return RunResponse{}, mapRepositoryError(err)
		}
		if current.Status == StatusProcessing {
			return RunResponse{}, payrollrunerrors.ErrRunAlreadyProcessing
		}
		return RunResponse{}, payrollrunerrors.ErrInvalidStatusTransition
	}

	s.logger.Info("run claimed for processing",
		zap.String("request_id", rid),
		zap.String("run_id", id),
		zap.Bool("reset", reset),
	)

	if reset {
		if err := s.repo.DeletePayslipsByRun(ctx, companyID, id); err != nil {
			return RunResponse{}, err
		}
	}
	if err := s.repo.ClearFailures(ctx, id); err != nil {
		return RunResponse{}, err
	}

	var totals runTotals
	skip := make(map[string]struct{})
	if !reset {
		existing, err := s.repo.ListPayslipsByRun(ctx, companyID, id)
		if err != nil {
			return RunResponse{}, err
		}
		for _, p := range existing {
			skip[p.EmployeeID.String()] = struct{}{}
			totals.gross += p.GrossPay
			totals.deductions += p.TotalDeductions
			totals.net += p.NetPay
			totals.processed++
		}
	}

	periodEnd := periodEndDate(run.Month, run.Year)
	eligible, err := s.providers.Directory.ListEligible(ctx, companyID, periodEnd)
	if err != nil {
		s.logger.Error("list eligible employees failed", zap.String("request_id", rid), zap.Error(err))
		return RunResponse{}, err
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for _, employeeID := range eligible {
		if _, done := skip[employeeID]; done {
			continue
		}
		employeeID := employeeID
		g.Go(func() error {
			result, err := s.computeAndStore(gctx, run, employeeID, periodEnd)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.recordEmployeeFailure(gctx, run, employeeID, err)
				mu.Lock()
				totals.failed++
				mu.Unlock()
				return nil
			}

			mu.Lock()
			totals.gross += result.GrossPay
			totals.deductions += result.TotalDeductions
			totals.net += result.NetPay
			totals.processed++
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// Cancelled mid-flight. The run stays PROCESSING and the stale
		// claim window lets a later call take it over.
		s.logger.Warn("processing interrupted",
			zap.String("request_id", rid),
			zap.String("run_id", id),
			zap.Error(err),
		)
		return RunResponse{}, err
	}

	patch := map[string]any{
		"total_gross":      totals.gross,
		"total_deductions": totals.deductions,
		"total_net":        totals.net,
		"processed_count":  totals.processed,
		"error_count":      totals.failed,
	}
	computed, err := s.repo.TransitionStatus(ctx, companyID, id, StatusProcessing, StatusComputed, patch)
	if err != nil {
		return RunResponse{}, err
	}
	if !computed {
		// Another worker stole a stale claim while we were computing.
		return RunResponse{}, payrollrunerrors.ErrRunAlreadyProcessing
	}

	s.invalidateEmployeePayslipCaches(ctx, companyID, eligible)
	s.queueLifecycleEvent(ctx, run, events.PayrollRunComputed, actorID, totals)

	s.logger.Info("run computed",
		zap.String("request_id", rid),
		zap.String("run_id", id),
		zap.Int("processed", totals.processed),
		zap.Int("failed", totals.failed),
	)

	fresh, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return RunResponse{}, mapRepositoryError(err)
	}
	return mapRunToResponse(*fresh), nil
}

func (s *service) computeAndStore(
	ctx context.Context,
	run *PayrollRun,
	employeeID string,
	periodEnd time.Time,
) (*ComputeResult, error) {
	companyID := run.CompanyID.String()

	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return nil, payrollrunerrors.ErrInvalidEmployeeID
	}

	assignment, err := s.providers.Assignments.ResolveActive(ctx, companyID, employeeID, periodEnd)
	if err != nil {
		return nil, err
	}

	facts, err := s.monthlyFacts(ctx, companyID, employeeID, run.Month, run.Year)
	if err != nil {
		return nil, err
	}

	var otRate decimal.Decimal
	if facts.ApprovedOtMinutes > 0 {
		otRate, err = s.providers.OtRates.HourlyOtRate(ctx, companyID, employeeID, periodEnd)
		if err != nil {
			return nil, err
		}
	}

	result, err := Compute(ComputeInput{
		Assignment: *assignment,
		Facts:      facts,
		Period:     Period{Month: run.Month, Year: run.Year},
		OtRate:     otRate,
	})
	if err != nil {
		return nil, err
	}

	number, err := s.providers.Numbers.NextPayslipNumber(ctx, companyID)
	if err != nil {
		return nil, err
	}

	payslip := &Payslip{
		ID:              uuid.New(),
		PayrollRunID:    run.ID,
		CompanyID:       run.CompanyID,
		EmployeeID:      employeeUUID,
		PayslipNumber:   number,
		BasePay:         result.BasePay,
		ProRatedBase:    result.ProRatedBase,
		WorkingDays:     result.WorkingDays,
		PresentDays:     result.PresentDays,
		LopDays:         result.LopDays,
		OtMinutes:       result.OtMinutes,
		OtPay:           result.OtPay,
		GrossPay:        result.GrossPay,
		TotalDeductions: result.TotalDeductions,
		NetPay:          result.NetPay,
		NetShortfall:    result.NetShortfall,
	}

	if err := s.repo.SavePayslip(ctx, payslip, buildPayslipLines(payslip, result)); err != nil {
		return nil, err
	}
	return result, nil
}

// monthlyFacts wraps the facts provider with a per-attempt timeout and a
// small linear backoff so a flaky attendance source degrades to a
// per-employee failure instead of stalling the pool.
func (s *service) monthlyFacts(
	ctx context.Context,
	companyID, employeeID string,
	month, year int,
) (AttendanceFacts, error) {
	var lastErr error
	for attempt := 0; attempt <= s.cfg.FactRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return AttendanceFacts{}, ctx.Err()
			case <-time.After(time.Duration(attempt) * factRetryBackoff):
			}
		}

		fctx, cancel := context.WithTimeout(ctx, s.cfg.FactTimeout)
		facts, err := s.providers.Facts.MonthlyFacts(fctx, companyID, employeeID, month, year)
		cancel()
		if err == nil {
			return facts, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return AttendanceFacts{}, ctx.Err()
		}
	}

	return AttendanceFacts{}, apperror.Wrap(
		lastErr,
		payrollrunerrors.ErrFactsUnavailable.Code,
		payrollrunerrors.ErrFactsUnavailable.Message,
		payrollrunerrors.ErrFactsUnavailable.HTTPStatus,
	)
}

func (s *service) recordEmployeeFailure(ctx context.Context, run *PayrollRun, employeeID string, cause error) {
	s.logger.Warn("employee computation failed",
		zap.String("run_id", run.ID.String()),
		zap.String("employee_id", employeeID),
		zap.String("reason", failureReason(cause)),
		zap.Error(cause),
	)

	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return
	}
	failure := &RunFailure{
		ID:           uuid.New(),
		PayrollRunID: run.ID,
		CompanyID:    run.CompanyID,
		EmployeeID:   employeeUUID,
		Reason:       failureReason(cause),
		Detail:       cause.Error(),
	}
	if err := s.repo.RecordFailure(ctx, failure); err != nil {
		s.logger.Error("record employee failure failed",
			zap.String("run_id", run.ID.String()),
			zap.String("employee_id", employeeID),
			zap.Error(err),
		)
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, payrollrunerrors.ErrNoActiveAssignment):
		return "NO_ACTIVE_ASSIGNMENT"
	case errors.Is(err, payrollrunerrors.ErrInvalidFacts):
		return "INVALID_FACTS"
	case errors.Is(err, payrollrunerrors.ErrMissingOtRate):
		return "MISSING_OT_RATE"
	case errors.Is(err, payrollrunerrors.ErrUnknownComponent):
		return "UNKNOWN_COMPONENT"
	case errors.Is(err, payrollrunerrors.ErrFactsUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return "FACTS_UNAVAILABLE"
	default:
		return "INTERNAL"
	}
}

// Approve moves a COMPUTED run to APPROVED. Runs carrying unresolved
// employee errors are rejected unless the caller overrides, and the
// override is stamped into the remarks for the audit trail.
func (s *service) Approve(
	ctx context.Context,
	companyID, actorID, id string,
	req ApproveRunRequest,
) (RunResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return RunResponse{}, payrollrunerrors.ErrInvalidActorID
	}

	run, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return RunResponse{}, mapRepositoryError(err)
	}
	if !CanTransition(run.Status, StatusApproved) {
		return RunResponse{}, payrollrunerrors.ErrInvalidStatusTransition
	}
	if run.ErrorCount > 0 && !req.Override {
		return RunResponse{}, payrollrunerrors.ErrRunHasErrors
	}

	now := time.Now().UTC()
	patch := map[string]any{
		"approved_by": actorUUID,
		"approved_at": now,
	}
	if remarks := approvalRemarks(run, req); remarks != nil {
		patch["remarks"] = *remarks
	}

	ok, err := s.repo.TransitionStatus(ctx, companyID, id, StatusComputed, StatusApproved, patch)
	if err != nil {
		return RunResponse{}, err
	}
	if !ok {
		return RunResponse{}, payrollrunerrors.ErrInvalidStatusTransition
	}

	s.queueLifecycleEvent(ctx, run, events.PayrollRunApproved, actorID, runTotals{
		gross:      run.TotalGross,
		deductions: run.TotalDeductions,
		net:        run.TotalNet,
		processed:  run.ProcessedCount,
		failed:     run.ErrorCount,
	})

	s.logger.Info("run approved",
		zap.String("request_id", rid),
		zap.String("run_id", id),
		zap.Bool("override", req.Override),
	)

	fresh, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return RunResponse{}, mapRepositoryError(err)
	}
	return mapRunToResponse(*fresh), nil
}

func approvalRemarks(run *PayrollRun, req ApproveRunRequest) *string {
	var parts []string
	if run.Remarks != nil && *run.Remarks != "" {
		parts = append(parts, *run.Remarks)
	}
	if req.Remarks != nil && *req.Remarks != "" {
		parts = append(parts, *req.Remarks)
	}
	if req.Override && run.ErrorCount > 0 {
		parts = append(parts, fmt.Sprintf("approved with %d unresolved employee errors", run.ErrorCount))
	}
	if len(parts) == 0 {
		return nil
	}
	joined := parts[0]
	for _, p := range parts[1:] {
		joined += "; " + p
	}
	return &joined
}

func (s *service) MarkPaid(
	ctx context.Context,
	companyID, actorID, id string,
) (RunResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return RunResponse{}, payrollrunerrors.ErrInvalidActorID
	}

	run, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return RunResponse{}, mapRepositoryError(err)
	}
	if !CanTransition(run.Status, StatusPaid) {
		return RunResponse{}, payrollrunerrors.ErrInvalidStatusTransition
	}

	now := time.Now().UTC()
	patch := map[string]any{
		"paid_by": actorUUID,
		"paid_at": now,
	}
	ok, err := s.repo.TransitionStatus(ctx, companyID, id, StatusApproved, StatusPaid, patch)
	if err != nil {
		return RunResponse{}, err
	}
	if !ok {
		return RunResponse{}, payrollrunerrors.ErrInvalidStatusTransition
	}

	s.queueLifecycleEvent(ctx, run, events.PayrollRunPaid, actorID, runTotals{
		gross:      run.TotalGross,
		deductions: run.TotalDeductions,
		net:        run.TotalNet,
		processed:  run.ProcessedCount,
		failed:     run.ErrorCount,
	})

	s.logger.Info("run marked paid",
		zap.String("request_id", rid),
		zap.String("run_id", id),
	)

	fresh, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return RunResponse{}, mapRepositoryError(err)
	}
	return mapRunToResponse(*fresh), nil
}

func (s *service) Delete(ctx context.Context, companyID, id string) error {
	run, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return mapRepositoryError(err)
	}
	if run.Status != StatusDraft {
		return payrollrunerrors.ErrDeleteOnlyDraft
	}

	deleted, err := s.repo.DeleteRun(ctx, companyID, id)
	if err != nil {
		return err
	}
	if !deleted {
		// A concurrent claim moved the run out of DRAFT after the
		// fetch above; the guarded delete refused it.
		return payrollrunerrors.ErrDeleteOnlyDraft
	}
	return nil
}

func (s *service) GetPayslips(ctx context.Context, companyID, runID string) ([]PayslipResponse, error) {
	if _, err := s.repo.FindByIDAndCompany(ctx, companyID, runID); err != nil {
		return nil, mapRepositoryError(err)
	}

	payslips, err := s.repo.ListPayslipsByRun(ctx, companyID, runID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return mapPayslipsToResponse(payslips), nil
}

func (s *service) GetFailures(ctx context.Context, companyID, runID string) ([]RunFailureResponse, error) {
	if _, err := s.repo.FindByIDAndCompany(ctx, companyID, runID); err != nil {
		return nil, mapRepositoryError(err)
	}

	failures, err := s.repo.ListFailuresByRun(ctx, companyID, runID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return mapFailuresToResponse(failures), nil
}

func (s *service) GetEmployeePayslips(ctx context.Context, companyID, employeeID string) ([]PayslipResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return nil, payrollrunerrors.ErrInvalidEmployeeID
	}

	cacheKey := employeePayslipsKey(companyID, employeeID)
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp []PayslipResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		payslips, err := s.repo.ListPayslipsByEmployee(ctx, companyID, employeeID)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := mapPayslipsToResponse(payslips)

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, cacheKey, jsonData, employeePayslipsCacheTTL)
			}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]PayslipResponse), nil
}

func (s *service) invalidateEmployeePayslipCaches(ctx context.Context, companyID string, employeeIDs []string) {
	if s.rdb == nil || len(employeeIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(employeeIDs))
	for _, id := range employeeIDs {
		keys = append(keys, employeePayslipsKey(companyID, id))
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		s.logger.Error("failed to invalidate employee payslip caches",
			zap.Error(err),
			zap.Int("keys", len(keys)),
		)
	}
}

func employeePayslipsKey(companyID, employeeID string) string {
	return EmployeePayslipsKeyPrefix + companyID + ":" + employeeID
}

func (s *service) queueLifecycleEvent(
	ctx context.Context,
	run *PayrollRun,
	eventType, actorID string,
	totals runTotals,
) {
	if s.outbox == nil {
		return
	}
	rid := contextutil.GetRequestID(ctx)

	event := events.PayrollRunLifecycleEvent{
		EventType:       eventType,
		RunID:           run.ID.String(),
		CompanyID:       run.CompanyID.String(),
		Month:           run.Month,
		Year:            run.Year,
		ProcessedCount:  totals.processed,
		ErrorCount:      totals.failed,
		TotalGross:      totals.gross,
		TotalDeductions: totals.deductions,
		TotalNet:        totals.net,
		ActorID:         actorID,
		OccurredAt:      time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal lifecycle event failed", zap.String("request_id", rid), zap.Error(err))
		return
	}

	if err := s.outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "payroll_run",
		AggregateID:   run.ID.String(),
		EventType:     eventType,
		Topic:         events.PayrollRunLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("queue lifecycle event failed",
			zap.String("request_id", rid),
			zap.String("run_id", run.ID.String()),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("lifecycle event queued",
		zap.String("run_id", run.ID.String()),
		zap.String("event_type", eventType),
	)
}

// periodEndDate is the last day of the run's month, the date on which
// salary assignments are resolved.
func periodEndDate(month, year int) time.Time {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC)
}

func buildPayslipLines(p *Payslip, result *ComputeResult) []PayslipLine {
	lines := make([]PayslipLine, 0, len(result.Earnings)+len(result.Deductions))
	position := 0
	appendLine := func(lr LineResult) {
		lines = append(lines, PayslipLine{
			ID:            uuid.New(),
			PayslipID:     p.ID,
			CompanyID:     p.CompanyID,
			Name:          lr.Spec.Name,
			ComponentType: lr.Spec.ComponentType,
			CalcType:      lr.Spec.CalcType,
			Value:         lr.Spec.Value,
			Amount:        lr.Amount,
			Position:      position,
		})
		position++
	}
	for _, lr := range result.Earnings {
		appendLine(lr)
	}
	for _, lr := range result.Deductions {
		appendLine(lr)
	}
	return lines
}

func mapRunToResponse(run PayrollRun) RunResponse {
	resp := RunResponse{
		ID:              run.ID.String(),
		CompanyID:       run.CompanyID.String(),
		Month:           run.Month,
		Year:            run.Year,
		Status:          run.Status,
		TotalGross:      run.TotalGross,
		TotalDeductions: run.TotalDeductions,
		TotalNet:        run.TotalNet,
		ProcessedCount:  run.ProcessedCount,
		ErrorCount:      run.ErrorCount,
		Remarks:         run.Remarks,
		CreatedBy:       run.CreatedBy.String(),
	}
	if run.ApprovedBy != nil {
		v := run.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if run.ApprovedAt != nil {
		v := run.ApprovedAt.UTC().Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	if run.PaidBy != nil {
		v := run.PaidBy.String()
		resp.PaidBy = &v
	}
	if run.PaidAt != nil {
		v := run.PaidAt.UTC().Format(time.RFC3339)
		resp.PaidAt = &v
	}
	return resp
}

func mapPayslipsToResponse(payslips []Payslip) []PayslipResponse {
	resp := make([]PayslipResponse, 0, len(payslips))
	for _, p := range payslips {
		resp = append(resp, mapPayslipToResponse(p))
	}
	return resp
}

func mapPayslipToResponse(p Payslip) PayslipResponse {
	resp := PayslipResponse{
		ID:              p.ID.String(),
		PayrollRunID:    p.PayrollRunID.String(),
		EmployeeID:      p.EmployeeID.String(),
		PayslipNumber:   p.PayslipNumber,
		BasePay:         p.BasePay,
		ProRatedBase:    p.ProRatedBase,
		WorkingDays:     p.WorkingDays,
		PresentDays:     p.PresentDays,
		LopDays:         p.LopDays,
		OtMinutes:       p.OtMinutes,
		OtPay:           p.OtPay,
		GrossPay:        p.GrossPay,
		TotalDeductions: p.TotalDeductions,
		NetPay:          p.NetPay,
		NetShortfall:    p.NetShortfall,
	}
	for _, line := range p.Lines {
		lr := PayslipLineResponse{
			Name:          line.Name,
			ComponentType: line.ComponentType,
			CalcType:      line.CalcType,
			Value:         line.Value.String(),
			Amount:        line.Amount,
		}
		switch line.ComponentType {
		case ComponentDeduction:
			resp.Deductions = append(resp.Deductions, lr)
		default:
			resp.Earnings = append(resp.Earnings, lr)
		}
	}
	return resp
}

func mapFailuresToResponse(failures []RunFailure) []RunFailureResponse {
	resp := make([]RunFailureResponse, 0, len(failures))
	for _, f := range failures {
		resp = append(resp, RunFailureResponse{
			EmployeeID: f.EmployeeID.String(),
			Reason:     f.Reason,
			Detail:     f.Detail,
		})
	}
	return resp
}
