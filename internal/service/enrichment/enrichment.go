package enrichment

import (
	"context"
	"time"

	"github.com/relevohq/relevo/internal/core"
	"github.com/relevohq/relevo/pkg/log"
	"golang.org/x/sync/errgroup"
)

// HistoryProvider supplies the interview-history digest for an employee.
type HistoryProvider interface {
	HistorySummary(ctx context.Context, employeeID string) (string, error)
}

// Service aggregates everything the interview agent needs to know about an
// employee before asking questions. Availability beats completeness: any
// failed fetch degrades to partial context instead of failing the interview.
type Service struct {
	directory    core.Directory
	history      HistoryProvider
	maxProcesses int
	timeout      time.Duration
	enabled      bool
}

type Config struct {
	// MaxProcesses caps the process list to bound prompt size.
	MaxProcesses int
	// Timeout bounds the whole aggregate: per-call timeout plus one retry.
	Timeout time.Duration
	// Enabled=false short-circuits to the minimal stub context.
	Enabled bool
}

func NewService(directory core.Directory, history HistoryProvider, cfg Config) *Service {
	if cfg.MaxProcesses <= 0 {
		cfg.MaxProcesses = 20
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Service{
		directory:    directory,
		history:      history,
		maxProcesses: cfg.MaxProcesses,
		timeout:      cfg.Timeout,
		enabled:      cfg.Enabled,
	}
}

// GetFullInterviewContext fetches employee profile and interview history in
// parallel, then the organization's process list (which needs the employee's
// org id first). The result is owned by the calling turn and discarded after.
func (s *Service) GetFullInterviewContext(ctx context.Context, employeeID string) core.InterviewContextData {
	logger := log.FromCtx(ctx)
	started := time.Now()

	if !s.enabled {
		return stubContext(employeeID)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		employee core.Employee
		summary  string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		emp, err := s.directory.GetEmployee(gctx, employeeID)
		if err != nil {
			logger.Warn().Err(err).Str("employee_id", employeeID).
				Msg("employee fetch failed, using stub context")
			return nil
		}
		employee = emp
		return nil
	})
	g.Go(func() error {
		sum, err := s.history.HistorySummary(gctx, employeeID)
		if err != nil {
			logger.Warn().Err(err).Str("employee_id", employeeID).
				Msg("history fetch failed, continuing without it")
			return nil
		}
		summary = sum
		return nil
	})
	// Both branches swallow their errors, so Wait only reports ctx expiry.
	_ = g.Wait()

	if employee.ID == "" {
		stub := stubContext(employeeID)
		stub.HistorySummary = summary
		return stub
	}

	data := core.InterviewContextData{
		Employee:         employee,
		HistorySummary:   summary,
		ContextTimestamp: time.Now().UTC(),
	}

	if employee.OrganizationID != "" {
		procs, err := s.directory.GetOrganizationProcesses(ctx, employee.OrganizationID, s.maxProcesses)
		if err != nil {
			logger.Warn().Err(err).Str("organization_id", employee.OrganizationID).
				Msg("process list fetch failed, continuing without it")
		} else {
			data.OrganizationProcesses = procs
		}
	}

	logger.Debug().
		Dur("elapsed", time.Since(started)).
		Int("processes", len(data.OrganizationProcesses)).
		Bool("has_history", data.HistorySummary != "").
		Msg("interview context assembled")
	return data
}

// stubContext is the minimal fallback when the directory is unreachable or
// enrichment is disabled: placeholder name, no roles, no process list.
func stubContext(employeeID string) core.InterviewContextData {
	return core.InterviewContextData{
		Employee: core.Employee{
			ID:   employeeID,
			Name: "colaborador",
		},
		ContextTimestamp: time.Now().UTC(),
	}
}
