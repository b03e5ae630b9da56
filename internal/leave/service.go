package leave

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/workhq/workplace-bot/internal"
	"github.com/workhq/workplace-bot/internal/sheets"
)

const (
	leaveRequestsRange  = "'Leave Requests'!A:G"
	leaveDecisionsRange = "'Leave Decisions'!A:H"
	wfhRequestsRange    = "'WFH Requests'!A:E"
	wfhDecisionsRange   = "'WFH Decisions'!A:G"
)

const (
	DecisionApproved = "Approved"
	DecisionRejected = "Rejected"
)

const DateLayout = "2006-01-02"

type Gateway interface {
	Append(ctx context.Context, readRange string, mode sheets.ValueInput, row []interface{}) error
	Read(ctx context.Context, readRange string) ([][]interface{}, error)
}

// Service manages leave and work-from-home requests and their decisions.
// Every request row carries a generated ID so a decision can be resolved
// without re-parsing the approval card.
type Service struct {
	gateway Gateway
	logger  *slog.Logger
	clock   func() time.Time
}

func NewService(gateway Gateway, logger *slog.Logger, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{gateway: gateway, logger: logger, clock: clock}
}

// Request is a stored leave request.
// Row layout: [timestamp, id, name, from, to, days, reason].
type Request struct {
	ID     string
	Name   string
	From   string
	To     string
	Days   int
	Reason string
}

// WFHRequest is a stored work-from-home request.
// Row layout: [timestamp, id, name, date, reason].
type WFHRequest struct {
	ID     string
	Name   string
	Date   string
	Reason string
}

// DaysBetween counts calendar days in the inclusive range from..to. Both
// dates must be YYYY-MM-DD and from must not be after to.
func DaysBetween(from, to string) (int, error) {
	start, err := time.Parse(DateLayout, from)
	if err != nil {
		return 0, apperrors.NewValidationError(fmt.Sprintf("invalid from date %q, expected YYYY-MM-DD", from), apperrors.ErrCodeInvalidDate)
	}
	end, err := time.Parse(DateLayout, to)
	if err != nil {
		return 0, apperrors.NewValidationError(fmt.Sprintf("invalid to date %q, expected YYYY-MM-DD", to), apperrors.ErrCodeInvalidDate)
	}
	if end.Before(start) {
		return 0, apperrors.NewValidationError("to date is before from date", apperrors.ErrCodeInvalidDays)
	}
	return int(end.Sub(start).Hours()/24) + 1, nil
}

// SubmitLeave validates the range, computes the day count and stores the
// request with a fresh ID.
func (s *Service) SubmitLeave(ctx context.Context, name, from, to, reason string) (Request, error) {
	days, err := DaysBetween(from, to)
	if err != nil {
		return Request{}, err
	}
	req := Request{
		ID:     uuid.New().String(),
		Name:   name,
		From:   from,
		To:     to,
		Days:   days,
		Reason: strings.TrimSpace(reason),
	}
	row := []interface{}{sheets.Timestamp(s.clock()), req.ID, req.Name, req.From, req.To, req.Days, req.Reason}
	if err := s.gateway.Append(ctx, leaveRequestsRange, sheets.Raw, row); err != nil {
		return Request{}, err
	}
	s.logger.Info("leave request stored", "id", req.ID, "name", name, "from", from, "to", to, "days", days)
	return req, nil
}

// FindLeaveRequest looks a stored request up by ID. Returns false when no row
// matches, which callers treat as a signal to fall back to card parsing.
func (s *Service) FindLeaveRequest(ctx context.Context, id string) (Request, bool, error) {
	if id == "" {
		return Request{}, false, nil
	}
	rows, err := s.gateway.Read(ctx, leaveRequestsRange)
	if err != nil {
		return Request{}, false, err
	}
	for _, row := range rows {
		if len(row) < 6 || cellString(row, 1) != id {
			continue
		}
		days := 0
		fmt.Sscanf(cellString(row, 5), "%d", &days)
		return Request{
			ID:     id,
			Name:   cellString(row, 2),
			From:   cellString(row, 3),
			To:     cellString(row, 4),
			Days:   days,
			Reason: cellString(row, 6),
		}, true, nil
	}
	return Request{}, false, nil
}

// RecordLeaveDecision appends the decision row. A rejection note is folded
// into the stored reason so the decisions tab stays eight columns.
func (s *Service) RecordLeaveDecision(ctx context.Context, req Request, decision, reviewer, note string) error {
	reason := req.Reason
	if note != "" {
		reason = reason + " | Rejection Note: " + note
	}
	row := []interface{}{
		sheets.Timestamp(s.clock()), req.Name, req.From, req.To, reason, decision, reviewer, req.Days,
	}
	if err := s.gateway.Append(ctx, leaveDecisionsRange, sheets.UserEntered, row); err != nil {
		return err
	}
	s.logger.Info("leave decision recorded",
		"name", req.Name, "decision", decision, "reviewer", reviewer)
	return nil
}

// SubmitWFH stores a work-from-home request for a single date.
func (s *Service) SubmitWFH(ctx context.Context, name, date, reason string) (WFHRequest, error) {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return WFHRequest{}, apperrors.NewValidationError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date), apperrors.ErrCodeInvalidDate)
	}
	req := WFHRequest{
		ID:     uuid.New().String(),
		Name:   name,
		Date:   date,
		Reason: strings.TrimSpace(reason),
	}
	row := []interface{}{sheets.Timestamp(s.clock()), req.ID, req.Name, req.Date, req.Reason}
	if err := s.gateway.Append(ctx, wfhRequestsRange, sheets.UserEntered, row); err != nil {
		return WFHRequest{}, err
	}
	s.logger.Info("wfh request stored", "id", req.ID, "name", name, "date", date)
	return req, nil
}

func (s *Service) FindWFHRequest(ctx context.Context, id string) (WFHRequest, bool, error) {
	if id == "" {
		return WFHRequest{}, false, nil
	}
	rows, err := s.gateway.Read(ctx, wfhRequestsRange)
	if err != nil {
		return WFHRequest{}, false, err
	}
	for _, row := range rows {
		if len(row) < 4 || cellString(row, 1) != id {
			continue
		}
		return WFHRequest{
			ID:     id,
			Name:   cellString(row, 2),
			Date:   cellString(row, 3),
			Reason: cellString(row, 4),
		}, true, nil
	}
	return WFHRequest{}, false, nil
}

func (s *Service) RecordWFHDecision(ctx context.Context, req WFHRequest, decision, reviewer, note string) error {
	row := []interface{}{
		sheets.Timestamp(s.clock()), req.Name, req.Date, req.Reason, decision, reviewer, note,
	}
	if err := s.gateway.Append(ctx, wfhDecisionsRange, sheets.Raw, row); err != nil {
		return err
	}
	s.logger.Info("wfh decision recorded",
		"name", req.Name, "decision", decision, "reviewer", reviewer)
	return nil
}

// MonthLeave is one approved leave overlapping the queried month.
type MonthLeave struct {
	From        time.Time
	To          time.Time
	OverlapDays int
}

// ApprovedThisMonth counts the named employee's approved leave requests that
// overlap the current IST month and the total days of overlap.
func (s *Service) ApprovedThisMonth(ctx context.Context, name string) (int, int, []MonthLeave, error) {
	rows, err := s.gateway.Read(ctx, leaveDecisionsRange)
	if err != nil {
		return 0, 0, nil, err
	}
	if len(rows) == 0 {
		return 0, 0, nil, nil
	}

	start := 0
	if isDecisionsHeader(rows[0]) {
		start = 1
	}

	monthStart, monthEnd := s.monthBounds()
	var (
		count, totalDays int
		details          []MonthLeave
	)
	for _, row := range rows[start:] {
		if len(row) < 6 {
			continue
		}
		if !strings.EqualFold(cellString(row, 1), strings.TrimSpace(name)) {
			continue
		}
		if !strings.EqualFold(cellString(row, 5), DecisionApproved) {
			continue
		}
		from, okF := sheets.ParseCellDate(row[2], s.logger)
		to, okT := sheets.ParseCellDate(row[3], s.logger)
		if !okF || !okT {
			continue
		}
		from, to = dateOnly(from), dateOnly(to)
		if from.After(to) {
			from, to = to, from
		}
		overlap := overlapDays(from, to, monthStart, monthEnd)
		if overlap <= 0 {
			continue
		}
		count++
		totalDays += overlap
		details = append(details, MonthLeave{From: from, To: to, OverlapDays: overlap})
	}
	return count, totalDays, details, nil
}

func isDecisionsHeader(row []interface{}) bool {
	name := strings.ToLower(cellString(row, 1))
	decision := strings.ToLower(cellString(row, 5))
	return strings.Contains(name, "name") || strings.Contains(decision, "decision")
}

func (s *Service) monthBounds() (time.Time, time.Time) {
	now := s.clock().In(sheets.IST)
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func overlapDays(aFrom, aTo, bFrom, bTo time.Time) int {
	lo, hi := aFrom, aTo
	if bFrom.After(lo) {
		lo = bFrom
	}
	if bTo.Before(hi) {
		hi = bTo
	}
	if lo.After(hi) {
		return 0
	}
	return int(hi.Sub(lo).Hours()/24) + 1
}

func cellString(row []interface{}, idx int) string {
	if idx >= len(row) || row[idx] == nil {
		return ""
	}
	switch v := row[idx].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}
