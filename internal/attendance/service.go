package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/workhq/workplace-bot/internal/sheets"
)

const attendanceRange = "Attendance!A:E"

// Ledger action values, capitalized to match the rows already in the sheet.
const (
	ActionLogin  = "Login"
	ActionLogout = "Logout"
)

// Gateway is the slice of the spreadsheet gateway this service needs.
type Gateway interface {
	Append(ctx context.Context, readRange string, mode sheets.ValueInput, row []interface{}) error
	Read(ctx context.Context, readRange string) ([][]interface{}, error)
}

// Service records login/logout punches and answers day-scoped status queries.
// Rows are [timestamp, name, action, user_id, progress].
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

// Status reports whether the user already punched in or out today (IST day).
type Status struct {
	HasLogin  bool
	HasLogout bool
}

// rowMatchesUser prefers user IDs when both sides have one; otherwise falls
// back to a case-insensitive name match so rows written before IDs were
// recorded still count.
func rowMatchesUser(row []interface{}, name, userID string) bool {
	uid := cellString(row, 3)
	if uid != "" && userID != "" {
		return uid == userID
	}
	return strings.EqualFold(cellString(row, 1), strings.TrimSpace(name))
}

func cellString(row []interface{}, idx int) string {
	if idx >= len(row) || row[idx] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", row[idx]))
}

// TodayStatus scans the attendance tab for this user's punches today,
// comparing calendar days in IST.
func (s *Service) TodayStatus(ctx context.Context, name, userID string) (Status, error) {
	rows, err := s.gateway.Read(ctx, attendanceRange)
	if err != nil {
		return Status{}, err
	}

	today := s.clock().In(sheets.IST)
	var st Status
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		if !rowMatchesUser(row, name, userID) {
			continue
		}
		ts, ok := sheets.ParseCellDate(row[0], s.logger)
		if !ok {
			continue
		}
		tsIST := ts.In(sheets.IST)
		if tsIST.Year() != today.Year() || tsIST.YearDay() != today.YearDay() {
			continue
		}
		switch action := cellString(row, 2); {
		case strings.EqualFold(action, ActionLogin):
			st.HasLogin = true
		case strings.EqualFold(action, ActionLogout):
			st.HasLogout = true
		}
		if st.HasLogin && st.HasLogout {
			break
		}
	}
	return st, nil
}

// RecordLogin appends a login punch. Callers are expected to have checked
// TodayStatus first; the append itself does not enforce ordering.
func (s *Service) RecordLogin(ctx context.Context, name, userID string) error {
	return s.appendPunch(ctx, name, ActionLogin, userID, "")
}

// RecordLogout appends a logout punch with the daily progress summary.
func (s *Service) RecordLogout(ctx context.Context, name, userID, progress string) error {
	return s.appendPunch(ctx, name, ActionLogout, userID, strings.TrimSpace(progress))
}

func (s *Service) appendPunch(ctx context.Context, name, action, userID, progress string) error {
	row := []interface{}{
		sheets.Timestamp(s.clock()),
		name,
		action,
		userID,
		progress,
	}
	if err := s.gateway.Append(ctx, attendanceRange, sheets.UserEntered, row); err != nil {
		return err
	}
	s.logger.Info("attendance recorded", "name", name, "action", action, "user_id", userID)
	return nil
}

// EmployeesThisMonth returns up to limit distinct employee names seen in the
// current IST month, sorted case-insensitively. Used by the leavecount name
// autocomplete.
func (s *Service) EmployeesThisMonth(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 25
	}
	rows, err := s.gateway.Read(ctx, attendanceRange)
	if err != nil {
		return nil, err
	}

	now := s.clock().In(sheets.IST)
	seen := make(map[string]bool)
	var names []string
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		name := cellString(row, 1)
		if name == "" {
			continue
		}
		ts, ok := sheets.ParseCellDate(row[0], s.logger)
		if !ok {
			continue
		}
		tsIST := ts.In(sheets.IST)
		if tsIST.Year() != now.Year() || tsIST.Month() != now.Month() {
			continue
		}
		key := cellString(row, 3)
		if key == "" {
			key = strings.ToLower(name)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, name)
		if len(names) >= limit {
			break
		}
	}

	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names, nil
}
