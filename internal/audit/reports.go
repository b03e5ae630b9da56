package audit

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	admin "google.golang.org/api/admin/reports/v1"
	"google.golang.org/api/option"

	apperrors "github.com/workhq/workplace-bot/internal"
)

// DefaultWindowHours is how far back attendance is collected when the caller
// doesn't say.
const DefaultWindowHours = 72

const pageSize = 1000

var (
	meetLinkRe = regexp.MustCompile(`(?i)^(?:https?://)?meet\.google\.com/([a-z]{3}-[a-z]{4}-[a-z]{3})(?:\?.*)?$`)
	meetCodeRe = regexp.MustCompile(`(?i)^[a-z]{3}-[a-z]{4}-[a-z]{3}$`)
)

// ExtractMeetCode normalizes a full Meet link or a bare meeting code to the
// lowercase abc-defg-hij form. Returns empty when the input is neither.
func ExtractMeetCode(s string) string {
	s = strings.TrimSpace(s)
	if m := meetLinkRe.FindStringSubmatch(s); m != nil {
		return strings.ToLower(m[1])
	}
	if meetCodeRe.MatchString(s) {
		return strings.ToLower(s)
	}
	return ""
}

// Client reads Google Meet attendance out of the Admin SDK Reports API.
// The service account must have domain-wide delegation and impersonate a
// Workspace admin with Reports access.
type Client struct {
	svc    *admin.Service
	logger *slog.Logger
	clock  func() time.Time
}

func NewClient(ctx context.Context, credentialsJSON []byte, adminSubject string, logger *slog.Logger) (*Client, error) {
	if adminSubject == "" {
		return nil, fmt.Errorf("admin subject is empty")
	}
	cfg, err := google.JWTConfigFromJSON(credentialsJSON, admin.AdminReportsAuditReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse reports credentials: %w", err)
	}
	cfg.Subject = adminSubject
	svc, err := admin.NewService(ctx, option.WithTokenSource(cfg.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create reports service: %w", err)
	}
	return &Client{svc: svc, logger: logger, clock: time.Now}, nil
}

// MeetAttendance returns the sorted unique participant and organizer emails
// seen for the meeting code within the last hoursBack hours. The server-side
// meeting_code filter is tried first; tenants that reject it fall back to a
// window scan filtered client-side.
func (c *Client) MeetAttendance(ctx context.Context, code string, hoursBack int) ([]string, error) {
	if hoursBack < 1 {
		hoursBack = DefaultWindowHours
	}
	startTime := c.clock().UTC().Add(-time.Duration(hoursBack) * time.Hour).Format(time.RFC3339)

	emails, err := c.collect(ctx, startTime, code, true)
	if err != nil {
		c.logger.Warn("meeting_code filter rejected, scanning window", "code", code, "error", err)
		emails, err = c.collect(ctx, startTime, code, false)
	}
	if err != nil {
		return nil, apperrors.NewUpstreamError("Could not audit Meet", apperrors.ErrCodeReportsUnavailable,
			fmt.Errorf("meet activities for %s: %w", code, err))
	}

	out := make([]string, 0, len(emails))
	for email := range emails {
		out = append(out, email)
	}
	sort.Strings(out)
	return out, nil
}

func (c *Client) collect(ctx context.Context, startTime, code string, serverFilter bool) (map[string]bool, error) {
	call := c.svc.Activities.List("all", "meet").
		StartTime(startTime).
		MaxResults(pageSize)
	if serverFilter {
		call = call.Filters("meeting_code==" + code)
	}

	emails := make(map[string]bool)
	err := call.Pages(ctx, func(page *admin.Activities) error {
		for _, act := range page.Items {
			if act.Id != nil && !strings.EqualFold(act.Id.ApplicationName, "meet") {
				continue
			}
			if !serverFilter && !activityHasCode(act, code) {
				continue
			}
			for _, ev := range act.Events {
				for _, p := range ev.Parameters {
					switch strings.ToLower(p.Name) {
					case "participant_email", "organizer_email":
						if p.Value != "" {
							emails[strings.ToLower(p.Value)] = true
						}
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return emails, nil
}

func activityHasCode(act *admin.Activity, code string) bool {
	for _, ev := range act.Events {
		for _, p := range ev.Parameters {
			if strings.EqualFold(p.Name, "meeting_code") && strings.EqualFold(p.Value, code) {
				return true
			}
		}
	}
	return false
}
