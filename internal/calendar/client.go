package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	apperrors "github.com/workhq/workplace-bot/internal"
)

const meetTimezone = "Asia/Kolkata"

// Client creates Calendar events with Google Meet conference links attached.
type Client struct {
	svc        *calendar.Service
	calendarID string
	logger     *slog.Logger
}

func NewClient(ctx context.Context, credentialsJSON []byte, calendarID string, logger *slog.Logger) (*Client, error) {
	if calendarID == "" {
		calendarID = "primary"
	}
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, calendar.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("parse calendar credentials: %w", err)
	}
	svc, err := calendar.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &Client{svc: svc, calendarID: calendarID, logger: logger}, nil
}

// Meeting describes the event to schedule. Times are interpreted in IST.
type Meeting struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
}

// CreateMeeting inserts the event and returns the generated Meet link.
func (c *Client) CreateMeeting(ctx context.Context, m Meeting) (string, error) {
	event := &calendar.Event{
		Summary:     m.Title,
		Description: m.Description,
		Start: &calendar.EventDateTime{
			DateTime: m.Start.Format(time.RFC3339),
			TimeZone: meetTimezone,
		},
		End: &calendar.EventDateTime{
			DateTime: m.End.Format(time.RFC3339),
			TimeZone: meetTimezone,
		},
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: fmt.Sprintf("discord-meet-%d", time.Now().UnixNano()),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{
					Type: "hangoutsMeet",
				},
			},
		},
	}

	created, err := c.svc.Events.
		Insert(c.calendarID, event).
		ConferenceDataVersion(1).
		Context(ctx).
		Do()
	if err != nil {
		c.logger.Error("calendar insert failed", "title", m.Title, "error", err)
		return "", apperrors.NewUpstreamError("Calendar event creation failed", apperrors.ErrCodeCalendarUnavailable,
			fmt.Errorf("create calendar event: %w", err))
	}

	link := created.HangoutLink
	if link == "" && created.ConferenceData != nil {
		for _, ep := range created.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" {
				link = ep.Uri
				break
			}
		}
	}
	if link == "" {
		return "", fmt.Errorf("event created without a meet link")
	}

	c.logger.Info("meeting scheduled", "title", m.Title, "event_id", created.Id)
	return link, nil
}
