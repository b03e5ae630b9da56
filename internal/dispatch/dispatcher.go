package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/workhq/workplace-bot/internal"
	"github.com/workhq/workplace-bot/internal/attendance"
	"github.com/workhq/workplace-bot/internal/calendar"
	"github.com/workhq/workplace-bot/internal/core/events"
	"github.com/workhq/workplace-bot/internal/discord"
	"github.com/workhq/workplace-bot/internal/finance"
	"github.com/workhq/workplace-bot/internal/leave"
	"github.com/workhq/workplace-bot/internal/review"
	"github.com/workhq/workplace-bot/internal/sheets"
	"github.com/workhq/workplace-bot/pkg/logger"
)

// AttendanceService is the slice of the attendance domain the dispatcher uses.
type AttendanceService interface {
	TodayStatus(ctx context.Context, name, userID string) (attendance.Status, error)
	RecordLogin(ctx context.Context, name, userID string) error
	RecordLogout(ctx context.Context, name, userID, progress string) error
	EmployeesThisMonth(ctx context.Context, limit int) ([]string, error)
}

type LeaveService interface {
	SubmitLeave(ctx context.Context, name, from, to, reason string) (leave.Request, error)
	FindLeaveRequest(ctx context.Context, id string) (leave.Request, bool, error)
	RecordLeaveDecision(ctx context.Context, req leave.Request, decision, reviewer, note string) error
	SubmitWFH(ctx context.Context, name, date, reason string) (leave.WFHRequest, error)
	FindWFHRequest(ctx context.Context, id string) (leave.WFHRequest, bool, error)
	RecordWFHDecision(ctx context.Context, req leave.WFHRequest, decision, reviewer, note string) error
	ApprovedThisMonth(ctx context.Context, name string) (int, int, []leave.MonthLeave, error)
}

type FinanceService interface {
	RecordInvoice(ctx context.Context, company, invoiceNo string, value float64, comments string) error
	ClearInvoice(ctx context.Context, invoiceNo string, value float64, comments string) error
	RecordTax(ctx context.Context, invoiceNo, taxType string, value float64, comments string) error
	Status(ctx context.Context) (finance.Summary, error)
	ForAutocomplete(ctx context.Context, query string, limit int) ([]finance.Invoice, error)
}

type ReviewService interface {
	RecordContentDecision(ctx context.Context, cardContent, decision, reviewer, comments string) (review.Decision, error)
	RecordAssetDecision(ctx context.Context, cardContent, decision, reviewer, comments string) (review.Decision, error)
}

type MeetScheduler interface {
	CreateMeeting(ctx context.Context, m calendar.Meeting) (string, error)
}

// MeetAuditor reports who attended a Meet call. Nil when the deployment has
// no Workspace admin subject configured.
type MeetAuditor interface {
	MeetAttendance(ctx context.Context, code string, hoursBack int) ([]string, error)
}

// Messenger is the outbound Discord surface the dispatcher needs directly:
// posting the date pickers and reading/editing cards during modal decisions.
type Messenger interface {
	PostMessage(ctx context.Context, channelID string, msg *discord.OutboundMessage) (string, error)
	EditMessage(ctx context.Context, channelID, messageID string, msg *discord.OutboundMessage) error
	GetMessage(ctx context.Context, channelID, messageID string) (*discord.Message, error)
}

// Dispatcher routes verified interactions to the domain services and always
// produces a synchronous response. Notifications go out through the event bus
// so a slow or failing broadcast never delays the three-second interaction
// deadline.
type Dispatcher struct {
	cfg        *internal.Config
	messenger  Messenger
	attendance AttendanceService
	leave      LeaveService
	finance    FinanceService
	review     ReviewService
	meets      MeetScheduler
	audit      MeetAuditor
	bus        *events.EventBus
	logger     *slog.Logger
	clock      func() time.Time
}

func NewDispatcher(
	cfg *internal.Config,
	messenger Messenger,
	attendanceSvc AttendanceService,
	leaveSvc LeaveService,
	financeSvc FinanceService,
	reviewSvc ReviewService,
	meets MeetScheduler,
	auditor MeetAuditor,
	bus *events.EventBus,
	log *slog.Logger,
	clock func() time.Time,
) *Dispatcher {
	if clock == nil {
		clock = time.Now
	}
	if log == nil {
		log = logger.LoggerWrapper()
	}
	return &Dispatcher{
		cfg:        cfg,
		messenger:  messenger,
		attendance: attendanceSvc,
		leave:      leaveSvc,
		finance:    financeSvc,
		review:     reviewSvc,
		meets:      meets,
		audit:      auditor,
		bus:        bus,
		logger:     log,
		clock:      clock,
	}
}

// Dispatch handles one interaction and never returns nil: unknown types and
// internal failures all map to an ephemeral message.
func (d *Dispatcher) Dispatch(ctx context.Context, in *discord.Interaction) *discord.Response {
	switch in.Type {
	case discord.InteractionPing:
		return discord.Pong()
	case discord.InteractionApplicationCommand:
		return d.handleCommand(ctx, in)
	case discord.InteractionMessageComponent:
		return d.handleComponent(ctx, in)
	case discord.InteractionAutocomplete:
		return d.handleAutocomplete(ctx, in)
	case discord.InteractionModalSubmit:
		return d.handleModal(ctx, in)
	default:
		d.logger.Warn("unsupported interaction type", "type", int(in.Type))
		return discord.NewMessageResponse("Unsupported interaction type.", true)
	}
}

// publish hands an event to the bus on a detached context: handlers run
// after the interaction response is written, which cancels the request
// context.
func (d *Dispatcher) publish(ctx context.Context, event events.Event) {
	if err := d.bus.Publish(context.WithoutCancel(ctx), event); err != nil {
		d.logger.Error("event publish failed", "event_type", event.EventType(), "error", err)
	}
}

// allowedChannels returns the channel allow-list for a command. Commands with
// no lock may run anywhere.
func (d *Dispatcher) allowedChannels(cmd string) []string {
	ch := d.cfg.Channels
	switch strings.ToLower(cmd) {
	case "leaverequest", "wfh", "leavecount":
		return []string{ch.LeaveRequests}
	case "attendance":
		return []string{ch.Attendance}
	case "contentrequest", "assetreview":
		return []string{ch.ContentTeam}
	case "recordinvoice", "clearinvoice", "viewinvoice", "viewfinstatus", "recordtax":
		return []string{ch.Finance}
	default:
		return nil
	}
}

func (d *Dispatcher) channelAllowed(cmd, channelID string) bool {
	allowed := d.allowedChannels(cmd)
	if len(allowed) == 0 {
		return true
	}
	for _, id := range allowed {
		if id != "" && id == channelID {
			return true
		}
	}
	return false
}

func (d *Dispatcher) denyWrongChannel(cmd string) *discord.Response {
	var labels []string
	for _, id := range d.allowedChannels(cmd) {
		if id != "" {
			labels = append(labels, d.cfg.Channels.Label(id))
		}
	}
	where := "the configured channel"
	if len(labels) > 0 {
		where = strings.Join(labels, " or ")
	}
	appErr := internal.NewForbiddenError(
		fmt.Sprintf("⛔ **/%s** isn’t allowed here. Use it in %s.", cmd, where),
		internal.ErrCodeWrongChannel)
	d.logger.Warn("command blocked", "command", cmd, "code", appErr.Code)
	return discord.NewMessageResponse(appErr.Message, true)
}

// validationFail renders a user-input problem the same way upstream failures
// flow through errorResponse, so the error code lands in the logs.
func (d *Dispatcher) validationFail(ctx context.Context, message string, code internal.ErrorCode) *discord.Response {
	return d.errorResponse(ctx, internal.NewValidationError(message, code), "validate options")
}

// errorResponse maps a domain error to an ephemeral user message and logs the
// underlying cause.
func (d *Dispatcher) errorResponse(ctx context.Context, err error, action string) *discord.Response {
	logger.From(ctx).Error("interaction failed", "action", action, "error", err)
	if appErr, ok := internal.IsAppError(err); ok {
		return discord.NewMessageResponse(appErr.UserMessage(), true)
	}
	return discord.NewMessageResponse(fmt.Sprintf("❌ Failed to %s. Please try again.", action), true)
}

func (d *Dispatcher) nowIST() time.Time {
	return d.clock().In(sheets.IST)
}

func (d *Dispatcher) timestamp() string {
	return sheets.Timestamp(d.clock())
}

// formatMoney renders an amount with thousands separators, e.g. 1234567.5
// with 2 decimals becomes "1,234,567.50".
func formatMoney(v float64, decimals int) string {
	neg := v < 0
	if neg {
		v = -v
	}
	// round before splitting so 0.999 at 2 decimals carries into the whole part
	scale := math.Pow(10, float64(decimals))
	v = math.Round(v*scale) / scale
	whole := int64(math.Floor(v))
	frac := v - float64(whole)

	digits := fmt.Sprintf("%d", whole)
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}

	out := b.String()
	if decimals > 0 {
		fracStr := fmt.Sprintf("%.*f", decimals, frac)
		out += fracStr[1:] // drop leading zero, keep the dot
	}
	if neg {
		out = "-" + out
	}
	return out
}

// dateChoices builds autocomplete choices / select options for count days
// starting at start, labeled "2006-01-02 (Mon)".
func dateChoices(start time.Time, count int) []discord.Choice {
	if count > 25 {
		count = 25
	}
	choices := make([]discord.Choice, 0, count)
	for i := 0; i < count; i++ {
		day := start.AddDate(0, 0, i)
		iso := day.Format("2006-01-02")
		choices = append(choices, discord.Choice{
			Name:  fmt.Sprintf("%s (%s)", iso, day.Format("Mon")),
			Value: iso,
		})
	}
	return choices
}

func dateSelectOptions(start time.Time, count int) []discord.SelectOption {
	opts := make([]discord.SelectOption, 0, count)
	for _, c := range dateChoices(start, count) {
		opts = append(opts, discord.SelectOption{Label: c.Name, Value: c.Value})
	}
	return opts
}
