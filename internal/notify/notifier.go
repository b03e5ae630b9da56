package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/workhq/workplace-bot/internal"
	"github.com/workhq/workplace-bot/internal/core/events"
	"github.com/workhq/workplace-bot/internal/discord"
	"github.com/workhq/workplace-bot/internal/sheets"
)

// handlerTimeout bounds each event handler; handlers run on detached
// contexts that nothing else will ever cancel.
const handlerTimeout = 30 * time.Second

// Messenger is the outbound Discord surface the notifier posts through.
type Messenger interface {
	PostMessage(ctx context.Context, channelID string, msg *discord.OutboundMessage) (string, error)
	OpenDM(ctx context.Context, userID string) (string, error)
}

// Notifier turns domain events into channel broadcasts and DMs. It runs on
// the event bus, after the interaction response has already been sent, so
// every failure here is logged and swallowed.
type Notifier struct {
	cfg       *internal.Config
	messenger Messenger
	logger    *slog.Logger
	clock     func() time.Time
}

func NewNotifier(cfg *internal.Config, messenger Messenger, logger *slog.Logger, clock func() time.Time) *Notifier {
	if clock == nil {
		clock = time.Now
	}
	return &Notifier{cfg: cfg, messenger: messenger, logger: logger, clock: clock}
}

// Register subscribes the notifier to every event it handles.
func (n *Notifier) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeAttendanceRecorded, n.handleAttendanceRecorded)
	bus.Subscribe(events.EventTypeApprovalRequested, n.handleApprovalRequested)
	bus.Subscribe(events.EventTypeLeaveDecided, n.handleLeaveDecided)
	bus.Subscribe(events.EventTypeWFHDecided, n.handleWFHDecided)
	bus.Subscribe(events.EventTypeReviewSubmitted, n.handleReviewSubmitted)
	bus.Subscribe(events.EventTypeReviewDecided, n.handleReviewDecided)
}

func (n *Notifier) timestamp() string {
	return sheets.Timestamp(n.clock())
}

// handleAttendanceRecorded posts the punch to the attendance channel with an
// HR role ping, then DMs the employee a receipt. Both are best effort.
func (n *Notifier) handleAttendanceRecorded(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.AttendanceRecordedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}
	ctx, cancel := internal.WithTimeout(ctx, handlerTimeout)
	defer cancel()

	channelID := n.cfg.Channels.Attendance
	if channelID == "" {
		channelID = e.FallbackChannelID
	}
	if channelID == "" {
		return nil
	}

	icon := "🟢"
	if strings.EqualFold(e.Action, "logout") {
		icon = "🔴"
	}
	rolePing := "HR"
	if n.cfg.Channels.HRRoleID != "" {
		rolePing = fmt.Sprintf("<@&%s>", n.cfg.Channels.HRRoleID)
	}
	userPing := e.Name
	if e.UserID != "" {
		userPing = fmt.Sprintf("<@%s>", e.UserID)
	}

	content := fmt.Sprintf(
		"%s **Attendance**\n👤 %s — **%s**\n🕒 %s IST\n📝 Action: **%s**",
		icon, userPing, e.Name, n.timestamp(), e.Action)
	if strings.EqualFold(e.Action, "logout") && e.Progress != "" {
		content += fmt.Sprintf("\n📈 **Daily Progress:** %s", e.Progress)
	}
	content += fmt.Sprintf("\n%s please take note.", rolePing)

	// The broadcast is the only message allowed to ping anyone, and only the
	// HR role and the employee themselves.
	msg := &discord.OutboundMessage{
		Content:         content,
		AllowedMentions: &discord.AllowedMentions{Parse: []string{}},
	}
	if n.cfg.Channels.HRRoleID != "" {
		msg.AllowedMentions.Roles = []string{n.cfg.Channels.HRRoleID}
	}
	if e.UserID != "" {
		msg.AllowedMentions.Users = []string{e.UserID}
	}
	if _, err := n.messenger.PostMessage(ctx, channelID, msg); err != nil {
		n.logger.Error("attendance broadcast failed", "channel_id", channelID, "error", err)
	}

	n.sendAttendanceReceipt(ctx, e, icon)
	return nil
}

func (n *Notifier) sendAttendanceReceipt(ctx context.Context, e *events.AttendanceRecordedEvent, icon string) {
	if e.UserID == "" {
		return
	}
	dmChannel, err := n.messenger.OpenDM(ctx, e.UserID)
	if err != nil {
		n.logger.Warn("attendance dm failed", "user_id", e.UserID, "error", err)
		return
	}
	content := fmt.Sprintf("%s Attendance recorded for **%s**\n🕒 %s IST\nAction: **%s**",
		icon, e.Name, n.timestamp(), e.Action)
	if strings.EqualFold(e.Action, "logout") && e.Progress != "" {
		content += fmt.Sprintf("\n📈 Progress: %s", e.Progress)
	}
	if _, err := n.messenger.PostMessage(ctx, dmChannel, &discord.OutboundMessage{Content: content}); err != nil {
		n.logger.Warn("attendance dm failed", "user_id", e.UserID, "error", err)
	}
}

// handleApprovalRequested delivers the request card with its Approve/Reject
// buttons: to the approver channel if configured, else the approver's DM,
// else back to the channel the request came from.
func (n *Notifier) handleApprovalRequested(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.ApprovalRequestedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}
	ctx, cancel := internal.WithTimeout(ctx, handlerTimeout)
	defer cancel()

	msg := &discord.OutboundMessage{
		Content: e.CardContent,
		Components: []discord.Component{
			discord.ApproveRejectRow(e.ApproveCustomID, e.RejectCustomID, false),
		},
	}

	channelID := n.cfg.Channels.Approver
	if channelID == "" && n.cfg.Channels.ApproverUserID != "" {
		dm, err := n.messenger.OpenDM(ctx, n.cfg.Channels.ApproverUserID)
		if err != nil {
			n.logger.Error("approver dm failed", "user_id", n.cfg.Channels.ApproverUserID, "error", err)
			return err
		}
		channelID = dm
	}
	if channelID == "" {
		channelID = e.FallbackChannelID
	}
	if channelID == "" {
		n.logger.Warn("no destination for approval request", "event_id", e.EventID())
		return nil
	}

	if _, err := n.messenger.PostMessage(ctx, channelID, msg); err != nil {
		n.logger.Error("approval request post failed", "channel_id", channelID, "error", err)
		return err
	}
	return nil
}

// statusChannel picks the broadcast destination for decisions: the dedicated
// status channel, else the approver channel, else the fallback.
func (n *Notifier) statusChannel(fallback string) string {
	if n.cfg.Channels.LeaveStatus != "" {
		return n.cfg.Channels.LeaveStatus
	}
	if n.cfg.Channels.Approver != "" {
		return n.cfg.Channels.Approver
	}
	return fallback
}

func (n *Notifier) handleLeaveDecided(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.LeaveDecidedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}
	ctx, cancel := internal.WithTimeout(ctx, handlerTimeout)
	defer cancel()

	channelID := n.statusChannel(e.FallbackChannelID)
	if channelID == "" {
		return nil
	}

	icon := "✅"
	if !strings.EqualFold(e.Decision, "approved") {
		icon = "❌"
	}
	reason := e.Reason
	if e.Note != "" {
		reason += " | Rejection Note: " + e.Note
	}
	content := fmt.Sprintf(
		"%s **Leave %s**\n👤 **Employee:** %s\n🗓️ **From:** %s\n🗓️ **To:** %s\n💬 **Reason:** %s\n🧑‍💼 **Reviewer:** %s — **%s IST**",
		icon, e.Decision, e.Name, e.FromDate, e.ToDate, reason, e.Reviewer, n.timestamp())

	if _, err := n.messenger.PostMessage(ctx, channelID, &discord.OutboundMessage{Content: content}); err != nil {
		n.logger.Error("leave status post failed", "channel_id", channelID, "error", err)
		return err
	}
	return nil
}

func (n *Notifier) handleWFHDecided(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.WFHDecidedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}
	ctx, cancel := internal.WithTimeout(ctx, handlerTimeout)
	defer cancel()

	channelID := n.statusChannel(e.FallbackChannelID)
	if channelID == "" {
		return nil
	}

	icon := "🏠✅"
	if !strings.EqualFold(e.Decision, "approved") {
		icon = "🏠❌"
	}
	reason := e.Reason
	if e.Note != "" {
		reason += " | Rejection Note: " + e.Note
	}
	content := fmt.Sprintf(
		"%s **WFH %s**\n👤 **Employee:** %s\n📅 **Date:** %s\n💬 **Reason:** %s\n🧑‍💼 **Reviewer:** %s — **%s IST**",
		icon, e.Decision, e.Name, e.Date, reason, e.Reviewer, n.timestamp())

	if _, err := n.messenger.PostMessage(ctx, channelID, &discord.OutboundMessage{Content: content}); err != nil {
		n.logger.Error("wfh status post failed", "channel_id", channelID, "error", err)
		return err
	}
	return nil
}

// handleReviewSubmitted posts the review card with buttons to the relevant
// review channel.
func (n *Notifier) handleReviewSubmitted(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.ReviewSubmittedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}
	ctx, cancel := internal.WithTimeout(ctx, handlerTimeout)
	defer cancel()

	channelID := n.cfg.Channels.ContentRequests
	if e.Kind == "asset" {
		channelID = n.cfg.Channels.AssetsReviews
	}
	if channelID == "" {
		n.logger.Warn("no review channel configured", "kind", e.Kind)
		return nil
	}

	msg := &discord.OutboundMessage{
		Content: e.CardContent,
		Components: []discord.Component{
			discord.ApproveRejectRow(e.ApproveCustomID, e.RejectCustomID, false),
		},
	}
	if _, err := n.messenger.PostMessage(ctx, channelID, msg); err != nil {
		n.logger.Error("review card post failed", "channel_id", channelID, "error", err)
		return err
	}
	return nil
}

// handleReviewDecided tells the requesting team what was decided.
func (n *Notifier) handleReviewDecided(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.ReviewDecidedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}
	ctx, cancel := internal.WithTimeout(ctx, handlerTimeout)
	defer cancel()

	channelID := n.cfg.Channels.ContentTeam
	if channelID == "" {
		return nil
	}

	header := "📣 **Content Request Decision**"
	subjectLabel := "📌 **Topic:**"
	if e.Kind == "asset" {
		header = "📣 **Asset Review Decision**"
		subjectLabel = "🏷️ **Name:**"
	}

	content := fmt.Sprintf("%s\n🧑‍💼 **Reviewer:** %s\n✅❌ **Decision:** %s", header, e.Reviewer, e.Decision)
	if e.Comments != "" {
		content += fmt.Sprintf("\n📝 **Comments:** %s", e.Comments)
	}
	content += fmt.Sprintf("\n👤 **Requester:** %s\n%s %s\n📎 **File:** [%s](%s)",
		e.Requester, subjectLabel, e.Subject, e.Filename, e.FileURL)

	if _, err := n.messenger.PostMessage(ctx, channelID, &discord.OutboundMessage{Content: content}); err != nil {
		n.logger.Error("review decision post failed", "channel_id", channelID, "error", err)
		return err
	}
	return nil
}
