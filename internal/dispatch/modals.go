package dispatch

import (
	"context"
	"fmt"

	"github.com/workhq/workplace-bot/internal/core/events"
	"github.com/workhq/workplace-bot/internal/discord"
	"github.com/workhq/workplace-bot/internal/leave"
	"github.com/workhq/workplace-bot/internal/review"
)

func (d *Dispatcher) handleModal(ctx context.Context, in *discord.Interaction) *discord.Response {
	action, args := splitCustomID(in.Data.CustomID)

	switch action {
	case "att_logout_progress":
		return d.modalLogoutProgress(ctx, in, argAt(args, 0))
	case "leave_details":
		return d.modalLeaveDetails(ctx, in, argAt(args, 0), argAt(args, 1))
	case "leave_reject_reason":
		return d.modalLeaveReject(ctx, in, argAt(args, 0), argAt(args, 1), argAt(args, 2))
	case "wfh_reject_reason":
		return d.modalWFHReject(ctx, in, argAt(args, 0), argAt(args, 1), argAt(args, 2))
	case "cr_decision":
		return d.modalReviewDecision(ctx, in, review.KindContent, argAt(args, 0), argAt(args, 1), argAt(args, 2))
	case "ar_decision":
		return d.modalReviewDecision(ctx, in, review.KindAsset, argAt(args, 0), argAt(args, 1), argAt(args, 2))
	default:
		d.logger.Warn("unknown modal", "custom_id", in.Data.CustomID)
		return discord.NewMessageResponse(
			fmt.Sprintf("Unsupported modal `%s`.", in.Data.CustomID), true)
	}
}

// modalLogoutProgress records the logout punch carrying the daily progress
// text. The state is rechecked on submit so a stale modal cannot double-punch.
func (d *Dispatcher) modalLogoutProgress(ctx context.Context, in *discord.Interaction, expectedUID string) *discord.Response {
	user := in.Invoker()
	if expectedUID != "" && expectedUID != user.ID {
		return discord.NewMessageResponse("❌ This modal isn’t for you.", true)
	}
	name := user.DisplayName()
	progress := in.Data.ModalValue("progress_text")

	status, err := d.attendance.TodayStatus(ctx, name, user.ID)
	if err != nil {
		return d.errorResponse(ctx, err, "read attendance")
	}
	if !status.HasLogin {
		return discord.NewMessageResponse("⚠️ No **Login** found for today. Please log in first.", true)
	}
	if status.HasLogout {
		return discord.NewMessageResponse("ℹ️ **Logout** already recorded for today.", true)
	}

	if err := d.attendance.RecordLogout(ctx, name, user.ID, progress); err != nil {
		return d.errorResponse(ctx, err, "record logout")
	}
	d.publish(ctx, events.NewAttendanceRecordedEvent(name, "Logout", user.ID, progress, in.ChannelID))

	return discord.NewMessageResponse("🔴 ✅ **Logout** recorded with your daily progress. Have a good one!", true)
}

// modalLeaveDetails completes the picker flow: both dates came through the
// modal's custom id, only the optional reason is read from the form.
func (d *Dispatcher) modalLeaveDetails(ctx context.Context, in *discord.Interaction, fromDate, toDate string) *discord.Response {
	name := in.Invoker().DisplayName()
	reason := in.Data.ModalValue("leave_reason_text")

	req, err := d.leave.SubmitLeave(ctx, name, fromDate, toDate, reason)
	if err != nil {
		return d.errorResponse(ctx, err, "record leave")
	}

	card := discord.LeaveCard{Name: req.Name, From: req.From, To: req.To, Days: req.Days, Reason: req.Reason}
	d.publish(ctx, events.NewApprovalRequestedEvent(
		card.Render(),
		"leave_approve::"+req.ID,
		"leave_reject::"+req.ID,
		in.ChannelID,
	))

	return discord.NewMessageResponse(
		fmt.Sprintf("✅ Leave requested for **%s → %s**.", req.From, req.To), true)
}

func (d *Dispatcher) modalLeaveReject(ctx context.Context, in *discord.Interaction, id, channelID, messageID string) *discord.Response {
	if channelID == "" {
		channelID = in.ChannelID
	}
	if channelID == "" || messageID == "" {
		return discord.NewMessageResponse("❌ Missing context to complete rejection.", true)
	}
	reviewer := in.Invoker().DisplayName()
	note := in.Data.ModalValue("reject_reason")

	msg, err := d.messenger.GetMessage(ctx, channelID, messageID)
	if err != nil {
		return d.errorResponse(ctx, err, "load the original message")
	}

	req, err := d.resolveLeaveRequest(ctx, id, msg.Content)
	if err != nil {
		return discord.NewMessageResponse("❌ Could not parse the request details.", true)
	}

	if err := d.leave.RecordLeaveDecision(ctx, req, leave.DecisionRejected, reviewer, note); err != nil {
		return d.errorResponse(ctx, err, "record decision")
	}

	edited := &discord.OutboundMessage{
		Content:    msg.Content + discord.StatusFooter(leave.DecisionRejected, reviewer, d.timestamp(), note),
		Components: []discord.Component{discord.ApproveRejectRow("leave_approve::"+id, "leave_reject::"+id, true)},
	}
	if err := d.messenger.EditMessage(ctx, channelID, messageID, edited); err != nil {
		d.logger.Error("failed to edit leave card", "channel_id", channelID, "message_id", messageID, "error", err)
	}

	d.publish(ctx, events.NewLeaveDecidedEvent(
		req.Name, req.From, req.To, req.Reason,
		leave.DecisionRejected, reviewer, note, channelID))

	return discord.NewMessageResponse("✅ Rejection recorded.", true)
}

func (d *Dispatcher) modalWFHReject(ctx context.Context, in *discord.Interaction, id, channelID, messageID string) *discord.Response {
	if channelID == "" {
		channelID = in.ChannelID
	}
	if channelID == "" || messageID == "" {
		return discord.NewMessageResponse("❌ Missing context to complete rejection.", true)
	}
	reviewer := in.Invoker().DisplayName()
	note := in.Data.ModalValue("reject_reason")

	msg, err := d.messenger.GetMessage(ctx, channelID, messageID)
	if err != nil {
		return d.errorResponse(ctx, err, "load the original message")
	}

	req, err := d.resolveWFHRequest(ctx, id, msg.Content)
	if err != nil {
		return discord.NewMessageResponse("❌ Could not parse the request details.", true)
	}

	if err := d.leave.RecordWFHDecision(ctx, req, leave.DecisionRejected, reviewer, note); err != nil {
		return d.errorResponse(ctx, err, "record decision")
	}

	edited := &discord.OutboundMessage{
		Content:    msg.Content + discord.StatusFooter(leave.DecisionRejected, reviewer, d.timestamp(), note),
		Components: []discord.Component{discord.ApproveRejectRow("wfh_approve::"+id, "wfh_reject::"+id, true)},
	}
	if err := d.messenger.EditMessage(ctx, channelID, messageID, edited); err != nil {
		d.logger.Error("failed to edit wfh card", "channel_id", channelID, "message_id", messageID, "error", err)
	}

	d.publish(ctx, events.NewWFHDecidedEvent(
		req.Name, req.Date, req.Reason,
		leave.DecisionRejected, reviewer, note, channelID))

	return discord.NewMessageResponse("✅ Rejection recorded.", true)
}

// modalReviewDecision records a content or asset review decision. The card
// message is the source of truth: it is fetched, parsed, logged to the
// decisions tab, then edited with the status footer and disabled buttons.
func (d *Dispatcher) modalReviewDecision(ctx context.Context, in *discord.Interaction, kind, verb, channelID, messageID string) *discord.Response {
	if channelID == "" || messageID == "" {
		return discord.NewMessageResponse("❌ Missing context.", true)
	}
	reviewer := in.Invoker().DisplayName()
	comments := in.Data.ModalValue("comments")

	decision := leave.DecisionRejected
	if verb == "approve" {
		decision = leave.DecisionApproved
	}

	msg, err := d.messenger.GetMessage(ctx, channelID, messageID)
	if err != nil {
		return d.errorResponse(ctx, err, "load the original message")
	}

	var (
		decided    review.Decision
		approveID  = "cr_approve"
		rejectID   = "cr_reject"
		recordFunc = d.review.RecordContentDecision
	)
	if kind == review.KindAsset {
		approveID, rejectID = "ar_approve", "ar_reject"
		recordFunc = d.review.RecordAssetDecision
	}
	decided, err = recordFunc(ctx, msg.Content, decision, reviewer, comments)
	if err != nil {
		return d.errorResponse(ctx, err, "record decision")
	}

	newContent := msg.Content + discord.StatusFooter(decision, reviewer, d.timestamp(), "")
	if comments != "" {
		newContent += fmt.Sprintf("\n📝 **Comments:** %s", comments)
	}
	edited := &discord.OutboundMessage{
		Content:    newContent,
		Components: []discord.Component{discord.ApproveRejectRow(approveID, rejectID, true)},
	}
	if err := d.messenger.EditMessage(ctx, channelID, messageID, edited); err != nil {
		d.logger.Error("failed to edit review card", "channel_id", channelID, "message_id", messageID, "error", err)
	}

	d.publish(ctx, events.NewReviewDecidedEvent(
		decided.Kind, decided.Decision, decided.Reviewer, decided.Comments,
		decided.Requester, decided.Subject, decided.Filename, decided.FileURL))

	return discord.NewMessageResponse("✅ Decision recorded.", true)
}
