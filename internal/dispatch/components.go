package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/workhq/workplace-bot/internal/core/events"
	"github.com/workhq/workplace-bot/internal/discord"
	"github.com/workhq/workplace-bot/internal/leave"
)

func parseISODate(s string) (time.Time, error) {
	return time.Parse(leave.DateLayout, s)
}

// Component custom IDs carry their arguments after "::" separators, e.g.
// "leave_approve::<request-id>" or "leave_to_select::<from-date>".
func splitCustomID(customID string) (action string, args []string) {
	parts := strings.Split(customID, "::")
	return parts[0], parts[1:]
}

func argAt(args []string, idx int) string {
	if idx >= len(args) {
		return ""
	}
	return args[idx]
}

func (d *Dispatcher) handleComponent(ctx context.Context, in *discord.Interaction) *discord.Response {
	action, args := splitCustomID(in.Data.CustomID)

	switch action {
	case "leave_from_select":
		return d.componentLeaveFromSelect(in)
	case "leave_to_select":
		return d.componentLeaveToSelect(in, argAt(args, 0))
	case "wfh_date_select":
		return d.componentWFHDateSelect(in)
	case "leave_approve":
		return d.componentLeaveApprove(ctx, in, argAt(args, 0))
	case "leave_reject":
		return d.componentLeaveReject(in, argAt(args, 0))
	case "wfh_approve":
		return d.componentWFHApprove(ctx, in, argAt(args, 0))
	case "wfh_reject":
		return d.componentWFHReject(in, argAt(args, 0))
	case "cr_approve", "cr_reject":
		return d.componentReviewDecision(in, "cr", action == "cr_approve")
	case "ar_approve", "ar_reject":
		return d.componentReviewDecision(in, "ar", action == "ar_approve")
	default:
		d.logger.Warn("unknown component", "custom_id", in.Data.CustomID)
		return discord.NewMessageResponse(
			fmt.Sprintf("Unsupported action for button id `%s`.", in.Data.CustomID), true)
	}
}

// componentLeaveFromSelect swaps the From picker for a To picker anchored at
// the chosen start date.
func (d *Dispatcher) componentLeaveFromSelect(in *discord.Interaction) *discord.Response {
	if len(in.Data.Values) == 0 {
		return discord.NewMessageResponse("❌ No start date selected.", true)
	}
	fromDate := in.Data.Values[0]
	start, err := parseISODate(fromDate)
	if err != nil {
		return discord.NewMessageResponse("❌ No start date selected.", true)
	}

	return discord.NewUpdateResponse(
		fmt.Sprintf("📅 From: **%s**\nNow pick the **end** date:", fromDate),
		[]discord.Component{
			discord.ActionRow(discord.StringSelect(
				"leave_to_select::"+fromDate,
				"Select end date (To)",
				dateSelectOptions(start, 25),
			)),
		},
	)
}

// componentLeaveToSelect finishes the picker flow with a modal for the
// optional reason; from and to travel in the modal's custom id.
func (d *Dispatcher) componentLeaveToSelect(in *discord.Interaction, fromDate string) *discord.Response {
	if len(in.Data.Values) == 0 {
		return discord.NewMessageResponse("❌ No end date selected.", true)
	}
	toDate := in.Data.Values[0]

	return discord.NewModalResponse(
		fmt.Sprintf("leave_details::%s::%s", fromDate, toDate),
		"Leave Details",
		discord.ActionRow(discord.TextInput(
			"leave_reason_text",
			"Reason (optional)",
			discord.TextInputParagraph,
			false, 0, 1000, "",
		)),
	)
}

func (d *Dispatcher) componentWFHDateSelect(in *discord.Interaction) *discord.Response {
	if len(in.Data.Values) == 0 {
		return discord.NewMessageResponse("❌ No date selected.", true)
	}
	return discord.NewMessageResponse(
		fmt.Sprintf("✅ Selected WFH date: **%s**", in.Data.Values[0]), true)
}

// resolveLeaveRequest prefers the stored row; cards posted before request IDs
// existed fall back to parsing the card markdown.
func (d *Dispatcher) resolveLeaveRequest(ctx context.Context, id, cardContent string) (leave.Request, error) {
	if req, found, err := d.leave.FindLeaveRequest(ctx, id); err == nil && found {
		return req, nil
	} else if err != nil {
		d.logger.Warn("leave request lookup failed, parsing card", "id", id, "error", err)
	}

	card := discord.ParseLeaveCard(cardContent)
	if card.Name == "" || card.From == "" || card.To == "" {
		return leave.Request{}, fmt.Errorf("could not parse the request details")
	}
	return leave.Request{
		ID:     id,
		Name:   card.Name,
		From:   card.From,
		To:     card.To,
		Days:   card.Days,
		Reason: card.Reason,
	}, nil
}

func (d *Dispatcher) resolveWFHRequest(ctx context.Context, id, cardContent string) (leave.WFHRequest, error) {
	if req, found, err := d.leave.FindWFHRequest(ctx, id); err == nil && found {
		return req, nil
	} else if err != nil {
		d.logger.Warn("wfh request lookup failed, parsing card", "id", id, "error", err)
	}

	card := discord.ParseWFHCard(cardContent)
	if card.Name == "" || card.Date == "" {
		return leave.WFHRequest{}, fmt.Errorf("could not parse the request details")
	}
	return leave.WFHRequest{ID: id, Name: card.Name, Date: card.Date, Reason: card.Reason}, nil
}

func (d *Dispatcher) componentLeaveApprove(ctx context.Context, in *discord.Interaction, id string) *discord.Response {
	content := ""
	if in.Message != nil {
		content = in.Message.Content
	}
	reviewer := in.Invoker().DisplayName()

	req, err := d.resolveLeaveRequest(ctx, id, content)
	if err != nil {
		return discord.NewMessageResponse("❌ Could not parse the request details.", true)
	}

	if err := d.leave.RecordLeaveDecision(ctx, req, leave.DecisionApproved, reviewer, ""); err != nil {
		return d.errorResponse(ctx, err, "record decision")
	}

	d.publish(ctx, events.NewLeaveDecidedEvent(
		req.Name, req.From, req.To, req.Reason,
		leave.DecisionApproved, reviewer, "", in.ChannelID))

	return discord.NewUpdateResponse(
		content+discord.StatusFooter(leave.DecisionApproved, reviewer, d.timestamp(), ""),
		[]discord.Component{discord.ApproveRejectRow("leave_approve::"+id, "leave_reject::"+id, true)},
	)
}

// componentLeaveReject opens the rejection note modal; the actual decision is
// recorded on submit. Channel and message IDs ride along so the card can be
// edited afterwards.
func (d *Dispatcher) componentLeaveReject(in *discord.Interaction, id string) *discord.Response {
	msgID := ""
	if in.Message != nil {
		msgID = in.Message.ID
	}
	return discord.NewModalResponse(
		fmt.Sprintf("leave_reject_reason::%s::%s::%s", id, in.ChannelID, msgID),
		"Reject Leave",
		discord.ActionRow(discord.TextInput(
			"reject_reason",
			"Reason for rejection",
			discord.TextInputParagraph,
			true, 1, 1000,
			"Enter the reason for rejection",
		)),
	)
}

func (d *Dispatcher) componentWFHApprove(ctx context.Context, in *discord.Interaction, id string) *discord.Response {
	content := ""
	if in.Message != nil {
		content = in.Message.Content
	}
	reviewer := in.Invoker().DisplayName()

	req, err := d.resolveWFHRequest(ctx, id, content)
	if err != nil {
		return discord.NewMessageResponse("❌ Could not parse the request details.", true)
	}

	if err := d.leave.RecordWFHDecision(ctx, req, leave.DecisionApproved, reviewer, ""); err != nil {
		return d.errorResponse(ctx, err, "record decision")
	}

	d.publish(ctx, events.NewWFHDecidedEvent(
		req.Name, req.Date, req.Reason,
		leave.DecisionApproved, reviewer, "", in.ChannelID))

	return discord.NewUpdateResponse(
		content+discord.StatusFooter(leave.DecisionApproved, reviewer, d.timestamp(), ""),
		[]discord.Component{discord.ApproveRejectRow("wfh_approve::"+id, "wfh_reject::"+id, true)},
	)
}

func (d *Dispatcher) componentWFHReject(in *discord.Interaction, id string) *discord.Response {
	msgID := ""
	if in.Message != nil {
		msgID = in.Message.ID
	}
	return discord.NewModalResponse(
		fmt.Sprintf("wfh_reject_reason::%s::%s::%s", id, in.ChannelID, msgID),
		"Reject WFH",
		discord.ActionRow(discord.TextInput(
			"reject_reason",
			"Reason for rejection",
			discord.TextInputParagraph,
			true, 1, 1000,
			"Enter the reason for rejection",
		)),
	)
}

// componentReviewDecision opens the comments modal for content ("cr") and
// asset ("ar") reviews. Both approve and reject require a comment.
func (d *Dispatcher) componentReviewDecision(in *discord.Interaction, prefix string, approve bool) *discord.Response {
	msgID := ""
	if in.Message != nil {
		msgID = in.Message.ID
	}

	verb := "reject"
	if approve {
		verb = "approve"
	}

	var title, label string
	subject := "Content"
	if prefix == "ar" {
		subject = "Asset"
	}
	if approve {
		title = fmt.Sprintf("Approve %s (add improvement notes)", subject)
		label = "Improvement comments"
	} else {
		title = fmt.Sprintf("Reject %s (add reason)", subject)
		label = "Rejection comments"
	}

	return discord.NewModalResponse(
		fmt.Sprintf("%s_decision::%s::%s::%s", prefix, verb, in.ChannelID, msgID),
		title,
		discord.ActionRow(discord.TextInput(
			"comments",
			label,
			discord.TextInputParagraph,
			true, 1, 1000,
			"Write your feedback here",
		)),
	)
}
