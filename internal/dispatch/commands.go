package dispatch

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/workhq/workplace-bot/internal"
	"github.com/workhq/workplace-bot/internal/audit"
	"github.com/workhq/workplace-bot/internal/calendar"
	"github.com/workhq/workplace-bot/internal/core/events"
	"github.com/workhq/workplace-bot/internal/discord"
	"github.com/workhq/workplace-bot/internal/sheets"
)

func (d *Dispatcher) handleCommand(ctx context.Context, in *discord.Interaction) *discord.Response {
	cmd := strings.ToLower(in.Data.Name)
	if !d.channelAllowed(cmd, in.ChannelID) {
		return d.denyWrongChannel(cmd)
	}

	switch cmd {
	case "attendance":
		return d.cmdAttendance(ctx, in)
	case "leaverequest":
		return d.cmdLeaveRequest(ctx, in)
	case "wfh":
		return d.cmdWFH(ctx, in)
	case "leavecount":
		return d.cmdLeaveCount(ctx, in)
	case "contentrequest":
		return d.cmdContentRequest(ctx, in)
	case "assetreview":
		return d.cmdAssetReview(ctx, in)
	case "recordinvoice":
		return d.cmdRecordInvoice(ctx, in)
	case "clearinvoice":
		return d.cmdClearInvoice(ctx, in)
	case "viewinvoice":
		return d.cmdViewInvoice(ctx, in)
	case "viewfinstatus":
		return d.cmdViewFinStatus(ctx, in)
	case "recordtax":
		return d.cmdRecordTax(ctx, in)
	case "schedulemeet":
		return d.cmdScheduleMeet(ctx, in)
	case "auditmeet":
		return d.cmdAuditMeet(ctx, in)
	default:
		d.logger.Warn("unknown command", "command", cmd)
		return discord.NewMessageResponse("Unknown command.", true)
	}
}

// cmdAttendance is a state machine over today's punches: first use records
// login, second opens the progress modal that records logout on submit, any
// further use is a no-op.
func (d *Dispatcher) cmdAttendance(ctx context.Context, in *discord.Interaction) *discord.Response {
	user := in.Invoker()
	name := user.DisplayName()

	status, err := d.attendance.TodayStatus(ctx, name, user.ID)
	if err != nil {
		return d.errorResponse(ctx, err, "read attendance")
	}

	switch {
	case !status.HasLogin:
		if err := d.attendance.RecordLogin(ctx, name, user.ID); err != nil {
			return d.errorResponse(ctx, err, "record login")
		}
		d.publish(ctx, events.NewAttendanceRecordedEvent(name, "Login", user.ID, "", in.ChannelID))
		return discord.NewMessageResponse(
			fmt.Sprintf("🟢 ✅ Recorded **Login** for **%s** • 🕒 %s IST", name, d.timestamp()), true)

	case !status.HasLogout:
		return discord.NewModalResponse(
			"att_logout_progress::"+user.ID,
			"Daily progress (required for logout)",
			discord.ActionRow(discord.TextInput(
				"progress_text",
				"What did you complete today?",
				discord.TextInputParagraph,
				true, 1, 2000,
				"Tasks done, blockers, key updates…",
			)),
		)

	default:
		return discord.NewMessageResponse("ℹ️ You’ve already recorded **Login** and **Logout** for today.", true)
	}
}

func (d *Dispatcher) cmdLeaveRequest(ctx context.Context, in *discord.Interaction) *discord.Response {
	from := in.Data.Option("from")
	to := in.Data.Option("to")
	reason := in.Data.Option("reason")
	name := in.Invoker().DisplayName()

	// No dates yet: start the picker flow in the channel.
	if from == "" || to == "" {
		msg := &discord.OutboundMessage{
			Content: "📅 Pick the **start** date for your leave:",
			Components: []discord.Component{
				discord.ActionRow(discord.StringSelect(
					"leave_from_select",
					"Select start date (From)",
					dateSelectOptions(d.nowIST(), 14),
				)),
			},
		}
		if _, err := d.messenger.PostMessage(ctx, in.ChannelID, msg); err != nil {
			return d.errorResponse(ctx, err, "post the date picker")
		}
		return discord.NewMessageResponse(
			"🗓️ I posted a **From date** picker. Choose From first; I’ll then show valid **To** dates.", true)
	}

	req, err := d.leave.SubmitLeave(ctx, name, from, to, reason)
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

	return discord.NewMessageResponse(fmt.Sprintf(
		"✅ Leave request submitted by **%s** from **%s** to **%s** (%d days).\nReason: %s",
		req.Name, req.From, req.To, req.Days, orNotProvided(req.Reason)), true)
}

func (d *Dispatcher) cmdWFH(ctx context.Context, in *discord.Interaction) *discord.Response {
	date := in.Data.Option("date")
	reason := in.Data.Option("reason")
	name := in.Invoker().DisplayName()

	if date == "" {
		msg := &discord.OutboundMessage{
			Content: "Pick a date for your WFH request:",
			Components: []discord.Component{
				discord.ActionRow(discord.StringSelect(
					"wfh_date_select",
					"Select a date",
					dateSelectOptions(d.nowIST(), 14),
				)),
			},
		}
		if _, err := d.messenger.PostMessage(ctx, in.ChannelID, msg); err != nil {
			return d.errorResponse(ctx, err, "post the date picker")
		}
		return discord.NewMessageResponse(
			"🗓️ Choose a date from the picker I just posted (or use the autocomplete).", true)
	}

	req, err := d.leave.SubmitWFH(ctx, name, date, reason)
	if err != nil {
		return d.errorResponse(ctx, err, "record WFH request")
	}

	card := discord.WFHCard{Name: req.Name, Date: req.Date, Reason: req.Reason}
	d.publish(ctx, events.NewApprovalRequestedEvent(
		card.Render(),
		"wfh_approve::"+req.ID,
		"wfh_reject::"+req.ID,
		in.ChannelID,
	))

	return discord.NewMessageResponse(fmt.Sprintf(
		"✅ WFH request submitted by **%s** for **%s**.\nReason: %s",
		req.Name, req.Date, orNotProvided(req.Reason)), true)
}

func (d *Dispatcher) cmdLeaveCount(ctx context.Context, in *discord.Interaction) *discord.Response {
	target := in.Data.Option("name")
	if target == "" {
		target = in.Invoker().DisplayName()
	}

	count, totalDays, details, err := d.leave.ApprovedThisMonth(ctx, target)
	if err != nil {
		return d.errorResponse(ctx, err, "read leave data")
	}

	monthLabel := d.nowIST().Format("January 2006")
	if count == 0 {
		return discord.NewMessageResponse(fmt.Sprintf(
			"📊 **Approved leaves in %s** for **%s**\n(No entries)\n**Total days:** 0",
			monthLabel, target), true)
	}

	var lines []string
	for i, item := range details {
		plural := "s"
		if item.OverlapDays == 1 {
			plural = ""
		}
		lines = append(lines, fmt.Sprintf("%d. %s → %s — %d day%s",
			i+1,
			item.From.Format("2006-01-02"),
			item.To.Format("2006-01-02"),
			item.OverlapDays, plural))
	}
	return discord.NewMessageResponse(fmt.Sprintf(
		"📊 **Approved leaves in %s** for **%s**\n%s\n\n**Total days:** %d",
		monthLabel, target, strings.Join(lines, "\n"), totalDays), true)
}

func (d *Dispatcher) cmdContentRequest(ctx context.Context, in *discord.Interaction) *discord.Response {
	topic := in.Data.Option("topic")
	att, hasFile := in.Data.OptionAttachment("files")
	if topic == "" || !hasFile {
		return d.validationFail(ctx, "Provide a **topic** and attach a **file**.", internal.ErrCodeMissingOption)
	}
	if d.cfg.Channels.ContentRequests == "" {
		return discord.NewMessageResponse("❌ Server not configured for content requests.", true)
	}

	card := discord.ContentCard{
		Requester: in.Invoker().DisplayName(),
		Topic:     topic,
		Filename:  att.Filename,
		FileURL:   att.URL,
	}
	d.publish(ctx, events.NewReviewSubmittedEvent("content", card.Render(), "cr_approve", "cr_reject"))

	return discord.NewMessageResponse("✅ Sent to **#content-requests** for review.", true)
}

func (d *Dispatcher) cmdAssetReview(ctx context.Context, in *discord.Interaction) *discord.Response {
	assetName := in.Data.Option("name")
	att, hasFile := in.Data.OptionAttachment("file")
	if assetName == "" || !hasFile {
		return d.validationFail(ctx, "Provide **name** and attach a **file**.", internal.ErrCodeMissingOption)
	}
	if d.cfg.Channels.AssetsReviews == "" {
		return discord.NewMessageResponse("❌ Server not configured for asset reviews.", true)
	}

	card := discord.AssetCard{
		Requester: in.Invoker().DisplayName(),
		AssetName: assetName,
		Filename:  att.Filename,
		FileURL:   att.URL,
	}
	d.publish(ctx, events.NewReviewSubmittedEvent("asset", card.Render(), "ar_approve", "ar_reject"))

	return discord.NewMessageResponse("✅ Sent to **#assets-reviews** for verification.", true)
}

func (d *Dispatcher) cmdRecordInvoice(ctx context.Context, in *discord.Interaction) *discord.Response {
	company := in.Data.Option("companyname")
	invNo := in.Data.Option("invoicenumber")
	invVal := in.Data.Option("invoicevalue")
	comments := in.Data.Option("comments")
	if company == "" || invNo == "" || invVal == "" {
		return d.validationFail(ctx, "Missing fields. Required: CompanyName, InvoiceNumber, InvoiceValue.", internal.ErrCodeMissingOption)
	}

	value := toFloat(invVal)
	if err := d.finance.RecordInvoice(ctx, company, invNo, value, comments); err != nil {
		return d.errorResponse(ctx, err, "record invoice")
	}
	return discord.NewMessageResponse(fmt.Sprintf(
		"✅ Invoice **%s** recorded for **%s** (₹%s).", invNo, company, formatMoney(value, 2)), true)
}

func (d *Dispatcher) cmdClearInvoice(ctx context.Context, in *discord.Interaction) *discord.Response {
	invNo := in.Data.Option("invoicenumber")
	cleared := in.Data.Option("valuecleared")
	comments := in.Data.Option("comments")
	if invNo == "" || cleared == "" {
		return d.validationFail(ctx, "Missing fields. Required: InvoiceNumber, ValueCleared.", internal.ErrCodeMissingOption)
	}

	value := toFloat(cleared)
	if err := d.finance.ClearInvoice(ctx, invNo, value, comments); err != nil {
		return d.errorResponse(ctx, err, "record clearance")
	}
	return discord.NewMessageResponse(fmt.Sprintf(
		"✅ Recorded ₹%s cleared for **%s**.", formatMoney(value, 2), invNo), true)
}

func (d *Dispatcher) cmdViewInvoice(ctx context.Context, in *discord.Interaction) *discord.Response {
	invoices, err := d.finance.ForAutocomplete(ctx, "", 0)
	if err != nil {
		return d.errorResponse(ctx, err, "load invoices")
	}

	const maxListed = 10
	var lines []string
	for i, inv := range invoices {
		if i >= maxListed {
			break
		}
		lines = append(lines, fmt.Sprintf("%d. **%s** — %s • ₹%s • Outst.: ₹%s",
			i+1, inv.InvoiceNo, inv.Company,
			formatMoney(inv.Total, 2), formatMoney(inv.Outstanding, 2)))
	}

	body := "No invoices found."
	if len(lines) > 0 {
		body = strings.Join(lines, "\n")
	}
	extra := ""
	if len(invoices) > maxListed {
		extra = fmt.Sprintf("\n…plus %d more.", len(invoices)-maxListed)
	}
	return discord.NewMessageResponse("🧾 **Invoices**\n"+body+extra, true)
}

func (d *Dispatcher) cmdViewFinStatus(ctx context.Context, in *discord.Interaction) *discord.Response {
	sum, err := d.finance.Status(ctx)
	if err != nil {
		return d.errorResponse(ctx, err, "compute status")
	}

	taxLines := []string{"• (none)"}
	if len(sum.TaxesByType) > 0 {
		taxLines = taxLines[:0]
		for _, taxType := range sortedKeys(sum.TaxesByType) {
			taxLines = append(taxLines, fmt.Sprintf("• %s: ₹%s", taxType, formatMoney(sum.TaxesByType[taxType], 2)))
		}
	}

	return discord.NewMessageResponse(fmt.Sprintf(
		"💼 **Finance Status**\n"+
			"• Total Invoiced: **₹%s**\n"+
			"• Total Cleared: **₹%s**\n"+
			"• Outstanding: **₹%s**\n\n"+
			"🧾 **Taxes recorded (by type)**\n%s",
		formatMoney(sum.TotalInvoiced, 2),
		formatMoney(sum.TotalCleared, 2),
		formatMoney(sum.OutstandingTotal, 2),
		strings.Join(taxLines, "\n")), true)
}

func (d *Dispatcher) cmdRecordTax(ctx context.Context, in *discord.Interaction) *discord.Response {
	invNo := in.Data.Option("invoicenumber")
	taxType := in.Data.Option("taxtype")
	taxVal := in.Data.Option("taxvalue")
	comments := in.Data.Option("comments")
	if invNo == "" || taxType == "" || taxVal == "" {
		return d.validationFail(ctx, "Missing fields. Required: InvoiceNumber, TaxType, TaxValue.", internal.ErrCodeMissingOption)
	}

	value := toFloat(taxVal)
	if err := d.finance.RecordTax(ctx, invNo, taxType, value, comments); err != nil {
		return d.errorResponse(ctx, err, "record tax")
	}
	return discord.NewMessageResponse(fmt.Sprintf(
		"✅ Tax recorded for **%s** — %s ₹%s.", invNo, taxType, formatMoney(value, 2)), true)
}

func (d *Dispatcher) cmdScheduleMeet(ctx context.Context, in *discord.Interaction) *discord.Response {
	title := in.Data.Option("title")
	startStr := in.Data.Option("start")
	endStr := in.Data.Option("end")
	if title == "" || startStr == "" || endStr == "" {
		return d.validationFail(ctx, "Missing required fields (title/start/end).", internal.ErrCodeMissingOption)
	}

	start, err := parseMeetTime(startStr)
	if err != nil {
		return discord.NewMessageResponse("❌ Invalid **start** time. Use e.g. 2025-09-01T14:00:00+05:30.", true)
	}
	end, err := parseMeetTime(endStr)
	if err != nil {
		return discord.NewMessageResponse("❌ Invalid **end** time. Use e.g. 2025-09-01T15:00:00+05:30.", true)
	}

	link, err := d.meets.CreateMeeting(ctx, calendar.Meeting{
		Title: title,
		Start: start,
		End:   end,
	})
	if err != nil {
		return d.errorResponse(ctx, err, "schedule meet")
	}

	// Public on purpose: the whole channel should see the link.
	return discord.NewMessageResponse(fmt.Sprintf(
		"✅ **Google Meet Scheduled!**\n📅 **%s**\n🕒 %s → %s\n🔗 %s",
		title, startStr, endStr, link), false)
}

// cmdAuditMeet lists the unique emails the Admin Reports API saw in a Meet
// call. Needs domain-wide delegation, so it is only wired when an admin
// subject is configured.
func (d *Dispatcher) cmdAuditMeet(ctx context.Context, in *discord.Interaction) *discord.Response {
	if d.audit == nil {
		return discord.NewMessageResponse(
			"❌ Meet auditing isn’t configured on this server (Workspace admin subject missing).", true)
	}

	hours := audit.DefaultWindowHours
	if h := in.Data.Option("hours"); h != "" {
		if v, err := strconv.Atoi(h); err == nil && v >= 1 {
			hours = v
		}
	}

	code := audit.ExtractMeetCode(in.Data.Option("meetlink"))
	if code == "" {
		return d.validationFail(ctx,
			"Please provide a valid Google Meet link or code (e.g., https://meet.google.com/abc-defg-hij).",
			internal.ErrCodeMissingOption)
	}

	emails, err := d.audit.MeetAttendance(ctx, code, hours)
	if err != nil {
		return d.errorResponse(ctx, err, "audit Meet")
	}
	if len(emails) == 0 {
		return discord.NewMessageResponse(fmt.Sprintf(
			"ℹ️ No attendees found for meeting `%s` in the last %dh window.", code, hours), true)
	}

	var lines []string
	for i, email := range emails {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, email))
	}
	return discord.NewMessageResponse(fmt.Sprintf(
		"👥 **Meet attendance (unique emails)**\n🧩 Code: `%s`  •  ⏱️ Window: last %dh\n\n%s",
		code, hours, strings.Join(lines, "\n")), true)
}

func parseMeetTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05", s, sheets.IST)
}

func toFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

func orNotProvided(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(not provided)"
	}
	return s
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
