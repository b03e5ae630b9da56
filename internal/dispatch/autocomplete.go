package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/workhq/workplace-bot/internal/discord"
)

func (d *Dispatcher) handleAutocomplete(ctx context.Context, in *discord.Interaction) *discord.Response {
	cmd := strings.ToLower(in.Data.Name)
	focused, ok := in.Data.FocusedOption()
	if !ok {
		return discord.NewAutocompleteResponse(nil)
	}
	typed := strings.TrimSpace(fmt.Sprintf("%v", valueOrEmpty(focused.Value)))

	switch {
	case cmd == "leavecount" && focused.Name == "name":
		return d.autocompleteEmployeeNames(ctx, typed)

	case (cmd == "clearinvoice" || cmd == "recordtax") && focused.Name == "invoicenumber":
		return d.autocompleteInvoices(ctx, typed)

	case cmd == "wfh" && focused.Name == "date":
		if !d.channelAllowed(cmd, in.ChannelID) {
			return discord.NewAutocompleteResponse(nil)
		}
		return discord.NewAutocompleteResponse(dateChoices(d.nowIST(), 14))

	case cmd == "leaverequest":
		// Date suggestions only where the command itself may run.
		if !d.channelAllowed(cmd, in.ChannelID) {
			return discord.NewAutocompleteResponse(nil)
		}
		switch focused.Name {
		case "from":
			return discord.NewAutocompleteResponse(dateChoices(d.nowIST(), 25))
		case "to":
			start := d.nowIST()
			if from, err := parseISODate(in.Data.Option("from")); err == nil {
				start = from
			}
			return discord.NewAutocompleteResponse(dateChoices(start, 25))
		}
	}

	return discord.NewAutocompleteResponse(nil)
}

func (d *Dispatcher) autocompleteEmployeeNames(ctx context.Context, typed string) *discord.Response {
	names, err := d.attendance.EmployeesThisMonth(ctx, 25)
	if err != nil {
		d.logger.Warn("employee autocomplete failed", "error", err)
		return discord.NewAutocompleteResponse(nil)
	}

	query := strings.ToLower(typed)
	var choices []discord.Choice
	for _, name := range names {
		if query != "" && !strings.Contains(strings.ToLower(name), query) {
			continue
		}
		choices = append(choices, discord.Choice{Name: name, Value: name})
	}
	return discord.NewAutocompleteResponse(choices)
}

// autocompleteInvoices suggests invoice numbers labeled with outstanding and
// cleared amounts so the approver can see the state at a glance.
func (d *Dispatcher) autocompleteInvoices(ctx context.Context, typed string) *discord.Response {
	invoices, err := d.finance.ForAutocomplete(ctx, typed, 25)
	if err != nil {
		d.logger.Warn("invoice autocomplete failed", "error", err)
		return discord.NewAutocompleteResponse(nil)
	}

	var choices []discord.Choice
	for _, inv := range invoices {
		choices = append(choices, discord.Choice{
			Name: fmt.Sprintf("%s — %s (Out: ₹%s, Clr: ₹%s)",
				inv.InvoiceNo, inv.Company,
				formatMoney(inv.Outstanding, 0), formatMoney(inv.Cleared, 0)),
			Value: inv.InvoiceNo,
		})
	}
	return discord.NewAutocompleteResponse(choices)
}

func valueOrEmpty(v interface{}) interface{} {
	if v == nil {
		return ""
	}
	return v
}
