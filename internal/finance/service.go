package finance

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/workhq/workplace-bot/internal/sheets"
)

const (
	invoicesRange = "'Invoices'!A:E"
	clearsRange   = "'Invoice Clears'!A:D"
	taxesRange    = "'Taxes'!A:E"
)

type Gateway interface {
	Append(ctx context.Context, readRange string, mode sheets.ValueInput, row []interface{}) error
	Read(ctx context.Context, readRange string) ([][]interface{}, error)
}

// Service tracks invoices, clearances and taxes as append-only ledgers.
// Nothing is ever updated in place: outstanding amounts are recomputed from
// the full ledgers on every read.
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

// RecordInvoice appends to the invoices ledger: [ts, company, invoice_no, value, comments].
func (s *Service) RecordInvoice(ctx context.Context, company, invoiceNo string, value float64, comments string) error {
	row := []interface{}{sheets.Timestamp(s.clock()), company, invoiceNo, value, comments}
	if err := s.gateway.Append(ctx, invoicesRange, sheets.UserEntered, row); err != nil {
		return err
	}
	s.logger.Info("invoice recorded", "invoice_no", invoiceNo, "company", company, "value", value)
	return nil
}

// ClearInvoice appends to the clearances ledger: [ts, invoice_no, value, comments].
func (s *Service) ClearInvoice(ctx context.Context, invoiceNo string, value float64, comments string) error {
	row := []interface{}{sheets.Timestamp(s.clock()), invoiceNo, value, comments}
	if err := s.gateway.Append(ctx, clearsRange, sheets.UserEntered, row); err != nil {
		return err
	}
	s.logger.Info("invoice clearance recorded", "invoice_no", invoiceNo, "value", value)
	return nil
}

// RecordTax appends to the taxes ledger: [ts, invoice_no, tax_type, value, comments].
func (s *Service) RecordTax(ctx context.Context, invoiceNo, taxType string, value float64, comments string) error {
	row := []interface{}{sheets.Timestamp(s.clock()), invoiceNo, taxType, value, comments}
	if err := s.gateway.Append(ctx, taxesRange, sheets.UserEntered, row); err != nil {
		return err
	}
	s.logger.Info("tax recorded", "invoice_no", invoiceNo, "tax_type", taxType, "value", value)
	return nil
}

// Invoice is the aggregated view of one invoice number across all ledgers.
type Invoice struct {
	InvoiceNo   string
	Company     string
	Total       float64
	Cleared     float64
	Outstanding float64
}

// Summary is the whole-book financial status.
type Summary struct {
	TotalInvoiced        float64
	TotalCleared         float64
	OutstandingTotal     float64
	TaxesByType          map[string]float64
	OutstandingByInvoice map[string]float64
}

// Status recomputes the full-book summary from the three ledgers.
func (s *Service) Status(ctx context.Context) (Summary, error) {
	invoices, err := s.invoiceIndex(ctx)
	if err != nil {
		return Summary{}, err
	}

	taxRows, err := s.gateway.Read(ctx, taxesRange)
	if err != nil {
		return Summary{}, err
	}

	sum := Summary{
		TaxesByType:          make(map[string]float64),
		OutstandingByInvoice: make(map[string]float64),
	}
	for _, inv := range invoices {
		sum.TotalInvoiced += inv.Total
		sum.TotalCleared += inv.Cleared
		sum.OutstandingByInvoice[inv.InvoiceNo] = inv.Outstanding
	}
	if sum.OutstandingTotal = sum.TotalInvoiced - sum.TotalCleared; sum.OutstandingTotal < 0 {
		sum.OutstandingTotal = 0
	}

	for _, row := range taxRows[headerOffset(taxRows, 3):] {
		if len(row) < 4 {
			continue
		}
		taxType := cellString(row, 2)
		if taxType == "" {
			taxType = "Unspecified"
		}
		sum.TaxesByType[taxType] += toNumber(row[3])
	}
	return sum, nil
}

// Lookup returns the aggregated view of a single invoice number, with found
// false when it appears in no ledger.
func (s *Service) Lookup(ctx context.Context, invoiceNo string) (Invoice, bool, error) {
	invoices, err := s.invoiceIndex(ctx)
	if err != nil {
		return Invoice{}, false, err
	}
	for _, inv := range invoices {
		if strings.EqualFold(inv.InvoiceNo, strings.TrimSpace(invoiceNo)) {
			return inv, true, nil
		}
	}
	return Invoice{}, false, nil
}

// ForAutocomplete returns up to limit invoices matching the query substring,
// ordered by outstanding amount descending so the invoices that still need
// clearing surface first.
func (s *Service) ForAutocomplete(ctx context.Context, query string, limit int) ([]Invoice, error) {
	if limit <= 0 {
		limit = 25
	}
	invoices, err := s.invoiceIndex(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	var matched []Invoice
	for _, inv := range invoices {
		if query == "" ||
			strings.Contains(strings.ToLower(inv.InvoiceNo), query) ||
			strings.Contains(strings.ToLower(inv.Company), query) {
			matched = append(matched, inv)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Outstanding != matched[j].Outstanding {
			return matched[i].Outstanding > matched[j].Outstanding
		}
		return matched[i].InvoiceNo < matched[j].InvoiceNo
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// invoiceIndex scans the invoices and clears ledgers and aggregates per
// invoice number. Outstanding is floored at zero: over-clearing an invoice
// must not produce negative debt.
func (s *Service) invoiceIndex(ctx context.Context) ([]Invoice, error) {
	invRows, err := s.gateway.Read(ctx, invoicesRange)
	if err != nil {
		return nil, err
	}
	clearRows, err := s.gateway.Read(ctx, clearsRange)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]float64)
	companies := make(map[string]string)
	var order []string
	for _, row := range invRows[headerOffset(invRows, 3):] {
		if len(row) < 4 {
			continue
		}
		invNo := cellString(row, 2)
		if invNo == "" {
			continue
		}
		if _, seen := totals[invNo]; !seen {
			order = append(order, invNo)
			companies[invNo] = cellString(row, 1)
		}
		totals[invNo] += toNumber(row[3])
	}

	cleared := make(map[string]float64)
	for _, row := range clearRows[headerOffset(clearRows, 2):] {
		if len(row) < 3 {
			continue
		}
		invNo := cellString(row, 1)
		if invNo == "" {
			continue
		}
		cleared[invNo] += toNumber(row[2])
	}

	invoices := make([]Invoice, 0, len(order))
	for _, invNo := range order {
		out := totals[invNo] - cleared[invNo]
		if out < 0 {
			out = 0
		}
		invoices = append(invoices, Invoice{
			InvoiceNo:   invNo,
			Company:     companies[invNo],
			Total:       totals[invNo],
			Cleared:     cleared[invNo],
			Outstanding: out,
		})
	}
	return invoices, nil
}

// headerOffset reports 1 when the first row looks like a header, detected by
// a non-numeric string where the value column should be.
func headerOffset(rows [][]interface{}, valueCol int) int {
	if len(rows) == 0 || len(rows[0]) <= valueCol {
		return 0
	}
	if s, ok := rows[0][valueCol].(string); ok {
		if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 1
		}
	}
	return 0
}

func toNumber(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
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
