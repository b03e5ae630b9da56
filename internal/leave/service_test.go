package leave_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/workhq/workplace-bot/internal"
	"github.com/workhq/workplace-bot/internal/leave"
	"github.com/workhq/workplace-bot/internal/sheets"
)

func TestLeave(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Leave Suite")
}

// Mock spreadsheet gateway for testing
type mockGateway struct {
	rows      map[string][][]interface{}
	appended  map[string][][]interface{}
	modes     map[string][]sheets.ValueInput
	readErr   error
	appendErr error
}

func newMockGateway() *mockGateway {
	return &mockGateway{
		rows:     make(map[string][][]interface{}),
		appended: make(map[string][][]interface{}),
		modes:    make(map[string][]sheets.ValueInput),
	}
}

func (m *mockGateway) Append(ctx context.Context, readRange string, mode sheets.ValueInput, row []interface{}) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.appended[readRange] = append(m.appended[readRange], row)
	m.modes[readRange] = append(m.modes[readRange], mode)
	m.rows[readRange] = append(m.rows[readRange], row)
	return nil
}

func (m *mockGateway) Read(ctx context.Context, readRange string) ([][]interface{}, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.rows[readRange], nil
}

var _ = Describe("DaysBetween", func() {
	It("should count the inclusive range", func() {
		days, err := leave.DaysBetween("2025-03-01", "2025-03-03")

		Expect(err).ToNot(HaveOccurred())
		Expect(days).To(Equal(3))
	})

	It("should count a single day when both dates match", func() {
		days, err := leave.DaysBetween("2025-03-01", "2025-03-01")

		Expect(err).ToNot(HaveOccurred())
		Expect(days).To(Equal(1))
	})

	It("should reject a malformed from date", func() {
		_, err := leave.DaysBetween("01/03/2025", "2025-03-03")

		Expect(err).To(HaveOccurred())
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidDate))
	})

	It("should reject a reversed range", func() {
		_, err := leave.DaysBetween("2025-03-05", "2025-03-01")

		Expect(err).To(HaveOccurred())
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidDays))
	})
})

var _ = Describe("LeaveService", func() {
	const (
		requestsRange  = "'Leave Requests'!A:G"
		decisionsRange = "'Leave Decisions'!A:H"
		wfhRange       = "'WFH Requests'!A:E"
	)

	var (
		gateway *mockGateway
		service *leave.Service
		now     time.Time
		ctx     context.Context
	)

	BeforeEach(func() {
		gateway = newMockGateway()
		now = time.Date(2025, time.March, 10, 10, 0, 0, 0, sheets.IST)
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = leave.NewService(gateway, logger, func() time.Time { return now })
		ctx = context.Background()
	})

	Describe("SubmitLeave", func() {
		It("should store the request with a generated id and computed days", func() {
			req, err := service.SubmitLeave(ctx, "Asha", "2025-03-12", "2025-03-14", "  Family function ")

			Expect(err).ToNot(HaveOccurred())
			Expect(req.ID).ToNot(BeEmpty())
			Expect(req.Days).To(Equal(3))
			Expect(req.Reason).To(Equal("Family function"))

			Expect(gateway.appended[requestsRange]).To(HaveLen(1))
			row := gateway.appended[requestsRange][0]
			Expect(row[0]).To(Equal("2025-03-10 10:00:00"))
			Expect(row[1]).To(Equal(req.ID))
			Expect(row[5]).To(Equal(3))
			Expect(gateway.modes[requestsRange][0]).To(Equal(sheets.Raw))
		})

		It("should reject invalid dates without writing anything", func() {
			_, err := service.SubmitLeave(ctx, "Asha", "soon", "2025-03-14", "")

			Expect(err).To(HaveOccurred())
			Expect(gateway.appended[requestsRange]).To(BeEmpty())
		})
	})

	Describe("FindLeaveRequest", func() {
		It("should find a stored request by id", func() {
			req, err := service.SubmitLeave(ctx, "Asha", "2025-03-12", "2025-03-14", "Travel")
			Expect(err).ToNot(HaveOccurred())

			found, ok, err := service.FindLeaveRequest(ctx, req.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(found).To(Equal(req))
		})

		It("should report not found for an unknown id", func() {
			_, ok, err := service.FindLeaveRequest(ctx, "nope")

			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("should short-circuit on an empty id", func() {
			gateway.readErr = errors.New("should not be read")

			_, ok, err := service.FindLeaveRequest(ctx, "")

			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})

	Describe("RecordLeaveDecision", func() {
		It("should fold a rejection note into the stored reason", func() {
			req := leave.Request{Name: "Asha", From: "2025-03-12", To: "2025-03-14", Days: 3, Reason: "Travel"}

			err := service.RecordLeaveDecision(ctx, req, leave.DecisionRejected, "Priya", "Sprint close")

			Expect(err).ToNot(HaveOccurred())
			row := gateway.appended[decisionsRange][0]
			Expect(row[4]).To(Equal("Travel | Rejection Note: Sprint close"))
			Expect(row[5]).To(Equal(leave.DecisionRejected))
			Expect(row[6]).To(Equal("Priya"))
			Expect(row[7]).To(Equal(3))
		})

		It("should keep the reason untouched without a note", func() {
			req := leave.Request{Name: "Asha", From: "2025-03-12", To: "2025-03-14", Days: 3, Reason: "Travel"}

			err := service.RecordLeaveDecision(ctx, req, leave.DecisionApproved, "Priya", "")

			Expect(err).ToNot(HaveOccurred())
			Expect(gateway.appended[decisionsRange][0][4]).To(Equal("Travel"))
		})
	})

	Describe("SubmitWFH", func() {
		It("should store the request for a valid date", func() {
			req, err := service.SubmitWFH(ctx, "Ravi", "2025-03-12", "Plumber visit")

			Expect(err).ToNot(HaveOccurred())
			Expect(req.ID).ToNot(BeEmpty())
			Expect(gateway.appended[wfhRange]).To(HaveLen(1))
		})

		It("should reject a malformed date", func() {
			_, err := service.SubmitWFH(ctx, "Ravi", "tomorrow", "")

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidDate))
		})
	})

	Describe("ApprovedThisMonth", func() {
		It("should count month overlap days for approved decisions only", func() {
			gateway.rows[decisionsRange] = [][]interface{}{
				{"Timestamp", "Name", "From", "To", "Reason", "Decision", "Reviewer", "Days"},
				// straddles the month boundary: only Mar 1-2 count
				{"2025-02-25 10:00:00", "Asha", "2025-02-27", "2025-03-02", "Travel", "Approved", "Priya", 4},
				{"2025-03-04 10:00:00", "Asha", "2025-03-05", "2025-03-07", "Family", "Approved", "Priya", 3},
				{"2025-03-04 11:00:00", "Asha", "2025-03-20", "2025-03-21", "Errand", "Rejected", "Priya", 2},
				{"2025-03-04 12:00:00", "Ravi", "2025-03-05", "2025-03-06", "Travel", "Approved", "Priya", 2},
			}

			count, totalDays, details, err := service.ApprovedThisMonth(ctx, "asha")

			Expect(err).ToNot(HaveOccurred())
			Expect(count).To(Equal(2))
			Expect(totalDays).To(Equal(5))
			Expect(details).To(HaveLen(2))
			Expect(details[0].OverlapDays).To(Equal(2))
			Expect(details[1].OverlapDays).To(Equal(3))
		})

		It("should read serial date cells", func() {
			from := sheets.TimeToSerial(time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC))
			to := sheets.TimeToSerial(time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC))
			gateway.rows[decisionsRange] = [][]interface{}{
				{"2025-03-04 10:00:00", "Asha", from, to, "Family", "Approved", "Priya", 3},
			}

			count, totalDays, _, err := service.ApprovedThisMonth(ctx, "Asha")

			Expect(err).ToNot(HaveOccurred())
			Expect(count).To(Equal(1))
			Expect(totalDays).To(Equal(3))
		})

		It("should return zeros on an empty tab", func() {
			count, totalDays, details, err := service.ApprovedThisMonth(ctx, "Asha")

			Expect(err).ToNot(HaveOccurred())
			Expect(count).To(BeZero())
			Expect(totalDays).To(BeZero())
			Expect(details).To(BeEmpty())
		})
	})
})
