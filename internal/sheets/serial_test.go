package sheets_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/workhq/workplace-bot/internal/sheets"
)

func TestSheets(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Sheets Suite")
}

var _ = Describe("Serial dates", func() {
	Describe("SerialToTime", func() {
		It("should map serial zero to the epoch", func() {
			Expect(sheets.SerialToTime(0)).To(Equal(time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)))
		})

		It("should convert a whole-day serial", func() {
			Expect(sheets.SerialToTime(45000)).To(Equal(time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC)))
		})

		It("should interpret the fraction as time of day", func() {
			Expect(sheets.SerialToTime(45000.5)).To(Equal(time.Date(2023, time.March, 15, 12, 0, 0, 0, time.UTC)))
		})
	})

	Describe("TimeToSerial", func() {
		It("should invert SerialToTime", func() {
			serial := sheets.TimeToSerial(time.Date(2025, time.March, 5, 6, 0, 0, 0, time.UTC))
			Expect(sheets.SerialToTime(serial)).To(Equal(time.Date(2025, time.March, 5, 6, 0, 0, 0, time.UTC)))
		})
	})

	Describe("Timestamp", func() {
		It("should render in IST", func() {
			utc := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
			Expect(sheets.Timestamp(utc)).To(Equal("2025-01-01 05:30:00"))
		})
	})
})

var _ = Describe("ParseCellDate", func() {
	Context("with numeric cells", func() {
		It("should treat a float64 as a serial", func() {
			t, ok := sheets.ParseCellDate(45000.0, nil)
			Expect(ok).To(BeTrue())
			Expect(t).To(Equal(time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC)))
		})

		It("should treat a numeric string as a serial", func() {
			t, ok := sheets.ParseCellDate("45000", nil)
			Expect(ok).To(BeTrue())
			Expect(t).To(Equal(time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC)))
		})
	})

	Context("with text cells", func() {
		It("should parse the canonical timestamp layout in IST", func() {
			t, ok := sheets.ParseCellDate("2025-03-01 09:30:00", nil)
			Expect(ok).To(BeTrue())
			Expect(t).To(Equal(time.Date(2025, time.March, 1, 9, 30, 0, 0, sheets.IST)))
		})

		It("should parse the legacy space-separated layout", func() {
			t, ok := sheets.ParseCellDate("2024 07 01-09:15:00", nil)
			Expect(ok).To(BeTrue())
			Expect(t).To(Equal(time.Date(2024, time.July, 1, 9, 15, 0, 0, sheets.IST)))
		})

		It("should parse a bare date", func() {
			t, ok := sheets.ParseCellDate("2025-03-01", nil)
			Expect(ok).To(BeTrue())
			Expect(t).To(Equal(time.Date(2025, time.March, 1, 0, 0, 0, 0, sheets.IST)))
		})
	})

	Context("with unusable cells", func() {
		It("should report false for nil", func() {
			_, ok := sheets.ParseCellDate(nil, nil)
			Expect(ok).To(BeFalse())
		})

		It("should report false for an empty string", func() {
			_, ok := sheets.ParseCellDate("   ", nil)
			Expect(ok).To(BeFalse())
		})

		It("should report false for free text", func() {
			_, ok := sheets.ParseCellDate("Timestamp", nil)
			Expect(ok).To(BeFalse())
		})
	})
})
