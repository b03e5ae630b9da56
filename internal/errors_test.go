package internal_test

import (
	"errors"
	"fmt"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/workhq/workplace-bot/internal"
)

func TestInternal(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Internal Suite")
}

var _ = Describe("AppError", func() {
	Describe("IsAppError", func() {
		It("should match a bare app error", func() {
			err := internal.NewValidationError("bad input", internal.ErrCodeInvalidDate)

			appErr, ok := internal.IsAppError(err)

			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidDate))
		})

		It("should match through fmt.Errorf wrapping", func() {
			inner := internal.NewUpstreamError("Spreadsheet read failed", internal.ErrCodeSheetsUnavailable, errors.New("503"))
			err := fmt.Errorf("load ledger: %w", inner)

			appErr, ok := internal.IsAppError(err)

			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeUpstream))
			Expect(appErr.Code).To(Equal(internal.ErrCodeSheetsUnavailable))
		})

		It("should not match plain errors", func() {
			_, ok := internal.IsAppError(errors.New("boom"))

			Expect(ok).To(BeFalse())
		})
	})

	Describe("UserMessage", func() {
		It("should name the category and cause for upstream failures", func() {
			err := internal.NewUpstreamError("Spreadsheet write failed", internal.ErrCodeSheetsUnavailable,
				errors.New("googleapi: Error 503"))

			Expect(err.UserMessage()).To(Equal("❌ Spreadsheet write failed (UPSTREAM_ERROR: googleapi: Error 503)"))
		})

		It("should keep validation messages plain", func() {
			err := internal.NewValidationError("to date is before from date", internal.ErrCodeInvalidDays)

			Expect(err.UserMessage()).To(Equal("❌ to date is before from date"))
		})
	})

	It("should expose the signature sentinel as unauthorized", func() {
		Expect(internal.ErrInvalidSignature.Type).To(Equal(internal.ErrorTypeUnauthorized))
		Expect(internal.ErrInvalidSignature.StatusCode).To(Equal(401))
	})
})
