package discord_test

import (
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/workhq/workplace-bot/internal/discord"
)

var _ = Describe("Response builders", func() {
	Describe("NewMessageResponse", func() {
		It("should set the ephemeral flag when asked", func() {
			resp := discord.NewMessageResponse("hi", true)

			Expect(resp.Type).To(Equal(discord.ResponseChannelMessage))
			Expect(resp.Data.Flags).To(Equal(discord.FlagEphemeral))
		})

		It("should leave public messages unflagged", func() {
			resp := discord.NewMessageResponse("hi", false)

			Expect(resp.Data.Flags).To(BeZero())
		})
	})

	Describe("NewAutocompleteResponse", func() {
		It("should clamp to 25 choices", func() {
			var choices []discord.Choice
			for i := 0; i < 40; i++ {
				choices = append(choices, discord.Choice{Name: fmt.Sprintf("c%d", i), Value: "v"})
			}

			resp := discord.NewAutocompleteResponse(choices)

			Expect(resp.Type).To(Equal(discord.ResponseAutocompleteResult))
			Expect(resp.Data.Choices).To(HaveLen(25))
		})

		It("should truncate labels to 100 runes without splitting one", func() {
			long := strings.Repeat("न", 150)

			resp := discord.NewAutocompleteResponse([]discord.Choice{{Name: long, Value: "v"}})

			Expect([]rune(resp.Data.Choices[0].Name)).To(HaveLen(100))
		})
	})

	Describe("ApproveRejectRow", func() {
		It("should build a success and a danger button", func() {
			row := discord.ApproveRejectRow("ok_id", "no_id", false)

			Expect(row.Type).To(Equal(discord.ComponentActionRow))
			Expect(row.Components[0].Style).To(Equal(discord.ButtonStyleSuccess))
			Expect(row.Components[0].CustomID).To(Equal("ok_id"))
			Expect(row.Components[1].Style).To(Equal(discord.ButtonStyleDanger))
		})

		It("should disable both buttons together", func() {
			row := discord.ApproveRejectRow("ok_id", "no_id", true)

			Expect(row.Components[0].Disabled).To(BeTrue())
			Expect(row.Components[1].Disabled).To(BeTrue())
		})
	})
})
