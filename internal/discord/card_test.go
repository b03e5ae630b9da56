package discord_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/workhq/workplace-bot/internal/discord"
)

var _ = Describe("Approval cards", func() {
	Describe("LeaveCard", func() {
		It("should round-trip through render and parse", func() {
			card := discord.LeaveCard{
				Name:   "Asha Rao",
				From:   "2025-03-01",
				To:     "2025-03-03",
				Days:   3,
				Reason: "Family function",
			}

			parsed := discord.ParseLeaveCard(card.Render())

			Expect(parsed).To(Equal(card))
		})

		It("should render a missing reason as (not provided)", func() {
			card := discord.LeaveCard{Name: "Asha", From: "2025-03-01", To: "2025-03-01", Days: 1}

			rendered := card.Render()

			Expect(rendered).To(ContainSubstring("💬 **Reason:** (not provided)"))
			Expect(discord.ParseLeaveCard(rendered).Reason).To(Equal("(not provided)"))
		})

		It("should still parse after a status footer was appended", func() {
			card := discord.LeaveCard{Name: "Asha", From: "2025-03-01", To: "2025-03-03", Days: 3, Reason: "Travel"}
			content := card.Render() + discord.StatusFooter("Rejected", "Priya", "2025-03-04 10:00:00", "Team is short-staffed")

			parsed := discord.ParseLeaveCard(content)

			Expect(parsed.Name).To(Equal("Asha"))
			Expect(parsed.From).To(Equal("2025-03-01"))
			Expect(parsed.To).To(Equal("2025-03-03"))
			Expect(parsed.Days).To(Equal(3))
			Expect(parsed.Reason).To(Equal("Travel"))
		})

		It("should parse older cards without the emoji marker", func() {
			content := "**Leave Request from Asha**\n🗓️ **From:** 2025-03-01\n🗓️ **To:** 2025-03-02\n🗓️ **Days:** 2\n💬 **Reason:** Travel"

			parsed := discord.ParseLeaveCard(content)

			Expect(parsed.Name).To(Equal("Asha"))
			Expect(parsed.Days).To(Equal(2))
		})
	})

	Describe("WFHCard", func() {
		It("should round-trip through render and parse", func() {
			card := discord.WFHCard{Name: "Ravi", Date: "2025-03-05", Reason: "Plumber visit"}

			Expect(discord.ParseWFHCard(card.Render())).To(Equal(card))
		})
	})

	Describe("ContentCard", func() {
		It("should round-trip including the file link", func() {
			card := discord.ContentCard{
				Requester: "Meera",
				Topic:     "Q2 launch blog",
				Filename:  "draft.docx",
				FileURL:   "https://cdn.example.com/draft.docx",
			}

			Expect(discord.ParseContentCard(card.Render())).To(Equal(card))
		})
	})

	Describe("AssetCard", func() {
		It("should round-trip including the file link", func() {
			card := discord.AssetCard{
				Requester: "Meera",
				AssetName: "Hero banner v2",
				Filename:  "banner.png",
				FileURL:   "https://cdn.example.com/banner.png",
			}

			Expect(discord.ParseAssetCard(card.Render())).To(Equal(card))
		})
	})

	Describe("StatusFooter", func() {
		It("should include the decision, reviewer and timestamp", func() {
			footer := discord.StatusFooter("Approved", "Priya", "2025-03-04 10:00:00", "")

			Expect(footer).To(Equal("\n\n**Status:** Approved by **Priya** at **2025-03-04 10:00:00 IST**"))
		})

		It("should append the rejection note when present", func() {
			footer := discord.StatusFooter("Rejected", "Priya", "2025-03-04 10:00:00", "Too many overlapping leaves")

			Expect(footer).To(ContainSubstring("📝 **Rejection Note:** Too many overlapping leaves"))
		})
	})
})
