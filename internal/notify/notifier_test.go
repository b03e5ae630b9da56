package notify_test

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
	"github.com/workhq/workplace-bot/internal/core/events"
	"github.com/workhq/workplace-bot/internal/discord"
	"github.com/workhq/workplace-bot/internal/notify"
)

func TestNotify(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Notify Suite")
}

type postedMessage struct {
	channelID string
	msg       *discord.OutboundMessage
}

type mockMessenger struct {
	posted    []postedMessage
	dmChannel string
	dmErr     error
}

func (m *mockMessenger) PostMessage(ctx context.Context, channelID string, msg *discord.OutboundMessage) (string, error) {
	m.posted = append(m.posted, postedMessage{channelID: channelID, msg: msg})
	return "msg-1", nil
}

func (m *mockMessenger) OpenDM(ctx context.Context, userID string) (string, error) {
	if m.dmErr != nil {
		return "", m.dmErr
	}
	return m.dmChannel, nil
}

var _ = Describe("Notifier", func() {
	var (
		cfg       *internal.Config
		messenger *mockMessenger
		bus       *events.EventBus
		ctx       context.Context
	)

	// PublishSync keeps handler ordering deterministic in tests.
	publish := func(event events.Event) {
		Expect(bus.PublishSync(ctx, event)).To(Succeed())
	}

	newNotifier := func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		clock := func() time.Time { return time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC) }
		bus = events.NewEventBus(logger)
		notify.NewNotifier(cfg, messenger, logger, clock).Register(bus)
	}

	BeforeEach(func() {
		cfg = &internal.Config{
			Channels: internal.ChannelConfig{
				Attendance:  "C-ATT",
				LeaveStatus: "C-STATUS",
				Approver:    "C-APPROVER",
				ContentTeam: "C-CT",
				HRRoleID:    "R-HR",
			},
		}
		messenger = &mockMessenger{dmChannel: "DM-1"}
		ctx = context.Background()
		newNotifier()
	})

	Describe("attendance broadcasts", func() {
		It("should post to the attendance channel and DM a receipt", func() {
			publish(events.NewAttendanceRecordedEvent("Asha", "Login", "u1", "", "C-FALLBACK"))

			Expect(messenger.posted).To(HaveLen(2))
			broadcast := messenger.posted[0]
			Expect(broadcast.channelID).To(Equal("C-ATT"))
			Expect(broadcast.msg.Content).To(ContainSubstring("<@u1>"))
			Expect(broadcast.msg.Content).To(ContainSubstring("<@&R-HR>"))
			Expect(messenger.posted[1].channelID).To(Equal("DM-1"))
		})

		It("should only allow the HR role and the employee to be pinged", func() {
			publish(events.NewAttendanceRecordedEvent("Asha", "Login", "u1", "", ""))

			mentions := messenger.posted[0].msg.AllowedMentions
			Expect(mentions).ToNot(BeNil())
			Expect(mentions.Parse).To(BeEmpty())
			Expect(mentions.Roles).To(Equal([]string{"R-HR"}))
			Expect(mentions.Users).To(Equal([]string{"u1"}))
		})

		It("should include the progress text on logout", func() {
			publish(events.NewAttendanceRecordedEvent("Asha", "Logout", "u1", "shipped v2", ""))

			Expect(messenger.posted[0].msg.Content).To(ContainSubstring("**Daily Progress:** shipped v2"))
		})

		It("should skip the DM when the user id is unknown", func() {
			publish(events.NewAttendanceRecordedEvent("Asha", "Login", "", "", ""))

			Expect(messenger.posted).To(HaveLen(1))
		})
	})

	Describe("approval requests", func() {
		It("should post the card with buttons to the approver channel", func() {
			publish(events.NewApprovalRequestedEvent("the card", "leave_approve::id", "leave_reject::id", "C-FALLBACK"))

			Expect(messenger.posted).To(HaveLen(1))
			post := messenger.posted[0]
			Expect(post.channelID).To(Equal("C-APPROVER"))
			Expect(post.msg.Content).To(Equal("the card"))
			buttons := post.msg.Components[0].Components
			Expect(buttons[0].CustomID).To(Equal("leave_approve::id"))
			Expect(buttons[1].CustomID).To(Equal("leave_reject::id"))
		})

		It("should fall back to the approver's DM when no channel is configured", func() {
			cfg.Channels.Approver = ""
			cfg.Channels.ApproverUserID = "u-approver"
			newNotifier()

			publish(events.NewApprovalRequestedEvent("the card", "a", "r", "C-FALLBACK"))

			Expect(messenger.posted[0].channelID).To(Equal("DM-1"))
		})

		It("should fall back to the originating channel as a last resort", func() {
			cfg.Channels.Approver = ""
			newNotifier()

			publish(events.NewApprovalRequestedEvent("the card", "a", "r", "C-FALLBACK"))

			Expect(messenger.posted[0].channelID).To(Equal("C-FALLBACK"))
		})

		It("should propagate a DM failure", func() {
			cfg.Channels.Approver = ""
			cfg.Channels.ApproverUserID = "u-approver"
			messenger.dmErr = errors.New("cannot DM")
			newNotifier()

			err := bus.PublishSync(ctx, events.NewApprovalRequestedEvent("the card", "a", "r", ""))

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("decision broadcasts", func() {
		It("should post leave decisions to the status channel", func() {
			publish(events.NewLeaveDecidedEvent("Asha", "2025-03-12", "2025-03-14", "Travel", "Approved", "Priya", "", "C-FALLBACK"))

			post := messenger.posted[0]
			Expect(post.channelID).To(Equal("C-STATUS"))
			Expect(post.msg.Content).To(ContainSubstring("**Leave Approved**"))
			Expect(post.msg.Content).To(ContainSubstring("**Reviewer:** Priya"))
		})

		It("should append the rejection note to the reason", func() {
			publish(events.NewLeaveDecidedEvent("Asha", "2025-03-12", "2025-03-14", "Travel", "Rejected", "Priya", "Sprint close", ""))

			Expect(messenger.posted[0].msg.Content).To(ContainSubstring("Travel | Rejection Note: Sprint close"))
		})

		It("should prefer the approver channel when no status channel is set", func() {
			cfg.Channels.LeaveStatus = ""
			newNotifier()

			publish(events.NewWFHDecidedEvent("Ravi", "2025-03-12", "Plumber", "Approved", "Priya", "", "C-FALLBACK"))

			Expect(messenger.posted[0].channelID).To(Equal("C-APPROVER"))
		})
	})

	Describe("review decisions", func() {
		It("should tell the content team what was decided", func() {
			publish(events.NewReviewDecidedEvent(
				"asset", "Approved", "Priya", "Looks sharp",
				"Meera", "Hero banner v2", "banner.png", "https://cdn.example.com/banner.png"))

			post := messenger.posted[0]
			Expect(post.channelID).To(Equal("C-CT"))
			Expect(post.msg.Content).To(ContainSubstring("**Asset Review Decision**"))
			Expect(post.msg.Content).To(ContainSubstring("🏷️ **Name:** Hero banner v2"))
			Expect(post.msg.Content).To(ContainSubstring("[banner.png](https://cdn.example.com/banner.png)"))
		})
	})
})
