package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeAttendanceRecorded = "attendance.recorded"
	EventTypeApprovalRequested  = "approval.requested"
	EventTypeLeaveDecided       = "leave.decided"
	EventTypeWFHDecided         = "wfh.decided"
	EventTypeReviewSubmitted    = "review.submitted"
	EventTypeReviewDecided      = "review.decided"
)

type AttendanceRecordedEvent struct {
	BaseEvent
	Name              string `json:"name"`
	Action            string `json:"action"`
	UserID            string `json:"user_id"`
	Progress          string `json:"progress,omitempty"`
	FallbackChannelID string `json:"fallback_channel_id,omitempty"`
}

func NewAttendanceRecordedEvent(name, action, userID, progress, fallbackChannelID string) *AttendanceRecordedEvent {
	return &AttendanceRecordedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAttendanceRecorded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"name":    name,
				"action":  action,
				"user_id": userID,
			},
		},
		Name:              name,
		Action:            action,
		UserID:            userID,
		Progress:          progress,
		FallbackChannelID: fallbackChannelID,
	}
}

// ApprovalRequestedEvent carries a rendered request card plus the component
// custom IDs that the approver's Approve/Reject buttons must use.
type ApprovalRequestedEvent struct {
	BaseEvent
	CardContent       string `json:"card_content"`
	ApproveCustomID   string `json:"approve_custom_id"`
	RejectCustomID    string `json:"reject_custom_id"`
	FallbackChannelID string `json:"fallback_channel_id,omitempty"`
}

func NewApprovalRequestedEvent(cardContent, approveCustomID, rejectCustomID, fallbackChannelID string) *ApprovalRequestedEvent {
	return &ApprovalRequestedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeApprovalRequested,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"approve_custom_id": approveCustomID,
				"reject_custom_id":  rejectCustomID,
			},
		},
		CardContent:       cardContent,
		ApproveCustomID:   approveCustomID,
		RejectCustomID:    rejectCustomID,
		FallbackChannelID: fallbackChannelID,
	}
}

type LeaveDecidedEvent struct {
	BaseEvent
	Name              string `json:"name"`
	FromDate          string `json:"from_date"`
	ToDate            string `json:"to_date"`
	Reason            string `json:"reason"`
	Decision          string `json:"decision"`
	Reviewer          string `json:"reviewer"`
	Note              string `json:"note,omitempty"`
	FallbackChannelID string `json:"fallback_channel_id,omitempty"`
}

func NewLeaveDecidedEvent(name, fromDate, toDate, reason, decision, reviewer, note, fallbackChannelID string) *LeaveDecidedEvent {
	return &LeaveDecidedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeLeaveDecided,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"name":     name,
				"decision": decision,
				"reviewer": reviewer,
			},
		},
		Name:              name,
		FromDate:          fromDate,
		ToDate:            toDate,
		Reason:            reason,
		Decision:          decision,
		Reviewer:          reviewer,
		Note:              note,
		FallbackChannelID: fallbackChannelID,
	}
}

type WFHDecidedEvent struct {
	BaseEvent
	Name              string `json:"name"`
	Date              string `json:"date"`
	Reason            string `json:"reason"`
	Decision          string `json:"decision"`
	Reviewer          string `json:"reviewer"`
	Note              string `json:"note,omitempty"`
	FallbackChannelID string `json:"fallback_channel_id,omitempty"`
}

func NewWFHDecidedEvent(name, date, reason, decision, reviewer, note, fallbackChannelID string) *WFHDecidedEvent {
	return &WFHDecidedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeWFHDecided,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"name":     name,
				"decision": decision,
				"reviewer": reviewer,
			},
		},
		Name:              name,
		Date:              date,
		Reason:            reason,
		Decision:          decision,
		Reviewer:          reviewer,
		Note:              note,
		FallbackChannelID: fallbackChannelID,
	}
}

type ReviewSubmittedEvent struct {
	BaseEvent
	Kind            string `json:"kind"` // "content" or "asset"
	CardContent     string `json:"card_content"`
	ApproveCustomID string `json:"approve_custom_id"`
	RejectCustomID  string `json:"reject_custom_id"`
}

func NewReviewSubmittedEvent(kind, cardContent, approveCustomID, rejectCustomID string) *ReviewSubmittedEvent {
	return &ReviewSubmittedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeReviewSubmitted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"kind": kind,
			},
		},
		Kind:            kind,
		CardContent:     cardContent,
		ApproveCustomID: approveCustomID,
		RejectCustomID:  rejectCustomID,
	}
}

type ReviewDecidedEvent struct {
	BaseEvent
	Kind      string `json:"kind"`
	Decision  string `json:"decision"`
	Reviewer  string `json:"reviewer"`
	Comments  string `json:"comments,omitempty"`
	Requester string `json:"requester"`
	Subject   string `json:"subject"`
	Filename  string `json:"filename"`
	FileURL   string `json:"file_url"`
}

func NewReviewDecidedEvent(kind, decision, reviewer, comments, requester, subject, filename, fileURL string) *ReviewDecidedEvent {
	return &ReviewDecidedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeReviewDecided,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"kind":     kind,
				"decision": decision,
				"reviewer": reviewer,
			},
		},
		Kind:      kind,
		Decision:  decision,
		Reviewer:  reviewer,
		Comments:  comments,
		Requester: requester,
		Subject:   subject,
		Filename:  filename,
		FileURL:   fileURL,
	}
}
