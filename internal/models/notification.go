package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types
const (
	NotificationTypeRequest = "request" // shown to the course owner with accept/reject actions
	NotificationTypeInfo    = "info"    // one-shot result message shown to the requester
)

// Notification statuses. Request notifications move pending -> accepted|rejected
// exactly once; info notifications are unread until dismissed.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
	StatusUnread   = "unread"
	StatusRead     = "read"
)

// Notification actions
const (
	ActionAccept  = "accept"
	ActionReject  = "reject"
	ActionDismiss = "dismiss"
)

// Notification is either a pending cross-user course request or an
// informational result message, stored in MongoDB
type Notification struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Sender    uint               `json:"sender" bson:"sender"`
	Recipient uint               `json:"recipient" bson:"recipient"`
	Course    primitive.ObjectID `json:"course" bson:"course"`
	Type      string             `json:"type" bson:"type"`
	Status    string             `json:"status" bson:"status"`
	Message   string             `json:"message,omitempty" bson:"message,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// EnrichedNotification includes the sender's name and the course title
type EnrichedNotification struct {
	Notification
	SenderName  string `json:"sender_name"`
	CourseTitle string `json:"course_title"`
}

type RequestCourseRequest struct {
	CourseID string `json:"course_id" validate:"required"`
}

type NotificationActionRequest struct {
	Action string `json:"action" validate:"required,oneof=accept reject dismiss"`
}
