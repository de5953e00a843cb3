package domain

import "time"

// NotificationType categorizes a notification by its originating subsystem.
type NotificationType string

const (
	NotificationTypeTransaction NotificationType = "transaction"
	NotificationTypeSecurity    NotificationType = "security"
	NotificationTypeSystem      NotificationType = "system"
	NotificationTypeInfo        NotificationType = "info"
)

// NotificationPriority controls how aggressively a new notification is
// surfaced: high raises an urgent alert, medium a lesser one, low only moves
// the unread badge.
type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "low"
	NotificationPriorityMedium NotificationPriority = "medium"
	NotificationPriorityHigh   NotificationPriority = "high"
)

// Notification mirrors a single record returned by the notification
// endpoints. ID is the record's identity; a collection never holds two
// records with the same ID.
type Notification struct {
	ID        string               `json:"id"`
	Type      NotificationType     `json:"type"`
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	Priority  NotificationPriority `json:"priority"`
	Read      bool                 `json:"read"`
	CreatedAt time.Time            `json:"created_at"`
	Data      map[string]any       `json:"data,omitempty"`
}

// NotificationList is the full snapshot the backend returns on each fetch.
// UnreadCount is the server's own tally and may lag the items it ships with.
type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
}
