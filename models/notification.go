package models

import "time"

// Notification type constants
const (
	NotificationTypeRequestCreated   = "REQUEST_CREATED"
	NotificationTypeStatusChanged    = "STATUS_CHANGED"
	NotificationTypeResponseRecorded = "RESPONSE_RECORDED"
)

type Notification struct {
	Notification_ID   int       `json:"notificationId" goqu:"skipinsert"`
	User_ID           int       `json:"userId"`
	Notification_Type string    `json:"notificationType"`
	Message           string    `json:"message"`
	Is_Read           bool      `json:"isRead" goqu:"skipinsert"`
	Created_At        time.Time `json:"createdAt" goqu:"skipinsert"`
}
