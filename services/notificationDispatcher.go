package services

import (
	"fmt"
	"log"
	"strconv"

	"github.com/SpiritConnect/initializers"
	"github.com/SpiritConnect/models"
)

// The dispatcher is the fire-and-forget boundary between the core and
// push/email delivery. Every Dispatch* call runs after the state-changing
// transaction has committed, in its own goroutine, and never reports failure
// back to the caller: a lost notification never rolls back core state.

func dispatch(userID int, notifType string, message string, payload NotificationPayload) {
	go func() {
		notification := models.Notification{
			User_ID:           userID,
			Notification_Type: notifType,
			Message:           message,
		}

		insert := initializers.DB.Insert("notifications").Rows(notification).Executor()
		if _, err := insert.Exec(); err != nil {
			log.Printf("Failed to store %s notification for user %d: %v", notifType, userID, err)
		}

		if svc := GetPushNotificationService(); svc != nil {
			if err := svc.SendNotificationToUser(userID, payload); err != nil {
				log.Printf("Failed to push %s notification to user %d: %v", notifType, userID, err)
			}
		}
	}()
}

// DispatchRequestCreated notifies the owner that their request is live.
func DispatchRequestCreated(request models.PrayerRequest) {
	if request.Owner_ID == nil {
		return
	}

	message := fmt.Sprintf("Your prayer request %q has been posted.", request.Title)
	priority := "normal"
	if request.Prayer_Type == models.PrayerTypeEmergency || request.Prayer_Type == models.PrayerTypeCritical {
		priority = "high"
	}

	dispatch(*request.Owner_ID, models.NotificationTypeRequestCreated, message, NotificationPayload{
		Title: "Prayer request posted",
		Body:  message,
		Data: map[string]string{
			"prayer_id": strconv.Itoa(request.Prayer_Request_ID),
			"type":      models.NotificationTypeRequestCreated,
			"urgency":   strconv.Itoa(request.Urgency_Level),
		},
		Sound:    "default",
		Priority: priority,
	})
}

// DispatchStatusChanged notifies the owner of a status transition.
func DispatchStatusChanged(request models.PrayerRequest, oldStatus string) {
	if request.Owner_ID == nil {
		return
	}

	message := fmt.Sprintf("Your prayer request %q is now %s.", request.Title, request.Status)
	dispatch(*request.Owner_ID, models.NotificationTypeStatusChanged, message, NotificationPayload{
		Title: "Prayer request update",
		Body:  message,
		Data: map[string]string{
			"prayer_id":  strconv.Itoa(request.Prayer_Request_ID),
			"type":       models.NotificationTypeStatusChanged,
			"old_status": oldStatus,
			"new_status": request.Status,
		},
		Sound: "default",
	})
}

// DispatchResponseRecorded notifies the owner that someone responded.
// Self-responses are not announced.
func DispatchResponseRecorded(request models.PrayerRequest, response models.PrayerResponse) {
	if request.Owner_ID == nil {
		return
	}
	if response.User_ID != nil && *response.User_ID == *request.Owner_ID {
		return
	}

	var message string
	switch response.Response_Type {
	case models.ResponsePrayed:
		message = fmt.Sprintf("Someone prayed for %q.", request.Title)
	case models.ResponseComment:
		message = fmt.Sprintf("Someone commented on %q.", request.Title)
	default:
		message = fmt.Sprintf("Someone said Amen to %q.", request.Title)
	}

	dispatch(*request.Owner_ID, models.NotificationTypeResponseRecorded, message, NotificationPayload{
		Title: "New prayer response",
		Body:  message,
		Data: map[string]string{
			"prayer_id":     strconv.Itoa(request.Prayer_Request_ID),
			"type":          models.NotificationTypeResponseRecorded,
			"response_type": response.Response_Type,
		},
		Sound: "default",
	})
}
