package models

import "time"

// Prayer request types
const (
	PrayerTypeGeneral   = "General"
	PrayerTypeEmergency = "Emergency"
	PrayerTypeCritical  = "Critical"
)

// Prayer request statuses, in transition order.
const (
	StatusPending  = "Pending"
	StatusPraying  = "Praying"
	StatusAnswered = "Answered"
)

// statusRank orders statuses for the monotonic transition check.
var statusRank = map[string]int{
	StatusPending:  0,
	StatusPraying:  1,
	StatusAnswered: 2,
}

// ValidPrayerType reports whether t is a known request type.
func ValidPrayerType(t string) bool {
	return t == PrayerTypeGeneral || t == PrayerTypeEmergency || t == PrayerTypeCritical
}

// ValidStatus reports whether s is a known status.
func ValidStatus(s string) bool {
	_, ok := statusRank[s]
	return ok
}

// CanTransition reports whether from -> to is a strictly forward step.
// Status never moves backward and never skips Praying.
func CanTransition(from, to string) bool {
	fromRank, okFrom := statusRank[from]
	toRank, okTo := statusRank[to]
	return okFrom && okTo && toRank == fromRank+1
}

type PrayerRequest struct {
	Prayer_Request_ID int       `json:"prayerRequestId" goqu:"skipinsert"`
	Owner_ID          *int      `json:"ownerId"`
	Prayer_Type       string    `json:"prayerType"`
	Title             string    `json:"title"`
	Body              string    `json:"body"`
	Status            string    `json:"status"`
	Urgency_Level     int       `json:"urgencyLevel"`
	Is_Anonymous      bool      `json:"isAnonymous"`
	Tags              string    `json:"-"`
	Tag_List          []string  `json:"tags" db:"-" goqu:"skipinsert"`
	Prayer_Count      int       `json:"prayerCount" goqu:"skipinsert"`
	Created_At        time.Time `json:"createdAt" goqu:"skipinsert"`
	Updated_At        time.Time `json:"updatedAt" goqu:"skipinsert"`
}

type PrayerRequestCreate struct {
	Prayer_Type   string   `json:"prayerType" binding:"required"`
	Title         string   `json:"title"`
	Body          string   `json:"body"`
	Urgency_Level int      `json:"urgencyLevel"`
	Is_Anonymous  bool     `json:"isAnonymous"`
	Tags          []string `json:"tags"`
}

// PrayerRequestFilters narrows a listing. Zero values mean "no filter".
type PrayerRequestFilters struct {
	Prayer_Type string
	Status      string
	Owner_ID    int
	Date_From   time.Time
	Date_To     time.Time
}

type StatusChange struct {
	Status string `json:"status" binding:"required"`
}
