package models

import "time"

// Response types
const (
	ResponsePrayed  = "Prayed"
	ResponseComment = "Comment"
	ResponseAmen    = "Amen"
)

// ValidResponseType reports whether t is a known response type.
func ValidResponseType(t string) bool {
	return t == ResponsePrayed || t == ResponseComment || t == ResponseAmen
}

type PrayerResponse struct {
	Prayer_Response_ID int       `json:"prayerResponseId" goqu:"skipinsert"`
	Prayer_ID          int       `json:"prayerId"`
	User_ID            *int      `json:"userId"`
	Response_Type      string    `json:"responseType"`
	Comment            *string   `json:"comment"`
	Created_At         time.Time `json:"createdAt" goqu:"skipinsert"`
}

type PrayerResponseCreate struct {
	Response_Type string `json:"responseType" binding:"required"`
	Comment       string `json:"comment"`
}

// ResponseSummary is the read-only aggregate derived from ledger rows.
type ResponseSummary struct {
	Prayed   int `json:"prayed" db:"prayed"`
	Comments int `json:"comments" db:"comments"`
	Amens    int `json:"amens" db:"amens"`
}
