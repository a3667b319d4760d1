package models

import "time"

// User roles
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

type User struct {
	User_ID       int        `json:"userId" goqu:"skipinsert"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	Password_Hash string     `json:"-"`
	Full_Name     string     `json:"fullName"`
	Phone         *string    `json:"phone"`
	Location      *string    `json:"location"`
	Role          string     `json:"role"`
	Is_Active     bool       `json:"isActive"`
	Is_Verified   bool       `json:"isVerified"`
	Prayer_Count  int        `json:"prayerCount" goqu:"skipinsert"`
	Last_Login_At *time.Time `json:"lastLoginAt" goqu:"skipinsert"`
	Created_At    time.Time  `json:"createdAt" goqu:"skipinsert"`
}

type UserSignup struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

type Login struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// UserUpdate covers the mutable profile fields. Username and email are
// immutable after registration.
type UserUpdate struct {
	Full_Name *string `json:"fullName"`
	Phone     *string `json:"phone"`
	Location  *string `json:"location"`
}

type UserChangePassword struct {
	Old_Password string `json:"oldPassword"`
	New_Password string `json:"newPassword" binding:"required"`
}
