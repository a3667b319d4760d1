package models

import "time"

type PasswordReset struct {
	Reset_ID   int       `json:"resetId" goqu:"skipinsert"`
	User_ID    int       `json:"userId"`
	Reset_Code string    `json:"-"`
	Expires_At time.Time `json:"expiresAt"`
	Used       bool      `json:"used"`
	Attempts   int       `json:"attempts"`
	Created_At time.Time `json:"createdAt" goqu:"skipinsert"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	ResetCode   string `json:"resetCode" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}
