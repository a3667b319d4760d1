package controllers

import (
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SpiritConnect/initializers"
	"github.com/SpiritConnect/models"
	"github.com/SpiritConnect/services"
	"github.com/doug-martin/goqu/v9"
)

const (
	resetCodeLifetime = 15 * time.Minute
	maxResetAttempts  = 5
)

func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// ForgotPassword issues a short-lived reset code and emails it. The response
// is the same whether or not the address is registered.
func ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	genericResponse := gin.H{"message": "If that email is registered, a reset code has been sent."}

	var user models.User
	found, err := initializers.DB.From("users").
		Where(goqu.C("email").Eq(req.Email)).
		ScanStruct(&user)
	if err != nil {
		respondError(c, err)
		return
	}
	if !found || !user.Is_Active {
		c.JSON(http.StatusOK, genericResponse)
		return
	}

	code, err := generateResetCode()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate reset code"})
		return
	}

	// Invalidate any previous outstanding codes for this user.
	invalidate := initializers.DB.Update("password_resets").
		Set(goqu.Record{"used": true}).
		Where(goqu.And(
			goqu.C("user_id").Eq(user.User_ID),
			goqu.C("used").IsFalse(),
		)).
		Executor()
	if _, err := invalidate.Exec(); err != nil {
		respondError(c, err)
		return
	}

	reset := models.PasswordReset{
		User_ID:    user.User_ID,
		Reset_Code: code,
		Expires_At: time.Now().UTC().Add(resetCodeLifetime),
	}

	insert := initializers.DB.Insert("password_resets").Rows(reset).Executor()
	if _, err := insert.Exec(); err != nil {
		respondError(c, err)
		return
	}

	if svc := services.GetEmailService(); svc != nil {
		go func() {
			if err := svc.SendPasswordResetEmail(user.Email, code, user.Full_Name); err != nil {
				log.Printf("Failed to send password reset email: %v", err)
			}
		}()
	}

	c.JSON(http.StatusOK, genericResponse)
}

// ResetPassword verifies the emailed code and rewrites the stored hash.
func ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	found, err := initializers.DB.From("users").
		Where(goqu.C("email").Eq(req.Email)).
		ScanStruct(&user)
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		respondError(c, models.NewNotFoundError("User not found"))
		return
	}

	var reset models.PasswordReset
	found, err = initializers.DB.From("password_resets").
		Where(goqu.And(
			goqu.C("user_id").Eq(user.User_ID),
			goqu.C("used").IsFalse(),
		)).
		Order(goqu.C("created_at").Desc()).
		ScanStruct(&reset)
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		respondError(c, models.NewAuthError(models.ReasonInvalidCredentials, "No active reset code"))
		return
	}

	if time.Now().UTC().After(reset.Expires_At) {
		respondError(c, models.NewAuthError(models.ReasonInvalidCredentials, "Reset code has expired"))
		return
	}
	if reset.Attempts >= maxResetAttempts {
		respondError(c, models.NewAuthError(models.ReasonInvalidCredentials, "Too many attempts; request a new code"))
		return
	}

	if req.ResetCode != reset.Reset_Code {
		bump := initializers.DB.Update("password_resets").
			Set(goqu.Record{"attempts": goqu.L("attempts + 1")}).
			Where(goqu.C("reset_id").Eq(reset.Reset_ID)).
			Executor()
		if _, err := bump.Exec(); err != nil {
			log.Printf("Failed to record reset attempt: %v", err)
		}
		respondError(c, models.NewAuthError(models.ReasonInvalidCredentials, "Incorrect reset code"))
		return
	}

	if err := services.ValidatePasswordStrength(req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	newHash, err := services.HashPassword(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	err = initializers.DB.WithTx(func(tx *goqu.TxDatabase) error {
		update := tx.Update("users").
			Set(goqu.Record{"password_hash": newHash}).
			Where(goqu.C("user_id").Eq(user.User_ID)).
			Executor()
		if _, err := update.Exec(); err != nil {
			return err
		}

		markUsed := tx.Update("password_resets").
			Set(goqu.Record{"used": true}).
			Where(goqu.C("reset_id").Eq(reset.Reset_ID)).
			Executor()
		if _, err := markUsed.Exec(); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}
