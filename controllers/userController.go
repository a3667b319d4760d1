package controllers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SpiritConnect/initializers"
	"github.com/SpiritConnect/models"
	"github.com/SpiritConnect/services"
	"github.com/doug-martin/goqu/v9"
)

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// PublicUserSignup registers a new user. Username and email must be unique;
// the raw password is hashed before it touches the store and never logged.
func PublicUserSignup(c *gin.Context) {
	var signup models.UserSignup

	if err := c.ShouldBindJSON(&signup); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.ValidateEmail(signup.Email); err != nil {
		respondError(c, err)
		return
	}

	if err := services.ValidatePasswordStrength(signup.Password); err != nil {
		respondError(c, err)
		return
	}

	userCount, err := initializers.DB.From("users").
		Where(goqu.Or(
			goqu.C("username").Eq(signup.Username),
			goqu.C("email").Eq(signup.Email),
		)).
		Count()
	if err != nil {
		respondError(c, err)
		return
	}

	if userCount > 0 {
		respondError(c, models.NewConflictError(models.ReasonDuplicateUser, "A user with this username or email already exists"))
		return
	}

	passwordHash, err := services.HashPassword(signup.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	var phone, location *string
	if signup.Phone != "" {
		phone = &signup.Phone
	}
	if signup.Location != "" {
		location = &signup.Location
	}

	newUser := models.User{
		Username:      signup.Username,
		Email:         signup.Email,
		Password_Hash: passwordHash,
		Full_Name:     signup.FullName,
		Phone:         phone,
		Location:      location,
		Role:          models.RoleUser,
		Is_Active:     true,
		Is_Verified:   false,
	}

	insert := initializers.DB.Insert("users").Rows(newUser).Returning("user_id")

	var userID int
	found, err := insert.Executor().ScanVal(&userID)
	if err != nil {
		// A concurrent signup can slip past the count check; the unique
		// constraints are the real guard.
		if isUniqueViolation(err) {
			respondError(c, models.NewConflictError(models.ReasonDuplicateUser, "A user with this username or email already exists"))
			return
		}
		respondError(c, err)
		return
	}
	if !found {
		respondError(c, models.NewTransientStoreError("insert returned no row"))
		return
	}

	if svc := services.GetEmailService(); svc != nil {
		go func() {
			if err := svc.SendWelcomeEmail(signup.Email, signup.FullName); err != nil {
				log.Printf("Failed to send welcome email: %v", err)
			}
		}()
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful.",
		"userId":  userID,
	})
}

// UserLogin authenticates by username or email and returns a bearer token.
func UserLogin(c *gin.Context) {
	var login models.Login

	if err := c.ShouldBindJSON(&login); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	found, err := initializers.DB.From("users").
		Where(goqu.Or(
			goqu.C("username").Eq(login.Identifier),
			goqu.C("email").Eq(login.Identifier),
		)).
		ScanStruct(&user)
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		respondError(c, models.NewNotFoundError("User not found"))
		return
	}

	if !user.Is_Active {
		respondError(c, models.NewAuthError(models.ReasonAccountInactive, "Account is deactivated"))
		return
	}

	if !services.VerifyPassword(login.Password, user.Password_Hash) {
		respondError(c, models.NewAuthError(models.ReasonInvalidCredentials, "Invalid credentials"))
		return
	}

	now := time.Now().UTC()
	update := initializers.DB.Update("users").
		Set(goqu.Record{"last_login_at": now}).
		Where(goqu.C("user_id").Eq(user.User_ID)).
		Executor()
	if _, err := update.Exec(); err != nil {
		log.Printf("Failed to update last login for user %d: %v", user.User_ID, err)
	}
	user.Last_Login_At = &now

	token, err := services.IssueToken(user.User_ID, user.Role, services.TokenTTL())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged in successfully.",
		"token":   token,
		"user":    user,
	})
}

// GetCurrentUser returns the authenticated user's profile.
func GetCurrentUser(c *gin.Context) {
	userID, _ := currentUserID(c)

	var user models.User
	found, err := initializers.DB.From("users").
		Where(goqu.C("user_id").Eq(userID)).
		ScanStruct(&user)
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		respondError(c, models.NewNotFoundError("User not found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateUserProfile applies partial updates to the mutable profile fields.
// Username and email are immutable after registration.
func UpdateUserProfile(c *gin.Context) {
	userID, _ := currentUserID(c)

	var update models.UserUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record := goqu.Record{}
	if update.Full_Name != nil {
		if *update.Full_Name == "" {
			respondError(c, models.NewValidationError("Full name cannot be empty"))
			return
		}
		record["full_name"] = *update.Full_Name
	}
	if update.Phone != nil {
		record["phone"] = *update.Phone
	}
	if update.Location != nil {
		record["location"] = *update.Location
	}

	if len(record) == 0 {
		respondError(c, models.NewValidationError("No fields provided to update"))
		return
	}

	updateQuery := initializers.DB.Update("users").
		Set(record).
		Where(goqu.C("user_id").Eq(userID)).
		Executor()
	if _, err := updateQuery.Exec(); err != nil {
		respondError(c, err)
		return
	}

	var user models.User
	if _, err := initializers.DB.From("users").Where(goqu.C("user_id").Eq(userID)).ScanStruct(&user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// ChangeUserPassword rewrites the stored hash after verifying the old
// password and the new password's strength.
func ChangeUserPassword(c *gin.Context) {
	userID, _ := currentUserID(c)

	var change models.UserChangePassword
	if err := c.ShouldBindJSON(&change); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	found, err := initializers.DB.From("users").
		Where(goqu.C("user_id").Eq(userID)).
		ScanStruct(&user)
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		respondError(c, models.NewNotFoundError("User not found"))
		return
	}

	if !services.VerifyPassword(change.Old_Password, user.Password_Hash) {
		respondError(c, models.NewAuthError(models.ReasonInvalidCredentials, "Old password is incorrect"))
		return
	}

	if err := services.ValidatePasswordStrength(change.New_Password); err != nil {
		respondError(c, err)
		return
	}

	newHash, err := services.HashPassword(change.New_Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	update := initializers.DB.Update("users").
		Set(goqu.Record{"password_hash": newHash}).
		Where(goqu.C("user_id").Eq(userID)).
		Executor()
	if _, err := update.Exec(); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// DeactivateUserAccount soft-deletes the account. The row stays because
// responses may reference it.
func DeactivateUserAccount(c *gin.Context) {
	userID, _ := currentUserID(c)

	update := initializers.DB.Update("users").
		Set(goqu.Record{"is_active": false}).
		Where(goqu.C("user_id").Eq(userID)).
		Executor()

	result, err := update.Exec()
	if err != nil {
		respondError(c, err)
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		respondError(c, models.NewNotFoundError("User not found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deactivated"})
}

// StorePushToken registers a device token for push delivery.
func StorePushToken(c *gin.Context) {
	userID, _ := currentUserID(c)

	var tokenData models.PushTokenCreate
	if err := c.ShouldBindJSON(&tokenData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Replace any previous registration of the same token.
	del := initializers.DB.Delete("user_push_tokens").
		Where(goqu.C("push_token").Eq(tokenData.Push_Token)).
		Executor()
	if _, err := del.Exec(); err != nil {
		respondError(c, err)
		return
	}

	insert := initializers.DB.Insert("user_push_tokens").
		Rows(models.PushToken{
			User_ID:    userID,
			Push_Token: tokenData.Push_Token,
			Platform:   tokenData.Platform,
		}).
		Executor()
	if _, err := insert.Exec(); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Push token stored"})
}

// GetUserNotifications lists the caller's notifications, newest first.
func GetUserNotifications(c *gin.Context) {
	userID, _ := currentUserID(c)

	var notifications []models.Notification
	err := initializers.DB.From("notifications").
		Where(goqu.C("user_id").Eq(userID)).
		Order(goqu.C("created_at").Desc()).
		ScanStructs(&notifications)
	if err != nil {
		respondError(c, err)
		return
	}

	if notifications == nil {
		notifications = []models.Notification{}
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}
