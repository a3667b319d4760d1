package controllers

import (
	"time"

	"github.com/SpiritConnect/models"
	"github.com/SpiritConnect/services"
)

// Test fixture data for use in tests

// MockUser creates a sample user for testing
func MockUser() models.User {
	phone := "1234567890"
	location := "Springfield"
	return models.User{
		User_ID:      1,
		Username:     "testuser",
		Email:        "test@example.com",
		Full_Name:    "Test User",
		Phone:        &phone,
		Location:     &location,
		Role:         models.RoleUser,
		Is_Active:    true,
		Is_Verified:  true,
		Prayer_Count: 0,
		Created_At:   time.Now(),
	}
}

// MockUserWithPassword creates a sample user with a hashed password.
// Password is "Password123" - use this in tests
func MockUserWithPassword() models.User {
	user := MockUser()
	hash, _ := services.HashPassword("Password123")
	user.Password_Hash = hash
	return user
}

// MockAdminUser creates a sample admin user for testing
func MockAdminUser() models.User {
	phone := "9876543210"
	return models.User{
		User_ID:     2,
		Username:    "adminuser",
		Email:       "admin@example.com",
		Full_Name:   "Admin User",
		Phone:       &phone,
		Role:        models.RoleAdmin,
		Is_Active:   true,
		Is_Verified: true,
		Created_At:  time.Now(),
	}
}

// MockPrayerRequest creates a sample pending prayer request for testing
func MockPrayerRequest() models.PrayerRequest {
	ownerID := 1
	return models.PrayerRequest{
		Prayer_Request_ID: 1,
		Owner_ID:          &ownerID,
		Prayer_Type:       models.PrayerTypeGeneral,
		Title:             "Test Prayer",
		Body:              "Please pray for a safe journey.",
		Status:            models.StatusPending,
		Urgency_Level:     5,
		Is_Anonymous:      false,
		Tags:              `["travel"]`,
		Prayer_Count:      0,
		Created_At:        time.Now(),
		Updated_At:        time.Now(),
	}
}

// MockPrayerResponse creates a sample Prayed response for testing
func MockPrayerResponse() models.PrayerResponse {
	userID := 2
	return models.PrayerResponse{
		Prayer_Response_ID: 1,
		Prayer_ID:          1,
		User_ID:            &userID,
		Response_Type:      models.ResponsePrayed,
		Created_At:         time.Now(),
	}
}
