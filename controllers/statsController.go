package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SpiritConnect/initializers"
	"github.com/SpiritConnect/models"
	"github.com/doug-martin/goqu/v9"
)

// GetDashboardStats returns community-wide aggregates for admins.
func GetDashboardStats(c *gin.Context) {
	totalPrayers, err := initializers.DB.From("prayer_requests").Count()
	if err != nil {
		respondError(c, err)
		return
	}

	answeredPrayers, err := initializers.DB.From("prayer_requests").
		Where(goqu.C("status").Eq(models.StatusAnswered)).
		Count()
	if err != nil {
		respondError(c, err)
		return
	}

	totalUsers, err := initializers.DB.From("users").Count()
	if err != nil {
		respondError(c, err)
		return
	}

	todayStart := time.Now().UTC().Truncate(24 * time.Hour)
	todayPrayers, err := initializers.DB.From("prayer_requests").
		Where(goqu.C("created_at").Gte(todayStart)).
		Count()
	if err != nil {
		respondError(c, err)
		return
	}

	var typeCounts []struct {
		Prayer_Type string `db:"prayer_type"`
		Count       int64  `db:"count"`
	}
	err = initializers.DB.From("prayer_requests").
		Select(goqu.C("prayer_type"), goqu.COUNT("*").As("count")).
		GroupBy(goqu.C("prayer_type")).
		ScanStructs(&typeCounts)
	if err != nil {
		respondError(c, err)
		return
	}

	prayerTypes := map[string]int64{}
	for _, tc := range typeCounts {
		prayerTypes[tc.Prayer_Type] = tc.Count
	}

	answerRate := 0.0
	if totalPrayers > 0 {
		answerRate = float64(answeredPrayers) / float64(totalPrayers) * 100
	}

	c.JSON(http.StatusOK, gin.H{
		"stats": gin.H{
			"totalPrayers":    totalPrayers,
			"answeredPrayers": answeredPrayers,
			"answerRate":      answerRate,
			"totalUsers":      totalUsers,
			"todayPrayers":    todayPrayers,
			"prayerTypes":     prayerTypes,
		},
	})
}

// ListUsers is the admin user listing with an optional role filter.
func ListUsers(c *gin.Context) {
	query := initializers.DB.From("users").
		Order(goqu.C("created_at").Desc())

	if role := c.Query("role"); role != "" {
		if role != models.RoleUser && role != models.RoleModerator && role != models.RoleAdmin {
			respondError(c, models.NewValidationError("Unknown role"))
			return
		}
		query = query.Where(goqu.C("role").Eq(role))
	}

	var users []models.User
	if err := query.ScanStructs(&users); err != nil {
		respondError(c, err)
		return
	}

	if users == nil {
		users = []models.User{}
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}
