package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SpiritConnect/initializers"
	"github.com/SpiritConnect/models"
	"github.com/SpiritConnect/services"
	"github.com/doug-martin/goqu/v9"
)

// RecordPrayerResponse appends one response to the ledger and keeps the
// request's prayer count in step with it. The insert and the counter update
// run in a single transaction. The partial unique index on
// (prayer_id, user_id) for Prayed rows means the insert lands at most once
// per user, so a plain increment on the request row stays exact under
// concurrent responders. A COUNT(*) subquery would not: under READ COMMITTED
// the subquery keeps its pre-lock snapshot after the statement waits on the
// row lock, so rows committed during the wait go uncounted.
func RecordPrayerResponse(c *gin.Context) {
	prayerID, err := strconv.Atoi(c.Param("prayer_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid prayer ID"})
		return
	}

	var create models.PrayerResponseCreate
	if err := c.ShouldBindJSON(&create); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidResponseType(create.Response_Type) {
		respondError(c, models.NewValidationError("Unknown response type"))
		return
	}
	if create.Response_Type == models.ResponseComment && strings.TrimSpace(create.Comment) == "" {
		respondError(c, models.NewValidationError("Comment text is required for a Comment response"))
		return
	}

	var userID *int
	if id, ok := currentUserID(c); ok {
		userID = &id
	}

	var comment *string
	if create.Comment != "" {
		comment = &create.Comment
	}

	response := models.PrayerResponse{
		Prayer_ID:     prayerID,
		User_ID:       userID,
		Response_Type: create.Response_Type,
		Comment:       comment,
	}

	var request models.PrayerRequest

	err = initializers.WithStoreRetry(func() error {
		ctx, cancel := initializers.QueryContext()
		defer cancel()

		return initializers.DB.WithTx(func(tx *goqu.TxDatabase) error {
			found, err := tx.From("prayer_requests").
				Where(goqu.C("prayer_request_id").Eq(prayerID)).
				ScanStructContext(ctx, &request)
			if err != nil {
				return err
			}
			if !found {
				return models.NewNotFoundError("Prayer request not found")
			}

			insert := tx.Insert("prayer_responses").
				Rows(response).
				Returning("prayer_response_id", "created_at")

			inserted, err := insert.Executor().ScanStructContext(ctx, &response)
			if err != nil {
				if isUniqueViolation(err) {
					return models.NewConflictError(models.ReasonAlreadyResponded,
						"You have already prayed for this request")
				}
				return err
			}
			if !inserted {
				return models.NewTransientStoreError("insert returned no row")
			}

			if create.Response_Type == models.ResponsePrayed {
				// The unique index guarantees the insert above applied exactly
				// once, which is what makes the bare increment safe.
				update := tx.Update("prayer_requests").
					Set(goqu.Record{
						"prayer_count": goqu.L("prayer_count + 1"),
						"updated_at":   goqu.L("NOW()"),
					}).
					Where(goqu.C("prayer_request_id").Eq(prayerID)).
					Executor()
				if _, err := update.ExecContext(ctx); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		respondError(c, err)
		return
	}

	// First response to a Pending request moves it to Praying. The CAS is
	// best-effort: if a concurrent transition already moved the request
	// further along, the stricter status stands.
	if request.Status == models.StatusPending {
		applied, casErr := advanceStatusCAS(initializers.DB, prayerID, models.StatusPending, models.StatusPraying)
		if casErr != nil {
			respondError(c, casErr)
			return
		}
		if applied {
			oldStatus := request.Status
			request.Status = models.StatusPraying
			services.DispatchStatusChanged(request, oldStatus)
		}
	}

	services.DispatchResponseRecorded(request, response)

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Response recorded.",
		"response": response,
	})
}

// GetResponseSummary derives the per-type aggregate from ledger rows. It is
// computed on read, never cached apart from the rows.
func GetResponseSummary(c *gin.Context) {
	prayerID, err := strconv.Atoi(c.Param("prayer_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid prayer ID"})
		return
	}

	exists, err := initializers.DB.From("prayer_requests").
		Where(goqu.C("prayer_request_id").Eq(prayerID)).
		Count()
	if err != nil {
		respondError(c, err)
		return
	}
	if exists == 0 {
		respondError(c, models.NewNotFoundError("Prayer request not found"))
		return
	}

	var summary models.ResponseSummary
	_, err = initializers.DB.From("prayer_responses").
		Select(
			goqu.L("COUNT(*) FILTER (WHERE response_type = 'Prayed')").As("prayed"),
			goqu.L("COUNT(*) FILTER (WHERE response_type = 'Comment')").As("comments"),
			goqu.L("COUNT(*) FILTER (WHERE response_type = 'Amen')").As("amens"),
		).
		Where(goqu.C("prayer_id").Eq(prayerID)).
		ScanStruct(&summary)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// ListPrayerResponses returns the ledger entries for a request, oldest first.
func ListPrayerResponses(c *gin.Context) {
	prayerID, err := strconv.Atoi(c.Param("prayer_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid prayer ID"})
		return
	}

	var responses []models.PrayerResponse
	err = initializers.DB.From("prayer_responses").
		Where(goqu.C("prayer_id").Eq(prayerID)).
		Order(goqu.C("created_at").Asc()).
		ScanStructs(&responses)
	if err != nil {
		respondError(c, err)
		return
	}

	if responses == nil {
		responses = []models.PrayerResponse{}
	}

	c.JSON(http.StatusOK, gin.H{"responses": responses})
}
