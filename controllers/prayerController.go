package controllers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SpiritConnect/initializers"
	"github.com/SpiritConnect/models"
	"github.com/SpiritConnect/services"
	"github.com/doug-martin/goqu/v9"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// encodeTags stores the tag set the way the store expects it (JSON string).
func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// decodeTags populates Tag_List from the stored JSON string.
func decodeTags(request *models.PrayerRequest) {
	request.Tag_List = []string{}
	if request.Tags == "" {
		return
	}
	if err := json.Unmarshal([]byte(request.Tags), &request.Tag_List); err != nil {
		request.Tag_List = []string{}
	}
}

// CreatePrayerRequest creates a new request in Pending status with a zero
// prayer count. Anonymous submissions (no token) carry a nil owner.
func CreatePrayerRequest(c *gin.Context) {
	var create models.PrayerRequestCreate
	if err := c.ShouldBindJSON(&create); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidPrayerType(create.Prayer_Type) {
		respondError(c, models.NewValidationError("Unknown prayer type"))
		return
	}
	if strings.TrimSpace(create.Title) == "" {
		respondError(c, models.NewValidationError("Title cannot be empty"))
		return
	}
	if strings.TrimSpace(create.Body) == "" {
		respondError(c, models.NewValidationError("Body cannot be empty"))
		return
	}
	if create.Urgency_Level == 0 {
		create.Urgency_Level = 5
	}
	if create.Urgency_Level < 1 || create.Urgency_Level > 10 {
		respondError(c, models.NewValidationError("Urgency level must be between 1 and 10"))
		return
	}

	tags, err := encodeTags(create.Tags)
	if err != nil {
		respondError(c, models.NewValidationError("Invalid tags"))
		return
	}

	var ownerID *int
	if userID, ok := currentUserID(c); ok {
		ownerID = &userID
	}

	request := models.PrayerRequest{
		Owner_ID:      ownerID,
		Prayer_Type:   create.Prayer_Type,
		Title:         create.Title,
		Body:          create.Body,
		Status:        models.StatusPending,
		Urgency_Level: create.Urgency_Level,
		Is_Anonymous:  create.Is_Anonymous,
		Tags:          tags,
	}

	err = initializers.WithStoreRetry(func() error {
		ctx, cancel := initializers.QueryContext()
		defer cancel()

		return initializers.DB.WithTx(func(tx *goqu.TxDatabase) error {
			insert := tx.Insert("prayer_requests").
				Rows(request).
				Returning("prayer_request_id", "created_at", "updated_at")

			found, err := insert.Executor().ScanStructContext(ctx, &request)
			if err != nil {
				return err
			}
			if !found {
				return models.NewTransientStoreError("insert returned no row")
			}

			// The owner's submission counter moves with the insert in the
			// same transaction. Increment, don't recount: a COUNT(*)
			// subquery evaluated after waiting on the row lock keeps a
			// stale snapshot under READ COMMITTED.
			if ownerID != nil {
				update := tx.Update("users").
					Set(goqu.Record{
						"prayer_count": goqu.L("prayer_count + 1"),
					}).
					Where(goqu.C("user_id").Eq(*ownerID)).
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

	decodeTags(&request)
	services.DispatchRequestCreated(request)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Prayer request created.",
		"prayer":  request,
	})
}

// listCursor is the restartable continuation point for ListPrayerRequests:
// the (created_at, id) pair of the last row already returned.
type listCursor struct {
	CreatedAt time.Time
	ID        int
}

func encodeCursor(cur listCursor) string {
	raw := fmt.Sprintf("%s|%d", cur.CreatedAt.UTC().Format(time.RFC3339Nano), cur.ID)
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(encoded string) (listCursor, error) {
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return listCursor{}, err
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return listCursor{}, fmt.Errorf("malformed cursor")
	}
	createdAt, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return listCursor{}, err
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil {
		return listCursor{}, err
	}
	return listCursor{CreatedAt: createdAt, ID: id}, nil
}

func parseDateParam(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

// ListPrayerRequests returns requests ordered by createdAt descending,
// filtered and paginated. Re-invoking with the returned cursor resumes the
// listing; the endpoint never mutates state.
func ListPrayerRequests(c *gin.Context) {
	query := initializers.DB.From("prayer_requests")

	if prayerType := c.Query("type"); prayerType != "" {
		if !models.ValidPrayerType(prayerType) {
			respondError(c, models.NewValidationError("Unknown prayer type"))
			return
		}
		query = query.Where(goqu.C("prayer_type").Eq(prayerType))
	}
	if status := c.Query("status"); status != "" {
		if !models.ValidStatus(status) {
			respondError(c, models.NewValidationError("Unknown status"))
			return
		}
		query = query.Where(goqu.C("status").Eq(status))
	}
	if ownerParam := c.Query("owner_id"); ownerParam != "" {
		ownerID, err := strconv.Atoi(ownerParam)
		if err != nil {
			respondError(c, models.NewValidationError("Invalid owner id"))
			return
		}
		query = query.Where(goqu.C("owner_id").Eq(ownerID))
	}
	if from := c.Query("from"); from != "" {
		t, err := parseDateParam(from)
		if err != nil {
			respondError(c, models.NewValidationError("Invalid 'from' date"))
			return
		}
		query = query.Where(goqu.C("created_at").Gte(t))
	}
	if to := c.Query("to"); to != "" {
		t, err := parseDateParam(to)
		if err != nil {
			respondError(c, models.NewValidationError("Invalid 'to' date"))
			return
		}
		query = query.Where(goqu.C("created_at").Lte(t))
	}

	limit := defaultListLimit
	if limitParam := c.Query("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed < 1 {
			respondError(c, models.NewValidationError("Invalid limit"))
			return
		}
		if parsed > maxListLimit {
			parsed = maxListLimit
		}
		limit = parsed
	}

	if cursorParam := c.Query("cursor"); cursorParam != "" {
		cur, err := decodeCursor(cursorParam)
		if err != nil {
			respondError(c, models.NewValidationError("Invalid cursor"))
			return
		}
		query = query.Where(goqu.Or(
			goqu.C("created_at").Lt(cur.CreatedAt),
			goqu.And(
				goqu.C("created_at").Eq(cur.CreatedAt),
				goqu.C("prayer_request_id").Lt(cur.ID),
			),
		))
	}

	query = query.
		Order(goqu.C("created_at").Desc(), goqu.C("prayer_request_id").Desc()).
		Limit(uint(limit))

	var requests []models.PrayerRequest
	if err := query.ScanStructs(&requests); err != nil {
		respondError(c, err)
		return
	}

	if requests == nil {
		requests = []models.PrayerRequest{}
	}
	for i := range requests {
		decodeTags(&requests[i])
	}

	response := gin.H{
		"prayers": requests,
		"count":   len(requests),
	}
	if len(requests) == limit {
		last := requests[len(requests)-1]
		response["nextCursor"] = encodeCursor(listCursor{
			CreatedAt: last.Created_At,
			ID:        last.Prayer_Request_ID,
		})
	}

	c.JSON(http.StatusOK, response)
}

// GetPrayerRequest fetches a single request.
func GetPrayerRequest(c *gin.Context) {
	prayerID, err := strconv.Atoi(c.Param("prayer_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid prayer ID"})
		return
	}

	var request models.PrayerRequest
	found, err := initializers.DB.From("prayer_requests").
		Where(goqu.C("prayer_request_id").Eq(prayerID)).
		ScanStruct(&request)
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		respondError(c, models.NewNotFoundError("Prayer request not found"))
		return
	}

	decodeTags(&request)
	c.JSON(http.StatusOK, gin.H{"prayer": request})
}

// advanceStatusCAS attempts a single optimistic transition from -> to.
// Returns true when this call performed the transition; false when the row
// was no longer in the expected origin status (somebody else moved it).
func advanceStatusCAS(db *goqu.Database, prayerID int, from, to string) (bool, error) {
	ctx, cancel := initializers.QueryContext()
	defer cancel()

	update := db.Update("prayer_requests").
		Set(goqu.Record{
			"status":     to,
			"updated_at": goqu.L("NOW()"),
		}).
		Where(goqu.And(
			goqu.C("prayer_request_id").Eq(prayerID),
			goqu.C("status").Eq(from),
		)).
		Executor()

	result, err := update.ExecContext(ctx)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// AdvancePrayerStatus moves a request one step forward through
// Pending -> Praying -> Answered. The transition is guarded by an optimistic
// check on the current status so concurrent movers cannot drag it backward:
// whichever valid transition lands first wins, and the loser surfaces
// InvalidTransition.
func AdvancePrayerStatus(c *gin.Context) {
	userID, _ := currentUserID(c)
	role := currentRole(c)

	prayerID, err := strconv.Atoi(c.Param("prayer_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid prayer ID"})
		return
	}

	var change models.StatusChange
	if err := c.ShouldBindJSON(&change); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidStatus(change.Status) {
		respondError(c, models.NewValidationError("Unknown status"))
		return
	}

	var request models.PrayerRequest
	found, err := initializers.DB.From("prayer_requests").
		Where(goqu.C("prayer_request_id").Eq(prayerID)).
		ScanStruct(&request)
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		respondError(c, models.NewNotFoundError("Prayer request not found"))
		return
	}

	if !models.CanTransition(request.Status, change.Status) {
		respondError(c, models.NewConflictError(models.ReasonInvalidTransition,
			fmt.Sprintf("Cannot transition from %s to %s", request.Status, change.Status)))
		return
	}

	if change.Status == models.StatusAnswered {
		isOwner := request.Owner_ID != nil && *request.Owner_ID == userID
		if !isOwner && role != models.RoleModerator && role != models.RoleAdmin {
			respondError(c, models.NewAuthError(models.ReasonForbidden,
				"Only the owner, a moderator, or an admin may mark a request answered"))
			return
		}
	}

	oldStatus := request.Status
	var applied bool
	err = initializers.WithStoreRetry(func() error {
		var casErr error
		applied, casErr = advanceStatusCAS(initializers.DB, prayerID, oldStatus, change.Status)
		return casErr
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if !applied {
		// Lost the race: the request moved since we read it.
		respondError(c, models.NewConflictError(models.ReasonInvalidTransition,
			"Request status changed concurrently; transition no longer valid"))
		return
	}

	request.Status = change.Status
	found, err = initializers.DB.From("prayer_requests").
		Where(goqu.C("prayer_request_id").Eq(prayerID)).
		ScanStruct(&request)
	if err == nil && found {
		decodeTags(&request)
	}

	services.DispatchStatusChanged(request, oldStatus)

	c.JSON(http.StatusOK, gin.H{
		"message": "Status updated.",
		"prayer":  request,
	})
}
