package server

import (
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/masjidkita/masjidkita/internal/audit"
	"github.com/masjidkita/masjidkita/internal/config"
	legacydomain "github.com/masjidkita/masjidkita/internal/legacy/domain"
	"github.com/masjidkita/masjidkita/internal/ratelimit"
)

type LegacyHandler struct {
	legacy  legacydomain.Service
	locker  *ratelimit.Locker
	auditor *audit.Recorder
	lockTTL time.Duration
}

func NewLegacyHandler(legacy legacydomain.Service, locker *ratelimit.Locker, auditor *audit.Recorder, cfg config.Config) *LegacyHandler {
	return &LegacyHandler{
		legacy:  legacy,
		locker:  locker,
		auditor: auditor,
		lockTTL: time.Duration(cfg.RateLimit.LockTTLSeconds) * time.Second,
	}
}

func (h *LegacyHandler) Register(api *gin.RouterGroup) {
	api.POST("/mosques/:id/legacy-records/import", h.importCSV)
	api.GET("/mosques/:id/legacy-records", h.list)
	api.GET("/legacy-records/:id/candidates", h.candidates)
	api.POST("/legacy-records/:id/match", h.match)
	api.POST("/legacy-records/:id/unmatch", h.unmatch)
	api.POST("/mosques/:id/legacy-records/bulk-match", h.bulkMatch)
	api.POST("/mosques/:id/legacy-records/bulk-unmatch", h.bulkUnmatch)
}

func (h *LegacyHandler) importCSV(c *gin.Context) {
	actor := actorFrom(c)
	mosqueID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_mosque_id"})
		return
	}

	body := c.Request.Body
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			abortWithError(c, err)
			return
		}
		defer f.Close()
		body = f
	}

	result, err := h.legacy.ImportCSV(c.Request.Context(), actor, mosqueID, body)
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.auditor.Record(c.Request.Context(), audit.Entry{
		MosqueID:   &mosqueID,
		ActorID:    actor.UserID,
		Action:     "legacy.import",
		TargetType: "import_batch",
		TargetID:   result.BatchID,
		Metadata:   map[string]any{"imported": result.Imported, "skipped": len(result.RowErrors)},
	})
	c.JSON(http.StatusCreated, result)
}

func (h *LegacyHandler) list(c *gin.Context) {
	mosqueID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_mosque_id"})
		return
	}
	includeMatched := c.Query("all") == "true"
	records, err := h.legacy.ListRecords(c.Request.Context(), actorFrom(c), mosqueID, includeMatched)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

func (h *LegacyHandler) candidates(c *gin.Context) {
	recordID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_record_id"})
		return
	}
	all := c.Query("all") == "true"
	candidates, err := h.legacy.Candidates(c.Request.Context(), actorFrom(c), recordID, all)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": candidates})
}

type matchRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	ProgramID string `json:"program_id" binding:"required"`
}

func (h *LegacyHandler) match(c *gin.Context) {
	actor := actorFrom(c)
	recordID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_record_id"})
		return
	}
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	userID, err := snowflake.ParseString(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_user_id"})
		return
	}
	programID, err := snowflake.ParseString(req.ProgramID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_program_id"})
		return
	}

	record, err := h.legacy.Match(c.Request.Context(), actor, legacydomain.MatchRequest{
		RecordID:  recordID,
		UserID:    userID,
		ProgramID: programID,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.auditor.Record(c.Request.Context(), audit.Entry{
		MosqueID:   &record.MosqueID,
		ActorID:    actor.UserID,
		Action:     "legacy.match",
		TargetType: "legacy_record",
		TargetID:   record.ID.String(),
	})
	c.JSON(http.StatusOK, record)
}

func (h *LegacyHandler) unmatch(c *gin.Context) {
	actor := actorFrom(c)
	recordID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_record_id"})
		return
	}
	record, err := h.legacy.Unmatch(c.Request.Context(), actor, recordID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.auditor.Record(c.Request.Context(), audit.Entry{
		MosqueID:   &record.MosqueID,
		ActorID:    actor.UserID,
		Action:     "legacy.unmatch",
		TargetType: "legacy_record",
		TargetID:   record.ID.String(),
	})
	c.JSON(http.StatusOK, record)
}

type bulkMatchRequest struct {
	Items []struct {
		RecordID  string `json:"record_id" binding:"required"`
		UserID    string `json:"user_id" binding:"required"`
		ProgramID string `json:"program_id" binding:"required"`
	} `json:"items" binding:"required"`
}

// bulkMatch serializes concurrent bulk runs per mosque with a Redis lock so
// two admins cannot double-process the same records.
func (h *LegacyHandler) bulkMatch(c *gin.Context) {
	actor := actorFrom(c)
	mosqueID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_mosque_id"})
		return
	}
	var req bulkMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	reqs := make([]legacydomain.MatchRequest, 0, len(req.Items))
	for _, item := range req.Items {
		recordID, err1 := snowflake.ParseString(item.RecordID)
		userID, err2 := snowflake.ParseString(item.UserID)
		programID, err3 := snowflake.ParseString(item.ProgramID)
		if err1 != nil || err2 != nil || err3 != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_item_id"})
			return
		}
		reqs = append(reqs, legacydomain.MatchRequest{RecordID: recordID, UserID: userID, ProgramID: programID})
	}

	lockName := "legacy-bulk:" + mosqueID.String()
	token, acquired, err := h.locker.Acquire(c.Request.Context(), lockName, h.lockTTL)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !acquired {
		c.JSON(http.StatusConflict, gin.H{"error": "bulk_operation_in_progress"})
		return
	}
	defer h.locker.Release(c.Request.Context(), lockName, token)

	result, err := h.legacy.BulkMatch(c.Request.Context(), actor, reqs)
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.auditor.Record(c.Request.Context(), audit.Entry{
		MosqueID:   &mosqueID,
		ActorID:    actor.UserID,
		Action:     "legacy.bulk_match",
		TargetType: "legacy_record",
		Metadata:   map[string]any{"processed": result.Processed, "failed": len(result.FailedRecords)},
	})
	c.JSON(http.StatusOK, result)
}

type bulkUnmatchRequest struct {
	RecordIDs []string `json:"record_ids" binding:"required"`
}

func (h *LegacyHandler) bulkUnmatch(c *gin.Context) {
	actor := actorFrom(c)
	mosqueID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_mosque_id"})
		return
	}
	var req bulkUnmatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	ids := make([]snowflake.ID, 0, len(req.RecordIDs))
	for _, raw := range req.RecordIDs {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_record_id"})
			return
		}
		ids = append(ids, id)
	}

	lockName := "legacy-bulk:" + mosqueID.String()
	token, acquired, err := h.locker.Acquire(c.Request.Context(), lockName, h.lockTTL)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !acquired {
		c.JSON(http.StatusConflict, gin.H{"error": "bulk_operation_in_progress"})
		return
	}
	defer h.locker.Release(c.Request.Context(), lockName, token)

	result, err := h.legacy.BulkUnmatch(c.Request.Context(), actor, ids)
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.auditor.Record(c.Request.Context(), audit.Entry{
		MosqueID:   &mosqueID,
		ActorID:    actor.UserID,
		Action:     "legacy.bulk_unmatch",
		TargetType: "legacy_record",
		Metadata:   map[string]any{"processed": result.Processed, "failed": len(result.FailedRecords)},
	})
	c.JSON(http.StatusOK, result)
}
