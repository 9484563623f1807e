package server

import (
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/masjidkita/masjidkita/internal/audit"
	khairatdomain "github.com/masjidkita/masjidkita/internal/khairat/domain"
)

type KhairatHandler struct {
	khairat khairatdomain.Service
	auditor *audit.Recorder
}

func NewKhairatHandler(khairat khairatdomain.Service, auditor *audit.Recorder) *KhairatHandler {
	return &KhairatHandler{khairat: khairat, auditor: auditor}
}

func (h *KhairatHandler) Register(api *gin.RouterGroup) {
	api.GET("/mosques/:id/khairat/programs", h.listPrograms)
	api.POST("/mosques/:id/khairat/programs", h.createProgram)
	api.POST("/mosques/:id/khairat/contributions", h.recordContribution)
	api.GET("/mosques/:id/khairat/contributions", h.listContributions)
	api.GET("/khairat/programs/:id/contributions", h.listProgramContributions)
}

type createProgramRequest struct {
	Name           string `json:"name" binding:"required"`
	Year           int    `json:"year" binding:"required"`
	AmountDueCents int64  `json:"amount_due_cents"`
}

func (h *KhairatHandler) createProgram(c *gin.Context) {
	actor := actorFrom(c)
	mosqueID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_mosque_id"})
		return
	}
	var req createProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	program, err := h.khairat.CreateProgram(c.Request.Context(), actor, khairatdomain.CreateProgramRequest{
		MosqueID:       mosqueID,
		Name:           req.Name,
		Year:           req.Year,
		AmountDueCents: req.AmountDueCents,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.auditor.Record(c.Request.Context(), audit.Entry{
		MosqueID:   &mosqueID,
		ActorID:    actor.UserID,
		Action:     "khairat.create_program",
		TargetType: "khairat_program",
		TargetID:   program.ID.String(),
	})
	c.JSON(http.StatusCreated, program)
}

func (h *KhairatHandler) listPrograms(c *gin.Context) {
	mosqueID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_mosque_id"})
		return
	}
	programs, err := h.khairat.ListPrograms(c.Request.Context(), mosqueID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"programs": programs})
}

type recordContributionRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	ProgramID   string `json:"program_id" binding:"required"`
	AmountCents int64  `json:"amount_cents" binding:"required"`
	PaidAt      string `json:"paid_at"`
}

func (h *KhairatHandler) recordContribution(c *gin.Context) {
	actor := actorFrom(c)
	mosqueID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_mosque_id"})
		return
	}
	var req recordContributionRequest
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
	var paidAt time.Time
	if req.PaidAt != "" {
		paidAt, err = time.Parse("2006-01-02", req.PaidAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_paid_at"})
			return
		}
	}

	contribution, err := h.khairat.RecordContribution(c.Request.Context(), actor, khairatdomain.RecordContributionRequest{
		MosqueID:    mosqueID,
		UserID:      userID,
		ProgramID:   programID,
		AmountCents: req.AmountCents,
		PaidAt:      paidAt,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.auditor.Record(c.Request.Context(), audit.Entry{
		MosqueID:   &mosqueID,
		ActorID:    actor.UserID,
		Action:     "khairat.record_contribution",
		TargetType: "khairat_contribution",
		TargetID:   contribution.ID.String(),
		Metadata:   map[string]any{"amount_cents": req.AmountCents},
	})
	c.JSON(http.StatusCreated, contribution)
}

func (h *KhairatHandler) listContributions(c *gin.Context) {
	actor := actorFrom(c)
	mosqueID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_mosque_id"})
		return
	}
	userID := actor.UserID
	if raw := c.Query("user_id"); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_user_id"})
			return
		}
		userID = id
	}
	contributions, err := h.khairat.ListContributionsByUser(c.Request.Context(), actor, mosqueID, userID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contributions": contributions})
}

func (h *KhairatHandler) listProgramContributions(c *gin.Context) {
	programID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_program_id"})
		return
	}
	contributions, err := h.khairat.ListContributionsByProgram(c.Request.Context(), actorFrom(c), programID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contributions": contributions})
}
