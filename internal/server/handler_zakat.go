package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/masjidkita/masjidkita/internal/audit"
	"github.com/masjidkita/masjidkita/internal/clock"
	zakatdomain "github.com/masjidkita/masjidkita/internal/zakat/domain"
)

type ZakatHandler struct {
	zakat   zakatdomain.Service
	clock   clock.Clock
	auditor *audit.Recorder
}

func NewZakatHandler(zakat zakatdomain.Service, clk clock.Clock, auditor *audit.Recorder) *ZakatHandler {
	return &ZakatHandler{zakat: zakat, clock: clk, auditor: auditor}
}

func (h *ZakatHandler) Register(api *gin.RouterGroup) {
	api.POST("/mosques/:id/zakat/assessments", h.assess)
	api.GET("/mosques/:id/zakat/assessments/me", h.myAssessment)
	api.GET("/mosques/:id/zakat/assessments", h.listAssessments)
	api.POST("/mosques/:id/zakat/distributions", h.distribute)
	api.GET("/mosques/:id/zakat/distributions", h.listDistributions)
}

type assessRequest struct {
	Year             int   `json:"year"`
	WealthCents      int64 `json:"wealth_cents" binding:"required"`
	LiabilitiesCents int64 `json:"liabilities_cents"`
}

func (h *ZakatHandler) assess(c *gin.Context) {
	actor := actorFrom(c)
	mosqueID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_mosque_id"})
		return
	}
	var req assessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	year := req.Year
	if year == 0 {
		year = h.clock.Now().Year()
	}
	assessment, err := h.zakat.Assess(c.Request.Context(), actor.UserID, zakatdomain.AssessRequest{
		MosqueID:         mosqueID,
		Year:             year,
		WealthCents:      req.WealthCents,
		LiabilitiesCents: req.LiabilitiesCents,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, assessment)
}

func (h *ZakatHandler) myAssessment(c *gin.Context) {
	actor := actorFrom(c)
	mosqueID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_mosque_id"})
		return
	}
	year := h.yearQuery(c)
	assessment, err := h.zakat.GetAssessment(c.Request.Context(), actor.UserID, mosqueID, year)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, assessment)
}

func (h *ZakatHandler) listAssessments(c *gin.Context) {
	mosqueID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_mosque_id"})
		return
	}
	assessments, err := h.zakat.ListAssessments(c.Request.Context(), actorFrom(c), mosqueID, h.yearQuery(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assessments": assessments})
}

type distributeRequest struct {
	RecipientName string `json:"recipient_name" binding:"required"`
	AsnafCategory string `json:"asnaf_category" binding:"required"`
	AmountCents   int64  `json:"amount_cents" binding:"required"`
	DistributedAt string `json:"distributed_at"`
	Notes         string `json:"notes"`
}

func (h *ZakatHandler) distribute(c *gin.Context) {
	actor := actorFrom(c)
	mosqueID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_mosque_id"})
		return
	}
	var req distributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	var distributedAt time.Time
	if req.DistributedAt != "" {
		t, err := time.Parse("2006-01-02", req.DistributedAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_distributed_at"})
			return
		}
		distributedAt = t
	}
	distribution, err := h.zakat.Distribute(c.Request.Context(), actor, zakatdomain.DistributeRequest{
		MosqueID:      mosqueID,
		RecipientName: req.RecipientName,
		AsnafCategory: req.AsnafCategory,
		AmountCents:   req.AmountCents,
		DistributedAt: distributedAt,
		Notes:         req.Notes,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.auditor.Record(c.Request.Context(), audit.Entry{
		MosqueID:   &mosqueID,
		ActorID:    actor.UserID,
		Action:     "zakat.distribute",
		TargetType: "zakat_distribution",
		TargetID:   distribution.ID.String(),
		Metadata:   map[string]any{"amount_cents": req.AmountCents, "asnaf": req.AsnafCategory},
	})
	c.JSON(http.StatusCreated, distribution)
}

func (h *ZakatHandler) listDistributions(c *gin.Context) {
	mosqueID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_mosque_id"})
		return
	}
	distributions, err := h.zakat.ListDistributions(c.Request.Context(), actorFrom(c), mosqueID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"distributions": distributions})
}

func (h *ZakatHandler) yearQuery(c *gin.Context) int {
	if raw := c.Query("year"); raw != "" {
		if y, err := strconv.Atoi(raw); err == nil {
			return y
		}
	}
	return h.clock.Now().Year()
}
