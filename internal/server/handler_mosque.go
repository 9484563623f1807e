package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/masjidkita/masjidkita/internal/audit"
	"github.com/masjidkita/masjidkita/internal/authz"
	mosquedomain "github.com/masjidkita/masjidkita/internal/mosque/domain"
)

type MosqueHandler struct {
	mosques mosquedomain.Service
	checker *authz.Checker
	auditor *audit.Recorder
}

func NewMosqueHandler(mosques mosquedomain.Service, checker *authz.Checker, auditor *audit.Recorder) *MosqueHandler {
	return &MosqueHandler{mosques: mosques, checker: checker, auditor: auditor}
}

func (h *MosqueHandler) Register(api *gin.RouterGroup) {
	api.GET("/mosques", h.list)
	api.POST("/mosques", h.create)
	api.GET("/mosques/:id", h.get)
	api.POST("/mosques/:id/admins", h.addAdmin)
}

func (h *MosqueHandler) list(c *gin.Context) {
	mosques, err := h.mosques.List(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mosques": mosques})
}

func (h *MosqueHandler) get(c *gin.Context) {
	m, err := h.mosques.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

type createMosqueRequest struct {
	Name        string `json:"name" binding:"required"`
	Address     string `json:"address"`
	AdminUserID string `json:"admin_user_id"`
}

func (h *MosqueHandler) create(c *gin.Context) {
	actor := actorFrom(c)
	if err := h.checker.RequirePlatformAdmin(actor); err != nil {
		abortWithError(c, err)
		return
	}
	var req createMosqueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	adminID := actor.UserID
	if req.AdminUserID != "" {
		id, err := snowflake.ParseString(req.AdminUserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_admin_user_id"})
			return
		}
		adminID = id
	}

	m, err := h.mosques.Create(c.Request.Context(), mosquedomain.CreateMosqueRequest{
		Name:        req.Name,
		Address:     req.Address,
		AdminUserID: adminID,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.auditor.Record(c.Request.Context(), audit.Entry{
		ActorID:    actor.UserID,
		Action:     "mosque.create",
		TargetType: "mosque",
		TargetID:   m.ID,
	})
	c.JSON(http.StatusCreated, m)
}

type addAdminRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

func (h *MosqueHandler) addAdmin(c *gin.Context) {
	actor := actorFrom(c)
	mosqueID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_mosque_id"})
		return
	}
	if err := h.checker.RequireMosqueAdmin(c.Request.Context(), actor, mosqueID); err != nil {
		abortWithError(c, err)
		return
	}
	var req addAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	userID, err := snowflake.ParseString(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_user_id"})
		return
	}
	if err := h.mosques.AddAdmin(c.Request.Context(), mosqueID, userID); err != nil {
		abortWithError(c, err)
		return
	}
	h.auditor.Record(c.Request.Context(), audit.Entry{
		MosqueID:   &mosqueID,
		ActorID:    actor.UserID,
		Action:     "mosque.add_admin",
		TargetType: "user",
		TargetID:   userID.String(),
	})
	c.Status(http.StatusNoContent)
}
