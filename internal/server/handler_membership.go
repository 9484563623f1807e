package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/masjidkita/masjidkita/internal/audit"
	"github.com/masjidkita/masjidkita/internal/authz"
	memberdomain "github.com/masjidkita/masjidkita/internal/membership/domain"
	"github.com/masjidkita/masjidkita/internal/ratelimit"
)

type MembershipHandler struct {
	memberships memberdomain.Service
	limiter     *ratelimit.Limiter
	auditor     *audit.Recorder
}

func NewMembershipHandler(memberships memberdomain.Service, limiter *ratelimit.Limiter, auditor *audit.Recorder) *MembershipHandler {
	return &MembershipHandler{memberships: memberships, limiter: limiter, auditor: auditor}
}

func (h *MembershipHandler) Register(api *gin.RouterGroup) {
	api.POST("/mosques/:id/applications", h.submit)
	api.GET("/mosques/:id/applications", h.listByMosque)
	api.POST("/applications/:id/under-review", h.markUnderReview)
	api.POST("/applications/:id/review", h.review)
	api.DELETE("/applications/:id", h.delete)
	api.POST("/memberships/:id/withdraw", h.withdraw)
	api.POST("/memberships/:id/suspend", h.suspend)
	api.POST("/memberships/:id/reinstate", h.reinstate)
	api.GET("/me/memberships", h.listMine)
}

type submitRequest struct {
	Domain            string `json:"domain" binding:"required"`
	ICPassportNumber  string `json:"ic_passport_number"`
	ApplicationReason string `json:"application_reason"`
}

func (h *MembershipHandler) submit(c *gin.Context) {
	actor := actorFrom(c)
	mosqueID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_mosque_id"})
		return
	}
	if !h.limiter.Allow(c.Request.Context(), "submit:"+actor.UserID.String()) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too_many_requests"})
		return
	}
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	result, err := h.memberships.Submit(c.Request.Context(), actor.UserID, memberdomain.SubmitRequest{
		Domain:            memberdomain.Domain(req.Domain),
		MosqueID:          mosqueID,
		ICPassportNumber:  req.ICPassportNumber,
		ApplicationReason: req.ApplicationReason,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	status := http.StatusCreated
	if result.Reactivated {
		status = http.StatusOK
	}
	c.JSON(status, membershipView(result.Membership))
}

func (h *MembershipHandler) listByMosque(c *gin.Context) {
	mosqueID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_mosque_id"})
		return
	}
	d := memberdomain.Domain(c.DefaultQuery("domain", string(memberdomain.DomainKariah)))
	var status *memberdomain.Status
	if s := c.Query("status"); s != "" {
		st := memberdomain.Status(s)
		status = &st
	}
	memberships, err := h.memberships.ListByMosque(c.Request.Context(), actorFrom(c), d, mosqueID, status)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"memberships": views(memberships)})
}

func (h *MembershipHandler) markUnderReview(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_application_id"})
		return
	}
	m, err := h.memberships.MarkUnderReview(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, membershipView(m))
}

type reviewRequest struct {
	Decision   string `json:"decision" binding:"required"`
	AdminNotes string `json:"admin_notes"`
}

func (h *MembershipHandler) review(c *gin.Context) {
	actor := actorFrom(c)
	id, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_application_id"})
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	decision := memberdomain.Decision(req.Decision)
	switch req.Decision {
	case "approve", "approved":
		decision = memberdomain.DecisionApproved
	case "reject", "rejected":
		decision = memberdomain.DecisionRejected
	}

	m, err := h.memberships.Review(c.Request.Context(), actor, memberdomain.ReviewRequest{
		MembershipID: id,
		Decision:     decision,
		AdminNotes:   req.AdminNotes,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.auditor.Record(c.Request.Context(), audit.Entry{
		MosqueID:   &m.MosqueID,
		ActorID:    actor.UserID,
		Action:     "membership.review",
		TargetType: "membership",
		TargetID:   m.ID.String(),
		Metadata:   map[string]any{"decision": string(decision)},
	})
	c.JSON(http.StatusOK, membershipView(m))
}

func (h *MembershipHandler) withdraw(c *gin.Context) {
	h.transition(c, h.memberships.Withdraw, "membership.withdraw")
}

func (h *MembershipHandler) suspend(c *gin.Context) {
	h.transition(c, h.memberships.Suspend, "membership.suspend")
}

func (h *MembershipHandler) reinstate(c *gin.Context) {
	h.transition(c, h.memberships.Reinstate, "membership.reinstate")
}

type transitionFunc func(ctx context.Context, actor authz.Actor, membershipID snowflake.ID) (*memberdomain.Membership, error)

func (h *MembershipHandler) transition(c *gin.Context, op transitionFunc, action string) {
	actor := actorFrom(c)
	id, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_membership_id"})
		return
	}
	m, err := op(c.Request.Context(), actor, id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if actor.UserID != m.UserID {
		h.auditor.Record(c.Request.Context(), audit.Entry{
			MosqueID:   &m.MosqueID,
			ActorID:    actor.UserID,
			Action:     action,
			TargetType: "membership",
			TargetID:   m.ID.String(),
		})
	}
	c.JSON(http.StatusOK, membershipView(m))
}

func (h *MembershipHandler) delete(c *gin.Context) {
	actor := actorFrom(c)
	id, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_application_id"})
		return
	}
	if err := h.memberships.Delete(c.Request.Context(), actor, id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MembershipHandler) listMine(c *gin.Context) {
	memberships, err := h.memberships.ListByUser(c.Request.Context(), actorFrom(c).UserID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"memberships": views(memberships)})
}

// membershipView renders dates in the API's wire format (joined_date as a
// plain ISO date).
func membershipView(m *memberdomain.Membership) gin.H {
	view := gin.H{
		"id":        m.ID.String(),
		"domain":    m.Domain,
		"mosque_id": m.MosqueID.String(),
		"user_id":   m.UserID.String(),
		"status":    m.Status,
	}
	if m.ApplicationReason != nil {
		view["application_reason"] = *m.ApplicationReason
	}
	if m.AdminNotes != nil {
		view["admin_notes"] = *m.AdminNotes
	}
	if m.MembershipNumber != nil {
		view["membership_number"] = *m.MembershipNumber
	}
	if m.JoinedDate != nil {
		view["joined_date"] = m.JoinedDate.Format("2006-01-02")
	}
	if m.ReviewedAt != nil {
		view["reviewed_at"] = m.ReviewedAt.UTC().Format(time.RFC3339)
	}
	view["created_at"] = m.CreatedAt.UTC().Format(time.RFC3339)
	return view
}

func views(ms []memberdomain.Membership) []gin.H {
	out := make([]gin.H, 0, len(ms))
	for i := range ms {
		out = append(out, membershipView(&ms[i]))
	}
	return out
}
