package server

import (
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	"github.com/masjidkita/masjidkita/internal/audit"
	"github.com/masjidkita/masjidkita/internal/authz"
	"github.com/masjidkita/masjidkita/internal/clock"
	financedomain "github.com/masjidkita/masjidkita/internal/finance/domain"
)

type FinanceHandler struct {
	finance financedomain.Service
	checker *authz.Checker
	clock   clock.Clock
	node    *snowflake.Node
	auditor *audit.Recorder
}

func NewFinanceHandler(finance financedomain.Service, checker *authz.Checker, clk clock.Clock, node *snowflake.Node, auditor *audit.Recorder) *FinanceHandler {
	return &FinanceHandler{finance: finance, checker: checker, clock: clk, node: node, auditor: auditor}
}

func (h *FinanceHandler) Register(api *gin.RouterGroup) {
	api.GET("/mosques/:id/ledger/accounts", h.listAccounts)
	api.POST("/mosques/:id/ledger/accounts", h.createAccount)
	api.GET("/mosques/:id/ledger/entries", h.listEntries)
	api.POST("/mosques/:id/ledger/entries", h.postEntry)
	api.GET("/mosques/:id/ledger/trial-balance", h.trialBalance)
}

func (h *FinanceHandler) listAccounts(c *gin.Context) {
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
	accounts, err := h.finance.ListAccounts(c.Request.Context(), mosqueID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

type createAccountRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
	Type string `json:"type" binding:"required"`
}

func (h *FinanceHandler) createAccount(c *gin.Context) {
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
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	account, err := h.finance.CreateAccount(c.Request.Context(), mosqueID, req.Code, req.Name, financedomain.AccountType(req.Type))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

func (h *FinanceHandler) listEntries(c *gin.Context) {
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
	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_from"})
			return
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_to"})
			return
		}
		to = &t
	}
	entries, err := h.finance.ListEntries(c.Request.Context(), mosqueID, from, to)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

type postEntryRequest struct {
	Description string `json:"description" binding:"required"`
	EntryDate   string `json:"entry_date"`
	Lines       []struct {
		AccountCode string `json:"account_code" binding:"required"`
		DebitCents  int64  `json:"debit_cents"`
		CreditCents int64  `json:"credit_cents"`
	} `json:"lines" binding:"required"`
}

// postEntry records a manual journal entry (corrections, donations outside
// the khairat/zakat workflows).
func (h *FinanceHandler) postEntry(c *gin.Context) {
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
	var req postEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	entryDate := h.clock.Now()
	if req.EntryDate != "" {
		t, err := time.Parse("2006-01-02", req.EntryDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_entry_date"})
			return
		}
		entryDate = t
	}

	lines := make([]financedomain.LineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, financedomain.LineInput{
			AccountCode: l.AccountCode,
			DebitCents:  l.DebitCents,
			CreditCents: l.CreditCents,
		})
	}

	entry, err := h.finance.Post(c.Request.Context(), nil, financedomain.PostRequest{
		MosqueID:    mosqueID,
		SourceType:  "manual_entry",
		SourceID:    h.node.Generate(),
		EntryDate:   entryDate,
		Description: req.Description,
		Lines:       lines,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	h.auditor.Record(c.Request.Context(), audit.Entry{
		MosqueID:   &mosqueID,
		ActorID:    actor.UserID,
		Action:     "finance.post_entry",
		TargetType: "ledger_entry",
		TargetID:   entry.ID.String(),
	})
	c.JSON(http.StatusCreated, entry)
}

func (h *FinanceHandler) trialBalance(c *gin.Context) {
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
	balances, err := h.finance.TrialBalance(c.Request.Context(), mosqueID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": balances})
}
