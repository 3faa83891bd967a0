package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/tgmarket/internal/server/http/dto"
)

// LedgerHandler manages balance-related endpoints.
type LedgerHandler struct {
	facade LedgerFacade
}

// NewLedgerHandler constructs LedgerHandler.
func NewLedgerHandler(facade LedgerFacade) *LedgerHandler {
	return &LedgerHandler{facade: facade}
}

// Balance handles GET /api/user/balance.
func (h *LedgerHandler) Balance(c *gin.Context) {
	balance, err := h.facade.Balance(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{
		Total:     balance.Total,
		Held:      balance.Held,
		Available: balance.Available(),
	})
}

// Entries handles GET /api/user/ledger.
func (h *LedgerHandler) Entries(c *gin.Context) {
	entries, err := h.facade.LedgerEntries(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if len(entries) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	resp := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, dto.LedgerEntryResponse{
			ID:        e.ID,
			Kind:      string(e.Kind),
			Delta:     e.Delta,
			HeldDelta: e.HeldDelta,
			OrderID:   e.OrderID,
			Reference: e.Reference,
			CreatedAt: e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// Deposit handles POST /api/admin/deposits.
func (h *LedgerHandler) Deposit(c *gin.Context) {
	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := h.facade.Deposit(c.Request.Context(), CurrentActor(c), req.UserID, req.Amount, req.Reference); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Reconcile handles GET /api/admin/users/:id/reconcile.
func (h *LedgerHandler) Reconcile(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		c.Status(http.StatusBadRequest)
		return
	}

	balance, consistent, err := h.facade.Reconcile(c.Request.Context(), CurrentActor(c), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ReconcileResponse{
		UserID:     userID,
		Total:      balance.Total,
		Held:       balance.Held,
		Available:  balance.Available(),
		Consistent: consistent,
	})
}
