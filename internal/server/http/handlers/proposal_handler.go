package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/tgmarket/internal/domain/model"
	"github.com/polkiloo/tgmarket/internal/server/http/dto"
	"github.com/polkiloo/tgmarket/internal/usecase"
)

// ProposalHandler serves price negotiation.
type ProposalHandler struct {
	facade ProposalFacade
}

// NewProposalHandler constructs ProposalHandler.
func NewProposalHandler(facade ProposalFacade) *ProposalHandler {
	return &ProposalHandler{facade: facade}
}

// Create handles POST /api/proposals. A missing bound defaults to the
// listing's minimum price.
func (h *ProposalHandler) Create(c *gin.Context) {
	var req dto.ProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.ServiceID == "" && req.OrderID == "") {
		c.Status(http.StatusBadRequest)
		return
	}

	in := usecase.ProposeInput{
		FromUserID: CurrentUserID(c),
		ToUserID:   req.ToUserID,
		ServiceID:  req.ServiceID,
		OrderID:    req.OrderID,
		Price:      req.Price,
	}
	if req.Bound != nil {
		in.Bound = model.PriceBound{Kind: model.BoundKind(req.Bound.Kind), Value: req.Bound.Value}
	}

	proposal, err := h.facade.Propose(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProposalResponse(*proposal))
}

// Get handles GET /api/proposals/:id.
func (h *ProposalHandler) Get(c *gin.Context) {
	proposal, err := h.facade.Proposal(c.Request.Context(), c.Param("id"), CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProposalResponse(*proposal))
}

// Accept handles POST /api/proposals/:id/accept.
func (h *ProposalHandler) Accept(c *gin.Context) {
	proposal, err := h.facade.AcceptProposal(c.Request.Context(), c.Param("id"), CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProposalResponse(*proposal))
}

// Reject handles POST /api/proposals/:id/reject.
func (h *ProposalHandler) Reject(c *gin.Context) {
	proposal, err := h.facade.RejectProposal(c.Request.Context(), c.Param("id"), CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProposalResponse(*proposal))
}

func toProposalResponse(p model.PriceProposal) dto.ProposalResponse {
	resp := dto.ProposalResponse{
		ID:            p.ID,
		ServiceID:     p.ServiceID,
		FromUserID:    p.FromUserID,
		ToUserID:      p.ToUserID,
		ProposedPrice: p.ProposedPrice,
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
		ResolvedAt:    p.ResolvedAt,
	}
	if p.OrderScoped() {
		resp.OrderID = *p.OrderID
	}
	return resp
}
