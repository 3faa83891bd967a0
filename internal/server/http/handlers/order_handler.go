package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/tgmarket/internal/domain/errors"
	"github.com/polkiloo/tgmarket/internal/domain/model"
	"github.com/polkiloo/tgmarket/internal/server/http/dto"
	"github.com/polkiloo/tgmarket/internal/usecase"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ServiceID == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := h.facade.CreateOrder(c.Request.Context(), usecase.CreateOrderInput{
		ClientID:    CurrentUserID(c),
		ServiceID:   req.ServiceID,
		ProposalID:  req.ProposalID,
		Price:       req.Price,
		DeadlineAt:  req.DeadlineAt,
		QuizAnswers: req.QuizAnswers,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(*order))
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.facade.Order(c.Request.Context(), c.Param("id"), CurrentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// List handles GET /api/user/orders.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.facade.Orders(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, response)
}

// Transition handles POST /api/orders/:id/transitions. A lost race answers
// 409 with the order as it is now so the client can decide again.
func (h *OrderHandler) Transition(c *gin.Context) {
	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Action == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	ctx := c.Request.Context()
	actor := CurrentActor(c)
	id := c.Param("id")

	order, err := h.facade.TransitionOrder(ctx, id, actor, model.Action(req.Action), usecase.TransitionPayload{
		Outcome: model.Outcome(req.Outcome),
	})
	if err != nil {
		if errors.Is(err, domainErrors.ErrConflict) {
			if current, getErr := h.facade.Order(ctx, id, actor); getErr == nil {
				resp := toOrderResponse(*current)
				c.AbortWithStatusJSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error(), Order: &resp})
				return
			}
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Messages handles GET /api/orders/:id/messages.
func (h *OrderHandler) Messages(c *gin.Context) {
	messages, err := h.facade.OrderMessages(c.Request.Context(), c.Param("id"), CurrentActor(c))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		meta, err := json.Marshal(m.Meta)
		if err != nil {
			writeError(c, err)
			return
		}
		resp = append(resp, dto.MessageResponse{
			ID:        m.ID,
			SenderID:  m.SenderID,
			Text:      m.Text,
			Meta:      meta,
			CreatedAt: m.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:          order.ID,
		ServiceID:   order.ServiceID,
		ClientID:    order.ClientID,
		ProviderID:  order.ProviderID,
		Price:       order.Price,
		Status:      string(order.Status),
		DeadlineAt:  order.DeadlineAt,
		QuizAnswers: order.QuizAnswers,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}
