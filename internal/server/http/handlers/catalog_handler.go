package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/tgmarket/internal/domain/model"
	"github.com/polkiloo/tgmarket/internal/server/http/dto"
	"github.com/polkiloo/tgmarket/internal/usecase"
)

// CatalogHandler serves service listings.
type CatalogHandler struct {
	facade CatalogFacade
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(facade CatalogFacade) *CatalogHandler {
	return &CatalogHandler{facade: facade}
}

// Create handles POST /api/services.
func (h *CatalogHandler) Create(c *gin.Context) {
	var req dto.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	service, err := h.facade.CreateService(c.Request.Context(), usecase.CreateServiceInput{
		ProviderID: CurrentUserID(c),
		Title:      req.Title,
		Price:      req.Price,
		MinPrice:   req.MinPrice,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toServiceResponse(*service))
}

// List handles GET /api/services.
func (h *CatalogHandler) List(c *gin.Context) {
	services, err := h.facade.Services(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]dto.ServiceResponse, 0, len(services))
	for _, s := range services {
		resp = append(resp, toServiceResponse(s))
	}
	c.JSON(http.StatusOK, resp)
}

// Get handles GET /api/services/:id.
func (h *CatalogHandler) Get(c *gin.Context) {
	service, err := h.facade.Service(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toServiceResponse(*service))
}

func toServiceResponse(s model.Service) dto.ServiceResponse {
	return dto.ServiceResponse{
		ID:         s.ID,
		ProviderID: s.ProviderID,
		Title:      s.Title,
		Price:      s.Price,
		MinPrice:   s.MinPrice,
		Active:     s.Active,
		CreatedAt:  s.CreatedAt,
	}
}
