package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"lojinha/internal/domain"
	"lojinha/internal/service"
)

type AddressHandler struct {
	identity  service.IdentityService
	addresses service.AddressService
	logger    *zap.Logger
}

func NewAddressHandler(identity service.IdentityService, addresses service.AddressService, logger *zap.Logger) *AddressHandler {
	return &AddressHandler{identity: identity, addresses: addresses, logger: logger}
}

type createAddressRequest struct {
	Street string `json:"street" binding:"required"`
	City   string `json:"city" binding:"required"`
	State  string `json:"state" binding:"required"`
	Zip    string `json:"zip" binding:"required"`
}

func (h *AddressHandler) Create(c *gin.Context) {
	var req createAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	customer, err := h.identity.Resolve(c.Request.Context(), c.GetString("principal_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	address, err := h.addresses.Create(c.Request.Context(), customer.ID, req.Street, req.City, req.State, req.Zip)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toAddressResponse(address))
}

func (h *AddressHandler) List(c *gin.Context) {
	customer, err := h.identity.Resolve(c.Request.Context(), c.GetString("principal_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	addresses, err := h.addresses.List(c.Request.Context(), customer.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := make([]addressResponse, 0, len(addresses))
	for i := range addresses {
		resp = append(resp, toAddressResponse(&addresses[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// patchAddressRequest uses pointers so an absent field and an empty field are
// distinguishable.
type patchAddressRequest struct {
	Street *string `json:"street"`
	City   *string `json:"city"`
	State  *string `json:"state"`
	Zip    *string `json:"zip"`
}

func (h *AddressHandler) Patch(c *gin.Context) {
	addressID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address id"})
		return
	}
	var req patchAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	customer, err := h.identity.Resolve(c.Request.Context(), c.GetString("principal_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	patch := domain.AddressPatch{Street: req.Street, City: req.City, State: req.State, Zip: req.Zip}
	address, err := h.addresses.Patch(c.Request.Context(), customer.ID, addressID, patch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toAddressResponse(address))
}
