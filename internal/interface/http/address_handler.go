package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/spotifood/spotifood-api/internal/application"
	"github.com/spotifood/spotifood-api/internal/domain/entity"
	"github.com/spotifood/spotifood-api/internal/interface/middleware"
	"github.com/spotifood/spotifood-api/pkg/response"
	"github.com/spotifood/spotifood-api/pkg/validation"
)

// AddressHandler serves the caller's own address book. Every operation is
// scoped to the authenticated user; addresses of other users come back as
// 404 rather than 403.
type AddressHandler struct {
	Svc    *application.AddressService
	Logger *logrus.Logger
}

func NewAddressHandler(svc *application.AddressService, logger *logrus.Logger) *AddressHandler {
	return &AddressHandler{Svc: svc, Logger: logger}
}

func addressJSON(a *entity.Address) gin.H {
	return gin.H{
		"id":           a.ID,
		"user_id":      a.UserID,
		"address_name": a.AddressName,
		"address":      a.Address,
		"latitude":     a.Latitude,
		"longitude":    a.Longitude,
		"is_default":   a.IsDefault,
		"created_at":   a.CreatedAt,
		"updated_at":   a.UpdatedAt,
	}
}

type createAddressRequest struct {
	AddressName string   `json:"address_name" binding:"omitempty,max=50"`
	Address     string   `json:"address" binding:"required"`
	Latitude    *float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" binding:"omitempty,longitude"`
	IsDefault   bool     `json:"is_default"`
}

type updateAddressRequest struct {
	AddressName *string  `json:"address_name" binding:"omitempty,max=50"`
	Address     *string  `json:"address"`
	Latitude    *float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" binding:"omitempty,longitude"`
	IsDefault   *bool    `json:"is_default"`
}

// List GET /api/addresses
func (h *AddressHandler) List(c *gin.Context) {
	caller := middleware.CurrentUser(c)
	addresses, err := h.Svc.List(c.Request.Context(), caller.ID)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", caller.ID).Error("list addresses failed")
		response.Error[any](c, http.StatusInternalServerError, "list addresses failed", nil)
		return
	}
	out := make([]gin.H, 0, len(addresses))
	for i := range addresses {
		out = append(out, addressJSON(&addresses[i]))
	}
	response.Success(c, http.StatusOK, out, "addresses", nil)
}

// Create POST /api/addresses
// Marking the new address as default clears the flag on every sibling.
func (h *AddressHandler) Create(c *gin.Context) {
	caller := middleware.CurrentUser(c)
	var req createAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	a, err := h.Svc.Create(c.Request.Context(), caller.ID, application.CreateAddressInput{
		AddressName: req.AddressName,
		Address:     req.Address,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", caller.ID).Error("create address failed")
		response.Error[any](c, http.StatusInternalServerError, "create address failed", nil)
		return
	}
	response.Success(c, http.StatusCreated, addressJSON(a), "address created", nil)
}

// Get GET /api/addresses/:id
func (h *AddressHandler) Get(c *gin.Context) {
	caller := middleware.CurrentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	a, err := h.Svc.Get(c.Request.Context(), caller.ID, id)
	if err != nil {
		if err == application.ErrAddressNotFound {
			response.Error[any](c, http.StatusNotFound, "address not found", nil)
			return
		}
		h.Logger.WithError(err).WithField("address_id", id).Error("get address failed")
		response.Error[any](c, http.StatusInternalServerError, "get address failed", nil)
		return
	}
	response.Success(c, http.StatusOK, addressJSON(a), "address", nil)
}

// Update PUT /api/addresses/:id
// Absent fields are left untouched; setting is_default clears the flag on
// every other address of the caller.
func (h *AddressHandler) Update(c *gin.Context) {
	caller := middleware.CurrentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	a, err := h.Svc.Update(c.Request.Context(), caller.ID, id, application.UpdateAddressInput{
		AddressName: req.AddressName,
		Address:     req.Address,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		IsDefault:   req.IsDefault,
	})
	if err != nil {
		if err == application.ErrAddressNotFound {
			response.Error[any](c, http.StatusNotFound, "address not found", nil)
			return
		}
		h.Logger.WithError(err).WithField("address_id", id).Error("update address failed")
		response.Error[any](c, http.StatusInternalServerError, "update address failed", nil)
		return
	}
	response.Success(c, http.StatusOK, addressJSON(a), "address updated", nil)
}

// Delete DELETE /api/addresses/:id
func (h *AddressHandler) Delete(c *gin.Context) {
	caller := middleware.CurrentUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), caller.ID, id); err != nil {
		if err == application.ErrAddressNotFound {
			response.Error[any](c, http.StatusNotFound, "address not found", nil)
			return
		}
		h.Logger.WithError(err).WithField("address_id", id).Error("delete address failed")
		response.Error[any](c, http.StatusInternalServerError, "delete address failed", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "address deleted", nil)
}
