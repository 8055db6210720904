package handler

import (
	"net/http"

	"github.com/segyhp/emi-ledger/internal/domain"
	"github.com/segyhp/emi-ledger/pkg/response"

	"github.com/go-playground/validator/v10"
)

type CatalogHandler struct {
	service   CatalogAdmin
	validator *validator.Validate
}

func NewCatalogHandler(service CatalogAdmin) *CatalogHandler {
	return &CatalogHandler{
		service:   service,
		validator: NewValidator(),
	}
}

// Signup handles POST /api/signup
func (h *CatalogHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var request domain.RegisterUserRequest
	if !decodeAndValidate(w, r, h.validator, &request) {
		return
	}

	user, err := h.service.RegisterUser(r.Context(), &request)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, domain.RegisterUserResponse{
		Message: "User registered successfully",
		User:    user,
	})
}

// Users handles GET /api/users
func (h *CatalogHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, users)
}

// CreateVehicle handles POST /api/vehicles
func (h *CatalogHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var request domain.VehicleRequest
	if !decodeAndValidate(w, r, h.validator, &request) {
		return
	}

	vehicle, err := h.service.CreateVehicle(r.Context(), &request)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, vehicle)
}

// UpdateVehicle handles PUT /api/vehicles/{id}
func (h *CatalogHandler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var request domain.VehicleRequest
	if !decodeAndValidate(w, r, h.validator, &request) {
		return
	}

	vehicle, err := h.service.UpdateVehicle(r.Context(), id, &request)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, domain.VehicleResponse{
		Message: "Vehicle updated successfully",
		Vehicle: vehicle,
	})
}

// DeleteVehicle handles DELETE /api/vehicles/{id}
func (h *CatalogHandler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteVehicle(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	response.Success(w, domain.VehicleResponse{Message: "Vehicle deleted successfully"})
}
