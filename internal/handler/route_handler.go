package handler

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"rowdybuddy/internal/domain"
	"rowdybuddy/internal/service"
	"rowdybuddy/pkg/errors"
	"rowdybuddy/pkg/logger"
)

// RouteHandler handles escort route HTTP requests
type RouteHandler struct {
	routeService service.RouteService
	logger       *logger.Logger
}

// NewRouteHandler creates a new route handler
func NewRouteHandler(routeService service.RouteService, log *logger.Logger) *RouteHandler {
	return &RouteHandler{
		routeService: routeService,
		logger:       log,
	}
}

// RegisterRoutes mounts the route endpoints on the given router
func (h *RouteHandler) RegisterRoutes(r chi.Router) {
	r.Route("/routes", func(r chi.Router) {
		r.Post("/", h.CreateRoute)
		r.Get("/active", h.GetActiveRoute)
		r.Get("/{routeID}", h.GetRoute)
	})
}

// RouteResponse is the JSON envelope for route endpoints
type RouteResponse struct {
	Success bool          `json:"success"`
	Data    *domain.Route `json:"data,omitempty"`
}

// CreateRoute handles POST /api/v1/routes
func (h *RouteHandler) CreateRoute(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, errors.NewValidationError("invalid request body", nil))
		return
	}

	if err := validateCreateRouteRequest(&req); err != nil {
		h.sendError(w, err)
		return
	}

	route, err := h.routeService.CreateRoute(r.Context(), &req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create route")
		h.sendError(w, err)
		return
	}

	h.sendJSON(w, http.StatusCreated, RouteResponse{Success: true, Data: route})
}

// GetRoute handles GET /api/v1/routes/{routeID}
func (h *RouteHandler) GetRoute(w http.ResponseWriter, r *http.Request) {
	routeID := chi.URLParam(r, "routeID")
	if routeID == "" {
		h.sendError(w, errors.NewValidationError("route id is required", nil))
		return
	}

	route, err := h.routeService.GetRoute(r.Context(), routeID)
	if err != nil {
		h.logger.WithError(err).WithField("route_id", routeID).Error("Failed to get route")
		h.sendError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, RouteResponse{Success: true, Data: route})
}

// GetActiveRoute handles GET /api/v1/routes/active?userId=
func (h *RouteHandler) GetActiveRoute(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		h.sendError(w, errors.NewValidationError("userId query parameter is required", nil))
		return
	}

	route, err := h.routeService.ActiveRouteForUser(r.Context(), userID)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to look up active route")
		h.sendError(w, err)
		return
	}

	if route == nil {
		h.sendError(w, errors.NewNotFoundError("user has no active route"))
		return
	}

	h.sendJSON(w, http.StatusOK, RouteResponse{Success: true, Data: route})
}

// validateCreateRouteRequest checks the request payload
func validateCreateRouteRequest(req *domain.CreateRouteRequest) error {
	details := map[string]interface{}{}

	if req.UserID == "" {
		details["userId"] = "required"
	}
	if req.DisplayName == "" {
		details["displayName"] = "required"
	}
	if !validCoordinate(req.Origin) {
		details["origin"] = "latitude must be in [-90,90], longitude in [-180,180]"
	}
	if !validCoordinate(req.Destination) {
		details["destination"] = "latitude must be in [-90,90], longitude in [-180,180]"
	}

	if len(details) > 0 {
		return errors.NewValidationError("invalid route request", details)
	}
	return nil
}

func validCoordinate(p domain.GeoPoint) bool {
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

// sendJSON writes a JSON response
func (h *RouteHandler) sendJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}

// sendError writes an error response, preserving the error's type and status
func (h *RouteHandler) sendError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"
	kind := errors.KindOf(err)

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		status = appErr.StatusCode
		message = appErr.Message
	}

	response := &errors.ErrorResponse{}
	response.Error.Type = kind
	response.Error.Message = message
	response.Error.Timestamp = time.Now().UTC().Format(time.RFC3339)
	if appErr != nil {
		response.Error.Details = appErr.Details
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encodeErr := json.NewEncoder(w).Encode(response); encodeErr != nil {
		h.logger.WithError(encodeErr).Error("Failed to encode error response")
	}
}
