package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/preptrack/preptrack-api/internal/api/shared"
	"github.com/preptrack/preptrack-api/internal/domain"
	"github.com/preptrack/preptrack-api/internal/platform/logger"
	"github.com/preptrack/preptrack-api/internal/service/dashboard"
)

// DashboardHandler handles dashboard metric reads.
type DashboardHandler struct {
	dashboardService dashboard.DashboardService
	logger           *slog.Logger
	timeFunc         func() time.Time // Injectable for testing
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(
	dashboardService dashboard.DashboardService,
	logger *slog.Logger,
) *DashboardHandler {
	if dashboardService == nil {
		panic("dashboard service cannot be nil for DashboardHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for DashboardHandler")
	}

	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger.With(slog.String("component", "dashboard_handler")),
		timeFunc:         time.Now,
	}
}

// GetDashboard handles GET /dashboard requests. The scope is selected with
// the track and department query parameters; omitting them targets the
// placement track and the general department.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	query := r.URL.Query()
	scope := domain.NewScope(userID, domain.Track(query.Get("track")), query.Get("department"))
	if err := scope.Validate(); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	bundle, err := h.dashboardService.ComputeDashboard(r.Context(), scope, h.timeFunc())
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to compute dashboard"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("dashboard served",
		slog.String("user_id", userID.String()),
		slog.String("track", string(scope.Track)),
		slog.String("department", scope.Department))

	shared.RespondWithJSON(w, r, http.StatusOK, bundle)
}
