package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/preptrack/preptrack-api/internal/api/shared"
	"github.com/preptrack/preptrack-api/internal/domain"
	"github.com/preptrack/preptrack-api/internal/platform/logger"
	"github.com/preptrack/preptrack-api/internal/redact"
	"github.com/preptrack/preptrack-api/internal/service/progress"
)

// ProgressHandler handles subtopic progress mutations.
type ProgressHandler struct {
	progressService progress.ProgressService
	logger          *slog.Logger
	timeFunc        func() time.Time // Injectable for testing
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(
	progressService progress.ProgressService,
	logger *slog.Logger,
) *ProgressHandler {
	if progressService == nil {
		panic("progress service cannot be nil for ProgressHandler")
	}
	if logger == nil {
		panic("logger cannot be nil for ProgressHandler")
	}

	return &ProgressHandler{
		progressService: progressService,
		logger:          logger.With(slog.String("component", "progress_handler")),
		timeFunc:        time.Now,
	}
}

// CycleStatus handles PATCH /subtopics/{id}/status requests.
// It advances the subtopic's status one step along
// NotStarted -> InProgress -> Mastered -> NotStarted.
func (h *ProgressHandler) CycleStatus(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	subtopicID, userID, ok := h.requestIdentity(w, r, log)
	if !ok {
		return
	}

	result, err := h.progressService.ApplyCycleStatus(r.Context(), userID, subtopicID, h.timeFunc())
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to update subtopic status"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("subtopic status cycled",
		slog.String("user_id", userID.String()),
		slog.String("subtopic_id", subtopicID.String()),
		slog.Int("status", int(result.Subtopic.Status)),
		slog.Bool("ledger_increment", result.Effects.LedgerIncrement))

	shared.RespondWithJSON(w, r, http.StatusOK, TransitionResponse{
		Subtopic:     subtopicToResponse(result.Subtopic),
		Notification: notificationToResponse(result.Effects.Notification),
	})
}

// ToggleRevision handles PATCH /subtopics/{id}/revision requests.
// It flips the named revision flag and keeps status in sync for "learned".
func (h *ProgressHandler) ToggleRevision(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	subtopicID, userID, ok := h.requestIdentity(w, r, log)
	if !ok {
		return
	}

	var req ToggleRevisionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("subtopic_id", subtopicID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("validation error",
			slog.String("error", redact.Error(err)),
			slog.String("subtopic_id", subtopicID.String()))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	result, err := h.progressService.ApplyToggleRevision(
		r.Context(), userID, subtopicID, domain.RevisionField(req.Field), h.timeFunc())
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to update revision flag"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("revision flag toggled",
		slog.String("user_id", userID.String()),
		slog.String("subtopic_id", subtopicID.String()),
		slog.String("field", req.Field))

	shared.RespondWithJSON(w, r, http.StatusOK, TransitionResponse{
		Subtopic:     subtopicToResponse(result.Subtopic),
		Notification: notificationToResponse(result.Effects.Notification),
	})
}

// requestIdentity pulls the subtopic ID from the URL and the user ID from the
// auth context, writing the error response itself when either is missing.
func (h *ProgressHandler) requestIdentity(
	w http.ResponseWriter,
	r *http.Request,
	log *slog.Logger,
) (subtopicID, userID uuid.UUID, ok bool) {
	pathID := chi.URLParam(r, "id")
	if pathID == "" {
		log.Warn("subtopic ID not found in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Subtopic ID is required")
		return uuid.Nil, uuid.Nil, false
	}

	subtopicID, err := uuid.Parse(pathID)
	if err != nil {
		log.Warn("invalid subtopic ID format", slog.String("subtopic_id", pathID))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid subtopic ID format")
		return uuid.Nil, uuid.Nil, false
	}

	userID, found := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !found || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return uuid.Nil, uuid.Nil, false
	}

	return subtopicID, userID, true
}
