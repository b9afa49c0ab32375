package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/ywlim06-debug/dolddari-coach/internal/entity"
	"github.com/ywlim06-debug/dolddari-coach/internal/pkg/logger"
	"github.com/ywlim06-debug/dolddari-coach/internal/pkg/response"
	"go.uber.org/zap"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

type Handler struct {
	usecase SessionUsecase
}

func NewHandler(usecase SessionUsecase) *Handler {
	return &Handler{
		usecase: usecase,
	}
}

// StartSession handles POST /sessions
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "StartSession")

	var req entity.StartSessionRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	session, err := h.usecase.StartSession(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Created(w, session)
}

// GetSession handles GET /sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "GetSession")

	session, err := h.usecase.GetSession(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, session)
}

// NextQuestion handles POST /sessions/{id}/question
func (h *Handler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "NextQuestion")

	question, err := h.usecase.NextQuestion(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, question)
}

// SubmitAnswer handles POST /sessions/{id}/answers
func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "SubmitAnswer")

	var req entity.SubmitAnswerRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	session, err := h.usecase.SubmitAnswer(ctx, sessionID, req.Answer)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, session)
}

// GoBack handles POST /sessions/{id}/back
func (h *Handler) GoBack(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "GoBack")

	session, err := h.usecase.GoBack(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, session)
}

// GenerateReport handles POST /sessions/{id}/report
func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "GenerateReport")

	report, err := h.usecase.GenerateReport(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	if !report.Verified {
		ctxzap.Warn(ctx, "report returned with policy warnings", zap.Strings("violations", report.Violations))
	}
	response.Success(w, report)
}

// Transcript handles GET /sessions/{id}/transcript
func (h *Handler) Transcript(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "Transcript")

	transcript, err := h.usecase.Transcript(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, transcript)
}

// ResetSession handles POST /sessions/{id}/reset
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "ResetSession")

	session, err := h.usecase.ResetSession(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, session)
}

// StartFollowUpSession handles POST /sessions/{id}/follow-up
func (h *Handler) StartFollowUpSession(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "StartFollowUpSession")

	var req entity.FollowUpRequest
	if !h.decode(ctx, w, r, &req) {
		return
	}

	session, err := h.usecase.StartFollowUpSession(ctx, sessionID, req.Answer)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Created(w, session)
}

// DeleteSession handles DELETE /sessions/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "DeleteSession")

	if err := h.usecase.DeleteSession(ctx, sessionID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.NoContent(w)
}

func (h *Handler) sessionContext(r *http.Request, action string) (context.Context, string) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.AddFields(r.Context(),
		zap.String("session_id", sessionID),
		zap.String("action", action),
	)
	return ctx, sessionID
}

func (h *Handler) decode(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return false
	}
	return true
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if status >= http.StatusInternalServerError {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Info(ctx, message, zap.Error(err))
	}
	response.Error(w, status, message)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrSessionNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "session not found", err)
	case errors.Is(err, entity.ErrEmptyAnswer),
		errors.Is(err, entity.ErrInvalidParameter),
		errors.Is(err, entity.ErrMissingField):
		h.respondError(ctx, w, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, entity.ErrInterviewComplete),
		errors.Is(err, entity.ErrInterviewIncomplete),
		errors.Is(err, entity.ErrNoPendingQuestion),
		errors.Is(err, entity.ErrNothingToUndo),
		errors.Is(err, entity.ErrNoFollowUpQuestion):
		h.respondError(ctx, w, http.StatusConflict, err.Error(), err)
	case errors.Is(err, entity.ErrConcurrentUpdate):
		h.respondError(ctx, w, http.StatusConflict, entity.ErrConcurrentUpdate.Error(), err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
