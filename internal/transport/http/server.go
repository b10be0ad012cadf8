// package http implements the HTTP transport layer for the service.
// It handles incoming requests, decodes them, calls the appropriate service methods,
// and encodes the responses.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/review360/assessment-service/internal/apperrors"
	"github.com/review360/assessment-service/internal/service"
	"github.com/review360/assessment-service/internal/validation"
	"github.com/review360/assessment-service/pkg/logger/sl"
)

// Server holds the dependencies for the HTTP server, including the logger and service interfaces.
type Server struct {
	log               *slog.Logger
	cycleService      service.CycleService
	assessmentService service.AssessmentService
	reportService     service.ReportService
}

// NewServer creates a new instance of the HTTP server.
func NewServer(
	log *slog.Logger,
	cs service.CycleService,
	as service.AssessmentService,
	rs service.ReportService,
) *Server {
	return &Server{
		log:               log,
		cycleService:      cs,
		assessmentService: as,
		reportService:     rs,
	}
}

// Routes sets up the router with all middleware and API endpoints.
func (s *Server) Routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(s.requestID)
	mux.Use(s.logRequest)
	mux.Use(s.metricsMiddleware)

	mux.Handle("/metrics", promhttp.Handler())

	mux.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Route("/api/cycles", func(r chi.Router) {
			r.Post("/", s.createCycle)
			r.Get("/", s.listCycles)
			r.Get("/{cycleID}", s.getCycle)
			r.Put("/{cycleID}", s.updateCycle)
			r.Post("/{cycleID}/start", s.startCycle)
			r.Post("/{cycleID}/participants", s.addParticipants)
			r.Delete("/{cycleID}/participants/{participantID}", s.removeParticipant)
		})

		r.Post("/api/participants/{participantID}/respondents", s.addRespondents)

		r.Route("/api/assessments", func(r chi.Router) {
			r.Get("/", s.listAssessments)
			r.Get("/{respondentID}/questions", s.getQuestions)
			r.Post("/{respondentID}/start", s.beginAssessment)
			r.Post("/{respondentID}/responses", s.submitResponse)
			r.Post("/{respondentID}/complete", s.completeAssessment)
			r.Get("/{respondentID}/progress", s.getProgress)
		})

		r.Get("/api/questions", s.listQuestions)

		r.Route("/api/reports", func(r chi.Router) {
			r.Get("/cycles/{cycleID}", s.getCycleAnalytics)
			r.Get("/cycles/{cycleID}/compare", s.compareParticipants)
			r.Get("/summary", s.getSummary)
		})
	})

	return mux
}

func (s *Server) createCycle(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.createCycle"

	var req createCycleRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	cycle, err := s.cycleService.CreateCycle(r.Context(), getPrincipal(r.Context()), service.CreateCycleInput{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusCreated, map[string]cycleResponse{"cycle": toCycleResponse(cycle)})
}

func (s *Server) listCycles(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.listCycles"

	cycles, err := s.cycleService.ListCycles(r.Context())
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string][]cycleListItemResponse{"cycles": toCycleListResponse(cycles)})
}

func (s *Server) getCycle(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.getCycle"

	detail, err := s.cycleService.GetCycle(r.Context(), chi.URLParam(r, "cycleID"))
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]cycleDetailResponse{"cycle": toCycleDetailResponse(detail)})
}

func (s *Server) updateCycle(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.updateCycle"

	var req updateCycleRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	cycle, err := s.cycleService.UpdateCycle(r.Context(), getPrincipal(r.Context()), chi.URLParam(r, "cycleID"), service.UpdateCycleInput{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]cycleResponse{"cycle": toCycleResponse(cycle)})
}

func (s *Server) startCycle(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.startCycle"

	cycle, err := s.cycleService.StartCycle(r.Context(), getPrincipal(r.Context()), chi.URLParam(r, "cycleID"))
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]cycleResponse{"cycle": toCycleResponse(cycle)})
}

func (s *Server) addParticipants(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.addParticipants"

	var req addParticipantsRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	if err := s.cycleService.AddParticipants(r.Context(), getPrincipal(r.Context()), chi.URLParam(r, "cycleID"), req.UserIDs); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) removeParticipant(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.removeParticipant"

	err := s.cycleService.RemoveParticipant(
		r.Context(),
		getPrincipal(r.Context()),
		chi.URLParam(r, "cycleID"),
		chi.URLParam(r, "participantID"),
	)
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) addRespondents(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.addRespondents"

	var req addRespondentsRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	if err := s.cycleService.AddRespondents(r.Context(), getPrincipal(r.Context()), chi.URLParam(r, "participantID"), req.UserIDs); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listAssessments(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.listAssessments"

	assessments, err := s.assessmentService.ListAssessments(r.Context(), getPrincipal(r.Context()))
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string][]assessmentResponse{"assessments": toAssessmentListResponse(assessments)})
}

func (s *Server) listQuestions(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.listQuestions"

	questions, err := s.assessmentService.ListQuestions(r.Context(), r.URL.Query().Get("category_id"))
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string][]questionResponse{"questions": toQuestionListResponse(questions)})
}

func (s *Server) getQuestions(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.getQuestions"

	questions, err := s.assessmentService.GetQuestions(r.Context(), getPrincipal(r.Context()), chi.URLParam(r, "respondentID"))
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string][]questionWithAnswerResponse{"questions": toQuestionWithAnswerListResponse(questions)})
}

func (s *Server) beginAssessment(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.beginAssessment"

	if err := s.assessmentService.BeginAssessment(r.Context(), getPrincipal(r.Context()), chi.URLParam(r, "respondentID")); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]string{"status": "in_progress"})
}

func (s *Server) submitResponse(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.submitResponse"

	var req submitResponseRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	err := s.assessmentService.SubmitResponse(r.Context(), getPrincipal(r.Context()), service.SubmitResponseInput{
		RespondentID: chi.URLParam(r, "respondentID"),
		QuestionID:   req.QuestionID,
		Score:        req.Score,
		Comment:      req.Comment,
	})
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Server) completeAssessment(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.completeAssessment"

	if err := s.assessmentService.CompleteAssessment(r.Context(), getPrincipal(r.Context()), chi.URLParam(r, "respondentID")); err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]string{"status": "completed"})
}

func (s *Server) getProgress(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.getProgress"

	progress, err := s.assessmentService.GetProgress(r.Context(), getPrincipal(r.Context()), chi.URLParam(r, "respondentID"))
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]progressResponse{"progress": toProgressResponse(progress)})
}

func (s *Server) getCycleAnalytics(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.getCycleAnalytics"

	analytics, err := s.reportService.CycleAnalytics(r.Context(), getPrincipal(r.Context()), chi.URLParam(r, "cycleID"))
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]cycleAnalyticsResponse{"analytics": toCycleAnalyticsResponse(analytics)})
}

func (s *Server) compareParticipants(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.compareParticipants"

	scores, err := s.reportService.CompareParticipants(r.Context(), getPrincipal(r.Context()), chi.URLParam(r, "cycleID"))
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string][]participantScoreResponse{"participants": toParticipantScoreListResponse(scores)})
}

func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	const op = "internal.transport.http.getSummary"

	summary, err := s.reportService.Summary(r.Context(), getPrincipal(r.Context()))
	if err != nil {
		s.handleServiceError(w, op, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]summaryResponse{"summary": toSummaryResponse(summary)})
}

// respond is a helper function to encode data to JSON and write it to the response.
// It centralizes setting the Content-Type header and writing the status code.
func (s *Server) respond(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.log.Error("failed to encode response", sl.Err(err))
		}
	}
}

// respondError is a convenience wrapper around respond for sending simple error messages.
func (s *Server) respondError(w http.ResponseWriter, code int, message string) {
	s.respond(w, code, map[string]string{"error": message})
}

// decodeAndValidate is a helper that deserializes a JSON request body into a struct
// and then runs validation checks on it.
func (s *Server) decodeAndValidate(r *http.Request, v interface{}) error {
	if err := s.decode(r.Body, v); err != nil {
		return err
	}

	if err := validation.ValidateStruct(v); err != nil {
		return err
	}

	return nil
}

// decode is a helper function to decode a JSON request body.
func (s *Server) decode(body io.ReadCloser, v interface{}) error {
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidRequest, err)
	}

	return nil
}

// handleServiceError provides centralized error handling for all HTTP handlers.
// It logs the internal error and maps it to a user-friendly HTTP response.
func (s *Server) handleServiceError(w http.ResponseWriter, op string, err error) {
	log := s.log.With(slog.String("op", op))
	log.Error("service error occurred", sl.Err(err))

	var (
		validationErr *validation.ValidationError
		incompleteErr *apperrors.IncompleteError
	)

	switch {
	case errors.As(err, &validationErr):
		wrappedErr := fmt.Errorf("%w: %s", apperrors.ErrValidation, validationErr.Error())
		s.respondError(w, http.StatusBadRequest, wrappedErr.Error())
	case errors.Is(err, apperrors.ErrInvalidRequest):
		s.respondError(w, http.StatusBadRequest, "invalid request body")
	case errors.Is(err, apperrors.ErrValidation):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrForbidden):
		s.respondError(w, http.StatusForbidden, "operation not permitted")
	case errors.Is(err, apperrors.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrInvalidTransition):
		s.respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, apperrors.ErrPreconditionFailed):
		s.respondError(w, http.StatusPreconditionFailed, err.Error())
	case errors.As(err, &incompleteErr):
		s.respond(w, http.StatusUnprocessableEntity, map[string]any{
			"error":    incompleteErr.Error(),
			"answered": incompleteErr.Answered,
			"total":    incompleteErr.Total,
		})
	case errors.Is(err, apperrors.ErrUnavailable):
		s.respondError(w, http.StatusServiceUnavailable, "storage unavailable")
	default:
		s.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
