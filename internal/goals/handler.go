package goals

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Vivek145899/GymBuddy/internal/telemetry/metrics"
	"github.com/Vivek145899/GymBuddy/internal/telemetry/tracing"
	"github.com/Vivek145899/GymBuddy/internal/users"
	"github.com/Vivek145899/GymBuddy/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type goalsRepo interface {
	List(ctx context.Context, userID string) []Goal
	Get(ctx context.Context, id string) (*Goal, error)
	Add(ctx context.Context, userID string, draft Draft, now time.Time) (*Goal, error)
	Update(ctx context.Context, id string, partial Partial) (*Goal, error)
	RecordProgress(ctx context.Context, id string, value int) (*Goal, error)
	Delete(ctx context.Context, id string) error
}

type sessionProvider interface {
	CurrentSession(ctx context.Context) (*users.Session, error)
}

type ListResponse struct {
	Goals []Goal `json:"goals"`
	Total int    `json:"total"`
}

type ProgressRequest struct {
	Value int `json:"value"`
}

type DeleteGoalResponse struct {
	DeletedID string `json:"deletedId"`
}

type Handler struct {
	repo           goalsRepo
	sessions       sessionProvider
	metricsManager *metrics.Manager
}

func NewHandler(repo goalsRepo, sessions sessionProvider, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		sessions:       sessions,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/goals", handler.HandleList).Methods("GET", "OPTIONS").Name("list-goals")
	router.HandleFunc("/goals", handler.HandleAdd).Methods("POST", "OPTIONS").Name("new-goal")
	router.HandleFunc("/goals/{id}", handler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-goal")
	router.HandleFunc("/goals/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-goal")
	router.HandleFunc("/goals/{id}/progress", handler.HandleProgress).Methods("POST", "OPTIONS").Name("goal-progress")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.list")
	defer span.End()

	session, err := handler.sessions.CurrentSession(ctx)
	if err != nil {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	userGoals := handler.repo.List(ctx, session.ID)

	respJson, err := json.Marshal(ListResponse{
		Goals: userGoals,
		Total: len(userGoals),
	})
	if err != nil {
		log.Errorf("marshal goals error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.new")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	session, err := handler.sessions.CurrentSession(ctx)
	if err != nil {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	var draft Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		log.Tracef("new goal, unmarshal json params: %s", err)
		http.Error(w, "add goal failed", http.StatusBadRequest)
		return
	}

	addedGoal, err := handler.repo.Add(ctx, session.ID, draft, time.Now())
	if err != nil {
		if errors.Is(err, ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("failed to add new goal [%s]: %s", draft.Title, err)
		http.Error(w, "error, failed to add new goal", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterGoals.Inc()

	addedJson, err := json.Marshal(addedGoal)
	if err != nil {
		log.Errorf("failed to marshal new goal: %s", err)
		http.Error(w, "error, failed to add new goal", http.StatusInternalServerError)
		return
	}

	log.Debugf("new goal added: %s", addedJson)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedJson, http.StatusCreated)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.update")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	session, err := handler.sessions.CurrentSession(ctx)
	if err != nil {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	current, err := handler.repo.Get(ctx, id)
	if err != nil || current.UserID != session.ID {
		http.Error(w, "goal not found", http.StatusNotFound)
		return
	}

	var partial Partial
	if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
		log.Errorf("update goal, unmarshal json params: %s", err)
		http.Error(w, "update goal failed", http.StatusBadRequest)
		return
	}

	updated, err := handler.repo.Update(ctx, id, partial)
	if err != nil {
		switch {
		case errors.Is(err, ErrGoalNotFound):
			http.Error(w, "goal not found", http.StatusNotFound)
		case errors.Is(err, ErrValidation):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Errorf("failed to update goal [%s]: %s", id, err)
			http.Error(w, "error, failed to update goal", http.StatusInternalServerError)
		}
		return
	}

	updatedJson, err := json.Marshal(updated)
	if err != nil {
		log.Errorf("failed to marshal updated goal: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf("goal updated: [%s] %s", updated.ID, updated.Title)
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, updatedJson)
}

func (handler *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.progress")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	session, err := handler.sessions.CurrentSession(ctx)
	if err != nil {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	current, err := handler.repo.Get(ctx, id)
	if err != nil || current.UserID != session.ID {
		http.Error(w, "goal not found", http.StatusNotFound)
		return
	}

	var progressReq ProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&progressReq); err != nil {
		log.Errorf("goal progress, unmarshal json params: %s", err)
		http.Error(w, "record progress failed", http.StatusBadRequest)
		return
	}

	updated, err := handler.repo.RecordProgress(ctx, id, progressReq.Value)
	if err != nil {
		if errors.Is(err, ErrGoalNotFound) {
			http.Error(w, "goal not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to record progress for goal [%s]: %s", id, err)
		http.Error(w, "error, failed to record progress", http.StatusInternalServerError)
		return
	}

	updatedJson, err := json.Marshal(updated)
	if err != nil {
		log.Errorf("failed to marshal goal: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, updatedJson)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.delete")
	defer span.End()

	session, err := handler.sessions.CurrentSession(ctx)
	if err != nil {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	if current, err := handler.repo.Get(ctx, id); err == nil && current.UserID != session.ID {
		http.Error(w, "goal not found", http.StatusNotFound)
		return
	}

	if err := handler.repo.Delete(ctx, id); err != nil {
		log.Errorf("failed to delete goal [%s]: %s", id, err)
		http.Error(w, "goal not deleted", http.StatusInternalServerError)
		return
	}

	deleteRespJson, err := json.Marshal(DeleteGoalResponse{DeletedID: id})
	if err != nil {
		log.Errorf("failed to marshal delete response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, string(deleteRespJson))
}
