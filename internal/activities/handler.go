package activities

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

type activitiesRepo interface {
	List(ctx context.Context, userID string) []Activity
	Get(ctx context.Context, id string) (*Activity, error)
	Add(ctx context.Context, userID string, draft Draft, now time.Time) (*Activity, error)
	Update(ctx context.Context, id string, partial Partial) (*Activity, error)
	Delete(ctx context.Context, id string) error
}

type sessionProvider interface {
	CurrentSession(ctx context.Context) (*users.Session, error)
}

type ListResponse struct {
	Activities []Activity `json:"activities"`
	Total      int        `json:"total"`
}

type DeleteActivityResponse struct {
	DeletedID string `json:"deletedId"`
}

type Handler struct {
	repo           activitiesRepo
	sessions       sessionProvider
	metricsManager *metrics.Manager
}

func NewHandler(repo activitiesRepo, sessions sessionProvider, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		sessions:       sessions,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/activities", handler.HandleList).Methods("GET", "OPTIONS").Name("list-activities")
	router.HandleFunc("/activities", handler.HandleAdd).Methods("POST", "OPTIONS").Name("new-activity")
	router.HandleFunc("/activities/{id}", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-activity")
	router.HandleFunc("/activities/{id}", handler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-activity")
	router.HandleFunc("/activities/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-activity")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activities.list")
	defer span.End()

	session, err := handler.sessions.CurrentSession(ctx)
	if err != nil {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	// only the session user's activities, never the whole shared list
	userActivities := handler.repo.List(ctx, session.ID)

	resp := ListResponse{
		Activities: userActivities,
		Total:      len(userActivities),
	}
	respJson, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("marshal activities error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activities.get")
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

	activity, err := handler.repo.Get(ctx, id)
	if err != nil || activity.UserID != session.ID {
		http.Error(w, "activity not found", http.StatusNotFound)
		return
	}

	activityJson, err := json.Marshal(activity)
	if err != nil {
		log.Errorf("failed to marshal activity: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, activityJson)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activities.new")
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
		log.Tracef("new activity, unmarshal json params: %s", err)
		http.Error(w, "add activity failed", http.StatusBadRequest)
		return
	}

	addedActivity, err := handler.repo.Add(ctx, session.ID, draft, time.Now())
	if err != nil {
		if errors.Is(err, ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("failed to add new activity [%s]: %s", draft.Name, err)
		http.Error(w, "error, failed to add new activity", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterActivities.Inc()

	addedJson, err := json.Marshal(addedActivity)
	if err != nil {
		log.Errorf("failed to marshal new activity: %s", err)
		http.Error(w, "error, failed to add new activity", http.StatusInternalServerError)
		return
	}

	log.Debugf("new activity added: %s", addedJson)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedJson, http.StatusCreated)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activities.update")
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
		http.Error(w, "activity not found", http.StatusNotFound)
		return
	}

	var partial Partial
	if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
		log.Errorf("update activity, unmarshal json params: %s", err)
		http.Error(w, "update activity failed", http.StatusBadRequest)
		return
	}

	updated, err := handler.repo.Update(ctx, id, partial)
	if err != nil {
		if errors.Is(err, ErrActivityNotFound) {
			http.Error(w, "activity not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to update activity [%s]: %s", id, err)
		http.Error(w, "error, failed to update activity", http.StatusInternalServerError)
		return
	}

	updatedJson, err := json.Marshal(updated)
	if err != nil {
		log.Errorf("failed to marshal updated activity: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf("activity updated: [%s] %s", updated.ID, updated.Name)
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, updatedJson)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activities.delete")
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

	// ignore other users' ids, but deleting an already-gone activity
	// of our own is still a successful no-op
	if current, err := handler.repo.Get(ctx, id); err == nil && current.UserID != session.ID {
		http.Error(w, "activity not found", http.StatusNotFound)
		return
	}

	if err := handler.repo.Delete(ctx, id); err != nil {
		log.Errorf("failed to delete activity [%s]: %s", id, err)
		http.Error(w, "activity not deleted", http.StatusInternalServerError)
		return
	}

	deleteRespJson, err := json.Marshal(DeleteActivityResponse{DeletedID: id})
	if err != nil {
		log.Errorf("failed to marshal delete response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, string(deleteRespJson))
}
