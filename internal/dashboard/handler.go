package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/Vivek145899/GymBuddy/internal/telemetry/tracing"
	"github.com/Vivek145899/GymBuddy/internal/users"
	"github.com/Vivek145899/GymBuddy/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type sessionProvider interface {
	CurrentSession(ctx context.Context) (*users.Session, error)
}

// FallbackResponse is rendered when computing the dashboard fails for
// any reason. The client gets something to show and a retry hint
// instead of a dead page.
type FallbackResponse struct {
	Error string `json:"error"`
	Retry bool   `json:"retry"`
}

type Handler struct {
	sessions       sessionProvider
	activitiesRepo activitiesRepo
	goalsRepo      goalsRepo

	mutex       sync.Mutex
	controllers map[string]*Controller
}

func NewHandler(sessions sessionProvider, activitiesRepo activitiesRepo, goalsRepo goalsRepo) *Handler {
	return &Handler{
		sessions:       sessions,
		activitiesRepo: activitiesRepo,
		goalsRepo:      goalsRepo,
		controllers:    make(map[string]*Controller),
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/dashboard", handler.HandleDashboard).Methods("GET", "OPTIONS").Name("dashboard")
	router.HandleFunc("/dashboard/confirmations/{id}", handler.HandleConfirm).Methods("POST", "OPTIONS").Name("confirm")
	router.HandleFunc("/dashboard/confirmations/{id}", handler.HandleCancelConfirmation).Methods("DELETE", "OPTIONS").Name("cancel-confirmation")
}

// ControllerFor returns the controller of the given user, creating it
// on first use. One controller per signed in user, reused across
// requests so form and confirmation state survives between calls.
func (handler *Handler) ControllerFor(userID string) *Controller {
	handler.mutex.Lock()
	defer handler.mutex.Unlock()

	controller, ok := handler.controllers[userID]
	if !ok {
		controller = NewController(userID, handler.activitiesRepo, handler.goalsRepo)
		handler.controllers[userID] = controller
	}
	return controller
}

func (handler *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard")
	defer span.End()

	session, err := handler.sessions.CurrentSession(ctx)
	if err != nil {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	controller := handler.ControllerFor(session.ID)

	viewModel, err := handler.render(ctx, controller, View(r.URL.Query().Get("view")))
	if err != nil {
		if errors.Is(err, ErrUnknownView) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("dashboard render for user %s: %s", session.ID, err)
		handler.writeFallback(w)
		return
	}

	viewModelJson, err := json.Marshal(viewModel)
	if err != nil {
		log.Errorf("failed to marshal dashboard view model: %s", err)
		handler.writeFallback(w)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, viewModelJson)
}

func (handler *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.confirm")
	defer span.End()

	session, err := handler.sessions.CurrentSession(ctx)
	if err != nil {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	confirmationID := mux.Vars(r)["id"]
	if confirmationID == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	controller := handler.ControllerFor(session.ID)
	viewModel, err := controller.Confirm(ctx, confirmationID)
	if err != nil {
		if errors.Is(err, ErrConfirmationNotFound) {
			http.Error(w, "confirmation not found", http.StatusNotFound)
			return
		}
		log.Errorf("confirm [%s] for user %s: %s", confirmationID, session.ID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	viewModelJson, err := json.Marshal(viewModel)
	if err != nil {
		log.Errorf("failed to marshal dashboard view model: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, viewModelJson)
}

func (handler *Handler) HandleCancelConfirmation(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.cancelConfirmation")
	defer span.End()

	session, err := handler.sessions.CurrentSession(ctx)
	if err != nil {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	confirmationID := mux.Vars(r)["id"]
	if confirmationID == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	handler.ControllerFor(session.ID).CancelConfirmation(confirmationID)
	pkg.WriteJSONResponseOK(w, `{"canceled":true}`)
}

// render refreshes the controller, optionally switching the view
// first, and converts a panic anywhere below into an error so the
// caller can fall back instead of dropping the request.
func (handler *Handler) render(ctx context.Context, controller *Controller, view View) (viewModel ViewModel, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dashboard render panic: %v", r)
		}
	}()

	if view != "" {
		return controller.SetView(ctx, view)
	}
	return controller.Refresh(ctx), nil
}

func (handler *Handler) writeFallback(w http.ResponseWriter) {
	fallbackJson, err := json.Marshal(FallbackResponse{
		Error: "dashboard temporarily unavailable",
		Retry: true,
	})
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, fallbackJson, http.StatusOK)
}
