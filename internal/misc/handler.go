package misc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Vivek145899/GymBuddy/internal/store"
	"github.com/Vivek145899/GymBuddy/internal/telemetry/tracing"
	"github.com/Vivek145899/GymBuddy/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	themeDark  = "dark"
	themeLight = "light"
)

type ThemeRequest struct {
	Theme string `json:"theme"`
}

type Handler struct {
	quotesManager *QuotesManager
	store         store.Store
	versionInfo   string
}

func NewHandler(
	quotesManager *QuotesManager,
	s store.Store,
	versionInfo string,
) *Handler {
	return &Handler{
		quotesManager: quotesManager,
		store:         s,
		versionInfo:   versionInfo,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET", "POST", "OPTIONS").Name("root")
	mainRouter.HandleFunc("/quote/random", handler.handleGetRandomQuote).Methods("GET").Name("quote")
	mainRouter.HandleFunc("/myip", handler.handleGetMyIp).Methods("GET").Name("myip")
	mainRouter.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET").Name("version")
	mainRouter.HandleFunc("/theme", handler.handleGetTheme).Methods("GET", "OPTIONS").Name("get-theme")
	mainRouter.HandleFunc("/theme", handler.handleSetTheme).Methods("POST", "OPTIONS").Name("set-theme")
}

func (handler *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
}

func (handler *Handler) handleGetRandomQuote(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.quote")
	defer span.End()

	q := handler.quotesManager.RandomQuote()
	qBytes, err := json.Marshal(q)
	if err != nil {
		http.Error(w, "", http.StatusInternalServerError)
		log.Errorf("marshal quote error: %s", err)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, qBytes)
}

func (handler *Handler) handleGetMyIp(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.getMyIp")
	defer span.End()

	ip, err := pkg.ReadUserIP(r)
	if err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("failed to get user IP address: %s", err))
		log.Errorf("failed to get user IP address: %s", err)
		http.Error(w, "failed to get IP", http.StatusInternalServerError)
		return
	}

	span.SetAttributes(attribute.String("user.ip", ip))
	pkg.WriteTextResponseOK(w, ip)
}

// handleGetTheme falls back to the dark theme when nothing is stored.
func (handler *Handler) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.getTheme")
	defer span.End()

	theme := handler.currentTheme(ctx)
	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"theme":"%s"}`, theme))
}

func (handler *Handler) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.setTheme")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var themeReq ThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&themeReq); err != nil {
		log.Errorf("set theme, unmarshal json params: %s", err)
		http.Error(w, "set theme failed", http.StatusBadRequest)
		return
	}

	if themeReq.Theme != themeDark && themeReq.Theme != themeLight {
		http.Error(w, "error, unknown theme", http.StatusBadRequest)
		return
	}

	handler.store.Set(ctx, store.KeyTheme, themeReq.Theme)
	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"theme":"%s"}`, themeReq.Theme))
}

func (handler *Handler) currentTheme(ctx context.Context) string {
	var theme string
	if !handler.store.Get(ctx, store.KeyTheme, &theme) {
		return themeDark
	}
	if theme != themeDark && theme != themeLight {
		return themeDark
	}
	return theme
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}
