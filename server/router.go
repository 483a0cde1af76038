package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// LiveHandler serves the live popularity endpoints.
type LiveHandler interface {
	Ping(w http.ResponseWriter, r *http.Request)
	ExtractLive(w http.ResponseWriter, r *http.Request)
	GetPlacesNearby(w http.ResponseWriter, r *http.Request)
	GetPlaceLive(w http.ResponseWriter, r *http.Request)
	GetReport(w http.ResponseWriter, r *http.Request)
}

type Router struct {
	liveHandler    LiveHandler
	metricsHandler http.Handler
	router         *mux.Router
}

// NewRouter creates a router with the app’s routes.
func NewRouter(
	liveHandler LiveHandler,
	metricsHandler http.Handler,
	router *mux.Router) *Router {
	return &Router{
		liveHandler:    liveHandler,
		metricsHandler: metricsHandler,
		router:         router,
	}
}

func (r *Router) RegisterRoutes() {
	r.router.HandleFunc("/ping", r.liveHandler.Ping).Methods("GET")

	// body {"place_name": "...", "labels": ["..."]}
	r.router.HandleFunc("/v1/live/extract", r.liveHandler.ExtractLive).Methods("POST")

	// expects ?lat={latitude(float)}&lon={longitude(float)}&radius={radius km(float)}
	r.router.HandleFunc("/v1/places/nearby", r.liveHandler.GetPlacesNearby).Methods("GET")
	r.router.HandleFunc("/v1/places/report", r.liveHandler.GetReport).Methods("GET")
	r.router.HandleFunc("/v1/places/{place_id}/live", r.liveHandler.GetPlaceLive).Methods("GET")

	r.router.Handle("/metrics", r.metricsHandler).Methods("GET")
}
