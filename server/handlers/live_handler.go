package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"livepop-server/dao/redis"
	"livepop-server/models/live_popularity"
	services "livepop-server/service"
	"livepop-server/util"
)

const (
	LAT_QUERY_ARG    = "lat"
	LON_QUERY_ARG    = "lon"
	RADIUS_QUERY_ARG = "radius"

	PLACE_ID_PATH_VAR = "place_id"
)

// maxExtractBodyBytes bounds POST /v1/live/extract bodies.
const maxExtractBodyBytes = 1 << 20

// LivePopularityService is what the handler needs from the service layer.
type LivePopularityService interface {
	Extract(placeName string, labels []string) live_popularity.Result
	GetLivePopularity(ctx context.Context, placeID string) (*live_popularity.Result, error)
	GetPlacesNearby(ctx context.Context, lat, lon, radiusKm float64) ([]services.NearbyPlace, error)
	ListCachedResults(ctx context.Context) ([]live_popularity.Result, error)
}

// ExtractRequest is the body of POST /v1/live/extract.
type ExtractRequest struct {
	PlaceName string   `json:"place_name"`
	Labels    []string `json:"labels"`
}

type LivePopularityHandler struct {
	service LivePopularityService
	logger  *zap.Logger
}

func NewLivePopularityHandler(service LivePopularityService, logger *zap.Logger) *LivePopularityHandler {
	return &LivePopularityHandler{
		service: service,
		logger:  logger.Named("live_handler"),
	}
}

// Ping handles GET /ping
func (h *LivePopularityHandler) Ping(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "pong"})
}

// ExtractLive runs the extraction on labels posted by the client. No page is
// fetched and nothing is cached.
func (h *LivePopularityHandler) ExtractLive(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxExtractBodyBytes))
	if err := dec.Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	res := h.service.Extract(req.PlaceName, req.Labels)
	h.writeJSON(w, http.StatusOK, res)
}

func (h *LivePopularityHandler) GetPlacesNearby(w http.ResponseWriter, r *http.Request) {
	lat, lon, radius, ok := h.parseArgs(r.URL.Query(), w)
	if !ok {
		return // error already written
	}

	places, err := h.service.GetPlacesNearby(r.Context(), lat, lon, radius)
	if err != nil {
		h.logger.Error("Error loading nearby places", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, places)
}

func (h *LivePopularityHandler) GetPlaceLive(w http.ResponseWriter, r *http.Request) {
	placeID := mux.Vars(r)[PLACE_ID_PATH_VAR]

	res, err := h.service.GetLivePopularity(r.Context(), placeID)
	if errors.Is(err, redis.ErrNotFound) {
		http.Error(w, "No live popularity for place "+placeID, http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("Error loading live popularity", zap.String("place_id", placeID), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// GetReport renders the cached results as an HTML chart.
func (h *LivePopularityHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.ListCachedResults(r.Context())
	if err != nil {
		h.logger.Error("Error listing cached results", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := util.RenderLivePopularityReport(w, results); err != nil {
		h.logger.Error("Error rendering report", zap.Error(err))
	}
}

func (h *LivePopularityHandler) parseArgs(vals url.Values, w http.ResponseWriter) (
	lat, lon, radius float64, ok bool,
) {
	var err error

	lat, err = parseArgFloat64(vals, LAT_QUERY_ARG)
	if err != nil {
		http.Error(w, "Invalid argument "+LAT_QUERY_ARG, http.StatusBadRequest)
		return
	}
	lon, err = parseArgFloat64(vals, LON_QUERY_ARG)
	if err != nil {
		http.Error(w, "Invalid argument "+LON_QUERY_ARG, http.StatusBadRequest)
		return
	}
	radius, err = parseArgFloat64(vals, RADIUS_QUERY_ARG)
	if err != nil || radius <= 0 {
		http.Error(w, "Invalid argument "+RADIUS_QUERY_ARG, http.StatusBadRequest)
		return
	}
	ok = true
	return
}

func (h *LivePopularityHandler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Error encoding response", zap.Error(err))
	}
}

func parseArgFloat64(vals url.Values, name string) (float64, error) {
	s := vals.Get(name)
	return strconv.ParseFloat(s, 64)
}
