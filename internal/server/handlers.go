package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/vanshika/dexroute/backend/internal/domain"
	"github.com/vanshika/dexroute/backend/internal/repository"
	"github.com/vanshika/dexroute/backend/internal/service"
)

const maxBatchRoutes = 500

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger  *slog.Logger
	service *service.RouteService
	batch   *service.BatchRouter
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, svc *service.RouteService, batch *service.BatchRouter) *APIHandlers {
	if batch == nil {
		batch = service.NewBatchRouter(svc, 0)
	}
	return &APIHandlers{
		logger:  logger,
		service: svc,
		batch:   batch,
	}
}

func (h *APIHandlers) handleRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}

	route, err := h.service.FindRoute(r.Context(), from, to)
	if err != nil {
		h.writeServiceError(w, err, "failed to find route", "from", from, "to", to)
		return
	}
	respondJSON(w, http.StatusOK, toRouteResponse(route))
}

func (h *APIHandlers) handleBatchRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req batchRouteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Routes) == 0 {
		writeError(w, http.StatusBadRequest, "routes must not be empty")
		return
	}
	if len(req.Routes) > maxBatchRoutes {
		writeError(w, http.StatusBadRequest, "too many routes in one batch")
		return
	}

	requests := make([]service.RouteRequest, 0, len(req.Routes))
	for _, item := range req.Routes {
		requests = append(requests, service.RouteRequest{From: item.From, To: item.To})
	}

	results, err := h.batch.FindRoutes(r.Context(), requests)
	if err != nil {
		h.writeServiceError(w, err, "batch route search failed", "count", len(requests))
		return
	}

	response := batchRouteResponse{Results: make([]batchRouteItem, 0, len(results))}
	for _, res := range results {
		item := batchRouteItem{From: res.Request.From, To: res.Request.To}
		if res.Err != nil {
			item.Error = res.Err.Error()
		} else {
			route := toRouteResponse(res.Route)
			item.Route = &route
		}
		response.Results = append(response.Results, item)
	}
	respondJSON(w, http.StatusOK, response)
}

func (h *APIHandlers) handleAssetNeighbors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	asset := strings.TrimPrefix(r.URL.Path, "/assets/")
	asset = strings.TrimSuffix(strings.Trim(asset, "/"), "/neighbors")
	if asset == "" || strings.Contains(asset, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	neighbors, err := h.service.Neighbors(r.Context(), asset)
	if err != nil {
		h.writeServiceError(w, err, "failed to fetch neighbors", "asset", asset)
		return
	}

	respondJSON(w, http.StatusOK, neighborsResponse{
		Asset:     string(domain.NormalizeAsset(asset)),
		Neighbors: assetStrings(neighbors),
	})
}

func (h *APIHandlers) handlePairs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listPairs(w, r)
	case http.MethodPost:
		h.upsertPair(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (h *APIHandlers) handlePair(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, http.MethodDelete)
		return
	}
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/pairs/"), "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "pair ID is required")
		return
	}
	if err := h.service.DeletePair(r.Context(), id); err != nil {
		h.writeServiceError(w, err, "failed to delete pair", "pairId", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandlers) listPairs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := parseInt(query.Get("page"), 1)
	pageSize := parseInt(query.Get("pageSize"), 50)

	result, err := h.service.ListPairsPage(r.Context(), service.ListPairsParams{
		Page:     page,
		PageSize: pageSize,
		Asset:    query.Get("asset"),
	})
	if err != nil {
		h.writeServiceError(w, err, "failed to list pairs")
		return
	}

	resp := pairListResponse{
		Items: make([]pairPayload, 0, len(result.Items)),
		Pagination: paginationResponse{
			Page:       result.Pagination.Page,
			PageSize:   result.Pagination.PageSize,
			TotalItems: result.Pagination.TotalItems,
			TotalPages: result.Pagination.TotalPages,
		},
	}
	for _, p := range result.Items {
		resp.Items = append(resp.Items, toPairPayload(p))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *APIHandlers) upsertPair(w http.ResponseWriter, r *http.Request) {
	var req pairPayload
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pair, err := h.service.UpsertPair(r.Context(), service.PairInput{ID: req.PairID, A: req.A, B: req.B})
	if err != nil {
		h.writeServiceError(w, err, "failed to upsert pair", "pairId", req.PairID)
		return
	}
	respondJSON(w, http.StatusAccepted, toPairPayload(pair))
}

// writeServiceError maps service errors onto HTTP statuses.
func (h *APIHandlers) writeServiceError(w http.ResponseWriter, err error, msg string, attrs ...any) {
	switch {
	case errors.Is(err, service.ErrInvalidAsset), errors.Is(err, service.ErrSelfLoop):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrPairNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrReadOnly):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error(msg, append([]any{"error", err}, attrs...)...)
		writeError(w, http.StatusInternalServerError, msg)
	}
}

type routeResponse struct {
	From    string         `json:"from"`
	To      string         `json:"to"`
	Found   bool           `json:"found"`
	Hops    int            `json:"hops"`
	Path    []string       `json:"path"`
	Pairs   []routeHopItem `json:"pairs"`
	Visited []string       `json:"visited"`
	Unknown []string       `json:"unknown,omitempty"`
}

type routeHopItem struct {
	PairID string `json:"pairId"`
	From   string `json:"from"`
	To     string `json:"to"`
}

type batchRouteRequest struct {
	Routes []struct {
		From string `json:"from"`
		To   string `json:"to"`
	} `json:"routes"`
}

type batchRouteItem struct {
	From  string         `json:"from"`
	To    string         `json:"to"`
	Route *routeResponse `json:"route,omitempty"`
	Error string         `json:"error,omitempty"`
}

type batchRouteResponse struct {
	Results []batchRouteItem `json:"results"`
}

type neighborsResponse struct {
	Asset     string   `json:"asset"`
	Neighbors []string `json:"neighbors"`
}

type pairPayload struct {
	PairID string `json:"pairId"`
	A      string `json:"a"`
	B      string `json:"b"`
}

type paginationResponse struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

type pairListResponse struct {
	Items      []pairPayload      `json:"items"`
	Pagination paginationResponse `json:"pagination"`
}

func toRouteResponse(route domain.Route) routeResponse {
	resp := routeResponse{
		From:    string(route.From),
		To:      string(route.To),
		Found:   route.Found,
		Hops:    route.HopCount(),
		Path:    assetStrings(route.Path),
		Pairs:   make([]routeHopItem, 0, len(route.Hops)),
		Visited: assetStrings(route.Visited),
	}
	if len(route.Unknown) > 0 {
		resp.Unknown = assetStrings(route.Unknown)
	}
	for _, hop := range route.Hops {
		resp.Pairs = append(resp.Pairs, routeHopItem{
			PairID: string(hop.PairID),
			From:   string(hop.From),
			To:     string(hop.To),
		})
	}
	return resp
}

func toPairPayload(p domain.Pair) pairPayload {
	return pairPayload{PairID: string(p.ID), A: string(p.A), B: string(p.B)}
}

func assetStrings(assets []domain.AssetID) []string {
	out := make([]string, 0, len(assets))
	for _, a := range assets {
		out = append(out, string(a))
	}
	return out
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return errors.New("invalid JSON payload: " + err.Error())
	}
	return nil
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
