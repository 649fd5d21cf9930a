// Package http exposes the REST surface: the webhook that feeds the
// conversational agent, the owner decision endpoint, bulk inventory upload
// and catalog utility routes.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/ventia/ventia-backend/internal/entity"
	"github.com/ventia/ventia-backend/internal/ingest"
	"github.com/ventia/ventia-backend/internal/logging"
	"github.com/ventia/ventia-backend/internal/repository"
	"github.com/ventia/ventia-backend/internal/service"
)

// MessageProcessor is the conversational entrypoint behind the webhook.
type MessageProcessor interface {
	ProcessMessage(ctx context.Context, businessPhone, customerPhone, text string) (string, error)
}

type Handler struct {
	agent   MessageProcessor
	catalog *service.CatalogService
	ingest  *ingest.Pipeline
	log     *slog.Logger
}

func NewHandler(agent MessageProcessor, catalog *service.CatalogService, pipeline *ingest.Pipeline, log *slog.Logger) *Handler {
	return &Handler{agent: agent, catalog: catalog, ingest: pipeline, log: log}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Post("/webhook", h.webhook)
	r.Post("/products/{productID}/decision", h.applyDecision)

	r.Route("/businesses/{businessID}", func(r chi.Router) {
		r.Get("/products", h.listProducts)
		r.Post("/products", h.createProduct)
		r.Post("/inventory", h.uploadInventory)
	})

	return r
}

// requestLogger scopes the logger to the request so every line carries the
// chi request id.
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := h.log.With("request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(logging.WithCtx(r.Context(), log)))
	})
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type webhookPayload struct {
	BusinessPhone string `json:"business_phone"`
	CustomerPhone string `json:"customer_phone"`
	Message       string `json:"message"`
}

func (h *Handler) webhook(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if payload.BusinessPhone == "" || payload.CustomerPhone == "" || payload.Message == "" {
		writeError(w, http.StatusBadRequest, "business_phone, customer_phone and message are required")
		return
	}

	reply, err := h.agent.ProcessMessage(r.Context(), payload.BusinessPhone, payload.CustomerPhone, payload.Message)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "business not registered")
			return
		}
		logging.FromCtx(r.Context()).Error("webhook processing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":           "processed",
		"response_to_user": reply,
	})
}

type decisionPayload struct {
	Decision string   `json:"decision"`
	Price    *float64 `json:"price,omitempty"`
}

func (h *Handler) applyDecision(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var payload decisionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	var price decimal.NullDecimal
	if payload.Price != nil {
		price = decimal.NewNullDecimal(decimal.NewFromFloat(*payload.Price))
	}

	if err := h.catalog.ApplyDecision(r.Context(), productID, payload.Decision, price); err != nil {
		var illegal *entity.ErrIllegalTransition
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "product not found")
		case errors.As(err, &illegal):
			writeError(w, http.StatusConflict, illegal.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "applied"})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	businessID, err := strconv.ParseInt(chi.URLParam(r, "businessID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid business id")
		return
	}

	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)

	products, err := h.catalog.ListProducts(r.Context(), businessID, limit, offset)
	if err != nil {
		logging.FromCtx(r.Context()).Error("failed to list products", "business_id", businessID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

type createProductPayload struct {
	SKU         string   `json:"sku"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Unit        string   `json:"unit"`
	Price       *float64 `json:"price,omitempty"`
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	businessID, err := strconv.ParseInt(chi.URLParam(r, "businessID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid business id")
		return
	}

	var payload createProductPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	p := entity.Product{
		BusinessID:  businessID,
		SKU:         payload.SKU,
		Name:        payload.Name,
		Description: payload.Description,
		Unit:        payload.Unit,
	}
	if p.Unit == "" {
		p.Unit = entity.DefaultUnit
	}
	if payload.Price != nil {
		p.Price = decimal.NewNullDecimal(decimal.NewFromFloat(*payload.Price))
	}

	if err := h.catalog.CreateProduct(r.Context(), &p); err != nil {
		if errors.Is(err, repository.ErrDuplicateSKU) {
			writeError(w, http.StatusConflict, "sku already exists for business")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) uploadInventory(w http.ResponseWriter, r *http.Request) {
	businessID, err := strconv.ParseInt(chi.URLParam(r, "businessID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid business id")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	added, err := h.ingest.Ingest(r.Context(), businessID, file)
	if err != nil {
		logging.FromCtx(r.Context()).Error("inventory ingestion failed", "business_id", businessID, "error", err)
		writeError(w, http.StatusInternalServerError, "ingestion failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"products_added": added,
	})
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
