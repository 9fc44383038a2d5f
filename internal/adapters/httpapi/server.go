// Package httpapi exposes the pickup sensors over HTTP for host adapters.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/bnema/wm-pickup-cli/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type SensorReader interface {
	Sensors(ctx context.Context) ([]domain.PickupSensor, error)
	Sensor(ctx context.Context, uniqueID string) (domain.PickupSensor, error)
}

// SensorView is the wire shape of one sensor.
type SensorView struct {
	UniqueID      string  `json:"unique_id"`
	Name          string  `json:"name"`
	Icon          string  `json:"icon"`
	DeviceClass   string  `json:"device_class"`
	State         *string `json:"state"`
	Available     bool    `json:"available"`
	Stale         bool    `json:"stale"`
	LastError     string  `json:"last_error,omitempty"`
	ResolvedAt    *string `json:"resolved_at,omitempty"`
	LastAttemptAt *string `json:"last_attempt_at,omitempty"`
}

func NewSensorView(sensor domain.PickupSensor) SensorView {
	view := SensorView{
		UniqueID:      sensor.UniqueID,
		Name:          sensor.Name,
		Icon:          sensor.Icon,
		DeviceClass:   sensor.DeviceClass,
		Available:     sensor.Available(),
		Stale:         sensor.Stale(),
		LastError:     sensor.LastError,
		ResolvedAt:    formatTime(sensor.ResolvedAt),
		LastAttemptAt: formatTime(sensor.LastAttemptAt),
	}
	if sensor.Value != nil {
		view.State = formatTime(*sensor.Value)
	}
	return view
}

func NewSensorViews(sensors []domain.PickupSensor) []SensorView {
	views := make([]SensorView, 0, len(sensors))
	for _, sensor := range sensors {
		views = append(views, NewSensorView(sensor))
	}
	return views
}

func formatTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

type Handler struct {
	sensors SensorReader
	log     zerolog.Logger
}

func NewHandler(sensors SensorReader, log zerolog.Logger) *Handler {
	return &Handler{sensors: sensors, log: log.With().Str("component", "http").Logger()}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)

	r.Get("/healthz", h.Health)
	r.Route("/sensors", func(r chi.Router) {
		r.Get("/", h.ListSensors)
		r.Get("/{id}", h.GetSensor)
	})

	return r
}

// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GET /sensors
func (h *Handler) ListSensors(w http.ResponseWriter, r *http.Request) {
	sensors, err := h.sensors.Sensors(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list sensors")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"sensors": NewSensorViews(sensors)})
}

// GET /sensors/{id}
func (h *Handler) GetSensor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sensor, err := h.sensors.Sensor(r.Context(), id)
	if errors.Is(err, domain.ErrSubscriptionNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Sensor not found"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("sensor", id).Msg("get sensor")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, NewSensorView(sensor))
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		h.log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// NewServer returns an http.Server for the handler with conservative timeouts.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
