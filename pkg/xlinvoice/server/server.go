// Package server exposes the renderer over HTTP.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice"
	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/models"
	"go.uber.org/zap"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxBodyBytes    = 1 << 20
)

// Server routes render requests to a Renderer.
type Server struct {
	renderer *xlinvoice.Renderer
	logger   *zap.Logger
	router   *mux.Router
}

// New creates a new Server.
func New(renderer *xlinvoice.Renderer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		renderer: renderer,
		logger:   logger,
		router:   mux.NewRouter(),
	}
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/orders/{orderNo}/documents", s.handleRender).Methods(http.MethodPost)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req models.RenderRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidInput", fmt.Sprintf("decode body: %v", err))
		return
	}
	req.OrderNo = mux.Vars(r)["orderNo"]

	res, err := s.renderer.Render(r.Context(), r.URL.Query().Get("templateType"), &req)
	if err != nil {
		kind := xlinvoice.KindOf(err)
		status := statusFor(kind)
		if status >= http.StatusInternalServerError {
			s.logger.Error("Render failed",
				zap.String("order_no", req.OrderNo),
				zap.String("kind", kind),
				zap.Error(err))
		}
		writeError(w, status, kind, err.Error())
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Bytes)))
	w.Header().Set("X-Render-Id", res.ID)
	w.Header().Set("X-Template-Variant", string(res.Variant))
	if n := res.Truncated(); n > 0 {
		w.Header().Set("X-Items-Truncated", strconv.Itoa(n))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(res.Bytes)
}

func statusFor(kind string) int {
	switch kind {
	case "InvalidInput":
		return http.StatusBadRequest
	case "TemplateNotFound":
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Kind: kind, Message: msg})
}
