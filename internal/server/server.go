package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"sentraip-mcp/internal/openapi"
	"sentraip-mcp/internal/threat"
)

const (
	ServiceName    = "SentraIP MCP Adapter"
	ServiceVersion = "1.0.0"
)

// route binds an operation declaration to its handler. The router, the
// required-parameter check and the OpenAPI document all read from routeTable.
type route struct {
	openapi.Route
	handle func(*Server, http.ResponseWriter, *http.Request)
}

var routeTable = []route{
	{
		Route: openapi.Route{
			Method:      http.MethodGet,
			Path:        "/mcp/check_ip",
			OperationID: "check_ip",
			Summary:     "Check Ip",
			Description: "Check reputation and threat information for an IP address.\nExample: /mcp/check_ip?ip=1.1.1.1",
			Tags:        []string{"SentraIP"},
			Params: []openapi.Param{
				{Name: "ip", In: "query", Description: "IPv4 or IPv6 address to check", Required: true},
			},
			Upstream: true,
		},
		handle: (*Server).handleCheckIP,
	},
	{
		Route: openapi.Route{
			Method:      http.MethodGet,
			Path:        "/mcp/stats",
			OperationID: "get_stats",
			Summary:     "Get Stats",
			Description: "Retrieve general statistics or usage metrics from SentraIP.\nExample: /mcp/stats",
			Tags:        []string{"SentraIP"},
			Upstream:    true,
		},
		handle: (*Server).handleStats,
	},
	{
		Route:  openapi.Route{Method: http.MethodGet, Path: "/", OperationID: "root", Summary: "Health check", Hidden: true},
		handle: (*Server).handleRoot,
	},
	{
		Route:  openapi.Route{Method: http.MethodGet, Path: "/openapi.json", OperationID: "openapi_json", Hidden: true},
		handle: (*Server).handleOpenAPIJSON,
	},
	{
		Route:  openapi.Route{Method: http.MethodGet, Path: "/openapi.yaml", OperationID: "openapi_yaml", Hidden: true},
		handle: (*Server).handleOpenAPIYAML,
	},
}

// Routes returns the declarations of every route the server exposes.
func Routes() []openapi.Route {
	out := make([]openapi.Route, 0, len(routeTable))
	for _, rt := range routeTable {
		out = append(out, rt.Route)
	}
	return out
}

// Document builds the OpenAPI description advertising publicURL.
func Document(publicURL string) *openapi.Document {
	info := openapi.Info{
		Title:   ServiceName,
		Version: ServiceVersion,
		Description: "Microservice that acts as an MCP adapter for the SentraIP " +
			"Threat Intelligence API. Provides /mcp/check_ip and /mcp/stats endpoints.",
	}
	var servers []openapi.Server
	if publicURL != "" {
		servers = append(servers, openapi.Server{URL: publicURL, Description: "Internal MCP server"})
	}
	return openapi.Build(info, servers, Routes())
}

// Server serves the MCP routes on top of a SentraIP lookup.
type Server struct {
	lookup threat.Lookup
	cfg    *Config
	logger *slog.Logger
	router *mux.Router
	doc    *openapi.Document
}

func New(lookup threat.Lookup, cfg *Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		lookup: lookup,
		cfg:    cfg,
		logger: logger,
		router: mux.NewRouter(),
		doc:    Document(cfg.PublicURL),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	for _, rt := range routeTable {
		handle := rt.handle
		var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handle(s, w, r)
		})
		if required := rt.RequiredQuery(); len(required) > 0 {
			h = requireQuery(required, h)
		}
		s.router.Handle(rt.Path, h).Methods(rt.Method).Name(rt.OperationID)
	}

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	s.router.Use(recordRoute)
}

// Router returns the full HTTP handler, CORS included.
func (s *Server) Router() http.Handler {
	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", requestIDHeader},
	})
	return c.Handler(withRequestID(s.withLogging(s.router)))
}

// MetricsHandler exposes the Prometheus registry under /metrics.
func MetricsHandler() http.Handler {
	m := http.NewServeMux()
	m.Handle("/metrics", promhttp.Handler())
	return m
}

// StartMetrics serves /metrics on its own listener in the background.
func (s *Server) StartMetrics(addr string) {
	go func() {
		if err := http.ListenAndServe(addr, MetricsHandler()); err != nil && err != http.ErrServerClosed {
			s.logger.Error("metrics server error", "err", err)
		}
	}()
}

func (s *Server) handleCheckIP(w http.ResponseWriter, r *http.Request) {
	body, err := s.lookup.CheckIP(r.Context(), r.URL.Query().Get("ip"))
	s.respond(w, body, err)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	body, err := s.lookup.Stats(r.Context())
	s.respond(w, body, err)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status  string `json:"status"`
		Service string `json:"service"`
	}{"ok", ServiceName})
}

func (s *Server) handleOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	out, err := s.doc.JSON()
	s.writeDocument(w, "application/json", out, err)
}

func (s *Server) handleOpenAPIYAML(w http.ResponseWriter, r *http.Request) {
	out, err := s.doc.YAML()
	s.writeDocument(w, "application/yaml", out, err)
}

func (s *Server) writeDocument(w http.ResponseWriter, contentType string, out []byte, err error) {
	if err != nil {
		s.logger.Error("failed to render openapi document", "err", err)
		writeDetail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(out)
}

func (s *Server) respond(w http.ResponseWriter, body json.RawMessage, err error) {
	if err != nil {
		var terr *threat.Error
		if errors.As(err, &terr) {
			writeDetail(w, terr.Status, terr.Detail)
			return
		}
		s.logger.Error("unexpected lookup error", "err", err)
		writeDetail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// requireQuery rejects requests missing any of the named query parameters
// before next runs. Blank values count as missing.
func requireQuery(names []string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		for _, name := range names {
			if strings.TrimSpace(q.Get(name)) == "" {
				writeDetail(w, http.StatusUnprocessableEntity, "missing required query parameter: "+name)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, struct {
		Detail string `json:"detail"`
	}{detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
