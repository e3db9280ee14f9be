package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/camdenlaw/casecore/internal/config"
	"github.com/camdenlaw/casecore/internal/core/domain"
	"github.com/camdenlaw/casecore/internal/core/ports"
	"github.com/camdenlaw/casecore/internal/observability/metrics"
)

const orgIDHeader = "X-Org-Id"

type Router struct {
	cfg       config.Config
	metrics   *metrics.HTTPServerMetrics
	coverage  ports.CoverageService
	strategy  ports.StrategyService
	options   ports.OptionRanker
	snapshots ports.SnapshotBuilder
	queue     ports.MessageQueue
}

func NewRouter(
	cfg config.Config,
	m *metrics.HTTPServerMetrics,
	coverage ports.CoverageService,
	strategy ports.StrategyService,
	options ports.OptionRanker,
	snapshots ports.SnapshotBuilder,
	queue ports.MessageQueue,
) *Router {
	return &Router{
		cfg:       cfg,
		metrics:   m,
		coverage:  coverage,
		strategy:  strategy,
		options:   options,
		snapshots: snapshots,
		queue:     queue,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/cases/", rt.caseSubresource)

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware("api", handler)
	}
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxConcurrent, 100*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// caseSubresource dispatches /v1/cases/{case_id}/{coverage|strategy|options|snapshot|reanalyze}.
func (rt *Router) caseSubresource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/cases/")
	caseID, leaf, ok := strings.Cut(rest, "/")
	if !ok || caseID == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	orgID := strings.TrimSpace(r.Header.Get(orgIDHeader))
	if orgID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "X-Org-Id header is required"})
		return
	}

	if leaf == "reanalyze" {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}
		rt.postReanalyze(w, r, orgID, caseID)
		return
	}

	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	switch leaf {
	case "coverage":
		rt.getCoverage(w, r, orgID, caseID)
	case "strategy":
		rt.getStrategy(w, r, orgID, caseID)
	case "options":
		rt.getOptions(w, r, orgID, caseID)
	case "snapshot":
		rt.getSnapshot(w, r, orgID, caseID)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func (rt *Router) getCoverage(w http.ResponseWriter, r *http.Request, orgID, caseID string) {
	evidence, completeness, err := rt.coverage.ComputeCoverage(r.Context(), orgID, caseID)
	if err != nil {
		rt.writeError(w, "coverage", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"evidence": evidence,
		"coverage": completeness,
	})
}

func (rt *Router) getStrategy(w http.ResponseWriter, r *http.Request, orgID, caseID string) {
	start := time.Now()
	report, err := rt.strategy.DeriveStrategy(r.Context(), orgID, caseID)
	if err != nil {
		rt.writeError(w, "strategy", err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordStrategyObservation("api", "strategy", string(report.Source), len(report.Angles), time.Since(start))
	}
	writeJSON(w, http.StatusOK, report)
}

func (rt *Router) getOptions(w http.ResponseWriter, r *http.Request, orgID, caseID string) {
	assessment, err := rt.options.RankOptions(r.Context(), orgID, caseID)
	if err != nil {
		rt.writeError(w, "options", err)
		return
	}
	if rt.metrics != nil && assessment.Recommended != nil {
		rt.metrics.RecordOptionRecommendation("api", "options", string(assessment.Recommended.Risk))
	}
	writeJSON(w, http.StatusOK, assessment)
}

// postReanalyze enqueues a fresh analysis pass for the case. The worker
// picks the event up asynchronously, so success is a 202.
func (rt *Router) postReanalyze(w http.ResponseWriter, r *http.Request, orgID, caseID string) {
	if err := rt.queue.PublishDocumentsUpdated(r.Context(), orgID, caseID); err != nil {
		rt.writeError(w, "reanalyze", err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (rt *Router) getSnapshot(w http.ResponseWriter, r *http.Request, orgID, caseID string) {
	snapshot, err := rt.snapshots.BuildSnapshot(r.Context(), orgID, caseID)
	if err != nil {
		rt.writeError(w, "snapshot", err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// writeError renders gate denials as a structured 422 so clients can show the
// banner instead of an error page; everything else maps by error kind.
func (rt *Router) writeError(w http.ResponseWriter, endpoint string, err error) {
	if gateErr, ok := domain.AsGateError(err); ok {
		if rt.metrics != nil {
			rt.metrics.RecordGateDenial("api", endpoint)
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"banner":      gateErr.Banner,
			"diagnostics": gateErr.Diagnostics,
		})
		return
	}
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
