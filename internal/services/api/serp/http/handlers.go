// Package http provides http transport for SERP analysis
package http

import (
	stdhttp "net/http"

	"seogate/internal/modkit/httpkit"
	pnet "seogate/internal/platform/net"
	"seogate/internal/services/api/serp/domain"
)

// Register mounts serp endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	httpkit.PostResult[domain.AnalyzeInput](r, "/analyze", h.analyze)
}

type handlers struct{ svc domain.ServicePort }

// swagger:route POST /serp/analyze SERP serpAnalyze
// @Summary Organic results and SERP features for a keyword
// @Tags SERP
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body domain.AnalyzeInput true "Keyword"
// @Success 200 {object} pnet.Result{data=domain.Report} "ok or error result"
// @Router /serp/analyze [post]
func (h *handlers) analyze(r *stdhttp.Request, in domain.AnalyzeInput) httpkit.Result {
	caller, err := httpkit.Caller(r)
	if err != nil {
		return pnet.Failure(pnet.StageAuth, err)
	}
	res, err := h.svc.Analyze(r.Context(), caller, in)
	if err != nil {
		return pnet.Failure("", err)
	}
	return pnet.Success(res.Report, res.Warnings)
}
