// Package http provides http transport for competitor reports
package http

import (
	"errors"
	stdhttp "net/http"

	"seogate/internal/modkit/httpkit"
	pnet "seogate/internal/platform/net"
	"seogate/internal/services/api/competitor/domain"
)

// Register mounts competitor endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}

	// six section comparison of two domains
	httpkit.PostResult[domain.AnalyzeInput](r, "/analyze", h.analyze)
}

type handlers struct{ svc domain.ServicePort }

// swagger:route POST /competitor/analyze Competitor competitorAnalyze
// @Summary Compare a domain with a competitor
// @Description Keywords, keyword gap, backlinks and on-page summaries for both domains.
// @Description Always answers 200; failed sections are zero valued and named in warnings.
// @Tags Competitor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body domain.AnalyzeInput true "Domains"
// @Success 200 {object} pnet.Result{data=domain.Report} "ok, partial, quota or error result"
// @Router /competitor/analyze [post]
func (h *handlers) analyze(r *stdhttp.Request, in domain.AnalyzeInput) httpkit.Result {
	caller, err := httpkit.Caller(r)
	if err != nil {
		return pnet.Failure(pnet.StageAuth, err)
	}
	res, err := h.svc.Analyze(r.Context(), caller, in)
	var qe *domain.QuotaExceededError
	switch {
	case errors.As(err, &qe):
		return pnet.QuotaExceeded(qe.Used, qe.Limit)
	case err != nil:
		return pnet.Failure("", err)
	}
	return pnet.Success(res.Report, res.Warnings)
}
