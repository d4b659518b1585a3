// Package http provides http transport for keyword volume lookups
package http

import (
	stdhttp "net/http"

	"seogate/internal/modkit/httpkit"
	pnet "seogate/internal/platform/net"
	"seogate/internal/services/api/volume/domain"
)

// Register mounts volume endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	httpkit.PostResult[domain.SearchInput](r, "/search", h.search)
}

type handlers struct{ svc domain.ServicePort }

// swagger:route POST /volume/search Volume volumeSearch
// @Summary Search volume, CPC and competition for keywords
// @Description Rows can be filtered by min_volume, sorted and paged server side.
// @Tags Volume
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body domain.SearchInput true "Keywords"
// @Success 200 {object} pnet.Result{data=domain.Report} "ok or error result"
// @Router /volume/search [post]
func (h *handlers) search(r *stdhttp.Request, in domain.SearchInput) httpkit.Result {
	caller, err := httpkit.Caller(r)
	if err != nil {
		return pnet.Failure(pnet.StageAuth, err)
	}
	res, err := h.svc.Search(r.Context(), caller, in)
	if err != nil {
		return pnet.Failure("", err)
	}
	return pnet.Success(res.Report, res.Warnings)
}
