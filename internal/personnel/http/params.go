package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/pnpstation/internal/personnel/domain"
	"github.com/aussiebroadwan/pnpstation/pkg/httpx"
	"github.com/aussiebroadwan/pnpstation/pkg/pnpsdk"
)

// pageParam reads ?page=, treating anything missing or malformed as page 1.
func pageParam(r *http.Request) domain.PageRequest {
	n, _ := strconv.Atoi(r.URL.Query().Get("page"))
	return domain.PageRequest{Page: n}.Normalize()
}

// idParam parses the {id} path value, writing a 404 when it is not a
// positive integer.
func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.WriteError(w, http.StatusNotFound, pnpsdk.ErrorCodeNotFound, "Not found.")
		return 0, false
	}
	return id, true
}
