package handlers

import (
	"errors"
	"net/http"
	"strconv"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

var (
	errPageInvalid  = errors.New("page must be a positive integer")
	errLimitInvalid = errors.New("limit must be between 1 and 100")
)

// parsePagination reads the page/limit query params, applying defaults when
// absent and rejecting out-of-range values before any query runs.
func parsePagination(r *http.Request) (int, int, error) {
	page := defaultPage
	limit := defaultLimit

	if v := r.URL.Query().Get("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 {
			return 0, 0, errPageInvalid
		}
		page = p
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 1 || l > maxLimit {
			return 0, 0, errLimitInvalid
		}
		limit = l
	}
	return page, limit, nil
}
