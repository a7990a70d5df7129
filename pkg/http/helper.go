package http

import (
	"net/http"
	"strconv"

	"mise/pkg/config"
	apperrors "mise/pkg/errors"
)

// ExtractLimitOffset reads the limit and offset query parameters and clamps
// them to the engine's pagination bounds. Missing parameters fall back to
// the configured defaults; garbage is rejected rather than silently zeroed.
func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit, err := queryInt(query.Get("limit"), "limit")
	if err != nil {
		return 0, 0, err
	}
	offset, err := queryInt(query.Get("offset"), "offset")
	if err != nil {
		return 0, 0, err
	}

	return config.NormalizePaginationLimit(int(limit)), config.NormalizeOffset(offset), nil
}

func queryInt(raw, name string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.InvalidInput("Query parameter " + name + " must be an integer, got: " + raw)
	}
	return v, nil
}
