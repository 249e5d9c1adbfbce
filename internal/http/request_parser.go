package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// pathID parses a numeric path segment such as {id} or {userId}.
func pathID(r *http.Request, name string) (int64, error) {
	return segmentID(name, r.PathValue(name))
}

// segmentID parses a numeric path segment already extracted from the URL.
func segmentID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

// queryID parses a required numeric query parameter such as userId.
func queryID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

// parsePage reads page and size query parameters; absent values fall back to
// the first page at the default size.
func parsePage(r *http.Request) core.PageRequest {
	q := r.URL.Query()
	number, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	return core.NewPageRequest(number, size)
}

// parseSort reads sortBy and sortDir. Missing sortBy means the default
// ordering; an unknown field is a client error.
func parseSort(r *http.Request) (core.Sort, error) {
	q := r.URL.Query()
	raw := strings.TrimSpace(q.Get("sortBy"))
	if raw == "" {
		return core.DefaultSort(), nil
	}
	field, err := core.ParseSortField(raw)
	if err != nil {
		return core.Sort{}, err
	}
	return core.Sort{Field: field, Direction: core.ParseSortDirection(q.Get("sortDir"))}, nil
}

// parseFilter builds the combined transaction filter from query parameters.
func parseFilter(r *http.Request, userID int64) (core.TransactionFilter, error) {
	q := r.URL.Query()
	f := core.TransactionFilter{UserID: userID}

	if v := strings.TrimSpace(q.Get("accountId")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, fmt.Errorf("invalid accountId %q", v)
		}
		f.AccountID = &id
	}
	if v := strings.TrimSpace(q.Get("categoryId")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, fmt.Errorf("invalid categoryId %q", v)
		}
		f.CategoryID = &id
	}
	if v := strings.TrimSpace(q.Get("startDate")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return f, fmt.Errorf("invalid startDate: %w", err)
		}
		f.StartDate = &d
	}
	if v := strings.TrimSpace(q.Get("endDate")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return f, fmt.Errorf("invalid endDate: %w", err)
		}
		f.EndDate = &d
	}
	if v := strings.TrimSpace(q.Get("minAmount")); v != "" {
		d, err := core.ParseAmount(v)
		if err != nil {
			return f, fmt.Errorf("invalid minAmount: %w", err)
		}
		f.MinAmount = &d
	}
	if v := strings.TrimSpace(q.Get("maxAmount")); v != "" {
		d, err := core.ParseAmount(v)
		if err != nil {
			return f, fmt.Errorf("invalid maxAmount: %w", err)
		}
		f.MaxAmount = &d
	}
	return f, nil
}

// parseDateRange reads required startDate and endDate query parameters.
func parseDateRange(r *http.Request) (core.Date, core.Date, error) {
	q := r.URL.Query()
	start, err := core.ParseDate(strings.TrimSpace(q.Get("startDate")))
	if err != nil {
		return core.Date{}, core.Date{}, fmt.Errorf("invalid startDate: %w", err)
	}
	end, err := core.ParseDate(strings.TrimSpace(q.Get("endDate")))
	if err != nil {
		return core.Date{}, core.Date{}, fmt.Errorf("invalid endDate: %w", err)
	}
	return start, end, nil
}

// queryInt parses a required integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return n, nil
}

// parseThreshold reads the balance threshold query parameter.
func parseThreshold(r *http.Request) (decimal.Decimal, error) {
	v := strings.TrimSpace(r.URL.Query().Get("threshold"))
	if v == "" {
		return decimal.Zero, fmt.Errorf("missing threshold parameter")
	}
	d, err := core.ParseAmount(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid threshold: %w", err)
	}
	return d, nil
}
