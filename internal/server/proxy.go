package server

import (
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// handleProxySchemes forwards page and pageSize to the data.gov.in resource
// and relays the raw answer.
func (s *Server) handleProxySchemes(w http.ResponseWriter, r *http.Request) {
	if s.deps.Upstream == nil || s.cfg.ProxyURL == "" {
		respondError(w, http.StatusServiceUnavailable, "proxy not configured")
		return
	}

	target, err := url.Parse(s.cfg.ProxyURL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "invalid proxy url")
		return
	}

	in := r.URL.Query()
	page := in.Get("page")
	if page == "" {
		page = "1"
	}
	pageSize := in.Get("pageSize")
	if pageSize == "" {
		pageSize = strconv.Itoa(s.cfg.ProxyPageSize)
	}

	q := target.Query()
	q.Set("page", page)
	q.Set("pageSize", pageSize)
	if q.Get("format") == "" {
		q.Set("format", "json")
	}
	target.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "build proxy request")
		return
	}

	resp, err := s.deps.Upstream.Do(req)
	if err != nil {
		s.logger.Warn().Err(err).Str("host", target.Host).Msg("Proxy request failed")
		respondError(w, http.StatusBadGateway, "proxy request failed")
		return
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		s.logger.Debug().Err(err).Msg("Proxy relay interrupted")
	}
}
