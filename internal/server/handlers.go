package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/sitesearch/internal/model"
)

// Error codes returned in ErrorResponse.
const (
	codeInvalidMode = "INVALID_MODE"
	codeSearchError = "SEARCH_ERROR"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// SuggestResponse is the body of /suggest.
type SuggestResponse struct {
	Query      string `json:"query"`
	Suggestion string `json:"suggestion,omitempty"`
}

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status    string `json:"status"`
	Documents int    `json:"documents"`
}

// handler holds HTTP request handlers.
type handler struct {
	searcher Searcher
	logger   *slog.Logger
}

func newHandler(searcher Searcher, logger *slog.Logger) *handler {
	return &handler{searcher: searcher, logger: logger}
}

// register configures all routes on router.
func (h *handler) register(router *gin.Engine) {
	router.GET("/healthz", h.health)
	router.GET("/search", h.search)
	router.GET("/suggest", h.suggest)
}

// search answers /search. With lucky set and at least one hit it
// redirects to the best match.
func (h *handler) search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))

	mode, err := model.ParseSearchMode(c.Query("mode"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: codeInvalidMode})
		return
	}

	if isTrue(c.Query("lucky")) && query != "" {
		target, ok, err := h.searcher.BestMatch(c.Request.Context(), query, mode)
		if err != nil {
			h.fail(c, query, err)
			return
		}
		if ok {
			c.Redirect(http.StatusFound, target)
			return
		}
	}

	result, err := h.searcher.Query(c.Request.Context(), query, mode)
	if err != nil {
		h.fail(c, query, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// suggest answers /suggest.
func (h *handler) suggest(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	resp := SuggestResponse{Query: query}

	if query != "" {
		suggestion, ok, err := h.searcher.Suggest(c.Request.Context(), query)
		if err != nil {
			h.fail(c, query, err)
			return
		}
		if ok {
			resp.Suggestion = suggestion
		}
	}
	c.JSON(http.StatusOK, resp)
}

// health answers /healthz with the number of indexed documents.
func (h *handler) health(c *gin.Context) {
	n, err := h.searcher.Count(c.Request.Context())
	if err != nil {
		h.logger.Error("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error(), Code: codeSearchError})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Documents: n})
}

func (h *handler) fail(c *gin.Context, query string, err error) {
	h.logger.Error("search failed", "query", query, "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "search failed", Code: codeSearchError})
}

// isTrue accepts "1", "true", "on" and "yes" in any case.
func isTrue(v string) bool {
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	switch strings.ToLower(v) {
	case "on", "yes":
		return true
	}
	return false
}
