package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"link-router/internal/config"
	"link-router/internal/domain"
	"link-router/internal/resolver"
	"link-router/pkg/hostutil"
	"link-router/pkg/logger"
)

const notFoundPage = `<!DOCTYPE html>
<html>
<head><title>Link not found</title></head>
<body>
<h1>Link not found</h1>
<p>This link does not exist or is no longer active.</p>
</body>
</html>`

const errorPage = `<!DOCTYPE html>
<html>
<head><title>Something went wrong</title></head>
<body>
<h1>Something went wrong</h1>
<p>We could not process this link right now. Please try again.</p>
</body>
</html>`

const landingPage = `<!DOCTYPE html>
<html>
<head><title>Link router</title></head>
<body>
<h1>Nothing here</h1>
<p>This domain serves short links.</p>
</body>
</html>`

// RedirectHandler translates resolution outcomes into HTTP responses. It is
// registered as the router's NoRoute handler: every path not claimed by an
// explicit route is a short-link candidate.
type RedirectHandler struct {
	resolver *resolver.Resolver
	cfg      *config.Config
	logger   *logger.Logger
}

// NewRedirectHandler creates a new redirect handler with dependencies
func NewRedirectHandler(res *resolver.Resolver, cfg *config.Config, log *logger.Logger) *RedirectHandler {
	return &RedirectHandler{
		resolver: res,
		cfg:      cfg,
		logger:   log,
	}
}

// Handle resolves the request's (host, path) pair and answers with a
// redirect, a not-found page or an error page. Redirects use 302 so every
// click keeps reaching the router instead of the browser cache.
func (h *RedirectHandler) Handle(c *gin.Context) {
	meta := domain.RequestMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Referer:   c.Request.Referer(),
	}

	segments := hostutil.SplitPath(c.Request.URL.Path)

	outcome, err := h.resolver.Resolve(c.Request.Context(), c.Request.Host, segments, meta)
	if err != nil {
		h.handleError(c, err)
		return
	}

	switch outcome.Kind {
	case domain.KindRedirect:
		c.Redirect(http.StatusFound, outcome.Target)

	case domain.KindSiteRoot:
		if h.cfg.RootRedirectURL != "" {
			c.Redirect(http.StatusFound, h.cfg.RootRedirectURL)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(landingPage))

	case domain.KindDomainNotFound, domain.KindLinkNotFound, domain.KindNoActiveTarget:
		h.logger.Debug("Unresolved request",
			"kind", outcome.Kind.String(),
			"host", c.Request.Host,
			"path", c.Request.URL.Path,
		)
		c.Data(http.StatusNotFound, "text/html; charset=utf-8", []byte(notFoundPage))

	default:
		h.logger.Error("Unhandled outcome kind", "kind", outcome.Kind)
		c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", []byte(errorPage))
	}
}

// Health handles GET /health
func (h *RedirectHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "link-router",
		"version": "1.0.0",
	})
}

// handleError renders a generic error page for resolution failures. A store
// outage must never look like a missing link, so this path always answers
// with 500, not 404.
func (h *RedirectHandler) handleError(c *gin.Context, err error) {
	var appErr *domain.AppError

	switch {
	case errors.Is(err, domain.ErrStoreUnavailable):
		h.logger.Error("Resolution failed, store unavailable",
			"error", err,
			"host", c.Request.Host,
			"path", c.Request.URL.Path,
		)
		c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", []byte(errorPage))

	case errors.As(err, &appErr):
		if appErr.Internal {
			h.logger.Error("Internal resolution error", "error", appErr.Err)
		}
		c.Data(appErr.StatusCode, "text/html; charset=utf-8", []byte(errorPage))

	default:
		h.logger.Error("Unexpected resolution error", "error", err)
		c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", []byte(errorPage))
	}
}
