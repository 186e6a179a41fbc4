// Package handlers contains the HTTP handlers for the demo site: the
// public home page, the protected area, and the service endpoint that
// echoes the authenticated identity.
package handlers

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/researchid/orcid-auth-demo/middleware"
	"github.com/researchid/orcid-auth-demo/orcid"
	"github.com/researchid/orcid-auth-demo/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

// ServiceResponse is returned by the protected service endpoint. It
// exposes the validated claims and the raw id_token so a caller can
// forward it as a bearer credential to other services.
type ServiceResponse struct {
	Claims   *orcid.Claims `json:"claims"`
	Provider string        `json:"provider"`
	IDToken  string        `json:"id_token"`
}

// SiteHandler renders the public and protected pages
type SiteHandler struct {
	templates     *template.Template
	protectedPath string
	logger        *zap.Logger
}

// NewSiteHandler parses the embedded page templates.
func NewSiteHandler(protectedPath string, logger *zap.Logger) (*SiteHandler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &SiteHandler{
		templates:     tmpl,
		protectedPath: protectedPath,
		logger:        logger,
	}, nil
}

// HandleHome handles GET /
// Public landing page with a link into the protected area.
func (h *SiteHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	h.render(w, "index.html", map[string]any{
		"ProtectedPath": h.protectedPath,
	})
}

// HandleProtectedHome handles GET {protected}/
// Requires an authenticated identity in the request context.
func (h *SiteHandler) HandleProtectedHome(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		_ = utils.WriteUnauthorized(w, "Missing or invalid authorization")
		return
	}

	name := strings.TrimSpace(identity.Claims.GivenName + " " + identity.Claims.FamilyName)
	if name == "" {
		name = identity.Subject
	}

	h.render(w, "user.html", map[string]any{
		"Name":          name,
		"ORCID":         identity.Subject,
		"ProtectedPath": h.protectedPath,
	})
}

// HandleService handles GET {protected}/service
// Returns the validated claims, the provider name, and the raw id_token.
func (h *SiteHandler) HandleService(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromContext(r.Context())
	if identity == nil {
		_ = utils.WriteUnauthorized(w, "Missing or invalid authorization")
		return
	}

	_ = utils.WriteOK(w, ServiceResponse{
		Claims:   identity.Claims,
		Provider: "orcid",
		IDToken:  identity.Token,
	})
}

func (h *SiteHandler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("failed to render template",
			zap.String("template", name),
			zap.Error(err))
	}
}
