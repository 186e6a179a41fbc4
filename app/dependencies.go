// Package app wires the application together: configuration, logger,
// the ORCID validator and exchanger, and the HTTP handlers.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/researchid/orcid-auth-demo/auth"
	"github.com/researchid/orcid-auth-demo/config"
	"github.com/researchid/orcid-auth-demo/handlers"
	"github.com/researchid/orcid-auth-demo/middleware"
	"github.com/researchid/orcid-auth-demo/orcid"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger

	// ORCID
	Validator *orcid.Validator
	Exchanger *orcid.Exchanger

	// HTTP
	AuthHandler    *auth.Handler
	AuthMiddleware *middleware.AuthMiddleware
	SiteHandler    *handlers.SiteHandler
	HealthHandler  *handlers.HealthHandler
}

// NewDependencies creates and wires up all application dependencies.
// The validator fetches the ORCID signing keys during construction, so
// startup fails fast when the issuer is unreachable.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	orcidCfg := orcid.Config{
		Issuer:       cfg.ORCID.Issuer,
		KeysURL:      cfg.ORCID.KeysURL,
		ClientID:     cfg.ORCID.ClientID,
		ClientSecret: cfg.ORCID.ClientSecret,
		RedirectURI:  cfg.ORCID.RedirectURI,
	}

	validator, err := orcid.NewValidator(ctx, orcidCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token validator: %w", err)
	}
	deps.Validator = validator

	exchanger, err := orcid.NewExchanger(ctx, orcidCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize code exchanger: %w", err)
	}
	deps.Exchanger = exchanger

	deps.AuthMiddleware = middleware.NewAuthMiddleware(validator, logger)
	deps.AuthHandler = auth.NewHandler(cfg, exchanger, validator, logger)

	siteHandler, err := handlers.NewSiteHandler(cfg.Server.ProtectedPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize site handler: %w", err)
	}
	deps.SiteHandler = siteHandler
	deps.HealthHandler = handlers.NewHealthHandler(cfg.ORCID.Issuer, logger)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	return nil
}
