package actions

import (
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/pkg/errors"

	"gitlab.com/netops-console/vyos_console_api/config"
	"gitlab.com/netops-console/vyos_console_api/service"
)

// Actions structure
type Actions struct {
	cfg     config.Config
	service *service.Service
	store   sessions.Store
}

// MinSessionSecretLength is the shortest accepted key for signing session cookies
const MinSessionSecretLength = 32

// ErrWeakSessionSecret is returned when the session secret is missing or too short
var ErrWeakSessionSecret = errors.Errorf("server.session.secret must be at least %d bytes", MinSessionSecretLength)

// NewActions constructor
func NewActions(cfg config.Config, srv *service.Service) (*Actions, error) {
	if len(cfg.Server.Session.Secret) < MinSessionSecretLength {
		return nil, ErrWeakSessionSecret
	}
	store := sessions.NewCookieStore([]byte(cfg.Server.Session.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Server.Session.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Server.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Actions{
		cfg:     cfg,
		service: srv,
		store:   store,
	}, nil
}
