// Package httpapi exposes the server's JSON HTTP API: account and token
// endpoints, entry sync, switch lifecycle, and the anonymous disclosure
// endpoint for recipients.
package httpapi

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inkveil/inkveil/internal/logging"
	"github.com/inkveil/inkveil/internal/server/config"
	"github.com/inkveil/inkveil/internal/server/models"
	"github.com/inkveil/inkveil/internal/server/services"
)

// UserService is the slice of the user service the HTTP layer needs.
type UserService interface {
	Register(ctx context.Context, username string, salt, verifier []byte) (*models.User, error)
	GetSalt(ctx context.Context, userName string) ([]byte, error)
	Login(ctx context.Context, userName string, verifierCandidate []byte) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

// EntryService handles journal entry sync.
type EntryService interface {
	Sync(ctx context.Context, userID string, pendingEntries []*models.Entry) ([]*models.Entry, error)
}

// SwitchService handles the dead man's switch lifecycle.
type SwitchService interface {
	Create(ctx context.Context, userID string, sw *models.Switch) (*models.Switch, string, error)
	CheckIn(ctx context.Context, userID string, switchID string) (time.Time, error)
	Disclosure(ctx context.Context, switchID string) (*services.Disclosure, error)
}

// Server wires the HTTP routes to the service layer.
type Server struct {
	users     UserService
	entries   EntryService
	switches  SwitchService
	jwtSecret []byte
	logger    logging.Logger
}

func NewServer(cfg *config.Config, users UserService, entries EntryService, switches SwitchService, logger logging.Logger) *Server {
	return &Server{
		users:     users,
		entries:   entries,
		switches:  switches,
		jwtSecret: []byte(cfg.SecretKey),
		logger:    logger,
	}
}

// Router builds the gin engine with all routes registered. The disclosure
// endpoint is deliberately outside the authenticated group: recipients
// have no accounts, possession of the link is their capability.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.POST("/register", s.register)
		api.GET("/salt", s.getSalt)
		api.POST("/login", s.login)
		api.GET("/ping", s.ping)
		api.POST("/token/refresh", s.refreshToken)

		authed := api.Group("")
		authed.Use(s.authRequired())
		{
			authed.POST("/entries/sync", s.syncEntries)
			authed.POST("/switches", s.createSwitch)
			authed.POST("/switches/:id/checkin", s.checkIn)
		}
	}

	r.GET("/disclosure/:id", s.disclosure)

	return r
}
