package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkveil/inkveil/internal/api"
	"github.com/inkveil/inkveil/internal/common"
	"github.com/inkveil/inkveil/internal/server/models"
)

func (s *Server) register(c *gin.Context) {
	var req api.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.Username == "" || len(req.Salt) == 0 || len(req.Verifier) == 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "username, salt and verifier are required"})
		return
	}

	s.logger.Info(c.Request.Context(), "registration request")

	user, err := s.users.Register(c.Request.Context(), req.Username, req.Salt, req.Verifier)
	if err != nil {
		s.logger.Error(c.Request.Context(), "registration failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "cannot register user"})
		return
	}

	s.logger.Info(c.Request.Context(), "registered", "username", user.UserName)
	c.Status(http.StatusCreated)
}

func (s *Server) getSalt(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "username is required"})
		return
	}

	salt, err := s.users.GetSalt(c.Request.Context(), username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
		return
	}

	c.JSON(http.StatusOK, api.SaltResponse{Salt: salt})
}

func (s *Server) login(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body"})
		return
	}

	pair, err := s.users.Login(c.Request.Context(), req.Username, req.Verifier)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
		return
	}

	c.JSON(http.StatusOK, api.TokenPair{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (s *Server) ping(c *gin.Context) {
	c.JSON(http.StatusOK, api.PingResponse{Status: "OK"})
}

func (s *Server) refreshToken(c *gin.Context) {
	var req api.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body"})
		return
	}

	pair, err := s.users.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, common.ErrRefreshTokenExpired) {
			c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: common.ErrRefreshTokenExpired.Error()})
			return
		}
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid refresh token"})
		return
	}

	c.JSON(http.StatusOK, api.TokenPair{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (s *Server) syncEntries(c *gin.Context) {
	userID := c.GetString(userIDKey)

	var req api.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body"})
		return
	}

	pending := make([]*models.Entry, 0, len(req.Entries))
	for _, e := range req.Entries {
		pending = append(pending, &models.Entry{
			ID:               e.Id,
			EncryptedTitle:   e.EncryptedTitle,
			EncryptedContent: e.EncryptedContent,
			IV:               e.IV,
			CreatedAt:        e.CreatedAt,
			UpdatedAt:        e.UpdatedAt,
			Deleted:          e.Deleted,
		})
	}

	all, err := s.entries.Sync(c.Request.Context(), userID, pending)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "entry belongs to another user"})
			return
		}
		s.logger.Error(c.Request.Context(), "sync failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
		return
	}

	resp := api.SyncResponse{Entries: make([]api.Entry, 0, len(all))}
	for _, e := range all {
		resp.Entries = append(resp.Entries, api.Entry{
			Id:               e.ID,
			EncryptedTitle:   e.EncryptedTitle,
			EncryptedContent: e.EncryptedContent,
			IV:               e.IV,
			CreatedAt:        e.CreatedAt,
			UpdatedAt:        e.UpdatedAt,
			Deleted:          e.Deleted,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) createSwitch(c *gin.Context) {
	userID := c.GetString(userIDKey)

	var req api.CreateSwitchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.TimerIntervalSeconds <= 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "timer interval must be positive"})
		return
	}
	if req.HasPayload && (len(req.PayloadKey) == 0 || len(req.PayloadIV) == 0) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "payload key and iv are required"})
		return
	}

	sw := &models.Switch{
		EncryptedName:        req.EncryptedName,
		NameIV:               req.NameIV,
		TimerIntervalSeconds: req.TimerIntervalSeconds,
		Recipients:           req.Recipients,
		HasPayload:           req.HasPayload,
		PayloadKey:           req.PayloadKey,
		PayloadIV:            req.PayloadIV,
	}
	if sw.Recipients == nil {
		sw.Recipients = []string{}
	}

	created, uploadURL, err := s.switches.Create(c.Request.Context(), userID, sw)
	if err != nil {
		s.logger.Error(c.Request.Context(), "switch creation failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "cannot create switch"})
		return
	}

	s.logger.Info(c.Request.Context(), "switch created", "switch_id", created.ID, "has_payload", created.HasPayload)
	c.JSON(http.StatusCreated, api.CreateSwitchResponse{Id: created.ID, UploadURL: uploadURL})
}

func (s *Server) checkIn(c *gin.Context) {
	userID := c.GetString(userIDKey)
	switchID := c.Param("id")

	lastCheckIn, err := s.switches.CheckIn(c.Request.Context(), userID, switchID)
	if err != nil {
		if errors.Is(err, common.ErrSwitchTriggered) {
			// terminal state, reported as data rather than an error
			c.JSON(http.StatusOK, api.CheckInResponse{Triggered: true})
			return
		}
		if errors.Is(err, common.ErrorNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "switch not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
		return
	}

	c.JSON(http.StatusOK, api.CheckInResponse{LastCheckIn: lastCheckIn, Triggered: false})
}

func (s *Server) disclosure(c *gin.Context) {
	switchID := c.Param("id")

	d, err := s.switches.Disclosure(c.Request.Context(), switchID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "not found"})
			return
		}
		s.logger.Error(c.Request.Context(), "disclosure failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
		return
	}

	c.JSON(http.StatusOK, api.DisclosureResponse{
		PayloadURL:  d.PayloadURL,
		IV:          d.IV,
		TriggeredAt: d.TriggeredAt,
	})
}
