package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	identitydomain "github.com/smartlogix/cargopro/internal/identity/domain"
)

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type authResponse struct {
	User    identitydomain.User `json:"user"`
	Role    identitydomain.Role `json:"role"`
	Access  string              `json:"access"`
	Refresh string              `json:"refresh"`
}

func (s *Server) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	id, err := s.identitySvc.Register(c.Request.Context(), identitydomain.RegisterRequest{
		Username:  strings.TrimSpace(req.Username),
		Email:     strings.TrimSpace(req.Email),
		Password:  req.Password,
		Password2: req.Password2,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	pair, err := s.tokens.IssuePair(id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": authResponse{
		User:    id.User,
		Role:    id.Role,
		Access:  pair.Access,
		Refresh: pair.Refresh,
	}})
}

func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	id, err := s.identitySvc.Login(c.Request.Context(), identitydomain.LoginRequest{
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
	})
	if err != nil {
		if s.obsMetrics != nil {
			s.obsMetrics.RecordLogin(c.Request.Context(), "failure")
		}
		AbortWithError(c, err)
		return
	}

	pair, err := s.tokens.IssuePair(id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if s.obsMetrics != nil {
		s.obsMetrics.RecordLogin(c.Request.Context(), "success")
	}
	c.JSON(http.StatusOK, gin.H{"data": authResponse{
		User:    id.User,
		Role:    id.Role,
		Access:  pair.Access,
		Refresh: pair.Refresh,
	}})
}

// Refresh rotates a refresh token into a new pair. The user row is
// reloaded so a role change since issue time lands in the new claims.
func (s *Server) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	claims, err := s.tokens.ParseRefresh(req.Refresh)
	if err != nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	id, err := s.identitySvc.GetByID(c.Request.Context(), claims.Subject)
	if err != nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	pair, err := s.tokens.IssuePair(id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": pair})
}

func (s *Server) Me(c *gin.Context) {
	id, ok := identityFrom(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	profile, err := s.identitySvc.ProfileOf(c.Request.Context(), id.User.ID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"user":    id.User,
		"role":    id.Role,
		"profile": profile,
	}})
}
