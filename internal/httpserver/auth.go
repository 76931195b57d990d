package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"podcast-storefront/internal/domain"
	customersvc "podcast-storefront/internal/service/customer"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken"`
	ExpiresIn    int              `json:"expiresIn"`
	Customer     customerResponse `json:"customer"`
}

func (h *handlers) signup(c *gin.Context) {
	var req customersvc.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	cust, err := h.deps.CustomerSvc.Signup(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		h.badRequestOrInternal(c, "signup", err)
		return
	}
	currentSession(c).SignIn(*cust)
	c.JSON(http.StatusCreated, gin.H{"customer": toCustomerResponse(*cust)})
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
		return
	}
	sess, err := h.deps.CustomerSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, customersvc.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.internal(c, "login", err)
		return
	}
	currentSession(c).SignIn(*sess.Customer)
	c.JSON(http.StatusOK, loginResponse{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresIn:    h.deps.CustomerSvc.AccessTTLSeconds(),
		Customer:     toCustomerResponse(*sess.Customer),
	})
}

func (h *handlers) logout(c *gin.Context) {
	if token := bearerToken(c); token != "" {
		if err := h.deps.CustomerSvc.Logout(c.Request.Context(), token); err != nil {
			h.logger.Warn("token revoke failed", zap.Error(err))
		}
	}
	currentSession(c).SignOut()
	c.Status(http.StatusNoContent)
}

func (h *handlers) me(c *gin.Context) {
	sess := currentSession(c)
	cust, err := h.deps.CustomerSvc.Get(c.Request.Context(), sess.UID())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			sess.SignOut()
			c.JSON(http.StatusUnauthorized, gin.H{"error": "sign in required", "redirect": "/login"})
			return
		}
		h.internal(c, "me", err)
		return
	}
	sess.SignIn(*cust)
	c.JSON(http.StatusOK, gin.H{"customer": toCustomerResponse(*cust)})
}

func (h *handlers) updateProfile(c *gin.Context) {
	var req customersvc.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	sess := currentSession(c)
	cust, err := h.deps.CustomerSvc.UpdateProfile(c.Request.Context(), sess.UID(), req)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
			return
		}
		h.badRequestOrInternal(c, "update profile", err)
		return
	}
	sess.Identity.SetProfile(cust.Profile())
	c.JSON(http.StatusOK, gin.H{"customer": toCustomerResponse(*cust)})
}
