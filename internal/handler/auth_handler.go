package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/prepwise/prepwise-api/internal/auth"
	"github.com/prepwise/prepwise-api/internal/config"
	"github.com/prepwise/prepwise-api/internal/dto"
	"github.com/prepwise/prepwise-api/internal/middleware"
	"github.com/prepwise/prepwise-api/internal/models"
	"github.com/prepwise/prepwise-api/internal/repository"
	"github.com/prepwise/prepwise-api/internal/utils"
)

const stateCookie = "oauth_state"

// AuthHandler implements the Google OAuth login flow and cookie-session
// endpoints.
type AuthHandler struct {
	users         repository.UserRepository
	store         *auth.SessionStore
	oauth         *oauth2.Config
	cookieName    string
	successURL    string
	failureURL    string
	secureCookies bool
	logger        zerolog.Logger
}

// NewAuthHandler creates an auth handler instance.
func NewAuthHandler(users repository.UserRepository, store *auth.SessionStore, cfg config.Config, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		users: users,
		store: store,
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleSecret,
			RedirectURL:  cfg.OAuthRedirect,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		cookieName:    cfg.SessionCookie,
		successURL:    cfg.LoginSuccess,
		failureURL:    cfg.LoginFailure,
		secureCookies: cfg.AppEnv == "production",
		logger:        logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register binds the auth routes. The profile endpoint is the only one
// behind the session guard; everything else must work unauthenticated.
func (h *AuthHandler) Register(router fiber.Router, requireAuth fiber.Handler) {
	router.Get("/google", h.googleLogin)
	router.Get("/google/callback", h.googleCallback)
	router.Get("/session", h.session)
	router.Post("/logout", h.logout)
	router.Get("/logout", h.logoutRedirect)
	router.Get("/user", requireAuth, h.user)
}

func (h *AuthHandler) googleLogin(c *fiber.Ctx) error {
	state := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     stateCookie,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	url := h.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	return c.Redirect(url, fiber.StatusTemporaryRedirect)
}

func (h *AuthHandler) googleCallback(c *fiber.Ctx) error {
	logger := requestLogger(h.logger, c)

	if provErr := c.Query("error"); provErr != "" {
		logger.Warn().Str("error", provErr).Msg("provider rejected login")
		return c.Redirect(h.failureURL, fiber.StatusTemporaryRedirect)
	}

	code := c.Query("code")
	state := c.Query("state")
	saved := c.Cookies(stateCookie)
	h.clearCookie(c, stateCookie)

	if code == "" || state == "" || saved == "" || state != saved {
		logger.Warn().Msg("oauth state mismatch")
		return c.Redirect(h.failureURL, fiber.StatusTemporaryRedirect)
	}

	ctx := requestContext(c)
	token, err := h.oauth.Exchange(ctx, code)
	if err != nil {
		logger.Error().Err(err).Msg("code exchange failed")
		return c.Redirect(h.failureURL, fiber.StatusTemporaryRedirect)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		logger.Error().Msg("token response carried no id_token")
		return c.Redirect(h.failureURL, fiber.StatusTemporaryRedirect)
	}

	claims, err := decodeIDToken(rawIDToken)
	if err != nil || claims.Subject == "" {
		logger.Error().Err(err).Msg("failed to decode id_token")
		return c.Redirect(h.failureURL, fiber.StatusTemporaryRedirect)
	}

	user := models.User{
		ID:       claims.Subject,
		Provider: "google",
		Email:    claims.Email,
		Name:     claims.Name,
		Picture:  claims.Picture,
	}
	if err := h.users.Upsert(ctx, &user); err != nil {
		logger.Error().Err(err).Msg("failed to upsert user")
		return c.Redirect(h.failureURL, fiber.StatusTemporaryRedirect)
	}

	sid, err := h.store.Create(ctx, auth.Identity{
		UserID:   user.ID,
		Provider: user.Provider,
		Email:    user.Email,
		Name:     user.Name,
		Picture:  user.Picture,
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to create login session")
		return c.Redirect(h.failureURL, fiber.StatusTemporaryRedirect)
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    sid,
		Expires:  time.Now().Add(h.store.TTL()),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.Redirect(h.successURL, fiber.StatusTemporaryRedirect)
}

// session reports login state without requiring authentication, so the
// client can render either view on first load.
func (h *AuthHandler) session(c *fiber.Ctx) error {
	identity, err := h.store.Get(requestContext(c), c.Cookies(h.cookieName))
	if err != nil {
		return c.JSON(dto.AuthSessionResponse{IsAuthenticated: false})
	}

	return c.JSON(dto.AuthSessionResponse{
		IsAuthenticated: true,
		User: &dto.UserProfileResponse{
			ID:      identity.UserID,
			Email:   identity.Email,
			Name:    identity.Name,
			Picture: identity.Picture,
		},
	})
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	h.destroySession(c)
	return c.JSON(fiber.Map{"success": true})
}

func (h *AuthHandler) logoutRedirect(c *fiber.Ctx) error {
	h.destroySession(c)
	return c.Redirect("/", fiber.StatusTemporaryRedirect)
}

func (h *AuthHandler) user(c *fiber.Ctx) error {
	id := userIDFromContext(c)
	if id == "" {
		return utils.SendError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	return c.JSON(dto.UserProfileResponse{
		ID:      id,
		Email:   localString(c, middleware.LocalUserEmail),
		Name:    localString(c, middleware.LocalUserName),
		Picture: localString(c, middleware.LocalUserPicture),
	})
}

func (h *AuthHandler) destroySession(c *fiber.Ctx) {
	if sid := c.Cookies(h.cookieName); sid != "" {
		if err := h.store.Destroy(requestContext(c), sid); err != nil {
			requestLogger(h.logger, c).Warn().Err(err).Msg("failed to destroy session")
		}
	}
	h.clearCookie(c, h.cookieName)
}

func (h *AuthHandler) clearCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

type idTokenClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// decodeIDToken extracts profile claims from the id_token. The token comes
// straight from the provider's token endpoint over TLS during the code
// exchange, so the signature is not re-verified here.
func decodeIDToken(raw string) (*idTokenClaims, error) {
	claims := &idTokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, err
	}
	return claims, nil
}
