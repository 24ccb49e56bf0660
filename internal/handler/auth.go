package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fittedco/wardrobe-service/internal/config"
	"github.com/fittedco/wardrobe-service/internal/model"
	"github.com/fittedco/wardrobe-service/internal/service"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg  config.Config
	Auth *service.AuthService
}

func NewAuthHandler(cfg config.Config, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Auth: auth}
}

// ----- DTOs -----

type signupReq struct {
	Email                string `json:"email"`
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"passwordConfirmation"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

// userPart uses camelCase throughout; only token and URL fields in this API
// are snake_case and clients depend on that exact split.
type userPart struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type authResp struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type"`
	User         userPart `json:"user"`
}

// Signup: create the user and log them in immediately.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	res, err := h.Auth.Signup(c.Request().Context(), req.Email,
		strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName),
		req.Password, req.PasswordConfirmation)
	if err != nil {
		return writeServiceErr(c, err)
	}
	h.setAuthCookies(c, res)
	return c.JSON(http.StatusCreated, toAuthResp(res))
}

// Login: verify credentials and return a fresh pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	res, err := h.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeServiceErr(c, err)
	}
	h.setAuthCookies(c, res)
	return c.JSON(http.StatusOK, toAuthResp(res))
}

// Refresh: redeem a refresh token for a new pair. The token comes from the
// refreshToken cookie when present, else from the request body, so both
// browser and API clients are served by the one endpoint.
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw := h.refreshTokenFrom(c)
	if raw == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh token is required"})
	}

	res, err := h.Auth.Refresh(c.Request().Context(), raw)
	if err != nil {
		return writeServiceErr(c, err)
	}
	h.setAuthCookies(c, res)
	return c.JSON(http.StatusOK, toAuthResp(res))
}

// Logout: revoke the presented refresh token and clear cookies. Always
// succeeds for unknown tokens.
func (h *AuthHandler) Logout(c echo.Context) error {
	raw := h.refreshTokenFrom(c)
	if raw != "" {
		if err := h.Auth.Logout(c.Request().Context(), raw); err != nil {
			return writeServiceErr(c, err)
		}
	}
	h.clearAuthCookies(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	user, err := h.Auth.CurrentUser(c.Request().Context(), userID)
	if err != nil {
		return writeServiceErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(user)})
}

func (h *AuthHandler) refreshTokenFrom(c echo.Context) string {
	if cookie, err := c.Cookie("refreshToken"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	var req refreshReq
	if err := c.Bind(&req); err == nil {
		return req.RefreshToken
	}
	return ""
}

func (h *AuthHandler) setAuthCookies(c echo.Context, res service.AuthResult) {
	c.SetCookie(h.authCookie("accessToken", res.AccessToken, res.AccessExp))
	c.SetCookie(h.authCookie("refreshToken", res.RefreshToken, res.RefreshExp))
}

func (h *AuthHandler) clearAuthCookies(c echo.Context) {
	expired := time.Now().Add(-time.Hour)
	c.SetCookie(h.authCookie("accessToken", "", expired))
	c.SetCookie(h.authCookie("refreshToken", "", expired))
}

func (h *AuthHandler) authCookie(name, value string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure,
		SameSite: sameSiteMode(h.Cfg.CookieSameSite),
	}
}

func sameSiteMode(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func toAuthResp(res service.AuthResult) authResp {
	return authResp{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		TokenType:    "Bearer",
		User:         toUserPart(res.User),
	}
}

func toUserPart(u model.User) userPart {
	return userPart{
		ID:        u.ID.String(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
