package controllers

import (
	"context"
	"net/http"

	"github.com/franciscosanchezn/gin-recipe-api/internal/auth"
	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/franciscosanchezn/gin-recipe-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	RefreshCookie = "refresh_jwt"
	StateCookie   = "oauth_state"
	cookiePath    = "/auth"
	stateMaxAge   = 600
)

// TokenIssuer signs the access and refresh tokens handed out at login
type TokenIssuer interface {
	IssueAccessToken(user *models.User) (string, error)
	IssueRefreshToken(user *models.User) (string, error)
	VerifyRefreshToken(token string) (uint, error)
}

// GoogleLogin runs the Google OAuth2 consent and code exchange
type GoogleLogin interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*services.GoogleProfile, error)
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthController struct {
	userService  services.UserService
	issuer       TokenIssuer
	google       GoogleLogin
	refreshTTL   int
	cookieSecure bool
	log          *logrus.Logger
}

// NewAuthController wires the login endpoints. google may be nil, in which
// case the Google routes answer 404.
func NewAuthController(userService services.UserService, issuer TokenIssuer, google GoogleLogin, refreshTTLSeconds int, cookieSecure bool) *AuthController {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	return &AuthController{
		userService:  userService,
		issuer:       issuer,
		google:       google,
		refreshTTL:   refreshTTLSeconds,
		cookieSecure: cookieSecure,
		log:          log,
	}
}

// Register godoc
// @Summary Register a local account
// @Description Create a user and sign them in. The refresh token is set as an httpOnly cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param user body services.RegisterInput true "Account details"
// @Success 201 {object} map[string]string
// @Failure 400 {object} models.ValidationErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var input services.RegisterInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := ac.userService.Register(c.Request.Context(), input)
	if err != nil {
		_ = c.Error(err)
		return
	}

	token, ok := ac.signIn(c, user)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token})
}

// Token godoc
// @Summary Log in
// @Description Exchange a username and password for an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Credentials"
// @Success 200 {object} map[string]string
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/token [post]
func (ac *AuthController) Token(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := ac.userService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		ac.log.WithField("username", req.Username).Info("Failed login attempt")
		_ = c.Error(err)
		return
	}

	token, ok := ac.signIn(c, user)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Refresh godoc
// @Summary Refresh the access token
// @Description Issue a new access token from the refresh_jwt cookie
// @Tags auth
// @Produce json
// @Success 201 {object} map[string]string
// @Failure 403 {object} models.ErrorResponse
// @Router /auth/refresh [post]
func (ac *AuthController) Refresh(c *gin.Context) {
	refresh, err := c.Cookie(RefreshCookie)
	if err != nil || refresh == "" {
		c.JSON(http.StatusForbidden, models.NewAPIError(http.StatusForbidden, "Invalid Refresh Token", models.ErrForbidden))
		return
	}

	userID, err := ac.issuer.VerifyRefreshToken(refresh)
	if err != nil {
		c.JSON(http.StatusForbidden, models.NewAPIError(http.StatusForbidden, "Invalid Refresh Token", models.ErrForbidden))
		return
	}

	user, err := ac.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		// the account was deleted after the cookie was issued
		c.JSON(http.StatusForbidden, models.NewAPIError(http.StatusForbidden, "Invalid Refresh Token", models.ErrForbidden))
		return
	}

	token, err := ac.issuer.IssueAccessToken(user)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "New Token Acquired!", "token": token})
}

// Logout godoc
// @Summary Log out
// @Description Clear the refresh_jwt cookie
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /auth/logout [post]
func (ac *AuthController) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(RefreshCookie, "", -1, cookiePath, "", ac.cookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Successful Logout!"})
}

// GoogleLogin godoc
// @Summary Start Google login
// @Description Redirect to the Google consent screen
// @Tags auth
// @Success 302
// @Failure 404 {object} models.ErrorResponse
// @Router /auth/google [get]
func (ac *AuthController) GoogleLogin(c *gin.Context) {
	if ac.google == nil {
		_ = c.Error(models.NewNotFoundError("Google login is not configured"))
		return
	}

	state := auth.NewState()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(StateCookie, state, stateMaxAge, cookiePath, "", ac.cookieSecure, true)
	c.Redirect(http.StatusFound, ac.google.AuthCodeURL(state))
}

// GoogleRedirect godoc
// @Summary Finish Google login
// @Description Exchange the Google code, find or create the user and sign them in
// @Tags auth
// @Produce json
// @Param code query string true "Authorization code"
// @Param state query string true "State echoed by Google"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/google/redirect [get]
func (ac *AuthController) GoogleRedirect(c *gin.Context) {
	if ac.google == nil {
		_ = c.Error(models.NewNotFoundError("Google login is not configured"))
		return
	}

	state, err := c.Cookie(StateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		_ = c.Error(models.NewUnauthorizedError("Invalid OAuth state"))
		return
	}
	c.SetCookie(StateCookie, "", -1, cookiePath, "", ac.cookieSecure, true)

	code := c.Query("code")
	if code == "" {
		_ = c.Error(models.NewUnauthorizedError("Missing authorization code"))
		return
	}

	profile, err := ac.google.Exchange(c.Request.Context(), code)
	if err != nil {
		ac.log.WithError(err).Warn("Google code exchange failed")
		_ = c.Error(models.NewUnauthorizedError("Google login failed"))
		return
	}

	user, err := ac.userService.FindOrCreateGoogleUser(c.Request.Context(), *profile)
	if err != nil {
		_ = c.Error(err)
		return
	}

	token, ok := ac.signIn(c, user)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// signIn issues both tokens and sets the refresh cookie
func (ac *AuthController) signIn(c *gin.Context, user *models.User) (string, bool) {
	access, err := ac.issuer.IssueAccessToken(user)
	if err != nil {
		_ = c.Error(err)
		return "", false
	}
	refresh, err := ac.issuer.IssueRefreshToken(user)
	if err != nil {
		_ = c.Error(err)
		return "", false
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(RefreshCookie, refresh, ac.refreshTTL, cookiePath, "", ac.cookieSecure, true)
	return access, true
}

var _ TokenIssuer = (*auth.TokenIssuer)(nil)
var _ GoogleLogin = (*auth.GoogleAuth)(nil)
