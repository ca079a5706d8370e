package auth

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/go-oauth2/oauth2/v4"
	oauth2errors "github.com/go-oauth2/oauth2/v4/errors"
	"gorm.io/gorm"
)

// HandleAuthorize issues an authorization code for the signed-in user and redirects back to the client
// @Summary Authorization Endpoint
// @Description Issue an authorization code for the authenticated user
// @Tags OAuth2
// @Produce json
// @Security BearerAuth
// @Param response_type query string true "Must be code"
// @Param client_id query string true "Client ID"
// @Param redirect_uri query string false "Redirect URI, defaults to the registered one"
// @Param scope query string false "Requested scope"
// @Param state query string false "Opaque value returned to the client"
// @Param code_challenge query string false "PKCE code challenge"
// @Param code_challenge_method query string false "PKCE method: plain or S256"
// @Success 302
// @Failure 400 {object} models.OAuth2Error
// @Failure 401 {object} models.OAuth2Error
// @Router /oauth/authorize [get]
func (o *OAuthService) HandleAuthorize(c *gin.Context) {
	if responseType := c.Query("response_type"); responseType != oauth2.Code.String() {
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error("unsupported_response_type", "response_type must be code"))
		return
	}

	userID := c.GetUint("userID")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, models.NewOAuth2Error(models.ErrAuthorizationNeeded, "sign in before authorizing a client"))
		return
	}

	clientID := c.Query("client_id")
	var client models.OAuthClient
	if err := o.db.WithContext(c.Request.Context()).Where("id = ?", clientID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrInvalidClient, "unknown client"))
			return
		}
		_ = c.Error(err)
		return
	}
	if !clientAllowsGrant(&client, oauth2.AuthorizationCode) {
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error("unauthorized_client", "client may not use the authorization_code grant"))
		return
	}

	redirectURI := c.Query("redirect_uri")
	if redirectURI == "" {
		redirectURI = client.RedirectURI
	}
	if redirectURI == "" || (client.RedirectURI != "" && redirectURI != client.RedirectURI) {
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrInvalidRequest, "redirect_uri does not match the registered one"))
		return
	}
	target, err := url.Parse(redirectURI)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrInvalidRequest, "redirect_uri is not a valid URL"))
		return
	}

	ti, err := o.server.Manager.GenerateAuthToken(c.Request.Context(), oauth2.Code, &oauth2.TokenGenerateRequest{
		ClientID:            client.ID,
		UserID:              strconv.FormatUint(uint64(userID), 10),
		RedirectURI:         redirectURI,
		Scope:               c.Query("scope"),
		CodeChallenge:       c.Query("code_challenge"),
		CodeChallengeMethod: oauth2.CodeChallengeMethod(c.Query("code_challenge_method")),
		Request:             c.Request,
	})
	if err != nil {
		if errors.Is(err, oauth2errors.ErrInvalidRedirectURI) {
			c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrInvalidRequest, "redirect_uri is not within the client domain"))
			return
		}
		_ = c.Error(err)
		return
	}

	query := target.Query()
	query.Set("code", ti.GetCode())
	if state := c.Query("state"); state != "" {
		query.Set("state", state)
	}
	target.RawQuery = query.Encode()

	c.Redirect(http.StatusFound, target.String())
}
