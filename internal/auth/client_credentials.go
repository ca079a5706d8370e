package auth

import (
	"net/http"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/gin-gonic/gin"
)

// HandleToken handles the token endpoint for the client_credentials, authorization_code and refresh_token grants
// @Summary Token Endpoint
// @Description Obtain an access token using client credentials, an authorization code or a refresh token
// @Tags OAuth2
// @Accept application/x-www-form-urlencoded
// @Produce json
// @Param grant_type formData string true "Grant type: client_credentials, authorization_code or refresh_token"
// @Param client_id formData string true "Client ID"
// @Param client_secret formData string true "Client Secret"
// @Param code formData string false "Authorization code (required for authorization_code grant)"
// @Param redirect_uri formData string false "Redirect URI (required for authorization_code grant)"
// @Param code_verifier formData string false "PKCE code verifier"
// @Param refresh_token formData string false "Refresh token (required for refresh_token grant)"
// @Param scope formData string false "Requested scope"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.OAuth2Error
// @Failure 401 {object} models.OAuth2Error
// @Router /oauth/token [post]
func (o *OAuthService) HandleToken(c *gin.Context) {
	grantType := c.PostForm("grant_type")
	if grantType == "" {
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrInvalidRequest, "grant_type is required"))
		return
	}
	if !isSupportedGrant(grantType) {
		c.JSON(http.StatusBadRequest, models.NewOAuth2Error(models.ErrUnsupportedGrantType, "grant type "+grantType+" is not supported"))
		return
	}

	// go-oauth2 validates the client, exchanges codes and refresh tokens, and writes the response itself
	if err := o.server.HandleTokenRequest(c.Writer, c.Request); err != nil {
		o.log.WithError(err).WithField("grant_type", grantType).Error("failed to write token response")
	}
}
