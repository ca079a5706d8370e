package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-recipe-api/internal/services"
	"github.com/gin-gonic/gin"
)

type ClientController struct {
	clientService services.ClientService
}

func NewClientController(clientService services.ClientService) *ClientController {
	return &ClientController{clientService: clientService}
}

// CreateClient godoc
// @Summary Create OAuth2 client
// @Description Create a new OAuth2 client for API access. The plain secret is only returned here.
// @Tags OAuth2 Clients
// @Accept json
// @Produce json
// @Param client body services.CreateClientInput true "Client details"
// @Success 201 {object} map[string]interface{} "Client created with client_id and client_secret"
// @Failure 400 {object} models.ValidationErrorResponse "Invalid request"
// @Failure 500 {object} models.ErrorResponse "Client creation failed"
// @Security BearerAuth
// @Router /oauth/clients [post]
func (cc *ClientController) CreateClient(c *gin.Context) {
	var input services.CreateClientInput
	if !bindJSON(c, &input) {
		return
	}

	created, err := cc.clientService.CreateClient(c.Request.Context(), actorFrom(c).UserID, input)
	if err != nil {
		_ = c.Error(err)
		return
	}

	client := created.Client
	c.JSON(http.StatusCreated, gin.H{
		"client_id":     client.ID,
		"client_secret": created.Secret,
		"name":          client.Name,
		"domain":        client.Domain,
		"scopes":        client.Scopes,
		"grant_types":   client.GrantTypes,
		"redirect_uri":  client.RedirectURI,
	})
}

// ListClients godoc
// @Summary List OAuth2 clients
// @Description Get all OAuth2 clients owned by the authenticated user
// @Tags OAuth2 Clients
// @Produce json
// @Success 200 {array} models.OAuthClient "List of clients"
// @Security BearerAuth
// @Router /oauth/clients [get]
func (cc *ClientController) ListClients(c *gin.Context) {
	clients, err := cc.clientService.GetClientsByUserID(c.Request.Context(), actorFrom(c).UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

// GetClient godoc
// @Summary Get OAuth2 client
// @Description Get one OAuth2 client owned by the authenticated user
// @Tags OAuth2 Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} models.OAuthClient
// @Failure 404 {object} models.ErrorResponse "Client not found"
// @Security BearerAuth
// @Router /oauth/clients/{id} [get]
func (cc *ClientController) GetClient(c *gin.Context) {
	client, err := cc.clientService.GetClientByID(c.Request.Context(), c.Param("id"), actorFrom(c).UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, client)
}

// DeleteClient godoc
// @Summary Delete OAuth2 client
// @Description Delete an OAuth2 client owned by the authenticated user
// @Tags OAuth2 Clients
// @Param id path string true "Client ID"
// @Success 204 "Client deleted successfully"
// @Failure 404 {object} models.ErrorResponse "Client not found"
// @Security BearerAuth
// @Router /oauth/clients/{id} [delete]
func (cc *ClientController) DeleteClient(c *gin.Context) {
	if err := cc.clientService.DeleteClient(c.Request.Context(), c.Param("id"), actorFrom(c).UserID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
