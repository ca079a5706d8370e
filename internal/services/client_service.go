package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CreateClientInput describes a new OAuth2 client
type CreateClientInput struct {
	Name        string `json:"name" binding:"required,max=100"`
	Domain      string `json:"domain" binding:"omitempty,url"`
	Scopes      string `json:"scopes"`
	GrantTypes  string `json:"grant_types"`
	RedirectURI string `json:"redirect_uri" binding:"omitempty,url"`
}

// CreatedClient carries the plain secret, which is only ever returned once
type CreatedClient struct {
	Client *models.OAuthClient
	Secret string
}

type ClientService interface {
	CreateClient(ctx context.Context, userID uint, input CreateClientInput) (*CreatedClient, error)
	GetClientsByUserID(ctx context.Context, userID uint) ([]models.OAuthClient, error)
	GetClientByID(ctx context.Context, id string, userID uint) (*models.OAuthClient, error)
	DeleteClient(ctx context.Context, clientID string, userID uint) error
}

type clientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) ClientService {
	return &clientService{db: db}
}

func (s *clientService) CreateClient(ctx context.Context, userID uint, input CreateClientInput) (*CreatedClient, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("Clients must belong to a user")
	}

	grantTypes := input.GrantTypes
	if grantTypes == "" {
		grantTypes = "client_credentials"
	}

	secret := uuid.New().String()
	hashedSecret, err := bcrypt.GenerateFromPassword([]byte(secret), models.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash client secret: %w", err)
	}

	client := &models.OAuthClient{
		ID:          uuid.New().String(),
		Secret:      string(hashedSecret),
		Name:        input.Name,
		Domain:      input.Domain,
		Scopes:      input.Scopes,
		GrantTypes:  grantTypes,
		RedirectURI: input.RedirectURI,
		UserID:      userID,
	}
	if err := s.db.WithContext(ctx).Create(client).Error; err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return &CreatedClient{Client: client, Secret: secret}, nil
}

func (s *clientService) GetClientsByUserID(ctx context.Context, userID uint) ([]models.OAuthClient, error) {
	clients := []models.OAuthClient{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

func (s *clientService) GetClientByID(ctx context.Context, id string, userID uint) (*models.OAuthClient, error) {
	var client models.OAuthClient
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Take(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("No client: %s", id)
		}
		return nil, fmt.Errorf("load client %s: %w", id, err)
	}
	return &client, nil
}

func (s *clientService) DeleteClient(ctx context.Context, clientID string, userID uint) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", clientID, userID).Delete(&models.OAuthClient{})
	if result.Error != nil {
		return fmt.Errorf("delete client %s: %w", clientID, result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("No client: %s", clientID)
	}
	return nil
}
