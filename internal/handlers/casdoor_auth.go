package handlers

import (
	"fmt"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/evaluation-registry/internal/config"
	"github.com/SAP-F-2025/evaluation-registry/internal/models"
)

// CasdoorCallerResolver validates bearer tokens with the Casdoor SDK. The
// caller address is the user id claim.
type CasdoorCallerResolver struct {
	client *casdoorsdk.Client
	config config.CasdoorConfig
}

// NewCasdoorCallerResolver creates a resolver bound to one Casdoor application
func NewCasdoorCallerResolver(cfg config.CasdoorConfig) *CasdoorCallerResolver {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)

	return &CasdoorCallerResolver{
		client: client,
		config: cfg,
	}
}

func (r *CasdoorCallerResolver) Resolve(c *gin.Context) (models.Address, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", ErrNoCredentials
	}

	token, err := bearerToken(authHeader)
	if err != nil {
		return "", err
	}

	claims, err := r.client.ParseJwtToken(token)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	address := models.NormalizeAddress(claims.Id)
	if address.IsZero() {
		return "", fmt.Errorf("invalid user ID in token")
	}
	return address, nil
}

// bearerToken extracts the token from "Bearer <token>"
func bearerToken(authHeader string) (string, error) {
	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" || tokenParts[1] == "" {
		return "", fmt.Errorf("invalid authorization header format")
	}
	return tokenParts[1], nil
}
