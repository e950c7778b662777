package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/evaluation-registry/internal/config"
	"github.com/SAP-F-2025/evaluation-registry/internal/models"
)

const (
	CallerHeader     = "X-Caller-Address"
	callerContextKey = "caller_address"
)

// ErrNoCredentials means the request carries no caller at all
var ErrNoCredentials = errors.New("no caller credentials")

// CallerResolver turns request credentials into the caller address
type CallerResolver interface {
	Resolve(c *gin.Context) (models.Address, error)
}

// HeaderCallerResolver trusts X-Caller-Address. Development and tests only.
type HeaderCallerResolver struct{}

func (HeaderCallerResolver) Resolve(c *gin.Context) (models.Address, error) {
	address := models.NormalizeAddress(c.GetHeader(CallerHeader))
	if address.IsZero() {
		return "", ErrNoCredentials
	}
	return address, nil
}

// NewCallerResolver picks the resolver for the configured auth mode
func NewCallerResolver(cfg *config.Config) (CallerResolver, error) {
	switch cfg.AuthMode {
	case config.AuthModeHeader:
		return HeaderCallerResolver{}, nil
	case config.AuthModeCasdoor:
		return NewCasdoorCallerResolver(cfg.Casdoor), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.AuthMode)
	}
}

// CallerMiddleware resolves the caller once per request. Requests without
// credentials continue anonymously; handlers that need a caller answer 401.
// Credentials that are present but invalid are rejected here.
func CallerMiddleware(resolver CallerResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		address, err := resolver.Resolve(c)
		switch {
		case err == nil:
			c.Set(callerContextKey, address)
		case errors.Is(err, ErrNoCredentials):
		default:
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "unauthorized",
				Message: err.Error(),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// getCaller returns the resolved caller, or the zero address
func getCaller(c *gin.Context) models.Address {
	value, exists := c.Get(callerContextKey)
	if !exists {
		return ""
	}
	if address, ok := value.(models.Address); ok {
		return address
	}
	return ""
}
