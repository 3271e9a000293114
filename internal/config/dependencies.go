package config

import (
	"database/sql"

	"tasktracker/internal/service"
	"tasktracker/internal/websocket"
	"tasktracker/pkg/token"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
)

// Dependencies is everything the HTTP layer needs, built once in main and
// passed down explicitly. DB and Redis may be nil in tests.
type Dependencies struct {
	DB          *sql.DB
	RedisClient *redis.Client
	Validate    *validator.Validate
	Tokens      *token.Manager
	Service     *service.Service
	Hub         *websocket.Hub
}

func NewDependencies(svc *service.Service, tokens *token.Manager, hub *websocket.Hub) *Dependencies {
	return &Dependencies{
		Validate: validator.New(),
		Tokens:   tokens,
		Service:  svc,
		Hub:      hub,
	}
}
