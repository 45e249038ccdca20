package gql

import (
	"context"

	"fleet/internal/loader"
	"fleet/internal/models"
)

//go:generate mockgen -destination=../mocks/mock_datasource.go -package=mocks fleet/internal/gql DataSource

// DataSource — слой данных, который нужен резолверам (реализует repo.Store).
type DataSource interface {
	loader.Source

	FindAllDevices(ctx context.Context) ([]*models.Device, error)
	FindLatestVersion(ctx context.Context) (string, error)
	FindAllUsers(ctx context.Context) ([]*models.User, error)
	FindExpiredUsers(ctx context.Context) ([]*models.User, error)
	AuthenticateUser(ctx context.Context, email, password string) (string, error)
	VerifyToken(ctx context.Context, token string) (*models.DecodedJwt, error)
}
