package services

import (
	"context"

	"meetscribe/internal/domain/dto"
	"meetscribe/internal/domain/entities"
)

// Principal is the identity carried by a verified token.
type Principal struct {
	ID    string
	Email string
	Name  string
}

// IAuthService exchanges Google access tokens for service tokens and
// verifies them on each request.
type IAuthService interface {
	AuthenticateWithGoogle(ctx context.Context, accessToken string) (dto.AuthResponse, error)
	VerifyToken(token string) (Principal, error)
	IssueToken(user entities.User) (string, error)
}
