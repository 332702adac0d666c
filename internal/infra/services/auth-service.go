package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/golang-jwt/jwt/v5"

	"meetscribe/internal/domain/dto"
	"meetscribe/internal/domain/entities"
	Irepository "meetscribe/internal/domain/interfaces/repository"
	Iservices "meetscribe/internal/domain/interfaces/services"
	"meetscribe/internal/infra/logger"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

const (
	defaultTokenInfoURL = "https://www.googleapis.com/oauth2/v1/tokeninfo"
	defaultUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// AuthService validates Google access tokens coming from the browser
// extension, maps them to user rows and mints the HS256 tokens the rest of
// the API is gated by.
type AuthService struct {
	Users      Irepository.UserRepository
	Logger     *logger.Logger
	HTTPClient *http.Client

	jwtSecret         []byte
	extensionClientID string

	// Overridable in tests.
	TokenInfoURL string
	UserInfoURL  string
}

func NewAuthService(users Irepository.UserRepository, logger *logger.Logger, httpClient *http.Client, jwtSecret, extensionClientID string) *AuthService {
	return &AuthService{
		Users:             users,
		Logger:            logger,
		HTTPClient:        httpClient,
		jwtSecret:         []byte(jwtSecret),
		extensionClientID: extensionClientID,
		TokenInfoURL:      defaultTokenInfoURL,
		UserInfoURL:       defaultUserInfoURL,
	}
}

type tokenInfo struct {
	Audience  string `json:"audience"`
	ExpiresIn int    `json:"expires_in"`
}

type googleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AuthenticateWithGoogle validates the access token against Google's
// tokeninfo endpoint, fetches the user's profile, creates the user row when
// it is the first sign-in and returns a freshly minted service token.
func (as *AuthService) AuthenticateWithGoogle(ctx context.Context, accessToken string) (dto.AuthResponse, error) {
	info, err := as.validateAccessToken(ctx, accessToken)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	if info.Audience != as.extensionClientID {
		return dto.AuthResponse{}, fmt.Errorf("%w: token audience mismatch", ErrInvalidToken)
	}
	if info.ExpiresIn <= 0 {
		return dto.AuthResponse{}, fmt.Errorf("%w: token has expired", ErrInvalidToken)
	}

	profile, err := as.fetchUserInfo(ctx, accessToken)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	user, err := as.Users.FindOrCreate(ctx, entities.User{
		ID:    profile.ID,
		Email: profile.Email,
		Name:  profile.Name,
	})
	if err != nil {
		return dto.AuthResponse{}, fmt.Errorf("find or create user %s: %w", profile.ID, err)
	}

	token, err := as.IssueToken(user)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	as.Logger.Info(fmt.Sprintf("Authenticated user %s", user.ID))
	return dto.AuthResponse{
		AccessToken: token,
		User:        dto.UserOut{ID: user.ID, Email: user.Email, Name: user.Name},
	}, nil
}

func (as *AuthService) validateAccessToken(ctx context.Context, accessToken string) (tokenInfo, error) {
	endpoint := as.TokenInfoURL + "?access_token=" + url.QueryEscape(accessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return tokenInfo{}, fmt.Errorf("build tokeninfo request: %w", err)
	}

	resp, err := as.HTTPClient.Do(req)
	if err != nil {
		return tokenInfo{}, fmt.Errorf("call tokeninfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return tokenInfo{}, fmt.Errorf("%w: tokeninfo returned status %d", ErrInvalidToken, resp.StatusCode)
	}

	var info tokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return tokenInfo{}, fmt.Errorf("decode tokeninfo response: %w", err)
	}
	return info, nil
}

func (as *AuthService) fetchUserInfo(ctx context.Context, accessToken string) (googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, as.UserInfoURL, nil)
	if err != nil {
		return googleUserInfo{}, fmt.Errorf("build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := as.HTTPClient.Do(req)
	if err != nil {
		return googleUserInfo{}, fmt.Errorf("call userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleUserInfo{}, fmt.Errorf("%w: userinfo returned status %d", ErrInvalidToken, resp.StatusCode)
	}

	var profile googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return googleUserInfo{}, fmt.Errorf("decode userinfo response: %w", err)
	}
	if profile.ID == "" {
		return googleUserInfo{}, fmt.Errorf("%w: userinfo response missing id", ErrInvalidToken)
	}
	return profile, nil
}

// IssueToken mints an HS256 token carrying the user's identity.
func (as *AuthService) IssueToken(user entities.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"name":  user.Name,
	})
	signed, err := token.SignedString(as.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks the signature and returns the principal the token was
// issued for.
func (as *AuthService) VerifyToken(tokenString string) (Iservices.Principal, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return as.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return Iservices.Principal{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Iservices.Principal{}, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Iservices.Principal{}, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)

	return Iservices.Principal{ID: sub, Email: email, Name: name}, nil
}
