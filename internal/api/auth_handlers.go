package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/tarifflyapp/tariffly-server/internal/domain"
	"github.com/tarifflyapp/tariffly-server/internal/service"
)

// SignupInput creates a new operator account.
type SignupInput struct {
	Body struct {
		Email      string `json:"email" format:"email" doc:"Account email address"`
		Password   string `json:"password" minLength:"8" maxLength:"1024" doc:"Account password"`
		ShopDomain string `json:"shop_domain" minLength:"1" doc:"Shop the account operates on"`
	}
}

// LoginInput authenticates an existing operator account.
type LoginInput struct {
	Body struct {
		Email    string `json:"email" format:"email" doc:"Account email address"`
		Password string `json:"password" minLength:"1" doc:"Account password"`
	}
}

// AuthOutput carries the issued token and the account it belongs to.
type AuthOutput struct {
	Body *service.AuthResponse
}

// UserOutput returns the authenticated operator's account.
type UserOutput struct {
	Body struct {
		User *domain.User `json:"user"`
	}
}

// registerAuthRoutes registers signup, login and the current-user endpoint.
func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "auth-signup",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/signup",
		Summary:     "Create account",
		Description: "Creates a new operator account and returns an access token.",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *SignupInput) (*AuthOutput, error) {
		resp, err := s.services.Auth.Signup(ctx, service.SignupRequest{
			Email:      input.Body.Email,
			Password:   input.Body.Password,
			ShopDomain: input.Body.ShopDomain,
		})
		if err != nil {
			return nil, huma.Error400BadRequest("Signup failed", err)
		}
		return &AuthOutput{Body: resp}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "auth-login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Log in",
		Description: "Authenticates an operator account and returns an access token.",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
		resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
			Email:    input.Body.Email,
			Password: input.Body.Password,
		})
		if err != nil {
			return nil, huma.Error401Unauthorized("Login failed", err)
		}
		return &AuthOutput{Body: resp}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-current-user",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Current user",
		Description: "Returns the account behind the presented token.",
		Tags:        []string{"Auth"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, func(ctx context.Context, _ *struct{}) (*UserOutput, error) {
		user, err := s.RequireUser(ctx)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = ""
		resp := &UserOutput{}
		resp.Body.User = user
		return resp, nil
	})
}
