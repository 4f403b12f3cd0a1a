package apiclient

import "github.com/adminconsole/dashboard/internal/core/domain"

// Wire payloads are validated before they are converted, so a malformed
// identity never reaches the permission evaluator.

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type featureRequest struct {
	Feature string `json:"feature"`
}

type tokenPair struct {
	AccessToken  string `json:"accessToken" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}

func (p tokenPair) toDomain() domain.Tokens {
	return domain.Tokens{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
}

type wireRole struct {
	ID          int64    `json:"id" validate:"gt=0"`
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Features    []string `json:"features" validate:"dive,required"`
}

func (r wireRole) toDomain() domain.Role {
	features := make([]domain.Feature, len(r.Features))
	for i, f := range r.Features {
		features[i] = domain.Feature(f)
	}
	return domain.Role{ID: r.ID, Name: r.Name, Description: r.Description, Features: features}
}

func rolesToDomain(in []wireRole) []domain.Role {
	out := make([]domain.Role, len(in))
	for i, r := range in {
		out[i] = r.toDomain()
	}
	return out
}

type wireIdentity struct {
	ID        int64      `json:"id" validate:"gt=0"`
	Username  string     `json:"username" validate:"required"`
	Email     string     `json:"email" validate:"omitempty,email"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Phone     string     `json:"phone"`
	CIN       string     `json:"cin"`
	Roles     []wireRole `json:"roles" validate:"dive"`
}

func (w wireIdentity) toDomain() *domain.Identity {
	return &domain.Identity{
		ID:        w.ID,
		Username:  w.Username,
		Email:     w.Email,
		FirstName: w.FirstName,
		LastName:  w.LastName,
		Phone:     w.Phone,
		CIN:       w.CIN,
		Roles:     rolesToDomain(w.Roles),
	}
}

type wireUser wireIdentity

func (w wireUser) toDomain() domain.User {
	id := wireIdentity(w).toDomain()
	return domain.User{
		ID:        id.ID,
		Username:  id.Username,
		Email:     id.Email,
		FirstName: id.FirstName,
		LastName:  id.LastName,
		Phone:     id.Phone,
		CIN:       id.CIN,
		Roles:     id.Roles,
	}
}
