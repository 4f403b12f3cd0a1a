package devapi

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/adminconsole/dashboard/internal/core/domain"
)

// TokenPair is the body of a successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type accessClaims struct {
	Epoch int64 `json:"epoch"`
	jwt.RegisteredClaims
}

type refreshGrant struct {
	userID    int64
	expiresAt time.Time
}

// AuthService issues HS256 access tokens and single-use refresh tokens.
type AuthService struct {
	store      *Store
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	mu     sync.Mutex
	grants map[string]refreshGrant
	epoch  int64
	now    func() time.Time
}

func NewAuthService(store *Store, jwtSecret string, accessTTL, refreshTTL time.Duration) *AuthService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 24 * time.Hour
	}
	return &AuthService{
		store:      store,
		secret:     []byte(jwtSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		grants:     make(map[string]refreshGrant),
		now:        time.Now,
	}
}

func (s *AuthService) Login(username, password string) (TokenPair, error) {
	if username == "" || password == "" {
		return TokenPair{}, domain.ErrInvalidCredentials
	}
	userID, err := s.store.Authenticate(username, password)
	if err != nil {
		return TokenPair{}, err
	}
	return s.issue(userID)
}

// Refresh redeems a refresh token. The token is consumed whether or not a
// new pair can be issued.
func (s *AuthService) Refresh(refreshToken string) (TokenPair, error) {
	s.mu.Lock()
	grant, ok := s.grants[refreshToken]
	delete(s.grants, refreshToken)
	s.mu.Unlock()

	if !ok || s.now().After(grant.expiresAt) {
		return TokenPair{}, domain.ErrSessionExpired
	}
	if _, err := s.store.GetUser(grant.userID); err != nil {
		return TokenPair{}, domain.ErrSessionExpired
	}
	return s.issue(grant.userID)
}

// Revoke invalidates a refresh token. Unknown tokens are ignored.
func (s *AuthService) Revoke(refreshToken string) {
	s.mu.Lock()
	delete(s.grants, refreshToken)
	s.mu.Unlock()
}

// ParseAccess validates an access token and returns its user ID.
func (s *AuthService) ParseAccess(token string) (int64, error) {
	claims := accessClaims{}
	tkn, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !tkn.Valid {
		return 0, domain.ErrUnauthorized
	}
	s.mu.Lock()
	revoked := claims.Epoch < s.epoch
	s.mu.Unlock()
	if revoked {
		return 0, domain.ErrUnauthorized
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, domain.ErrUnauthorized
	}
	return id, nil
}

func (s *AuthService) issue(userID int64) (TokenPair, error) {
	now := s.now()
	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()
	claims := accessClaims{
		Epoch: epoch,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			ID:        uuid.NewString(),
		},
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh := uuid.NewString()
	s.mu.Lock()
	s.grants[refresh] = refreshGrant{userID: userID, expiresAt: now.Add(s.refreshTTL)}
	s.mu.Unlock()

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// RevokeAccessTokens invalidates every access token issued so far. Refresh
// tokens stay valid, so clients recover with one refresh.
func (s *AuthService) RevokeAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
}

// RevokeAll invalidates every access and refresh token.
func (s *AuthService) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.grants = make(map[string]refreshGrant)
}
