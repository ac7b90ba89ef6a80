// Package identity emite e valida tokens de acesso e mantém as contas dos participantes.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/radieske/prediction-league/internal/league"
)

// DefaultTokenTTL é a validade do token quando a configuração não informa uma
const DefaultTokenTTL = 30 * 24 * time.Hour

// Config parametriza o serviço de identidade
type Config struct {
	Secret      string
	TokenTTL    time.Duration
	AdminEmails []string
}

// Users é o subconjunto do store usado pelas contas
type Users interface {
	CreateUser(ctx context.Context, u league.User) (league.User, error)
	UserByEmail(ctx context.Context, email string) (league.User, error)
	UserByID(ctx context.Context, id int64) (league.User, error)
}

type claims struct {
	UserID  int64  `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// Service implementa registro, login e verificação de tokens
type Service struct {
	users  Users
	secret []byte
	ttl    time.Duration
	admins map[string]struct{}
	now    func() time.Time
}

func NewService(users Users, cfg Config) (*Service, error) {
	if cfg.Secret == "" {
		return nil, errors.New("identity: empty token secret")
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	admins := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, e := range cfg.AdminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			admins[e] = struct{}{}
		}
	}
	return &Service{users: users, secret: []byte(cfg.Secret), ttl: cfg.TokenTTL, admins: admins, now: time.Now}, nil
}

// IsAdmin aplica a regra de administrador: flag no token ou e-mail na lista configurada
func (s *Service) IsAdmin(who league.Identity) bool {
	if who.IsAdmin {
		return true
	}
	_, ok := s.admins[strings.ToLower(who.Email)]
	return ok
}

// Issue gera um token assinado (HS256) para o usuário
func (s *Service) Issue(u league.User) (string, error) {
	now := s.now()
	c := claims{
		UserID:  u.ID,
		Email:   u.Email,
		IsAdmin: u.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// Verify valida assinatura e expiração e devolve a identidade do portador
func (s *Service) Verify(token string) (league.Identity, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return league.Identity{}, fmt.Errorf("%w: %v", league.ErrUnauthorized, err)
	}
	if c.UserID == 0 {
		return league.Identity{}, fmt.Errorf("%w: token without user id", league.ErrUnauthorized)
	}
	return league.Identity{UserID: c.UserID, Email: c.Email, IsAdmin: c.IsAdmin}, nil
}

// Registration são os dados de uma conta nova
type Registration struct {
	Name     string
	Email    string
	Password string
	Timezone string
}

// Register cria a conta e devolve o usuário com o token de acesso
func (s *Service) Register(ctx context.Context, r Registration) (league.User, string, error) {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Name == "" || r.Password == "" {
		return league.User{}, "", fmt.Errorf("%w: name and password are required", league.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return league.User{}, "", fmt.Errorf("%w: invalid email", league.ErrInvalidInput)
	}
	if r.Timezone == "" {
		r.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(r.Timezone); err != nil {
		return league.User{}, "", fmt.Errorf("%w: unknown timezone %q", league.ErrInvalidInput, r.Timezone)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), bcrypt.DefaultCost)
	if err != nil {
		return league.User{}, "", fmt.Errorf("%w: %v", league.ErrInvalidInput, err)
	}
	u, err := s.users.CreateUser(ctx, league.User{
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: string(hash),
		Timezone:     r.Timezone,
	})
	if err != nil {
		return league.User{}, "", err
	}
	tok, err := s.Issue(u)
	return u, tok, err
}

// Login confere as credenciais; e-mail desconhecido e senha errada dão o mesmo erro
func (s *Service) Login(ctx context.Context, email, password string) (league.User, string, error) {
	u, err := s.users.UserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, league.ErrNotFound) {
		return league.User{}, "", fmt.Errorf("%w: invalid credentials", league.ErrUnauthorized)
	}
	if err != nil {
		return league.User{}, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return league.User{}, "", fmt.Errorf("%w: invalid credentials", league.ErrUnauthorized)
	}
	tok, err := s.Issue(u)
	return u, tok, err
}

// Me devolve o perfil do usuário autenticado
func (s *Service) Me(ctx context.Context, who league.Identity) (league.User, error) {
	u, err := s.users.UserByID(ctx, who.UserID)
	if errors.Is(err, league.ErrNotFound) {
		return league.User{}, fmt.Errorf("%w: account no longer exists", league.ErrUnauthorized)
	}
	return u, err
}
