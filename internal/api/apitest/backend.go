// Package apitest runs an in-process storefront backend for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/nikolayk812/storefront-client/internal/domain"
)

const (
	Password = "secret123"

	ErrInvalidCredentials = "invalid credentials"
	ErrInvalidToken       = "token inválido"
	ErrCardNotFound       = "card não encontrado"
	ErrEmailTaken         = "email já cadastrado"
)

type Backend struct {
	Server *httptest.Server

	secret []byte

	mu         sync.Mutex
	users      map[string]domain.User
	cards      []domain.Card
	categories []domain.Category

	// ProfileFailure forces /perfil to answer with this status when non-zero.
	ProfileFailure atomic.Int64

	hits        atomic.Int64
	profileHits atomic.Int64
	lastHeaders atomic.Pointer[http.Header]
}

func NewBackend(t testing.TB, cards []domain.Card, categories []domain.Category) *Backend {
	t.Helper()

	b := &Backend{
		secret:     []byte("apitest-signing-key"),
		users:      make(map[string]domain.User),
		cards:      cards,
		categories: categories,
	}

	r := chi.NewRouter()
	r.Use(b.record)
	r.Post("/login", b.login)
	r.Post("/usuarios", b.register)
	r.Get("/perfil", b.profile)
	r.Get("/cards", b.listCards)
	r.Get("/cards/{id}", b.getCard)
	r.Get("/cards/categoria/{categoria}", b.listCardsByCategory)
	r.Get("/categorias", b.listCategories)
	r.Get("/broken", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>upstream exploded</html>"))
	})
	r.Get("/garbage", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{not json"))
	})
	r.Get("/error-without-message", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusBadRequest, map[string]string{"detail": "nope"})
	})

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)

	return b
}

func (b *Backend) URL() string {
	return b.Server.URL
}

// Hits counts every request the backend received.
func (b *Backend) Hits() int64 {
	return b.hits.Load()
}

func (b *Backend) ProfileHits() int64 {
	return b.profileHits.Load()
}

// LastHeaders returns the headers of the most recent request.
func (b *Backend) LastHeaders() http.Header {
	if h := b.lastHeaders.Load(); h != nil {
		return *h
	}
	return nil
}

// AddUser registers a user that can log in with Password.
func (b *Backend) AddUser(user domain.User) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[user.Email] = user
}

// Token signs a token for email the way /login does.
func (b *Backend) Token(email string, ttl time.Duration) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   email,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}).SignedString(b.secret)
	if err != nil {
		panic(err)
	}
	return token
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.hits.Add(1)
		h := r.Header.Clone()
		b.lastHeaders.Store(&h)
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Senha string `json:"senha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	b.mu.Lock()
	user, ok := b.users[req.Email]
	b.mu.Unlock()

	if !ok || req.Senha != Password {
		respondError(w, http.StatusUnauthorized, ErrInvalidCredentials)
		return
	}

	respondJSON(w, http.StatusOK, domain.LoginResult{
		Token:   b.Token(user.Email, time.Hour),
		Message: "login realizado",
		User:    &user,
	})
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nome  string `json:"nome"`
		Email string `json:"email"`
		Senha string `json:"senha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, taken := b.users[req.Email]; taken {
		respondError(w, http.StatusConflict, ErrEmailTaken)
		return
	}

	user := domain.User{
		ID:    domain.ProductID(strconv.Itoa(len(b.users) + 1)),
		Name:  req.Nome,
		Email: req.Email,
	}
	b.users[req.Email] = user

	respondJSON(w, http.StatusCreated, user)
}

func (b *Backend) profile(w http.ResponseWriter, r *http.Request) {
	b.profileHits.Add(1)

	if status := b.ProfileFailure.Load(); status != 0 {
		respondError(w, int(status), "profile unavailable")
		return
	}

	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		respondError(w, http.StatusUnauthorized, ErrInvalidToken)
		return
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return b.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		respondError(w, http.StatusUnauthorized, ErrInvalidToken)
		return
	}

	b.mu.Lock()
	user, ok := b.users[claims.Subject]
	b.mu.Unlock()
	if !ok {
		respondError(w, http.StatusUnauthorized, ErrInvalidToken)
		return
	}

	respondJSON(w, http.StatusOK, domain.Profile{ID: user.ID, Name: user.Name, Email: user.Email})
}

func (b *Backend) listCards(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, b.cards)
}

func (b *Backend) getCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	for _, c := range b.cards {
		if c.ID.String() == id {
			respondJSON(w, http.StatusOK, c)
			return
		}
	}
	respondError(w, http.StatusNotFound, ErrCardNotFound)
}

func (b *Backend) listCardsByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "categoria")

	result := make([]domain.Card, 0)
	for _, c := range b.cards {
		if c.Category == category {
			result = append(result, c)
		}
	}
	respondJSON(w, http.StatusOK, result)
}

func (b *Backend) listCategories(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, b.categories)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"erro": message})
}
