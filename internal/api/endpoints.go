package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/nikolayk812/storefront-client/internal/domain"
)

type loginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

type registerRequest struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
	Senha string `json:"senha"`
}

func (c *Client) Login(ctx context.Context, email, senha string) (domain.LoginResult, error) {
	var result domain.LoginResult
	err := c.Request(ctx, "/login", RequestOptions{
		Method: http.MethodPost,
		Body:   loginRequest{Email: email, Senha: senha},
	}, &result)
	return result, err
}

func (c *Client) Register(ctx context.Context, nome, email, senha string) (domain.User, error) {
	var user domain.User
	err := c.Request(ctx, "/usuarios", RequestOptions{
		Method: http.MethodPost,
		Body:   registerRequest{Nome: nome, Email: email, Senha: senha},
	}, &user)
	return user, err
}

func (c *Client) Profile(ctx context.Context) (domain.Profile, error) {
	var profile domain.Profile
	err := c.Request(ctx, "/perfil", RequestOptions{
		Method: http.MethodGet,
		Auth:   true,
	}, &profile)
	return profile, err
}

func (c *Client) Cards(ctx context.Context) ([]domain.Card, error) {
	var cards []domain.Card
	err := c.Request(ctx, "/cards", RequestOptions{}, &cards)
	return cards, err
}

func (c *Client) Card(ctx context.Context, id domain.ProductID) (domain.Card, error) {
	var card domain.Card
	err := c.Request(ctx, "/cards/"+url.PathEscape(id.String()), RequestOptions{}, &card)
	return card, err
}

func (c *Client) CardsByCategory(ctx context.Context, category string) ([]domain.Card, error) {
	var cards []domain.Card
	err := c.Request(ctx, "/cards/categoria/"+url.PathEscape(category), RequestOptions{}, &cards)
	return cards, err
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	err := c.Request(ctx, "/categorias", RequestOptions{}, &categories)
	return categories, err
}
