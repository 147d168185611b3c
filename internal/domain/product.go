package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ProductID is the backend's product identifier. The catalog sends numbers,
// older persisted carts may hold strings, so both decode to the same value.
type ProductID string

func (id ProductID) String() string {
	return string(id)
}

func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("product id: %w", err)
		}
		*id = ProductID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product id: %w", err)
	}
	*id = ProductID(n.String())
	return nil
}

type Product struct {
	ID        ProductID
	Name      string
	UnitPrice decimal.Decimal
	ImageURL  string
}

type Card struct {
	ID          ProductID       `json:"id"`
	Name        string          `json:"nome"`
	Description string          `json:"descricao,omitempty"`
	Price       decimal.Decimal `json:"valor"`
	ImageURL    string          `json:"url_imagem"`
	Category    string          `json:"categoria,omitempty"`
}

func (c Card) Product() Product {
	return Product{
		ID:        c.ID,
		Name:      c.Name,
		UnitPrice: c.Price,
		ImageURL:  c.ImageURL,
	}
}

type Category struct {
	ID   ProductID `json:"id"`
	Name string    `json:"nome"`
}

type Profile struct {
	ID    ProductID `json:"id"`
	Name  string    `json:"nome"`
	Email string    `json:"email"`
}

type User struct {
	ID    ProductID `json:"id"`
	Name  string    `json:"nome"`
	Email string    `json:"email"`
}

type LoginResult struct {
	Token   string `json:"token"`
	Message string `json:"mensagem,omitempty"`
	User    *User  `json:"usuario,omitempty"`
}
