package main

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item representa um produto do catálogo. Itens são imutáveis depois de criados.
type Item struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
}

// Cart representa o carrinho de compras de um usuário (relação 1:1 com User)
type Cart struct {
	ID    int64           `json:"id" db:"id"`
	Items []Item          `json:"items"`
	Total decimal.Decimal `json:"total" db:"total"`
}

// AddItem adiciona uma ocorrência do item ao carrinho e soma o preço ao total.
// A lista de itens é materializada vazia na primeira mutação.
func (c *Cart) AddItem(item Item) {
	if c.Items == nil {
		c.Items = []Item{}
	}
	c.Items = append(c.Items, item)
	c.Total = c.Total.Add(item.Price)
}

// RemoveItem remove uma ocorrência do item (no-op se ausente) e subtrai o preço
// do total. O total é decrementado mesmo quando o item não está no carrinho —
// contrato herdado do sistema de referência, exercitado pela suíte de testes.
func (c *Cart) RemoveItem(item Item) {
	if c.Items == nil {
		c.Items = []Item{}
	}
	for i := range c.Items {
		if c.Items[i].ID == item.ID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			break
		}
	}
	c.Total = c.Total.Sub(item.Price)
}

// User representa um usuário registrado. Password guarda apenas o hash.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Password  string    `json:"-" db:"password"`
	CartID    int64     `json:"cart_id" db:"cart_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UserOrder representa o snapshot imutável de um carrinho submetido
type UserOrder struct {
	ID        int64           `json:"id" db:"id"`
	UserID    int64           `json:"user_id" db:"user_id"`
	Items     []Item          `json:"items"`
	Total     decimal.Decimal `json:"total" db:"total"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// NewOrderFromCart cria um pedido copiando itens e total do carrinho no momento
// da submissão. A cópia garante que mutações posteriores do carrinho não
// alterem pedidos já criados.
func NewOrderFromCart(cart *Cart, userID int64) *UserOrder {
	items := make([]Item, len(cart.Items))
	copy(items, cart.Items)

	return &UserOrder{
		UserID:    userID,
		Items:     items,
		Total:     cart.Total,
		CreatedAt: time.Now(),
	}
}
