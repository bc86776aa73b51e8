package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"
)

const minPasswordLength = 7

// Mesmos padrões do sistema de referência: um dígito e uma letra, verificados
// independentemente sobre a senha inteira
var (
	passwordDigitPattern  = regexp.MustCompile(`[0-9]`)
	passwordLetterPattern = regexp.MustCompile(`[a-zA-Z]`)
)

// PasswordEncoder abstrai a função de hash de senhas (one-way)
type PasswordEncoder interface {
	Encode(raw string) (string, error)
	Matches(raw, encoded string) bool
}

// UserUseCase contém a lógica de registro e consulta de usuários
type UserUseCase struct {
	users   UserRepository
	carts   CartRepository
	encoder PasswordEncoder
}

// NewUserUseCase cria uma nova instância de UserUseCase
func NewUserUseCase(users UserRepository, carts CartRepository, encoder PasswordEncoder) *UserUseCase {
	return &UserUseCase{
		users:   users,
		carts:   carts,
		encoder: encoder,
	}
}

// CreateUser valida a requisição de registro e, só depois de todas as
// validações passarem, persiste o carrinho vazio e o usuário
func (uc *UserUseCase) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	log.Printf("➡️ [CREATE USER] Username=%s", req.Username)

	if req.Password == "" || req.ConfirmPassword == "" {
		log.Printf("⚠️ Create user rejected for %s: password or confirmation missing", req.Username)
		return nil, ErrPasswordRequired
	}

	if req.Password != req.ConfirmPassword {
		log.Printf("⚠️ Create user rejected for %s: password and confirmation do not match", req.Username)
		return nil, ErrPasswordMismatch
	}

	if len(req.Password) < minPasswordLength {
		log.Printf("⚠️ Create user rejected for %s: password shorter than %d characters", req.Username, minPasswordLength)
		return nil, ErrPasswordTooShort
	}

	if !passwordDigitPattern.MatchString(req.Password) || !passwordLetterPattern.MatchString(req.Password) {
		log.Printf("⚠️ Create user rejected for %s: password complexity not met", req.Username)
		return nil, ErrPasswordComplexity
	}

	_, err := uc.users.FindByUsername(ctx, req.Username)
	if err == nil {
		log.Printf("⚠️ Create user rejected for %s: username already exists", req.Username)
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashed, err := uc.encoder.Encode(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// O carrinho e o usuário são persistidos em dois passos independentes;
	// uma falha entre eles deixa um carrinho órfão. A atomicidade, se
	// necessária, é responsabilidade da fronteira de persistência.
	cart := &Cart{}
	if err := uc.carts.Create(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	user := &User{
		Username:  req.Username,
		Password:  hashed,
		CartID:    cart.ID,
		CreatedAt: time.Now(),
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("✅ User created | Username=%s | ID=%d | CartID=%d", user.Username, user.ID, user.CartID)
	return user, nil
}

// FindByID busca um usuário pelo ID numérico
func (uc *UserUseCase) FindByID(ctx context.Context, id int64) (*User, error) {
	return uc.users.FindByID(ctx, id)
}

// FindByUsername busca um usuário pelo username
func (uc *UserUseCase) FindByUsername(ctx context.Context, username string) (*User, error) {
	return uc.users.FindByUsername(ctx, username)
}

// CartUseCase contém a lógica de mutação do carrinho
type CartUseCase struct {
	users UserRepository
	carts CartRepository
	items ItemRepository
}

// NewCartUseCase cria uma nova instância de CartUseCase
func NewCartUseCase(users UserRepository, carts CartRepository, items ItemRepository) *CartUseCase {
	return &CartUseCase{
		users: users,
		carts: carts,
		items: items,
	}
}

// AddToCart adiciona `quantity` ocorrências do item ao carrinho do usuário.
// Ciclo read-modify-write sem isolamento próprio: escritas concorrentes no
// mesmo carrinho podem se perder se o store não serializar por entidade.
func (uc *CartUseCase) AddToCart(ctx context.Context, req ModifyCartRequest) (*Cart, error) {
	user, err := uc.users.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}

	item, err := uc.items.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	cart, err := uc.carts.FindByID(ctx, user.CartID)
	if err != nil {
		return nil, err
	}

	for i := 0; i < req.Quantity; i++ {
		cart.AddItem(*item)
	}

	if err := uc.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}

	log.Printf("🛒 Added %dx item %d to cart %d | Total=%s", req.Quantity, item.ID, cart.ID, cart.Total)
	return cart, nil
}

// RemoveFromCart remove `quantity` ocorrências do item do carrinho do usuário
func (uc *CartUseCase) RemoveFromCart(ctx context.Context, req ModifyCartRequest) (*Cart, error) {
	user, err := uc.users.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}

	item, err := uc.items.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	cart, err := uc.carts.FindByID(ctx, user.CartID)
	if err != nil {
		return nil, err
	}

	for i := 0; i < req.Quantity; i++ {
		cart.RemoveItem(*item)
	}

	if err := uc.carts.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}

	log.Printf("🛒 Removed %dx item %d from cart %d | Total=%s", req.Quantity, item.ID, cart.ID, cart.Total)
	return cart, nil
}

// OrderUseCase converte carrinhos em pedidos e serve o histórico
type OrderUseCase struct {
	users  UserRepository
	carts  CartRepository
	orders OrderRepository
}

// NewOrderUseCase cria uma nova instância de OrderUseCase
func NewOrderUseCase(users UserRepository, carts CartRepository, orders OrderRepository) *OrderUseCase {
	return &OrderUseCase{
		users:  users,
		carts:  carts,
		orders: orders,
	}
}

// Submit cria um pedido a partir do snapshot do carrinho do usuário.
// O carrinho não é esvaziado: submissões repetidas de um carrinho inalterado
// produzem pedidos independentes com o mesmo conteúdo.
func (uc *OrderUseCase) Submit(ctx context.Context, username string) (*UserOrder, error) {
	log.Printf("➡️ [SUBMIT ORDER] Username=%s", username)

	user, err := uc.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	cart, err := uc.carts.FindByID(ctx, user.CartID)
	if err != nil {
		if errors.Is(err, ErrCartNotFound) {
			return nil, ErrCartMissing
		}
		return nil, err
	}

	if len(cart.Items) == 0 {
		log.Printf("⚠️ Order submission rejected for %s: cart is empty", username)
		return nil, ErrCartEmpty
	}

	order := NewOrderFromCart(cart, user.ID)
	if err := uc.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	log.Printf("✅ Order created | Username=%s | OrderID=%d | Items=%d | Total=%s",
		username, order.ID, len(order.Items), order.Total)
	return order, nil
}

// History retorna todos os pedidos do usuário (lista vazia é sucesso)
func (uc *OrderUseCase) History(ctx context.Context, username string) ([]UserOrder, error) {
	user, err := uc.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	orders, err := uc.orders.FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if orders == nil {
		orders = []UserOrder{}
	}

	return orders, nil
}

// ItemUseCase serve as consultas de catálogo
type ItemUseCase struct {
	items ItemRepository
}

// NewItemUseCase cria uma nova instância de ItemUseCase
func NewItemUseCase(items ItemRepository) *ItemUseCase {
	return &ItemUseCase{
		items: items,
	}
}

// ListItems lista o catálogo completo (lista vazia é sucesso)
func (uc *ItemUseCase) ListItems(ctx context.Context) ([]Item, error) {
	items, err := uc.items.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

// FindItemByID busca um item pelo ID
func (uc *ItemUseCase) FindItemByID(ctx context.Context, id int64) (*Item, error) {
	return uc.items.FindByID(ctx, id)
}

// FindItemsByName busca itens pelo nome exato; resultado vazio é not-found
func (uc *ItemUseCase) FindItemsByName(ctx context.Context, name string) ([]Item, error) {
	items, err := uc.items.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrItemNotFound
	}
	return items, nil
}
