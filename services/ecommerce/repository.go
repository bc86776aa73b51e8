package main

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// UserRepository define a interface para operações de banco de dados de usuários
type UserRepository interface {
	// FindByID busca um usuário pelo ID
	FindByID(ctx context.Context, id int64) (*User, error)

	// FindByUsername busca um usuário pelo username
	FindByUsername(ctx context.Context, username string) (*User, error)

	// Create persiste um novo usuário e preenche o ID gerado
	Create(ctx context.Context, user *User) error
}

// CartRepository define a interface para operações de banco de dados de carrinhos
type CartRepository interface {
	FindByID(ctx context.Context, id int64) (*Cart, error)
	Create(ctx context.Context, cart *Cart) error
	Save(ctx context.Context, cart *Cart) error
}

// OrderRepository define a interface para operações de banco de dados de pedidos
type OrderRepository interface {
	Create(ctx context.Context, order *UserOrder) error
	FindByUserID(ctx context.Context, userID int64) ([]UserOrder, error)
}

// ItemRepository define a interface de leitura do catálogo
type ItemRepository interface {
	FindAll(ctx context.Context) ([]Item, error)
	FindByID(ctx context.Context, id int64) (*Item, error)
	FindByName(ctx context.Context, name string) ([]Item, error)
}

// RunMigrations aplica as migrações embutidas antes do serviço aceitar tráfego
func RunMigrations(dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer db.Close()

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

// PostgresUserRepository implementa UserRepository usando PostgreSQL
type PostgresUserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository cria uma nova instância de PostgresUserRepository
func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &PostgresUserRepository{
		db: db,
	}
}

// FindByID busca um usuário pelo ID
func (r *PostgresUserRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	var user User
	err := r.db.QueryRow(ctx, `
		SELECT id, username, password, cart_id, created_at
		FROM users WHERE id = $1
	`, id).Scan(&user.ID, &user.Username, &user.Password, &user.CartID, &user.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername busca um usuário pelo username
func (r *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := r.db.QueryRow(ctx, `
		SELECT id, username, password, cart_id, created_at
		FROM users WHERE username = $1
	`, username).Scan(&user.ID, &user.Username, &user.Password, &user.CartID, &user.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create persiste um novo usuário
func (r *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO users (username, password, cart_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, user.Username, user.Password, user.CartID, user.CreatedAt).Scan(&user.ID)
}

// PostgresCartRepository implementa CartRepository usando PostgreSQL
type PostgresCartRepository struct {
	db *pgxpool.Pool
}

// NewCartRepository cria uma nova instância de PostgresCartRepository
func NewCartRepository(db *pgxpool.Pool) CartRepository {
	return &PostgresCartRepository{
		db: db,
	}
}

// FindByID busca um carrinho com seus itens na ordem de inserção
func (r *PostgresCartRepository) FindByID(ctx context.Context, id int64) (*Cart, error) {
	var cart Cart
	err := r.db.QueryRow(ctx, `
		SELECT id, total FROM carts WHERE id = $1
	`, id).Scan(&cart.ID, &cart.Total)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT i.id, i.name, i.description, i.price
		FROM cart_items ci
		JOIN items i ON i.id = ci.item_id
		WHERE ci.cart_id = $1
		ORDER BY ci.position
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Price); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &cart, nil
}

// Create persiste um carrinho vazio e preenche o ID gerado
func (r *PostgresCartRepository) Create(ctx context.Context, cart *Cart) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO carts (total) VALUES ($1) RETURNING id
	`, cart.Total).Scan(&cart.ID)
}

// Save grava total e itens do carrinho em uma única transação
func (r *PostgresCartRepository) Save(ctx context.Context, cart *Cart) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE carts SET total = $1, updated_at = NOW() WHERE id = $2
	`, cart.Total, cart.ID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cart.ID)
	if err != nil {
		return err
	}

	for position, item := range cart.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO cart_items (cart_id, position, item_id)
			VALUES ($1, $2, $3)
		`, cart.ID, position, item.ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// PostgresOrderRepository implementa OrderRepository usando PostgreSQL
type PostgresOrderRepository struct {
	db *pgxpool.Pool
}

// NewOrderRepository cria uma nova instância de PostgresOrderRepository
func NewOrderRepository(db *pgxpool.Pool) OrderRepository {
	return &PostgresOrderRepository{
		db: db,
	}
}

// Create persiste o pedido e o snapshot desnormalizado dos itens
func (r *PostgresOrderRepository) Create(ctx context.Context, order *UserOrder) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (user_id, total, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`, order.UserID, order.Total, order.CreatedAt).Scan(&order.ID)
	if err != nil {
		return err
	}

	for position, item := range order.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (order_id, position, item_id, name, description, price)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, order.ID, position, item.ID, item.Name, item.Description, item.Price)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// FindByUserID busca todos os pedidos de um usuário
func (r *PostgresOrderRepository) FindByUserID(ctx context.Context, userID int64) ([]UserOrder, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, total, created_at
		FROM orders WHERE user_id = $1
		ORDER BY id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []UserOrder
	for rows.Next() {
		var order UserOrder
		if err := rows.Scan(&order.ID, &order.UserID, &order.Total, &order.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := r.findOrderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

func (r *PostgresOrderRepository) findOrderItems(ctx context.Context, orderID int64) ([]Item, error) {
	rows, err := r.db.Query(ctx, `
		SELECT item_id, name, description, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Price); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// PostgresItemRepository implementa ItemRepository usando PostgreSQL
type PostgresItemRepository struct {
	db *pgxpool.Pool
}

// NewItemRepository cria uma nova instância de PostgresItemRepository
func NewItemRepository(db *pgxpool.Pool) ItemRepository {
	return &PostgresItemRepository{
		db: db,
	}
}

// FindAll lista o catálogo completo
func (r *PostgresItemRepository) FindAll(ctx context.Context) ([]Item, error) {
	return r.queryItems(ctx, `SELECT id, name, description, price FROM items ORDER BY id`)
}

// FindByID busca um item pelo ID
func (r *PostgresItemRepository) FindByID(ctx context.Context, id int64) (*Item, error) {
	var item Item
	err := r.db.QueryRow(ctx, `
		SELECT id, name, description, price FROM items WHERE id = $1
	`, id).Scan(&item.ID, &item.Name, &item.Description, &item.Price)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByName busca itens pelo nome exato
func (r *PostgresItemRepository) FindByName(ctx context.Context, name string) ([]Item, error) {
	return r.queryItems(ctx, `SELECT id, name, description, price FROM items WHERE name = $1 ORDER BY id`, name)
}

func (r *PostgresItemRepository) queryItems(ctx context.Context, query string, args ...any) ([]Item, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Price); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
