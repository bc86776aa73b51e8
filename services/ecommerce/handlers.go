package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CreateUserRequest representa a requisição de registro de usuário
type CreateUserRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ModifyCartRequest representa a requisição para alterar o carrinho
type ModifyCartRequest struct {
	Username string `json:"username" binding:"required"`
	ItemID   int64  `json:"itemId" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

// LoginRequest representa a requisição de login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserUseCaseInterface define a interface do caso de uso de usuários
type UserUseCaseInterface interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
}

// CartUseCaseInterface define a interface do caso de uso do carrinho
type CartUseCaseInterface interface {
	AddToCart(ctx context.Context, req ModifyCartRequest) (*Cart, error)
	RemoveFromCart(ctx context.Context, req ModifyCartRequest) (*Cart, error)
}

// OrderUseCaseInterface define a interface do caso de uso de pedidos
type OrderUseCaseInterface interface {
	Submit(ctx context.Context, username string) (*UserOrder, error)
	History(ctx context.Context, username string) ([]UserOrder, error)
}

// ItemUseCaseInterface define a interface do caso de uso de catálogo
type ItemUseCaseInterface interface {
	ListItems(ctx context.Context) ([]Item, error)
	FindItemByID(ctx context.Context, id int64) (*Item, error)
	FindItemsByName(ctx context.Context, name string) ([]Item, error)
}

// statusFromError traduz o tipo do erro para o status HTTP correspondente.
// Erros não classificados são falhas internas e nunca expõem detalhes.
func statusFromError(err error) int {
	var vErr ValidationError
	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrItemNotFound):
		return http.StatusNotFound
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		log.Printf("❌ Internal error: %v", err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// UserHandler contém os handlers HTTP de usuários
type UserHandler struct {
	useCase      UserUseCaseInterface
	tracer       trace.Tracer
	usersCreated metric.Int64Counter
}

// NewUserHandler cria uma nova instância de UserHandler
func NewUserHandler(useCase UserUseCaseInterface, tracer trace.Tracer) *UserHandler {
	meter := otel.Meter("ecommerce-api")
	usersCreated, _ := meter.Int64Counter("users_created_total",
		metric.WithDescription("Total number of users successfully registered"))

	return &UserHandler{
		useCase:      useCase,
		tracer:       tracer,
		usersCreated: usersCreated,
	}
}

// CreateUser registra um novo usuário com seu carrinho vazio
func (h *UserHandler) CreateUser(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "create_user")
	defer span.End()

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(attribute.String("username", req.Username))

	user, err := h.useCase.CreateUser(ctx, req)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	if h.usersCreated != nil {
		h.usersCreated.Add(ctx, 1)
	}
	c.JSON(http.StatusOK, user)
}

// FindByID busca um usuário pelo ID numérico
func (h *UserHandler) FindByID(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "find_user_by_id")
	defer span.End()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be numeric"})
		return
	}

	span.SetAttributes(attribute.Int64("user_id", id))

	user, err := h.useCase.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// FindByUsername busca um usuário pelo username
func (h *UserHandler) FindByUsername(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "find_user_by_username")
	defer span.End()

	username := c.Param("username")
	span.SetAttributes(attribute.String("username", username))

	user, err := h.useCase.FindByUsername(ctx, username)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// CartHandler contém os handlers HTTP do carrinho
type CartHandler struct {
	useCase CartUseCaseInterface
	tracer  trace.Tracer
}

// NewCartHandler cria uma nova instância de CartHandler
func NewCartHandler(useCase CartUseCaseInterface, tracer trace.Tracer) *CartHandler {
	return &CartHandler{
		useCase: useCase,
		tracer:  tracer,
	}
}

// AddToCart adiciona itens ao carrinho do usuário
func (h *CartHandler) AddToCart(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "add_to_cart")
	defer span.End()

	var req ModifyCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(
		attribute.String("username", req.Username),
		attribute.Int64("item_id", req.ItemID),
		attribute.Int("quantity", req.Quantity),
	)

	cart, err := h.useCase.AddToCart(ctx, req)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// RemoveFromCart remove itens do carrinho do usuário
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "remove_from_cart")
	defer span.End()

	var req ModifyCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	span.SetAttributes(
		attribute.String("username", req.Username),
		attribute.Int64("item_id", req.ItemID),
		attribute.Int("quantity", req.Quantity),
	)

	cart, err := h.useCase.RemoveFromCart(ctx, req)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// OrderHandler contém os handlers HTTP de pedidos
type OrderHandler struct {
	useCase         OrderUseCaseInterface
	tracer          trace.Tracer
	ordersSubmitted metric.Int64Counter
}

// NewOrderHandler cria uma nova instância de OrderHandler
func NewOrderHandler(useCase OrderUseCaseInterface, tracer trace.Tracer) *OrderHandler {
	meter := otel.Meter("ecommerce-api")
	ordersSubmitted, _ := meter.Int64Counter("orders_submitted_total",
		metric.WithDescription("Total number of orders successfully submitted"))

	return &OrderHandler{
		useCase:         useCase,
		tracer:          tracer,
		ordersSubmitted: ordersSubmitted,
	}
}

// Submit converte o carrinho do usuário em um pedido
func (h *OrderHandler) Submit(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "submit_order")
	defer span.End()

	username := c.Param("username")
	span.SetAttributes(attribute.String("username", username))

	order, err := h.useCase.Submit(ctx, username)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	if h.ordersSubmitted != nil {
		h.ordersSubmitted.Add(ctx, 1)
	}
	c.JSON(http.StatusOK, order)
}

// History retorna o histórico de pedidos do usuário
func (h *OrderHandler) History(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "order_history")
	defer span.End()

	username := c.Param("username")
	span.SetAttributes(attribute.String("username", username))

	orders, err := h.useCase.History(ctx, username)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

// ItemHandler contém os handlers HTTP do catálogo
type ItemHandler struct {
	useCase ItemUseCaseInterface
	tracer  trace.Tracer
}

// NewItemHandler cria uma nova instância de ItemHandler
func NewItemHandler(useCase ItemUseCaseInterface, tracer trace.Tracer) *ItemHandler {
	return &ItemHandler{
		useCase: useCase,
		tracer:  tracer,
	}
}

// ListItems lista o catálogo completo
func (h *ItemHandler) ListItems(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "list_items")
	defer span.End()

	items, err := h.useCase.ListItems(ctx)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// FindByID busca um item pelo ID
func (h *ItemHandler) FindByID(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "find_item_by_id")
	defer span.End()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be numeric"})
		return
	}

	span.SetAttributes(attribute.Int64("item_id", id))

	item, err := h.useCase.FindItemByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// FindByName busca itens pelo nome exato
func (h *ItemHandler) FindByName(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "find_items_by_name")
	defer span.End()

	name := c.Param("name")
	span.SetAttributes(attribute.String("item_name", name))

	items, err := h.useCase.FindItemsByName(ctx, name)
	if err != nil {
		span.RecordError(err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// HealthCheck verifica a saúde do serviço
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "ecommerce-api",
	})
}
