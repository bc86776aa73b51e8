// smoketest exercita o fluxo completo da API contra uma instância em execução:
// registro, login, catálogo, carrinho, submissão de pedido e histórico.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	CartID   int64  `json:"cart_id"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type itemResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

type cartResponse struct {
	ID    int64          `json:"id"`
	Items []itemResponse `json:"items"`
	Total string         `json:"total"`
}

type orderResponse struct {
	ID    int64          `json:"id"`
	Items []itemResponse `json:"items"`
	Total string         `json:"total"`
}

func main() {
	baseURL := getEnv("API_URL", "http://localhost:8080")
	client := resty.New().SetBaseURL(baseURL).SetTimeout(10 * time.Second)

	username := fmt.Sprintf("smoke-%d", time.Now().UnixNano())
	password := "abcd1234"

	// 1. Register
	var user userResponse
	resp, err := client.R().
		SetBody(map[string]string{
			"username":        username,
			"password":        password,
			"confirmPassword": password,
		}).
		SetResult(&user).
		Post("/api/user/create")
	check(err, resp, "create user")
	log.Printf("✅ User created | ID=%d | CartID=%d", user.ID, user.CartID)

	// 2. Login
	var login loginResponse
	resp, err = client.R().
		SetBody(map[string]string{"username": username, "password": password}).
		SetResult(&login).
		Post("/api/login")
	check(err, resp, "login")
	client.SetAuthToken(login.Token)
	log.Printf("✅ Logged in")

	// 3. Catalog
	var items []itemResponse
	resp, err = client.R().SetResult(&items).Get("/api/item")
	check(err, resp, "list items")
	if len(items) == 0 {
		log.Fatal("❌ Catalog is empty, expected seeded items")
	}
	log.Printf("✅ Catalog has %d items", len(items))

	// 4. Cart: add twice, remove once
	var cart cartResponse
	resp, err = client.R().
		SetBody(map[string]interface{}{"username": username, "itemId": items[0].ID, "quantity": 2}).
		SetResult(&cart).
		Post("/api/cart/addToCart")
	check(err, resp, "add to cart")
	log.Printf("✅ Cart after add | Items=%d | Total=%s", len(cart.Items), cart.Total)

	resp, err = client.R().
		SetBody(map[string]interface{}{"username": username, "itemId": items[0].ID, "quantity": 1}).
		SetResult(&cart).
		Post("/api/cart/removeFromCart")
	check(err, resp, "remove from cart")
	log.Printf("✅ Cart after remove | Items=%d | Total=%s", len(cart.Items), cart.Total)

	// 5. Submit order
	var order orderResponse
	resp, err = client.R().SetResult(&order).Post("/api/order/submit/" + username)
	check(err, resp, "submit order")
	log.Printf("✅ Order submitted | ID=%d | Items=%d | Total=%s", order.ID, len(order.Items), order.Total)

	// 6. History
	var history []orderResponse
	resp, err = client.R().SetResult(&history).Get("/api/order/history/" + username)
	check(err, resp, "order history")
	if len(history) != 1 {
		log.Fatalf("❌ Expected 1 order in history, got %d", len(history))
	}
	log.Printf("✅ History has %d order(s)", len(history))

	log.Println("🎉 Smoke test passed")
}

func check(err error, resp *resty.Response, step string) {
	if err != nil {
		log.Fatalf("❌ %s failed: %v", step, err)
	}
	if resp.IsError() {
		log.Fatalf("❌ %s failed: status %d, body %s", step, resp.StatusCode(), resp.String())
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
