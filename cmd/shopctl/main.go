// Command shopctl is a terminal storefront client. It browses the catalog,
// keeps a cart that survives restarts through the snapshot file, and walks
// the place-order / confirm-payment flow against the storefront server.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/config"
)

func main() {
	config.Load()

	apiURL := flag.String("api", config.AppEnv.APIBaseURL, "storefront server base URL")
	email := flag.String("email", "", "account email")
	password := flag.String("password", "", "account password")
	snapshotPath := flag.String("cart", config.AppEnv.CartSnapshotPath, "cart snapshot file")
	flag.Parse()

	session := checkout.StaticSession{}
	if *email != "" && *password != "" {
		token, userID, err := login(*apiURL, *email, *password)
		if err != nil {
			fmt.Fprintln(os.Stderr, "login failed:", err)
			os.Exit(1)
		}
		session = checkout.StaticSession{Token: token, UserID: userID}
		fmt.Println("signed in as", *email)
	} else {
		fmt.Println("browsing as guest; checkout requires -email and -password")
	}

	store := cart.NewStore()
	unsubscribe := cart.Mirror(store, cart.NewFileStore(*snapshotPath))
	defer unsubscribe()

	coordinator := checkout.NewCoordinator(store, checkout.NewClient(*apiURL), session)

	fmt.Println("commands: products, cart, add <id> [qty], qty <id> <n>, remove <id>, clear, checkout, orders, quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "products":
			showProducts(*apiURL)
		case "cart":
			showCart(store)
		case "add":
			if len(fields) < 2 {
				fmt.Println("usage: add <product-id> [qty]")
				continue
			}
			qty := 1
			if len(fields) > 2 {
				qty, _ = strconv.Atoi(fields[2])
			}
			addProduct(*apiURL, store, fields[1], qty)
		case "qty":
			if len(fields) < 3 {
				fmt.Println("usage: qty <product-id> <n>")
				continue
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				fmt.Println("quantity must be a number")
				continue
			}
			store.SetQuantity(fields[1], n)
			showCart(store)
		case "remove":
			if len(fields) < 2 {
				fmt.Println("usage: remove <product-id>")
				continue
			}
			store.RemoveItem(fields[1])
			showCart(store)
		case "clear":
			store.Clear()
			fmt.Println("cart cleared")
		case "checkout":
			runCheckout(coordinator, scanner)
		case "orders":
			showOrders(*apiURL, session)
		case "quit", "exit":
			return
		default:
			fmt.Println("unknown command:", fields[0])
		}
	}
}

func runCheckout(coordinator *checkout.Coordinator, scanner *bufio.Scanner) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	orderID, err := coordinator.PlaceOrder(ctx)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrEmptyCart):
			fmt.Println("your cart is empty")
		case errors.Is(err, checkout.ErrUnauthenticated):
			fmt.Println("you must be signed in to place an order")
		case errors.Is(err, checkout.ErrBusy):
			fmt.Println("a checkout is already in progress")
		default:
			fmt.Println("order failed, cart left untouched:", err)
		}
		return
	}

	fmt.Println("order created:", orderID)

	for {
		fmt.Print("confirm payment now? [y/N] ")
		if !scanner.Scan() {
			coordinator.Abandon()
			return
		}
		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if answer != "y" && answer != "yes" {
			coordinator.Abandon()
			fmt.Println("payment skipped; order stays pending")
			return
		}

		payCtx, payCancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := coordinator.ConfirmPayment(payCtx, orderID)
		payCancel()
		if err == nil {
			fmt.Println("payment confirmed, order is paid")
			return
		}
		fmt.Println("payment failed, you can retry:", err)
	}
}

func showCart(store *cart.Store) {
	items := store.Items()
	if len(items) == 0 {
		fmt.Println("cart is empty")
		return
	}
	for _, item := range items {
		fmt.Printf("  %-24s x%-3d $%s  (%s)\n",
			item.Name, item.Quantity, item.Subtotal().StringFixed(2), item.ProductID)
	}
	fmt.Printf("  %d item(s), total $%s\n", store.TotalItemCount(), store.TotalPrice().StringFixed(2))
}

type apiProduct struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
}

func showProducts(apiURL string) {
	products, err := fetchProducts(apiURL)
	if err != nil {
		fmt.Println("could not load products:", err)
		return
	}
	if len(products) == 0 {
		fmt.Println("no products available")
		return
	}
	for _, p := range products {
		fmt.Printf("  %-24s $%.2f  (%s)\n", p.Name, p.Price, p.ID)
	}
}

func addProduct(apiURL string, store *cart.Store, productID string, qty int) {
	products, err := fetchProducts(apiURL)
	if err != nil {
		fmt.Println("could not load products:", err)
		return
	}
	for _, p := range products {
		if p.ID == productID {
			store.AddItem(&cart.Product{
				ID:    p.ID,
				Name:  p.Name,
				Price: decimal.NewFromFloat(p.Price),
				Image: p.Image,
			}, qty)
			showCart(store)
			return
		}
	}
	fmt.Println("no such product:", productID)
}

func fetchProducts(apiURL string) ([]apiProduct, error) {
	resp, err := http.Get(apiURL + "/products")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d", resp.StatusCode)
	}

	var envelope struct {
		Data []apiProduct `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

func showOrders(apiURL string, session checkout.StaticSession) {
	if session.Token == "" {
		fmt.Println("sign in to see your orders")
		return
	}

	req, err := http.NewRequest(http.MethodGet, apiURL+"/orders", nil)
	if err != nil {
		fmt.Println("could not load orders:", err)
		return
	}
	req.Header.Set("Authorization", "Bearer "+session.Token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("could not load orders:", err)
		return
	}
	defer resp.Body.Close()

	var envelope struct {
		Data []checkout.Order `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		fmt.Println("could not load orders:", err)
		return
	}
	if len(envelope.Data) == 0 {
		fmt.Println("no orders yet")
		return
	}
	for _, order := range envelope.Data {
		fmt.Printf("  %s  $%.2f  %s  %s\n",
			order.ID, order.TotalAmount, order.Status, order.CreatedAt.Format(time.RFC3339))
	}
}

func login(apiURL, email, password string) (token, userID string, err error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", "", err
	}

	resp, err := http.Post(apiURL+"/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	var result struct {
		AccessToken string `json:"accessToken"`
		Error       string `json:"error"`
		User        struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", "", err
	}
	if resp.StatusCode != http.StatusOK {
		if result.Error != "" {
			return "", "", errors.New(result.Error)
		}
		return "", "", fmt.Errorf("server returned %d", resp.StatusCode)
	}
	return result.AccessToken, result.User.ID, nil
}
