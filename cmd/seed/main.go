package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"

	"github.com/iamtien-cmd/shopping-cart-platform/internal/config"
	"github.com/iamtien-cmd/shopping-cart-platform/internal/models"
	repository "github.com/iamtien-cmd/shopping-cart-platform/internal/repositories"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Seeds the demo catalog and the demo user. Products are inserted every run;
// the demo user is created only if missing.
func main() {

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.MustLoad()

	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", "error", err.Error())
		os.Exit(1)
	}
	defer repos.Close()

	ctx := context.Background()

	for _, p := range demoProducts() {
		if err := repos.Product.CreateProduct(ctx, p); err != nil {
			slog.Error("❌ Error seeding product", slog.String("name", p.Name), slog.String("error", err.Error()))
			os.Exit(1)
		}

		slog.Info("📦 Product created", slog.String("name", p.Name), slog.Float64("price", p.Price))
	}

	if err := seedDemoUser(ctx, repos.User); err != nil {
		slog.Error("❌ Error seeding demo user", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("🎉 Database seeded successfully", slog.String("demo_user", demoEmail))
}

const demoEmail = "demo@example.com"

func seedDemoUser(ctx context.Context, users repository.UserRepository) error {

	_, err := users.GetUserByEmail(ctx, demoEmail)
	if err == nil {
		slog.Info("👤 Demo user already exists")
		return nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("1234567890"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.User{
		ID:       uuid.New(),
		Name:     "Demo User",
		Email:    demoEmail,
		Password: string(hashed),
	}

	if err := users.CreateUser(ctx, user); err != nil {
		return err
	}

	slog.Info("👤 Created demo user")

	return nil
}

func demoProducts() []*models.Product {

	specs := []struct {
		name        string
		description string
		price       float64
		stock       int
		image       string
	}{
		{"iPhone 15 Pro", "Latest iPhone with A17 Pro chip and titanium design", 999.99, 50, "https://example.com/iphone15.jpg"},
		{"MacBook Air M2", "Powerful laptop with M2 chip and all-day battery life", 1199.99, 30, "https://example.com/macbook.jpg"},
		{"AirPods Pro (2nd Gen)", "Active noise cancellation and spatial audio", 249.99, 100, "https://example.com/airpods.jpg"},
		{"iPad Pro 12.9\"", "Most advanced iPad with M2 chip and Liquid Retina XDR display", 1099.99, 25, "https://example.com/ipad.jpg"},
		{"Apple Watch Series 9", "Advanced health monitoring and fitness tracking", 399.99, 75, "https://example.com/watch.jpg"},
		{"Samsung Galaxy S24 Ultra", "Premium Android phone with S Pen and AI features", 1199.99, 40, "https://example.com/galaxy.jpg"},
		{"Dell XPS 13", "Compact laptop with Intel Core i7 and stunning display", 999.99, 35, "https://example.com/dell.jpg"},
		{"Sony WH-1000XM5", "Industry-leading noise canceling headphones", 399.99, 60, "https://example.com/sony.jpg"},
		{"Nintendo Switch OLED", "Gaming console with vivid OLED screen", 349.99, 80, "https://example.com/switch.jpg"},
		{"Logitech MX Master 3S", "Advanced wireless mouse for productivity", 99.99, 120, "https://example.com/mouse.jpg"},
	}

	products := make([]*models.Product, 0, len(specs))

	for _, s := range specs {
		products = append(products, &models.Product{
			ID:          uuid.New(),
			Name:        s.name,
			Description: s.description,
			Price:       s.price,
			Image:       s.image,
			Category:    "Electronics",
			Stock:       s.stock,
			IsActive:    true,
		})
	}

	return products
}
