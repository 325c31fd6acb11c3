// Command seed loads the sample storefront data the honeypot presents to
// visitors: a handful of believable accounts and products.
package main

import (
	"context"
	"os"

	"golang.org/x/crypto/bcrypt"

	"honeyshop/internal/platform/config"
	"honeyshop/internal/platform/logger"
	"honeyshop/internal/platform/postgres"
	"honeyshop/internal/product"
	"honeyshop/internal/user"
)

type seedUser struct {
	user.User
	password string
}

var sampleUsers = []seedUser{
	{
		User: user.User{
			Username:  "admin",
			Email:     "admin@example.com",
			FirstName: "Admin",
			LastName:  "User",
			Role:      user.RoleAdmin,
			Address: user.Address{
				Street: "123 Admin St", City: "Adminville", State: "CA",
				ZipCode: "90210", Country: "USA",
			},
			Phone: "555-1234",
		},
		password: "admin123",
	},
	{
		User: user.User{
			Username:  "john_doe",
			Email:     "john@example.com",
			FirstName: "John",
			LastName:  "Doe",
			Role:      user.RoleUser,
			Address: user.Address{
				Street: "456 Main St", City: "Anytown", State: "NY",
				ZipCode: "10001", Country: "USA",
			},
			Phone: "555-5678",
		},
		password: "password123",
	},
	{
		User: user.User{
			Username:  "jane_smith",
			Email:     "jane@example.com",
			FirstName: "Jane",
			LastName:  "Smith",
			Role:      user.RoleUser,
			Address: user.Address{
				Street: "789 Oak Ave", City: "Somewhere", State: "TX",
				ZipCode: "75001", Country: "USA",
			},
			Phone: "555-9012",
		},
		password: "securepassword",
	},
}

var sampleProducts = []product.Product{
	{
		Name:        "Smartphone X Pro",
		Description: "Latest smartphone with advanced features and high-resolution camera",
		Price:       899.99,
		Category:    "Electronics",
		Brand:       "TechBrand",
		Stock:       25,
		Images:      []string{"https://via.placeholder.com/300x300?text=Smartphone"},
		Specifications: map[string]string{
			"Screen Size": "6.7 inches",
			"Storage":     "128GB",
			"Camera":      "48MP",
			"Battery":     "5000mAh",
		},
		RatingAverage: 4.5,
		RatingCount:   128,
		IsFeatured:    true,
	},
	{
		Name:        "Wireless Headphones",
		Description: "Premium wireless headphones with noise cancellation",
		Price:       199.99,
		Category:    "Electronics",
		Brand:       "SoundMax",
		Stock:       50,
		Images:      []string{"https://via.placeholder.com/300x300?text=Headphones"},
		Specifications: map[string]string{
			"Battery Life": "30 hours",
			"Connectivity": "Bluetooth 5.0",
			"Weight":       "250g",
			"Color":        "Black",
		},
		RatingAverage: 4.2,
		RatingCount:   89,
		IsFeatured:    true,
	},
	{
		Name:        "Laptop Ultra Slim",
		Description: "Ultra-slim laptop with powerful performance",
		Price:       1299.99,
		Category:    "Computers",
		Brand:       "TechBrand",
		Stock:       15,
		Images:      []string{"https://via.placeholder.com/300x300?text=Laptop"},
		Specifications: map[string]string{
			"Processor": "Intel i7",
			"RAM":       "16GB",
			"Storage":   "512GB SSD",
			"Screen":    "14 inch",
		},
		RatingAverage: 4.7,
		RatingCount:   67,
		IsFeatured:    true,
	},
	{
		Name:        "Smart Watch Series 5",
		Description: "Advanced smartwatch with health monitoring",
		Price:       299.99,
		Category:    "Wearables",
		Brand:       "WatchCorp",
		Stock:       30,
		Images:      []string{"https://via.placeholder.com/300x300?text=Smartwatch"},
		Specifications: map[string]string{
			"Display":          "AMOLED",
			"Water Resistance": "50m",
			"Battery":          "18 hours",
			"Health Features":  "Heart Rate, GPS",
		},
		RatingAverage: 4.0,
		RatingCount:   156,
	},
	{
		Name:        "Gaming Console",
		Description: "Next-generation gaming console with 4K support",
		Price:       499.99,
		Category:    "Gaming",
		Brand:       "GameTech",
		Stock:       10,
		Images:      []string{"https://via.placeholder.com/300x300?text=Gaming+Console"},
		Specifications: map[string]string{
			"Storage":     "1TB SSD",
			"Resolution":  "4K",
			"Frame Rate":  "120fps",
			"Controllers": "2 included",
		},
		RatingAverage: 4.8,
		RatingCount:   203,
		IsFeatured:    true,
	},
	{
		Name:        "Bluetooth Speaker",
		Description: "Portable Bluetooth speaker with 360-degree sound",
		Price:       89.99,
		Category:    "Audio",
		Brand:       "SoundMax",
		Stock:       40,
		Images:      []string{"https://via.placeholder.com/300x300?text=Speaker"},
		Specifications: map[string]string{
			"Power":        "20W",
			"Battery":      "12 hours",
			"Waterproof":   "IPX7",
			"Connectivity": "Bluetooth 5.2",
		},
		RatingAverage: 4.1,
		RatingCount:   74,
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	if cfg.PostgresURL == "" {
		log.Error("POSTGRES_URL is required for seeding")
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := postgres.Open(ctx, cfg.PostgresURL)
	if err != nil {
		log.Error("postgres connect failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	users := user.NewPostgresStore(db)
	products := product.NewPostgresStore(db)

	for _, su := range sampleUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(su.password), bcrypt.DefaultCost)
		if err != nil {
			log.Error("hash password", "error", err)
			os.Exit(1)
		}
		u := su.User
		u.PasswordHash = string(hash)
		if err := users.Create(ctx, &u); err != nil {
			log.Error("create user failed", "username", u.Username, "error", err)
			os.Exit(1)
		}
		log.Info("created user", "username", u.Username, "user_id", u.ID)
	}

	for i := range sampleProducts {
		p := sampleProducts[i]
		if err := products.Create(ctx, &p); err != nil {
			log.Error("create product failed", "name", p.Name, "error", err)
			os.Exit(1)
		}
		log.Info("created product", "name", p.Name, "product_id", p.ID)
	}

	log.Info("sample data loaded", "users", len(sampleUsers), "products", len(sampleProducts))
}
