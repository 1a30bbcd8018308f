// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/your-org/order-service/internal/config"
	"github.com/your-org/order-service/internal/domain/cart"
	"github.com/your-org/order-service/internal/domain/invoice"
	"github.com/your-org/order-service/internal/domain/order"
	"github.com/your-org/order-service/internal/domain/product"
	"github.com/your-org/order-service/internal/domain/user"
	"github.com/your-org/order-service/internal/pkg/auth"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db        *gorm.DB
	passwords *auth.PasswordManager
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, cfg *config.Config) *Migration {
	return &Migration{
		db:        db,
		passwords: auth.NewPasswordManager(cfg),
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Define all models that need migration in dependency order
	models := []interface{}{
		// User domain - Base tables
		&user.User{},

		// Product domain
		&product.Product{},
		&product.ProductSeller{},

		// Cart domain
		&cart.CartItem{},

		// Order domain - Dependent tables
		&order.Order{},
		&order.OrderItem{},

		// Invoice domain
		&invoice.Invoice{},
		&invoice.Sequence{},
	}

	// Run auto-migration for each model
	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_code ON products(code)",

		// Cart indexes
		"CREATE INDEX IF NOT EXISTS idx_cart_items_created_at ON cart_items(created_at DESC)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_total_amount ON orders(total_amount)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",

		// Order items indexes
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)",

		// Invoice indexes
		"CREATE INDEX IF NOT EXISTS idx_invoices_payment_status ON invoices(payment_status)",
		"CREATE INDEX IF NOT EXISTS idx_invoices_issued_at ON invoices(issued_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_invoices_created_at ON invoices(created_at DESC)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	// The invoice sequence row must exist before the first invoice
	if err := m.seedInvoiceSequence(); err != nil {
		return fmt.Errorf("failed to seed invoice sequence: %w", err)
	}

	// Create default admin user
	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	// Seed test products for payment testing
	if err := m.seedTestProducts(); err != nil {
		return fmt.Errorf("failed to seed test products: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

// seedInvoiceSequence creates the single sequence row invoice
// numbering bumps. Value 0 means the first invoice is IFSB-1.
func (m *Migration) seedInvoiceSequence() error {
	var existing invoice.Sequence
	result := m.db.First(&existing, 1)
	if result.Error != nil {
		seq := invoice.Sequence{ID: 1, Value: 0}
		if err := m.db.Create(&seq).Error; err != nil {
			return err
		}
		log.Println("✅ Created invoice sequence")
	} else {
		log.Printf("⏭️ Invoice sequence already at %d", existing.Value)
	}
	return nil
}

func (m *Migration) seedAdminUser() error {
	log.Println("👤 Seeding admin user...")

	var existing user.User
	result := m.db.Where("email = ?", "admin@example.com").First(&existing)
	if result.Error != nil {
		hashedPassword, err := m.passwords.HashPassword("admin123")
		if err != nil {
			return err
		}

		adminUser := user.User{
			Email:     "admin@example.com",
			Password:  hashedPassword,
			FirstName: "Admin",
			LastName:  "User",
			IsActive:  true,
			IsAdmin:   true,
			Billing: user.BillingAddress{
				Address: "1 Admin Way",
				ZipCode: "00000",
				City:    "Nowhere",
				Country: "NL",
			},
		}

		if err := m.db.Create(&adminUser).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		log.Println("✅ Created admin user: admin@example.com (password: admin123)")
	} else {
		log.Printf("⏭️ Admin user already exists with ID: %d", existing.ID)
	}

	return nil
}

// seedTestProducts creates a couple of purchasable products so a fresh
// development database can run a checkout end to end. Prices are in
// cents.
func (m *Migration) seedTestProducts() error {
	log.Println("📦 Seeding test products...")

	products := []product.Product{
		{
			Code:     "TEST-KEYBOARD",
			Name:     "Mechanical Keyboard",
			Brand:    "Keychron",
			Price:    8900,
			Stock:    25,
			ImageURL: "https://example.com/images/keyboard.jpg",
		},
		{
			Code:     "TEST-MOUSE",
			Name:     "Wireless Mouse",
			Brand:    "Logitech",
			Price:    4500,
			Stock:    40,
			ImageURL: "https://example.com/images/mouse.jpg",
		},
		{
			Code:     "TEST-MONITOR",
			Name:     "27\" Monitor",
			Brand:    "Dell",
			Price:    32900,
			Stock:    10,
			ImageURL: "https://example.com/images/monitor.jpg",
		},
	}

	for _, p := range products {
		var existing product.Product
		result := m.db.Where("code = ?", p.Code).First(&existing)
		if result.Error != nil {
			if err := m.db.Create(&p).Error; err != nil {
				return err
			}
			log.Printf("✅ Created product: %s", p.Name)
		} else {
			log.Printf("⏭️ Product already exists: %s", p.Name)
		}
	}

	return nil
}
