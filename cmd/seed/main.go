// seed aplica el esquema y carga un negocio de demostración: empresa con los
// módulos purchasing e inventory activos, un usuario admin, dos almacenes,
// un proveedor y un catálogo mínimo de productos.
//
// Uso: go run ./cmd/seed
// Lee la conexión de DATABASE_URL o de las variables DB_* (igual que la API).
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Compras-api/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Esquema
	schemaPath := filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations", "001_schema.sql")
	schema, err := os.ReadFile(schemaPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "leer esquema: %v\n", err)
		os.Exit(1)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		fmt.Fprintf(os.Stderr, "aplicar esquema: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("esquema aplicado")

	now := time.Now()
	companyID := uuid.NewString()

	companyRepo := postgres.NewCompanyRepository(pool)
	if err := companyRepo.Create(&entity.Company{
		ID:        companyID,
		Name:      "Bodega Don Pepe EIRL",
		RUC:       "20601234567",
		Address:   "Av. Los Olivos 123, Lima",
		Email:     "contacto@donpepe.pe",
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "crear negocio: %v\n", err)
		os.Exit(1)
	}

	for _, module := range []string{entity.ModulePurchasing, entity.ModuleInventory} {
		_, err := pool.Exec(ctx, `
			INSERT INTO company_modules (id, company_id, module_name, is_active, activated_at, created_at, updated_at)
			VALUES ($1, $2, $3, true, $4, $4, $4)
			ON CONFLICT (company_id, module_name) DO NOTHING`,
			uuid.NewString(), companyID, module, now,
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "activar módulo %s: %v\n", module, err)
			os.Exit(1)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hashear password: %v\n", err)
		os.Exit(1)
	}
	userRepo := postgres.NewUserRepository(pool)
	if err := userRepo.Create(&entity.User{
		ID:           uuid.NewString(),
		CompanyID:    companyID,
		Email:        "admin@donpepe.pe",
		PasswordHash: string(hash),
		Name:         "Administrador",
		Role:         entity.RoleAdmin,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "crear usuario admin: %v\n", err)
		os.Exit(1)
	}

	warehouseRepo := postgres.NewWarehouseRepository(pool)
	for _, name := range []string{"Almacén Principal", "Almacén Anexo"} {
		if err := warehouseRepo.Create(&entity.Warehouse{
			ID:        uuid.NewString(),
			CompanyID: companyID,
			Name:      name,
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "crear almacén %s: %v\n", name, err)
			os.Exit(1)
		}
	}

	supplierRepo := postgres.NewSupplierRepository(pool)
	if err := supplierRepo.Create(&entity.Supplier{
		ID:             uuid.NewString(),
		CompanyID:      companyID,
		BusinessName:   "Distribuidora San Martín SAC",
		DocumentType:   "RUC",
		DocumentNumber: "20509876543",
		CreatedAt:      now,
		UpdatedAt:      now,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "crear proveedor: %v\n", err)
		os.Exit(1)
	}

	productRepo := postgres.NewProductRepository(pool)
	products := []struct {
		sku, name string
		price     string
	}{
		{"ARZ-5KG", "Arroz Costeño 5kg", "28.50"},
		{"ACT-1L", "Aceite Primor 1L", "12.90"},
		{"LCH-400", "Leche Gloria 400g", "4.20"},
	}
	for _, p := range products {
		price, _ := decimal.NewFromString(p.price)
		if err := productRepo.Create(&entity.Product{
			ID:          uuid.NewString(),
			CompanyID:   companyID,
			SKU:         p.sku,
			Name:        p.name,
			Price:       price,
			Cost:        decimal.Zero,
			TrackStock:  true,
			UnitMeasure: "NIU",
			Attributes:  []byte(`{}`),
			CreatedAt:   now,
			UpdatedAt:   now,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "crear producto %s: %v\n", p.sku, err)
			os.Exit(1)
		}
	}

	fmt.Printf("negocio demo creado: %s (admin@donpepe.pe / admin123)\n", companyID)
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
