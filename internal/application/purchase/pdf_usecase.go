package purchase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

// Document reúne todos los datos ya resueltos que necesita el generador para
// la representación imprimible de una compra (nombres en lugar de IDs).
type Document struct {
	Purchase      *entity.Purchase
	Company       *entity.Company
	SupplierName  string
	WarehouseName string
	Lines         []DocumentLine
}

// DocumentLine es una línea de compra enriquecida con el nombre del producto.
type DocumentLine struct {
	ProductName string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	Subtotal    decimal.Decimal
}

// PDFUseCase genera el comprobante PDF de una compra registrada.
type PDFUseCase struct {
	purchaseRepo  repository.PurchaseRepository
	companyRepo   repository.CompanyRepository
	supplierRepo  repository.SupplierRepository
	warehouseRepo repository.WarehouseRepository
	productRepo   repository.ProductRepository
	generator     PDFGenerator
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(
	purchaseRepo repository.PurchaseRepository,
	companyRepo repository.CompanyRepository,
	supplierRepo repository.SupplierRepository,
	warehouseRepo repository.WarehouseRepository,
	productRepo repository.ProductRepository,
	generator PDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{
		purchaseRepo:  purchaseRepo,
		companyRepo:   companyRepo,
		supplierRepo:  supplierRepo,
		warehouseRepo: warehouseRepo,
		productRepo:   productRepo,
		generator:     generator,
	}
}

// DownloadPurchasePDF carga la compra con sus datos relacionados y genera el
// comprobante.
//
// Retorna:
//   - (pdfBytes, filename, nil) si todo sale bien.
//   - domain.ErrNotFound        si la compra no existe.
//   - domain.ErrForbidden       si la compra no pertenece al negocio del token.
func (uc *PDFUseCase) DownloadPurchasePDF(ctx context.Context, companyID, purchaseID string) (pdfBytes []byte, filename string, err error) {
	p, err := uc.purchaseRepo.GetByID(purchaseID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener compra: %w", err)
	}
	if p == nil {
		return nil, "", domain.ErrNotFound
	}
	if p.CompanyID != companyID {
		return nil, "", domain.ErrForbidden
	}

	company, err := uc.companyRepo.GetByID(companyID)
	if err != nil || company == nil {
		return nil, "", fmt.Errorf("pdf: obtener negocio: %w", err)
	}

	doc := &Document{
		Purchase:      p,
		Company:       company,
		SupplierName:  "Proveedor no registrado",
		WarehouseName: p.WarehouseID,
	}
	if p.SupplierID != nil {
		if supplier, sErr := uc.supplierRepo.GetByID(*p.SupplierID); sErr == nil && supplier != nil {
			doc.SupplierName = supplier.BusinessName
		}
	}
	if wh, wErr := uc.warehouseRepo.GetByID(p.WarehouseID); wErr == nil && wh != nil {
		doc.WarehouseName = wh.Name
	}

	doc.Lines = make([]DocumentLine, 0, len(p.Items))
	for _, it := range p.Items {
		name := "Producto " + it.ProductID // fallback
		if product, pErr := uc.productRepo.GetByID(it.ProductID); pErr == nil && product != nil {
			name = product.Name
		}
		doc.Lines = append(doc.Lines, DocumentLine{
			ProductName: name,
			Quantity:    it.Quantity,
			UnitCost:    it.UnitCost,
			Subtotal:    it.Quantity.Mul(it.UnitCost).Round(2),
		})
	}

	pdfBytes, err = uc.generator.Generate(ctx, doc)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}

	invoice := p.InvoiceNumber
	if invoice == "" {
		invoice = p.ID[:8]
	}
	filename = fmt.Sprintf("compra_%s.pdf", invoice)
	return pdfBytes, filename, nil
}
