package purchase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

// RegisterPayment registra un pago parcial o total contra una compra al
// crédito. El monto no puede exceder el saldo pendiente; al completarse el
// total la compra pasa a paid.
func (uc *PurchaseUseCase) RegisterPayment(ctx context.Context, companyID, userID, purchaseID string, in dto.RegisterPaymentRequest) (*dto.PurchaseResponse, error) {
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	p, err := uc.purchaseRepo.GetByID(purchaseID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if p.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	if p.PaymentType != entity.PaymentTypeCredit {
		return nil, fmt.Errorf("solo compras al crédito aceptan pagos: %w", domain.ErrInvalidInput)
	}
	if p.PaymentStatus == entity.PaymentStatusPaid {
		return nil, domain.ErrAlreadyPaid
	}

	remaining := p.Total.Sub(p.PaidAmount)
	if in.Amount.GreaterThan(remaining) {
		return nil, fmt.Errorf("el pago excede el saldo pendiente de %s: %w", remaining.StringFixed(2), domain.ErrInvalidInput)
	}

	now := time.Now()
	payment := &entity.PurchasePayment{
		ID:         uuid.New().String(),
		PurchaseID: purchaseID,
		Amount:     in.Amount,
		Method:     in.Method,
		Notes:      in.Notes,
		PaidAt:     now,
		CreatedBy:  userID,
	}

	p.PaidAmount = p.PaidAmount.Add(in.Amount)
	if p.PaidAmount.GreaterThanOrEqual(p.Total) {
		p.PaymentStatus = entity.PaymentStatusPaid
	} else {
		p.PaymentStatus = entity.PaymentStatusPartial
	}
	p.UpdatedAt = now

	// Pago y actualización de saldo en la misma transacción
	err = uc.txRunner.Run(ctx, func(
		purchaseRepo repository.PurchaseRepository,
		_ repository.StockRepository,
		_ repository.ProductRepository,
		_ repository.BatchRepository,
	) error {
		if err := purchaseRepo.AddPayment(payment); err != nil {
			return fmt.Errorf("registrar pago: %w", err)
		}
		if err := purchaseRepo.Update(p); err != nil {
			return fmt.Errorf("actualizar saldo de la compra: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toPurchaseResponse(p, nil), nil
}

// ListPayments devuelve los pagos registrados contra una compra.
func (uc *PurchaseUseCase) ListPayments(ctx context.Context, companyID, purchaseID string) ([]*entity.PurchasePayment, error) {
	p, err := uc.purchaseRepo.GetByID(purchaseID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if p.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return uc.purchaseRepo.ListPayments(purchaseID)
}
