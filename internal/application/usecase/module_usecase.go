package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/Compras-api/internal/application/purchase"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

// ModuleService verifica qué módulos SaaS tiene activos un negocio.
// Es el único punto de la aplicación que conoce la lógica de activación.
type ModuleService struct {
	companyRepo repository.CompanyRepository
}

// NewModuleService construye el servicio de módulos.
func NewModuleService(companyRepo repository.CompanyRepository) *ModuleService {
	return &ModuleService{companyRepo: companyRepo}
}

// HasActiveModule informa si el negocio tiene el módulo activo y sin vencer.
// Devuelve false (sin error) si el negocio no tiene el módulo contratado.
// Devuelve error solo ante fallos de infraestructura (DB caída, timeout, etc.).
func (s *ModuleService) HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error) {
	if companyID == "" || moduleName == "" {
		return false, fmt.Errorf("module: companyID y moduleName son obligatorios")
	}
	return s.companyRepo.HasActiveModule(ctx, companyID, moduleName)
}

// Capabilities resuelve las capacidades del negocio para el motor de compras
// a partir de sus módulos activos. Una verificación fallida se trata como
// módulo inactivo: el motor degrada la funcionalidad en lugar de abortar.
func (s *ModuleService) Capabilities(ctx context.Context, companyID string) purchase.Capabilities {
	pharmacy, _ := s.companyRepo.HasActiveModule(ctx, companyID, entity.ModulePharmacy)
	restaurant, _ := s.companyRepo.HasActiveModule(ctx, companyID, entity.ModuleRestaurant)
	return purchase.Capabilities{Pharmacy: pharmacy, Restaurant: restaurant}
}
