package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/agro-ledger/internal/application/audit"
	"github.com/jhoicas/agro-ledger/internal/application/dto"
	"github.com/jhoicas/agro-ledger/internal/domain"
	"github.com/jhoicas/agro-ledger/internal/domain/entity"
	"github.com/jhoicas/agro-ledger/internal/domain/repository"
)

type auditRecorder interface {
	Record(ctx context.Context, e audit.Entry)
}

// MaterialUseCase CRUD mínimo de insumos. Las cantidades y costos viven en el estado de inventario.
type MaterialUseCase struct {
	repo  repository.MaterialRepository
	audit auditRecorder
}

// NewMaterialUseCase construye el caso de uso.
func NewMaterialUseCase(repo repository.MaterialRepository, auditRec auditRecorder) *MaterialUseCase {
	return &MaterialUseCase{repo: repo, audit: auditRec}
}

// Create crea un insumo; el código es único por finca.
func (uc *MaterialUseCase) Create(ctx context.Context, actor audit.Actor, farmID string, in dto.CreateMaterialRequest) (*dto.MaterialResponse, error) {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	if in.Code == "" {
		return nil, domain.NewValidationError("code", "requerido")
	}
	if in.Name == "" {
		return nil, domain.NewValidationError("name", "requerido")
	}
	if in.Unit == "" {
		in.Unit = "kg"
	}
	existing, err := uc.repo.GetByFarmAndCode(ctx, farmID, in.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("material %s: %w", in.Code, domain.ErrDuplicate)
	}

	now := time.Now().UTC()
	m := &entity.Material{
		ID:        uuid.New().String(),
		FarmID:    farmID,
		Code:      in.Code,
		Name:      in.Name,
		Unit:      in.Unit,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, audit.Entry{
		Actor:       actor,
		FarmID:      farmID,
		SourceTable: entity.AuditTableMaterials,
		RecordID:    m.ID,
		Action:      entity.AuditActionCreate,
		After:       m,
	})
	return toMaterialResponse(m), nil
}

// GetByID insumo de la finca; domain.ErrNotFound si no existe o es de otra finca.
func (uc *MaterialUseCase) GetByID(ctx context.Context, farmID, id string) (*dto.MaterialResponse, error) {
	m, err := uc.get(ctx, farmID, id)
	if err != nil {
		return nil, err
	}
	return toMaterialResponse(m), nil
}

// List lista insumos por finca con paginación.
func (uc *MaterialUseCase) List(ctx context.Context, farmID string, limit, offset int) (*dto.MaterialListResponse, error) {
	list, err := uc.repo.ListByFarm(ctx, farmID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MaterialResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *toMaterialResponse(m))
	}
	return &dto.MaterialListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete se rechaza con domain.ErrConflict mientras alguna línea del libro use el insumo.
func (uc *MaterialUseCase) Delete(ctx context.Context, actor audit.Actor, farmID, id string) error {
	m, err := uc.get(ctx, farmID, id)
	if err != nil {
		return err
	}
	referenced, err := uc.repo.IsReferenced(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return fmt.Errorf("material %s tiene movimientos: %w", m.Code, domain.ErrConflict)
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.audit.Record(ctx, audit.Entry{
		Actor:       actor,
		FarmID:      farmID,
		SourceTable: entity.AuditTableMaterials,
		RecordID:    id,
		Action:      entity.AuditActionDelete,
		Before:      m,
	})
	return nil
}

func (uc *MaterialUseCase) get(ctx context.Context, farmID, id string) (*entity.Material, error) {
	m, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil || m.FarmID != farmID {
		return nil, fmt.Errorf("material %s: %w", id, domain.ErrNotFound)
	}
	return m, nil
}

func toMaterialResponse(m *entity.Material) *dto.MaterialResponse {
	if m == nil {
		return nil
	}
	return &dto.MaterialResponse{
		ID:        m.ID,
		FarmID:    m.FarmID,
		Code:      m.Code,
		Name:      m.Name,
		Unit:      m.Unit,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
