package repository

import (
	"context"

	"github.com/Beatriz-ux/laudos-dpt/internal/domain/entity"
)

// ReportFilter restringe a listagem e a agregação de laudos.
// AssignedTo vazio significa "todos os laudos".
type ReportFilter struct {
	AssignedTo string
}

// ContentUpdate agrupa a escrita de conteúdo de um laudo.
// Quando ReplacePhotos é true o conjunto de fotos é substituído
// integralmente (delete + insert) na mesma transação.
type ContentUpdate struct {
	Report        *entity.Report
	ReplacePhotos bool
	Photos        []entity.VehiclePhoto
}

// ReportRepository persiste laudos. Toda operação de escrita que muda
// estado grava também as entradas de auditoria na MESMA transação, para
// que nunca exista mudança de status órfã de trilha.
type ReportRepository interface {
	// NextSequence devolve o próximo número sequencial do dia/departamento
	// usando incremento atômico no banco (sem corrida de COUNT).
	NextSequence(ctx context.Context, day string, dept entity.Department) (int, error)

	CreateWithAudit(ctx context.Context, report *entity.Report, entries []entity.AuditLog) error
	UpdateAssignmentWithAudit(ctx context.Context, report *entity.Report, entry entity.AuditLog) error
	UpdateStatusWithAudit(ctx context.Context, id string, status entity.ReportStatus, entry entity.AuditLog) error
	UpdateContentWithAudit(ctx context.Context, update ContentUpdate, entry entity.AuditLog) error

	GetByID(ctx context.Context, id string) (*entity.Report, error)
	List(ctx context.Context, filter ReportFilter) ([]entity.Report, error)
	CountByStatus(ctx context.Context, filter ReportFilter) (map[entity.ReportStatus]int, error)
}
