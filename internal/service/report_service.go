package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/uber/h3-go/v4"

	"github.com/Beatriz-ux/laudos-dpt/internal/domain/entity"
	"github.com/Beatriz-ux/laudos-dpt/internal/domain/repository"
	"github.com/Beatriz-ux/laudos-dpt/internal/platform/queue"
)

// Resolução H3 usada para indexar o local do exame
const h3Resolution = 9

// CreateReportInput são os dados da abertura do laudo pelo agente
type CreateReportInput struct {
	Priority    entity.Priority
	Deadline    *time.Time
	AssignedTo  string
	Requisition entity.Requisition
	Location    entity.Location
	Vehicle     entity.VehicleData
}

// Patches por grupo de campos. Ponteiro nil significa "não alterar".

type LocationPatch struct {
	Address *string
	City    *string
	State   *string
	Lat     *float64
	Lng     *float64
}

type VehiclePatch struct {
	Plate              *string
	Chassi             *string
	VIN                *string
	Motor              *string
	SerieMotor         *string
	Brand              *string
	Model              *string
	Year               *int
	Category           *string
	Color              *string
	IsCloned           *bool
	IsAdulterated      *bool
	LicensedTo         *string
	TechnicalCondition *string
}

type TechnicalInfoPatch struct {
	GlassInfo             *string
	PlateInfo             *string
	MotorInfo             *string
	CentralEletronicaInfo *string
	SeriesAuxiliares      *string
}

type AnalysisPatch struct {
	IsConclusive  *bool
	Conclusion    *string
	Justification *string
	Observations  *string
}

type PhotoInput struct {
	Category    string
	Subtype     string
	PhotoData   string
	Description string
}

// ContentPatch é a atualização parcial de conteúdo de um laudo,
// expressa como grupos de campos bem definidos. O grupo Photos,
// quando presente, substitui o conjunto inteiro de fotos.
type ContentPatch struct {
	Priority  *entity.Priority
	Deadline  *time.Time
	Location  *LocationPatch
	Vehicle   *VehiclePatch
	Info      *TechnicalInfoPatch
	Analysis  *AnalysisPatch
	Signature *string
	Photos    *[]PhotoInput
}

// ReportService é o motor de ciclo de vida dos laudos: valida e executa
// transições de status, aplica as regras de autorização por papel e
// grava uma entrada de auditoria para toda mutação.
type ReportService interface {
	Create(ctx context.Context, input CreateReportInput, actor entity.Actor) (*entity.Report, error)
	Assign(ctx context.Context, reportID, officerID string, actor entity.Actor) error
	Cancel(ctx context.Context, reportID, reason string, actor entity.Actor) error
	UpdateStatus(ctx context.Context, reportID string, status entity.ReportStatus, details string, actor entity.Actor) error
	UpdateContent(ctx context.Context, reportID string, patch ContentPatch, actor entity.Actor) error
	List(ctx context.Context, actor entity.Actor, officerFilter string) ([]entity.Report, error)
	GetByID(ctx context.Context, reportID string, actor entity.Actor) (*entity.Report, error)
}

type reportService struct {
	reportRepo repository.ReportRepository
	userRepo   repository.UserRepository
	publisher  queue.Publisher
	log        *logrus.Entry
}

func NewReportService(reportRepo repository.ReportRepository, userRepo repository.UserRepository, publisher queue.Publisher, log *logrus.Logger) ReportService {
	return &reportService{
		reportRepo: reportRepo,
		userRepo:   userRepo,
		publisher:  publisher,
		log:        logrus.NewEntry(log),
	}
}

// Transições permitidas via UpdateStatus. Atribuição e cancelamento
// têm operações próprias; status terminais não saem daqui.
var statusTransitions = map[entity.ReportStatus][]entity.ReportStatus{
	entity.StatusReceived:   {entity.StatusInProgress},
	entity.StatusInProgress: {entity.StatusCompleted},
}

func canTransition(from, to entity.ReportStatus) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s *reportService) Create(ctx context.Context, input CreateReportInput, actor entity.Actor) (*entity.Report, error) {
	const op = "service.Report.Create"
	log := s.log.WithField("operation", op)

	if actor.Role != entity.RoleAgent {
		return nil, NewAuthorizationError("apenas agentes podem criar laudos")
	}

	if input.Requisition.Oficio == "" {
		return nil, NewValidationError("oficio", "campo obrigatório")
	}
	if input.Requisition.OrgaoRequisitante == "" {
		return nil, NewValidationError("orgao_requisitante", "campo obrigatório")
	}
	if input.Requisition.AutoridadeRequisitante == "" {
		return nil, NewValidationError("autoridade_requisitante", "campo obrigatório")
	}
	if input.Vehicle.Plate == "" {
		return nil, NewValidationError("vehicle.plate", "campo obrigatório")
	}
	if !input.Priority.Valid() {
		return nil, NewValidationError("priority", "prioridade inválida")
	}

	// Valida o policial antes de abrir o laudo já atribuído
	var assignee *entity.User
	if input.AssignedTo != "" {
		officer, err := s.lookupOfficer(ctx, input.AssignedTo)
		if err != nil {
			return nil, err
		}
		assignee = officer
	}

	now := time.Now()
	day := now.Format("20060102")

	seq, err := s.reportRepo.NextSequence(ctx, day, actor.Department)
	if err != nil {
		log.WithError(err).Errorf("%s: failed to get next sequence", op)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	number := formatReportNumber(day, actor.Department, seq)

	report := &entity.Report{
		ID:          uuid.New().String(),
		Number:      number,
		Status:      entity.StatusPending,
		Priority:    input.Priority,
		CreatedBy:   actor.ID,
		Deadline:    input.Deadline,
		Requisition: input.Requisition,
		Location:    input.Location,
		Vehicle:     input.Vehicle,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if report.Location.Lat != nil && report.Location.Lng != nil {
		latLng := h3.NewLatLng(*report.Location.Lat, *report.Location.Lng)
		cell := h3.LatLngToCell(latLng, h3Resolution)
		report.Location.H3Cell = cell.String()
	}

	entries := []entity.AuditLog{newAuditEntry(report.ID, entity.ActionCreated, actor, "Laudo criado", now)}

	if assignee != nil {
		report.Status = entity.StatusReceived
		report.AssignedTo = &assignee.ID
		assignedAt := now
		report.AssignedAt = &assignedAt
		entries = append(entries, newAuditEntry(report.ID, entity.ActionAssigned, actor,
			fmt.Sprintf("Laudo atribuído para %s", assignee.Name), now))
	}

	if err := s.reportRepo.CreateWithAudit(ctx, report, entries); err != nil {
		log.WithError(err).Errorf("%s: failed to persist report", op)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.WithField("number", report.Number).Info("report created")
	s.publishEvent(report, entity.ActionCreated, actor)

	return report, nil
}

func (s *reportService) Assign(ctx context.Context, reportID, officerID string, actor entity.Actor) error {
	const op = "service.Report.Assign"
	log := s.log.WithField("operation", op)

	if actor.Role != entity.RoleAgent {
		return NewAuthorizationError("apenas agentes podem atribuir laudos")
	}

	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		log.WithError(err).Errorf("%s: failed to load report", op)
		return fmt.Errorf("%s: %w", op, err)
	}
	if report == nil {
		return NewNotFoundError("Laudo não encontrado")
	}

	if report.Status.IsTerminal() {
		return &InvalidTransitionError{From: report.Status, To: entity.StatusReceived,
			Message: "não é possível atribuir um laudo concluído ou cancelado"}
	}

	officer, err := s.lookupOfficer(ctx, officerID)
	if err != nil {
		return err
	}

	now := time.Now()
	report.AssignedTo = &officer.ID
	// assigned_at registra apenas a primeira atribuição
	if report.AssignedAt == nil {
		report.AssignedAt = &now
	}
	report.Status = entity.StatusReceived
	report.UpdatedAt = now

	entry := newAuditEntry(report.ID, entity.ActionAssigned, actor,
		fmt.Sprintf("Laudo atribuído a %s (%s)", officer.Name, officer.Badge), now)

	if err := s.reportRepo.UpdateAssignmentWithAudit(ctx, report, entry); err != nil {
		log.WithError(err).Errorf("%s: failed to persist assignment", op)
		return fmt.Errorf("%s: %w", op, err)
	}

	s.publishEvent(report, entity.ActionAssigned, actor)
	return nil
}

func (s *reportService) Cancel(ctx context.Context, reportID, reason string, actor entity.Actor) error {
	const op = "service.Report.Cancel"
	log := s.log.WithField("operation", op)

	if actor.Role != entity.RoleAgent {
		return NewAuthorizationError("apenas agentes podem cancelar laudos")
	}
	if reason == "" {
		return NewValidationError("reason", "o motivo do cancelamento é obrigatório")
	}

	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		log.WithError(err).Errorf("%s: failed to load report", op)
		return fmt.Errorf("%s: %w", op, err)
	}
	if report == nil {
		return NewNotFoundError("Laudo não encontrado")
	}

	if report.Status == entity.StatusCompleted {
		return &InvalidTransitionError{From: report.Status, To: entity.StatusCancelled,
			Message: "Não é possível cancelar um laudo concluído"}
	}
	if report.Status == entity.StatusCancelled {
		return &InvalidTransitionError{From: report.Status, To: entity.StatusCancelled,
			Message: "O laudo já está cancelado"}
	}

	entry := newAuditEntry(report.ID, entity.ActionCancelled, actor, reason, time.Now())
	if err := s.reportRepo.UpdateStatusWithAudit(ctx, report.ID, entity.StatusCancelled, entry); err != nil {
		log.WithError(err).Errorf("%s: failed to persist cancellation", op)
		return fmt.Errorf("%s: %w", op, err)
	}

	report.Status = entity.StatusCancelled
	s.publishEvent(report, entity.ActionCancelled, actor)
	return nil
}

func (s *reportService) UpdateStatus(ctx context.Context, reportID string, status entity.ReportStatus, details string, actor entity.Actor) error {
	const op = "service.Report.UpdateStatus"
	log := s.log.WithField("operation", op)

	if !status.Valid() {
		return NewValidationError("status", "status inválido")
	}

	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		log.WithError(err).Errorf("%s: failed to load report", op)
		return fmt.Errorf("%s: %w", op, err)
	}
	if report == nil {
		return NewNotFoundError("Laudo não encontrado")
	}

	// Policiais só mexem nos laudos atribuídos a eles; agentes não têm
	// restrição de posse, mas a tabela de transições vale para todos
	if actor.Role == entity.RoleOfficer && !report.IsAssignedTo(actor.ID) {
		return NewAuthorizationError("Você não tem permissão para atualizar este laudo")
	}

	if !canTransition(report.Status, status) {
		return &InvalidTransitionError{From: report.Status, To: status}
	}

	if status == entity.StatusCompleted {
		if report.Analysis.Conclusion == "" {
			return NewValidationError("analysis.conclusion", "a conclusão é obrigatória para finalizar o laudo")
		}
		if report.Analysis.IsConclusive == nil {
			return NewValidationError("analysis.is_conclusive", "o caráter conclusivo é obrigatório para finalizar o laudo")
		}
	}

	if details == "" {
		details = fmt.Sprintf("Status alterado para %s", status)
	}

	entry := newAuditEntry(report.ID, entity.ActionUpdated, actor, details, time.Now())
	if err := s.reportRepo.UpdateStatusWithAudit(ctx, report.ID, status, entry); err != nil {
		log.WithError(err).Errorf("%s: failed to persist status change", op)
		return fmt.Errorf("%s: %w", op, err)
	}

	report.Status = status
	s.publishEvent(report, entity.ActionUpdated, actor)
	return nil
}

func (s *reportService) UpdateContent(ctx context.Context, reportID string, patch ContentPatch, actor entity.Actor) error {
	const op = "service.Report.UpdateContent"
	log := s.log.WithField("operation", op)

	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		log.WithError(err).Errorf("%s: failed to load report", op)
		return fmt.Errorf("%s: %w", op, err)
	}
	if report == nil {
		return NewNotFoundError("Laudo não encontrado")
	}

	// Agente edita sempre; policial apenas o laudo atribuído a ele e
	// enquanto o laudo estiver RECEIVED ou IN_PROGRESS
	if actor.Role == entity.RoleOfficer {
		if !report.IsAssignedTo(actor.ID) {
			return NewAuthorizationError("Você não tem permissão para editar este laudo")
		}
		if report.Status != entity.StatusReceived && report.Status != entity.StatusInProgress {
			return &InvalidTransitionError{From: report.Status, To: report.Status,
				Message: "o laudo não está aberto para edição"}
		}
	}

	if patch.Priority != nil && !patch.Priority.Valid() {
		return NewValidationError("priority", "prioridade inválida")
	}

	now := time.Now()
	applyPatch(report, patch)
	report.UpdatedAt = now

	update := repository.ContentUpdate{Report: report}
	if patch.Photos != nil {
		update.ReplacePhotos = true
		update.Photos = make([]entity.VehiclePhoto, 0, len(*patch.Photos))
		for _, p := range *patch.Photos {
			if p.Category == "" {
				return NewValidationError("photos.category", "campo obrigatório")
			}
			if p.PhotoData == "" {
				return NewValidationError("photos.photo_data", "campo obrigatório")
			}
			update.Photos = append(update.Photos, entity.VehiclePhoto{
				ID:          uuid.New().String(),
				ReportID:    report.ID,
				Category:    p.Category,
				Subtype:     p.Subtype,
				PhotoData:   p.PhotoData,
				Description: p.Description,
				CreatedAt:   now,
			})
		}
	}

	entry := newAuditEntry(report.ID, entity.ActionUpdated, actor, "Laudo atualizado", now)
	if err := s.reportRepo.UpdateContentWithAudit(ctx, update, entry); err != nil {
		log.WithError(err).Errorf("%s: failed to persist content update", op)
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *reportService) List(ctx context.Context, actor entity.Actor, officerFilter string) ([]entity.Report, error) {
	const op = "service.Report.List"

	filter := repository.ReportFilter{}
	// Agente vê todos (opcionalmente filtrados por policial);
	// policial vê apenas os laudos atribuídos a ele
	if actor.Role == entity.RoleOfficer {
		filter.AssignedTo = actor.ID
	} else if officerFilter != "" {
		filter.AssignedTo = officerFilter
	}

	reports, err := s.reportRepo.List(ctx, filter)
	if err != nil {
		s.log.WithField("operation", op).WithError(err).Errorf("%s: failed to list reports", op)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return reports, nil
}

func (s *reportService) GetByID(ctx context.Context, reportID string, actor entity.Actor) (*entity.Report, error) {
	const op = "service.Report.GetByID"

	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		s.log.WithField("operation", op).WithError(err).Errorf("%s: failed to load report", op)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if report == nil {
		return nil, NewNotFoundError("Laudo não encontrado")
	}

	if actor.Role == entity.RoleOfficer && !report.IsAssignedTo(actor.ID) {
		return nil, NewAuthorizationError("Você não tem permissão para ver este laudo")
	}

	return report, nil
}

// lookupOfficer valida que o destinatário existe, está ativo e é policial
func (s *reportService) lookupOfficer(ctx context.Context, officerID string) (*entity.User, error) {
	officer, err := s.userRepo.GetByID(ctx, officerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load officer: %w", err)
	}
	if officer == nil || officer.Role != entity.RoleOfficer {
		return nil, NewNotFoundError("Policial não encontrado")
	}
	if !officer.IsActive {
		return nil, NewValidationError("assigned_to", "o policial está inativo")
	}
	return officer, nil
}

func (s *reportService) publishEvent(report *entity.Report, action entity.AuditAction, actor entity.Actor) {
	if s.publisher == nil {
		return
	}

	event := entity.ReportEvent{
		ReportID:   report.ID,
		Number:     report.Number,
		Action:     action,
		Status:     report.Status,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		OccurredAt: time.Now(),
	}
	if report.AssignedTo != nil {
		event.AssignedTo = *report.AssignedTo
	}

	// Publicação assíncrona e best-effort, fora da transação
	go func() {
		if err := s.publisher.Publish(context.Background(), queue.ReportEventsQueue, event); err != nil {
			s.log.WithError(err).Error("failed to publish report event")
		}
	}()
}

func newAuditEntry(reportID string, action entity.AuditAction, actor entity.Actor, details string, ts time.Time) entity.AuditLog {
	return entity.AuditLog{
		ID:        uuid.New().String(),
		ReportID:  reportID,
		Action:    action,
		UserID:    actor.ID,
		UserName:  actor.Name,
		Details:   details,
		Timestamp: ts,
	}
}

func formatReportNumber(day string, dept entity.Department, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", day, dept, seq)
}

func applyPatch(report *entity.Report, patch ContentPatch) {
	if patch.Priority != nil {
		report.Priority = *patch.Priority
	}
	if patch.Deadline != nil {
		report.Deadline = patch.Deadline
	}
	if patch.Signature != nil {
		report.ExpertSignature = *patch.Signature
	}

	if p := patch.Location; p != nil {
		if p.Address != nil {
			report.Location.Address = *p.Address
		}
		if p.City != nil {
			report.Location.City = *p.City
		}
		if p.State != nil {
			report.Location.State = *p.State
		}
		if p.Lat != nil {
			report.Location.Lat = p.Lat
		}
		if p.Lng != nil {
			report.Location.Lng = p.Lng
		}
		if report.Location.Lat != nil && report.Location.Lng != nil {
			latLng := h3.NewLatLng(*report.Location.Lat, *report.Location.Lng)
			report.Location.H3Cell = h3.LatLngToCell(latLng, h3Resolution).String()
		}
	}

	if p := patch.Vehicle; p != nil {
		if p.Plate != nil {
			report.Vehicle.Plate = *p.Plate
		}
		if p.Chassi != nil {
			report.Vehicle.Chassi = *p.Chassi
		}
		if p.VIN != nil {
			report.Vehicle.VIN = *p.VIN
		}
		if p.Motor != nil {
			report.Vehicle.Motor = *p.Motor
		}
		if p.SerieMotor != nil {
			report.Vehicle.SerieMotor = *p.SerieMotor
		}
		if p.Brand != nil {
			report.Vehicle.Brand = *p.Brand
		}
		if p.Model != nil {
			report.Vehicle.Model = *p.Model
		}
		if p.Year != nil {
			report.Vehicle.Year = *p.Year
		}
		if p.Category != nil {
			report.Vehicle.Category = *p.Category
		}
		if p.Color != nil {
			report.Vehicle.Color = *p.Color
		}
		if p.IsCloned != nil {
			report.Vehicle.IsCloned = *p.IsCloned
		}
		if p.IsAdulterated != nil {
			report.Vehicle.IsAdulterated = *p.IsAdulterated
		}
		if p.LicensedTo != nil {
			report.Vehicle.LicensedTo = *p.LicensedTo
		}
		if p.TechnicalCondition != nil {
			report.Vehicle.TechnicalCondition = *p.TechnicalCondition
		}
	}

	if p := patch.Info; p != nil {
		if p.GlassInfo != nil {
			report.Info.GlassInfo = *p.GlassInfo
		}
		if p.PlateInfo != nil {
			report.Info.PlateInfo = *p.PlateInfo
		}
		if p.MotorInfo != nil {
			report.Info.MotorInfo = *p.MotorInfo
		}
		if p.CentralEletronicaInfo != nil {
			report.Info.CentralEletronicaInfo = *p.CentralEletronicaInfo
		}
		if p.SeriesAuxiliares != nil {
			report.Info.SeriesAuxiliares = *p.SeriesAuxiliares
		}
	}

	if p := patch.Analysis; p != nil {
		if p.IsConclusive != nil {
			report.Analysis.IsConclusive = p.IsConclusive
		}
		if p.Conclusion != nil {
			report.Analysis.Conclusion = *p.Conclusion
		}
		if p.Justification != nil {
			report.Analysis.Justification = *p.Justification
		}
		if p.Observations != nil {
			report.Analysis.Observations = *p.Observations
		}
	}
}
