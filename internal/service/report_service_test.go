package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Beatriz-ux/laudos-dpt/internal/domain/entity"
	"github.com/Beatriz-ux/laudos-dpt/internal/domain/repository"
)

// Mock de ReportRepository para os testes
type mockReportRepo struct {
	reports map[string]*entity.Report
	seq     int

	createdReport  *entity.Report
	createdEntries []entity.AuditLog

	assignedReport  *entity.Report
	assignedEntry   entity.AuditLog
	assignmentCalls int

	statusID    string
	statusValue entity.ReportStatus
	statusEntry entity.AuditLog

	contentUpdate repository.ContentUpdate
	contentEntry  entity.AuditLog
}

func (m *mockReportRepo) NextSequence(ctx context.Context, day string, dept entity.Department) (int, error) {
	m.seq++
	return m.seq, nil
}

func (m *mockReportRepo) CreateWithAudit(ctx context.Context, report *entity.Report, entries []entity.AuditLog) error {
	m.createdReport = report
	m.createdEntries = entries
	return nil
}

func (m *mockReportRepo) UpdateAssignmentWithAudit(ctx context.Context, report *entity.Report, entry entity.AuditLog) error {
	m.assignedReport = report
	m.assignedEntry = entry
	m.assignmentCalls++
	return nil
}

func (m *mockReportRepo) UpdateStatusWithAudit(ctx context.Context, id string, status entity.ReportStatus, entry entity.AuditLog) error {
	m.statusID = id
	m.statusValue = status
	m.statusEntry = entry
	return nil
}

func (m *mockReportRepo) UpdateContentWithAudit(ctx context.Context, update repository.ContentUpdate, entry entity.AuditLog) error {
	m.contentUpdate = update
	m.contentEntry = entry
	return nil
}

func (m *mockReportRepo) GetByID(ctx context.Context, id string) (*entity.Report, error) {
	return m.reports[id], nil
}

func (m *mockReportRepo) List(ctx context.Context, filter repository.ReportFilter) ([]entity.Report, error) {
	var out []entity.Report
	for _, r := range m.reports {
		if filter.AssignedTo != "" && !r.IsAssignedTo(filter.AssignedTo) {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockReportRepo) CountByStatus(ctx context.Context, filter repository.ReportFilter) (map[entity.ReportStatus]int, error) {
	counts := make(map[entity.ReportStatus]int)
	for _, r := range m.reports {
		if filter.AssignedTo != "" && !r.IsAssignedTo(filter.AssignedTo) {
			continue
		}
		counts[r.Status]++
	}
	return counts, nil
}

// Mock de UserRepository para os testes
type mockUserRepo struct {
	users map[string]*entity.User
}

func (m *mockUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }
func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return m.users[id], nil
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}
func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}
func (m *mockUserRepo) GetByBadge(ctx context.Context, badge string) (*entity.User, error) {
	for _, u := range m.users {
		if u.Badge == badge {
			return u, nil
		}
	}
	return nil, nil
}
func (m *mockUserRepo) ListOfficers(ctx context.Context) ([]entity.User, error) { return nil, nil }
func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string) error    { return nil }
func (m *mockUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string, mustChangePassword bool) error {
	return nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

var (
	agentActor   = entity.Actor{ID: "agent-1", Name: "Agente Mesa", Role: entity.RoleAgent, Department: entity.DeptTraffic, Badge: "AG-0001"}
	officerActor = entity.Actor{ID: "officer-1", Name: "Perito Silva", Role: entity.RoleOfficer, Department: entity.DeptTraffic, Badge: "PC-1001"}
)

func activeOfficer() *entity.User {
	return &entity.User{
		ID:       "officer-1",
		Name:     "Perito Silva",
		Badge:    "PC-1001",
		Role:     entity.RoleOfficer,
		IsActive: true,
	}
}

func validCreateInput() CreateReportInput {
	return CreateReportInput{
		Priority: entity.PriorityMedium,
		Requisition: entity.Requisition{
			Oficio:                 "OF-123/2026",
			OrgaoRequisitante:      "Delegacia de Roubos e Furtos",
			AutoridadeRequisitante: "Dr. Almeida",
		},
		Vehicle: entity.VehicleData{Plate: "ABC1D23"},
	}
}

func TestCreateReport(t *testing.T) {
	ctx := context.Background()

	t.Run("unassigned report starts PENDING with a single CREATED entry", func(t *testing.T) {
		repo := &mockReportRepo{}
		users := &mockUserRepo{users: map[string]*entity.User{}}
		s := NewReportService(repo, users, nil, testLogger())

		report, err := s.Create(ctx, validCreateInput(), agentActor)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if report.Status != entity.StatusPending {
			t.Errorf("expected status PENDING, got %s", report.Status)
		}
		if report.AssignedAt != nil {
			t.Errorf("expected no assigned_at on unassigned report")
		}
		if len(repo.createdEntries) != 1 {
			t.Fatalf("expected 1 audit entry, got %d", len(repo.createdEntries))
		}
		if repo.createdEntries[0].Action != entity.ActionCreated {
			t.Errorf("expected CREATED action, got %s", repo.createdEntries[0].Action)
		}
		if repo.createdEntries[0].Details != "Laudo criado" {
			t.Errorf("unexpected details: %s", repo.createdEntries[0].Details)
		}
	})

	t.Run("assigned report starts RECEIVED with CREATED and ASSIGNED entries", func(t *testing.T) {
		repo := &mockReportRepo{}
		users := &mockUserRepo{users: map[string]*entity.User{"officer-1": activeOfficer()}}
		s := NewReportService(repo, users, nil, testLogger())

		input := validCreateInput()
		input.AssignedTo = "officer-1"

		report, err := s.Create(ctx, input, agentActor)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if report.Status != entity.StatusReceived {
			t.Errorf("expected status RECEIVED, got %s", report.Status)
		}
		if report.AssignedAt == nil {
			t.Errorf("expected assigned_at to be set")
		}
		if len(repo.createdEntries) != 2 {
			t.Fatalf("expected 2 audit entries, got %d", len(repo.createdEntries))
		}
		if repo.createdEntries[1].Action != entity.ActionAssigned {
			t.Errorf("expected ASSIGNED action, got %s", repo.createdEntries[1].Action)
		}
		if repo.createdEntries[1].Details != "Laudo atribuído para Perito Silva" {
			t.Errorf("unexpected details: %s", repo.createdEntries[1].Details)
		}
	})

	t.Run("report number follows day-department-sequence format", func(t *testing.T) {
		repo := &mockReportRepo{}
		users := &mockUserRepo{users: map[string]*entity.User{}}
		s := NewReportService(repo, users, nil, testLogger())

		report, err := s.Create(ctx, validCreateInput(), agentActor)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		day := time.Now().Format("20060102")
		expected := day + "-TRAFFIC-0001"
		if report.Number != expected {
			t.Errorf("expected number %s, got %s", expected, report.Number)
		}
	})

	t.Run("officer cannot create reports", func(t *testing.T) {
		repo := &mockReportRepo{}
		users := &mockUserRepo{users: map[string]*entity.User{}}
		s := NewReportService(repo, users, nil, testLogger())

		_, err := s.Create(ctx, validCreateInput(), officerActor)
		var authErr *AuthorizationError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected AuthorizationError, got %v", err)
		}
	})

	t.Run("missing oficio is rejected", func(t *testing.T) {
		repo := &mockReportRepo{}
		users := &mockUserRepo{users: map[string]*entity.User{}}
		s := NewReportService(repo, users, nil, testLogger())

		input := validCreateInput()
		input.Requisition.Oficio = ""

		_, err := s.Create(ctx, input, agentActor)
		var valErr *ValidationError
		if !errors.As(err, &valErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if valErr.Field != "oficio" {
			t.Errorf("expected field oficio, got %s", valErr.Field)
		}
	})

	t.Run("assignment to inactive officer is rejected", func(t *testing.T) {
		officer := activeOfficer()
		officer.IsActive = false
		repo := &mockReportRepo{}
		users := &mockUserRepo{users: map[string]*entity.User{"officer-1": officer}}
		s := NewReportService(repo, users, nil, testLogger())

		input := validCreateInput()
		input.AssignedTo = "officer-1"

		_, err := s.Create(ctx, input, agentActor)
		var valErr *ValidationError
		if !errors.As(err, &valErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("assignment to an agent account is not found", func(t *testing.T) {
		agent := &entity.User{ID: "agent-2", Role: entity.RoleAgent, IsActive: true}
		repo := &mockReportRepo{}
		users := &mockUserRepo{users: map[string]*entity.User{"agent-2": agent}}
		s := NewReportService(repo, users, nil, testLogger())

		input := validCreateInput()
		input.AssignedTo = "agent-2"

		_, err := s.Create(ctx, input, agentActor)
		var nfErr *NotFoundError
		if !errors.As(err, &nfErr) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
	})

	t.Run("location with coordinates gets an H3 cell", func(t *testing.T) {
		repo := &mockReportRepo{}
		users := &mockUserRepo{users: map[string]*entity.User{}}
		s := NewReportService(repo, users, nil, testLogger())

		lat, lng := -12.9714, -38.5014
		input := validCreateInput()
		input.Location = entity.Location{City: "Salvador", State: "BA", Lat: &lat, Lng: &lng}

		report, err := s.Create(ctx, input, agentActor)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if report.Location.H3Cell == "" {
			t.Errorf("expected H3 cell to be computed")
		}
	})
}

func TestAssignReport(t *testing.T) {
	ctx := context.Background()

	newService := func(report *entity.Report) (*mockReportRepo, ReportService) {
		repo := &mockReportRepo{reports: map[string]*entity.Report{}}
		if report != nil {
			repo.reports[report.ID] = report
		}
		users := &mockUserRepo{users: map[string]*entity.User{"officer-1": activeOfficer()}}
		return repo, NewReportService(repo, users, nil, testLogger())
	}

	t.Run("assignment moves report to RECEIVED and records the audit entry", func(t *testing.T) {
		report := &entity.Report{ID: "r1", Status: entity.StatusPending}
		repo, s := newService(report)

		if err := s.Assign(ctx, "r1", "officer-1", agentActor); err != nil {
			t.Fatalf("Assign failed: %v", err)
		}

		if repo.assignedReport.Status != entity.StatusReceived {
			t.Errorf("expected RECEIVED, got %s", repo.assignedReport.Status)
		}
		if repo.assignedReport.AssignedAt == nil {
			t.Errorf("expected assigned_at to be set")
		}
		if repo.assignedEntry.Action != entity.ActionAssigned {
			t.Errorf("expected ASSIGNED entry, got %s", repo.assignedEntry.Action)
		}
		if !strings.Contains(repo.assignedEntry.Details, "Perito Silva") {
			t.Errorf("expected officer name in details, got %s", repo.assignedEntry.Details)
		}
	})

	t.Run("reassignment keeps the original assigned_at", func(t *testing.T) {
		firstAssignment := time.Now().Add(-48 * time.Hour)
		report := &entity.Report{ID: "r1", Status: entity.StatusReceived, AssignedAt: &firstAssignment}
		repo, s := newService(report)

		if err := s.Assign(ctx, "r1", "officer-1", agentActor); err != nil {
			t.Fatalf("Assign failed: %v", err)
		}

		if !repo.assignedReport.AssignedAt.Equal(firstAssignment) {
			t.Errorf("assigned_at changed on reassignment")
		}
	})

	t.Run("competing assignments: last writer wins, every call audited", func(t *testing.T) {
		// Sem lock otimista na linha do laudo, duas atribuições em
		// sequência convergem para a última; a trilha guarda as duas
		report := &entity.Report{ID: "r1", Status: entity.StatusPending}
		second := activeOfficer()
		second.ID = "officer-2"
		second.Name = "Perito Souza"
		second.Badge = "PC-1002"

		repo := &mockReportRepo{reports: map[string]*entity.Report{"r1": report}}
		users := &mockUserRepo{users: map[string]*entity.User{
			"officer-1": activeOfficer(),
			"officer-2": second,
		}}
		s := NewReportService(repo, users, nil, testLogger())

		if err := s.Assign(ctx, "r1", "officer-1", agentActor); err != nil {
			t.Fatalf("first Assign failed: %v", err)
		}
		if err := s.Assign(ctx, "r1", "officer-2", agentActor); err != nil {
			t.Fatalf("second Assign failed: %v", err)
		}

		if repo.assignedReport.AssignedTo == nil || *repo.assignedReport.AssignedTo != "officer-2" {
			t.Errorf("expected officer-2 as final assignee, got %v", repo.assignedReport.AssignedTo)
		}
		if repo.assignmentCalls != 2 {
			t.Errorf("expected 2 audited assignment writes, got %d", repo.assignmentCalls)
		}
	})

	t.Run("cancelled report cannot be assigned", func(t *testing.T) {
		report := &entity.Report{ID: "r1", Status: entity.StatusCancelled}
		_, s := newService(report)

		err := s.Assign(ctx, "r1", "officer-1", agentActor)
		var trErr *InvalidTransitionError
		if !errors.As(err, &trErr) {
			t.Fatalf("expected InvalidTransitionError, got %v", err)
		}
	})

	t.Run("officer cannot assign", func(t *testing.T) {
		report := &entity.Report{ID: "r1", Status: entity.StatusPending}
		_, s := newService(report)

		err := s.Assign(ctx, "r1", "officer-1", officerActor)
		var authErr *AuthorizationError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected AuthorizationError, got %v", err)
		}
	})

	t.Run("missing report is not found", func(t *testing.T) {
		_, s := newService(nil)

		err := s.Assign(ctx, "missing", "officer-1", agentActor)
		var nfErr *NotFoundError
		if !errors.As(err, &nfErr) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
	})
}

func TestCancelReport(t *testing.T) {
	ctx := context.Background()

	newService := func(report *entity.Report) (*mockReportRepo, ReportService) {
		repo := &mockReportRepo{reports: map[string]*entity.Report{report.ID: report}}
		users := &mockUserRepo{users: map[string]*entity.User{}}
		return repo, NewReportService(repo, users, nil, testLogger())
	}

	t.Run("cancellation records the reason verbatim", func(t *testing.T) {
		report := &entity.Report{ID: "r1", Status: entity.StatusInProgress}
		repo, s := newService(report)

		if err := s.Cancel(ctx, "r1", "Veículo devolvido ao proprietário", agentActor); err != nil {
			t.Fatalf("Cancel failed: %v", err)
		}

		if repo.statusValue != entity.StatusCancelled {
			t.Errorf("expected CANCELLED, got %s", repo.statusValue)
		}
		if repo.statusEntry.Action != entity.ActionCancelled {
			t.Errorf("expected CANCELLED entry, got %s", repo.statusEntry.Action)
		}
		if repo.statusEntry.Details != "Veículo devolvido ao proprietário" {
			t.Errorf("expected verbatim reason, got %s", repo.statusEntry.Details)
		}
	})

	t.Run("reason is mandatory", func(t *testing.T) {
		report := &entity.Report{ID: "r1", Status: entity.StatusPending}
		_, s := newService(report)

		err := s.Cancel(ctx, "r1", "", agentActor)
		var valErr *ValidationError
		if !errors.As(err, &valErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("completed report cannot be cancelled", func(t *testing.T) {
		report := &entity.Report{ID: "r1", Status: entity.StatusCompleted}
		_, s := newService(report)

		err := s.Cancel(ctx, "r1", "qualquer motivo", agentActor)
		var trErr *InvalidTransitionError
		if !errors.As(err, &trErr) {
			t.Fatalf("expected InvalidTransitionError, got %v", err)
		}
	})

	t.Run("cancelling twice is rejected", func(t *testing.T) {
		report := &entity.Report{ID: "r1", Status: entity.StatusCancelled}
		_, s := newService(report)

		err := s.Cancel(ctx, "r1", "de novo", agentActor)
		var trErr *InvalidTransitionError
		if !errors.As(err, &trErr) {
			t.Fatalf("expected InvalidTransitionError, got %v", err)
		}
	})

	t.Run("officer cannot cancel", func(t *testing.T) {
		report := &entity.Report{ID: "r1", Status: entity.StatusPending}
		_, s := newService(report)

		err := s.Cancel(ctx, "r1", "motivo", officerActor)
		var authErr *AuthorizationError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected AuthorizationError, got %v", err)
		}
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	officerID := "officer-1"

	newService := func(report *entity.Report) (*mockReportRepo, ReportService) {
		repo := &mockReportRepo{reports: map[string]*entity.Report{report.ID: report}}
		users := &mockUserRepo{users: map[string]*entity.User{}}
		return repo, NewReportService(repo, users, nil, testLogger())
	}

	t.Run("assignee starts work: RECEIVED to IN_PROGRESS", func(t *testing.T) {
		report := &entity.Report{ID: "r1", Status: entity.StatusReceived, AssignedTo: &officerID}
		repo, s := newService(report)

		if err := s.UpdateStatus(ctx, "r1", entity.StatusInProgress, "", officerActor); err != nil {
			t.Fatalf("UpdateStatus failed: %v", err)
		}

		if repo.statusValue != entity.StatusInProgress {
			t.Errorf("expected IN_PROGRESS, got %s", repo.statusValue)
		}
		if repo.statusEntry.Details != "Status alterado para IN_PROGRESS" {
			t.Errorf("unexpected default details: %s", repo.statusEntry.Details)
		}
	})

	t.Run("completion requires a conclusion", func(t *testing.T) {
		report := &entity.Report{ID: "r1", Status: entity.StatusInProgress, AssignedTo: &officerID}
		_, s := newService(report)

		err := s.UpdateStatus(ctx, "r1", entity.StatusCompleted, "", officerActor)
		var valErr *ValidationError
		if !errors.As(err, &valErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("completion with conclusion and verdict succeeds", func(t *testing.T) {
		conclusive := true
		report := &entity.Report{
			ID: "r1", Status: entity.StatusInProgress, AssignedTo: &officerID,
			Analysis: entity.Analysis{Conclusion: "Chassi adulterado", IsConclusive: &conclusive},
		}
		repo, s := newService(report)

		if err := s.UpdateStatus(ctx, "r1", entity.StatusCompleted, "", officerActor); err != nil {
			t.Fatalf("UpdateStatus failed: %v", err)
		}
		if repo.statusValue != entity.StatusCompleted {
			t.Errorf("expected COMPLETED, got %s", repo.statusValue)
		}
	})

	t.Run("non-assignee officer is forbidden", func(t *testing.T) {
		other := "officer-2"
		report := &entity.Report{ID: "r1", Status: entity.StatusReceived, AssignedTo: &other}
		_, s := newService(report)

		err := s.UpdateStatus(ctx, "r1", entity.StatusInProgress, "", officerActor)
		var authErr *AuthorizationError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected AuthorizationError, got %v", err)
		}
	})

	t.Run("PENDING cannot jump to IN_PROGRESS", func(t *testing.T) {
		report := &entity.Report{ID: "r1", Status: entity.StatusPending}
		_, s := newService(report)

		err := s.UpdateStatus(ctx, "r1", entity.StatusInProgress, "", agentActor)
		var trErr *InvalidTransitionError
		if !errors.As(err, &trErr) {
			t.Fatalf("expected InvalidTransitionError, got %v", err)
		}
	})

	t.Run("terminal states admit no transitions, even for agents", func(t *testing.T) {
		for _, status := range []entity.ReportStatus{entity.StatusCompleted, entity.StatusCancelled} {
			report := &entity.Report{ID: "r1", Status: status}
			_, s := newService(report)

			err := s.UpdateStatus(ctx, "r1", entity.StatusInProgress, "", agentActor)
			var trErr *InvalidTransitionError
			if !errors.As(err, &trErr) {
				t.Fatalf("expected InvalidTransitionError from %s, got %v", status, err)
			}
		}
	})

	t.Run("unknown status value is rejected", func(t *testing.T) {
		report := &entity.Report{ID: "r1", Status: entity.StatusReceived, AssignedTo: &officerID}
		_, s := newService(report)

		err := s.UpdateStatus(ctx, "r1", entity.ReportStatus("ARCHIVED"), "", officerActor)
		var valErr *ValidationError
		if !errors.As(err, &valErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

func TestUpdateContent(t *testing.T) {
	ctx := context.Background()
	officerID := "officer-1"

	newService := func(report *entity.Report) (*mockReportRepo, ReportService) {
		repo := &mockReportRepo{reports: map[string]*entity.Report{report.ID: report}}
		users := &mockUserRepo{users: map[string]*entity.User{}}
		return repo, NewReportService(repo, users, nil, testLogger())
	}

	t.Run("nil patch fields leave current values untouched", func(t *testing.T) {
		report := &entity.Report{
			ID: "r1", Status: entity.StatusInProgress, AssignedTo: &officerID,
			Priority: entity.PriorityHigh,
			Vehicle:  entity.VehicleData{Plate: "ABC1D23", Brand: "Fiat"},
		}
		repo, s := newService(report)

		newModel := "Uno"
		patch := ContentPatch{Vehicle: &VehiclePatch{Model: &newModel}}

		if err := s.UpdateContent(ctx, "r1", patch, officerActor); err != nil {
			t.Fatalf("UpdateContent failed: %v", err)
		}

		updated := repo.contentUpdate.Report
		if updated.Vehicle.Model != "Uno" {
			t.Errorf("expected model Uno, got %s", updated.Vehicle.Model)
		}
		if updated.Vehicle.Brand != "Fiat" {
			t.Errorf("brand should be untouched, got %s", updated.Vehicle.Brand)
		}
		if updated.Priority != entity.PriorityHigh {
			t.Errorf("priority should be untouched, got %s", updated.Priority)
		}
		if repo.contentEntry.Details != "Laudo atualizado" {
			t.Errorf("unexpected details: %s", repo.contentEntry.Details)
		}
	})

	t.Run("photos group replaces the whole set", func(t *testing.T) {
		report := &entity.Report{ID: "r1", Status: entity.StatusInProgress, AssignedTo: &officerID}
		repo, s := newService(report)

		photos := []PhotoInput{
			{Category: "FRONT", PhotoData: "base64a"},
			{Category: "CHASSI", Subtype: "GRAVACAO", PhotoData: "base64b"},
		}
		patch := ContentPatch{Photos: &photos}

		if err := s.UpdateContent(ctx, "r1", patch, officerActor); err != nil {
			t.Fatalf("UpdateContent failed: %v", err)
		}

		if !repo.contentUpdate.ReplacePhotos {
			t.Errorf("expected ReplacePhotos to be set")
		}
		if len(repo.contentUpdate.Photos) != 2 {
			t.Errorf("expected 2 photos, got %d", len(repo.contentUpdate.Photos))
		}
	})

	t.Run("empty photos group clears the set", func(t *testing.T) {
		report := &entity.Report{ID: "r1", Status: entity.StatusInProgress, AssignedTo: &officerID}
		repo, s := newService(report)

		photos := []PhotoInput{}
		patch := ContentPatch{Photos: &photos}

		if err := s.UpdateContent(ctx, "r1", patch, officerActor); err != nil {
			t.Fatalf("UpdateContent failed: %v", err)
		}
		if !repo.contentUpdate.ReplacePhotos || len(repo.contentUpdate.Photos) != 0 {
			t.Errorf("expected photo set to be cleared")
		}
	})

	t.Run("photo without category is rejected", func(t *testing.T) {
		report := &entity.Report{ID: "r1", Status: entity.StatusInProgress, AssignedTo: &officerID}
		_, s := newService(report)

		photos := []PhotoInput{{PhotoData: "base64a"}}
		patch := ContentPatch{Photos: &photos}

		err := s.UpdateContent(ctx, "r1", patch, officerActor)
		var valErr *ValidationError
		if !errors.As(err, &valErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("officer cannot edit a completed report", func(t *testing.T) {
		report := &entity.Report{ID: "r1", Status: entity.StatusCompleted, AssignedTo: &officerID}
		_, s := newService(report)

		obs := "nova observação"
		patch := ContentPatch{Analysis: &AnalysisPatch{Observations: &obs}}

		err := s.UpdateContent(ctx, "r1", patch, officerActor)
		var trErr *InvalidTransitionError
		if !errors.As(err, &trErr) {
			t.Fatalf("expected InvalidTransitionError, got %v", err)
		}
	})

	t.Run("agent can edit regardless of assignment", func(t *testing.T) {
		report := &entity.Report{ID: "r1", Status: entity.StatusPending}
		_, s := newService(report)

		sig := "assinatura digital"
		patch := ContentPatch{Signature: &sig}

		if err := s.UpdateContent(ctx, "r1", patch, agentActor); err != nil {
			t.Fatalf("UpdateContent failed: %v", err)
		}
	})

	t.Run("non-assignee officer is forbidden", func(t *testing.T) {
		other := "officer-2"
		report := &entity.Report{ID: "r1", Status: entity.StatusInProgress, AssignedTo: &other}
		_, s := newService(report)

		obs := "tentativa"
		patch := ContentPatch{Analysis: &AnalysisPatch{Observations: &obs}}

		err := s.UpdateContent(ctx, "r1", patch, officerActor)
		var authErr *AuthorizationError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected AuthorizationError, got %v", err)
		}
	})

	t.Run("patching coordinates recomputes the H3 cell", func(t *testing.T) {
		report := &entity.Report{ID: "r1", Status: entity.StatusInProgress, AssignedTo: &officerID}
		repo, s := newService(report)

		lat, lng := -12.9714, -38.5014
		patch := ContentPatch{Location: &LocationPatch{Lat: &lat, Lng: &lng}}

		if err := s.UpdateContent(ctx, "r1", patch, officerActor); err != nil {
			t.Fatalf("UpdateContent failed: %v", err)
		}
		if repo.contentUpdate.Report.Location.H3Cell == "" {
			t.Errorf("expected H3 cell to be recomputed")
		}
	})
}

func TestListAndGet(t *testing.T) {
	ctx := context.Background()
	officerID := "officer-1"

	repo := &mockReportRepo{reports: map[string]*entity.Report{
		"r1": {ID: "r1", Status: entity.StatusReceived, AssignedTo: &officerID},
		"r2": {ID: "r2", Status: entity.StatusPending},
	}}
	users := &mockUserRepo{users: map[string]*entity.User{}}
	s := NewReportService(repo, users, nil, testLogger())

	t.Run("agent sees all reports", func(t *testing.T) {
		reports, err := s.List(ctx, agentActor, "")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(reports) != 2 {
			t.Errorf("expected 2 reports, got %d", len(reports))
		}
	})

	t.Run("officer sees only assigned reports", func(t *testing.T) {
		reports, err := s.List(ctx, officerActor, "")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(reports) != 1 || reports[0].ID != "r1" {
			t.Errorf("expected only r1, got %v", reports)
		}
	})

	t.Run("officer cannot open another officer's report", func(t *testing.T) {
		_, err := s.GetByID(ctx, "r2", officerActor)
		var authErr *AuthorizationError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected AuthorizationError, got %v", err)
		}
	})

	t.Run("missing report is not found", func(t *testing.T) {
		_, err := s.GetByID(ctx, "missing", agentActor)
		var nfErr *NotFoundError
		if !errors.As(err, &nfErr) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
	})
}
