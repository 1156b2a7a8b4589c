package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Beatriz-ux/laudos-dpt/internal/delivery/http/middleware"
	"github.com/Beatriz-ux/laudos-dpt/internal/domain/entity"
	"github.com/Beatriz-ux/laudos-dpt/internal/service"
)

// Stub de ReportService: só GetByID importa para estes cenários
type stubReportService struct {
	service.ReportService
	getByID func(reportID string, actor entity.Actor) (*entity.Report, error)
}

func (s *stubReportService) GetByID(ctx context.Context, reportID string, actor entity.Actor) (*entity.Report, error) {
	return s.getByID(reportID, actor)
}

type stubStorageService struct {
	calls int
}

func (s *stubStorageService) Initialize(ctx context.Context) error { return nil }
func (s *stubStorageService) GetPhotoUploadURL(ctx context.Context, reportID, fileName string) (*service.PhotoUploadSlot, error) {
	s.calls++
	return &service.PhotoUploadSlot{UploadURL: "https://minio.local/signed", ObjectKey: reportID + "/obj.jpg"}, nil
}
func (s *stubStorageService) GetPhotoDownloadURL(ctx context.Context, objectKey string) (string, error) {
	return "", nil
}

func uploadURLRouter(reports *stubReportService, storage *stubStorageService, actor entity.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ActorKey, actor)
	})
	h := NewReportHandler(reports, storage)
	r.GET("/reports/:id/upload-url", h.GetUploadURL)
	return r
}

func TestGetUploadURLVisibility(t *testing.T) {
	officer := entity.Actor{ID: "officer-1", Name: "Perito Silva", Role: entity.RoleOfficer}

	t.Run("non-assignee officer gets 403 and no slot is minted", func(t *testing.T) {
		reports := &stubReportService{getByID: func(reportID string, actor entity.Actor) (*entity.Report, error) {
			return nil, service.NewAuthorizationError("Você não tem permissão para ver este laudo")
		}}
		storage := &stubStorageService{}
		r := uploadURLRouter(reports, storage, officer)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/reports/r1/upload-url?file_name=foto.jpg", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", w.Code)
		}
		if storage.calls != 0 {
			t.Errorf("storage service should not be reached")
		}
	})

	t.Run("missing report gets 404", func(t *testing.T) {
		reports := &stubReportService{getByID: func(reportID string, actor entity.Actor) (*entity.Report, error) {
			return nil, service.NewNotFoundError("Laudo não encontrado")
		}}
		storage := &stubStorageService{}
		r := uploadURLRouter(reports, storage, officer)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/reports/missing/upload-url?file_name=foto.jpg", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", w.Code)
		}
		if storage.calls != 0 {
			t.Errorf("storage service should not be reached")
		}
	})

	t.Run("visible report gets a slot", func(t *testing.T) {
		assignee := "officer-1"
		reports := &stubReportService{getByID: func(reportID string, actor entity.Actor) (*entity.Report, error) {
			return &entity.Report{ID: reportID, AssignedTo: &assignee}, nil
		}}
		storage := &stubStorageService{}
		r := uploadURLRouter(reports, storage, officer)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/reports/r1/upload-url?file_name=foto.jpg", nil)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		if storage.calls != 1 {
			t.Errorf("expected one storage call, got %d", storage.calls)
		}

		var body struct {
			Success bool `json:"success"`
			Data    struct {
				UploadURL string `json:"upload_url"`
				ObjectKey string `json:"object_key"`
			} `json:"data"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if !body.Success || body.Data.UploadURL == "" {
			t.Errorf("unexpected body: %s", w.Body.String())
		}
	})
}
