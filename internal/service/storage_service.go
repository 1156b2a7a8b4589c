package service

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Beatriz-ux/laudos-dpt/internal/platform/storage"
)

const (
	photoBucket       = "laudo-photos"
	presignedURLTTL   = 15 * time.Minute
	downloadURLExpiry = 1 * time.Hour
)

// PhotoUploadSlot é a URL pré-assinada devolvida ao cliente e o
// caminho final do objeto a gravar no laudo
type PhotoUploadSlot struct {
	UploadURL string `json:"upload_url"`
	ObjectKey string `json:"object_key"`
}

// StorageService emite URLs pré-assinadas para upload e leitura das
// fotos de veículos. O backend nunca recebe os bytes da imagem.
type StorageService interface {
	Initialize(ctx context.Context) error
	GetPhotoUploadURL(ctx context.Context, reportID, fileName string) (*PhotoUploadSlot, error)
	GetPhotoDownloadURL(ctx context.Context, objectKey string) (string, error)
}

type storageService struct {
	storage storage.Storage
	log     *logrus.Entry
}

func NewStorageService(st storage.Storage, log *logrus.Logger) StorageService {
	return &storageService{
		storage: st,
		log:     logrus.NewEntry(log),
	}
}

// O serviço fica de pé mesmo sem MinIO (modo degradado); cada
// operação devolve um erro tipado em vez de desreferenciar nil
func (s *storageService) unavailable() error {
	return NewUnavailableError("Armazenamento de fotos indisponível")
}

// Initialize cria o bucket de fotos se ainda não existir
func (s *storageService) Initialize(ctx context.Context) error {
	const op = "service.Storage.Initialize"

	if s.storage == nil {
		return s.unavailable()
	}

	exists, err := s.storage.BucketExists(ctx, photoBucket)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		if err := s.storage.MakeBucket(ctx, photoBucket); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		s.log.WithField("bucket", photoBucket).Info("photo bucket created")
	}
	return nil
}

func (s *storageService) GetPhotoUploadURL(ctx context.Context, reportID, fileName string) (*PhotoUploadSlot, error) {
	const op = "service.Storage.GetPhotoUploadURL"

	if s.storage == nil {
		return nil, s.unavailable()
	}
	if reportID == "" || fileName == "" {
		return nil, NewValidationError("file_name", "report_id e file_name são obrigatórios")
	}

	ext := path.Ext(fileName)
	objectKey := fmt.Sprintf("%s/%s%s", reportID, uuid.New().String(), ext)

	url, err := s.storage.GetPresignedUploadURL(ctx, photoBucket, objectKey, presignedURLTTL)
	if err != nil {
		s.log.WithField("operation", op).WithError(err).Errorf("%s: failed to presign upload", op)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &PhotoUploadSlot{
		UploadURL: url,
		ObjectKey: objectKey,
	}, nil
}

func (s *storageService) GetPhotoDownloadURL(ctx context.Context, objectKey string) (string, error) {
	const op = "service.Storage.GetPhotoDownloadURL"

	if s.storage == nil {
		return "", s.unavailable()
	}
	if objectKey == "" {
		return "", NewValidationError("object_key", "object_key é obrigatório")
	}

	url, err := s.storage.GetPresignedDownloadURL(ctx, photoBucket, objectKey, downloadURLExpiry)
	if err != nil {
		s.log.WithField("operation", op).WithError(err).Errorf("%s: failed to presign download", op)
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return url, nil
}
