package records

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errMissingDatabase   = errors.New("database handle is required")
	errMissingIDProvider = errors.New("id provider is required")
	errMissingRecordID   = errors.New("record identifier is required")
	noOpLogger           = zap.NewNop()
)

// ErrDuplicateRecord indicates an insert collided with an existing identifier.
var ErrDuplicateRecord = errors.New("records: duplicate record id")

// ErrRecordNotFound indicates no record exists for the requested identifier.
var ErrRecordNotFound = errors.New("records: record not found")

type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew   = "records.service.new"
	opSaveRecord   = "records.save"
	opListRecords  = "records.list"
	opGetRecord    = "records.get"
	opDeleteRecord = "records.delete"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

type ServiceConfig struct {
	Database   *gorm.DB
	IDProvider IDProvider
	Logger     *zap.Logger
}

type IDProvider interface {
	NewID() (string, error)
}

// Service persists and retrieves administrative records.
type Service struct {
	db         *gorm.DB
	idProvider IDProvider
	logger     *zap.Logger
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}
	if cfg.IDProvider == nil {
		return nil, newServiceError(opServiceNew, "missing_id_provider", errMissingIDProvider)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Service{
		db:         cfg.Database,
		idProvider: cfg.IDProvider,
		logger:     logger,
	}, nil
}

// SaveRecord inserts a single record. The identifier is normally minted by the
// submitting client; one is generated when absent. A collision with an
// existing identifier fails with ErrDuplicateRecord and leaves the stored row
// untouched.
func (s *Service) SaveRecord(ctx context.Context, record Record) (Record, error) {
	record.ID = strings.TrimSpace(record.ID)
	if record.ID == "" {
		id, err := s.idProvider.NewID()
		if err != nil {
			s.logError(opSaveRecord, "id_generation_failed", err)
			return Record{}, newServiceError(opSaveRecord, "id_generation_failed", err)
		}
		record.ID = id
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.logError(opSaveRecord, "duplicate_id", err, zap.String("record_id", record.ID))
			return Record{}, newServiceError(opSaveRecord, "duplicate_id", ErrDuplicateRecord)
		}
		s.logError(opSaveRecord, "insert_failed", err, zap.String("record_id", record.ID))
		return Record{}, newServiceError(opSaveRecord, "insert_failed", err)
	}

	return record, nil
}

// ListRecords returns every persisted record in the store's natural order.
// Filtering and search happen in the browser client over the full set.
func (s *Service) ListRecords(ctx context.Context) ([]Record, error) {
	var stored []Record
	if err := s.db.WithContext(ctx).Find(&stored).Error; err != nil {
		s.logError(opListRecords, "query_failed", err)
		return nil, newServiceError(opListRecords, "query_failed", err)
	}
	return stored, nil
}

// GetRecord returns the record for the provided identifier.
func (s *Service) GetRecord(ctx context.Context, id string) (Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, newServiceError(opGetRecord, "missing_record_id", errMissingRecordID)
	}

	var stored Record
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, newServiceError(opGetRecord, "not_found", ErrRecordNotFound)
	}
	if err != nil {
		s.logError(opGetRecord, "query_failed", err, zap.String("record_id", id))
		return Record{}, newServiceError(opGetRecord, "query_failed", err)
	}
	return stored, nil
}

// DeleteRecord removes the record for the provided identifier. Deleting an
// identifier that does not exist succeeds without effect.
func (s *Service) DeleteRecord(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return newServiceError(opDeleteRecord, "missing_record_id", errMissingRecordID)
	}

	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Record{}).Error; err != nil {
		s.logError(opDeleteRecord, "delete_failed", err, zap.String("record_id", id))
		return newServiceError(opDeleteRecord, "delete_failed", err)
	}
	return nil
}

func (s *Service) loggerOrDefault() *zap.Logger {
	if s == nil || s.logger == nil {
		return noOpLogger
	}
	return s.logger
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.loggerOrDefault().Error("records service error", attrs...)
}
