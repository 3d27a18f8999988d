package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vendorhub/console/internal/domain/refund"
	"github.com/vendorhub/console/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// defaultHistoryLimit bounds FindByTicket when the caller passes no limit
const defaultHistoryLimit = 50

// GormRefundSubmissionRepository implements refund.SubmissionRepository using GORM
type GormRefundSubmissionRepository struct {
	db *gorm.DB
}

// NewGormRefundSubmissionRepository creates a new GormRefundSubmissionRepository
func NewGormRefundSubmissionRepository(db *gorm.DB) *GormRefundSubmissionRepository {
	return &GormRefundSubmissionRepository{db: db}
}

// Save inserts the record. A second record for the same event is ignored.
func (r *GormRefundSubmissionRepository) Save(ctx context.Context, record *refund.SubmissionRecord) error {
	if record == nil {
		return errors.New("refund submission record is nil")
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	model, err := models.RefundSubmissionModelFromDomain(record)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(model).Error; err != nil {
		return fmt.Errorf("failed to save refund submission: %w", err)
	}
	return nil
}

// FindByTicket returns the newest submissions of a ticket first
func (r *GormRefundSubmissionRepository) FindByTicket(ctx context.Context, ticketID int64, limit int) ([]refund.SubmissionRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	var rows []models.RefundSubmissionModel
	if err := r.db.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Order("created_at DESC").
		Order("id").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list refund submissions: %w", err)
	}

	records := make([]refund.SubmissionRecord, 0, len(rows))
	for i := range rows {
		rec, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, nil
}

// FindByEventID returns nil, nil when the event has not been recorded
func (r *GormRefundSubmissionRepository) FindByEventID(ctx context.Context, eventID uuid.UUID) (*refund.SubmissionRecord, error) {
	var model models.RefundSubmissionModel
	if err := r.db.WithContext(ctx).
		First(&model, "event_id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find refund submission: %w", err)
	}
	return model.ToDomain()
}

var _ refund.SubmissionRepository = (*GormRefundSubmissionRepository)(nil)
