package repository

import (
	"context"
	"time"

	"comercioapp/internal/model"

	"gorm.io/gorm"
)

type MovimientoPendienteRepository interface {
	Create(ctx context.Context, m *model.MovimientoPendiente) error
	Update(ctx context.Context, m *model.MovimientoPendiente) error
	FindByID(ctx context.Context, id string) (*model.MovimientoPendiente, error)
	// ListDue returns pendiente rows whose next_retry_at is not after now, oldest first.
	ListDue(ctx context.Context, now time.Time, limit int) ([]model.MovimientoPendiente, error)
	ListByEstado(ctx context.Context, estado string, limit int) ([]model.MovimientoPendiente, error)
	CountByEstado(ctx context.Context) (map[string]int64, error)
}

type movimientoPendienteRepo struct{ db *gorm.DB }

func NewMovimientoPendienteRepository(db *gorm.DB) MovimientoPendienteRepository {
	return &movimientoPendienteRepo{db: db}
}

func (r *movimientoPendienteRepo) Create(ctx context.Context, m *model.MovimientoPendiente) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *movimientoPendienteRepo) Update(ctx context.Context, m *model.MovimientoPendiente) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *movimientoPendienteRepo) FindByID(ctx context.Context, id string) (*model.MovimientoPendiente, error) {
	var m model.MovimientoPendiente
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *movimientoPendienteRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]model.MovimientoPendiente, error) {
	var rows []model.MovimientoPendiente
	err := r.db.WithContext(ctx).
		Where("estado = ? AND next_retry_at IS NOT NULL AND next_retry_at <= ?", model.PendienteEstadoPendiente, now).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *movimientoPendienteRepo) ListByEstado(ctx context.Context, estado string, limit int) ([]model.MovimientoPendiente, error) {
	var rows []model.MovimientoPendiente
	q := r.db.WithContext(ctx).Order("created_at ASC")
	if estado != "" {
		q = q.Where("estado = ?", estado)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&rows).Error
	return rows, err
}

func (r *movimientoPendienteRepo) CountByEstado(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Estado string
		Total  int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.MovimientoPendiente{}).
		Select("estado, COUNT(*) AS total").
		Group("estado").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Estado] = row.Total
	}
	return out, nil
}
