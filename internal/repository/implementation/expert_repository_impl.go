package implementation

import (
	"context"
	"errors"

	"last20-backend/internal/entity"
	"last20-backend/internal/mapper"
	"last20-backend/internal/model"
	"last20-backend/internal/repository/contract"
	"last20-backend/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExpertRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ExpertMapper
}

func NewExpertRepository(db *gorm.DB) contract.ExpertRepository {
	return &ExpertRepositoryImpl{
		db:     db,
		mapper: mapper.NewExpertMapper(),
	}
}

func (r *ExpertRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ExpertRepositoryImpl) Create(ctx context.Context, profile *entity.ExpertProfile) error {
	m := r.mapper.ToModel(profile)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*profile = *r.mapper.ToEntity(m)
	return nil
}

func (r *ExpertRepositoryImpl) Update(ctx context.Context, profile *entity.ExpertProfile) error {
	m := r.mapper.ToModel(profile)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*profile = *r.mapper.ToEntity(m)
	return nil
}

func (r *ExpertRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ExpertProfile{}).Error
}

func (r *ExpertRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ExpertProfile, error) {
	var m model.ExpertProfile
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.mapper.ToEntity(&m), nil
}

func (r *ExpertRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ExpertProfile, error) {
	var models []*model.ExpertProfile
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	return r.mapper.ToEntities(models), nil
}

func (r *ExpertRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ExpertProfile{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ExpertRepositoryImpl) UpdateAggregates(ctx context.Context, id uuid.UUID, rating float64, ratingCount int) error {
	return r.db.WithContext(ctx).Model(&model.ExpertProfile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"rating":       rating,
			"rating_count": ratingCount,
		}).Error
}

func (r *ExpertRepositoryImpl) IncrementTotalSessions(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.ExpertProfile{}).
		Where("id = ?", id).
		UpdateColumn("total_sessions", gorm.Expr("total_sessions + 1")).Error
}

func (r *ExpertRepositoryImpl) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	return r.db.WithContext(ctx).Model(&model.ExpertProfile{}).
		Where("id = ?", id).
		Update("available", available).Error
}
