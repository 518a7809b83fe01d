package repository

import (
	"errors"
	"time"

	"github.com/freshcart-next/internal/models"

	"gorm.io/gorm"
)

// PaymentIntentRepository 支付意图数据访问接口
type PaymentIntentRepository interface {
	Create(record *models.PaymentIntent) error
	GetByIntentID(intentID string) (*models.PaymentIntent, error)
	UpdateStatus(intentID string, status string) error
	ListStaleByStatus(statuses []string, before time.Time) ([]models.PaymentIntent, error)
	WithTx(tx *gorm.DB) *GormPaymentIntentRepository
}

// GormPaymentIntentRepository GORM 实现
type GormPaymentIntentRepository struct {
	db *gorm.DB
}

// NewPaymentIntentRepository 创建支付意图仓库
func NewPaymentIntentRepository(db *gorm.DB) *GormPaymentIntentRepository {
	return &GormPaymentIntentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPaymentIntentRepository) WithTx(tx *gorm.DB) *GormPaymentIntentRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentIntentRepository{db: tx}
}

// Create 落库支付意图（仅在网关确认创建之后调用）
func (r *GormPaymentIntentRepository) Create(record *models.PaymentIntent) error {
	if record == nil {
		return nil
	}
	return r.db.Create(record).Error
}

// GetByIntentID 根据网关意图 ID 获取记录
func (r *GormPaymentIntentRepository) GetByIntentID(intentID string) (*models.PaymentIntent, error) {
	var record models.PaymentIntent
	if err := r.db.Where("intent_id = ?", intentID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// UpdateStatus 更新意图状态
func (r *GormPaymentIntentRepository) UpdateStatus(intentID string, status string) error {
	return r.db.Model(&models.PaymentIntent{}).
		Where("intent_id = ?", intentID).
		Update("status", status).Error
}

// ListStaleByStatus 查询指定状态且创建时间早于 before 的意图（孤儿回收）
func (r *GormPaymentIntentRepository) ListStaleByStatus(statuses []string, before time.Time) ([]models.PaymentIntent, error) {
	var records []models.PaymentIntent
	if len(statuses) == 0 {
		return records, nil
	}
	if err := r.db.Where("status IN ? AND created_at < ?", statuses, before).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
