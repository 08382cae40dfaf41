package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/schoolkit/edupay/internal/payment/domain"
)

type GormTransactionRepository struct {
	db *gorm.DB
}

func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

func (r *GormTransactionRepository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&domain.Transaction{},
		&domain.Fee{},
		&domain.Invoice{},
		&domain.Setting{},
	)
}

func (r *GormTransactionRepository) Create(tx *domain.Transaction) error {
	return r.db.Create(tx).Error
}

func (r *GormTransactionRepository) FindByID(id uint) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := r.db.First(&tx, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *GormTransactionRepository) FindByTransactionNumber(number string) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := r.db.Where("transaction_number = ?", number).First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *GormTransactionRepository) FindByStudentID(studentID uint, limit, offset int) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	err := r.db.Where("student_id = ?", studentID).
		Limit(limit).Offset(offset).
		Order("created_at DESC").
		Find(&txs).Error
	return txs, err
}

func (r *GormTransactionRepository) FindAll(limit, offset int) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	err := r.db.Limit(limit).Offset(offset).
		Order("created_at DESC").
		Find(&txs).Error
	return txs, err
}

// Complete flips the row to completed. The WHERE guard keeps completed rows
// from being touched again, so the status never regresses.
func (r *GormTransactionRepository) Complete(tx *domain.Transaction) error {
	return r.db.Model(&domain.Transaction{}).
		Where("id = ? AND status <> ?", tx.ID, domain.StatusCompleted).
		Updates(map[string]interface{}{
			"status":                 domain.StatusCompleted,
			"gateway_transaction_id": tx.GatewayTransactionID,
			"gateway_response":       tx.GatewayResponse,
			"payment_date":           tx.PaymentDate,
			"verified_at":            tx.VerifiedAt,
		}).Error
}

type GormFeeRepository struct {
	db *gorm.DB
}

func NewGormFeeRepository(db *gorm.DB) *GormFeeRepository {
	return &GormFeeRepository{db: db}
}

func (r *GormFeeRepository) FindByID(id uint) (*domain.Fee, error) {
	var fee domain.Fee
	err := r.db.First(&fee, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &fee, nil
}

func (r *GormFeeRepository) MarkPaid(id uint, method, transactionID string) error {
	now := time.Now()
	return r.db.Model(&domain.Fee{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         domain.FeeStatusPaid,
			"payment_method": method,
			"transaction_id": transactionID,
			"paid_at":        &now,
		}).Error
}

type GormInvoiceRepository struct {
	db *gorm.DB
}

func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func (r *GormInvoiceRepository) FindByID(id uint) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.First(&invoice, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *GormInvoiceRepository) MarkPaid(id uint, method, transactionID string) error {
	now := time.Now()
	return r.db.Model(&domain.Invoice{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":         domain.FeeStatusPaid,
			"payment_method": method,
			"transaction_id": transactionID,
			"paid_at":        &now,
		}).Error
}

// GormSettingRepository reads the admin-editable settings store. Every call
// goes to the database; gateway credentials are intentionally never cached.
type GormSettingRepository struct {
	db *gorm.DB
}

func NewGormSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

func (r *GormSettingRepository) Value(ctx context.Context, key string) (string, error) {
	var setting domain.Setting
	err := r.db.WithContext(ctx).Where("setting_key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}
