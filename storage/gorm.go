package storage

import (
	"context"
	"errors"
	"time"

	"geniustrading/models"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gorm is the relational Storage used in production (MySQL or PostgreSQL).
type Gorm struct {
	db *gorm.DB
}

var _ Storage = (*Gorm)(nil)

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (s *Gorm) WithTx(ctx context.Context, fn func(Storage) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Gorm{db: tx})
	})
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return ErrDuplicate
	}
	return err
}

// Users

func (s *Gorm) CreateUser(ctx context.Context, u *models.User) error {
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

func (s *Gorm) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Gorm) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Gorm) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Gorm) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error
	return users, translate(err)
}

func (s *Gorm) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&n).Error
	return n, translate(err)
}

func (s *Gorm) updateUser(ctx context.Context, id uint, column string, value interface{}) (*models.User, error) {
	db := s.db.WithContext(ctx)
	var u models.User
	if err := db.First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	if err := db.Model(&u).Update(column, value).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *Gorm) UpdateUserRole(ctx context.Context, id uint, role string) (*models.User, error) {
	return s.updateUser(ctx, id, "role", role)
}

func (s *Gorm) UpdateUserKycStatus(ctx context.Context, id uint, status string) (*models.User, error) {
	return s.updateUser(ctx, id, "kyc_status", status)
}

func (s *Gorm) SetUserBalance(ctx context.Context, id uint, balance int64) (*models.User, error) {
	return s.updateUser(ctx, id, "balance", balance)
}

func (s *Gorm) CreditBalance(ctx context.Context, id uint, amount int64) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return s.userExists(ctx, id)
	}
	return nil
}

func (s *Gorm) DebitBalance(ctx context.Context, id uint, amount int64) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND balance >= ?", id, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetUser(ctx, id); err != nil {
			return err
		}
		return ErrInsufficientFunds
	}
	return nil
}

func (s *Gorm) DebitBalanceFloored(ctx context.Context, id uint, amount int64) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("balance", gorm.Expr("GREATEST(balance - ?, 0)", amount))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return s.userExists(ctx, id)
	}
	return nil
}

// userExists tells a missing user from an UPDATE that matched but left the
// row unchanged; MySQL reports changed rows, not matched rows.
func (s *Gorm) userExists(ctx context.Context, id uint) error {
	_, err := s.GetUser(ctx, id)
	return err
}

// Transactions

func (s *Gorm) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	return translate(s.db.WithContext(ctx).Create(tx).Error)
}

func (s *Gorm) GetTransaction(ctx context.Context, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := s.db.WithContext(ctx).First(&tx, id).Error; err != nil {
		return nil, translate(err)
	}
	return &tx, nil
}

func (s *Gorm) GetTransactionForUpdate(ctx context.Context, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	err := s.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&tx, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &tx, nil
}

func (s *Gorm) ListTransactionsByUser(ctx context.Context, userID uint) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&txs).Error
	return txs, translate(err)
}

func (s *Gorm) ListTransactions(ctx context.Context, status string) ([]models.Transaction, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var txs []models.Transaction
	return txs, translate(q.Find(&txs).Error)
}

func (s *Gorm) UpdateTransactionStatus(ctx context.Context, id uint, status, adminNotes string) (*models.Transaction, error) {
	db := s.db.WithContext(ctx)
	var tx models.Transaction
	if err := db.First(&tx, id).Error; err != nil {
		return nil, translate(err)
	}
	updates := map[string]interface{}{"status": status}
	if adminNotes != "" {
		updates["admin_notes"] = adminNotes
	}
	if err := db.Model(&tx).Updates(updates).Error; err != nil {
		return nil, translate(err)
	}
	return &tx, nil
}

// Investments

func (s *Gorm) CreateInvestment(ctx context.Context, inv *models.Investment) error {
	return translate(s.db.WithContext(ctx).Create(inv).Error)
}

func (s *Gorm) ListInvestmentsByUser(ctx context.Context, userID uint) ([]models.Investment, error) {
	var out []models.Investment
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&out).Error
	return out, translate(err)
}

func (s *Gorm) ListInvestments(ctx context.Context) ([]models.Investment, error) {
	var out []models.Investment
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error
	return out, translate(err)
}

// KYC

func (s *Gorm) CreateKyc(ctx context.Context, k *models.Kyc) error {
	return translate(s.db.WithContext(ctx).Create(k).Error)
}

func (s *Gorm) GetKyc(ctx context.Context, id uint) (*models.Kyc, error) {
	var k models.Kyc
	if err := s.db.WithContext(ctx).First(&k, id).Error; err != nil {
		return nil, translate(err)
	}
	return &k, nil
}

func (s *Gorm) GetLatestKycByUser(ctx context.Context, userID uint) (*models.Kyc, error) {
	var k models.Kyc
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC").First(&k).Error
	if err != nil {
		return nil, translate(err)
	}
	return &k, nil
}

func (s *Gorm) ListKyc(ctx context.Context, status string) ([]models.Kyc, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.Kyc
	return out, translate(q.Find(&out).Error)
}

func (s *Gorm) UpdateKycStatus(ctx context.Context, id uint, status, rejectionReason string) (*models.Kyc, error) {
	db := s.db.WithContext(ctx)
	var k models.Kyc
	if err := db.First(&k, id).Error; err != nil {
		return nil, translate(err)
	}
	updates := map[string]interface{}{"status": status}
	if rejectionReason != "" {
		updates["rejection_reason"] = rejectionReason
	}
	if err := db.Model(&k).Updates(updates).Error; err != nil {
		return nil, translate(err)
	}
	return &k, nil
}

// Deposit addresses and testimonials

func (s *Gorm) ListDepositAddresses(ctx context.Context) ([]models.DepositAddress, error) {
	var out []models.DepositAddress
	err := s.db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, translate(err)
}

func (s *Gorm) GetDepositAddressByMethod(ctx context.Context, method string) (*models.DepositAddress, error) {
	var a models.DepositAddress
	if err := s.db.WithContext(ctx).Where("method = ?", method).Order("id ASC").First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *Gorm) CreateDepositAddress(ctx context.Context, a *models.DepositAddress) error {
	return translate(s.db.WithContext(ctx).Create(a).Error)
}

func (s *Gorm) UpdateDepositAddress(ctx context.Context, id uint, address string) (*models.DepositAddress, error) {
	db := s.db.WithContext(ctx)
	var a models.DepositAddress
	if err := db.First(&a, id).Error; err != nil {
		return nil, translate(err)
	}
	if err := db.Model(&a).Update("address", address).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (s *Gorm) ListTestimonials(ctx context.Context) ([]models.Testimonial, error) {
	var out []models.Testimonial
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error
	return out, translate(err)
}

func (s *Gorm) CreateTestimonial(ctx context.Context, t *models.Testimonial) error {
	return translate(s.db.WithContext(ctx).Create(t).Error)
}

// Sessions

func (s *Gorm) CreateSession(ctx context.Context, sess *models.Session) error {
	return translate(s.db.WithContext(ctx).Create(sess).Error)
}

func (s *Gorm) GetSession(ctx context.Context, id string) (*models.Session, error) {
	var sess models.Session
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&sess).Error; err != nil {
		return nil, translate(err)
	}
	return &sess, nil
}

func (s *Gorm) TouchSession(ctx context.Context, id string, lastSeen, expiresAt time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"last_seen_at": lastSeen, "expires_at": expiresAt})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Gorm) DeleteSession(ctx context.Context, id string) error {
	return translate(s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{}).Error)
}

func (s *Gorm) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.Session{})
	return res.RowsAffected, translate(res.Error)
}
