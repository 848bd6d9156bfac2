package db

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Admin 定义了后台管理员账号
type Admin struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// NormalizeEmail lower-cases and trims an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashPassword returns the bcrypt hash stored for admins.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// EnsureAdmin 存在性检查：若提供的邮箱与密码均非空且不存在对应账号，则创建一个 bcrypt 哈希的管理员。
func EnsureAdmin(email, password string) error {
	trimmedEmail := NormalizeEmail(email)
	if trimmedEmail == "" || password == "" {
		return nil
	}

	if DB == nil {
		return errors.New("database not initialized")
	}

	var existing Admin
	if err := DB.Where("email = ?", trimmedEmail).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := HashPassword(password)
		if err != nil {
			return err
		}

		return DB.Create(&Admin{Email: trimmedEmail, Password: hashed}).Error
	}

	return nil
}

// UpsertAdmin creates the admin or resets the password of an existing one.
func UpsertAdmin(gdb *gorm.DB, email, password string) (*Admin, bool, error) {
	trimmedEmail := NormalizeEmail(email)
	// 密码原样保存，不做 trim
	if trimmedEmail == "" || password == "" {
		return nil, false, errors.New("email and password are required")
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return nil, false, err
	}

	var admin Admin
	err = gdb.Where("email = ?", trimmedEmail).First(&admin).Error
	switch {
	case err == nil:
		admin.Password = hashed
		if err := gdb.Save(&admin).Error; err != nil {
			return nil, false, err
		}
		return &admin, false, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		admin = Admin{Email: trimmedEmail, Password: hashed}
		if err := gdb.Create(&admin).Error; err != nil {
			return nil, false, err
		}
		return &admin, true, nil
	default:
		return nil, false, err
	}
}
