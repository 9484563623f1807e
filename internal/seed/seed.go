// Package seed provisions the rows a fresh self-hosted install needs: a
// default mosque, its chart of accounts, and optionally a first admin.
package seed

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authdomain "github.com/masjidkita/masjidkita/internal/auth/domain"
	"github.com/masjidkita/masjidkita/internal/auth/password"
	financedomain "github.com/masjidkita/masjidkita/internal/finance/domain"
	mosquedomain "github.com/masjidkita/masjidkita/internal/mosque/domain"
)

const (
	defaultMosqueName = "Masjid Utama"
	defaultMosqueSlug = "masjid-utama"
	defaultAdminEmail = "admin@masjidkita.local"
	adminPasswordEnv  = "BOOTSTRAP_ADMIN_PASSWORD"
)

// Seeding runs at startup, outside the fx graph, so it keeps its own id node.
var node = func() *snowflake.Node {
	n, err := snowflake.NewNode(1023)
	if err != nil {
		panic(err)
	}
	return n
}()

// EnsureDefaultMosque creates the default mosque if none exists.
func EnsureDefaultMosque(conn *gorm.DB) error {
	return ensureMosque(conn, node.Generate())
}

// EnsureDefaultMosqueWithID creates the default mosque under a fixed id,
// used when the install pins DEFAULT_MOSQUE.
func EnsureDefaultMosqueWithID(conn *gorm.DB, id int64) error {
	return ensureMosque(conn, snowflake.ID(id))
}

func ensureMosque(conn *gorm.DB, id snowflake.ID) error {
	var existing mosquedomain.Mosque
	err := conn.Where("is_default = ?", true).First(&existing).Error
	if err == nil {
		return ensureChartOfAccounts(conn, existing.ID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	m := mosquedomain.Mosque{
		ID:        id,
		Name:      defaultMosqueName,
		Slug:      defaultMosqueSlug,
		IsDefault: true,
	}
	if err := conn.Create(&m).Error; err != nil {
		return fmt.Errorf("seed default mosque: %w", err)
	}
	zap.L().Info("default mosque created", zap.Int64("mosque_id", int64(m.ID)))
	return ensureChartOfAccounts(conn, m.ID)
}

// ensureChartOfAccounts provisions the accounts the khairat and zakat
// workflows post against.
func ensureChartOfAccounts(conn *gorm.DB, mosqueID snowflake.ID) error {
	accounts := []financedomain.Account{
		{Code: financedomain.CodeCash, Name: "Cash", Type: financedomain.AccountAsset},
		{Code: financedomain.CodeKhairatIncome, Name: "Khairat Contributions", Type: financedomain.AccountIncome},
		{Code: financedomain.CodeZakatIncome, Name: "Zakat Collections", Type: financedomain.AccountIncome},
		{Code: financedomain.CodeZakatDistributed, Name: "Zakat Distributed", Type: financedomain.AccountExpense},
	}
	for _, a := range accounts {
		var count int64
		err := conn.Model(&financedomain.Account{}).
			Where("mosque_id = ? AND code = ?", mosqueID, a.Code).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		a.ID = node.Generate()
		a.MosqueID = mosqueID
		if err := conn.Create(&a).Error; err != nil {
			return fmt.Errorf("seed account %s: %w", a.Code, err)
		}
	}
	return nil
}

// EnsureDefaultMosqueAndAdmin additionally provisions a platform admin
// account. The initial password comes from BOOTSTRAP_ADMIN_PASSWORD, or is
// generated and logged once.
func EnsureDefaultMosqueAndAdmin(conn *gorm.DB) error {
	if err := EnsureDefaultMosque(conn); err != nil {
		return err
	}

	var mosque mosquedomain.Mosque
	if err := conn.Where("is_default = ?", true).First(&mosque).Error; err != nil {
		return err
	}

	var admin authdomain.User
	err := conn.Where("email = ?", defaultAdminEmail).First(&admin).Error
	if err == nil {
		return ensureMosqueAdmin(conn, mosque.ID, admin.ID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	pw := os.Getenv(adminPasswordEnv)
	generated := pw == ""
	if generated {
		buf := make([]byte, 12)
		if _, err := rand.Read(buf); err != nil {
			return err
		}
		pw = base64.RawURLEncoding.EncodeToString(buf)
	}
	hash, err := password.Hash(pw)
	if err != nil {
		return err
	}

	admin = authdomain.User{
		ID:           node.Generate(),
		Email:        defaultAdminEmail,
		DisplayName:  "Administrator",
		Role:         authdomain.RolePlatformAdmin,
		PasswordHash: &hash,
		IsDefault:    true,
	}
	if err := conn.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed default admin: %w", err)
	}
	if generated {
		zap.L().Warn("default admin created with generated password; change it",
			zap.String("email", defaultAdminEmail),
			zap.String("password", pw),
		)
	} else {
		zap.L().Info("default admin created", zap.String("email", defaultAdminEmail))
	}
	return ensureMosqueAdmin(conn, mosque.ID, admin.ID)
}

func ensureMosqueAdmin(conn *gorm.DB, mosqueID, userID snowflake.ID) error {
	var count int64
	err := conn.Model(&mosquedomain.MosqueAdmin{}).
		Where("mosque_id = ? AND user_id = ?", mosqueID, userID).
		Count(&count).Error
	if err != nil || count > 0 {
		return err
	}
	return conn.Create(&mosquedomain.MosqueAdmin{
		ID:       node.Generate(),
		MosqueID: mosqueID,
		UserID:   userID,
	}).Error
}
