//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/paygate-next/internal/constants"
	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/tenancy"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := models.AllModels()
	_ = db.Migrator().DropTable(cleanupModels...)
	if err := models.MigrateWith(db); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresDuplicateKeyClassification(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	tenants := NewTenantRepository(db)
	acme := seedTenant(t, tenants, "acme")

	dup := &models.Tenant{Name: "dup", Subdomain: "acme", ContactEmail: "dup@example.com", IsActive: true}
	if err := tenants.Create(dup); !isDuplicateKeyError(err) {
		t.Fatalf("postgres unique violation not classified: %v", err)
	}

	accounts := NewPaymentAccountRepository(db)
	account := seedAccount(t, accounts, acme.ID, "main")
	repo := NewTransactionRepository(db)
	scope := tenancy.Resolved(acme.ID)
	seedTransaction(t, repo, scope, account.ID, "pg-txn-1", "100.00", acme.CreatedAt)

	err := repo.Transaction(func(tx *gorm.DB) error {
		locked, err := repo.WithTx(tx).GetByTransactionIDForUpdate(scope, "pg-txn-1")
		if err != nil {
			return err
		}
		if locked == nil || locked.Status != constants.TransactionStatusCompleted {
			t.Fatalf("locked row not visible: %+v", locked)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("lock transaction failed: %v", err)
	}
}

func TestPostgresForUpdateBlocksSecondLocker(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(4)

	tenants := NewTenantRepository(db)
	acme := seedTenant(t, tenants, "acme")
	account := seedAccount(t, NewPaymentAccountRepository(db), acme.ID, "main")
	repo := NewTransactionRepository(db)
	scope := tenancy.Resolved(acme.ID)
	seedTransaction(t, repo, scope, account.ID, "pg-lock-1", "100.00", acme.CreatedAt)

	holder := db.Begin()
	if holder.Error != nil {
		t.Fatalf("begin holder failed: %v", holder.Error)
	}
	locked, err := repo.WithTx(holder).GetByTransactionIDForUpdate(scope, "pg-lock-1")
	if err != nil || locked == nil {
		holder.Rollback()
		t.Fatalf("holder lock failed: %v", err)
	}

	acquired := make(chan error, 1)
	go func() {
		acquired <- repo.Transaction(func(tx *gorm.DB) error {
			_, err := repo.WithTx(tx).GetByTransactionIDForUpdate(scope, "pg-lock-1")
			return err
		})
	}()

	select {
	case err := <-acquired:
		holder.Rollback()
		t.Fatalf("second locker should wait for the holder, returned early: %v", err)
	case <-time.After(300 * time.Millisecond):
	}

	if err := holder.Commit().Error; err != nil {
		t.Fatalf("commit holder failed: %v", err)
	}
	select {
	case err := <-acquired:
		if err != nil {
			t.Fatalf("second locker failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("second locker never acquired the row")
	}
}
