package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/paygate-next/internal/app"
	"github.com/paygate-next/internal/config"
	"github.com/paygate-next/internal/logger"
	"github.com/paygate-next/internal/models"

	"github.com/gin-gonic/gin"
)

// weakSecretMarkers 示例配置里的占位密钥片段
var weakSecretMarkers = []string{"change-me", "change-in-production", "your-secret-key"}

func main() {
	rawMode := flag.String("mode", string(app.ModeAll), "启动模式: all (默认), api, worker")
	flag.Parse()

	mode, err := app.ParseMode(*rawMode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	fmt.Printf("\033[1;36mPayGate Next 多租户支付账本\033[0m  mode=%s\n", mode)

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := checkSecrets(cfg); err != nil {
		stdLog.Fatalf("%v", err)
	}
	if err := openDatabase(cfg); err != nil {
		stdLog.Fatalf("%v", err)
	}
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

// checkSecrets release 模式拒绝占位密钥，其余模式只告警
func checkSecrets(cfg *config.Config) error {
	secrets := map[string]string{
		"JWT secret": cfg.JWT.SecretKey,
		"凭据加密主密钥":    cfg.Security.SecretKey,
	}
	for name, secret := range secrets {
		if !isWeakSecret(secret) {
			continue
		}
		if cfg.Server.Mode == "release" {
			return fmt.Errorf("%s 过弱或仍为默认值，请在生产环境中配置强随机密钥", name)
		}
		logger.Warnw("weak_secret", "name", name)
	}
	return nil
}

func openDatabase(cfg *config.Config) error {
	db := cfg.Database
	if err := models.InitDB(db.Driver, db.DSN, models.DBPoolConfig{
		MaxOpenConns:           db.Pool.MaxOpenConns,
		MaxIdleConns:           db.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: db.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: db.Pool.ConnMaxIdleTimeSeconds,
	}, cfg.Server.Mode == "debug"); err != nil {
		return fmt.Errorf("数据库初始化失败: %w", err)
	}
	if err := models.AutoMigrate(); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	return nil
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	lower := strings.ToLower(secret)
	for _, marker := range weakSecretMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
