package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/dfn-network/internal/app"
	"github.com/dfn-network/internal/config"
	"github.com/dfn-network/internal/logger"
	"github.com/dfn-network/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiCyan  = "\033[36m"
	ansiGreen = "\033[32m"
)

func main() {
	var mode, configPath string
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.StringVar(&configPath, "config", "", "配置文件路径，留空时在 . ../ ./etc 下查找 config.yml")
	flag.Parse()

	printStartupBanner(mode)

	cfg := loadConfig(configPath)
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()

	if isWeakSecret(cfg.UserJWT.SecretKey) {
		if cfg.Server.Mode == "release" {
			stdLog.Fatalf("user_jwt.secret 过弱或仍为默认值，请在生产环境中配置强随机密钥")
		}
		logger.Warnw("user_jwt_secret_weak", "hint", "set DFN_USER_JWT_SECRET")
	}

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, cfg.Database.Debug); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}

	// 生产环境必须显式提供管理员密码
	if cfg.Server.Mode == "release" && cfg.Bootstrap.AdminPassword == "" {
		logger.Warnw("default_admin_skipped", "reason", "bootstrap.admin_password empty")
	} else if err := models.InitDefaultAdmin(cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword); err != nil {
		logger.Warnw("default_admin_init_failed", "error", err)
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

func printStartupBanner(mode string) {
	fmt.Println(ansiCyan + "██████╗ ███████╗███╗   ██╗" + ansiReset)
	fmt.Println(ansiCyan + "██╔══██╗██╔════╝████╗  ██║" + ansiReset)
	fmt.Println(ansiCyan + "██║  ██║█████╗  ██╔██╗ ██║" + ansiReset)
	fmt.Println(ansiCyan + "██║  ██║██╔══╝  ██║╚██╗██║" + ansiReset)
	fmt.Println(ansiCyan + "██████╔╝██║     ██║ ╚████║" + ansiReset)
	fmt.Println(ansiCyan + "╚═════╝ ╚═╝     ╚═╝  ╚═══╝" + ansiReset)
	fmt.Println(ansiGreen + ansiBold + "DFN marketplace API" + ansiReset + ansiDim + " mode=" + mode + ansiReset)
	fmt.Println(ansiDim + "--------------------------------------------------------------" + ansiReset)
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	for _, marker := range []string{"change-me", "change-in-production", "your-secret-key"} {
		if strings.Contains(normalized, marker) {
			return true
		}
	}
	return false
}

func loadConfig(path string) *config.Config {
	if strings.TrimSpace(path) == "" {
		return config.Load()
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置 %s 失败: %v\n", path, err)
		os.Exit(1)
	}
	return cfg
}
