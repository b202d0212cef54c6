package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"supplement-iq/internal/api"
	"supplement-iq/internal/cache"
	"supplement-iq/internal/handler"
	"supplement-iq/internal/logging"
	"supplement-iq/internal/service"
)

// 測試替換點
var readPassword = func(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	return string(b), err
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "supplementiq",
		Short:         "SupplementIQ API 伺服器",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newCreateOwnerCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "執行 migration 並啟動 HTTP 伺服器",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}
}

func serve(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return run(cfg)
}

func newMigrateCmd() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "資料庫 schema 管理",
	}
	migrate.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "套用所有未執行的 migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				url, err := databaseURL()
				if err != nil {
					return err
				}
				if err := runMigrationsFn(url); err != nil {
					return fmt.Errorf("Migration 執行失敗: %w", err)
				}
				cmd.Println("migrations applied")
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "回滾所有 migration (會刪除資料)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				url, err := databaseURL()
				if err != nil {
					return err
				}
				if err := rollbackFn(url); err != nil {
					return fmt.Errorf("Rollback 執行失敗: %w", err)
				}
				cmd.Println("migrations rolled back")
				return nil
			},
		},
	)
	return migrate
}

// migrate 只需要資料庫連線字串
func databaseURL() (string, error) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return "", errors.New("環境變數 DATABASE_URL 未設定")
	}
	return url, nil
}

func newCreateOwnerCmd() *cobra.Command {
	var username, email string
	cmd := &cobra.Command{
		Use:   "create-owner",
		Short: "建立唯一的 owner 帳號",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword("Password: ")
			if err != nil {
				return fmt.Errorf("讀取密碼失敗: %w", err)
			}
			confirm, err := readPassword("Confirm password: ")
			if err != nil {
				return fmt.Errorf("讀取密碼失敗: %w", err)
			}
			if password != confirm {
				return errors.New("passwords do not match")
			}
			req := api.RegisterRequest{Username: username, Email: email, Password: password}
			if err := handler.NewValidator().Validate(&req); err != nil {
				return err
			}
			return createOwner(cmd, req)
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "owner 帳號")
	cmd.Flags().StringVar(&email, "email", "", "owner 信箱")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func createOwner(cmd *cobra.Command, req api.RegisterRequest) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	log := logging.New(cfg.Env, cfg.LogLevel)

	db, err := newPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("DB 連線失敗: %w", err)
	}
	defer db.Close()

	// Redis 無法連線時仍可建立帳號，只是無法清除管理員名單快取
	var rc cache.Cache
	if r, err := newRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Warn(ctx, "redis unavailable, admins cache not invalidated", "error", err)
	} else {
		rc = r
		defer rc.Close()
	}

	users := service.NewUserService(db, cache.NewProductCache(rc, cfg.CacheLocation, log), cfg.JWTSecret, log)
	owner, err := users.CreateOwner(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrOwnerExists) {
			return errors.New("an owner account already exists")
		}
		return fmt.Errorf("建立 owner 失敗: %w", err)
	}
	cmd.Printf("owner %s created (%s)\n", owner.Username, owner.ID)
	return nil
}
