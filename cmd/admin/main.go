package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-management-api/internal/core/cache"
	"project-management-api/internal/core/config"
	"project-management-api/internal/core/database"
	"project-management-api/internal/core/logger"
	"project-management-api/internal/domain"
	"project-management-api/internal/repo"
	"project-management-api/internal/service"
)

// 运维命令行：迁移、创建/提升管理者
type app struct {
	cfgPath string
	log     *zap.Logger
	db      *gorm.DB
	users   *service.UserService
	repo    *repo.UserRepo
	cache   *cache.Cache
	cleanup func()
}

func main() {
	_ = godotenv.Load()
	a := &app{}
	if err := a.rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "admin",
		Short:        "Project management API maintenance commands",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) { a.close() },
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "config file (default $CONFIG_PATH or ./configs/config.yaml)")
	root.AddCommand(a.migrateCmd(), a.createManagerCmd(), a.promoteCmd())
	return root
}

func (a *app) open() error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	a.log, a.cleanup = logger.New(logger.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON})
	a.db, err = database.NewGorm(database.FromConfig(cfg.DB))
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	// 与 api 共用 redis，角色变更后删掉对应的 principal 缓存
	a.cache = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL())
	a.repo = repo.NewUserRepo(a.db)
	a.users = service.NewUserService(a.repo, repo.NewProjectRepo(a.db), a.cache, a.log)
	return nil
}

func (a *app) close() {
	if err := a.cache.Close(); err != nil && a.log != nil {
		a.log.Warn("redis close", zap.Error(err))
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if a.cleanup != nil {
		a.cleanup()
	}
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the users, projects and tasks tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.db.WithContext(cmd.Context()).AutoMigrate(domain.Models()...); err != nil {
				return fmt.Errorf("automigrate: %w", err)
			}
			a.log.Info("automigrate done")
			return nil
		},
	}
}

func (a *app) createManagerCmd() *cobra.Command {
	var in service.CreateUserInput
	cmd := &cobra.Command{
		Use:   "create-manager",
		Short: "Create a user with the manager role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.Role = domain.RoleManager
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			u, err := a.users.Create(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "manager created: id=%d email=%s\n", u.ID, u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringVar(&in.Email, "email", "", "login email")
	cmd.Flags().StringVar(&in.Password, "password", "", "initial password (6-72 bytes)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) promoteCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Grant the manager role to an existing user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			u, err := a.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
			if err != nil {
				return err
			}
			if u == nil {
				return service.ErrUserNotFound
			}
			role := domain.RoleManager
			if _, err := a.users.Update(ctx, u.ID, service.UpdateUserInput{Role: &role}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "promoted: id=%d email=%s\n", u.ID, u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email of the user to promote")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
