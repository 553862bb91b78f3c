package main

import (
	"fmt"
	"os"

	"mailhub/backend/internal/auth"
	jwtpkg "mailhub/backend/internal/auth/jwt"
	"mailhub/backend/internal/config"
	"mailhub/backend/internal/storage"
	"mailhub/backend/internal/storage/memory"
	"mailhub/backend/internal/storage/postgres"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: create-admin <username> <password> [display-name]")
		os.Exit(1)
	}

	username := os.Args[1]
	password := os.Args[2]
	name := username
	if len(os.Args) >= 4 {
		name = os.Args[3]
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 创建存储
	var store storage.Store
	switch cfg.Database.Type {
	case "":
		store = memory.NewStore()
	case "mysql":
		store, err = postgres.NewMySQLStore(cfg.Database.DSN)
	case "postgres", "postgresql":
		store, err = postgres.NewStore(cfg.Database.DSN)
	default:
		fmt.Printf("Unsupported database type: %s\n", cfg.Database.Type)
		os.Exit(1)
	}
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		os.Exit(1)
	}

	jwtManager := jwtpkg.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)
	authService := auth.NewService(store, jwtManager, nil)

	user, err := authService.CreateStaff(username, password, name)
	if err != nil {
		fmt.Printf("Failed to create staff user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Staff user created successfully!\n")
	fmt.Printf("  ID:       %s\n", user.ID)
	fmt.Printf("  Username: %s\n", user.Username)
	fmt.Printf("  Name:     %s\n", user.Name)

	if cfg.Database.Type == "" {
		fmt.Println("\nNote: this user exists only in memory. Set MAILHUB_DATABASE_TYPE")
		fmt.Println("and MAILHUB_DATABASE_DSN to persist staff accounts.")
	}
}
