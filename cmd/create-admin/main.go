package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/portfolio/internal/config"
	"github.com/portfolio/internal/db"
)

// create-admin 创建管理员账号，账号已存在时重置其密码。
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	email := flag.String("email", cfg.AdminEmail, "admin email (defaults to ADMIN_EMAIL)")
	password := flag.String("password", cfg.AdminPassword, "admin password (defaults to ADMIN_PASSWORD)")
	dbPath := flag.String("db", cfg.DatabasePath, "sqlite database path")
	flag.Parse()

	if db.NormalizeEmail(*email) == "" || *password == "" {
		log.Fatal("email and password are required")
	}

	// 初始化数据库
	if err := db.Init(*dbPath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}
	defer db.Close()

	admin, created, err := db.UpsertAdmin(db.DB, *email, *password)
	if err != nil {
		log.Fatal("保存管理员失败:", err)
	}

	if created {
		fmt.Printf("管理员创建成功: %s\n", admin.Email)
		return
	}
	fmt.Printf("管理员密码已重置: %s\n", admin.Email)
}
