package main

import (
	"context"
	"errors"

	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/dao"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/dao/mysql"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/model"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/app"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/logger"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/utils"
	"gorm.io/gorm"
)

const (
	adminEmail    = "admin@restaurant.com"
	adminPassword = "admin123"
)

func main() {
	cfg := app.BootstrapApp()

	db, err := mysql.InitDB(&cfg.Database.Mysql)
	if err != nil {
		logger.Fatal("连接Mysql数据库失败", "err", err)
	}

	// 建表
	if err := db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Product{},
		&model.Order{},
		&model.Notification{},
		&model.ChatMessage{},
	); err != nil {
		logger.Fatal("建表失败", "err", err)
	}
	logger.Info("数据库表结构已同步")

	ctx := context.Background()
	userDao := dao.NewUserDao(db)

	// 管理员账号已存在则跳过
	if _, err := userDao.GetByEmail(ctx, adminEmail); err == nil {
		logger.Info("管理员账号已存在，跳过初始化", "email", adminEmail)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Fatal("查询管理员账号失败", "err", err)
	}

	passwordHash, err := utils.HashPassword(adminPassword)
	if err != nil {
		logger.Fatal("密码加密失败", "err", err)
	}
	admin := &model.User{
		Email:           adminEmail,
		PasswordHash:    passwordHash,
		FirstName:       "Admin",
		LastName:        "Restaurant",
		FullName:        "Admin Restaurant",
		Role:            model.RoleAdmin,
		Status:          model.UserStatusActive,
		IsEmailVerified: true,
	}
	if err := userDao.Create(ctx, admin); err != nil {
		logger.Fatal("创建管理员账号失败", "err", err)
	}
	logger.Info("管理员账号初始化完成", "email", adminEmail)
}
