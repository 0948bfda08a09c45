package main

import (
	"context"
	"log"
	"os"

	"kolo/internal/config"
	"kolo/internal/models"
	"kolo/internal/repositories"
	"kolo/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	config.LoadEnv()

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	adminPhone := os.Getenv("ADMIN_PHONE")

	if adminEmail == "" || adminPassword == "" || adminPhone == "" {
		log.Fatal("ADMIN_EMAIL, ADMIN_PASSWORD, and ADMIN_PHONE must be set in environment")
	}

	if err := repositories.InitDB(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer func() {
		if repositories.DB != nil {
			sqlDB, err := repositories.DB.DB()
			if err != nil {
				log.Printf("⚠️ Failed to get SQL DB instance: %v", err)
			} else if err := sqlDB.Close(); err != nil {
				log.Printf("⚠️ Failed to close PostgreSQL connection: %v", err)
			}
		}
		if repositories.CacheService != nil {
			if err := repositories.CacheService.Close(); err != nil {
				log.Printf("⚠️ Failed to close Redis connection: %v", err)
			}
		}
	}()

	var existingAdmin models.User
	result := repositories.DB.Where("email = ?", adminEmail).First(&existingAdmin)
	if result.Error == nil {
		log.Println("Admin user already exists")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	addr, err := utils.GenerateUniqueID(20)
	if err != nil {
		log.Fatal("Failed to generate wallet address:", err)
	}

	adminUser := models.User{
		Username:      "admin",
		Name:          "Administrator",
		Email:         adminEmail,
		Password:      string(hashedPassword),
		Phone:         adminPhone,
		WalletAddress: "0x" + addr,
		Role:          "admin",
		Status:        "active",
		TokenVersion:  1,
	}

	if err := repositories.DB.Create(&adminUser).Error; err != nil {
		log.Fatal("Failed to create admin user:", err)
	}

	if repositories.CacheService != nil {
		if err := repositories.CacheService.InvalidateUser(context.Background(), adminUser.ID); err != nil {
			log.Printf("⚠️ Failed to invalidate cached admin user: %v", err)
		}
	}

	log.Println("✅ Admin account created successfully!")
}
