package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/asc-academy/evaluation-portal/internal"
	"github.com/asc-academy/evaluation-portal/internal/department"
	"github.com/asc-academy/evaluation-portal/internal/user"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedClearData bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the bootstrap admin and departments",
	Long:  `Create the bootstrap admin account and the standard departments so a fresh deployment is usable immediately.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := initGorm(sqlDB)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if seedClearData {
			for _, table := range []string{"evaluations", "user_data", "users", "departments"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear table %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		now := time.Now()
		departments := []string{
			"Elektrik",
			"Mexanika",
			"Avtomatika",
			"Istilik energetikasi",
		}
		for _, name := range departments {
			var exists int64
			db.Model(&department.Department{}).Where("name = ?", name).Count(&exists)
			if exists > 0 {
				continue
			}
			d := &department.Department{
				ID:        uuid.NewString(),
				Name:      name,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := db.Create(d).Error; err != nil {
				log.Fatalf("failed to seed department %s: %v", name, err)
			}
			fmt.Println("Seeded department:", name)
		}

		adminEmail := "admin@asc.az"
		var exists int64
		db.Model(&user.User{}).Where("email = ?", adminEmail).Count(&exists)
		if exists > 0 {
			fmt.Println("Admin account already exists:", adminEmail)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("ChangeMe123!"), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash admin password: %v", err)
		}

		admin := &user.User{
			ID:           uuid.NewString(),
			Email:        adminEmail,
			PasswordHash: string(hash),
			Role:         internal.RoleAdmin,
			FirstName:    "System",
			LastName:     "Admin",
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := db.Create(admin).Error; err != nil {
			log.Fatalf("failed to seed admin account: %v", err)
		}

		fmt.Println("Seeded admin account:", adminEmail)
		fmt.Println("Change the bootstrap password after first login")
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedClearData, "clear", false, "Clear existing data before seeding")
}
