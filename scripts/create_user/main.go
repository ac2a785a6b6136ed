package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fleetpass/fleet-compliance-api/internal/models"
	"github.com/fleetpass/fleet-compliance-api/internal/repository"
	"github.com/fleetpass/fleet-compliance-api/pkg/config"
	"github.com/fleetpass/fleet-compliance-api/pkg/database"
)

// Seeds a login account, and for driver accounts the matching driver
// profile row. Meant for local development and first-run bootstrap.
func main() {
	var (
		email      string
		password   string
		fullName   string
		role       string
		companyID  string
		employment string
	)

	flag.StringVar(&email, "email", "", "Login email (required)")
	flag.StringVar(&password, "password", "", "Initial password (required)")
	flag.StringVar(&fullName, "name", "", "Full name (required)")
	flag.StringVar(&role, "role", string(models.RoleDriver), "Role: superadmin, admin, or driver")
	flag.StringVar(&companyID, "company", "", "Company ID (required for non-superadmin roles)")
	flag.StringVar(&employment, "employment", string(models.EmploymentW2), "Driver employment type: w2 or 1099")
	flag.Parse()

	if email == "" || password == "" || fullName == "" {
		log.Fatal("email, password, and name are required")
	}

	userRole := models.UserRole(role)
	switch userRole {
	case models.RoleSuperAdmin, models.RoleAdmin, models.RoleDriver:
	default:
		log.Fatalf("unknown role %q", role)
	}
	if userRole != models.RoleSuperAdmin && companyID == "" {
		log.Fatalf("role %s requires -company", role)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		Role:         userRole,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if companyID != "" {
		user.CompanyID = &companyID
	}

	if err := repository.NewUserRepository(db).Create(ctx, user); err != nil {
		log.Fatalf("failed to create user: %v", err)
	}

	if userRole == models.RoleDriver {
		employmentType := models.DriverEmploymentType(employment)
		if employmentType != models.EmploymentW2 && employmentType != models.Employment1099 {
			log.Fatalf("unknown employment type %q", employment)
		}

		driverID := uuid.NewString()
		const query = `INSERT INTO drivers (id, user_id, company_id, employment_type, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)`
		if _, err := db.ExecContext(ctx, query, driverID, user.ID, companyID, employmentType, models.DriverInactive, now); err != nil {
			log.Fatalf("failed to create driver profile: %v", err)
		}
		fmt.Printf("created driver %s (user %s)\n", driverID, user.ID)
		return
	}

	fmt.Printf("created %s %s\n", userRole, user.ID)
}
