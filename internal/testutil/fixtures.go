package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"fintrack/internal/authz"
	"fintrack/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a regular user with a hashed password and unique
// username and email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	n := nextID()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username: fmt.Sprintf("user%d", n),
		Email:    fmt.Sprintf("user%d@test.com", n),
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestManager creates a user belonging to the Manager group.
func CreateTestManager(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := CreateTestUser(t, db)

	var group models.Group
	if err := db.Where(models.Group{Name: models.ManagerGroup}).FirstOrCreate(&group).Error; err != nil {
		t.Fatalf("failed to create manager group: %v", err)
	}
	if err := db.Model(user).Association("Groups").Append(&group); err != nil {
		t.Fatalf("failed to assign manager group: %v", err)
	}
	user.Groups = []models.Group{group}
	return user
}

// CreateTestAdmin creates a user with the admin flag set.
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := CreateTestUser(t, db)
	if err := db.Model(user).Update("is_admin", true).Error; err != nil {
		t.Fatalf("failed to promote test admin: %v", err)
	}
	user.IsAdmin = true
	return user
}

// CallerFor builds the request-scoped caller identity for a user.
func CallerFor(user *models.User) authz.Caller {
	return authz.Caller{
		ID:            user.ID,
		Username:      user.Username,
		IsAdmin:       user.IsAdmin,
		Groups:        user.GroupNames(),
		Authenticated: true,
	}
}

// CreateTestCategory creates a category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID uint, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID:   userID,
		Name:     fmt.Sprintf("Test Category %d", nextID()),
		Type:     categoryType,
		IsActive: true,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestExpense creates an expense with the given amount.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID, categoryID uint, amount string) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		UserID:        userID,
		Title:         fmt.Sprintf("Test Expense %d", nextID()),
		CategoryID:    categoryID,
		Amount:        decimal.RequireFromString(amount),
		EntryDate:     time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		PaymentMethod: models.PaymentMethodCash,
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// CreateTestIncome creates an income entry with the given amount.
func CreateTestIncome(t *testing.T, db *gorm.DB, userID, categoryID uint, amount string) *models.Income {
	t.Helper()

	income := &models.Income{
		UserID:        userID,
		Title:         fmt.Sprintf("Test Income %d", nextID()),
		CategoryID:    categoryID,
		Amount:        decimal.RequireFromString(amount),
		EntryDate:     time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		PaymentMethod: string(models.PaymentMethodCash),
	}
	if err := db.Create(income).Error; err != nil {
		t.Fatalf("failed to create test income: %v", err)
	}
	return income
}
