package services

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/testutil"
)

func expenseInput(categoryID uint, title, amount string) ExpenseInput {
	return ExpenseInput{
		Title:      title,
		CategoryID: categoryID,
		Amount:     decimal.RequireFromString(amount),
		EntryDate:  time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateExpense(t *testing.T) {
	t.Run("valid_with_notification", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		expense, err := svc.CreateExpense(testutil.CallerFor(user), expenseInput(cat.ID, "Lunch", "12.50"))
		testutil.AssertNoError(t, err)

		if expense.UserID != user.ID {
			t.Errorf("expected owner %d, got %d", user.ID, expense.UserID)
		}
		if expense.PaymentMethod != models.PaymentMethodCash {
			t.Errorf("expected default payment method cash, got %s", expense.PaymentMethod)
		}

		var notifications []models.Notification
		db.Where("user_id = ?", user.ID).Find(&notifications)
		if len(notifications) != 1 {
			t.Fatalf("expected exactly 1 notification, got %d", len(notifications))
		}
		n := notifications[0]
		if n.Title != "New Expense" {
			t.Errorf("expected title 'New Expense', got %q", n.Title)
		}
		if !strings.Contains(n.Message, "12.50") || !strings.Contains(n.Message, "Lunch") {
			t.Errorf("expected message to contain amount and title, got %q", n.Message)
		}
		if n.IsRead {
			t.Error("expected notification unread")
		}
	})

	t.Run("negative_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		_, err := svc.CreateExpense(testutil.CallerFor(user), expenseInput(cat.ID, "Bad", "-5.00"))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("category_must_be_expense_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncome)

		_, err := svc.CreateExpense(testutil.CallerFor(user), expenseInput(cat.ID, "Wrong", "5.00"))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("category_must_belong_to_caller", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user1.ID, models.CategoryTypeExpense)

		_, err := svc.CreateExpense(testutil.CallerFor(user2), expenseInput(cat.ID, "Stolen", "5.00"))
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("invalid_payment_method", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		input := expenseInput(cat.ID, "Lunch", "5.00")
		input.PaymentMethod = models.PaymentMethod("barter")
		_, err := svc.CreateExpense(testutil.CallerFor(user), input)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetExpenses(t *testing.T) {
	t.Run("owner_scoped", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)

		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		cat1 := testutil.CreateTestCategory(t, db, user1.ID, models.CategoryTypeExpense)
		cat2 := testutil.CreateTestCategory(t, db, user2.ID, models.CategoryTypeExpense)
		testutil.CreateTestExpense(t, db, user1.ID, cat1.ID, "10.00")
		testutil.CreateTestExpense(t, db, user2.ID, cat2.ID, "20.00")

		page := pagination.PageRequest{Page: 1, PageSize: 20}
		result, err := svc.GetExpenses(testutil.CallerFor(user1), page, EntryFilter{})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 1 {
			t.Errorf("expected 1 expense for user1, got %d", result.TotalItems)
		}
	})

	t.Run("admin_sees_all", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)

		user := testutil.CreateTestUser(t, db)
		admin := testutil.CreateTestAdmin(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		testutil.CreateTestExpense(t, db, user.ID, cat.ID, "10.00")

		page := pagination.PageRequest{Page: 1, PageSize: 20}
		result, err := svc.GetExpenses(testutil.CallerFor(admin), page, EntryFilter{})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 1 {
			t.Errorf("expected admin to see 1 expense, got %d", result.TotalItems)
		}
	})

	t.Run("search_matches_title_case_insensitively", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		caller := testutil.CallerFor(user)
		_, err := svc.CreateExpense(caller, expenseInput(cat.ID, "Coffee Beans", "8.00"))
		testutil.AssertNoError(t, err)
		_, err = svc.CreateExpense(caller, expenseInput(cat.ID, "Train Ticket", "3.00"))
		testutil.AssertNoError(t, err)

		page := pagination.PageRequest{Page: 1, PageSize: 20}
		result, err := svc.GetExpenses(caller, page, EntryFilter{Search: "COFFEE"})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 1 {
			t.Fatalf("expected 1 match, got %d", result.TotalItems)
		}
		if result.Data[0].Title != "Coffee Beans" {
			t.Errorf("expected Coffee Beans, got %s", result.Data[0].Title)
		}
	})

	t.Run("ordering_by_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		testutil.CreateTestExpense(t, db, user.ID, cat.ID, "30.00")
		testutil.CreateTestExpense(t, db, user.ID, cat.ID, "10.00")
		testutil.CreateTestExpense(t, db, user.ID, cat.ID, "20.00")

		page := pagination.PageRequest{Page: 1, PageSize: 20}
		result, err := svc.GetExpenses(testutil.CallerFor(user), page, EntryFilter{Ordering: "-amount"})
		testutil.AssertNoError(t, err)

		if len(result.Data) != 3 {
			t.Fatalf("expected 3 expenses, got %d", len(result.Data))
		}
		if !result.Data[0].Amount.Equal(decimal.RequireFromString("30.00")) {
			t.Errorf("expected 30.00 first, got %s", result.Data[0].Amount)
		}
		if !result.Data[2].Amount.Equal(decimal.RequireFromString("10.00")) {
			t.Errorf("expected 10.00 last, got %s", result.Data[2].Amount)
		}
	})

	t.Run("filter_by_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)
		user := testutil.CreateTestUser(t, db)
		cat1 := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		cat2 := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

		testutil.CreateTestExpense(t, db, user.ID, cat1.ID, "10.00")
		testutil.CreateTestExpense(t, db, user.ID, cat2.ID, "20.00")

		page := pagination.PageRequest{Page: 1, PageSize: 20}
		result, err := svc.GetExpenses(testutil.CallerFor(user), page, EntryFilter{CategoryID: &cat1.ID})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 1 {
			t.Errorf("expected 1 expense in category, got %d", result.TotalItems)
		}
	})
}

func TestGetExpenseByID(t *testing.T) {
	t.Run("owner_reads_own", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		expense := testutil.CreateTestExpense(t, db, user.ID, cat.ID, "10.00")

		got, err := svc.GetExpenseByID(testutil.CallerFor(user), expense.ID)
		testutil.AssertNoError(t, err)

		if got.Category.ID != cat.ID {
			t.Error("expected category preloaded")
		}
	})

	t.Run("stranger_gets_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)

		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user1.ID, models.CategoryTypeExpense)
		expense := testutil.CreateTestExpense(t, db, user1.ID, cat.ID, "10.00")

		_, err := svc.GetExpenseByID(testutil.CallerFor(user2), expense.ID)
		testutil.AssertAppError(t, err, "EXPENSE_NOT_FOUND")
	})

	t.Run("manager_reads_others", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)

		user := testutil.CreateTestUser(t, db)
		manager := testutil.CreateTestManager(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		expense := testutil.CreateTestExpense(t, db, user.ID, cat.ID, "10.00")

		_, err := svc.GetExpenseByID(testutil.CallerFor(manager), expense.ID)
		testutil.AssertNoError(t, err)
	})
}

func TestUpdateExpense(t *testing.T) {
	t.Run("owner_partial_update", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		expense := testutil.CreateTestExpense(t, db, user.ID, cat.ID, "10.00")

		title := "Dinner"
		updated, err := svc.UpdateExpense(testutil.CallerFor(user), expense.ID, ExpenseUpdate{Title: &title})
		testutil.AssertNoError(t, err)

		if updated.Title != "Dinner" {
			t.Errorf("expected title Dinner, got %s", updated.Title)
		}
		if !updated.Amount.Equal(expense.Amount) {
			t.Errorf("expected amount unchanged, got %s", updated.Amount)
		}
	})

	t.Run("manager_denied", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)

		user := testutil.CreateTestUser(t, db)
		manager := testutil.CreateTestManager(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		expense := testutil.CreateTestExpense(t, db, user.ID, cat.ID, "10.00")

		title := "Hijacked"
		_, err := svc.UpdateExpense(testutil.CallerFor(manager), expense.ID, ExpenseUpdate{Title: &title})
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("new_category_checked_against_owner", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)

		user := testutil.CreateTestUser(t, db)
		admin := testutil.CreateTestAdmin(t, db)
		ownCat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		adminCat := testutil.CreateTestCategory(t, db, admin.ID, models.CategoryTypeExpense)
		expense := testutil.CreateTestExpense(t, db, user.ID, ownCat.ID, "10.00")

		// Even an admin cannot move a record into a category its owner
		// does not have.
		_, err := svc.UpdateExpense(testutil.CallerFor(admin), expense.ID, ExpenseUpdate{CategoryID: &adminCat.ID})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestDeleteExpense(t *testing.T) {
	t.Run("owner_denied", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		expense := testutil.CreateTestExpense(t, db, user.ID, cat.ID, "10.00")

		err := svc.DeleteExpense(testutil.CallerFor(user), expense.ID)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("admin_deletes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewExpenseService(db)

		user := testutil.CreateTestUser(t, db)
		admin := testutil.CreateTestAdmin(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
		expense := testutil.CreateTestExpense(t, db, user.ID, cat.ID, "10.00")

		err := svc.DeleteExpense(testutil.CallerFor(admin), expense.ID)
		testutil.AssertNoError(t, err)

		var count int64
		db.Model(&models.Expense{}).Where("id = ?", expense.ID).Count(&count)
		if count != 0 {
			t.Errorf("expected expense deleted, found %d rows", count)
		}
	})
}
