package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"budget/internal/auth"
	"budget/internal/core"
	"budget/internal/storage"
)

// All service tests run against a real SQLite database in a temp dir and
// a nil event client; the sqlite driver is pure Go.
func newServices(t *testing.T) (*UserService, *AuthService, *CategoryService, *TransactionService) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "budget.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	users := NewUserService(repo, nil)
	tokens := auth.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	return users, NewAuthService(users, tokens), NewCategoryService(repo, nil), NewTransactionService(repo, nil)
}

func TestUserCreateAndDuplicate(t *testing.T) {
	users, _, _, _ := newServices(t)
	ctx := context.Background()

	u, err := users.Create(ctx, "Fivos", "fivos@example.com", "1234")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.PasswordHash == "1234" {
		t.Fatal("password stored in plaintext")
	}

	_, err = users.Create(ctx, "Clone", "fivos@example.com", "5678")
	if !errors.Is(err, core.ErrConflict) {
		t.Fatalf("duplicate email error = %v, want ErrConflict", err)
	}

	all, err := users.FindAll(ctx)
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("user rows = %d, want 1", len(all))
	}
}

func TestUserCreateValidation(t *testing.T) {
	users, _, _, _ := newServices(t)
	ctx := context.Background()

	tests := []struct {
		name, userName, email, password, badField string
	}{
		{name: "empty name", userName: " ", email: "a@b", password: "x", badField: "name"},
		{name: "bad email", userName: "A", email: "not-an-email", password: "x", badField: "email"},
		{name: "empty password", userName: "A", email: "a@b", password: "", badField: "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := users.Create(ctx, tt.userName, tt.email, tt.password)
			var ve *core.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if _, ok := ve.Fields[tt.badField]; !ok {
				t.Errorf("expected field %q in %v", tt.badField, ve.Fields)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	users, authSvc, _, _ := newServices(t)
	ctx := context.Background()

	if _, err := users.Create(ctx, "Fivos", "fivos@example.com", "1234"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	token, err := authSvc.Login(ctx, "fivos@example.com", "1234")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	id, err := authSvc.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.Email != "fivos@example.com" {
		t.Errorf("identity email = %s", id.Email)
	}

	if _, err := authSvc.Login(ctx, "fivos@example.com", "wrong"); !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("wrong password error = %v, want ErrUnauthorized", err)
	}
	if _, err := authSvc.Login(ctx, "nobody@example.com", "1234"); !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("unknown email error = %v, want ErrUnauthorized", err)
	}
}

func TestTransactionCreateChecksCategoryOwnership(t *testing.T) {
	users, _, cats, txs := newServices(t)
	ctx := context.Background()

	owner, err := users.Create(ctx, "Owner", "owner@example.com", "pw")
	if err != nil {
		t.Fatalf("Create owner: %v", err)
	}
	other, err := users.Create(ctx, "Other", "other@example.com", "pw")
	if err != nil {
		t.Fatalf("Create other: %v", err)
	}
	cat, err := cats.Create(ctx, "Food", owner.ID)
	if err != nil {
		t.Fatalf("Create category: %v", err)
	}

	// Referencing someone else's category is a field violation.
	_, err = txs.Create(ctx, core.Transaction{
		Title: "Sneaky", Amount: 5, Type: core.Expense,
		UserID: other.ID, CategoryID: cat.ID,
	})
	var ve *core.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("foreign category error = %v, want *ValidationError", err)
	}

	created, err := txs.Create(ctx, core.Transaction{
		Title: "Groceries", Amount: 50, Type: core.Expense,
		UserID: owner.ID, CategoryID: cat.ID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Category.Name != "Food" {
		t.Errorf("joined category = %+v", created.Category)
	}
}

func TestTransactionValidationStopsBeforePersistence(t *testing.T) {
	users, _, cats, txs := newServices(t)
	ctx := context.Background()

	u, _ := users.Create(ctx, "Fivos", "fivos@example.com", "pw")
	cat, _ := cats.Create(ctx, "Food", u.ID)

	bad := []core.Transaction{
		{Title: "x", Amount: 0, Type: core.Expense, UserID: u.ID, CategoryID: cat.ID},
		{Title: "x", Amount: -5, Type: core.Expense, UserID: u.ID, CategoryID: cat.ID},
		{Title: "x", Amount: 5, Type: "transfer", UserID: u.ID, CategoryID: cat.ID},
	}
	for _, tx := range bad {
		if _, err := txs.Create(ctx, tx); err == nil {
			t.Errorf("Create(%+v) succeeded, want validation error", tx)
		}
	}

	rows, err := txs.FindAll(ctx, u.ID)
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows written despite rejected input: %d", len(rows))
	}
}

func TestTransactionUpdateAndRemove(t *testing.T) {
	users, _, cats, txs := newServices(t)
	ctx := context.Background()

	u, _ := users.Create(ctx, "Fivos", "fivos@example.com", "pw")
	cat, _ := cats.Create(ctx, "Food", u.ID)
	created, err := txs.Create(ctx, core.Transaction{
		Title: "Groceries", Amount: 50, Type: core.Expense,
		UserID: u.ID, CategoryID: cat.ID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	title := "Supermarket"
	updated, err := txs.Update(ctx, created.ID, u.ID, core.TransactionUpdate{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "Supermarket" || updated.Amount != 50 {
		t.Errorf("updated = %+v", updated)
	}

	if _, err := txs.Update(ctx, 9999, u.ID, core.TransactionUpdate{Title: &title}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Update(absent) error = %v, want ErrNotFound", err)
	}

	removed, err := txs.Remove(ctx, created.ID, u.ID)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if removed.ID != created.ID {
		t.Errorf("removed.ID = %d, want %d", removed.ID, created.ID)
	}
	if _, err := txs.FindOne(ctx, created.ID, u.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("FindOne after remove error = %v, want ErrNotFound", err)
	}
}

func TestCategoryDeleteGuard(t *testing.T) {
	users, _, cats, txs := newServices(t)
	ctx := context.Background()

	u, _ := users.Create(ctx, "Fivos", "fivos@example.com", "pw")
	cat, _ := cats.Create(ctx, "Food", u.ID)
	if _, err := txs.Create(ctx, core.Transaction{
		Title: "Groceries", Amount: 50, Type: core.Expense,
		UserID: u.ID, CategoryID: cat.ID,
	}); err != nil {
		t.Fatalf("Create tx: %v", err)
	}

	if _, err := cats.Delete(ctx, cat.ID, u.ID); !errors.Is(err, core.ErrConflict) {
		t.Fatalf("Delete(referenced) error = %v, want ErrConflict", err)
	}

	// After the transaction goes away, the delete succeeds.
	rows, _ := txs.FindAll(ctx, u.ID)
	if _, err := txs.Remove(ctx, rows[0].ID, u.ID); err != nil {
		t.Fatalf("Remove tx: %v", err)
	}
	if _, err := cats.Delete(ctx, cat.ID, u.ID); err != nil {
		t.Fatalf("Delete after unreference: %v", err)
	}
}

func TestCategoryUpdateVisibleOnNextFindAll(t *testing.T) {
	users, _, cats, _ := newServices(t)
	ctx := context.Background()

	u, _ := users.Create(ctx, "Fivos", "fivos@example.com", "pw")
	cat, _ := cats.Create(ctx, "Food", u.ID)

	if _, err := cats.Update(ctx, cat.ID, u.ID, "Groceries"); err != nil {
		t.Fatalf("Update: %v", err)
	}

	all, err := cats.FindAll(ctx, u.ID)
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(all) != 1 || all[0].Name != "Groceries" {
		t.Errorf("FindAll after rename = %+v", all)
	}
}
