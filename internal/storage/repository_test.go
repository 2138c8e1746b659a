package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"budget/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "budget.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *SQLiteRepository, email string) *core.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), "Fivos", email, "bcrypt-hash")
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", email, err)
	}
	return u
}

func seedCategory(t *testing.T, repo *SQLiteRepository, name string, userID int64) *core.Category {
	t.Helper()
	c, err := repo.CreateCategory(context.Background(), name, userID)
	if err != nil {
		t.Fatalf("CreateCategory(%s): %v", name, err)
	}
	return c
}

func TestUserCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := seedUser(t, repo, "fivos@example.com")
	if u.ID == 0 {
		t.Fatal("created user has zero id")
	}
	if u.CreatedAt.IsZero() {
		t.Error("created user has zero createdAt")
	}

	byEmail, err := repo.GetUserByEmail(ctx, "fivos@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if byEmail == nil || byEmail.ID != u.ID {
		t.Fatalf("GetUserByEmail = %+v, want id %d", byEmail, u.ID)
	}

	absent, err := repo.GetUserByEmail(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail(absent): %v", err)
	}
	if absent != nil {
		t.Errorf("GetUserByEmail(absent) = %+v, want nil", absent)
	}

	deleted, err := repo.DeleteUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if deleted.Email != "fivos@example.com" {
		t.Errorf("deleted.Email = %s", deleted.Email)
	}

	if _, err := repo.DeleteUser(ctx, u.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second DeleteUser error = %v, want ErrNotFound", err)
	}
}

func TestDuplicateEmailConflict(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seedUser(t, repo, "fivos@example.com")
	_, err := repo.CreateUser(ctx, "Other", "fivos@example.com", "other-hash")
	if !errors.Is(err, core.ErrConflict) {
		t.Fatalf("duplicate email error = %v, want ErrConflict", err)
	}

	users, err := repo.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("store retains %d rows for the email, want 1", len(users))
	}
}

func TestCategoryCRUDAndScoping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	owner := seedUser(t, repo, "owner@example.com")
	other := seedUser(t, repo, "other@example.com")
	cat := seedCategory(t, repo, "Food", owner.ID)

	// Foreign rows look absent.
	if got, err := repo.GetCategory(ctx, cat.ID, other.ID); err != nil || got != nil {
		t.Errorf("GetCategory(foreign) = %+v, %v; want nil, nil", got, err)
	}
	if _, err := repo.RenameCategory(ctx, cat.ID, other.ID, "Stolen"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("RenameCategory(foreign) error = %v, want ErrNotFound", err)
	}

	renamed, err := repo.RenameCategory(ctx, cat.ID, owner.ID, "Groceries")
	if err != nil {
		t.Fatalf("RenameCategory: %v", err)
	}
	if renamed.Name != "Groceries" {
		t.Errorf("renamed.Name = %s", renamed.Name)
	}

	cats, err := repo.ListCategories(ctx, owner.ID)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(cats) != 1 || cats[0].Name != "Groceries" {
		t.Errorf("rename not visible on next list: %+v", cats)
	}

	if _, err := repo.DeleteCategory(ctx, cat.ID, owner.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
}

func TestDeleteCategoryWithTransactionsConflicts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := seedUser(t, repo, "fivos@example.com")
	cat := seedCategory(t, repo, "Food", user.ID)
	if _, err := repo.CreateTransaction(ctx, core.Transaction{
		Title: "Groceries", Amount: 50, Type: core.Expense,
		UserID: user.ID, CategoryID: cat.ID,
	}); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	_, err := repo.DeleteCategory(ctx, cat.ID, user.ID)
	if !errors.Is(err, core.ErrConflict) {
		t.Fatalf("DeleteCategory(referenced) error = %v, want ErrConflict", err)
	}

	cats, err := repo.ListCategories(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(cats) != 1 {
		t.Errorf("category count after refused delete = %d, want 1", len(cats))
	}
}

func TestTransactionCRUDAndOrdering(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := seedUser(t, repo, "fivos@example.com")
	cat := seedCategory(t, repo, "Food", user.ID)

	for _, title := range []string{"first", "second", "third"} {
		if _, err := repo.CreateTransaction(ctx, core.Transaction{
			Title: title, Amount: 10, Type: core.Expense,
			UserID: user.ID, CategoryID: cat.ID,
		}); err != nil {
			t.Fatalf("CreateTransaction(%s): %v", title, err)
		}
	}

	txs, err := repo.ListTransactions(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("len(txs) = %d, want 3", len(txs))
	}
	if txs[0].Title != "third" {
		t.Errorf("newest first: txs[0].Title = %s, want third", txs[0].Title)
	}
	for i := 1; i < len(txs); i++ {
		if txs[i].CreatedAt.After(txs[i-1].CreatedAt) {
			t.Errorf("createdAt not non-increasing at index %d", i)
		}
	}

	// Joined rows carry category and owner.
	if txs[0].Category == nil || txs[0].Category.Name != "Food" {
		t.Errorf("joined category = %+v, want Food", txs[0].Category)
	}
	if txs[0].User == nil || txs[0].User.Email != "fivos@example.com" {
		t.Errorf("joined user = %+v", txs[0].User)
	}
	if txs[0].User.PasswordHash != "" {
		t.Error("joined user must not carry the password hash")
	}
}

func TestTransactionUpdateMergesFields(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := seedUser(t, repo, "fivos@example.com")
	cat := seedCategory(t, repo, "Food", user.ID)
	created, err := repo.CreateTransaction(ctx, core.Transaction{
		Title: "Groceries", Amount: 50, Type: core.Expense,
		UserID: user.ID, CategoryID: cat.ID,
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	amount := 75.0
	updated, err := repo.UpdateTransaction(ctx, created.ID, user.ID, core.TransactionUpdate{Amount: &amount})
	if err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	if updated.Amount != 75 {
		t.Errorf("updated.Amount = %v, want 75", updated.Amount)
	}
	if updated.Title != "Groceries" {
		t.Errorf("unmerged field changed: Title = %s", updated.Title)
	}
	if updated.Category == nil {
		t.Error("update must re-fetch joins")
	}

	// Empty update behaves like a read.
	same, err := repo.UpdateTransaction(ctx, created.ID, user.ID, core.TransactionUpdate{})
	if err != nil {
		t.Fatalf("empty UpdateTransaction: %v", err)
	}
	if same.Amount != 75 {
		t.Errorf("empty update changed amount: %v", same.Amount)
	}
}

func TestDeleteTransactionNotFoundLeavesStoreUnchanged(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user := seedUser(t, repo, "fivos@example.com")
	cat := seedCategory(t, repo, "Food", user.ID)
	if _, err := repo.CreateTransaction(ctx, core.Transaction{
		Title: "Groceries", Amount: 50, Type: core.Expense,
		UserID: user.ID, CategoryID: cat.ID,
	}); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	if _, err := repo.DeleteTransaction(ctx, 9999, user.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("DeleteTransaction(absent) error = %v, want ErrNotFound", err)
	}

	txs, err := repo.ListTransactions(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txs) != 1 {
		t.Errorf("store changed by failed delete: %d rows, want 1", len(txs))
	}
}

func TestTransactionScoping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	owner := seedUser(t, repo, "owner@example.com")
	other := seedUser(t, repo, "other@example.com")
	cat := seedCategory(t, repo, "Food", owner.ID)
	created, err := repo.CreateTransaction(ctx, core.Transaction{
		Title: "Groceries", Amount: 50, Type: core.Expense,
		UserID: owner.ID, CategoryID: cat.ID,
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	if got, err := repo.GetTransaction(ctx, created.ID, other.ID); err != nil || got != nil {
		t.Errorf("GetTransaction(foreign) = %+v, %v; want nil, nil", got, err)
	}
	if _, err := repo.DeleteTransaction(ctx, created.ID, other.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("DeleteTransaction(foreign) error = %v, want ErrNotFound", err)
	}

	foreign, err := repo.ListTransactions(ctx, other.ID)
	if err != nil {
		t.Fatalf("ListTransactions(other): %v", err)
	}
	if len(foreign) != 0 {
		t.Errorf("foreign list sees %d rows, want 0", len(foreign))
	}
}
