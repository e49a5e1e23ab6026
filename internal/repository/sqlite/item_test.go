package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/arefin/crud-backend/internal/apperror"
	"github.com/arefin/crud-backend/internal/model"
	"github.com/arefin/crud-backend/internal/repository"
)

func mustCreateItem(t *testing.T, items *ItemStore, ownerID, title string) *model.Item {
	t.Helper()
	item := &model.Item{Title: title, Description: "desc of " + title, OwnerID: ownerID}
	if err := items.Create(context.Background(), item); err != nil {
		t.Fatalf("creating item %q: %v", title, err)
	}
	return item
}

func TestItemCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	owner := mustCreateUser(t, db, "alice")
	items := db.Items()

	created := mustCreateItem(t, items, owner.ID, "first")

	if created.ID == "" {
		t.Error("Create() did not assign an ID")
	}

	got, err := items.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "first" || got.OwnerID != owner.ID {
		t.Errorf("GetByID() = %+v", got)
	}

	_, err = items.GetByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestItemCreate_UnknownOwnerRejected(t *testing.T) {
	db := newTestDB(t)
	items := db.Items()

	// owner_id references users(id); foreign keys are enabled at open.
	item := &model.Item{Title: "orphan", OwnerID: "no-such-user"}
	if err := items.Create(context.Background(), item); err == nil {
		t.Fatal("Create() accepted an item with a nonexistent owner")
	}
}

// Foreign keys are a per-connection pragma. Concurrent inserts over a
// file-backed database spread across the pool, so a connection opened
// without the pragma would let an orphan item through.
func TestItemCreate_UnknownOwnerRejectedOnEveryConnection(t *testing.T) {
	db := newFileTestDB(t)
	db.conn.SetMaxOpenConns(4)
	items := db.Items()

	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			item := &model.Item{Title: "orphan", OwnerID: "no-such-user"}
			errs <- items.Create(context.Background(), item)
		}()
	}

	for i := 0; i < 8; i++ {
		if err := <-errs; err == nil {
			t.Fatal("Create() accepted an orphan item on a pooled connection")
		}
	}
}

func TestItemListByOwner_Scoping(t *testing.T) {
	db := newTestDB(t)
	alice := mustCreateUser(t, db, "alice")
	bob := mustCreateUser(t, db, "bob")
	items := db.Items()

	mustCreateItem(t, items, alice.ID, "a1")
	mustCreateItem(t, items, alice.ID, "a2")
	mustCreateItem(t, items, bob.ID, "b1")

	aliceItems, err := items.ListByOwner(context.Background(), alice.ID, repository.ListOptions{})
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(aliceItems) != 2 {
		t.Errorf("ListByOwner(alice) returned %d items, want 2", len(aliceItems))
	}
	for _, item := range aliceItems {
		if item.OwnerID != alice.ID {
			t.Errorf("ListByOwner(alice) leaked item owned by %q", item.OwnerID)
		}
	}

	none, err := items.ListByOwner(context.Background(), "no-such-user", repository.ListOptions{})
	if err != nil {
		t.Fatalf("ListByOwner() error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("ListByOwner(unknown) returned %d items, want 0", len(none))
	}
}

func TestItemUpdate(t *testing.T) {
	db := newTestDB(t)
	owner := mustCreateUser(t, db, "alice")
	items := db.Items()

	item := mustCreateItem(t, items, owner.ID, "before")
	item.Title = "after"
	item.Description = "updated"

	if err := items.Update(context.Background(), item); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := items.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "after" || got.Description != "updated" {
		t.Errorf("GetByID() after update = %+v", got)
	}
}

func TestItemUpdate_Missing(t *testing.T) {
	db := newTestDB(t)
	items := db.Items()

	ghost := &model.Item{ID: "no-such-id", Title: "ghost"}
	err := items.Update(context.Background(), ghost)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestItemDelete(t *testing.T) {
	db := newTestDB(t)
	owner := mustCreateUser(t, db, "alice")
	items := db.Items()

	item := mustCreateItem(t, items, owner.ID, "doomed")

	if err := items.Delete(context.Background(), item.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	err := items.Delete(context.Background(), item.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() twice error = %v, want ErrNotFound", err)
	}
}
