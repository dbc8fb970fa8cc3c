package store

import (
	"testing"
	"time"

	"github.com/dukerupert/dauphindash/internal/model"
)

func TestBackupCreate(t *testing.T) {
	bs := NewBackupStore(setupTestDB(t))

	b, err := bs.Create("dauphindash/2026-10-15T00-00-00Z-a1.json.enc")
	if err != nil {
		t.Fatalf("create backup: %v", err)
	}
	if b.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if b.Status != model.BackupStatusPending {
		t.Errorf("status = %q, want %q", b.Status, model.BackupStatusPending)
	}

	got, err := bs.GetByID(b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.S3Key != b.S3Key {
		t.Errorf("get = %+v", got)
	}
}

func TestBackupGetMissing(t *testing.T) {
	bs := NewBackupStore(setupTestDB(t))

	got, err := bs.GetByID(42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("get = %+v, want nil", got)
	}
}

func TestBackupUpdateStatus(t *testing.T) {
	bs := NewBackupStore(setupTestDB(t))

	b, _ := bs.Create("k/test.json.enc")

	if err := bs.UpdateStatus(b.ID, model.BackupStatusUploading, ""); err != nil {
		t.Fatalf("update status: %v", err)
	}
	got, _ := bs.GetByID(b.ID)
	if got.Status != model.BackupStatusUploading {
		t.Errorf("status = %q, want %q", got.Status, model.BackupStatusUploading)
	}

	if err := bs.UpdateStatus(b.ID, model.BackupStatusFailed, "upload failed"); err != nil {
		t.Fatalf("update status with error: %v", err)
	}
	got, _ = bs.GetByID(b.ID)
	if got.Status != model.BackupStatusFailed {
		t.Errorf("status = %q, want %q", got.Status, model.BackupStatusFailed)
	}
	if got.Error != "upload failed" {
		t.Errorf("error = %q, want %q", got.Error, "upload failed")
	}
}

func TestBackupUpdateCompleted(t *testing.T) {
	bs := NewBackupStore(setupTestDB(t))

	b, _ := bs.Create("k/test.json.enc")
	if err := bs.UpdateCompleted(b.ID, 2048, 31); err != nil {
		t.Fatalf("update completed: %v", err)
	}

	got, _ := bs.GetByID(b.ID)
	if got.Status != model.BackupStatusCompleted {
		t.Errorf("status = %q, want %q", got.Status, model.BackupStatusCompleted)
	}
	if got.SizeBytes != 2048 || got.RecordCount != 31 {
		t.Errorf("size/records = %d/%d, want 2048/31", got.SizeBytes, got.RecordCount)
	}
	if got.CompletedAt == nil {
		t.Error("expected completed_at to be set")
	}
}

func TestBackupListOrderAndLimit(t *testing.T) {
	bs := NewBackupStore(setupTestDB(t))

	bs.Create("k/first")
	time.Sleep(10 * time.Millisecond)
	bs.Create("k/second")
	time.Sleep(10 * time.Millisecond)
	bs.Create("k/third")

	all, err := bs.List(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].S3Key != "k/third" {
		t.Errorf("first entry = %q, want k/third", all[0].S3Key)
	}

	limited, err := bs.List(2)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("len = %d, want 2", len(limited))
	}
}

func TestBackupDeleteOlderThan(t *testing.T) {
	bs := NewBackupStore(setupTestDB(t))

	bs.Create("k/old")
	time.Sleep(50 * time.Millisecond)
	cutoff := time.Now().UTC()
	time.Sleep(50 * time.Millisecond)
	bs.Create("k/new")

	keys, err := bs.DeleteOlderThan(cutoff)
	if err != nil {
		t.Fatalf("delete older than: %v", err)
	}
	if len(keys) != 1 || keys[0] != "k/old" {
		t.Fatalf("deleted keys = %v, want [k/old]", keys)
	}

	remaining, _ := bs.List(10)
	if len(remaining) != 1 || remaining[0].S3Key != "k/new" {
		t.Errorf("remaining = %+v", remaining)
	}
}

func TestBackupLatestCompleted(t *testing.T) {
	bs := NewBackupStore(setupTestDB(t))

	if latest, err := bs.LatestCompleted(); err != nil || latest != nil {
		t.Fatalf("latest on empty = %+v, %v", latest, err)
	}

	b1, _ := bs.Create("k/first")
	bs.UpdateCompleted(b1.ID, 100, 1)
	time.Sleep(10 * time.Millisecond)
	b2, _ := bs.Create("k/second")
	bs.UpdateCompleted(b2.ID, 200, 2)

	b3, _ := bs.Create("k/failed")
	bs.UpdateStatus(b3.ID, model.BackupStatusFailed, "error")

	latest, err := bs.LatestCompleted()
	if err != nil {
		t.Fatalf("latest completed: %v", err)
	}
	if latest == nil || latest.S3Key != "k/second" {
		t.Errorf("latest = %+v, want k/second", latest)
	}
}
