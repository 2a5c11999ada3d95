package worker

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"driveshare/internal/database"
	"driveshare/internal/models"

	"github.com/rs/zerolog"
)

func TestProcessTaskSuccess(t *testing.T) {
	db := newTestDB(t)
	ledger := &fakeLedger{}
	worker := NewLedgerWorker(db, ledger, nil, RetryPolicy{}, nil)

	booking := &models.Booking{
		ID:          "b1",
		VehicleName: "Audi A4 Premium",
		Renter:      "renter1@gmail.com",
		Owner:       "owner1@gmail.com",
		BookingDate: "2026-09-01",
		Status:      models.StatusPending,
	}

	ctx := context.Background()
	if err := worker.EnqueueTask(ctx, TaskAppend, booking); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	task, ok := worker.tryLocalQueue()
	if !ok {
		t.Fatalf("expected task in local queue")
	}
	worker.processTask(ctx, &task)

	status, retryCount, nextRetry := loadTaskStatus(t, db, task.ID)
	if status != "completed" {
		t.Fatalf("expected status=completed, got %s", status)
	}
	if retryCount != 0 {
		t.Fatalf("expected retry_count=0, got %d", retryCount)
	}
	if nextRetry.Valid {
		t.Fatalf("expected next_retry_at NULL on success")
	}
	if ledger.appendCalls != 1 {
		t.Fatalf("expected append call, got %d", ledger.appendCalls)
	}
}

func TestProcessTaskRetry(t *testing.T) {
	db := newTestDB(t)
	ledger := &fakeLedger{err: errors.New("boom")}
	worker := NewLedgerWorker(db, ledger, nil, RetryPolicy{MaxRetries: 3, InitialDelay: time.Second}, nil)

	booking := &models.Booking{ID: "b2", Owner: "owner1@gmail.com", Status: models.StatusPending}

	ctx := context.Background()
	if err := worker.EnqueueTask(ctx, TaskAppend, booking); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	task, ok := worker.tryLocalQueue()
	if !ok {
		t.Fatalf("expected task in local queue")
	}
	worker.processTask(ctx, &task)

	status, retryCount, nextRetry := loadTaskStatus(t, db, task.ID)
	if status != "retry" {
		t.Fatalf("expected status=retry, got %s", status)
	}
	if retryCount != 1 {
		t.Fatalf("expected retry_count=1, got %d", retryCount)
	}
	if !nextRetry.Valid || nextRetry.Time.Before(time.Now()) {
		t.Fatalf("expected next_retry_at in future, got %v", nextRetry)
	}
}

func TestProcessTaskFail(t *testing.T) {
	db := newTestDB(t)
	ledger := &fakeLedger{err: errors.New("fatal")}
	worker := NewLedgerWorker(db, ledger, nil, RetryPolicy{MaxRetries: 1}, nil)

	booking := &models.Booking{ID: "b3", Owner: "owner1@gmail.com", Status: models.StatusPending}

	ctx := context.Background()
	worker.EnqueueTask(ctx, TaskAppend, booking)
	task, _ := worker.tryLocalQueue()
	worker.processTask(ctx, &task)

	status, _, _ := loadTaskStatus(t, db, task.ID)
	if status != "failed" {
		t.Fatalf("expected status=failed, got %s", status)
	}
}

func TestLedgerWorker_HandleLedgerTask(t *testing.T) {
	db := newTestDB(t)
	ledger := &fakeLedger{}
	worker := NewLedgerWorker(db, ledger, nil, RetryPolicy{MaxRetries: 3}, nil)

	ctx := context.Background()

	t.Run("Append", func(t *testing.T) {
		booking := &models.Booking{ID: "b1", VehicleName: "Test"}
		err := worker.handleLedgerTask(ctx, TaskAppend, ledgerTaskPayload{BookingID: "b1", Booking: booking})
		if err != nil {
			t.Fatalf("handle: %v", err)
		}
		if ledger.appendCalls != 1 {
			t.Fatalf("expected 1 append call, got %d", ledger.appendCalls)
		}
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		err := worker.handleLedgerTask(ctx, TaskUpdateStatus, ledgerTaskPayload{BookingID: "b1", Status: models.StatusApproved, ConfirmationCode: "a1b2c3d4e"})
		if err != nil {
			t.Fatalf("handle: %v", err)
		}
		if ledger.statusCalls != 1 {
			t.Fatalf("expected 1 status call, got %d", ledger.statusCalls)
		}
		if ledger.lastCode != "a1b2c3d4e" {
			t.Fatalf("expected confirmation code to reach ledger, got %q", ledger.lastCode)
		}
	})

	t.Run("UnknownType", func(t *testing.T) {
		err := worker.handleLedgerTask(ctx, "mystery", ledgerTaskPayload{BookingID: "b1"})
		if err == nil {
			t.Fatalf("expected error for unknown task type")
		}
	})
}

func TestRetryPolicyNextDelay(t *testing.T) {
	policy := RetryPolicy{InitialDelay: time.Second, BackoffFactor: 2, MaxDelay: 5 * time.Second}
	d1 := policy.NextDelay(1)
	d2 := policy.NextDelay(2)
	d3 := policy.NextDelay(5)

	if d1 != time.Second {
		t.Fatalf("attempt1 expected 1s, got %s", d1)
	}
	if d2 != 2*time.Second {
		t.Fatalf("attempt2 expected 2s, got %s", d2)
	}
	if d3 != 5*time.Second {
		t.Fatalf("attempt5 expected capped 5s, got %s", d3)
	}
}

func TestLedgerWorker_EnqueueTask(t *testing.T) {
	db := newTestDB(t)
	worker := NewLedgerWorker(db, &fakeLedger{}, nil, RetryPolicy{}, nil)

	ctx := context.Background()
	booking := &models.Booking{ID: "b1", Owner: "owner1@gmail.com"}

	t.Run("ValidTask", func(t *testing.T) {
		if err := worker.EnqueueTask(ctx, TaskAppend, booking); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	})

	t.Run("InvalidTaskType", func(t *testing.T) {
		if err := worker.EnqueueTask(ctx, "", booking); err == nil {
			t.Fatalf("expected error for empty task type")
		}
	})

	t.Run("MissingBooking", func(t *testing.T) {
		if err := worker.EnqueueTask(ctx, TaskAppend, nil); err == nil {
			t.Fatalf("expected error for missing booking")
		}
	})
}

func TestLedgerWorker_DecodePayload(t *testing.T) {
	worker := NewLedgerWorker(nil, nil, nil, RetryPolicy{}, nil)

	t.Run("ValidPayload", func(t *testing.T) {
		payload := `{"booking_id":"b123","status":"Approved"}`
		decoded, err := worker.decodePayload(payload)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if decoded.BookingID != "b123" || decoded.Status != models.StatusApproved {
			t.Fatalf("unexpected decoded payload: %+v", decoded)
		}
	})

	t.Run("InvalidPayload", func(t *testing.T) {
		if _, err := worker.decodePayload("invalid json"); err == nil {
			t.Fatalf("expected error for invalid json")
		}
	})
}

// Helpers

type fakeLedger struct {
	err         error
	appendCalls int
	statusCalls int
	lastCode    string
}

func (f *fakeLedger) AppendBooking(ctx context.Context, b *models.Booking) error {
	f.appendCalls++
	return f.err
}

func (f *fakeLedger) UpdateBookingStatus(ctx context.Context, id, status, confirmationCode string) error {
	f.statusCalls++
	f.lastCode = confirmationCode
	return f.err
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worker.db")
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	db, err := database.NewDB(path, &logger)
	if err != nil {
		t.Fatalf("new db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func loadTaskStatus(t *testing.T, db *database.DB, id int64) (status string, retryCount int, nextRetry sql.NullTime) {
	t.Helper()
	row := db.QueryRowContext(context.Background(), `SELECT status, retry_count, next_retry_at FROM sync_queue WHERE id = ?`, id)
	if err := row.Scan(&status, &retryCount, &nextRetry); err != nil {
		t.Fatalf("scan task: %v", err)
	}
	return status, retryCount, nextRetry
}
