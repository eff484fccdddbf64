package usage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGCounterIncrementReturnsCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("INSERT INTO daily_usage").
		WithArgs("a@example.com", "2024-05-01").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := NewPGCounter(db).Increment(context.Background(), "a@example.com", "2024-05-01")
	if err != nil {
		t.Fatalf("Increment: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2, got %d", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGCounterGetMissingIsZero(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT count FROM daily_usage").
		WithArgs("a@example.com", "2024-05-01").
		WillReturnRows(sqlmock.NewRows([]string{"count"}))

	n, err := NewPGCounter(db).Get(context.Background(), "a@example.com", "2024-05-01")
	if err != nil || n != 0 {
		t.Fatalf("expected 0 with no error, got %d %v", n, err)
	}
}

func TestPGStoreAppendRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	rec := Record{ID: "r1", UserID: "uid-1", Email: "a@example.com", Tier: "free", Technical: 5, Behavioral: 3, Followup: 2, Total: 10, CreatedAt: time.Now().UTC()}
	mock.ExpectExec("INSERT INTO usage_records").
		WithArgs(rec.ID, rec.UserID, rec.Email, rec.Tier, false, 5, 3, 2, 10, false, rec.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := NewPGStore(db).AppendRecord(context.Background(), rec); err != nil {
		t.Fatalf("AppendRecord: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreListRecords(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	cols := []string{"id", "user_id", "email", "tier", "pro", "technical_qs", "behavioral_qs", "followup_qs", "total_qs", "has_insights", "created_at"}
	mock.ExpectQuery("SELECT (.+) FROM usage_records ORDER BY created_at DESC LIMIT").
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("r1", "uid-1", "a@example.com", "yearly", true, 5, 3, 2, 10, true, now))

	records, err := NewPGStore(db).ListRecords(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(records) != 1 || !records[0].Pro || records[0].Total != 10 {
		t.Fatalf("unexpected records %+v", records)
	}
}
