package service

import (
	"errors"
	"testing"
	"time"
)

func TestQuotaFullLimitWhenUnused(t *testing.T) {
	quota := NewQuotaService(newFakeQuotaRepo(), 3)

	remaining, err := quota.Remaining("alice", time.Now())
	if err != nil {
		t.Fatalf("Remaining() error = %v", err)
	}
	if remaining != 3 {
		t.Errorf("Remaining() = %d, want 3", remaining)
	}
	if quota.Limit() != 3 {
		t.Errorf("Limit() = %d, want 3", quota.Limit())
	}
}

func TestQuotaCountsDownToZero(t *testing.T) {
	quota := NewQuotaService(newFakeQuotaRepo(), 3)
	day := time.Now()

	for want := 2; want >= 0; want-- {
		if err := quota.RecordSuccess("alice", day); err != nil {
			t.Fatalf("RecordSuccess() error = %v", err)
		}
		remaining, err := quota.Remaining("alice", day)
		if err != nil {
			t.Fatalf("Remaining() error = %v", err)
		}
		if remaining != want {
			t.Errorf("Remaining() = %d, want %d", remaining, want)
		}
	}

	err := quota.RecordSuccess("alice", day)
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("fourth RecordSuccess() error = %v, want ErrQuotaExceeded", err)
	}
}

func TestQuotaRemainingNeverNegative(t *testing.T) {
	repo := newFakeQuotaRepo()
	repo.used[quotaKey("alice", "2025-03-07")] = 5

	quota := NewQuotaService(repo, 3)
	day := time.Date(2025, time.March, 7, 12, 0, 0, 0, time.UTC)

	remaining, err := quota.Remaining("alice", day)
	if err != nil {
		t.Fatalf("Remaining() error = %v", err)
	}
	if remaining != 0 {
		t.Errorf("Remaining() = %d, want 0", remaining)
	}
}

func TestQuotaResetsAcrossDays(t *testing.T) {
	quota := NewQuotaService(newFakeQuotaRepo(), 3)
	day1 := time.Date(2025, time.March, 7, 23, 0, 0, 0, time.UTC)
	day2 := day1.Add(2 * time.Hour)

	for i := 0; i < 3; i++ {
		if err := quota.RecordSuccess("alice", day1); err != nil {
			t.Fatalf("RecordSuccess() error = %v", err)
		}
	}

	remaining, err := quota.Remaining("alice", day2)
	if err != nil {
		t.Fatalf("Remaining() error = %v", err)
	}
	if remaining != 3 {
		t.Errorf("Remaining() on the next day = %d, want 3", remaining)
	}
}

func TestQuotaIsPerActor(t *testing.T) {
	quota := NewQuotaService(newFakeQuotaRepo(), 3)
	day := time.Now()

	if err := quota.RecordSuccess("alice", day); err != nil {
		t.Fatalf("RecordSuccess() error = %v", err)
	}

	remaining, err := quota.Remaining("bob", day)
	if err != nil {
		t.Fatalf("Remaining() error = %v", err)
	}
	if remaining != 3 {
		t.Errorf("Remaining() for another actor = %d, want 3", remaining)
	}
}
