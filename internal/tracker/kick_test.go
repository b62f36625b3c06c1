package tracker

import (
	"testing"
	"time"

	"github.com/mikrosense/mikrosense/internal/model"
)

func TestClassifyReasonPriority(t *testing.T) {
	classifier := NewClassifier()
	cases := []struct {
		comment string
		reason  string
	}{
		{"idle for too long", "idle timeout"},
		{"login expired", "session expired"},
		{"kicked by admin", "manual removal"},
		{"removed", "manual removal"},
		{"forced logout", "forced disconnect"},
	}
	for _, tc := range cases {
		kicked, reason := classifier.Classify(nil, model.ClientRecord{Comment: tc.comment, Uptime: 2 * time.Hour})
		if !kicked {
			t.Fatalf("expected kick for comment %q", tc.comment)
		}
		if reason != tc.reason {
			t.Fatalf("comment %q: expected reason %q got %q", tc.comment, tc.reason, reason)
		}
	}
}

func TestClassifyLongCleanSessionIsNotKicked(t *testing.T) {
	classifier := NewClassifier()
	kicked, reason := classifier.Classify(nil, model.ClientRecord{Uptime: 40 * time.Minute})
	if kicked {
		t.Fatalf("40m clean session must not classify as kicked (reason %q)", reason)
	}
}

func TestClassifyShortSessionFallbackReason(t *testing.T) {
	classifier := NewClassifier()
	kicked, reason := classifier.Classify(nil, model.ClientRecord{Uptime: 5 * time.Minute})
	if !kicked {
		t.Fatalf("expected short session to classify as kicked")
	}
	if reason != "session timeout" {
		t.Fatalf("expected fallback reason, got %q", reason)
	}
}

func TestClassifyZeroUptimeIsNotKicked(t *testing.T) {
	classifier := NewClassifier()
	if kicked, _ := classifier.Classify(nil, model.ClientRecord{}); kicked {
		t.Fatalf("zero uptime with no session must not classify as kicked")
	}
}

func TestClassifyQuotaExceeded(t *testing.T) {
	classifier := NewClassifier()
	rec := model.ClientRecord{
		Uptime:          2 * time.Hour,
		BytesIn:         900,
		BytesOut:        200,
		LimitBytesTotal: 1000,
	}
	kicked, reason := classifier.Classify(nil, rec)
	if !kicked || reason != "session expired" {
		t.Fatalf("expected quota kick with session expired reason, got %v %q", kicked, reason)
	}
}

func TestClassifyFallsBackToTrackedSessionAge(t *testing.T) {
	classifier := NewClassifier()
	now := time.Now().UTC()
	session := &model.Session{StartedAt: now.Add(-5 * time.Minute)}
	rec := model.ClientRecord{FetchedAt: now}
	kicked, reason := classifier.Classify(session, rec)
	if !kicked || reason != "session timeout" {
		t.Fatalf("expected short tracked session to classify as kicked, got %v %q", kicked, reason)
	}
}
