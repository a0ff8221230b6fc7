package session_test

import (
	"testing"
	"time"

	"github.com/anylearn/anylearn/internal/session"
)

func TestManager_IssueParseRoundTrip(t *testing.T) {
	mgr := session.NewManager("test-secret", time.Hour)

	raw, jti, expiresAt, err := mgr.Issue("acc-1", "teacher")

	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if jti == "" {
		t.Fatalf("Issue returned empty jti")
	}

	if !expiresAt.After(time.Now()) {
		t.Fatalf("expiry should be in the future, got %v", expiresAt)
	}

	claims, err := mgr.Parse(raw)

	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if claims.AccountID != "acc-1" || claims.Role != "teacher" || claims.JTI != jti {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestManager_RejectsForeignSecret(t *testing.T) {
	issuer := session.NewManager("secret-a", time.Hour)
	verifier := session.NewManager("secret-b", time.Hour)

	raw, _, _, err := issuer.Issue("acc-1", "learner")

	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := verifier.Parse(raw); err == nil {
		t.Fatalf("Parse accepted a token signed with a different secret")
	}
}

func TestManager_RejectsGarbage(t *testing.T) {
	mgr := session.NewManager("test-secret", time.Hour)

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := mgr.Parse(raw); err == nil {
			t.Fatalf("Parse(%q) should fail", raw)
		}
	}
}
