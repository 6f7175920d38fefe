package session

import "testing"

func TestIssueAndParseRoundTrip(t *testing.T) {
	token, err := IssueToken("alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	username, err := Username(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if username != "alice" {
		t.Fatalf("expected alice, got %q", username)
	}
}

func TestUsernameRejectsGarbage(t *testing.T) {
	if _, err := Username(""); err == nil {
		t.Fatal("empty token should fail")
	}
	if _, err := Username("not.a.token"); err == nil {
		t.Fatal("malformed token should fail")
	}
}
