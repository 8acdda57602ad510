package kit

import (
	"context"
	"testing"
)

func TestContext_UserID(t *testing.T) {
	ctx := context.Background()
	if v := GetUserID(ctx); v != "" {
		t.Fatalf("empty context: got %q", v)
	}

	ctx = WithUserID(ctx, "usr_123")
	if v := GetUserID(ctx); v != "usr_123" {
		t.Fatalf("after set: got %q", v)
	}
}

func TestContext_Username(t *testing.T) {
	ctx := WithUsername(context.Background(), "alice")
	if v := GetUsername(ctx); v != "alice" {
		t.Fatalf("username: got %q", v)
	}
}

func TestContext_DocumentID(t *testing.T) {
	ctx := WithDocumentID(context.Background(), "doc_42")
	if v := GetDocumentID(ctx); v != "doc_42" {
		t.Fatalf("document_id: got %q", v)
	}
}

func TestContext_SessionID(t *testing.T) {
	ctx := WithSessionID(context.Background(), "sess_9")
	if v := GetSessionID(ctx); v != "sess_9" {
		t.Fatalf("session_id: got %q", v)
	}
}

func TestContext_RequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req_abc")
	if v := GetRequestID(ctx); v != "req_abc" {
		t.Fatalf("request_id: got %q", v)
	}
}

func TestContext_EmptyDefaults(t *testing.T) {
	ctx := context.Background()
	if v := GetUsername(ctx); v != "" {
		t.Fatalf("username default: got %q", v)
	}
	if v := GetRequestID(ctx); v != "" {
		t.Fatalf("request_id default: got %q", v)
	}
	if v := GetRemoteAddr(ctx); v != "" {
		t.Fatalf("remote_addr default: got %q", v)
	}
}
