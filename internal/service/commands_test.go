package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCommands_Dispatch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/api/command/start"):
			w.Write([]byte(`{"success": true, "message": "brewing"}`))
		case strings.HasSuffix(r.URL.Path, "/api/command/tare"):
			// Bare 200 with no body: success inferred from status.
			w.WriteHeader(http.StatusOK)
		case strings.HasSuffix(r.URL.Path, "/api/command/flush"):
			http.Error(w, "busy", http.StatusConflict)
		case strings.HasSuffix(r.URL.Path, "/api/command/stop"):
			http.NotFound(w, r)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	d := NewCommandDispatcher(srv.URL, nil)
	ctx := context.Background()

	tests := []struct {
		name        string
		command     string
		wantSuccess bool
		wantMsgPart string
	}{
		{"machine acks", "start", true, "brewing"},
		{"status-only success", "tare", true, ""},
		{"machine rejects", "flush", false, "409"},
		{"unknown command", "selfdestruct", false, "unknown command"},
		{"case and whitespace tolerated", "  STOP ", false, ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			res := d.Dispatch(ctx, tt.command)
			if tt.name == "case and whitespace tolerated" {
				// "stop" is a known command; the fake machine 404s it, which
				// must come back as a failure result, not a panic or error.
				if res.Success {
					t.Fatalf("unrouted command must fail, got %+v", res)
				}
				return
			}
			if res.Success != tt.wantSuccess {
				t.Fatalf("success = %v, want %v (%+v)", res.Success, tt.wantSuccess, res)
			}
			if tt.wantMsgPart != "" && !strings.Contains(res.Message, tt.wantMsgPart) {
				t.Fatalf("message %q does not contain %q", res.Message, tt.wantMsgPart)
			}
		})
	}
}

func TestCommands_MachineUnreachable(t *testing.T) {
	t.Parallel()

	// Grab a port and close it so dialing fails fast.
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	d := NewCommandDispatcher(srv.URL, nil)
	res := d.Dispatch(context.Background(), "stop")
	if res.Success {
		t.Fatalf("dead endpoint must yield failure, got %+v", res)
	}
	if res.Message != "machine unreachable" {
		t.Fatalf("message = %q, want machine unreachable", res.Message)
	}
}

func TestCommands_UnconfiguredEndpoint(t *testing.T) {
	t.Parallel()

	d := NewCommandDispatcher("", nil)
	res := d.Dispatch(context.Background(), "start")
	if res.Success || !strings.Contains(res.Message, "not configured") {
		t.Fatalf("unconfigured dispatcher must fail cleanly, got %+v", res)
	}
}
