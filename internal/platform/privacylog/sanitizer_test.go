package privacylog

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestSanitizingHandlerRedactsSensitiveAndIDs(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewJSONHandler(&buf, nil)
	logger := slog.New(WrapHandler(base))
	logger.Info("test", "mailbox_id", "mbx1abc", "pin", "1234", "op", "unlock")

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}
	if _, ok := payload["mailbox_id"]; ok {
		t.Fatal("mailbox_id should not appear in plaintext")
	}
	fp, ok := payload["mailbox_id_fp"].(string)
	if !ok || !strings.HasPrefix(fp, "fp_") {
		t.Fatalf("expected fingerprinted mailbox_id, got %v", payload["mailbox_id_fp"])
	}
	if got, _ := payload["pin"].(string); got != redactedValue {
		t.Fatalf("expected redacted pin, got %q", got)
	}
	if got, _ := payload["op"].(string); got != "unlock" {
		t.Fatalf("expected untouched attr, got %q", got)
	}
}

func TestSanitizingHandlerRedactsInsideGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(WrapHandler(slog.NewJSONHandler(&buf, nil)))
	logger.Info("test", slog.Group("attempt",
		slog.String("pin", "1234"),
		slog.String("mailbox_id", "mbx1abc"),
		slog.String("op", "unlock"),
	))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}
	group, ok := payload["attempt"].(map[string]any)
	if !ok {
		t.Fatalf("expected attempt group, got %v", payload["attempt"])
	}
	if got, _ := group["pin"].(string); got != redactedValue {
		t.Fatalf("expected redacted pin inside group, got %q", got)
	}
	if _, ok := group["mailbox_id"]; ok {
		t.Fatal("mailbox_id should not appear in plaintext inside group")
	}
	if fp, _ := group["mailbox_id_fp"].(string); !strings.HasPrefix(fp, "fp_") {
		t.Fatalf("expected fingerprinted mailbox_id inside group, got %v", group["mailbox_id_fp"])
	}
	if got, _ := group["op"].(string); got != "unlock" {
		t.Fatalf("expected untouched attr inside group, got %q", got)
	}
}

func TestFingerprintStableWithinBoot(t *testing.T) {
	a := FingerprintID("mbx1abc")
	b := FingerprintID("mbx1abc")
	if a == "" || a != b {
		t.Fatalf("fingerprints must be stable within one boot: %q vs %q", a, b)
	}
	if FingerprintID("mbx1other") == a {
		t.Fatal("distinct ids must not collide")
	}
	if FingerprintID("  ") != "" {
		t.Fatal("blank input must fingerprint to empty")
	}
}

func TestSanitizingHandlerImplementsSlogHandlerContract(t *testing.T) {
	var buf bytes.Buffer
	h := WrapHandler(slog.NewJSONHandler(&buf, nil))
	if !h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("expected handler enabled for info")
	}
	rec := slog.NewRecord(time.Now().UTC(), slog.LevelInfo, "msg", 0)
	rec.AddAttrs(slog.String("wallet_address", "wm1abc"))
	if err := h.Handle(context.Background(), rec); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if !strings.Contains(buf.String(), "wallet_address_fp") {
		t.Fatalf("expected sanitized wallet_address key, got %s", buf.String())
	}
}
