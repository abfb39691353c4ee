package toolerr

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestError_ReasonAndCode(t *testing.T) {
	err := UsageMismatch("a", "b")
	if err.Code != CodeUsageMismatch {
		t.Errorf("Code: got %s, want %s", err.Code, CodeUsageMismatch)
	}
	if err.Reason() != ReasonUsageMismatch {
		t.Errorf("Reason: got %s, want %s", err.Reason(), ReasonUsageMismatch)
	}
	if err.Fix == "" {
		t.Error("Fix should not be empty")
	}
}

func TestFrom_WrappedError(t *testing.T) {
	inner := AtlasOverflow(32, 32, 4)
	wrapped := fmt.Errorf("planning: %w", inner)

	got := From(wrapped)
	if got != inner {
		t.Fatalf("From did not unwrap the typed error")
	}
	if ReasonOf(wrapped) != ReasonAtlasOverflow {
		t.Errorf("ReasonOf: got %s", ReasonOf(wrapped))
	}
}

func TestFrom_ForeignError(t *testing.T) {
	got := From(errors.New("boom"))
	if got.Code != CodeUnknown || got.Reason() != ReasonUnknown {
		t.Errorf("got %s/%s, want unknown/unknown", got.Code, got.Reason())
	}
	if From(nil) != nil {
		t.Error("From(nil) should be nil")
	}
	if ReasonOf(nil) != "" {
		t.Error("ReasonOf(nil) should be empty")
	}
}

func TestError_MarshalJSON(t *testing.T) {
	err := InvalidOp(2, "draw_line", "lineWidth must be positive")
	data, mErr := json.Marshal(err)
	if mErr != nil {
		t.Fatalf("marshal: %v", mErr)
	}

	var decoded map[string]interface{}
	if uErr := json.Unmarshal(data, &decoded); uErr != nil {
		t.Fatalf("unmarshal: %v", uErr)
	}
	if decoded["code"] != "invalid_payload" {
		t.Errorf("code: got %v", decoded["code"])
	}
	details := decoded["details"].(map[string]interface{})
	if details["reason"] != "invalid_op" {
		t.Errorf("reason: got %v", details["reason"])
	}
	if details["opIndex"] != float64(2) {
		t.Errorf("opIndex: got %v", details["opIndex"])
	}
}

func TestIsCode(t *testing.T) {
	if !IsCode(RevisionMissing("r1"), CodeRevisionMissing) {
		t.Error("expected revision_missing")
	}
	if IsCode(nil, CodeRevisionMissing) {
		t.Error("nil should match no code")
	}
}
