package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"DocumentID", KeyDocumentID, "doc-1", DocumentID("doc-1")},
		{"BlockKey", KeyBlockKey, "b1", BlockKey("b1")},
		{"EntityType", KeyEntityType, "LINK", EntityType("LINK")},
		{"ChangeType", KeyChangeType, "insert-link", ChangeType("insert-link")},
		{"Fingerprint", KeyFingerprint, "abc", Fingerprint("abc")},
		{"Operation", KeyOperation, "import", Operation("import")},
		{"Path", KeyPath, "/tmp/x.md", Path("/tmp/x.md")},
		{"Method", KeyMethod, "POST", Method("POST")},
		{"RemoteAddr", KeyRemoteAddr, "1.2.3.4", RemoteAddr("1.2.3.4")},
		{"Subject", KeySubject, "draftmd.documents", Subject("draftmd.documents")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %s", tc.name, tc.attrVal, got)
		}
	}
}

func TestNumericHelpers(t *testing.T) {
	if a := Segments(3); a.Key != KeySegments || a.Value.Int64() != 3 {
		t.Fatalf("unexpected Segments attr: %v", a)
	}
	if a := EntityKey(7); a.Key != KeyEntityKey || a.Value.Int64() != 7 {
		t.Fatalf("unexpected EntityKey attr: %v", a)
	}
	if a := Status(404); a.Value.Int64() != 404 {
		t.Fatalf("unexpected Status attr: %v", a)
	}
}

func TestErrorHelper(t *testing.T) {
	if a := Error(nil); a.Value.String() != "" {
		t.Fatalf("expected empty error value, got %q", a.Value.String())
	}
	if a := Error(errors.New("boom")); a.Value.String() != "boom" {
		t.Fatalf("expected boom, got %q", a.Value.String())
	}
}
