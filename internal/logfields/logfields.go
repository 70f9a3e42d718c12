package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyDocumentID  = "document_id"
	KeyBlockKey    = "block_key"
	KeyBlocks      = "blocks"
	KeyEntityKey   = "entity_key"
	KeyEntityType  = "entity_type"
	KeyEntities    = "entities"
	KeySegments    = "segments"
	KeyChangeType  = "change_type"
	KeyFingerprint = "fingerprint"
	KeyOperation   = "operation"
	KeyDurationMS  = "duration_ms"
	KeyPath        = "path"
	KeyMethod      = "method"
	KeyStatus      = "status"
	KeyRemoteAddr  = "remote_addr"
	KeyUserAgent   = "user_agent"
	KeyRoute       = "route"
	KeySubject     = "subject"
	KeyError       = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func DocumentID(id string) slog.Attr   { return slog.String(KeyDocumentID, id) }
func BlockKey(k string) slog.Attr      { return slog.String(KeyBlockKey, k) }
func Blocks(n int) slog.Attr           { return slog.Int(KeyBlocks, n) }
func EntityKey(k int) slog.Attr        { return slog.Int(KeyEntityKey, k) }
func EntityType(t string) slog.Attr    { return slog.String(KeyEntityType, t) }
func Entities(n int) slog.Attr         { return slog.Int(KeyEntities, n) }
func Segments(n int) slog.Attr         { return slog.Int(KeySegments, n) }
func ChangeType(c string) slog.Attr    { return slog.String(KeyChangeType, c) }
func Fingerprint(fp string) slog.Attr  { return slog.String(KeyFingerprint, fp) }
func Operation(op string) slog.Attr    { return slog.String(KeyOperation, op) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Method(m string) slog.Attr        { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr        { return slog.Int(KeyStatus, code) }
func RemoteAddr(addr string) slog.Attr { return slog.String(KeyRemoteAddr, addr) }
func Subject(s string) slog.Attr       { return slog.String(KeySubject, s) }
func UserAgent(ua string) slog.Attr    { return slog.String(KeyUserAgent, ua) }
func Route(r string) slog.Attr         { return slog.String(KeyRoute, r) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
