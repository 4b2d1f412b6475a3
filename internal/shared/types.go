package shared

// Asynq task types
const (
	TypeMirrorBookCover       = "book:mirror_cover"
	TypeAuditDuplicateAuthors = "author:audit_duplicates"
)

// Asynq queues, weighted high 20 / default 10 / low 5 in cmd/worker
const (
	QueueHigh    = "high"
	QueueDefault = "default"
	QueueLow     = "low"
)

// MirrorCoverPayload: tải ảnh bìa từ source_url về MinIO
type MirrorCoverPayload struct {
	BookID    string `json:"book_id"`
	SourceURL string `json:"source_url"`
}

// AuditDuplicatesPayload is empty; the scheduler registers it with no arguments.
type AuditDuplicatesPayload struct{}

// Context keys set by the auth middleware
const (
	CtxUserID    = "user_id"
	CtxUserEmail = "user_email"
	CtxRequestID = "request_id"
)
