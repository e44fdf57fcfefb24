package bootstrap

import "context"

type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

// AuditLogger records operational events that should survive independently
// of the request log stream.
type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}
