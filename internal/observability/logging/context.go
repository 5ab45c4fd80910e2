package logging

import (
	"context"
	"regexp"

	"github.com/google/uuid"
)

type Module string

const (
	ModuleReminder  Module = "reminder"
	ModuleCategory  Module = "category"
	ModuleScheduler Module = "scheduler"
	ModuleDispatch  Module = "dispatch"
	ModuleMCP       Module = "mcp"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	moduleKey
)

var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// ValidateAndExtractRequestID returns the incoming id when it is safe to log,
// otherwise a freshly generated one.
func ValidateAndExtractRequestID(id string) string {
	if requestIDPattern.MatchString(id) {
		return id
	}

	return uuid.Must(uuid.NewV7()).String()
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)

	return id
}

func WithModule(ctx context.Context, m Module) context.Context {
	return context.WithValue(ctx, moduleKey, m)
}

func ModuleFromContext(ctx context.Context) Module {
	m, _ := ctx.Value(moduleKey).(Module)

	return m
}
