package logger

import "context"

type contextKey string

const fieldsKey contextKey = "log_fields"

// Fields are added to every record logged with a context carrying them.
type Fields struct {
	JobID     string
	SIREN     string
	MessageID string
	Component string
}

// WithFields merges f into the fields already on ctx; non-empty values win.
func WithFields(ctx context.Context, f Fields) context.Context {
	merged := FieldsFrom(ctx)
	if f.JobID != "" {
		merged.JobID = f.JobID
	}
	if f.SIREN != "" {
		merged.SIREN = f.SIREN
	}
	if f.MessageID != "" {
		merged.MessageID = f.MessageID
	}
	if f.Component != "" {
		merged.Component = f.Component
	}
	return context.WithValue(ctx, fieldsKey, merged)
}

func FieldsFrom(ctx context.Context) Fields {
	if f, ok := ctx.Value(fieldsKey).(Fields); ok {
		return f
	}
	return Fields{}
}
