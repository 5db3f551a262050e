package console

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"user-crud-console/internal/usecase/userstore"
)

// Notifier prints store notifications as "[severity] message" lines and logs them.
type Notifier struct {
	out *SyncWriter
	log *zap.Logger
}

// NewNotifier creates a Notifier writing to out.
func NewNotifier(out io.Writer, log *zap.Logger) *Notifier {
	return &Notifier{out: NewSyncWriter(out), log: log}
}

var _ userstore.Notifier = (*Notifier)(nil)

// Notify implements userstore.Notifier.
func (n *Notifier) Notify(severity userstore.Severity, message string) {
	_, err := fmt.Fprintf(n.out, "[%s] %s\n", severity, message)

	fields := []zap.Field{zap.String("severity", string(severity)), zap.String("message", message)}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if severity == userstore.SeverityError {
		n.log.Warn("notification", fields...)
		return
	}
	n.log.Info("notification", fields...)
}
