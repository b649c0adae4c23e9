package pkgreport

import (
	"log/slog"

	"github.com/penxle/penxle-go/internal/pkg/pkgerror"
	"github.com/penxle/penxle-go/internal/pkg/pkguid"
)

// Log reports exceptions to the default slog logger.
type Log struct {
	id pkguid.StringID
}

var _ pkgerror.Reporter = (*Log)(nil)

// NewLog returns a Log reporter stamping each report with an id from id.
func NewLog(id pkguid.StringID) *Log {
	if id == nil {
		id = pkguid.NewUUID()
	}
	return &Log{id: id}
}

// Report logs err and returns the generated id.
func (l *Log) Report(err error) string {
	id := l.id.Generate()
	slog.Error("unknown error captured", "error_id", id, "error", err)
	return id
}
