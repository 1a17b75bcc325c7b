package adapter

import (
	"context"
	"strings"
)

// ExportResponse is the raw answer of the export service.
type ExportResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// IsCSV reports whether the body is a CSV attachment rather than a JSON notice.
func (r *ExportResponse) IsCSV() bool {
	return strings.HasPrefix(strings.ToLower(r.ContentType), "text/csv")
}

// ExportClient calls the export service. Network failures are returned as errors;
// any HTTP status is returned as a response.
type ExportClient interface {
	RequestExport(ctx context.Context, startDate, endDate string) (*ExportResponse, error)
}
