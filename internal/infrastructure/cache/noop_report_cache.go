package cache

import (
	"context"

	appaccounting "github.com/alamait/backend/internal/application/accounting"
)

// NoopReportCache disables report caching. Used when Redis is not configured
// or report caching is turned off.
type NoopReportCache struct{}

func (NoopReportCache) GetReport(ctx context.Context, key string, out interface{}) (bool, error) {
	return false, nil
}

func (NoopReportCache) SetReport(ctx context.Context, key string, value interface{}) error {
	return nil
}

func (NoopReportCache) InvalidateReports(ctx context.Context) error {
	return nil
}

var _ appaccounting.ReportCache = NoopReportCache{}
