package otel

import (
	"go.opentelemetry.io/otel/metric"
)

// ScanMetrics holds metrics for the image registry scanner.
type ScanMetrics struct {
	LookupsTotal   metric.Int64Counter
	LookupDuration metric.Float64Histogram
	FilesHashed    metric.Int64Counter
}

// NewScanMetrics creates metrics for the image registry scanner.
func NewScanMetrics(meter metric.Meter) (*ScanMetrics, error) {
	lookupsTotal, err := meter.Int64Counter(
		"applianced_registry_lookups_total",
		metric.WithDescription("Total number of image lookups against the search directories"),
	)
	if err != nil {
		return nil, err
	}

	lookupDuration, err := meter.Float64Histogram(
		"applianced_registry_lookup_duration_seconds",
		metric.WithDescription("Time to locate an image across the search directories"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	filesHashed, err := meter.Int64Counter(
		"applianced_registry_files_hashed_total",
		metric.WithDescription("Total number of candidate files checksummed during lookups"),
	)
	if err != nil {
		return nil, err
	}

	return &ScanMetrics{
		LookupsTotal:   lookupsTotal,
		LookupDuration: lookupDuration,
		FilesHashed:    filesHashed,
	}, nil
}

// ImportMetrics holds metrics for the managed image store.
type ImportMetrics struct {
	ImportsTotal     metric.Int64Counter
	ChecksumFailures metric.Int64Counter
	ImportedBytes    metric.Int64Counter
}

// NewImportMetrics creates metrics for the managed image store.
func NewImportMetrics(meter metric.Meter) (*ImportMetrics, error) {
	importsTotal, err := meter.Int64Counter(
		"applianced_store_imports_total",
		metric.WithDescription("Total number of images imported into the managed store"),
	)
	if err != nil {
		return nil, err
	}

	checksumFailures, err := meter.Int64Counter(
		"applianced_store_checksum_failures_total",
		metric.WithDescription("Total number of imports rejected for checksum mismatch"),
	)
	if err != nil {
		return nil, err
	}

	importedBytes, err := meter.Int64Counter(
		"applianced_store_imported_bytes_total",
		metric.WithDescription("Total bytes copied into the managed store"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &ImportMetrics{
		ImportsTotal:     importsTotal,
		ChecksumFailures: checksumFailures,
		ImportedBytes:    importedBytes,
	}, nil
}

// ComputeMetrics holds metrics for the compute proxy client.
type ComputeMetrics struct {
	RequestsTotal   metric.Int64Counter
	RequestDuration metric.Float64Histogram
	ErrorsTotal     metric.Int64Counter
}

// NewComputeMetrics creates metrics for the compute proxy client.
func NewComputeMetrics(meter metric.Meter) (*ComputeMetrics, error) {
	requestsTotal, err := meter.Int64Counter(
		"applianced_compute_requests_total",
		metric.WithDescription("Total number of requests proxied to the compute server"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"applianced_compute_request_duration_seconds",
		metric.WithDescription("Compute server request duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	errorsTotal, err := meter.Int64Counter(
		"applianced_compute_errors_total",
		metric.WithDescription("Total number of failed compute server requests"),
	)
	if err != nil {
		return nil, err
	}

	return &ComputeMetrics{
		RequestsTotal:   requestsTotal,
		RequestDuration: requestDuration,
		ErrorsTotal:     errorsTotal,
	}, nil
}
