// Package metrics provides Prometheus metrics for copy, delete and backup operations.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	filesCopied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dualpane_files_copied_total",
			Help: "Total number of files copied, by destination volume",
		},
		[]string{"volume"},
	)

	bytesCopied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dualpane_bytes_copied_total",
			Help: "Total bytes written by file copies, by destination volume",
		},
		[]string{"volume"},
	)

	dirsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dualpane_dirs_created_total",
			Help: "Total number of directories created by copies",
		},
		[]string{"volume"},
	)

	deletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dualpane_deletes_total",
			Help: "Total number of delete operations",
		},
		[]string{"volume", "type"},
	)

	operationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dualpane_operation_errors_total",
			Help: "Total number of failed operations, by operation and error kind",
		},
		[]string{"op", "kind"},
	)

	snapshotsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dualpane_snapshots_total",
			Help: "Total number of backup snapshot operations",
		},
		[]string{"op", "status"},
	)

	lastExport = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dualpane_last_export_timestamp_seconds",
			Help: "Unix time of the last successful snapshot export",
		},
	)
)

// RecordFileCopied records one copied file and its size.
func RecordFileCopied(volume string, bytes int64) {
	filesCopied.WithLabelValues(volume).Inc()
	bytesCopied.WithLabelValues(volume).Add(float64(bytes))
}

func RecordDirCreated(volume string) {
	dirsCreated.WithLabelValues(volume).Inc()
}

// RecordDelete records a delete; typ is "file" or "dir".
func RecordDelete(volume, typ string) {
	deletesTotal.WithLabelValues(volume, typ).Inc()
}

func RecordError(op, kind string) {
	operationErrors.WithLabelValues(op, kind).Inc()
}

// RecordSnapshot records an export, import, delete or prune of a snapshot.
func RecordSnapshot(op string, success bool, unixTime float64) {
	status := "success"
	if !success {
		status = "error"
	}
	snapshotsTotal.WithLabelValues(op, status).Inc()
	if op == "export" && success {
		lastExport.Set(unixTime)
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
