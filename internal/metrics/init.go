package metrics

// InitializeMetrics pre-populates expected label combinations so every
// metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, outcome := range []string{"ingested", "already_handled", "rejected", "failed"} {
		IngestTotal.WithLabelValues(outcome)
	}

	for _, op := range []string{"create", "write", "rename", "remove", "chmod"} {
		WatcherEventsTotal.WithLabelValues(op)
	}

	for _, reason := range []string{"too_large", "copy_failed", "stat_failed"} {
		ImagesSkippedTotal.WithLabelValues(reason)
	}

	for _, op := range []string{"initialize_schema", "create_document", "get_document",
		"get_document_by_path", "get_document_by_hash", "update_content", "update_status",
		"list_documents", "count_by_status", "create_image", "list_images",
		"list_images_by_type", "delete_images", "add_metadata", "get_metadata",
		"append_log", "list_logs"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}
}
