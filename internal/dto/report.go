package dto

import "time"

// ComplianceReportRequest captures filters for a review-history export.
type ComplianceReportRequest struct {
	Format   string     `json:"format"` // csv or pdf
	From     *time.Time `json:"from,omitempty"`
	To       *time.Time `json:"to,omitempty"`
	TypeID   string     `json:"type_id,omitempty"`
	DriverID string     `json:"driver_id,omitempty"`
}

// ComplianceReportResponse points at the generated export object.
type ComplianceReportResponse struct {
	ObjectKey   string    `json:"object_key"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
	RowCount    int       `json:"row_count"`
}
