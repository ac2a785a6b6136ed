package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Columns: []Column{
			{Key: "credential_id", Label: "Credential", Width: 3},
			{Key: "status", Label: "Status", Width: 1.5},
			{Key: "reviewed_by", Label: "Reviewer", Width: 2},
		},
		Rows: []map[string]string{
			{"credential_id": "3f8a1c2e-9d4b-4f6a-8c1d-2e5b7a9c0d1f", "status": "APPROVED", "reviewed_by": "admin-1"},
			{"credential_id": "cred-2", "status": "REJECTED", "reviewed_by": ""},
		},
	}
}

func TestCSVRenderLabelsAndKeys(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	body := string(out)
	assert.True(t, strings.HasPrefix(body, "\ufeff"), "csv should lead with a UTF-8 BOM")

	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Credential,Status,Reviewer", strings.TrimPrefix(strings.TrimSpace(lines[0]), "\ufeff"))
	assert.Contains(t, lines[1], "3f8a1c2e-9d4b-4f6a-8c1d-2e5b7a9c0d1f")
	assert.Contains(t, lines[2], "REJECTED")
}

func TestCSVRenderRequiresColumns(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestColumnWidthsFillPage(t *testing.T) {
	widths := columnWidths(sampleDataset().Columns)
	require.Len(t, widths, 3)

	total := 0.0
	for _, w := range widths {
		total += w
	}
	assert.InDelta(t, pdfUsableWidth, total, 0.01)
	assert.Greater(t, widths[0], widths[1], "heavier columns get more room")
}

func TestColumnWidthsDefaultEvenShare(t *testing.T) {
	widths := columnWidths([]Column{{Key: "a"}, {Key: "b"}})
	require.Len(t, widths, 2)
	assert.InDelta(t, pdfUsableWidth/2, widths[0], 0.01)
	assert.InDelta(t, widths[0], widths[1], 0.01)
}

func TestPDFRenderWideValues(t *testing.T) {
	data := sampleDataset()
	for i := 0; i < 60; i++ {
		data.Rows = append(data.Rows, map[string]string{
			"credential_id": "9b7e5d3c-1a2f-4e6b-8d0c-3f5a7b9e1c2d",
			"status":        "PENDING_REVIEW",
			"reviewed_by":   "a reviewer with an unreasonably long display name that cannot fit",
		})
	}

	out, err := NewPDFExporter().Render(data, "Compliance Report")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}
