package pdf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flyswatter/flyswatter/internal/report"
)

func TestRender_WritesPDF(t *testing.T) {
	rep := &report.MonthlyReport{
		Title:       "FLYSWATTER MONTHLY REPORT - nicole - 2026-03",
		Username:    "nicole",
		GeneratedAt: time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC),
		Projects: []report.ProjectReport{
			{
				Title:              "Nimbus",
				Key:                "NIM",
				OpenIssues:         2,
				CreatedIssuesMonth: 1,
				ClosedIssuesMonth:  1,
				UserIssues: []report.AssigneeGroup{
					{
						Username: "alice",
						Issues: []report.IssueEntry{
							{Key: "NIM-1", Title: "Crash on start", Author: "nicole", Priority: "high", Status: "open"},
							{Key: "NIM-4", Title: "Slow queries", Author: "bob", Priority: "medium", Status: "open"},
						},
					},
				},
			},
		},
	}

	dest := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, NewRenderer().Render(rep, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.True(t, len(data) > 0)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestRender_EmptyReport(t *testing.T) {
	rep := &report.MonthlyReport{
		Title:    "FLYSWATTER MONTHLY REPORT - nicole - 2026-03",
		Username: "nicole",
	}

	dest := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, NewRenderer().Render(rep, dest))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.True(t, info.Size() > 0)
}
