package obs

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsWriteExposition(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics()
	require.NoError(t, err)

	m.FilesScanned.Add(context.Background(), 3)
	m.ErrorsTotal.Add(context.Background(), 1)

	var buf strings.Builder
	require.NoError(t, m.WriteExposition(&buf))

	out := buf.String()
	assert.Contains(t, out, "polyglotscan_files_scanned")
	assert.Contains(t, out, "polyglotscan_errors_total")

	require.NoError(t, m.Shutdown(context.Background()))
}
