package sqlshape

import (
	"testing"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/stretchr/testify/assert"
)

func TestInferColumnType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []any
		want   columnType
	}{
		{name: "empty", values: nil, want: columnTypeText},
		{name: "all null", values: []any{nil, nil}, want: columnTypeText},
		{name: "integers", values: []any{int64(1), nil, 3}, want: columnTypeInteger},
		{name: "reals", values: []any{1.5, 2.0}, want: columnTypeReal},
		{name: "integers widen to real", values: []any{int64(1), 2.5}, want: columnTypeReal},
		{name: "booleans", values: []any{true, false}, want: columnTypeBoolean},
		{name: "blobs", values: []any{[]byte{1, 2}}, want: columnTypeBlob},
		{name: "times", values: []any{time.Now()}, want: columnTypeDatetime},
		{name: "datetime strings", values: []any{"2024-01-02", "2024-01-02 03:04:05", "2024-01-02T03:04:05Z"}, want: columnTypeDatetime},
		{name: "text", values: []any{"alice"}, want: columnTypeText},
		{name: "text with numbers", values: []any{"alice", int64(3)}, want: columnTypeText},
		{name: "blob with text", values: []any{[]byte("a"), "b"}, want: columnTypeText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, inferColumnType(tt.values))
		})
	}
}

func TestParseDatetime(t *testing.T) {
	t.Parallel()

	got, ok := parseDatetime("2024-05-01 12:30:00")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC), got)

	_, ok = parseDatetime("2024-13-01")
	assert.False(t, ok)
	_, ok = parseDatetime("yesterday")
	assert.False(t, ok)
	_, ok = parseDatetime("")
	assert.False(t, ok)
}

func TestInferColumnsInfo(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{"id": int64(1), "name": "alice"},
		{"id": int64(2)},
	}
	assert.Equal(t, []columnInfo{
		{Name: "id", Type: columnTypeInteger},
		{Name: "name", Type: columnTypeText},
	}, inferColumnsInfo([]string{"id", "name"}, rows))
	assert.Nil(t, inferColumnsInfo(nil, rows))
}

func TestColumnType_arrowType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, arrow.INT64, columnTypeInteger.arrowType().ID())
	assert.Equal(t, arrow.FLOAT64, columnTypeReal.arrowType().ID())
	assert.Equal(t, arrow.BOOL, columnTypeBoolean.arrowType().ID())
	assert.Equal(t, arrow.BINARY, columnTypeBlob.arrowType().ID())
	assert.Equal(t, arrow.TIMESTAMP, columnTypeDatetime.arrowType().ID())
	assert.Equal(t, arrow.STRING, columnTypeText.arrowType().ID())
	assert.Equal(t, "INTEGER", columnTypeInteger.String())
	assert.Equal(t, "TEXT", columnTypeText.String())
}
