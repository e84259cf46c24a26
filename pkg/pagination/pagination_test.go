package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-3))
	assert.Equal(t, 10, NormalizeLimit(10))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+50))
	assert.Equal(t, 11, LimitWithBuffer(10))
}

func TestCursorRoundTrip(t *testing.T) {
	original := Cursor{CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 123, time.UTC), ID: uuid.New()}

	parsed, err := ParseCursor(EncodeCursor(original))
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.True(t, original.CreatedAt.Equal(parsed.CreatedAt))
	assert.Equal(t, original.ID, parsed.ID)
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	empty, err := ParseCursor("  ")
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = ParseCursor("not-base64!!")
	assert.Error(t, err)

	_, err = ParseCursor(EncodeCursor(Cursor{CreatedAt: time.Now(), ID: uuid.Nil})[:4])
	assert.Error(t, err)
}

func TestSplit(t *testing.T) {
	type row struct {
		id uuid.UUID
		ts time.Time
	}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []row{
		{id: uuid.New(), ts: base.Add(3 * time.Minute)},
		{id: uuid.New(), ts: base.Add(2 * time.Minute)},
		{id: uuid.New(), ts: base.Add(time.Minute)},
	}
	cursorOf := func(r row) Cursor { return Cursor{CreatedAt: r.ts, ID: r.id} }

	page, next := Split(rows, 2, cursorOf)
	require.Len(t, page, 2)
	require.NotEmpty(t, next)

	decoded, err := ParseCursor(next)
	require.NoError(t, err)
	assert.Equal(t, rows[1].id, decoded.ID)

	page, next = Split(rows[:2], 2, cursorOf)
	assert.Len(t, page, 2)
	assert.Empty(t, next)
}
