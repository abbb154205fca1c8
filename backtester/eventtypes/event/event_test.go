package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAppendReason(t *testing.T) {
	t.Parallel()
	b := &Base{}
	b.AppendReason("")
	assert.Empty(t, b.GetReason())
	b.AppendReason("gap exit")
	assert.Equal(t, "gap exit", b.GetReason())
	b.AppendReason("fallback")
	assert.Equal(t, "gap exit. fallback", b.GetReason())
}

func TestOffsetAndTime(t *testing.T) {
	t.Parallel()
	tt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.FixedZone("plus", 3600))
	b := &Base{Time: tt}
	b.SetOffset(7)
	assert.Equal(t, int64(7), b.GetOffset())
	assert.Equal(t, time.UTC, b.GetTime().Location())
	assert.True(t, b.GetTime().Equal(tt))
}
