package event

import "time"

// GetOffset returns the offset of the bar the event occurred on
func (b *Base) GetOffset() int64 {
	return b.Offset
}

// SetOffset sets the offset
func (b *Base) SetOffset(o int64) {
	b.Offset = o
}

// GetTime returns the time
func (b *Base) GetTime() time.Time {
	return b.Time.UTC()
}

// GetReason returns the why
func (b *Base) GetReason() string {
	return b.Reason
}

// AppendReason adds reasoning for a decision being made
func (b *Base) AppendReason(y string) {
	if y == "" {
		return
	}
	if b.Reason == "" {
		b.Reason = y
		return
	}
	b.Reason += ". " + y
}
