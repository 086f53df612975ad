package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	assert.Equal(t, VisitStatusActive, DeriveStatus(nil))

	now := time.Now()
	assert.Equal(t, VisitStatusCheckedOut, DeriveStatus(&now))

	v := Visit{CheckInAt: now}
	assert.Equal(t, VisitStatusActive, v.Status())
	v.CheckOutAt = &now
	assert.Equal(t, VisitStatusCheckedOut, v.Status())
}
