package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		status Status
		scope  Scope
	}{
		{StatusPending, ScopeActive},
		{StatusWashed, ScopeActive},
		{StatusDried, ScopeActive},
		{StatusIroned, ScopeActive},
		{StatusReadyPicked, ScopeActive},
		{StatusCompleted, ScopeHistory},
		{StatusCancelled, ScopeHistory},
		{Status("delivered"), ScopeActive},
		{Status(""), ScopeActive},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.scope, tt.status.Classify(), "status %q", tt.status)
	}
}

func TestKnown(t *testing.T) {
	for _, s := range Statuses() {
		assert.True(t, s.Known(), "status %q", s)
	}
	assert.False(t, Status("delivered").Known())
	assert.False(t, Status("").Known())
	assert.False(t, Status("PENDING").Known())
}

func TestPresentKnown(t *testing.T) {
	p := StatusReadyPicked.Present()
	assert.NotEmpty(t, p.Icon)
	assert.NotEmpty(t, p.Color)
	assert.NotEmpty(t, p.Label)
}

func TestPresentUnknownFallsBack(t *testing.T) {
	p := Status("totally-new").Present()
	assert.Equal(t, "help-circle", p.Icon)
	assert.Equal(t, "#6B7280", p.Color)
	assert.Equal(t, "Unknown", p.Label)
}

func TestUsualTransition(t *testing.T) {
	assert.True(t, StatusPending.UsualTransition(StatusWashed))
	assert.True(t, StatusIroned.UsualTransition(StatusReadyPicked))
	assert.True(t, StatusReadyPicked.UsualTransition(StatusCompleted))
	assert.True(t, StatusPending.UsualTransition(StatusCancelled))

	assert.False(t, StatusCompleted.UsualTransition(StatusPending))
	assert.False(t, StatusPending.UsualTransition(StatusReadyPicked))
}
