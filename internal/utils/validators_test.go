package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidParticipantID(t *testing.T) {
	assert.True(t, IsValidParticipantID("subj-42"))
	assert.True(t, IsValidParticipantID("R_2aB3cD4eF5gH6iJ"))
	assert.True(t, IsValidParticipantID("pilot_group_07"))

	assert.False(t, IsValidParticipantID(""))
	assert.False(t, IsValidParticipantID("has space"))
	assert.False(t, IsValidParticipantID("semi;colon"))
	assert.False(t, IsValidParticipantID(strings.Repeat("a", 129)))
	assert.True(t, IsValidParticipantID(strings.Repeat("a", 128)))
}
