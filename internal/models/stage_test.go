package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageString(t *testing.T) {
	assert.Equal(t, "Unknown", Unknown().String())
	assert.Equal(t, "Extracting", Extracting().String())
	assert.Equal(t, "Failed: API Error: 400", Failed("API Error: 400").String())
	assert.Equal(t, "Failed", Failed("").String())
	assert.Equal(t, "StageKind(99)", StageKind(99).String())
}

func TestParseStageRoundTrip(t *testing.T) {
	stages := []Stage{
		Unknown(), Uploading(), Extracting(), Processing(), Extracted(),
		Completed(), Stopped(), Failed(""), Failed("No result received from processing"),
	}
	for _, s := range stages {
		got, err := ParseStage(s.String())
		require.NoError(t, err, s.String())
		assert.Equal(t, s, got)
	}
}

func TestParseStageRejectsUnknownNames(t *testing.T) {
	for _, s := range []string{"", "Done", "Failedx", "completed"} {
		_, err := ParseStage(s)
		assert.Error(t, err, s)
	}
}

func TestStageTerminal(t *testing.T) {
	assert.True(t, Completed().Terminal())
	assert.True(t, Failed("x").Terminal())
	assert.True(t, Stopped().Terminal())
	for _, s := range []Stage{Unknown(), Uploading(), Extracting(), Processing(), Extracted()} {
		assert.False(t, s.Terminal(), s.String())
	}
}
