package validator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverity_Ordering(t *testing.T) {
	assert.Greater(t, SeverityError, SeverityWarning)
	assert.Greater(t, SeverityWarning, SeverityInfo)
	assert.Equal(t, []Severity{SeverityError, SeverityWarning, SeverityInfo}, Severities)
}

func TestParseSeverity(t *testing.T) {
	sev, err := ParseSeverity("WARNING")
	require.NoError(t, err)
	assert.Equal(t, SeverityWarning, sev)

	_, err = ParseSeverity("fatal")
	assert.ErrorIs(t, err, ErrInvalidSeverity)
}

func TestFinding_JSON(t *testing.T) {
	data, err := json.Marshal(Finding{Severity: SeverityWarning, Message: "m", Field: "icons.16"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"severity":"warning","message":"m","field":"icons.16"}`, string(data))

	var f Finding
	require.NoError(t, json.Unmarshal(data, &f))
	assert.Equal(t, SeverityWarning, f.Severity)
}

func TestFinding_String(t *testing.T) {
	assert.Equal(t, "Bad thing [name]", Finding{Message: "Bad thing", Field: "name"}.String())
	assert.Equal(t, "Bad thing", Finding{Message: "Bad thing"}.String())
}

func TestGroupBySeverity(t *testing.T) {
	findings := []Finding{
		{Severity: SeverityInfo, Message: "i1"},
		{Severity: SeverityError, Message: "e1"},
		{Severity: SeverityInfo, Message: "i2"},
		{Severity: SeverityError, Message: "e2"},
	}

	groups := GroupBySeverity(findings)
	require.Len(t, groups, 2)
	assert.Equal(t, SeverityError, groups[0].Severity)
	assert.Equal(t, "e1", groups[0].Findings[0].Message)
	assert.Equal(t, "e2", groups[0].Findings[1].Message)
	assert.Equal(t, SeverityInfo, groups[1].Severity)
	assert.Len(t, groups[1].Findings, 2)

	assert.Empty(t, GroupBySeverity(nil))
}

func TestSummarizeAndHasErrors(t *testing.T) {
	findings := []Finding{
		{Severity: SeverityWarning},
		{Severity: SeverityInfo},
		{Severity: SeverityWarning},
	}
	s := Summarize(findings)
	assert.Equal(t, Summary{Warnings: 2, Infos: 1}, s)
	assert.Equal(t, 3, s.Total())
	assert.False(t, HasErrors(findings))

	highest, ok := MaxSeverity(findings)
	assert.True(t, ok)
	assert.Equal(t, SeverityWarning, highest)

	_, ok = MaxSeverity(nil)
	assert.False(t, ok)

	assert.True(t, HasErrors(append(findings, Finding{Severity: SeverityError})))
}
