package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRFIssueAndVerify(t *testing.T) {
	m := NewCSRFManager("test-secret", time.Hour)

	tok, err := m.Issue("sess-1")
	require.NoError(t, err)
	assert.NoError(t, m.Verify(tok, "sess-1"))
}

func TestCSRFRejectsWrongSession(t *testing.T) {
	m := NewCSRFManager("test-secret", time.Hour)

	tok, err := m.Issue("sess-1")
	require.NoError(t, err)
	assert.Error(t, m.Verify(tok, "sess-2"))
}

func TestCSRFRejectsForgedToken(t *testing.T) {
	m := NewCSRFManager("test-secret", time.Hour)
	other := NewCSRFManager("other-secret", time.Hour)

	tok, err := other.Issue("sess-1")
	require.NoError(t, err)
	assert.Error(t, m.Verify(tok, "sess-1"))
	assert.Error(t, m.Verify("garbage", "sess-1"))
}

func TestCSRFRejectsExpiredToken(t *testing.T) {
	m := NewCSRFManager("test-secret", -time.Hour)

	tok, err := m.Issue("sess-1")
	require.NoError(t, err)
	assert.Error(t, m.Verify(tok, "sess-1"))
}
