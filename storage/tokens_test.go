package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qubeshub/com-oaipmh/models"
)

func TestMemoryStoreSetAndGet(t *testing.T) {
	s := NewMemoryTokenStore(time.Hour)

	// Unknown tokens read as absent, not as an error.
	got, err := s.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Set(models.ResumptionToken{Token: "t1", Start: 50, Limit: 25, Prefix: "oai_dc"}))

	got, err = s.Get("t1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 50, got.Start)
	assert.Equal(t, 25, got.Limit)
	assert.Equal(t, "oai_dc", got.Prefix)
	assert.False(t, got.ExpiresAt.IsZero())
}

func TestMemoryStoreExpiredReadsAsAbsent(t *testing.T) {
	s := NewMemoryTokenStore(time.Hour)

	require.NoError(t, s.Set(models.ResumptionToken{
		Token:     "old",
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	got, err := s.Get("old")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStoreSweep(t *testing.T) {
	s := NewMemoryTokenStore(time.Hour)

	require.NoError(t, s.Set(models.ResumptionToken{Token: "live"}))
	require.NoError(t, s.Set(models.ResumptionToken{Token: "dead1", ExpiresAt: time.Now().Add(-time.Minute)}))
	require.NoError(t, s.Set(models.ResumptionToken{Token: "dead2", ExpiresAt: time.Now().Add(-time.Hour)}))

	removed, err := s.Sweep()
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	got, err := s.Get("live")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestMemoryStoreConcurrentWriters(t *testing.T) {
	s := NewMemoryTokenStore(time.Hour)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				_ = s.Set(models.ResumptionToken{Token: string(rune('a'+n)) + "-token", Start: j})
				_, _ = s.Get("a-token")
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
