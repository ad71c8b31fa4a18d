package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfviewer/internal/config"
	"pdfviewer/internal/events"
	storeMocks "pdfviewer/internal/storage/mocks"
)

func TestNewSource(t *testing.T) {
	store := new(storeMocks.MockStorage)

	for _, backend := range []string{"", "storage", "placeholder"} {
		src, err := newSource(&config.AppConfig{Source: config.SourceConfig{Backend: backend}}, store)
		require.NoError(t, err, backend)
		assert.NotNil(t, src)
	}

	src, err := newSource(&config.AppConfig{Source: config.SourceConfig{Backend: "http", HTTPBaseURL: "http://pages.local"}}, store)
	require.NoError(t, err)
	assert.NotNil(t, src)

	_, err = newSource(&config.AppConfig{Source: config.SourceConfig{Backend: "http"}}, store)
	assert.Error(t, err)

	_, err = newSource(&config.AppConfig{Source: config.SourceConfig{Backend: "ftp"}}, store)
	assert.Error(t, err)
}

func TestNewPublisher_Disabled(t *testing.T) {
	pub, closeFn, err := newPublisher(config.NATSConfig{})
	require.NoError(t, err)
	assert.IsType(t, events.Noop{}, pub)
	closeFn()
}
