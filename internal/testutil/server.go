package testutil

import (
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/tendant/layout-presets/pkg/layoutpreset"
	"github.com/tendant/layout-presets/pkg/layoutpreset/api"
)

// SetupTestServer creates a test server with the preset routes mounted at
// /presets over a seeded fixture. The server is closed with the test.
func SetupTestServer(t *testing.T, opts ...layoutpreset.Option) (*httptest.Server, *Fixture) {
	t.Helper()

	fixture := NewFixture(t, opts...)

	r := chi.NewRouter()
	r.Mount("/presets", api.NewPresetHandler(fixture.Service, "website").Routes())

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return server, fixture
}
