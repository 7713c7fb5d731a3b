package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// GetJSON issues a GET and decodes the body into out when the status matches.
func GetJSON(t *testing.T, url string, wantStatus int, out interface{}) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	decode(t, resp, wantStatus, out)
}

// PostJSON marshals body, posts it and decodes the response into out.
func PostJSON(t *testing.T, url string, body interface{}, wantStatus int, out interface{}) {
	t.Helper()

	reqJSON, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewBuffer(reqJSON))
	require.NoError(t, err)
	defer resp.Body.Close()

	decode(t, resp, wantStatus, out)
}

func decode(t *testing.T, resp *http.Response, wantStatus int, out interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, wantStatus, resp.StatusCode, "body: %s", body)

	if out != nil {
		require.NoError(t, json.Unmarshal(body, out))
	}
}
