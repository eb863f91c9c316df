package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewerThan(t *testing.T) {
	assert.True(t, newerThan("1.10.0", "1.9.3"))
	assert.True(t, newerThan("2.0.0", "1.99.99"))
	assert.False(t, newerThan("1.2.3", "1.2.3"))
	assert.False(t, newerThan("1.2.3", "1.2.4-dirty"))
}

func TestCheckLatestVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name":"v1.4.0"}`))
	}))
	defer server.Close()

	original := releasesURL
	releasesURL = server.URL
	defer func() { releasesURL = original }()

	assert.Equal(t, "1.4.0", CheckLatestVersion(context.Background(), "1.3.9"))
	assert.Equal(t, "", CheckLatestVersion(context.Background(), "1.4.0"))
	assert.Equal(t, "", CheckLatestVersion(context.Background(), "0.0.0-dev"))
}

func TestFormatVersion(t *testing.T) {
	origVersion, origCommit, origBuild := Version, Commit, BuildTime
	defer func() { Version, Commit, BuildTime = origVersion, origCommit, origBuild }()

	Version, Commit, BuildTime = "1.2.3", "abc1234", "2024-03-15T10:00:00Z"
	assert.Equal(t, "1.2.3 (commit: abc1234, built at: 2024-03-15T10:00:00Z)", FormatVersion())

	Version, Commit, BuildTime = "1.2.3", "", ""
	assert.Equal(t, "1.2.3 (development)", FormatVersion())
}
