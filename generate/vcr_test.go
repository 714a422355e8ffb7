package generate

import (
	"net/http"
	"path/filepath"
	"testing"

	"gopkg.in/dnaeon/go-vcr.v2/cassette"
	"gopkg.in/dnaeon/go-vcr.v2/recorder"

	"github.com/pithecene-io/snapclone/types"
)

// newRecorder replays testdata/fixtures/<name>.yaml, matching on method
// and URL only.
func newRecorder(t *testing.T, name string) *recorder.Recorder {
	t.Helper()
	r, err := recorder.NewAsMode(filepath.Join("testdata", "fixtures", name), recorder.ModeReplaying, nil)
	if err != nil {
		t.Fatalf("create recorder: %v", err)
	}
	r.SetMatcher(func(r *http.Request, i cassette.Request) bool {
		return r.Method == i.Method && r.URL.String() == i.URL
	})
	t.Cleanup(func() {
		if err := r.Stop(); err != nil {
			t.Errorf("stop recorder: %v", err)
		}
	})
	return r
}

func TestGenerate_RecordedCompletion(t *testing.T) {
	r := newRecorder(t, "groq_chat_completion")

	f := newFixture(t, headerDocument, true)
	c := f.client(DefaultBaseURL, WithHTTPClient(&http.Client{Transport: r}))

	res := c.Generate(t.Context(), f.image)
	if !res.OK() {
		t.Fatalf("result = %+v, trail = %v", res.Err, res.Trail)
	}
	if res.Artifact != "const Header = () => <header>Hi</header>;" {
		t.Errorf("Artifact = %q", res.Artifact)
	}
}

func TestGenerate_RecordedRateLimit(t *testing.T) {
	r := newRecorder(t, "groq_rate_limited")

	f := newFixture(t, headerDocument, true)
	c := f.client(DefaultBaseURL, WithHTTPClient(&http.Client{Transport: r}))

	res := c.Generate(t.Context(), f.image)
	if res.OK() || res.Err.Kind != types.ErrRequestFailed || res.Err.Status != http.StatusTooManyRequests {
		t.Fatalf("result = %+v, want request_failed 429", res.Err)
	}
}
