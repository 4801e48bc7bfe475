package reporting

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sink := &FileSink{Dir: dir}

	require.NoError(t, sink.Write(context.Background(), "result.json", []byte(`{}`), "application/json"))

	data, err := os.ReadFile(filepath.Join(dir, "result.json"))
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestNewSink(t *testing.T) {
	s, err := NewSink("results")
	require.NoError(t, err)
	assert.IsType(t, &FileSink{}, s)

	s, err = NewSink("https://acct.blob.core.windows.net/results?sv=2023-01-03&sig=abc")
	require.NoError(t, err)
	assert.IsType(t, &BlobSink{}, s)
}

type recordingTransport struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
}

func (f *recordingTransport) Do(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.bodies = append(f.bodies, string(body))
	f.mu.Unlock()

	return &http.Response{
		StatusCode: http.StatusCreated,
		Header:     http.Header{},
		Body:       http.NoBody,
		Request:    req,
	}, nil
}

func TestBlobSink_Upload(t *testing.T) {
	transport := &recordingTransport{}
	sink, err := NewBlobSink("https://acct.blob.core.windows.net/results/nightly?sv=2023-01-03&sig=abc", BlobSinkOptions{
		ClientOptions: &azblob.ClientOptions{ClientOptions: azcore.ClientOptions{Transport: transport}},
	})
	require.NoError(t, err)
	assert.Equal(t, "nightly/run.json", sink.BlobName("run.json"))

	reports := []*Report{NewReport("exact", testProblem(), testResult(), nil)}
	require.NoError(t, Publish(context.Background(), sink, "run", reports, FormatJSON))

	require.Len(t, transport.requests, 1)
	req := transport.requests[0]
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/results/nightly/run.json", req.URL.Path)
	assert.Equal(t, "abc", req.URL.Query().Get("sig"))
	assert.Equal(t, "application/json", req.Header.Get("x-ms-blob-content-type"))
	assert.Contains(t, transport.bodies[0], `"problem": "camping"`)
}

func TestBlobSink_RequiresContainer(t *testing.T) {
	_, err := NewBlobSink("https://acct.blob.core.windows.net/", BlobSinkOptions{})
	require.Error(t, err)
}

func TestPublish_FileSink(t *testing.T) {
	dir := t.TempDir()
	reports := []*Report{NewReport("exact", testProblem(), testResult(), nil)}

	require.NoError(t, Publish(context.Background(), &FileSink{Dir: dir}, "run", reports, FormatMarkdown))

	data, err := os.ReadFile(filepath.Join(dir, "run.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Knapsack results")
}
