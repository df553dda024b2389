package uploads

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	lastReq *http.Request
	status  int
	body    string
}

func (s *stubClient) Do(req *http.Request) (*http.Response, error) {
	s.lastReq = req
	return &http.Response{
		StatusCode: s.status,
		Body:       io.NopCloser(strings.NewReader(s.body)),
		Header:     make(http.Header),
	}, nil
}

func TestCreateSignedUpload(t *testing.T) {
	stub := &stubClient{
		status: 200,
		body:   `{"url": "/object/upload/sign/avatars/abc.png?token=tok", "token": "tok"}`,
	}
	svc := &Service{
		SupabaseURL: "https://proj.supabase.co",
		SecretKey:   "service-role-key",
		Client:      stub,
	}

	signed, err := svc.CreateSignedUpload("avatars", ".png")
	require.NoError(t, err)

	assert.Equal(t, "Bearer service-role-key", stub.lastReq.Header.Get("Authorization"))
	assert.Contains(t, stub.lastReq.URL.Path, "/storage/v1/object/upload/sign/avatars/")
	assert.True(t, strings.HasSuffix(signed.Path, ".png"))
	assert.Equal(t, "tok", signed.Token)
	assert.True(t, strings.HasPrefix(signed.UploadURL, "https://proj.supabase.co/storage/v1/"))
}

func TestCreateSignedUploadUpstreamError(t *testing.T) {
	stub := &stubClient{status: 403, body: `{"message":"bad key"}`}
	svc := &Service{SupabaseURL: "https://proj.supabase.co", SecretKey: "anon", Client: stub}

	_, err := svc.CreateSignedUpload("avatars", ".png")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
