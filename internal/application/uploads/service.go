package uploads

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// HTTPClient is the part of http.Client we use, for test doubles.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Service creates signed upload URLs in Supabase storage for avatars and
// request photos.
type Service struct {
	SupabaseURL string
	SecretKey   string
	Client      HTTPClient
}

func NewService(supabaseURL, secretKey string) *Service {
	return &Service{
		SupabaseURL: supabaseURL,
		SecretKey:   secretKey,
		Client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// SignedUpload holds the one-time upload target returned to the client.
type SignedUpload struct {
	Path      string `json:"path"`
	UploadURL string `json:"upload_url"`
	Token     string `json:"token"`
}

// CreateSignedUpload asks Supabase for a signed upload URL under the given
// bucket. The object key is a fresh UUID plus the caller's extension.
func (s *Service) CreateSignedUpload(bucket, ext string) (*SignedUpload, error) {
	objectKey := uuid.New().String() + ext
	endpoint := fmt.Sprintf("%s/storage/v1/object/upload/sign/%s/%s", s.SupabaseURL, bucket, objectKey)

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader([]byte("{}")))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase sign: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("supabase sign: status %d: %s", resp.StatusCode, string(b))
	}

	var parsed struct {
		URL   string `json:"url"`
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	return &SignedUpload{
		Path:      bucket + "/" + objectKey,
		UploadURL: s.SupabaseURL + "/storage/v1" + parsed.URL,
		Token:     parsed.Token,
	}, nil
}
