package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type bucketServer struct {
	mu      sync.Mutex
	objects map[string][]byte
	lastReq struct {
		Method        string
		Path          string
		Authorization string
		ContentSHA    string
	}
}

func newBucketServer() *bucketServer {
	return &bucketServer{objects: make(map[string][]byte)}
}

func (s *bucketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	_ = r.Body.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastReq.Method = r.Method
	s.lastReq.Path = r.URL.Path
	s.lastReq.Authorization = r.Header.Get("Authorization")
	s.lastReq.ContentSHA = r.Header.Get("X-Amz-Content-Sha256")

	switch r.Method {
	case http.MethodPut:
		s.objects[r.URL.Path] = body
		w.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(s.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestMediaClientDisabledWithoutBucket(t *testing.T) {
	client := newMediaClient(MediaStorageConfig{})
	if client.Enabled() {
		t.Fatal("expected noop client when storage is unconfigured")
	}
	object, err := client.Upload(context.Background(), "videos/abc", "video/mp4", []byte("data"))
	if err != nil {
		t.Fatalf("noop upload returned error: %v", err)
	}
	if object.Key != "" || object.URL != "" {
		t.Fatalf("expected empty object from noop client, got %+v", object)
	}
}

func TestMediaClientUploadsAndSigns(t *testing.T) {
	server := newBucketServer()
	ts := httptest.NewServer(server)
	defer ts.Close()

	client := newMediaClient(MediaStorageConfig{
		Endpoint:  ts.URL,
		Bucket:    "media",
		Region:    "us-east-1",
		AccessKey: "AKID",
		SecretKey: "secret",
	})
	if !client.Enabled() {
		t.Fatal("expected configured client to be enabled")
	}

	object, err := client.Upload(context.Background(), "videos/abc", "video/mp4", []byte("payload"))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if object.Key != "videos/abc" {
		t.Fatalf("expected key videos/abc, got %s", object.Key)
	}
	if !strings.Contains(object.URL, "/media/videos/abc") {
		t.Fatalf("expected URL under bucket path, got %s", object.URL)
	}

	server.mu.Lock()
	req := server.lastReq
	stored, ok := server.objects["/media/videos/abc"]
	server.mu.Unlock()
	if !ok || string(stored) != "payload" {
		t.Fatalf("expected object stored under bucket path, got %v", server.objects)
	}
	if !strings.HasPrefix(req.Authorization, "AWS4-HMAC-SHA256 Credential=AKID/") {
		t.Fatalf("expected SigV4 authorization header, got %q", req.Authorization)
	}
	if req.ContentSHA == "" || req.ContentSHA == emptyPayloadHash {
		t.Fatalf("expected payload hash header, got %q", req.ContentSHA)
	}

	if err := client.Delete(context.Background(), object.Key); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	server.mu.Lock()
	_, stillThere := server.objects["/media/videos/abc"]
	server.mu.Unlock()
	if stillThere {
		t.Fatal("expected object to be deleted")
	}
}

func TestMediaClientUnsignedWithoutCredentials(t *testing.T) {
	server := newBucketServer()
	ts := httptest.NewServer(server)
	defer ts.Close()

	client := newMediaClient(MediaStorageConfig{Endpoint: ts.URL, Bucket: "media"})
	if _, err := client.Upload(context.Background(), "logos/x", "image/png", []byte("png")); err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	server.mu.Lock()
	auth := server.lastReq.Authorization
	server.mu.Unlock()
	if auth != "" {
		t.Fatalf("expected unsigned request without credentials, got %q", auth)
	}
}

func TestMediaClientPublicEndpointOverride(t *testing.T) {
	server := newBucketServer()
	ts := httptest.NewServer(server)
	defer ts.Close()

	client := newMediaClient(MediaStorageConfig{
		Endpoint:       ts.URL,
		PublicEndpoint: "https://cdn.example.com/media",
		Bucket:         "media",
	})
	object, err := client.Upload(context.Background(), "videos/abc", "video/mp4", []byte("payload"))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if object.URL != "https://cdn.example.com/media/videos/abc" {
		t.Fatalf("expected CDN URL, got %s", object.URL)
	}
}

func TestApplyPrefix(t *testing.T) {
	client := &s3MediaClient{cfg: MediaStorageConfig{Prefix: "ourtube"}}
	cases := []struct {
		in   string
		want string
	}{
		{"videos/abc", "ourtube/videos/abc"},
		{"/videos/abc", "ourtube/videos/abc"},
		{"ourtube/videos/abc", "ourtube/videos/abc"},
		{"", "ourtube"},
	}
	for _, tc := range cases {
		if got := client.applyPrefix(tc.in); got != tc.want {
			t.Fatalf("applyPrefix(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
