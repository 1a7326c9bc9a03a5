package mediahost

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"clipstream/pkg/upauth"
)

var testCreds = upauth.Credentials{Token: "tok", Signature: "sig", Expire: 1700000000}

func TestClientUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "tok", r.FormValue("token"))
		require.Equal(t, "sig", r.FormValue("signature"))
		require.Equal(t, "1700000000", r.FormValue("expire"))
		require.Equal(t, "pub", r.FormValue("publicKey"))
		require.Equal(t, "clip.mp4", r.FormValue("fileName"))

		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, "video-bytes", string(content))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"filePath":"/videos/clip.mp4","thumbnailUrl":"/videos/clip.jpg","url":"https://host/videos/clip.mp4"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "pub")
	body := strings.NewReader("video-bytes")

	var progress []int
	result, err := client.Upload(context.Background(), UploadRequest{
		FileName:    "clip.mp4",
		Body:        body,
		Size:        body.Size(),
		Credentials: testCreds,
		OnProgress:  func(pct int) { progress = append(progress, pct) },
	})
	require.NoError(t, err)
	require.Equal(t, "/videos/clip.mp4", result.FilePath)
	require.Equal(t, "/videos/clip.jpg", result.ThumbnailPath)
	require.Equal(t, "https://host/videos/clip.mp4", result.URL)

	require.NotEmpty(t, progress)
	require.Equal(t, 100, progress[len(progress)-1])
	for i := 1; i < len(progress); i++ {
		require.GreaterOrEqual(t, progress[i], progress[i-1])
	}
}

func TestClientUploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"invalid signature"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "pub")
	_, err := client.Upload(context.Background(), UploadRequest{
		FileName:    "clip.mp4",
		Body:        strings.NewReader("x"),
		Size:        1,
		Credentials: testCreds,
	})
	require.ErrorIs(t, err, ErrInvalidRequest)
	require.Contains(t, err.Error(), "invalid signature")
}

func TestClientUploadServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "pub")
	_, err := client.Upload(context.Background(), UploadRequest{
		FileName:    "clip.mp4",
		Body:        strings.NewReader("x"),
		Size:        1,
		Credentials: testCreds,
	})
	require.ErrorIs(t, err, ErrServer)
}

func TestClientUploadAborted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
	}))
	defer srv.Close()

	// A body that never finishes keeps the transfer in flight until cancel.
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := NewClient(srv.URL, "pub")
	errCh := make(chan error, 1)
	go func() {
		_, err := client.Upload(ctx, UploadRequest{
			FileName:    "clip.mp4",
			Body:        pr,
			Size:        1 << 20,
			Credentials: testCreds,
		})
		errCh <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	// Cancelling mid-transfer must return promptly, not hang on the body pipe.
	select {
	case err := <-errCh:
		require.ErrorIs(t, err, ErrAborted)
	case <-time.After(5 * time.Second):
		t.Fatal("upload did not return after cancellation")
	}
}

func TestProgressReaderMonotonic(t *testing.T) {
	var reported []int
	r := newProgressReader(strings.NewReader(strings.Repeat("a", 100)), 100, func(pct int) {
		reported = append(reported, pct)
	})

	buf := make([]byte, 7)
	for {
		if _, err := r.Read(buf); err == io.EOF {
			break
		}
	}

	require.NotEmpty(t, reported)
	require.Equal(t, 100, reported[len(reported)-1])
	for i := 1; i < len(reported); i++ {
		require.Greater(t, reported[i], reported[i-1])
	}
}
