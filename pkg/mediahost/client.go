package mediahost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Client uploads to the host's HTTP endpoint using issued signed credentials.
type Client struct {
	endpoint  string
	publicKey string
	http      *http.Client
}

func NewClient(endpoint, publicKey string) *Client {
	return &Client{
		endpoint:  endpoint,
		publicKey: publicKey,
		http:      http.DefaultClient,
	}
}

type hostResponse struct {
	FilePath     string `json:"filePath"`
	ThumbnailURL string `json:"thumbnailUrl"`
	URL          string `json:"url"`
	Message      string `json:"message"`
}

// Upload streams the file as a multipart body together with the credential
// fields. The body is never buffered in full; progress is reported as the
// transport drains it.
func (c *Client) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		err := writeForm(form, c.publicKey, req)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(form.Close())
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, pr)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %v", err)
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())

	// Cancellation must also unblock the pipe feeding the request body;
	// otherwise the transport's write loop stays parked in a pipe read and
	// Do never returns.
	stop := context.AfterFunc(ctx, func() { pr.CloseWithError(ctx.Err()) })
	defer stop()

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return nil, ErrAborted
		}
		return nil, fmt.Errorf("upload transfer: %w", err)
	}
	defer resp.Body.Close()

	var body hostResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil && resp.StatusCode < 300 {
		return nil, fmt.Errorf("decode host response: %v", err)
	}

	switch {
	case resp.StatusCode >= 500:
		log.Warn().Int("status", resp.StatusCode).Str("file", req.FileName).Msg("host upload failed")
		return nil, fmt.Errorf("%s: %w", body.Message, ErrServer)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%s: %w", body.Message, ErrInvalidRequest)
	}

	if req.OnProgress != nil {
		req.OnProgress(100)
	}
	return &UploadResult{
		FilePath:      body.FilePath,
		ThumbnailPath: body.ThumbnailURL,
		URL:           body.URL,
	}, nil
}

func writeForm(form *multipart.Writer, publicKey string, req UploadRequest) error {
	fields := map[string]string{
		"fileName":          req.FileName,
		"folder":            req.Folder,
		"useUniqueFileName": "true",
		"publicKey":         publicKey,
		"token":             req.Credentials.Token,
		"signature":         req.Credentials.Signature,
		"expire":            strconv.FormatInt(req.Credentials.Expire, 10),
	}
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := form.WriteField(k, v); err != nil {
			return err
		}
	}

	part, err := form.CreateFormFile("file", req.FileName)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, newProgressReader(req.Body, req.Size, req.OnProgress))
	return err
}
