// Package mediahost talks to the external media host: files are uploaded
// directly with signed credentials and served back through host-relative
// paths. The server never proxies video bytes.
package mediahost

import (
	"context"
	"errors"
	"io"

	"clipstream/pkg/upauth"
)

var (
	// ErrAborted reports an upload cancelled by the caller. Distinct from
	// transport failures so the workflow can tell the two apart.
	ErrAborted = errors.New("upload aborted")
	// ErrInvalidRequest reports a 4xx rejection from the host.
	ErrInvalidRequest = errors.New("host rejected upload")
	// ErrServer reports a 5xx failure from the host.
	ErrServer = errors.New("host upload failed")
)

// ProgressFunc receives monotonic byte-level progress in percent (0-100).
type ProgressFunc func(percent int)

type UploadRequest struct {
	FileName    string
	Folder      string
	ContentType string
	Body        io.Reader
	Size        int64
	Credentials upauth.Credentials
	OnProgress  ProgressFunc
}

type UploadResult struct {
	// FilePath is the host-relative path stored as Video.VideoURL.
	FilePath      string
	ThumbnailPath string
	URL           string
}

type Host interface {
	Upload(ctx context.Context, req UploadRequest) (*UploadResult, error)
}

// progressReader reports percent progress as the transport drains the body.
// Reported values never decrease and never exceed 100.
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	last   int
	report ProgressFunc
}

func newProgressReader(r io.Reader, total int64, report ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, report: report}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.report != nil && p.total > 0 {
		pct := int(p.read * 100 / p.total)
		if pct > 100 {
			pct = 100
		}
		if pct > p.last {
			p.last = pct
			p.report(pct)
		}
	}
	return n, err
}
