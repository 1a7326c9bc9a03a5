// Package uploader drives the client side of video ingestion: obtain signed
// credentials, stream the file to the media host, then register the hosted
// path as a Video record once the user confirms. Confirmation is deliberately
// decoupled from upload completion so metadata can be reviewed first.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"

	"clipstream/pkg/mediahost"
	"clipstream/pkg/models"
	"clipstream/pkg/upauth"
)

type State string

const (
	Idle                State = "idle"
	AwaitingCredentials State = "awaiting_credentials"
	Uploading           State = "uploading"
	Uploaded            State = "uploaded"
	Saving              State = "saving"
	Saved               State = "saved"
	Failed              State = "failed"
)

func canTransition(from, to State) bool {
	if to == Failed {
		return from != Saved
	}
	switch from {
	case Idle:
		return to == AwaitingCredentials
	case AwaitingCredentials:
		return to == Uploading
	case Uploading:
		return to == Uploaded
	case Uploaded:
		return to == Saving
	case Saving:
		return to == Saved
	case Failed:
		return to == Idle
	default:
		return false
	}
}

var ErrBadState = errors.New("operation not valid in current state")

// CredentialSource issues signed upload credentials, typically the
// /upload-auth endpoint via the API client. It honours cancellation so an
// abort during the credential exchange does not leave a fetch in flight.
type CredentialSource interface {
	Issue(ctx context.Context) (upauth.Credentials, error)
}

// VideoCreator registers the hosted file as a Video record.
type VideoCreator interface {
	CreateVideo(ctx context.Context, v *models.Video) (*models.Video, error)
}

// Meta is what the user confirms before the record is created.
type Meta struct {
	Title       string
	Description string
	Controls    *bool
	Quality     int
}

type Uploader struct {
	creds  CredentialSource
	host   mediahost.Host
	videos VideoCreator

	// OnProgress, when set, observes monotonic 0-100 transfer progress.
	OnProgress mediahost.ProgressFunc

	mu       sync.Mutex
	state    State
	progress int
	result   *mediahost.UploadResult
	lastErr  error
	cancel   context.CancelFunc
}

func New(creds CredentialSource, host mediahost.Host, videos VideoCreator) *Uploader {
	return &Uploader{creds: creds, host: host, videos: videos, state: Idle}
}

func (u *Uploader) State() State {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

func (u *Uploader) Progress() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.progress
}

// Err returns the user-visible reason for the most recent failure.
func (u *Uploader) Err() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lastErr
}

// Upload runs Idle -> AwaitingCredentials -> Uploading -> Uploaded. It blocks
// until the transfer finishes, fails, or is aborted. No Video record is
// created here under any outcome.
func (u *Uploader) Upload(ctx context.Context, fileName string, body io.Reader, size int64) error {
	u.mu.Lock()
	if u.state == Failed {
		// A failed workflow resets on the next attempt; nothing was persisted.
		u.state = Idle
		u.progress = 0
		u.result = nil
	}
	u.mu.Unlock()

	if err := u.transition(Idle, AwaitingCredentials); err != nil {
		return err
	}

	// Abort() can cancel from the credential exchange onwards.
	ctx, cancel := context.WithCancel(ctx)
	u.mu.Lock()
	u.cancel = cancel
	u.mu.Unlock()
	defer cancel()

	creds, err := u.creds.Issue(ctx)
	if err != nil {
		return u.fail(fmt.Errorf("credential issue: %w", err))
	}

	if err := u.transition(AwaitingCredentials, Uploading); err != nil {
		return err
	}

	result, err := u.host.Upload(ctx, mediahost.UploadRequest{
		FileName:    fileName,
		Folder:      "/videos",
		Body:        body,
		Size:        size,
		Credentials: creds,
		OnProgress:  u.observeProgress,
	})
	if err != nil {
		return u.fail(err)
	}

	u.mu.Lock()
	u.result = result
	u.progress = 100
	u.mu.Unlock()
	log.Debug().Str("file", fileName).Str("path", result.FilePath).Msg("upload complete")
	return u.transition(Uploading, Uploaded)
}

// Confirm runs Uploaded -> Saving -> Saved, creating the Video record from
// the confirmed metadata and the hosted paths. Only a completed upload can be
// confirmed.
func (u *Uploader) Confirm(ctx context.Context, meta Meta) (*models.Video, error) {
	u.mu.Lock()
	if u.state != Uploaded {
		u.mu.Unlock()
		return nil, fmt.Errorf("confirm before upload completes: %w", ErrBadState)
	}
	result := u.result
	u.state = Saving
	u.mu.Unlock()

	video := &models.Video{
		Title:          meta.Title,
		Description:    meta.Description,
		VideoURL:       result.FilePath,
		ThumbnailURL:   result.ThumbnailPath,
		Controls:       meta.Controls,
		Transformation: models.Transformation{Quality: meta.Quality},
	}
	saved, err := u.videos.CreateVideo(ctx, video)
	if err != nil {
		return nil, u.fail(fmt.Errorf("save video record: %w", err))
	}

	u.mu.Lock()
	u.state = Saved
	u.mu.Unlock()
	return saved, nil
}

// Abort cancels the in-flight transfer. The upload call returns
// mediahost.ErrAborted, distinct from transport failures.
func (u *Uploader) Abort() {
	u.mu.Lock()
	cancel := u.cancel
	u.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (u *Uploader) observeProgress(pct int) {
	u.mu.Lock()
	if pct > u.progress {
		u.progress = pct
	}
	report := u.OnProgress
	u.mu.Unlock()
	if report != nil {
		report(pct)
	}
}

func (u *Uploader) transition(from, to State) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.state != from || !canTransition(from, to) {
		return fmt.Errorf("%s -> %s: %w", u.state, to, ErrBadState)
	}
	u.state = to
	return nil
}

// fail records the user-visible reason and moves to Failed. Nothing is ever
// partially persisted; the next Upload call resets to Idle.
func (u *Uploader) fail(err error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.state = Failed
	u.lastErr = err
	u.result = nil
	u.cancel = nil
	if !errors.Is(err, mediahost.ErrAborted) {
		log.Warn().Err(err).Msg("upload workflow failed")
	}
	return err
}
