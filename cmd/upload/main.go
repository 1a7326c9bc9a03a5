// Command upload drives the client side of video ingestion from the
// terminal: log in, stream a file to the media host with live progress, then
// confirm the metadata to create the video record. Ctrl-C aborts the
// in-flight transfer without leaving a partial record behind.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"

	"clipstream/cmd/config"
	"clipstream/pkg/apiclient"
	"clipstream/pkg/mediahost"
	"clipstream/pkg/uploader"
)

func main() {
	var (
		server      = flag.String("server", "http://localhost:8080", "API base URL")
		email       = flag.String("email", "", "account email")
		password    = flag.String("password", "", "account password")
		title       = flag.String("title", "", "video title")
		description = flag.String("description", "", "video description")
		quality     = flag.Int("quality", 0, "serving quality (default 100)")
		noControls  = flag.Bool("no-controls", false, "disable player controls")
		file        = flag.String("file", "", "video file to upload")
	)
	flag.Parse()

	config.Load()

	if *file == "" || *title == "" || *description == "" {
		fmt.Fprintln(os.Stderr, "usage: upload -file <path> -title <t> -description <d> [-email -password ...]")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := apiclient.New(*server)
	if *email != "" {
		if err := client.Login(ctx, *email, *password); err != nil {
			log.Fatal().Err(err).Msg("login failed")
		}
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("open file")
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		log.Fatal().Err(err).Msg("stat file")
	}

	var host mediahost.Host
	switch config.HostKind {
	case "s3":
		host = mediahost.NewS3Host(config.AWSRegion, config.S3Bucket)
	default:
		host = mediahost.NewClient(config.HostUploadEndpoint, config.HostPublicKey)
	}

	up := uploader.New(client, host, client)
	up.OnProgress = func(pct int) {
		fmt.Printf("\ruploading %3d%%", pct)
	}

	if err := up.Upload(ctx, filepath.Base(*file), f, info.Size()); err != nil {
		fmt.Println()
		if errors.Is(err, mediahost.ErrAborted) {
			log.Fatal().Msg("upload aborted")
		}
		log.Fatal().Err(err).Msg("upload failed")
	}
	fmt.Println()

	meta := uploader.Meta{Title: *title, Description: *description, Quality: *quality}
	if *noControls {
		off := false
		meta.Controls = &off
	}

	video, err := up.Confirm(ctx, meta)
	if err != nil {
		log.Fatal().Err(err).Msg("saving video record failed")
	}
	fmt.Printf("saved video %d: %s\n", video.ID, video.VideoURL)
}
