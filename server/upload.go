package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/etnz/debrepod/deb"
)

// uploadChunkChannelCapacity bounds how many body chunks may be buffered
// between the HTTP reader and the blocking file writer before the reader
// blocks.
const uploadChunkChannelCapacity = 50

var errAlreadyExists = errors.New("server: package already exists")

// UploadHandler accepts a raw .deb request body, streams it to a temporary
// file through a bounded channel, parses its control fields once fully
// received, and moves it into cfg.DebDirectory under
// {architecture}/{name}_{version}_{architecture}.deb. If the destination
// already exists the request fails, unless ?ignore_exists=true is set.
func UploadHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ignoreExists := r.URL.Query().Get("ignore_exists") == "true"

		tmp, err := os.CreateTemp("", "debrepod-upload-*")
		if err != nil {
			writeError(w, internal("create temp file", err))
			return
		}
		tmpPath := tmp.Name()
		defer os.Remove(tmpPath)

		if err := streamToFile(r.Context(), r.Body, tmp); err != nil {
			tmp.Close()
			writeError(w, err)
			return
		}
		if err := tmp.Close(); err != nil {
			writeError(w, internal("close temp file", err))
			return
		}

		if err := fileToStorage(tmpPath, cfg.DebDirectory); err != nil {
			if errors.Is(err, errAlreadyExists) && ignoreExists {
				w.WriteHeader(http.StatusOK)
				return
			}
			writeError(w, err)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

// streamToFile relays body into dst through a bounded channel: the HTTP
// goroutine reads chunks and sends them into the channel; a dedicated
// goroutine drains the channel and performs the (blocking) file write. If
// the request is aborted the channel send observes ctx.Done and the upload
// is cancelled.
func streamToFile(ctx context.Context, body io.ReadCloser, dst io.Writer) error {
	chunks := make(chan []byte, uploadChunkChannelCapacity)
	writeErr := make(chan error, 1)

	go func() {
		var err error
		for chunk := range chunks {
			if _, werr := dst.Write(chunk); werr != nil {
				err = werr
				break
			}
		}
		for range chunks {
			// drain so the sender never blocks after a write failure
		}
		writeErr <- err
	}()

	buf := make([]byte, 32*1024)
	var readErr error
readLoop:
	for {
		select {
		case <-ctx.Done():
			readErr = ctx.Err()
			break readLoop
		default:
		}

		n, err := body.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case chunks <- chunk:
			case <-ctx.Done():
				readErr = ctx.Err()
				break readLoop
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			readErr = err
			break
		}
	}
	close(chunks)

	if werr := <-writeErr; werr != nil {
		return internal("write upload body", werr)
	}
	if readErr != nil {
		return internal("read upload body", readErr)
	}
	return nil
}

// fileToStorage parses tmpPath's control fields and moves it into
// debDirectory/{architecture}/{name}_{version}_{architecture}.deb.
func fileToStorage(tmpPath, debDirectory string) error {
	raw, err := os.ReadFile(tmpPath)
	if err != nil {
		return internal("read staged upload", err)
	}

	controlText, err := deb.ExtractControl(bytes.NewReader(raw))
	if err != nil {
		return badRequest("extract control file", err)
	}
	fields, err := deb.ParseControl(controlText)
	if err != nil {
		return badRequest("parse control file", err)
	}
	p, err := deb.NewPackage(fields, bytes.NewReader(raw))
	if err != nil {
		return badRequest("validate control fields", err)
	}

	destDir := filepath.Join(debDirectory, p.Architecture)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return internal("create storage directory", err)
	}
	destPath := filepath.Join(destDir, fmt.Sprintf("%s_%s_%s.deb", p.Name, p.Version, p.Architecture))

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return errAlreadyExists
		}
		return internal("create storage file", err)
	}
	defer out.Close()

	if _, err := out.Write(raw); err != nil {
		return internal("write storage file", err)
	}
	return nil
}
