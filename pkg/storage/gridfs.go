package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"picfeed/pkg/common"
	"picfeed/pkg/logger"
)

const (
	// ImagesPrefix is where GridFS images are served from.
	ImagesPrefix = "/images/"

	defaultTimeout = 30 * time.Second
)

// GridFS keeps images in a MongoDB GridFS bucket and serves them over HTTP.
type GridFS struct {
	bucket    IGridBucket
	publicURL string

	// gridfs deadlines are bucket-wide: uploads go one at a time and so do
	// download stream opens
	mu  sync.Mutex
	rmu sync.Mutex
}

func NewGridFS(db *mongo.Database, name, publicURL string) (*GridFS, error) {
	b, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(name))
	if err != nil {
		return nil, fmt.Errorf("storage/gridfs: can't open bucket %s: %w", name, err)
	}
	return newGridFS(&GridBucket{Bucket: b}, publicURL), nil
}

func newGridFS(b IGridBucket, publicURL string) *GridFS {
	return &GridFS{
		bucket:    b,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

func (g *GridFS) Upload(ctx context.Context, path string, data []byte, contentType string) (err error) {
	started := time.Now()
	defer func() { observeUpload("gridfs", started, err) }()

	g.mu.Lock()
	defer g.mu.Unlock()

	if err = g.bucket.SetWriteDeadline(deadline(ctx)); err != nil {
		return fmt.Errorf("storage/gridfs: can't set deadline: %w", err)
	}
	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: contentType}})
	if _, err = g.bucket.UploadFromStream(path, bytes.NewReader(data), opts); err != nil {
		return fmt.Errorf("storage/gridfs: failed uploading %s: %w", path, err)
	}
	return nil
}

func (g *GridFS) PublicURL(path string) string {
	return g.publicURL + ImagesPrefix + path
}

// ServeHTTP streams an uploaded image back. The object path comes from the
// "path" route variable.
func (g *GridFS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := mux.Vars(r)["path"]
	if path == "" {
		common.WriteMsg(w, "image not found", http.StatusNotFound)
		return
	}

	ds, err := g.open(r.Context(), path)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		common.WriteMsg(w, "image not found", http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Log(r.Context()).Errorf("storage/gridfs: can't open %s: %v", path, err)
		common.WriteMsg(w, "failed loading image", http.StatusBadGateway)
		return
	}
	defer ds.Close()

	file := ds.GetFile()
	contentType := "application/octet-stream"
	if file != nil && file.Metadata != nil {
		if ct, ok := file.Metadata.Lookup("contentType").StringValueOK(); ok {
			contentType = ct
		}
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "sandbox")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	if file != nil {
		w.Header().Set("Content-Length", strconv.FormatInt(file.Length, 10))
	}

	if _, err := io.Copy(w, ds); err != nil {
		logger.Log(r.Context()).Errorf("storage/gridfs: failed streaming %s: %v", path, err)
	}
}

// open finds the object and bounds both the lookup and the streaming of its
// chunks by the request deadline.
func (g *GridFS) open(ctx context.Context, path string) (IGridDownloadStream, error) {
	dl := deadline(ctx)

	g.rmu.Lock()
	if err := g.bucket.SetReadDeadline(dl); err != nil {
		g.rmu.Unlock()
		return nil, fmt.Errorf("storage/gridfs: can't set deadline: %w", err)
	}
	ds, err := g.bucket.OpenDownloadStreamByName(path)
	g.rmu.Unlock()
	if err != nil {
		return nil, err
	}

	if err := ds.SetReadDeadline(dl); err != nil {
		ds.Close()
		return nil, fmt.Errorf("storage/gridfs: can't set stream deadline: %w", err)
	}
	return ds, nil
}

func deadline(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Now().Add(defaultTimeout)
}
