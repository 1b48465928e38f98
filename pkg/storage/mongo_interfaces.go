package storage

import (
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

//go:generate mockgen -source=mongo_interfaces.go -destination=mongo_interfaces_mock.go -package=storage

type ( // Interfaces
	IGridBucket interface {
		UploadFromStream(filename string, source io.Reader, opts *options.UploadOptions) (primitive.ObjectID, error)
		OpenDownloadStreamByName(filename string) (IGridDownloadStream, error)
		SetWriteDeadline(t time.Time) error
		SetReadDeadline(t time.Time) error
	}

	IGridDownloadStream interface {
		io.ReadCloser
		GetFile() *gridfs.File
		SetReadDeadline(t time.Time) error
	}
)

type GridBucket struct {
	Bucket *gridfs.Bucket
}

func (b *GridBucket) UploadFromStream(filename string, source io.Reader, opts *options.UploadOptions) (primitive.ObjectID, error) {
	return b.Bucket.UploadFromStream(filename, source, opts)
}

func (b *GridBucket) OpenDownloadStreamByName(filename string) (IGridDownloadStream, error) {
	ds, err := b.Bucket.OpenDownloadStreamByName(filename)
	if err != nil {
		return nil, err
	}
	return ds, nil
}

func (b *GridBucket) SetWriteDeadline(t time.Time) error {
	return b.Bucket.SetWriteDeadline(t)
}

func (b *GridBucket) SetReadDeadline(t time.Time) error {
	return b.Bucket.SetReadDeadline(t)
}
