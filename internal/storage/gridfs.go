package storage

import (
	"context"
	"errors"
	"io"

	"github.com/mdobak/go-xerrors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFS keeps files in a MongoDB GridFS bucket.
type GridFS struct {
	bucket *gridfs.Bucket
}

// NewGridFS opens the "media" bucket of db.
func NewGridFS(db *mongo.Database) (*GridFS, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName("media"))
	if err != nil {
		return nil, xerrors.New(err)
	}
	return &GridFS{bucket: bucket}, nil
}

func (g *GridFS) Save(_ context.Context, name string, r io.Reader) error {
	cleaned, err := cleanName(name)
	if err != nil {
		return err
	}
	if _, err := g.bucket.UploadFromStream(cleaned, r); err != nil {
		return xerrors.New(err)
	}
	return nil
}

func (g *GridFS) Open(_ context.Context, name string) (io.ReadCloser, error) {
	cleaned, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	stream, err := g.bucket.OpenDownloadStreamByName(cleaned)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, xerrors.New(ErrNotFound)
	}
	if err != nil {
		return nil, xerrors.New(err)
	}
	return stream, nil
}

// Delete removes every revision stored under name.
func (g *GridFS) Delete(ctx context.Context, name string) error {
	cleaned, err := cleanName(name)
	if err != nil {
		return err
	}

	cursor, err := g.bucket.FindContext(ctx, bson.M{"filename": cleaned})
	if err != nil {
		return xerrors.New(err)
	}
	defer cursor.Close(ctx)

	var files []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &files); err != nil {
		return xerrors.New(err)
	}
	for _, f := range files {
		if err := g.bucket.DeleteContext(ctx, f.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return xerrors.New(err)
		}
	}
	return nil
}
