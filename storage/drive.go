package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/flowchartsman/retry"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

// DriveStorage keeps uploaded resumes in a Google Drive folder.
type DriveStorage struct {
	driveClient *drive.Service
	folderID    string
}

func NewDriveStorage(driveClient *drive.Service, folderID string) *DriveStorage {
	return &DriveStorage{
		driveClient: driveClient,
		folderID:    folderID,
	}
}

func (s *DriveStorage) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	newFile := &drive.File{
		Name:     filename,
		MimeType: contentType,
	}
	if s.folderID != "" {
		newFile.Parents = []string{s.folderID}
	}

	created, err := s.driveClient.Files.
		Create(newFile).
		Media(r, googleapi.ContentType(contentType)).
		Fields("id").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("upload %q: %w", filename, err)
	}

	return created.Id, nil
}

func (s *DriveStorage) Delete(ctx context.Context, key string) error {
	return s.driveClient.Files.Delete(key).Context(ctx).Do()
}

func (s *DriveStorage) GetDownloadURL(ctx context.Context, key string) (string, error) {
	file, err := s.get(ctx, key, "webContentLink")
	if err != nil {
		return "", err
	}
	return file.WebContentLink, nil
}

func (s *DriveStorage) get(ctx context.Context, key, fields string) (*drive.File, error) {
	retrier := retry.NewRetrier(5, 100*time.Millisecond, time.Second)

	var file *drive.File
	err := retrier.RunContext(ctx, func(ctx context.Context) error {
		_file, err := s.driveClient.Files.Get(key).Fields(googleapi.Field(fields)).Context(ctx).Do()
		if err != nil {
			return err
		}

		file = _file
		return nil
	})

	return file, err
}
