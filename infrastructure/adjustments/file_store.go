package adjustments

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"
)

const fileExt = ".txt"

// FileStore keeps one record per member at <dir>/guild_<gid>/<uid>.txt
type FileStore struct {
	dir string

	// writes for one path never interleave
	mu sync.Mutex
}

// NewFileStore creates the root directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create adjustment directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(guildID, discordID int64) string {
	return filepath.Join(s.dir, guildDir(guildID), fmt.Sprintf("%d%s", discordID, fileExt))
}

// Get returns the stored offset, 0 when missing or unreadable
func (s *FileStore) Get(ctx context.Context, guildID, discordID int64) int64 {
	path := s.path(guildID, discordID)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0
	}
	if err != nil {
		log.WithError(err).WithField("path", path).Warn("Failed to read adjustment record")
		return 0
	}

	adjusted, err := decodeRecord(data)
	if err != nil {
		log.WithError(err).WithField("path", path).Warn("Ignoring corrupt adjustment record")
		return 0
	}
	return adjusted
}

// Set overwrites the record. The file is replaced with a rename so readers
// never see a partial write.
func (s *FileStore) Set(ctx context.Context, guildID, discordID, adjusted int64) error {
	data, err := encodeRecord(adjusted)
	if err != nil {
		return fmt.Errorf("failed to encode adjustment record: %w", err)
	}

	path := s.path(guildID, discordID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create guild directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".adjust-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write adjustment record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write adjustment record: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace adjustment record: %w", err)
	}
	return nil
}

// List reads every record in the guild's directory
func (s *FileStore) List(ctx context.Context, guildID int64) (map[int64]int64, error) {
	dir := filepath.Join(s.dir, guildDir(guildID))
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return map[int64]int64{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list adjustment records: %w", err)
	}

	out := make(map[int64]int64, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		discordID, ok := memberIDFromName(entry.Name(), fileExt)
		if !ok {
			continue
		}
		if adjusted := s.Get(ctx, guildID, discordID); adjusted != 0 {
			out[discordID] = adjusted
		}
	}
	return out, nil
}
