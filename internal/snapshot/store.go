package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/codectx/codectx/pkg/types"
)

// RefLive designates the current file on disk instead of a stored snapshot
const RefLive = "live"

// snapExt is the suffix of stored snapshot files
const snapExt = ".snap"

// timeLayout names snapshots so lexicographic order equals time order
const timeLayout = "20060102T150405.000000000Z"

// Store persists timestamped, immutable copies of file content. Each
// indexed file gets its own directory of append-only snapshot files;
// nothing is ever overwritten or garbage-collected (retention is the
// caller's concern).
type Store struct {
	root    string // project root, for reading live files
	snapDir string // snapshot store root
}

// NewStore creates a snapshot store rooted under snapDir for the project at
// root.
func NewStore(root, snapDir string) *Store {
	return &Store{root: root, snapDir: snapDir}
}

// Save copies the file's current bytes into a new timestamp-named snapshot
// and returns the snapshot ID. An existing snapshot is never overwritten.
func (s *Store) Save(relPath string) (string, error) {
	content, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(relPath)))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", relPath, err)
	}

	dir := s.fileDir(relPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot directory: %w", err)
	}

	// O_EXCL guarantees immutability; on a same-nanosecond collision, bump
	// the timestamp until a free name is found.
	ts := time.Now().UTC()
	for {
		id := ts.Format(timeLayout)
		f, err := os.OpenFile(filepath.Join(dir, id+snapExt), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			if os.IsExist(err) {
				ts = ts.Add(time.Nanosecond)
				continue
			}
			return "", fmt.Errorf("create snapshot: %w", err)
		}

		if _, err := f.Write(content); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("write snapshot: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close snapshot: %w", err)
		}
		return id, nil
	}
}

// LatestDigest returns the SHA-256 hex digest of the newest stored snapshot
// of a file, or "" when the file has no snapshots. Callers use it to skip
// saving a snapshot whose content is already the latest one stored.
func (s *Store) LatestDigest(relPath string) (string, error) {
	infos, err := s.List(relPath)
	if err != nil {
		return "", err
	}
	if len(infos) == 0 {
		return "", nil
	}

	content, err := s.Read(relPath, infos[0].ID)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:]), nil
}

// List returns the stored snapshots for a file, newest first
func (s *Store) List(relPath string) ([]types.SnapshotInfo, error) {
	entries, err := os.ReadDir(s.fileDir(relPath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	infos := make([]types.SnapshotInfo, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, snapExt) {
			continue
		}
		id := strings.TrimSuffix(name, snapExt)
		ts, err := time.Parse(timeLayout, id)
		if err != nil {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		infos = append(infos, types.SnapshotInfo{
			ID:        id,
			Timestamp: ts,
			SizeBytes: fi.Size(),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Timestamp.After(infos[j].Timestamp)
	})

	return infos, nil
}

// Read returns the content of one stored snapshot
func (s *Store) Read(relPath, id string) ([]byte, error) {
	content, err := os.ReadFile(filepath.Join(s.fileDir(relPath), id+snapExt))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s@%s", types.ErrSnapshotNotFound, relPath, id)
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return content, nil
}

// Resolve returns the content a ref designates: a stored snapshot by ID, or
// the live file on disk for RefLive.
func (s *Store) Resolve(relPath, ref string) ([]byte, error) {
	if ref == RefLive || ref == "" {
		content, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(relPath)))
		if err != nil {
			return nil, fmt.Errorf("read live file %s: %w", relPath, err)
		}
		return content, nil
	}
	return s.Read(relPath, ref)
}

// fileDir maps a relative file path to its snapshot directory. Path
// separators are escaped so every file gets a distinct flat directory.
func (s *Store) fileDir(relPath string) string {
	encoded := url.PathEscape(filepath.ToSlash(relPath))
	return filepath.Join(s.snapDir, encoded)
}
