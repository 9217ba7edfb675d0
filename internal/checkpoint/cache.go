// Package checkpoint caches the parsed commit log between runs, keyed by
// the repository's HEAD object id, so a repeat scan of an unchanged
// repository skips re-walking the object database. Grounded on the
// teacher's checkpoint/hibernation concern (internal/checkpoint,
// pkg/analyzers/{couples,devs,file_history}/checkpoint.go) but narrowed to
// a single resumable artifact instead of a per-analyzer state machine,
// persisted through [persist.Persister] the way the teacher's analyzer
// checkpoints are, and lz4-compressed the way internal/rbtree compresses
// its own serialized buffers.
package checkpoint

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/pierrec/lz4/v4"

	"github.com/teratoma-labs/polyglotscan/pkg/gitlog"
	"github.com/teratoma-labs/polyglotscan/pkg/persist"
)

// ErrMiss is returned by Load when no cached entry matches the key.
var ErrMiss = errors.New("checkpoint: cache miss")

// entry is the on-disk payload: the commits plus the parameters they were
// read under, so a changed --since horizon can't serve a stale hit.
type entry struct {
	HeadOID string
	Since   int64 // unix seconds, 0 means unset
	Commits []gitlog.Commit
}

// lz4GobCodec implements [persist.Codec] by wrapping [persist.GobCodec]'s
// gob encoding in an lz4 stream.
type lz4GobCodec struct {
	gob *persist.GobCodec
}

func newLZ4GobCodec() *lz4GobCodec {
	return &lz4GobCodec{gob: persist.NewGobCodec()}
}

func (c *lz4GobCodec) Encode(w io.Writer, state any) error {
	writer := lz4.NewWriter(w)

	if err := c.gob.Encode(writer, state); err != nil {
		return err
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("flush lz4 stream: %w", err)
	}

	return nil
}

func (c *lz4GobCodec) Decode(r io.Reader, state any) error {
	return c.gob.Decode(lz4.NewReader(r), state)
}

func (c *lz4GobCodec) Extension() string {
	return ".gob.lz4"
}

// Cache stores one commit-log entry per (workdir, HEAD oid, since) key in
// a directory on disk.
type Cache struct {
	dir string
}

// NewCache opens a cache rooted at dir. The directory is created lazily on
// first Save.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

// Load returns the cached commit log for workdir at headOID and since, or
// ErrMiss if absent or stale.
func (c *Cache) Load(workdir, headOID string, since *time.Time) ([]gitlog.Commit, error) {
	persister := persist.NewPersister[entry](c.basename(workdir, headOID, since), newLZ4GobCodec())

	var e entry

	err := persister.Load(c.dir, func(loaded *entry) { e = *loaded })
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrMiss
		}

		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	if e.HeadOID != headOID || e.Since != sinceUnix(since) {
		return nil, ErrMiss
	}

	return e.Commits, nil
}

// Save writes commits to the cache under workdir/headOID/since.
func (c *Cache) Save(workdir, headOID string, since *time.Time, commits []gitlog.Commit) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil { //nolint:mnd // standard dir perms
		return fmt.Errorf("create checkpoint dir: %w", err)
	}

	persister := persist.NewPersister[entry](c.basename(workdir, headOID, since), newLZ4GobCodec())

	err := persister.Save(c.dir, func() *entry {
		return &entry{HeadOID: headOID, Since: sinceUnix(since), Commits: commits}
	})
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}

	return nil
}

func sinceUnix(since *time.Time) int64 {
	if since == nil {
		return 0
	}

	return since.Unix()
}

// basename derives the persisted file's basename from the cache key, so
// unrelated (workdir, headOID, since) triples never collide on disk.
func (c *Cache) basename(workdir, headOID string, since *time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s\x00%s\x00%d", workdir, headOID, sinceUnix(since))))

	return hex.EncodeToString(sum[:])
}
