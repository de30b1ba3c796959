// Package snapshot persists generated worlds to disk as a JSON header line
// followed by the JSON world, zstd-compressed for .zst paths.
package snapshot

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/tomster12/growth-sub000/pkg/world"
)

// Version is the snapshot format written by Write.
const Version = 1

// ErrVersion reports a snapshot written in an unknown format.
var ErrVersion = errors.New("unsupported snapshot version")

// Header is the first line of every snapshot.
type Header struct {
	Version   int       `json:"version"`
	WorldID   string    `json:"world_id"`
	Seed      int64     `json:"seed"`
	Sites     int       `json:"sites"`
	CreatedAt time.Time `json:"created_at"`
}

func compressed(path string) bool {
	return strings.HasSuffix(path, ".zst")
}

// Write stores w at path, creating parent directories.
func Write(path string, w *world.World) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	var out io.Writer = f
	if compressed(path) {
		enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return err
		}
		defer func() {
			if cerr := enc.Close(); err == nil {
				err = cerr
			}
		}()
		out = enc
	}

	bw := bufio.NewWriterSize(out, 256*1024)
	h := Header{
		Version:   Version,
		WorldID:   w.ID,
		Seed:      w.Seed,
		CreatedAt: time.Now().UTC(),
	}
	if w.Graph != nil {
		h.Sites = len(w.Graph.Sites)
	}
	hb, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("encoding header: %w", err)
	}
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	if err := json.NewEncoder(bw).Encode(w); err != nil {
		return fmt.Errorf("encoding world: %w", err)
	}
	return bw.Flush()
}

// Read loads a snapshot written by Write.
func Read(path string) (Header, *world.World, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, nil, err
	}
	defer f.Close()

	var in io.Reader = f
	if compressed(path) {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return h, nil, err
		}
		defer dec.Close()
		in = dec
	}

	br := bufio.NewReaderSize(in, 256*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return h, nil, fmt.Errorf("reading header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, nil, fmt.Errorf("decoding header: %w", err)
	}
	if h.Version != Version {
		return h, nil, fmt.Errorf("%w: %d", ErrVersion, h.Version)
	}

	var w world.World
	if err := json.NewDecoder(br).Decode(&w); err != nil {
		return h, nil, fmt.Errorf("decoding world: %w", err)
	}
	return h, &w, nil
}
