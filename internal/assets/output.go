package assets

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/themebuild/internal/descriptor"
)

// commitStats counts what a commit did to the output tree.
type commitStats struct {
	written   int
	unchanged int
	bytes     int
}

// rename is swapped in tests to fail part way through a commit.
var rename = os.Rename

// commit writes every file or none of them. Contents go to temporaries next to
// their destination first and are only renamed into place once all temporaries
// exist. A destination being replaced is moved aside first, so a failed rename
// puts back every file the commit already touched. Files whose bytes are
// unchanged are left alone.
func commit(files []outputFile) (commitStats, error) {
	var stats commitStats
	var pending []outputFile
	for _, f := range files {
		if unchanged(f) {
			log.Debug().Str("file", f.Path).Msg("Output unchanged")
			stats.unchanged++
			continue
		}
		pending = append(pending, f)
	}

	temps := make([]string, 0, len(pending))
	for _, f := range pending {
		tmp, err := writeTemp(f)
		if err != nil {
			removeAll(temps)
			return stats, writeError(f.Path, err)
		}
		temps = append(temps, tmp)
	}

	// backups[i] holds the previous contents of pending[i], empty when the
	// destination did not exist.
	backups := make([]string, 0, len(pending))
	for i, f := range pending {
		backup, err := replace(temps[i], f.Path)
		if err != nil {
			rollback(pending[:i], backups)
			removeAll(temps[i:])
			return stats, writeError(f.Path, err)
		}
		backups = append(backups, backup)
	}

	removeAll(backups)

	for _, f := range pending {
		stats.written++
		stats.bytes += len(f.Contents)
		log.Info().Str("file", f.Path).Int("bytes", len(f.Contents)).Msg("Wrote file")
	}

	return stats, nil
}

// replace moves tmp over dest, keeping any existing dest aside under a
// backup name which it returns.
func replace(tmp, dest string) (string, error) {
	var backup string
	if _, err := os.Lstat(dest); err == nil {
		backup = tmp + ".orig"
		if err := rename(dest, backup); err != nil {
			return "", err
		}
	}

	if err := rename(tmp, dest); err != nil {
		if backup != "" {
			if restoreErr := rename(backup, dest); restoreErr != nil {
				log.Error().Err(restoreErr).Str("file", dest).Msg("Failed to restore output")
			}
		}
		return "", err
	}

	return backup, nil
}

// rollback undoes replace for every committed file, newest first.
func rollback(committed []outputFile, backups []string) {
	for i := len(committed) - 1; i >= 0; i-- {
		dest := committed[i].Path
		if backups[i] == "" {
			if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
				log.Error().Err(err).Str("file", dest).Msg("Failed to remove output")
			}
			continue
		}
		if err := rename(backups[i], dest); err != nil {
			log.Error().Err(err).Str("file", dest).Msg("Failed to restore output")
		}
	}
}

func removeAll(paths []string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("file", p).Msg("Failed to remove temporary output")
		}
	}
}

func writeTemp(f outputFile) (string, error) {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.Path)+".tmp-*")
	if err != nil {
		return "", err
	}

	if _, err := tmp.Write(f.Contents); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	return tmp.Name(), nil
}

func unchanged(f outputFile) bool {
	existing, err := os.ReadFile(f.Path)
	if err != nil || len(existing) != len(f.Contents) {
		return false
	}
	return xxhash.Sum64(existing) == xxhash.Sum64(f.Contents)
}

// precompress returns a compressed sibling of every script and stylesheet.
func precompress(files []outputFile, encodings []string) ([]outputFile, error) {
	var out []outputFile
	for _, f := range files {
		if strings.HasSuffix(f.Path, ".map") {
			continue
		}
		for _, enc := range encodings {
			switch enc {
			case descriptor.PrecompressGzip:
				data, err := gzipBytes(f.Contents)
				if err != nil {
					return nil, fmt.Errorf("failed to gzip %s: %w", f.Path, err)
				}
				out = append(out, outputFile{Path: f.Path + ".gz", Contents: data})
			case descriptor.PrecompressZstd:
				data, err := zstdBytes(f.Contents)
				if err != nil {
					return nil, fmt.Errorf("failed to zstd %s: %w", f.Path, err)
				}
				out = append(out, outputFile{Path: f.Path + ".zst", Contents: data})
			}
		}
	}
	return out, nil
}

// gzipBytes leaves the header timestamp zero so output stays reproducible.
func gzipBytes(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func zstdBytes(src []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression), zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(src, make([]byte, 0, len(src))), nil
}
