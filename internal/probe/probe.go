// Package probe scans the assets directory and reports playable audio
// files with whatever metadata can be read cheaply.
package probe

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-audio/wav"
	"go.uber.org/zap"
)

// Asset describes one playable file in the library.
type Asset struct {
	Name      string `json:"name"` // path relative to the assets dir
	Format    string `json:"format"`
	SizeBytes int64  `json:"sizeBytes"`

	// WAV files carry header metadata; zero for other formats.
	SampleRate      int     `json:"sampleRate,omitempty"`
	Channels        int     `json:"channels,omitempty"`
	BitDepth        int     `json:"bitDepth,omitempty"`
	DurationSeconds float64 `json:"durationSeconds,omitempty"`
}

var formats = map[string]string{
	".wav": "wav",
	".mp3": "mp3",
	".ogg": "ogg",
}

// ScanDir walks the assets directory and returns playable files sorted
// by name. Unreadable files are logged and skipped, not fatal.
func ScanDir(dir string, logger *zap.Logger) ([]Asset, error) {
	var assets []Asset
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		format, ok := formats[strings.ToLower(filepath.Ext(path))]
		if !ok {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			logger.Warn("stat failed, skipping asset", zap.String("path", path), zap.Error(err))
			return nil
		}
		asset := Asset{Name: rel, Format: format, SizeBytes: info.Size()}
		if format == "wav" {
			if err := readWavHeader(path, &asset); err != nil {
				logger.Warn("unreadable wav header, skipping asset",
					zap.String("path", path), zap.Error(err))
				return nil
			}
		}
		assets = append(assets, asset)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan assets dir: %w", err)
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Name < assets[j].Name })
	return assets, nil
}

func readWavHeader(path string, asset *Asset) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		return fmt.Errorf("not a valid wav file")
	}
	asset.SampleRate = int(dec.SampleRate)
	asset.Channels = int(dec.NumChans)
	asset.BitDepth = int(dec.BitDepth)
	if dur, err := dec.Duration(); err == nil {
		asset.DurationSeconds = dur.Seconds()
	}
	return nil
}
