package seqruntime

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"lumina/storage"
	"lumina/typedef"
)

// Waveform peak envelopes are produced by the external audio analysis
// pipeline. We cache them per audio file as lz4-compressed JSON sidecars in
// the data directory so reopening a sequence does not wait on analysis.

func waveformCacheName(audioFile string) string {
	return fmt.Sprintf("waveforms/%x.peaks", hashString(audioFile))
}

// hashString is FNV-1a; cache names only need to be stable, not secure.
func hashString(s string) uint64 {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}

// StoreWaveformCache persists a peak envelope for an audio file and installs
// it for the sequence.
func StoreWaveformCache(seqIdx int, audioFile string, w typedef.WaveformData) error {
	raw, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("waveform cache: marshal: %w", err)
	}
	data, err := compressLZ4(raw)
	if err != nil {
		return fmt.Errorf("waveform cache: compress: %w", err)
	}
	if err := storage.WriteDataFile(waveformCacheName(audioFile), data, 0o644); err != nil {
		return fmt.Errorf("waveform cache: %w", err)
	}
	SetWaveform(seqIdx, w)
	return nil
}

// LoadWaveformCache installs a cached peak envelope for the sequence, if one
// exists for its audio file. A cache miss is not an error.
func LoadWaveformCache(seqIdx int, audioFile string) (bool, error) {
	if audioFile == "" {
		return false, nil
	}
	data, err := storage.ReadDataFile(waveformCacheName(audioFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("waveform cache: %w", err)
	}
	raw, err := decompressLZ4(data)
	if err != nil {
		return false, fmt.Errorf("waveform cache: decompress: %w", err)
	}
	var w typedef.WaveformData
	if err := json.Unmarshal(raw, &w); err != nil {
		return false, fmt.Errorf("waveform cache: parse: %w", err)
	}
	SetWaveform(seqIdx, w)
	log.Printf("[SEQRUNTIME] Loaded waveform cache for %s (%d peaks)", audioFile, len(w.Peaks))
	return true, nil
}
