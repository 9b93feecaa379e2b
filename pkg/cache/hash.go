package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Digest identifies the content at path. Archives are hashed byte for byte;
// directories by the name, size and modification time of their files, which
// avoids reading large stop_times.txt files on every run.
func Digest(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return fileDigest(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return "", err
	}
	type stamp struct {
		Name  string `json:"name"`
		Size  int64  `json:"size"`
		MTime int64  `json:"mtime"`
	}
	stamps := make([]stamp, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			return "", err
		}
		stamps = append(stamps, stamp{Name: e.Name(), Size: fi.Size(), MTime: fi.ModTime().UnixNano()})
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i].Name < stamps[j].Name })

	data, err := json.Marshal(stamps)
	if err != nil {
		return "", err
	}
	return Hash(data), nil
}

func fileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
