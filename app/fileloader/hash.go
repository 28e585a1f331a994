package fileloader

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/minio/highwayhash"
)

// SourceHashKey is the fixed key used for content hashes so the same bytes
// always produce the same cache key
var SourceHashKey = []byte("csv-visualiser source hash key\x00\x00")

// HashBytes returns the HighwayHash of data as hex
func HashBytes(data []byte) string {
	h, err := highwayhash.New(SourceHashKey)
	if err != nil {
		// only possible with a key that is not 32 bytes
		panic(err)
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// HashDirectory fingerprints a discovered directory from each file's path,
// size and modification time
func HashDirectory(info *DirectoryInfo) (string, error) {
	h, err := highwayhash.New(SourceHashKey)
	if err != nil {
		return "", fmt.Errorf("failed to create hash: %w", err)
	}
	for _, path := range info.Files {
		st, err := os.Stat(path)
		if err != nil {
			return "", err
		}
		io.WriteString(h, path)
		io.WriteString(h, "\x00"+strconv.FormatInt(st.Size(), 10))
		io.WriteString(h, "\x00"+strconv.FormatInt(st.ModTime().UnixNano(), 10)+"\n")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
