package archive

import (
	"time"
)

// TimeLayout is the format of EntryInfo.Modified.
const TimeLayout = "2006-01-02 15:04:05"

// EntryInfo describes one archive entry without its content.
type EntryInfo struct {
	Name             string `json:"name"`
	UncompressedSize uint64 `json:"uncompressed_size"`
	CompressedSize   uint64 `json:"compressed_size"`
	Modified         string `json:"modified"`
	IsDir            bool   `json:"is_directory"`
	Encrypted        bool   `json:"is_encrypted"`
	CRC32            uint32 `json:"crc32"`
	Method           uint16 `json:"method"`
}

// flagEncrypted is general purpose bit 0 of a zip file header.
const flagEncrypted = 0x1

// entryModified formats an entry's timestamp. Encrypted entries written
// without one carry the zero DOS date, which predates 1980; they report "".
func entryModified(t time.Time, encrypted bool) string {
	if encrypted && t.Year() < 1980 {
		return ""
	}
	return formatModified(t)
}

func formatModified(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeLayout)
}
