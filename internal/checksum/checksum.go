// Package checksum fingerprints calendar files so unchanged content is not
// imported twice.
package checksum

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Calendar returns the hex-encoded SHA-256 digest of an iCalendar document,
// ignoring line endings, blank lines and DTSTAMP properties. Exporters
// rewrite DTSTAMP on every export, so it does not count as a change.
func Calendar(data []byte) string {
	h := sha256.New()
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		if line == "" || strings.HasPrefix(strings.ToUpper(line), "DTSTAMP") {
			continue
		}
		h.Write([]byte(line))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
