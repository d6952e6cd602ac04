package mcpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/daybook/internal/icalx"
)

const maxCalendarSize = 10 << 20 // 10 MB

var calendarMIME = map[string]bool{
	"text/calendar":        true,
	"application/ics":      true,
	"application/calendar": true,
	"text/plain":           true,
}

type importResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	IDs      []string `json:"ids"`
}

func (s *Server) importCalendar(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	source = strings.TrimSpace(source)

	var data []byte
	switch {
	case strings.HasPrefix(source, "data:"):
		data, err = decodeDataURI(source)
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		data, err = fetchHTTP(ctx, source)
	default:
		data = []byte(source)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(data) > maxCalendarSize {
		return mcp.NewToolResultError(fmt.Sprintf("calendar too large: %d bytes (max %d)", len(data), maxCalendarSize)), nil
	}
	if data, err = validateCalendar(data); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	inputs, skipped, err := icalx.Decode(bytes.NewReader(data), s.store.Location())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	created, rejected := s.store.Import(ctx, inputs)

	res := importResult{Imported: len(created), Skipped: skipped + rejected, IDs: make([]string, len(created))}
	for i, ev := range created {
		res.IDs[i] = ev.ID
	}
	out, _ := json.Marshal(res)
	return mcp.NewToolResultText(string(out)), nil
}

// decodeDataURI parses a data:[<mediatype>][;base64],<data> URI.
func decodeDataURI(uri string) ([]byte, error) {
	rest := strings.TrimPrefix(uri, "data:")
	commaIdx := strings.Index(rest, ",")
	if commaIdx < 0 {
		return nil, fmt.Errorf("invalid data URI: missing comma separator")
	}

	meta := rest[:commaIdx]
	encoded := rest[commaIdx+1:]

	mime := strings.Split(meta, ";")[0]
	if mime != "" && !calendarMIME[mime] {
		return nil, fmt.Errorf("unsupported MIME type in data URI: %s", mime)
	}

	if !strings.Contains(meta, ";base64") {
		text, err := url.PathUnescape(encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid data URI: %w", err)
		}
		return []byte(text), nil
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 data: %w", err)
		}
	}
	return data, nil
}

// fetchHTTP downloads a calendar feed from an HTTP/HTTPS URL with security checks.
func fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme: %s (only http/https)", parsed.Scheme)
	}

	if err := checkBlockedHost(parsed.Hostname()); err != nil {
		return nil, err
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("too many redirects (max 5)")
			}
			return checkBlockedHost(req.URL.Hostname())
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "text/calendar")
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCalendarSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}
	return data, nil
}

// checkBlockedHost rejects loopback, link-local and unspecified addresses.
func checkBlockedHost(host string) error {
	if strings.EqualFold(host, "localhost") || strings.EqualFold(host, "metadata.google.internal") {
		return fmt.Errorf("blocked host: %s", host)
	}

	ips := []net.IP{net.ParseIP(host)}
	if ips[0] == nil {
		resolved, err := net.LookupIP(host)
		if err != nil {
			return nil //nolint:nilerr // the fetch reports DNS failures
		}
		ips = resolved
	}
	for _, ip := range ips {
		// Link-local covers the 169.254.169.254 metadata endpoint.
		if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
			return fmt.Errorf("blocked host: %s resolves to %s", host, ip)
		}
	}
	return nil
}

// validateCalendar checks that data looks like an iCalendar stream and
// returns it without leading whitespace or byte order mark.
func validateCalendar(data []byte) ([]byte, error) {
	trimmed := bytes.TrimLeft(data, "\ufeff \t\r\n")
	head := trimmed[:min(len(trimmed), len("BEGIN:VCALENDAR"))]
	if !bytes.EqualFold(head, []byte("BEGIN:VCALENDAR")) {
		return nil, fmt.Errorf("content does not appear to be iCalendar data (missing BEGIN:VCALENDAR)")
	}
	return trimmed, nil
}
