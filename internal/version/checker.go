package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Version is the application version, set at build time with -ldflags
var Version = "0.1.0"

const checkTimeout = 5 * time.Second

// releaseURL is the release feed queried by CheckForUpdate
var releaseURL = "https://api.github.com/repos/studiowebux/beeactions/releases/latest"

type release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Update describes the newest published release
type Update struct {
	Available bool
	Latest    string
	URL       string
}

// CheckForUpdate asks the release feed whether a version newer than current exists
func CheckForUpdate(ctx context.Context, current string) (Update, error) {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, releaseURL, nil)
	if err != nil {
		return Update{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "beeactions/"+current)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return Update{}, fmt.Errorf("failed to fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Update{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return Update{}, fmt.Errorf("failed to decode response: %w", err)
	}

	latest := strings.TrimPrefix(rel.TagName, "v")
	return Update{
		Available: latest != "" && isNewerVersion(latest, strings.TrimPrefix(current, "v")),
		Latest:    latest,
		URL:       rel.HTMLURL,
	}, nil
}

// isNewerVersion reports whether latest > current
// Pre-release and build suffixes ("-dev", "+build") are ignored.
func isNewerVersion(latest, current string) bool {
	latestParts := parseVersion(latest)
	currentParts := parseVersion(current)

	n := max(len(latestParts), len(currentParts))
	for i := 0; i < n; i++ {
		l, c := partAt(latestParts, i), partAt(currentParts, i)
		if l != c {
			return l > c
		}
	}
	return false
}

func partAt(parts []int, i int) int {
	if i < len(parts) {
		return parts[i]
	}
	return 0
}

// parseVersion parses a version string into integer parts
func parseVersion(version string) []int {
	if idx := strings.IndexAny(version, "-+"); idx != -1 {
		version = version[:idx]
	}

	parts := strings.Split(version, ".")
	result := make([]int, 0, len(parts))
	for _, part := range parts {
		num, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		result = append(result, num)
	}
	return result
}
