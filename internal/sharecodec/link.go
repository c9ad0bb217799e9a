package sharecodec

import (
	"log/slog"
	"strings"

	"github.com/starford/menushare/internal/models"
)

// FragmentMarker precedes the payload in a share link.
const FragmentMarker = "#data="

// DefaultWarnLength is the link length above which users are warned.
const DefaultWarnLength = 2000

// ShareLink is a generated share link.
type ShareLink struct {
	URL     string `json:"url"`
	Payload string `json:"-"`
	Length  int    `json:"length"`
	// Long is a soft limit: the link still works but may be rejected by
	// messengers or browsers.
	Long bool `json:"long"`
}

// BuildShareURL appends the encoded snapshot to base, which is the page's
// origin and path. Any fragment already on base is dropped.
func BuildShareURL(base string, snap models.Snapshot, warnLength int) (ShareLink, error) {
	if warnLength <= 0 {
		warnLength = DefaultWarnLength
	}
	payload, err := Encode(snap)
	if err != nil {
		return ShareLink{}, err
	}
	if i := strings.IndexByte(base, '#'); i >= 0 {
		base = base[:i]
	}
	u := base + FragmentMarker + payload
	return ShareLink{
		URL:     u,
		Payload: payload,
		Length:  len(u),
		Long:    len(u) > warnLength,
	}, nil
}

// PayloadFromFragment extracts the payload from a full link, a "#data=..."
// fragment or a "data=..." string.
func PayloadFromFragment(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[i:]
	} else {
		s = "#" + s
	}
	if !strings.HasPrefix(s, FragmentMarker) {
		return "", false
	}
	return s[len(FragmentMarker):], true
}

// Load runs the page-load decision: a fragment that decodes cleanly yields
// the hydrated, read-only state; no fragment or a broken one yields the
// default editable state. The returned error only reports why a present
// fragment was discarded; the state is always usable.
func Load(fragment string) (models.State, error) {
	payload, ok := PayloadFromFragment(fragment)
	if !ok {
		return models.DefaultState(), nil
	}
	p, err := Decode(payload)
	if err != nil {
		slog.Warn("share link discarded", slog.String("error", err.Error()))
		return models.DefaultState(), err
	}
	return Hydrate(p), nil
}
