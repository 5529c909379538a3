package switchx

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/inkveil/inkveil/internal/codecx"
	"github.com/inkveil/inkveil/internal/common"
)

// Disclosure-link contract: the path addresses the switch's ciphertext, the
// URL fragment carries the payload key. Browsers and HTTP clients never
// transmit the fragment, so a recipient fetching the ciphertext discloses
// nothing to the server; decryption happens entirely on their side.
//
// The server learns the payload key exactly once, at switch creation, so it
// can synthesize this link at trigger time. That is a narrow, intentional
// weakening of the zero-knowledge guarantee for attached payloads only, and
// is distinct from the master-key path, which the server never sees.

const disclosurePath = "/disclosure/"

// BuildDisclosureLink constructs the link delivered to recipients at
// trigger time.
func BuildDisclosureLink(baseURL, switchID string, payloadKey []byte) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("bad base url: %w", err)
	}
	base.Path = strings.TrimSuffix(base.Path, "/") + disclosurePath + url.PathEscape(switchID)
	base.Fragment = codecx.EncodeBase64URL(payloadKey)
	return base.String(), nil
}

// ParseDisclosureLink extracts the switch id and payload key from a
// disclosure link on the recipient side.
func ParseDisclosureLink(link string) (switchID string, payloadKey []byte, err error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", nil, fmt.Errorf("bad disclosure link: %w", err)
	}

	idx := strings.LastIndex(u.Path, disclosurePath)
	if idx < 0 {
		return "", nil, fmt.Errorf("bad disclosure link: no switch path")
	}
	switchID, err = url.PathUnescape(u.Path[idx+len(disclosurePath):])
	if err != nil || switchID == "" {
		return "", nil, fmt.Errorf("bad disclosure link: no switch id")
	}

	payloadKey, err = codecx.DecodeBase64URL(u.Fragment)
	if err != nil || len(payloadKey) != common.MasterKeySize {
		return "", nil, fmt.Errorf("bad disclosure link: no payload key in fragment")
	}
	return switchID, payloadKey, nil
}
