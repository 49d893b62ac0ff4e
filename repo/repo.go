package repo

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// contentsURL builds the contents API location of path in owner/name,
// pinned to ref when one is given.
func contentsURL(base, owner, name, path, ref string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}

	u := fmt.Sprintf(
		"%s/repos/%s/%s/contents/%s",
		strings.TrimRight(base, "/"), url.PathEscape(owner), url.PathEscape(name), strings.Join(segments, "/"),
	)

	if ref != "" {
		u += "?" + url.Values{"ref": []string{ref}}.Encode()
	}

	return u
}

// Encode returns content as the standard base64 the contents API expects.
func Encode(content []byte) string {
	return base64.StdEncoding.EncodeToString(content)
}

// Decode reverses Encode. GitHub wraps its base64 payloads at 60 columns;
// the line breaks are ignored by the decoder.
func Decode(content string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(content)
}
