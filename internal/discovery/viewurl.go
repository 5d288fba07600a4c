package discovery

import "net/url"

// ViewURL builds the caller-facing reference used to later fetch or display
// a processed file. It is purely a string transform; the serving endpoint
// resolves it to a local file or a presigned object-store URL.
func ViewURL(sourceURI string) string {
	return "/file/view?path=" + url.QueryEscape(sourceURI)
}
