package sinkstore

import (
	"fmt"
	"net/url"
	"strings"
)

// LibsqlDsn attaches an auth token to a remote libsql url, a url that
// already carries one is returned as is.
func LibsqlDsn(rawUrl, authToken string) (string, error) {
	if authToken == "" {
		return rawUrl, nil
	}
	parsed, err := url.Parse(rawUrl)
	if err != nil {
		return "", fmt.Errorf("parse libsql url: %w", err)
	}
	if strings.HasPrefix(parsed.Scheme, "file") {
		return rawUrl, nil
	}
	values := parsed.Query()
	if values.Get("authToken") == "" {
		values.Set("authToken", authToken)
	}
	parsed.RawQuery = values.Encode()
	return parsed.String(), nil
}
