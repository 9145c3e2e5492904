package browser

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Cookie is the subset of a DevTools cookie the drivers need. The JSON
// layout matches rod's proto.NetworkCookie so jars saved by either driver
// load in the other.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires,omitempty"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
}

// SessionCookies builds the two cookies x.com needs for a signed-in session
func SessionCookies(authToken, csrfToken string) []Cookie {
	var out []Cookie
	if authToken != "" {
		out = append(out, Cookie{Name: "auth_token", Value: authToken, Domain: ".x.com", Path: "/", HTTPOnly: true, Secure: true})
	}
	if csrfToken != "" {
		out = append(out, Cookie{Name: "ct0", Value: csrfToken, Domain: ".x.com", Path: "/", Secure: true})
	}
	return out
}

// LoadCookies reads a cookie jar file. A missing file yields no cookies.
func LoadCookies(path string) ([]Cookie, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read cookies file")
	}

	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, errors.Wrapf(err, "parse cookies file %s", path)
	}
	return cookies, nil
}

// SaveCookies writes a raw JSON cookie jar with owner-only permissions
func SaveCookies(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.Wrap(err, "create cookies directory")
	}
	return errors.Wrap(os.WriteFile(path, data, 0600), "write cookies file")
}

// mergeCookies overlays explicit cookies on top of a loaded jar, matching
// on name and domain
func mergeCookies(base, overlay []Cookie) []Cookie {
	out := make([]Cookie, 0, len(base)+len(overlay))
	replaced := make(map[string]bool)
	for _, c := range overlay {
		replaced[c.Name+"\x00"+c.Domain] = true
	}
	for _, c := range base {
		if !replaced[c.Name+"\x00"+c.Domain] {
			out = append(out, c)
		}
	}
	return append(out, overlay...)
}

// resolveCookies combines the jar file and explicit cookies from opts
func resolveCookies(opts Options) ([]Cookie, error) {
	var jar []Cookie
	if opts.CookiesFile != "" {
		loaded, err := LoadCookies(opts.CookiesFile)
		if err != nil {
			return nil, err
		}
		jar = loaded
	}
	return mergeCookies(jar, opts.Cookies), nil
}
