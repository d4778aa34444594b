package similarweb

import (
	"fmt"
	"regexp"
	"strings"
)

var periodRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidPeriod reports whether `p` is a YYYY-MM month.
func ValidPeriod(p string) bool {
	return periodRegex.MatchString(p)
}

type FetchRequest struct {
	Site        string
	Country     string
	Device      Device
	StartPeriod string
	EndPeriod   string
	APIKey      string
}

// ValidatePeriods checks both periods are YYYY-MM and ordered, in that
// form lexical and chronological order are the same.
func ValidatePeriods(start, end string) error {
	if !ValidPeriod(start) {
		return fmt.Errorf("start period %q is not in YYYY-MM form", start)
	}
	if !ValidPeriod(end) {
		return fmt.Errorf("end period %q is not in YYYY-MM form", end)
	}
	if start > end {
		return fmt.Errorf("start period %s is after end period %s", start, end)
	}
	return nil
}

func (r FetchRequest) Validate() error {
	if strings.TrimSpace(r.Site) == "" {
		return fmt.Errorf("site is empty")
	}
	if strings.TrimSpace(r.Country) == "" {
		return fmt.Errorf("country is empty")
	}
	if r.APIKey == "" {
		return fmt.Errorf("api key is empty")
	}
	if !r.Device.Valid() {
		return fmt.Errorf("unknown device %q", r.Device)
	}
	return ValidatePeriods(r.StartPeriod, r.EndPeriod)
}

// pathSite strips a scheme and trailing slashes so a pasted URL still
// names the domain in the request path.
func pathSite(site string) string {
	site = strings.TrimSpace(site)
	for _, scheme := range []string{"https://", "http://"} {
		if len(site) >= len(scheme) && strings.EqualFold(site[:len(scheme)], scheme) {
			site = site[len(scheme):]
			break
		}
	}
	return strings.TrimRight(site, "/")
}
