package pipeline

import (
	"fmt"
	"searchdist/lib/similarweb"
	"strings"
)

const (
	InputAPIKey    = "api_key"
	InputSites     = "sites"
	InputCountries = "countries"
	InputDevice    = "device"
)

// MissingInputError lists every required input that was empty, in the
// order they are checked.
type MissingInputError struct {
	Inputs []string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing required input: %s", strings.Join(e.Inputs, ", "))
}

// RunConfig is everything a run needs, it is built once and never read
// from anywhere else while the run is in progress.
type RunConfig struct {
	APIKey      string
	Sites       []string
	Countries   []string
	Selection   similarweb.Selection
	StartPeriod string
	EndPeriod   string
	// values <= 1 process combinations strictly one after another
	Concurrency int
}

func trimAll(values []string, transform func(string) string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if transform != nil {
			v = transform(v)
		}
		out = append(out, v)
	}
	return out
}

// Normalized drops blank sites and countries and lowercases country codes.
func (c RunConfig) Normalized() RunConfig {
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.Sites = trimAll(c.Sites, nil)
	c.Countries = trimAll(c.Countries, strings.ToLower)
	c.StartPeriod = strings.TrimSpace(c.StartPeriod)
	c.EndPeriod = strings.TrimSpace(c.EndPeriod)
	return c
}

func (c RunConfig) Validate() error {
	var missing []string
	if c.APIKey == "" {
		missing = append(missing, InputAPIKey)
	}
	if len(c.Sites) == 0 {
		missing = append(missing, InputSites)
	}
	if len(c.Countries) == 0 {
		missing = append(missing, InputCountries)
	}
	if c.Selection == "" {
		missing = append(missing, InputDevice)
	}
	if len(missing) > 0 {
		return &MissingInputError{Inputs: missing}
	}

	if len(c.Selection.Devices()) == 0 {
		return fmt.Errorf("unknown device selection %q", c.Selection)
	}
	return similarweb.ValidatePeriods(c.StartPeriod, c.EndPeriod)
}

type Combination struct {
	Site    string
	Country string
	Device  similarweb.Device
}

// Combinations enumerates sites, then countries, then devices.
func (c RunConfig) Combinations() []Combination {
	devices := c.Selection.Devices()
	out := make([]Combination, 0, len(c.Sites)*len(c.Countries)*len(devices))
	for _, site := range c.Sites {
		for _, country := range c.Countries {
			for _, device := range devices {
				out = append(out, Combination{
					Site:    site,
					Country: country,
					Device:  device,
				})
			}
		}
	}
	return out
}

func (c RunConfig) request(combo Combination) similarweb.FetchRequest {
	return similarweb.FetchRequest{
		Site:        combo.Site,
		Country:     combo.Country,
		Device:      combo.Device,
		StartPeriod: c.StartPeriod,
		EndPeriod:   c.EndPeriod,
		APIKey:      c.APIKey,
	}
}
