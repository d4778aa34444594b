package similarweb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"searchdist/lib/restyutil"
	"searchdist/lib/telemetry"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("searchdist.lib.similarweb")

const DefaultBaseUrl = "https://api.similarweb.com/v1/website"

const (
	SourceHeader      = "x-sw-source"
	SourceHeaderValue = "streamlit_kw"
)

const (
	desktopEndpoint = "traffic-sources/search-visits-distribution"
	mobileEndpoint  = "mobile-traffic-sources/search-visits-distribution"
)

// protocol constants, these are not configurable
const (
	mainDomainOnly = "false"
	responseFormat = "json"
)

// Endpoint returns the path for exactly one device, the desktop and
// mobile paths are not interchangeable.
func Endpoint(device Device) (string, error) {
	switch device {
	case Desktop:
		return desktopEndpoint, nil
	case Mobile:
		return mobileEndpoint, nil
	default:
		return "", fmt.Errorf("no endpoint for device %q", device)
	}
}

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
	// sends the client identification header unless explicitly false
	SourceHeader *bool
	// 0 keeps the transport default
	Timeout time.Duration
	// if set, every HTTP message is dumped to it
	InstrumentOutput restyutil.InstrumentOutput
}

type Client struct {
	http *resty.Client
}

func NewClient(opts ClientOptions) *Client {
	baseUrl := opts.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}

	client := resty.New()
	client.SetBaseURL(baseUrl)
	if opts.SourceHeader == nil || *opts.SourceHeader {
		client.SetHeader(SourceHeader, SourceHeaderValue)
	}
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	restyutil.InstrumentClient(client, tracer, opts.InstrumentOutput)

	return &Client{http: client}
}

// Fetch makes exactly one request, it never retries and never returns an
// error, every problem becomes a Failure.
func (c *Client) Fetch(ctx context.Context, req FetchRequest) Result {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()

	span.SetAttributes(
		attribute.String("site", req.Site),
		attribute.String("country", req.Country),
		attribute.String("device", string(req.Device)),
	)

	err := req.Validate()
	if err != nil {
		span.SetStatus(codes.Error, "invalid request")
		return Failure{Body: fmt.Sprintf("invalid request: %s", err.Error())}
	}
	endpoint, err := Endpoint(req.Device)
	if err != nil {
		span.SetStatus(codes.Error, "unknown device")
		return Failure{Body: err.Error()}
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetPathParam("site", pathSite(req.Site)).
		SetQueryParams(map[string]string{
			"api_key":          req.APIKey,
			"start_date":       req.StartPeriod,
			"end_date":         req.EndPeriod,
			"country":          req.Country,
			"main_domain_only": mainDomainOnly,
			"format":           responseFormat,
		}).
		Get("/{site}/" + endpoint)
	if err != nil {
		// transport errors quote the request url, which carries the api key
		body := restyutil.RedactError(err)
		span.RecordError(errors.New(body))
		span.SetStatus(codes.Error, "failed to make request")
		return Failure{Body: body}
	}

	span.SetAttributes(attribute.Int("status", res.StatusCode()))
	body := res.Body()
	if res.StatusCode() != http.StatusOK {
		span.SetStatus(codes.Error, "unexpected status")
		return Failure{StatusCode: res.StatusCode(), Body: string(body)}
	}
	if !json.Valid(body) {
		span.SetStatus(codes.Error, "response is not json")
		return Failure{StatusCode: res.StatusCode(), Body: string(body)}
	}

	raw := make(json.RawMessage, len(body))
	copy(raw, body)
	return Success{Raw: raw}
}
