package similarweb

import (
	"encoding/json"
	"fmt"
	"searchdist/lib/htmlutil"
)

// Result is either Success or Failure, never both.
type Result interface {
	isResult()
}

// Success holds the undecoded json document of a 200 response.
type Success struct {
	Raw json.RawMessage
}

func (Success) isResult() {}

// Failure is a value, callers decide whether to keep going. StatusCode is 0
// when no HTTP response was received.
type Failure struct {
	StatusCode int
	Body       string
}

func (Failure) isResult() {}

func (f Failure) Error() string {
	if f.StatusCode == 0 {
		return fmt.Sprintf("request failed: %s", f.Summary())
	}
	return fmt.Sprintf("status %d: %s", f.StatusCode, f.Summary())
}

// Summary is the body collapsed to one short line.
func (f Failure) Summary() string {
	return htmlutil.Summarize(f.Body, 300)
}
