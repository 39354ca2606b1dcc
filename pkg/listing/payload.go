package listing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// SchemeCollectionKeys are the fields a scheme endpoint may carry its
// records under, in priority order.
var SchemeCollectionKeys = []string{"schemes", "records", "data"}

// ErrMalformed is returned when a response body is not valid JSON.
var ErrMalformed = errors.New("malformed listing payload")

// Payload is the decoded body of a listing endpoint.
type Payload struct {
	// Records holds the collection elements. Elements that are not JSON
	// objects decode to nil maps so positions are preserved.
	Records []map[string]any

	// Total is the server-declared total, valid when HasTotal is set.
	Total    int
	HasTotal bool
}

// Empty reports whether no records were found.
func (p Payload) Empty() bool {
	return len(p.Records) == 0
}

// DecodePayload parses body and locates the record collection under the
// first of keys that holds an array. A body that is valid JSON but has no
// such collection yields an empty payload, not an error.
func DecodePayload(body []byte, keys []string) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return Payload{}, nil
	}

	var p Payload
	for _, key := range keys {
		arr, ok := obj[key].([]any)
		if !ok {
			continue
		}
		p.Records = make([]map[string]any, len(arr))
		for i, el := range arr {
			p.Records[i], _ = el.(map[string]any)
		}
		break
	}

	if n, ok := obj["total"].(json.Number); ok {
		if f, err := n.Float64(); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			p.Total = int(f)
			p.HasTotal = true
		}
	}

	return p, nil
}
