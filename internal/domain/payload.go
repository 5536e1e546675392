package domain

import (
	"encoding/json"
	"strings"
)

// Payload carries the raw request fields for one generation, kept loose so
// every model's parser can pick what it needs and the whole thing can be
// stored for replay by the fallback flow.
type Payload map[string]any

// ParsePayload decodes a stored payload back into its map form.
func ParsePayload(raw []byte) (Payload, error) {
	if len(raw) == 0 {
		return Payload{}, nil
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return p, nil
}

// String returns the named field when it is a non-empty string.
func (p Payload) String(key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

// Float returns the named field as a float64 when it is numeric.
func (p Payload) Float(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// Int returns the named field as an int when it is numeric.
func (p Payload) Int(key string) (int, bool) {
	f, ok := p.Float(key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Strings returns the named field as a string slice. JSON arrays decode to
// []any, so each element is filtered down to its string form.
func (p Payload) Strings(key string) []string {
	switch v := p[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Has reports whether the named field is present and non-empty.
func (p Payload) Has(key string) bool {
	switch v := p[key].(type) {
	case nil:
		return false
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case []string:
		return len(v) > 0
	}
	_, ok := p[key]
	return ok
}

// HasReferenceMedia reports whether the request carries a conditioning image,
// which triggers the text-to-video → image-to-video substitution.
func (p Payload) HasReferenceMedia() bool {
	return p.Has("image") || len(p.Strings("images")) > 0
}

// Clone returns a shallow copy safe for per-attempt mutation.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge overlays the given fields on a copy of the payload.
func (p Payload) Merge(over map[string]any) Payload {
	out := p.Clone()
	for k, v := range over {
		out[k] = v
	}
	return out
}

// Redacted returns the payload with inline base64 media stripped out of
// init_images so the stored row never embeds image bytes.
func (p Payload) Redacted() Payload {
	images := p.Strings("init_images")
	if len(images) == 0 {
		return p
	}
	inline := false
	for _, img := range images {
		if strings.HasPrefix(img, "data:") {
			inline = true
			break
		}
	}
	if !inline {
		return p
	}
	out := p.Clone()
	redacted := make([]string, len(images))
	for i, img := range images {
		if strings.HasPrefix(img, "data:") {
			redacted[i] = "image_placeholder"
		} else {
			redacted[i] = img
		}
	}
	out["init_images"] = redacted
	return out
}

// Encode serializes the payload for storage.
func (p Payload) Encode() ([]byte, error) {
	return json.Marshal(p)
}
