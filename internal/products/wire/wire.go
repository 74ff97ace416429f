// Package wire translates product records between the internal snake_case
// JSON representation and the external camelCase API representation.
//
// The mapping is declarative: a small alias table covers names that are not
// a pure case conversion (key <-> productId), and everything else goes
// through the SnakeToCamel/CamelToSnake transforms. Decoding is strict —
// unknown fields, missing required fields and wrong types are all rejected.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/productstack/products-backend/internal/products/domain"
)

// aliases maps internal field names to external names that the case
// transform alone cannot produce.
var aliases = map[string]string{
	"key": "productId",
}

// reverseAliases is the external-to-internal view of aliases.
var reverseAliases = func() map[string]string {
	m := make(map[string]string, len(aliases))
	for internal, external := range aliases {
		m[external] = internal
	}
	return m
}()

// productFields is the full set of internal product field names. Anything
// outside this set in an incoming payload is an unknown field.
var productFields = map[string]bool{
	"key":           true,
	"owner_id":      true,
	"name":          true,
	"description":   true,
	"component_ids": true,
	"price":         true,
}

// patchFields is the mutable subset accepted by partial updates. Key and
// owner_id are immutable, so their presence in a patch is an unknown field.
var patchFields = map[string]bool{
	"name":          true,
	"description":   true,
	"component_ids": true,
	"price":         true,
}

// SnakeToCamel converts a lower_snake_case name to lowerCamelCase:
// split on underscores, title-case each segment, join, then lower the
// first rune.
func SnakeToCamel(s string) string {
	words := strings.Split(s, "_")
	var b strings.Builder
	for _, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		b.WriteRune(unicode.ToUpper(r[0]))
		for _, c := range r[1:] {
			b.WriteRune(unicode.ToLower(c))
		}
	}
	out := []rune(b.String())
	if len(out) == 0 {
		return ""
	}
	out[0] = unicode.ToLower(out[0])
	return string(out)
}

// CamelToSnake converts a lowerCamelCase name back to lower_snake_case.
// It is the inverse of SnakeToCamel for ASCII identifiers.
func CamelToSnake(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsUpper(r) {
			b.WriteByte('_')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// externalName resolves the external form of an internal field name.
func externalName(internal string) string {
	if ext, ok := aliases[internal]; ok {
		return ext
	}
	return SnakeToCamel(internal)
}

// internalName resolves the internal form of an external field name.
func internalName(external string) string {
	if in, ok := reverseAliases[external]; ok {
		return in
	}
	return CamelToSnake(external)
}

// EncodeProduct renders a product in its external representation.
func EncodeProduct(p domain.Product) (map[string]json.RawMessage, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal product: %w", err)
	}

	var internal map[string]json.RawMessage
	if err := json.Unmarshal(data, &internal); err != nil {
		return nil, fmt.Errorf("remap product fields: %w", err)
	}

	external := make(map[string]json.RawMessage, len(internal))
	for name, value := range internal {
		external[externalName(name)] = value
	}
	return external, nil
}

// EncodeProducts renders a list of products in external form. A nil slice
// encodes as an empty list, never null.
func EncodeProducts(items []domain.Product) ([]map[string]json.RawMessage, error) {
	out := make([]map[string]json.RawMessage, 0, len(items))
	for _, p := range items {
		enc, err := EncodeProduct(p)
		if err != nil {
			return nil, err
		}
		out = append(out, enc)
	}
	return out, nil
}

// DecodeProduct parses an external product payload into the internal
// representation. When requireKey is true the payload must carry productId
// (upsert); when false, productId is rejected as unknown (create, where the
// server generates the key).
func DecodeProduct(body []byte, requireKey bool) (domain.Product, error) {
	var p domain.Product

	fields, err := remapIncoming(body, productFields)
	if err != nil {
		return p, err
	}
	if !requireKey {
		if _, ok := fields["key"]; ok {
			return p, fmt.Errorf("unknown field %q", externalName("key"))
		}
	}

	required := []string{"owner_id", "name", "description", "component_ids", "price"}
	if requireKey {
		required = append(required, "key")
	}
	for _, name := range required {
		if _, ok := fields[name]; !ok {
			return p, fmt.Errorf("missing required field %q", externalName(name))
		}
	}

	if err := strictUnmarshal(fields, &p); err != nil {
		return p, err
	}
	if p.ComponentIDs == nil {
		return p, fmt.Errorf("field %q must be a list of strings", externalName("component_ids"))
	}
	return p, nil
}

// DecodePatch parses an external partial-update payload. Only the mutable
// fields are accepted; immutable and unknown fields are rejected.
func DecodePatch(body []byte) (domain.ProductPatch, error) {
	var patch domain.ProductPatch

	fields, err := remapIncoming(body, patchFields)
	if err != nil {
		return patch, err
	}

	if err := strictUnmarshal(fields, &patch); err != nil {
		return patch, err
	}
	return patch, nil
}

// remapIncoming parses an external JSON object and renames its keys to the
// internal convention, rejecting any name outside allowed and any null
// value for a supplied field.
func remapIncoming(body []byte, allowed map[string]bool) (map[string]json.RawMessage, error) {
	var external map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&external); err != nil {
		return nil, fmt.Errorf("request body is not a JSON object")
	}

	internal := make(map[string]json.RawMessage, len(external))
	for name, value := range external {
		in := internalName(name)
		if !allowed[in] {
			return nil, fmt.Errorf("unknown field %q", name)
		}
		if string(bytes.TrimSpace(value)) == "null" {
			return nil, fmt.Errorf("field %q must not be null", name)
		}
		internal[in] = value
	}
	return internal, nil
}

// strictUnmarshal re-marshals the renamed field map and decodes it into dst
// with unknown-field checking, so type mismatches surface as errors.
func strictUnmarshal(fields map[string]json.RawMessage, dst any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("remap request fields: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid field value: %v", err)
	}
	return nil
}
