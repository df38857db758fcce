// Package querykey builds the deterministic identifiers under which query
// results are cached and against which invalidation events are matched.
package querykey

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// RequestKey names a resource family or an operation inside it.
type RequestKey string

const (
	ContentPreference RequestKey = "contentPreference"
	UserBlocked       RequestKey = "userBlocked"
	UserFollowing     RequestKey = "userFollowing"
)

// Anonymous is the actor segment used when no user is signed in.
const Anonymous = "anonymous"

var ErrMalformedKey = errors.New("malformed query key")

// Key is the 4-tuple {domain, actor, operation, variables}. Variables hold the
// canonical JSON of the variables record, which makes Key comparable: two keys
// name the same cached resource iff they are ==.
type Key struct {
	Domain    RequestKey
	Actor     string
	Operation RequestKey
	Variables string
}

// Generate builds a key. vars must marshal to a JSON object (or null); map keys
// are sorted and struct fields tagged omitempty vanish when unset, so equal
// inputs always give equal keys.
func Generate(domain RequestKey, actor string, operation RequestKey, vars any) (Key, error) {
	canon, err := canonicalize(vars)
	if err != nil {
		return Key{}, err
	}
	if actor == "" {
		actor = Anonymous
	}
	return Key{
		Domain:    domain,
		Actor:     actor,
		Operation: operation,
		Variables: canon,
	}, nil
}

// MustGenerate is Generate for variables known to be serialisable.
func MustGenerate(domain RequestKey, actor string, operation RequestKey, vars any) Key {
	k, err := Generate(domain, actor, operation, vars)
	if err != nil {
		panic(err)
	}
	return k
}

func canonicalize(vars any) (string, error) {
	if vars == nil {
		return "{}", nil
	}

	raw, err := json.Marshal(vars)
	if err != nil {
		return "", fmt.Errorf("%w: variables: %v", ErrMalformedKey, err)
	}

	// Round-trip through a map so struct field order and map order agree.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return "", fmt.Errorf("%w: variables must be an object: %v", ErrMalformedKey, err)
	}
	if obj == nil {
		return "{}", nil
	}

	out, err := json.Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("%w: variables: %v", ErrMalformedKey, err)
	}
	return string(out), nil
}

func (k Key) IsZero() bool {
	return k == Key{}
}

// Hash is a compact digest of the key. Distinct keys may collide; callers that
// index by Hash must still compare keys with ==.
func (k Key) Hash() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(string(k.Domain))
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(k.Actor)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(string(k.Operation))
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(k.Variables)
	return d.Sum64()
}

// String is the canonical encoding, also used as the singleflight key.
func (k Key) String() string {
	b, _ := k.MarshalJSON()
	return string(b)
}

// DecodeVariables unmarshals the variables record into dst.
func (k Key) DecodeVariables(dst any) error {
	vars := k.Variables
	if vars == "" {
		vars = "{}"
	}
	if err := json.Unmarshal([]byte(vars), dst); err != nil {
		return fmt.Errorf("%w: variables: %v", ErrMalformedKey, err)
	}
	return nil
}

// Variable returns a top-level variable as a string, or "" when absent or not
// a string.
func (k Key) Variable(name string) string {
	var m map[string]any
	if err := k.DecodeVariables(&m); err != nil {
		return ""
	}
	s, _ := m[name].(string)
	return s
}

func (k Key) MarshalJSON() ([]byte, error) {
	vars := k.Variables
	if vars == "" {
		vars = "{}"
	}
	return json.Marshal([]any{k.Domain, k.Actor, k.Operation, json.RawMessage(vars)})
}

func (k *Key) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedKey, err)
	}
	if len(parts) != 4 {
		return fmt.Errorf("%w: expected 4 segments, got %d", ErrMalformedKey, len(parts))
	}

	var domain, actor, op string
	for i, dst := range []*string{&domain, &actor, &op} {
		if err := json.Unmarshal(parts[i], dst); err != nil {
			return fmt.Errorf("%w: segment %d: %v", ErrMalformedKey, i, err)
		}
	}

	canon, err := canonicalize(parts[3])
	if err != nil {
		return err
	}

	*k = Key{
		Domain:    RequestKey(domain),
		Actor:     actor,
		Operation: RequestKey(op),
		Variables: canon,
	}
	return nil
}
