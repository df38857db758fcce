package querykey

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

type blockedVars struct {
	Entity string  `json:"entity"`
	First  int     `json:"first"`
	FeedID *string `json:"feedId,omitempty"`
}

func strPtr(s string) *string { return &s }

func TestGenerate_Deterministic(t *testing.T) {
	t.Parallel()

	a := MustGenerate(ContentPreference, "u1", UserBlocked, blockedVars{Entity: "user", First: 20})
	b := MustGenerate(ContentPreference, "u1", UserBlocked, blockedVars{Entity: "user", First: 20})
	require.Equal(t, a, b)
	require.True(t, a == b)
	require.Equal(t, a.Hash(), b.Hash())

	// struct and map with the same fields produce the same key
	c := MustGenerate(ContentPreference, "u1", UserBlocked, map[string]any{"first": 20, "entity": "user"})
	require.True(t, a == c)
}

func TestGenerate_DistinctInputs(t *testing.T) {
	t.Parallel()

	base := MustGenerate(ContentPreference, "u1", UserBlocked, blockedVars{Entity: "user", First: 20})

	tests := []struct {
		name string
		key  Key
	}{
		{"entity", MustGenerate(ContentPreference, "u1", UserBlocked, blockedVars{Entity: "source", First: 20})},
		{"limit", MustGenerate(ContentPreference, "u1", UserBlocked, blockedVars{Entity: "user", First: 21})},
		{"feed", MustGenerate(ContentPreference, "u1", UserBlocked, blockedVars{Entity: "user", First: 20, FeedID: strPtr("f1")})},
		{"empty feed", MustGenerate(ContentPreference, "u1", UserBlocked, blockedVars{Entity: "user", First: 20, FeedID: strPtr("")})},
		{"actor", MustGenerate(ContentPreference, "u2", UserBlocked, blockedVars{Entity: "user", First: 20})},
		{"anonymous", MustGenerate(ContentPreference, "", UserBlocked, blockedVars{Entity: "user", First: 20})},
		{"operation", MustGenerate(ContentPreference, "u1", UserFollowing, blockedVars{Entity: "user", First: 20})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotEqual(t, base, tt.key)
		})
	}
}

func TestGenerate_BlockedScenario(t *testing.T) {
	t.Parallel()

	k := MustGenerate(ContentPreference, "u1", UserBlocked, blockedVars{Entity: "block", First: 20})

	require.Equal(t, ContentPreference, k.Domain)
	require.Equal(t, "u1", k.Actor)
	require.Equal(t, UserBlocked, k.Operation)
	require.JSONEq(t, `{"entity":"block","first":20}`, k.Variables)
	require.Equal(t, "block", k.Variable("entity"))
	require.Empty(t, k.Variable("feedId"))
}

func TestGenerate_Anonymous(t *testing.T) {
	t.Parallel()

	k := MustGenerate(ContentPreference, "", UserBlocked, nil)
	require.Equal(t, Anonymous, k.Actor)
	require.Equal(t, "{}", k.Variables)
}

func TestGenerate_InvalidVariables(t *testing.T) {
	t.Parallel()

	_, err := Generate(ContentPreference, "u1", UserBlocked, []int{1, 2})
	require.ErrorIs(t, err, ErrMalformedKey)

	_, err = Generate(ContentPreference, "u1", UserBlocked, map[string]any{"ch": make(chan int)})
	require.ErrorIs(t, err, ErrMalformedKey)
}

func TestKey_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	keys := []Key{
		MustGenerate(ContentPreference, "u1", UserBlocked, blockedVars{Entity: "user", First: 20}),
		MustGenerate(ContentPreference, "u1", UserBlocked, blockedVars{Entity: "user", First: 20, FeedID: strPtr("f1")}),
		MustGenerate(ContentPreference, "", UserFollowing, nil),
	}

	for _, k := range keys {
		b, err := json.Marshal(k)
		require.NoError(t, err)

		var got Key
		require.NoError(t, json.Unmarshal(b, &got))
		require.True(t, k == got, "round trip of %s", b)
		require.Equal(t, k.Hash(), got.Hash())
	}
}

func TestKey_MarshalJSON_Shape(t *testing.T) {
	t.Parallel()

	k := MustGenerate(ContentPreference, "u1", UserBlocked, blockedVars{Entity: "user", First: 20})
	require.JSONEq(t, `["contentPreference","u1","userBlocked",{"entity":"user","first":20}]`, k.String())
}

func TestKey_UnmarshalJSON_Malformed(t *testing.T) {
	t.Parallel()

	for _, in := range []string{`{}`, `["a","b"]`, `[1,"b","c",{}]`, `["a","b","c",[1]]`} {
		var k Key
		require.ErrorIs(t, json.Unmarshal([]byte(in), &k), ErrMalformedKey, in)
	}
}

func TestKey_DecodeVariables(t *testing.T) {
	t.Parallel()

	k := MustGenerate(ContentPreference, "u1", UserBlocked, blockedVars{Entity: "user", First: 20, FeedID: strPtr("f1")})

	var got blockedVars
	require.NoError(t, k.DecodeVariables(&got))
	require.Equal(t, "user", got.Entity)
	require.Equal(t, 20, got.First)
	require.Equal(t, "f1", *got.FeedID)
}
