package rg

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestFromBase64_RoundTrip(t *testing.T) {
	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}

	tests := []struct {
		name string
		raw  []byte
	}{
		{name: "empty", raw: []byte{}},
		{name: "ascii", raw: []byte("hello world")},
		{name: "lone_continuation_byte", raw: invalidPathBytes},
		{name: "truncated_multibyte", raw: []byte{0xe6, 0x97}},
		{name: "every_byte_value", raw: all},
		{name: "utf16_bom", raw: []byte{0xff, 0xfe, 'a', 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := FromBase64(b64(tt.raw))
			require.NoError(t, err)
			assert.False(t, d.IsText())
			assert.Equal(t, tt.raw, d.Bytes())
			assert.Equal(t, len(tt.raw), d.Len())
		})
	}
}

func TestFromBase64_Malformed(t *testing.T) {
	_, err := FromBase64("not base64!!")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestData_BytesIsACopy(t *testing.T) {
	d := FromText("abc")
	b := d.Bytes()
	b[0] = 'x'
	assert.Equal(t, []byte("abc"), d.Bytes())
}

func TestData_LossyText(t *testing.T) {
	assert.Equal(t, "fo�o", FromBytes(invalidPathBytes).LossyText())
	assert.Equal(t, "plain", FromText("plain").LossyText())
}

func TestData_Equal(t *testing.T) {
	fromB64, err := FromBase64(b64([]byte("abc")))
	require.NoError(t, err)

	assert.True(t, FromText("abc").Equal(fromB64), "representation does not matter")

	a := FromBytes([]byte{0x80})
	b := FromBytes([]byte{0x81})
	assert.Equal(t, a.LossyText(), b.LossyText())
	assert.False(t, a.Equal(b), "equality uses raw bytes, never lossy text")
	assert.Equal(t, -1, a.Compare(b))
}

func TestData_Path(t *testing.T) {
	p, err := FromText("src/main.go").Path()
	require.NoError(t, err)
	assert.Equal(t, "src/main.go", p)

	_, err = FromText("").Path()
	assert.True(t, errors.Is(err, ErrInvalidPath))

	_, err = FromBytes([]byte("a\x00b")).Path()
	assert.True(t, errors.Is(err, ErrInvalidPath))

	if runtime.GOOS != "windows" {
		p, err = FromBytes(invalidPathBytes).Path()
		require.NoError(t, err)
		assert.Equal(t, string(invalidPathBytes), p)
	}
}

func TestData_JSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      []byte
		wantError string
	}{
		{name: "text", input: `{"text":"foo"}`, want: []byte("foo")},
		{name: "base64", input: `{"base64":"` + b64(invalidPathBytes) + `"}`, want: invalidPathBytes},
		{name: "both", input: `{"text":"a","base64":"YQ=="}`, wantError: "both text and base64"},
		{name: "neither", input: `{}`, wantError: "neither text nor base64"},
		{name: "bad_base64", input: `{"base64":"%%%"}`, wantError: "invalid base64 payload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Data
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Bytes())
		})
	}
}

func TestData_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(FromText("foo"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"foo"}`, string(out))

	out, err = json.Marshal(FromBytes(invalidPathBytes))
	require.NoError(t, err)
	assert.JSONEq(t, `{"base64":"`+b64(invalidPathBytes)+`"}`, string(out))
}
