package codecx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBase64RoundTrip(t *testing.T) {
	raw := []byte{0xfb, 0xef, 0x00, 0x01, 0xff, 0x7e}

	enc := EncodeBase64(raw)
	dec, err := DecodeBase64(enc)
	require.NoError(t, err)
	require.Equal(t, raw, dec)
}

func TestBase64URL_NoUnsafeCharsNoPadding(t *testing.T) {
	// bytes chosen so std base64 would contain '+', '/' and padding
	raw := []byte{0xfb, 0xef, 0xbe, 0xff, 0xfe, 0x01, 0x02}

	enc := EncodeBase64URL(raw)
	require.False(t, strings.ContainsAny(enc, "+/="), "got %q", enc)

	dec, err := DecodeBase64URL(enc)
	require.NoError(t, err)
	require.Equal(t, raw, dec)
}

func TestDecodeBase64_Invalid(t *testing.T) {
	_, err := DecodeBase64("not base64 at all!!!")
	require.Error(t, err)
}

func TestStringBytes(t *testing.T) {
	s := "Сегодня шёл дождь ☔"
	require.Equal(t, s, BytesToString(StringToBytes(s)))
}
