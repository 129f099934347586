package services

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestCensorName(t *testing.T) {
	require.Equal(t, "Ja*****e", censorName("Jamie Doe"))
	require.Equal(t, "Al", censorName("Al"))
	require.Equal(t, "", censorName(""))

	// multi-byte names must not be split mid-rune
	censored := censorName("Trầm Hương")
	require.True(t, utf8.ValidString(censored))
	require.Equal(t, "Tr*****g", censored)

	censored = censorName("日本語の名前")
	require.True(t, utf8.ValidString(censored))
	require.Equal(t, "日本*****前", censored)
}
