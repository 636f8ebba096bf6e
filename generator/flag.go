package generator

import (
	"bytes"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
)

// Flag 在 JSON 中编码为 0/1，解码时也接受 true/false。
type Flag bool

func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	switch s {
	case "", "null", "0", "false":
		*f = false
		return nil
	case "1", "true":
		*f = true
		return nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		*f = n != 0
		return nil
	}
	return goerr.New("invalid flag value", goerr.V("value", s))
}
