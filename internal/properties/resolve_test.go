package properties

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpolate(t *testing.T) {
	t.Parallel()

	dict := map[string]string{
		"host": "example.org",
		"port": "443",
		"ref":  "${host}",
	}
	lookup := func(k string) (string, bool) {
		v, ok := dict[k]
		return v, ok
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "no refs", want: "no refs"},
		{name: "single", in: "${host}", want: "example.org"},
		{name: "several", in: "https://${host}:${port}/api", want: "https://example.org:443/api"},
		{name: "unknown", in: "${missing}-${host}", want: "${missing}-example.org"},
		{name: "not chased", in: "${ref}", want: "${host}"},
		{name: "escaped", in: "$${host} ${host}", want: "${host} example.org"},
		{name: "unterminated", in: "a ${host", want: "a ${host"},
		{name: "empty name", in: "${}", want: "${}"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Interpolate(tc.in, lookup))
		})
	}
}
