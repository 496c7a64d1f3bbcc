package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLastPage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   int
		wantOK bool
	}{
		{
			name:   "next and last",
			header: `<https://api.github.com/repositories/1/commits?author=octo&per_page=1&page=2>; rel="next", <https://api.github.com/repositories/1/commits?author=octo&per_page=1&page=34>; rel="last"`,
			want:   34,
			wantOK: true,
		},
		{
			name:   "last listed first",
			header: `<https://api.github.com/x?page=7>; rel="last", <https://api.github.com/x?page=2>; rel="next"`,
			want:   7,
			wantOK: true,
		},
		{
			name:   "no last relation",
			header: `<https://api.github.com/x?page=1>; rel="prev", <https://api.github.com/x?page=1>; rel="first"`,
		},
		{
			name:   "last without page",
			header: `<https://api.github.com/x?per_page=1>; rel="last"`,
		},
		{
			name:   "empty",
			header: "",
		},
		{
			name:   "unquoted rel",
			header: `<https://api.github.com/x?page=12>; rel=last`,
			want:   12,
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := lastPage(tt.header)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
