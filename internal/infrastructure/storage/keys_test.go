package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyFromURL(t *testing.T) {
	host := "localhost:9000"
	bucket := "portfolio"

	tests := []struct {
		name    string
		url     string
		wantKey string
		wantOK  bool
	}{
		{
			name:    "issued url",
			url:     "http://localhost:9000/portfolio/projects/abc/1.jpg",
			wantKey: "projects/abc/1.jpg",
			wantOK:  true,
		},
		{
			name:   "foreign host",
			url:    "https://images.example.com/portfolio/projects/abc/1.jpg",
			wantOK: false,
		},
		{
			name:   "wrong bucket",
			url:    "http://localhost:9000/other/projects/abc/1.jpg",
			wantOK: false,
		},
		{
			name:   "bucket with no key",
			url:    "http://localhost:9000/portfolio/",
			wantOK: false,
		},
		{
			name:   "unparseable",
			url:    "http://local host/%zz",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := KeyFromURL(tt.url, host, bucket)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}
