package shared

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeClampsBounds(t *testing.T) {
	cases := []struct {
		name string
		in   Page
		want Page
	}{
		{"zero value gets defaults", Page{}, Page{Offset: 0, Limit: DefaultPageLimit}},
		{"negative offset clamped", Page{Offset: -5, Limit: 10}, Page{Offset: 0, Limit: 10}},
		{"oversized limit capped", Page{Offset: 40, Limit: 500}, Page{Offset: 40, Limit: MaxPageLimit}},
		{"within bounds untouched", Page{Offset: 20, Limit: 50}, Page{Offset: 20, Limit: 50}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.in.Normalize())
		})
	}
}

func TestPageFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/admin/salary-slips?skip=30&limit=15", nil)
	require.Equal(t, Page{Offset: 30, Limit: 15}, PageFromRequest(r))

	r = httptest.NewRequest("GET", "/admin/salary-slips?skip=bogus&limit=-1", nil)
	require.Equal(t, Page{Offset: 0, Limit: DefaultPageLimit}, PageFromRequest(r))

	r = httptest.NewRequest("GET", "/admin/salary-slips", nil)
	require.Equal(t, Page{Offset: 0, Limit: DefaultPageLimit}, PageFromRequest(r))
}
