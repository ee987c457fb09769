package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindAddresses(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "plain", text: "write to info@biz.com today", want: []string{"info@biz.com"}},
		{name: "several", text: "a@b.io, c.d+e@f-g.co.uk", want: []string{"a@b.io", "c.d+e@f-g.co.uk"}},
		{name: "short tld rejected", text: "x@y.z", want: nil},
		{name: "numeric tld rejected", text: "x@10.0.0.1", want: nil},
		{name: "none", text: "no contact here", want: nil},
		{name: "empty", text: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindAddresses(tt.text)
			require.Equal(t, tt.want, got)

			for _, m := range got {
				require.True(t, strings.Contains(tt.text, m))
				require.Equal(t, []string{m}, FindAddresses(m))
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "jane [at] example.com", want: "jane@example.com"},
		{in: "jane(at)example(dot)com", want: "jane@example.com"},
		{in: "jane (at) example [dot] com", want: "jane@example.com"},
		{in: "jane[at]example[dot]com", want: "jane@example.com"},
		{in: "jane AT example DOT com", want: "jane AT example DOT com"},
		{in: "[a[at]t]", want: "[a@t]"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Normalize(tt.in)
			require.Equal(t, tt.want, got)
			require.Equal(t, got, Normalize(got))
		})
	}
}

func TestAddressSetMerge(t *testing.T) {
	a := NewAddressSet()
	a.Add("Info@Biz.com", SourceRendered)
	a.Add("x@y.com", SourceStatic)

	b := NewAddressSet()
	b.Add("info@biz.com", SourceStatic)
	b.Add("x@y.com", SourceRendered)

	ab := NewAddressSet().Merge(a).Merge(b)
	ba := NewAddressSet().Merge(b).Merge(a)

	require.Equal(t, ab, ba)
	require.Equal(t, SourceStatic, ab.Source("info@biz.com"))
	require.Equal(t, SourceStatic, ab.Source("x@y.com"))
	require.Equal(t, []string{"info@biz.com", "x@y.com"}, ab.Addresses())

	require.Equal(t, ab, NewAddressSet().Merge(ab).Merge(ab))
}

func TestAddressSetIgnoresBlank(t *testing.T) {
	s := NewAddressSet()
	s.Add("  ", SourceStatic)
	require.Empty(t, s)
}

func TestAddressSetKeepsSpelling(t *testing.T) {
	s := NewAddressSet()
	s.AddText("Write to Jane.Doe@Corp.com or jane.doe@corp.com", SourceStatic)

	require.Len(t, s, 1)
	require.Equal(t, []string{"Jane.Doe@Corp.com"}, s.Addresses())
	require.Equal(t, SourceStatic, s.Source("JANE.DOE@CORP.COM"))
}

func TestAddressSetSpellingOrderIndependent(t *testing.T) {
	tests := []struct {
		name  string
		first Found
		later Found
		want  Found
	}{
		{
			name:  "same source picks smallest spelling",
			first: Found{Address: "info@Biz.com", Source: SourceStatic},
			later: Found{Address: "Info@biz.com", Source: SourceStatic},
			want:  Found{Address: "Info@biz.com", Source: SourceStatic},
		},
		{
			name:  "static spelling beats rendered",
			first: Found{Address: "Info@biz.com", Source: SourceRendered},
			later: Found{Address: "info@biz.com", Source: SourceStatic},
			want:  Found{Address: "info@biz.com", Source: SourceStatic},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ab := NewAddressSet()
			ab.Add(tt.first.Address, tt.first.Source)
			ab.Add(tt.later.Address, tt.later.Source)

			ba := NewAddressSet()
			ba.Add(tt.later.Address, tt.later.Source)
			ba.Add(tt.first.Address, tt.first.Source)

			require.Equal(t, ab, ba)
			require.Equal(t, []Found{tt.want}, ab.Members())
		})
	}
}
