package cache

import (
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "resource only",
			key:  Key{Resource: "posts"},
			want: "resonance:posts",
		},
		{
			name: "paginated",
			key:  Key{Resource: "posts", Page: 2, PageSize: 15},
			want: "resonance:posts:page=2:size=15",
		},
		{
			name: "params sorted",
			key: Key{
				Resource: "posts",
				Page:     1,
				PageSize: 15,
				Params:   map[string]string{"search": "ambient", "kind": "track"},
			},
			want: "resonance:posts:page=1:size=15:kind=track:search=ambient",
		},
		{
			name: "empty params skipped",
			key: Key{
				Resource: "albums",
				Page:     1,
				PageSize: 10,
				Params:   map[string]string{"search": ""},
			},
			want: "resonance:albums:page=1:size=10",
		},
		{
			name: "resource slashes trimmed",
			key:  Key{Resource: "/analytics/"},
			want: "resonance:analytics",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKey_Deterministic(t *testing.T) {
	key := Key{
		Resource: "posts",
		Page:     3,
		PageSize: 15,
		Params:   map[string]string{"kind": "track", "sort": "most_liked", "range": "week"},
	}

	first := key.String()
	for i := 0; i < 50; i++ {
		if got := key.String(); got != first {
			t.Fatalf("Key not deterministic: %q vs %q", got, first)
		}
	}
}

func TestKey_ResourcePrefix(t *testing.T) {
	key := Key{Resource: "posts", Page: 2, PageSize: 15}

	if got := key.ResourcePrefix(); got != "resonance:posts" {
		t.Errorf("ResourcePrefix() = %q, want %q", got, "resonance:posts")
	}
}
