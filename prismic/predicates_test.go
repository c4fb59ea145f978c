package prismic

import "testing"

func TestPredicateString(t *testing.T) {
	tests := []struct {
		p    Predicate
		want string
	}{
		{At("document.type", "posts"), `[at(document.type, "posts")]`},
		{At("my.posts.uid", `say "hi"`), `[at(my.posts.uid, "say \"hi\"")]`},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("String() = %s, want %s", got, tt.want)
		}
	}
}

func TestEncodePredicates(t *testing.T) {
	got := encodePredicates([]Predicate{At("document.type", "posts"), At("my.posts.uid", "x")})
	want := `[[at(document.type, "posts")][at(my.posts.uid, "x")]]`
	if got != want {
		t.Errorf("encodePredicates() = %s, want %s", got, want)
	}
}
