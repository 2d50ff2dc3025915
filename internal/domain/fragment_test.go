package domain

import "testing"

func TestResultSetMergeReplacesByPlatform(t *testing.T) {
	set := NewResultSet()

	if applied := set.Merge(LinkedInPost{Text: "v1"}); !applied {
		t.Fatalf("first merge should apply")
	}
	set.Merge(LinkedInPost{Text: "v2", Hashtags: []string{"#go"}})

	if set.Len() != 1 {
		t.Fatalf("len = %d, want 1 (same platform replaced)", set.Len())
	}
	f, ok := set.Fragment(PlatformLinkedIn)
	if !ok {
		t.Fatalf("linkedin fragment missing")
	}
	if f.(LinkedInPost).Text != "v2" {
		t.Fatalf("text = %q, want the replacing fragment", f.Body())
	}
}

func TestResultSetMergeIsIdempotent(t *testing.T) {
	set := NewResultSet()
	batch := []Fragment{
		LinkedInPost{Text: "li"},
		TwitterThread{Tweets: []string{"one", "two"}},
	}

	set.Merge(batch...)
	before := set.Len()
	set.Merge(batch...)

	if set.Len() != before {
		t.Fatalf("len changed on re-merge: %d -> %d", before, set.Len())
	}
}

func TestResultSetSnapshotUsesStablePlatformOrder(t *testing.T) {
	set := NewResultSet()
	set.Merge(
		EmailNewsletter{Subject: "s", Text: "t"},
		LinkedInPost{Text: "li"},
		BlogArticle{Title: "b", HTML: "<p>x</p>"},
	)

	snap := set.Snapshot()
	want := []Platform{PlatformLinkedIn, PlatformBlog, PlatformEmail}
	if len(snap) != len(want) {
		t.Fatalf("snapshot len = %d, want %d", len(snap), len(want))
	}
	for i, p := range want {
		if snap[i].Platform() != p {
			t.Fatalf("snapshot[%d] = %s, want %s", i, snap[i].Platform(), p)
		}
	}
}

func TestResultSetMergeSkipsNilFragments(t *testing.T) {
	set := NewResultSet()
	if applied := set.Merge(nil); applied {
		t.Fatalf("nil fragment must not count as applied")
	}
	if set.Len() != 0 {
		t.Fatalf("len = %d, want 0", set.Len())
	}
}
