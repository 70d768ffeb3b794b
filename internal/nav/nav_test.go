package nav

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuildMarksActive(t *testing.T) {
	items := Build("/services/web-design")
	for _, it := range items {
		if it.Href == "/services" && !it.Active {
			t.Fatal("expected services to be active")
		}
		if it.Href == "/solutions" && it.Active {
			t.Fatal("expected solutions to be inactive")
		}
	}
}

func TestBreadcrumbs(t *testing.T) {
	got := Breadcrumbs("/case-studies/acme-rollout/", "Acme: A Rollout Story")
	want := []Crumb{
		{Href: "/", Label: "Home"},
		{Href: "/case-studies", Label: "Case Studies"},
		{Href: "/case-studies/acme-rollout", Label: "Acme: A Rollout Story", Active: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("crumbs (-want +got):\n%s", diff)
	}

	got = Breadcrumbs("/privacy-policy", "")
	if got[1].Label != "Privacy Policy" {
		t.Fatalf("expected title-cased segment, got %q", got[1].Label)
	}

	got = Breadcrumbs("/", "ignored")
	if len(got) != 1 || !got[0].Active {
		t.Fatalf("expected single active home crumb, got %+v", got)
	}
}
