package domain

import "testing"

func TestComputeIdentityStableAcrossWhitespaceAndCase(t *testing.T) {
	testCases := []struct {
		name string
		a    [5]string // source, externalID, url, title, company
		b    [5]string
		same bool
	}{
		{
			name: "whitespace noise in title",
			a:    [5]string{"indeed", "", "https://vn.indeed.com/viewjob?jk=abc", "Marketing   Executive", "Acme Corp"},
			b:    [5]string{"indeed", "", "https://vn.indeed.com/viewjob?jk=abc", " Marketing Executive ", "Acme Corp"},
			same: true,
		},
		{
			name: "case noise in title and company",
			a:    [5]string{"indeed", "", "https://vn.indeed.com/viewjob?jk=abc", "marketing executive", "ACME CORP"},
			b:    [5]string{"indeed", "", "https://vn.indeed.com/viewjob?jk=abc", "Marketing Executive", "Acme Corp"},
			same: true,
		},
		{
			name: "external id wins over url noise",
			a:    [5]string{"linkedin", "3791", "https://linkedin.com/jobs/view/3791?refId=x", "A", "B"},
			b:    [5]string{"linkedin", "3791", "https://linkedin.com/jobs/view/3791", "A different title", "B"},
			same: true,
		},
		{
			name: "different external ids differ",
			a:    [5]string{"linkedin", "3791", "", "A", "B"},
			b:    [5]string{"linkedin", "3792", "", "A", "B"},
			same: false,
		},
		{
			name: "same external id on different sources differs",
			a:    [5]string{"indeed", "3791", "", "A", "B"},
			b:    [5]string{"linkedin", "3791", "", "A", "B"},
			same: false,
		},
		{
			name: "tracking params ignored in url hash",
			a:    [5]string{"indeed", "", "https://vn.indeed.com/viewjob?jk=abc&utm_source=feed", "T", "C"},
			b:    [5]string{"indeed", "", "https://vn.indeed.com/viewjob?jk=abc", "T", "C"},
			same: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			idA := ComputeIdentity(tc.a[0], tc.a[1], tc.a[2], tc.a[3], tc.a[4])
			idB := ComputeIdentity(tc.b[0], tc.b[1], tc.b[2], tc.b[3], tc.b[4])
			if (idA == idB) != tc.same {
				t.Errorf("identity equality = %v, want %v (a=%s b=%s)", idA == idB, tc.same, idA, idB)
			}
		})
	}
}

func TestComputeIdentityDeterministic(t *testing.T) {
	first := ComputeIdentity("indeed", "jk123", "", "", "")
	for i := 0; i < 5; i++ {
		if got := ComputeIdentity("indeed", "jk123", "", "", ""); got != first {
			t.Fatalf("identity not deterministic: %s != %s", got, first)
		}
	}
	if len(first) != 40 {
		t.Errorf("identity hash length = %d, want 40 hex chars", len(first))
	}
}

func TestCanonicalURL(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase host", "https://VN.Indeed.com/viewjob?jk=abc", "https://vn.indeed.com/viewjob?jk=abc"},
		{"drop fragment", "https://vn.indeed.com/viewjob?jk=abc#apply", "https://vn.indeed.com/viewjob?jk=abc"},
		{"strip tracking", "https://vn.indeed.com/viewjob?jk=abc&utm_source=x&trk=y", "https://vn.indeed.com/viewjob?jk=abc"},
		{"keep meaningful params", "https://vn.indeed.com/viewjob?jk=abc&vjs=3", "https://vn.indeed.com/viewjob?jk=abc&vjs=3"},
		{"unparseable passes through", "not a url", "not a url"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanonicalURL(tc.in); got != tc.want {
				t.Errorf("CanonicalURL(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeCompanyName(t *testing.T) {
	if got := NormalizeCompanyName("  Acme   CORP  "); got != "acme corp" {
		t.Errorf("NormalizeCompanyName = %q, want %q", got, "acme corp")
	}
}
