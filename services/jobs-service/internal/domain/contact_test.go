package domain

import (
	"testing"
	"time"
	"unicode/utf8"
)

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"alice@example.com": "al•••@example.com",
		"a@example.com":     "a•••@example.com",
		"@example.com":      "•••@example.com",
		"not-an-email":      "•••",
	}
	for in, want := range cases {
		if got := MaskEmail(in); got != want {
			t.Fatalf("MaskEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMaskPhone(t *testing.T) {
	cases := map[string]string{
		"0412 345 678":    "•••••••678",
		"+61 (2) 9876-54": "••••••654",
		"12":              "12",
		"":                "",
	}
	for in, want := range cases {
		if got := MaskPhone(in); got != want {
			t.Fatalf("MaskPhone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGenerateContactPolicyIsDeterministic(t *testing.T) {
	a := GenerateContactPolicy("job_1", "conv_9", ContactOverrides{})
	b := GenerateContactPolicy("job_1", "conv_9", ContactOverrides{})
	if a.Buyer.Full != b.Buyer.Full || a.Conveyancer.Full != b.Conveyancer.Full {
		t.Fatalf("same inputs should synthesize the same contacts")
	}
	if a.Buyer.Full.Email == a.Seller.Full.Email {
		t.Fatalf("buyer and seller should differ")
	}
	if a.Unlocked || a.UnlockedAt != nil {
		t.Fatalf("new policies start locked")
	}
	if a.Buyer.MaskedEmail != MaskEmail(a.Buyer.Full.Email) || a.Buyer.MaskedPhone != MaskPhone(a.Buyer.Full.Phone) {
		t.Fatalf("masks should be precomputed from the full details")
	}
	if len(a.Buyer.Full.Phone) != len("0400 000 000") {
		t.Fatalf("unexpected synthesized phone %q", a.Buyer.Full.Phone)
	}
}

func TestSynthesizedNameCutsOnRunes(t *testing.T) {
	p := GenerateContactPolicy("job_1", "ééééé", ContactOverrides{})
	if !utf8.ValidString(p.Conveyancer.Full.Name) || p.Conveyancer.Full.Name != "Conveyancer ÉÉÉÉÉ" {
		t.Fatalf("unexpected name %q", p.Conveyancer.Full.Name)
	}
	p = GenerateContactPolicy("job_1", "日本語の会社名です", ContactOverrides{})
	if p.Conveyancer.Full.Name != "Conveyancer 日本語の会社" {
		t.Fatalf("name should keep six runes, got %q", p.Conveyancer.Full.Name)
	}
}

func TestGenerateContactPolicyOverrides(t *testing.T) {
	p := GenerateContactPolicy("job_1", "conv_9", ContactOverrides{
		Seller: ContactDetails{Email: "seller@agency.com.au"},
	})
	if p.Seller.Full.Email != "seller@agency.com.au" || p.Seller.MaskedEmail != "se•••@agency.com.au" {
		t.Fatalf("override not applied: %+v", p.Seller)
	}
	if p.Seller.Full.Phone == "" {
		t.Fatalf("fields without override keep the synthesized value")
	}
}

func TestUnlockIsOneWayAndIdempotent(t *testing.T) {
	p := GenerateContactPolicy("job_1", "conv_9", ContactOverrides{})
	first := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if !p.Unlock("buyer", first) {
		t.Fatalf("first unlock should change the policy")
	}
	if p.Unlock("admin", first.Add(time.Hour)) {
		t.Fatalf("second unlock must be a no-op")
	}
	if !p.UnlockedAt.Equal(first) || p.UnlockedByRole != "buyer" {
		t.Fatalf("first unlock stamp must survive, got %v %s", p.UnlockedAt, p.UnlockedByRole)
	}
}

func TestProjectGatesFields(t *testing.T) {
	p := GenerateContactPolicy("job_1", "conv_9", ContactOverrides{})

	masked := p.Project("job_1", false, false, "token")
	if masked.Buyer.Email != "" || masked.Buyer.MaskedEmail == "" || masked.UnlockToken != "" {
		t.Fatalf("masked projection leaked details: %+v", masked)
	}
	full := p.Project("job_1", true, false, "token")
	if full.Buyer.Email != p.Buyer.Full.Email || full.UnlockToken != "" {
		t.Fatalf("full projection without internals: %+v", full)
	}
	internal := p.Project("job_1", true, true, "token")
	if internal.UnlockToken != "token" {
		t.Fatalf("internal projection should carry the unlock token")
	}
}
