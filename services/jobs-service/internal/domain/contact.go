package domain

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"
	"unicode"
)

const maskBullet = "•"

const contactDomain = "conveysafe.example"

// MaskEmail keeps at most two leading characters of the local part and the
// whole domain: "alice@example.com" becomes "al•••@example.com".
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return strings.Repeat(maskBullet, 3)
	}
	local, host := email[:at], email[at+1:]
	keep := []rune(local)
	if len(keep) > 2 {
		keep = keep[:2]
	}
	return string(keep) + strings.Repeat(maskBullet, 3) + "@" + host
}

// MaskPhone drops every non-digit and replaces all but the last three digits
// with bullets.
func MaskPhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) <= 3 {
		return d
	}
	return strings.Repeat(maskBullet, len(d)-3) + d[len(d)-3:]
}

type ContactDetails struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// ContactParty holds one party's full details and their precomputed masks.
type ContactParty struct {
	Full        ContactDetails
	MaskedEmail string
	MaskedPhone string
}

func newParty(details ContactDetails) ContactParty {
	return ContactParty{
		Full:        details,
		MaskedEmail: MaskEmail(details.Email),
		MaskedPhone: MaskPhone(details.Phone),
	}
}

// ContactOverrides replaces synthesized details per party. Empty fields keep
// the synthesized value.
type ContactOverrides struct {
	Buyer       ContactDetails `json:"buyer"`
	Seller      ContactDetails `json:"seller"`
	Conveyancer ContactDetails `json:"conveyancer"`
}

// ContactPolicy moves one way from locked to unlocked.
type ContactPolicy struct {
	Unlocked       bool
	UnlockedAt     *time.Time
	UnlockedByRole string
	Buyer          ContactParty
	Seller         ContactParty
	Conveyancer    ContactParty
}

// GenerateContactPolicy builds a locked policy. Details not supplied by
// overrides are synthesized from the job and conveyancer ids, so the same
// inputs always yield the same contacts.
func GenerateContactPolicy(jobID, conveyancerID string, overrides ContactOverrides) ContactPolicy {
	return ContactPolicy{
		Buyer:       newParty(merge(synthesize("buyer", jobID), overrides.Buyer)),
		Seller:      newParty(merge(synthesize("seller", jobID), overrides.Seller)),
		Conveyancer: newParty(merge(synthesize("conveyancer", conveyancerID), overrides.Conveyancer)),
	}
}

func synthesize(role, key string) ContactDetails {
	h := fnv.New64a()
	h.Write([]byte(role + ":" + key))
	sum := h.Sum64()
	slug := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, key)
	if slug == "" {
		slug = fmt.Sprintf("%x", sum&0xffffff)
	}
	title := strings.ToUpper(role[:1]) + role[1:]
	short := []rune(slug)
	return ContactDetails{
		Name:  title + " " + strings.ToUpper(string(short[:min(len(short), 6)])),
		Email: role + "." + slug + "@" + contactDomain,
		Phone: fmt.Sprintf("04%02d %03d %03d", sum%100, (sum/100)%1000, (sum/100000)%1000),
	}
}

func merge(base, override ContactDetails) ContactDetails {
	if v := strings.TrimSpace(override.Name); v != "" {
		base.Name = v
	}
	if v := strings.TrimSpace(override.Email); v != "" {
		base.Email = v
	}
	if v := strings.TrimSpace(override.Phone); v != "" {
		base.Phone = v
	}
	return base
}

// Unlock reports whether the call changed the policy. Later calls keep the
// first unlock's timestamp and role.
func (p *ContactPolicy) Unlock(role string, at time.Time) bool {
	if p.Unlocked {
		return false
	}
	stamp := at.UTC()
	p.Unlocked = true
	p.UnlockedAt = &stamp
	p.UnlockedByRole = role
	return true
}

type PartyView struct {
	MaskedEmail string `json:"masked_email"`
	MaskedPhone string `json:"masked_phone"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

type ContactView struct {
	JobID          string     `json:"job_id"`
	Unlocked       bool       `json:"unlocked"`
	Buyer          PartyView  `json:"buyer"`
	Seller         PartyView  `json:"seller"`
	Conveyancer    PartyView  `json:"conveyancer"`
	UnlockedAt     *time.Time `json:"unlocked_at,omitempty"`
	UnlockedByRole string     `json:"unlocked_by_role,omitempty"`
	UnlockToken    string     `json:"unlock_token,omitempty"`
}

// Project always carries masked fields. Full details appear only with
// revealFull; audit metadata and the unlock token only with includeInternal.
func (p ContactPolicy) Project(jobID string, revealFull, includeInternal bool, unlockToken string) ContactView {
	view := ContactView{
		JobID:       jobID,
		Unlocked:    p.Unlocked,
		Buyer:       p.Buyer.view(revealFull),
		Seller:      p.Seller.view(revealFull),
		Conveyancer: p.Conveyancer.view(revealFull),
	}
	if includeInternal {
		view.UnlockedAt = p.UnlockedAt
		view.UnlockedByRole = p.UnlockedByRole
		view.UnlockToken = unlockToken
	}
	return view
}

func (c ContactParty) view(revealFull bool) PartyView {
	v := PartyView{MaskedEmail: c.MaskedEmail, MaskedPhone: c.MaskedPhone}
	if revealFull {
		v.Name = c.Full.Name
		v.Email = c.Full.Email
		v.Phone = c.Full.Phone
	}
	return v
}

func (p ContactPolicy) clone() ContactPolicy {
	if p.UnlockedAt != nil {
		stamp := *p.UnlockedAt
		p.UnlockedAt = &stamp
	}
	return p
}
