package domain

import (
	"regexp"
	"strings"
)

const (
	FlagContactCoordinates = "contact_coordinates"
	FlagOffPlatformHint    = "off_platform_hint"
)

const minPhoneDigits = 8

var (
	emailPattern    = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	auMobilePattern = regexp.MustCompile(`(?:\+?61[\s-]?|0)4\d{2}[\s-]?\d{3}[\s-]?\d{3}`)
	auLandPattern   = regexp.MustCompile(`(?:\+?61[\s-]?|0)[2378][\s-]?\d{4}[\s-]?\d{4}`)
	phoneRunPattern = regexp.MustCompile(`\+?\d[\d\s().\-]{6,}\d`)
	// Calendar dates such as 2024-03-01 or 01/03/2024 are not phone numbers.
	datePattern     = regexp.MustCompile(`\b(?:\d{4}[-./]\d{1,2}[-./]\d{1,2}|\d{1,2}[-./]\d{1,2}[-./]\d{4})\b`)
	offPlatform     = regexp.MustCompile(`(?i)\b(?:whatsapp|signal|telegram|zoom|meet\s+link|call\s+me|email\s+me)\b`)
)

// Findings are the independent detector results for one message body.
type Findings struct {
	ContactCoordinates bool
	OffPlatformHint    bool
}

// Scan runs both detectors over body.
func Scan(body string) Findings {
	return Findings{
		ContactCoordinates: hasContactCoordinates(body),
		OffPlatformHint:    offPlatform.MatchString(body),
	}
}

func hasContactCoordinates(body string) bool {
	if emailPattern.MatchString(body) || auMobilePattern.MatchString(body) || auLandPattern.MatchString(body) {
		return true
	}
	undated := datePattern.ReplaceAllString(body, " ")
	for _, run := range phoneRunPattern.FindAllString(undated, -1) {
		if countDigits(run) >= minPhoneDigits {
			return true
		}
	}
	return false
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// Flags turns findings into compliance flags for messageID. Coordinates are
// only flagged while contact details are still locked.
func (f Findings) Flags(messageID string, unlocked bool) []string {
	var flags []string
	if f.ContactCoordinates && !unlocked {
		flags = append(flags, FlagContactCoordinates+":"+messageID)
	}
	if f.OffPlatformHint {
		flags = append(flags, FlagOffPlatformHint+":"+messageID)
	}
	return flags
}

// FlagKind returns the prefix of a flag such as "off_platform_hint:msg_1".
func FlagKind(flag string) string {
	kind, _, _ := strings.Cut(flag, ":")
	return kind
}
