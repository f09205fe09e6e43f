// Package whatsapp builds wa.me chat deep links.
package whatsapp

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// DefaultCountryCode is prefixed to numbers that do not already carry it
const DefaultCountryCode = "91"

// InvalidPhoneMessage is what users are told when ErrInvalidPhone occurs
const InvalidPhoneMessage = "Invalid WhatsApp number format. Use full international number without '+'."

// ErrInvalidPhone is returned when a normalized number is not 10 to 15 digits
var ErrInvalidPhone = errors.New("invalid whatsapp number")

var (
	nonDigits   = regexp.MustCompile(`[^0-9]`)
	dialablePat = regexp.MustCompile(`^\d{10,15}$`)
)

// NormalizePhone strips everything but digits and prefixes countryCode when absent.
// It does not check the result.
func NormalizePhone(phone, countryCode string) string {
	digits := nonDigits.ReplaceAllString(phone, "")
	if digits == "" {
		return ""
	}
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	if !strings.HasPrefix(digits, countryCode) {
		digits = countryCode + digits
	}
	return digits
}

// Link normalizes phone, checks it and returns the chat URL pre-filled with message
func Link(phone, countryCode, message string) (string, error) {
	number := NormalizePhone(phone, countryCode)
	if !dialablePat.MatchString(number) {
		return "", ErrInvalidPhone
	}

	u := url.URL{
		Scheme:   "https",
		Host:     "wa.me",
		Path:     "/" + number,
		RawQuery: "text=" + strings.ReplaceAll(url.QueryEscape(message), "+", "%20"),
	}
	return u.String(), nil
}

// InquiryMessage is the greeting sent from a logged-in user to a vendor
func InquiryMessage(userName, userPhone, serviceName string) string {
	if userPhone == "" {
		userPhone = "no phone provided"
	}
	return "Hi! I'm " + userName + ", interested in your " + serviceName +
		" service on Vows & Wishes. My number is " + userPhone + "."
}
