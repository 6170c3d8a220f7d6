// Package phonelinks builds contact deep links for shop phone numbers.
package phonelinks

import "strings"

// WhatsApp returns a wa.me link using only the digits of phone.
func WhatsApp(phone string) string {
	digits := keep(phone, false)
	if digits == "" {
		return ""
	}
	return "https://wa.me/" + digits
}

// Tel returns a tel: link keeping digits and plus signs.
func Tel(phone string) string {
	cleaned := keep(phone, true)
	if cleaned == "" {
		return ""
	}
	return "tel:" + cleaned
}

// Digits strips everything but 0-9.
func Digits(phone string) string {
	return keep(phone, false)
}

func keep(phone string, plus bool) string {
	var b strings.Builder
	for _, r := range phone {
		if (r >= '0' && r <= '9') || (plus && r == '+') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
