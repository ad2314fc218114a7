package service

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/iliyamo/apparte-kost/internal/model"
)

// averageRating is the arithmetic mean of ratings, 0 when there are none.
func averageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings))
}

// availableRooms is capacity minus active bookings.  It may go negative
// when capacity is lowered below current occupancy.
func availableRooms(capacity, active int) int { return capacity - active }

// roomSummary counts the active entries of bookings against capacity.
func roomSummary(capacity int, bookings []model.BookingWithUser) model.RoomSummary {
	room := model.RoomSummary{Total: capacity, Available: capacity}
	for _, b := range bookings {
		if b.IsActive {
			room.Active++
			room.Available--
		}
	}
	return room
}

const mapsSearchURL = "https://www.google.com/maps/search/?api=1&query="

// contactLinks derives the map and WhatsApp links shown on a listing page.
func contactLinks(location, phone string) model.ContactLinks {
	links := model.ContactLinks{Maps: mapsSearchURL + url.QueryEscape(location)}
	if n := whatsappNumber(phone); n != "" {
		links.WhatsApp = "https://wa.me/" + n
	}
	return links
}

// whatsappNumber keeps the digits of phone and rewrites a domestic leading
// zero into the 62 country code.
func whatsappNumber(phone string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
	if strings.HasPrefix(digits, "0") {
		digits = "62" + digits[1:]
	}
	return digits
}

// distinct returns values without repeats, in first-seen order.
func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := []string{}
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
