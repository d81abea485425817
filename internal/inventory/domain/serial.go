package domain

import (
	"fmt"
	"strconv"
)

// ParseSerial parses a zero-padded ticket serial such as "042".
func ParseSerial(serial string) (int, error) {
	if serial == "" || len(serial) > 9 {
		return 0, ErrInvalidSerial
	}
	for _, r := range serial {
		if r < '0' || r > '9' {
			return 0, ErrInvalidSerial
		}
	}
	n, err := strconv.Atoi(serial)
	if err != nil {
		return 0, ErrInvalidSerial
	}
	return n, nil
}

// FormatSerial renders n zero-padded to width digits.
func FormatSerial(n, width int) string {
	return fmt.Sprintf("%0*d", width, n)
}

// LastSerial returns the serial of the last ticket of a pack, keeping the width of the
// opening serial: a 300 ticket pack opening at "000" ends at "299".
func LastSerial(opening string, ticketsPerPack int) (string, error) {
	start, err := ParseSerial(opening)
	if err != nil {
		return "", err
	}
	return FormatSerial(start+ticketsPerPack-1, len(opening)), nil
}

// TicketsSold counts tickets between two serials. The closing serial is the next ticket to
// sell, unless soldOut is set, in which case it names the last ticket sold and counts too.
func TicketsSold(from, closing string, soldOut bool) (int, error) {
	start, err := ParseSerial(from)
	if err != nil {
		return 0, err
	}
	end, err := ParseSerial(closing)
	if err != nil {
		return 0, err
	}
	if end < start {
		return 0, ErrInvalidSerial
	}

	sold := end - start
	if soldOut {
		sold++
	}
	return sold, nil
}
