// Package boundary picks transfer lengths around packet size boundaries.
//
// Firmware bugs cluster at lengths that are exact multiples of a packet or
// FIFO size and at the lengths one either side of them, so each generator
// returns zero plus those neighbours, in ascending order without duplicates.
package boundary

import (
	"golang.org/x/exp/slices"
)

// Straddle returns 0 and k*granule-1, k*granule, k*granule+1 for k in
// 1..multiples.
func Straddle(granule, multiples int) []int {
	res := []int{0}
	for k := 1; k <= multiples; k++ {
		m := k * granule
		res = append(res, m-1, m, m+1)
	}
	return normalize(res)
}

// Bulk returns the bulk loopback lengths for an endpoint: the smallest
// transfers, half a packet and the neighbourhoods of one and two packets.
func Bulk(maxPacket int) []int {
	res := []int{0, 1, 2, maxPacket / 2}
	res = append(res, Straddle(maxPacket, 2)...)
	return normalize(res)
}

// Interrupt returns the interrupt loopback lengths. Interrupt transfers never
// exceed one packet here.
func Interrupt(maxPacket int) []int {
	return normalize([]int{0, 1, 2, maxPacket / 2, maxPacket})
}

// NeedsZLP reports whether a bulk transfer of n bytes must be followed by a
// zero-length packet so the receiver sees it as complete.
func NeedsZLP(n, maxPacket int) bool {
	if maxPacket <= 0 {
		return false
	}
	return n%maxPacket == 0
}

func normalize(l []int) []int {
	res := make([]int, 0, len(l))
	for _, v := range l {
		if v < 0 {
			continue
		}
		res = append(res, v)
	}
	slices.Sort(res)
	return slices.Compact(res)
}
