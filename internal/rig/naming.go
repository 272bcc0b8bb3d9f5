package rig

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var sidePairs = [][2]string{
	{".L", ".R"},
	{"_L", "_R"},
	{".l", ".r"},
	{"_l", "_r"},
}

var unanimatedTokens = []string{"ORG", "DEF", "MCH", "_master"}

// NormalizeName trims and NFC-normalizes a control name so visually identical
// names index to the same key.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// MirrorName swaps the side token of a control name: "hand.L" becomes
// "hand.R", "thigh_r.001" stays numbered as "thigh_l.001". Names without a
// side token are returned unchanged.
func MirrorName(name string) string {
	for _, pair := range sidePairs {
		if i := sideTokenIndex(name, pair[0]); i >= 0 {
			return name[:i] + pair[1] + name[i+len(pair[0]):]
		}
		if i := sideTokenIndex(name, pair[1]); i >= 0 {
			return name[:i] + pair[0] + name[i+len(pair[1]):]
		}
	}
	return name
}

// IsAnimatableBone reports whether a bone may be driven. Rig helper bones
// (ORG, DEF, MCH, *_master) and face bones (f_*) are excluded.
func IsAnimatableBone(name string) bool {
	if name == "" || strings.HasPrefix(name, "f_") {
		return false
	}
	for _, tok := range unanimatedTokens {
		if strings.Contains(name, tok) {
			return false
		}
	}
	return true
}

// sideTokenIndex returns the index of the last occurrence of tok that ends
// the name or is followed by a '.', or -1.
func sideTokenIndex(name, tok string) int {
	for i := strings.LastIndex(name, tok); i >= 0; i = strings.LastIndex(name[:i], tok) {
		end := i + len(tok)
		if end == len(name) || name[end] == '.' {
			return i
		}
	}
	return -1
}
