package textnorm

import (
	"regexp"
	"strings"
)

// parentheticalCode matches set-code annotations such as "(SSH)" or "(SV01)".
var parentheticalCode = regexp.MustCompile(`\s*\([A-Z0-9]+\)\s*`)

// trailingNumber matches a trailing card number: "#028", "028/210", or a bare
// trailing number.
var trailingNumber = regexp.MustCompile(`\s*#?\d+(?:/\d+)?\s*$`)

// eraNames lists known era and set-name substrings that vision services
// frequently append to a card's subject name. The list is open: extend it as
// new false positives show up in identification output.
var eraNames = []string{
	"Scarlet & Violet",
	"Sword & Shield",
	"Sun & Moon",
	"Black & White",
	"HeartGold & SoulSilver",
	"Diamond & Pearl",
	"EX Ruby & Sapphire",
	"Base Set",
	"Neo Genesis",
	"Neo Discovery",
	"Neo Revelation",
	"Neo Destiny",
	"Stellar Crown",
	"Evolving Skies",
	"Obsidian Flames",
	"Paldea Evolved",
	"Crown Zenith",
	"Silver Tempest",
	"Lost Origin",
	"Astral Radiance",
	"Brilliant Stars",
	"Fusion Strike",
	"Chilling Reign",
	"Battle Styles",
	"Vivid Voltage",
	"Darkness Ablaze",
	"Rebel Clash",
}

// CardName reduces a noisy identification string such as
// "Salazzle Sword & Shield (SSH) #028" to the bare subject name "Salazzle".
//
// Steps run unconditionally in order; later steps assume earlier cleanup:
//  1. parenthetical set codes collapse to a single space
//  2. a trailing card-number suffix is removed
//  3. everything after the first " - " separator is dropped
//  4. known era/set-name substrings are removed
//  5. surrounding whitespace is trimmed
func CardName(value string) string {
	value = parentheticalCode.ReplaceAllString(value, " ")
	value = trailingNumber.ReplaceAllString(value, "")
	if idx := strings.Index(value, " - "); idx >= 0 {
		value = value[:idx]
	}
	for _, era := range eraNames {
		if strings.Contains(value, era) {
			value = strings.ReplaceAll(value, era, "")
		}
	}
	return strings.TrimSpace(value)
}

// SignificantWords splits a set name into words longer than two characters,
// the unit used when matching partial set names.
func SignificantWords(setName string) []string {
	fields := strings.Fields(setName)
	words := make([]string, 0, len(fields))
	for _, field := range fields {
		if len(field) > 2 {
			words = append(words, field)
		}
	}
	return words
}
