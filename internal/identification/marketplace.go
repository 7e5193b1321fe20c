package identification

import (
	"regexp"
	"strings"
)

// productIDPattern matches the numeric product id inside a marketplace URL,
// e.g. "https://www.tcgplayer.com/product/562031/pokemon-...".
var productIDPattern = regexp.MustCompile(`/product/(\d+)`)

// marketplacePreference orders the link keys checked for a product id. Keys
// not listed are still tried afterwards, in map order.
var marketplacePreference = []string{"tcgplayer", "cardmarket"}

// MarketplaceProductID extracts a marketplace product id from a candidate's
// external links. Returns an empty string when no link carries a parseable id.
func MarketplaceProductID(links map[string]string) string {
	if len(links) == 0 {
		return ""
	}
	for _, key := range marketplacePreference {
		if id := parseProductID(links[key]); id != "" {
			return id
		}
	}
	for key, link := range links {
		if isPreferredMarketplace(key) {
			continue
		}
		if id := parseProductID(link); id != "" {
			return id
		}
	}
	return ""
}

func isPreferredMarketplace(key string) bool {
	for _, preferred := range marketplacePreference {
		if key == preferred {
			return true
		}
	}
	return false
}

func parseProductID(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	if match := productIDPattern.FindStringSubmatch(link); match != nil {
		return match[1]
	}
	return ""
}
