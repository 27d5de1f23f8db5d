package generator

import (
	"strings"

	"github.com/vmunix/anistrm/internal/catalog"
)

// preferenceChains maps a configured resolution to the variant fallback order.
var preferenceChains = map[string][]catalog.Quality{
	"1080": {catalog.QualityFHD, catalog.QualityHD, catalog.QualitySD},
	"720":  {catalog.QualityHD, catalog.QualityFHD, catalog.QualitySD},
	"480":  {catalog.QualitySD, catalog.QualityHD, catalog.QualityFHD},
}

// defaultChain is used for any unrecognized preference.
var defaultChain = []catalog.Quality{catalog.QualityHD, catalog.QualitySD, catalog.QualityFHD}

// ChooseVariant picks the first non-empty variant along the fallback chain of pref.
func ChooseVariant(variants map[catalog.Quality]string, pref string) (string, bool) {
	chain, ok := preferenceChains[strings.TrimSuffix(strings.TrimSpace(pref), "p")]
	if !ok {
		chain = defaultChain
	}
	for _, q := range chain {
		if link := variants[q]; link != "" {
			return link, true
		}
	}
	return "", false
}

// StreamURL qualifies a variant path with the player host. Absolute links are
// kept as-is; a relative link without a host is unusable.
func StreamURL(host, link string) (string, bool) {
	switch {
	case link == "":
		return "", false
	case strings.HasPrefix(link, "http://"), strings.HasPrefix(link, "https://"):
		return link, true
	case host == "":
		return "", false
	}
	host = strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(host, "https://"), "http://"), "/")
	if !strings.HasPrefix(link, "/") {
		link = "/" + link
	}
	return "https://" + host + link, true
}
