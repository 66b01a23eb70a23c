package feed

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/umputun/feedkeeper/pkg/domain"
)

// ImageExtractor pulls an image candidate out of a raw entry, ok is false if the entry has none
type ImageExtractor func(raw domain.RawItem) (string, bool)

// imageTiers is the ordered list of in-document image sources, first hit wins.
// A live page scrape is the last tier and is run by the caller, it needs the network.
var imageTiers = []ImageExtractor{
	enclosureImage,
	mediaContentImage,
	mediaThumbnailImage,
	vendorImage,
	inlineImage,
}

// ResolveImage returns the best image URL found inside the entry itself, resolved
// against base. Candidates that do not resolve to an http(s) URL are skipped.
func ResolveImage(raw domain.RawItem, base *url.URL) string {
	for _, extract := range imageTiers {
		candidate, ok := extract(raw)
		if !ok {
			continue
		}
		if u, ok := absoluteURL(base, candidate); ok {
			return u
		}
	}
	return ""
}

func enclosureImage(raw domain.RawItem) (string, bool) {
	for _, enc := range raw.Enclosures {
		t := strings.ToLower(enc.Type)
		if enc.URL != "" && (t == "" || strings.HasPrefix(t, "image/")) {
			return enc.URL, true
		}
	}
	return "", false
}

func mediaContentImage(raw domain.RawItem) (string, bool) {
	return first(raw.MediaContent)
}

func mediaThumbnailImage(raw domain.RawItem) (string, bool) {
	return first(raw.MediaThumbnails)
}

func vendorImage(raw domain.RawItem) (string, bool) {
	return raw.VendorImage, raw.VendorImage != ""
}

// inlineImage looks for the first <img src> in the description, then in the content
func inlineImage(raw domain.RawItem) (string, bool) {
	for _, body := range []string{raw.Description, raw.Content} {
		if !strings.Contains(strings.ToLower(body), "<img") {
			continue
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
		if err != nil {
			continue
		}
		var src string
		doc.Find("img[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			v := strings.TrimSpace(s.AttrOr("src", ""))
			if v == "" || strings.HasPrefix(v, "data:") {
				return true
			}
			src = v
			return false
		})
		if src != "" {
			return src, true
		}
	}
	return "", false
}

func first(vals []string) (string, bool) {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v, true
		}
	}
	return "", false
}

// absoluteURL resolves ref against base and accepts only http(s) URLs with a host
func absoluteURL(base *url.URL, ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}
	return u.String(), true
}
