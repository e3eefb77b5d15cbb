package poi

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

const commons_filepath = "https://commons.wikimedia.org/wiki/Special:FilePath/%s"
const wikidata_entity = "https://www.wikidata.org/wiki/%s"

var re_wikidata = regexp.MustCompile(`^Q\d+$`)

// ImageListProperties are the list-valued properties scanned for images, in order.
var ImageListProperties = []string{
	"imageUrls",
	"images",
}

// ImageProperties are the single-valued properties scanned for images, after the lists.
var ImageProperties = []string{
	"image",
	"photo",
	"thumbnail",
	"cover_image",
	"wikimedia_commons",
}

// NormalizeImage turns the image references found in source data (protocol-relative URLs,
// Wikimedia Commons file names, Wikidata ids) into absolute URLs. The boolean is false
// when 'raw' is not usable.
func NormalizeImage(raw string) (string, bool) {

	v := strings.TrimSpace(raw)

	if v == "" {
		return "", false
	}

	if strings.HasPrefix(v, "//") {
		return "https:" + v, true
	}

	if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
		return v, true
	}

	lower := strings.ToLower(v)

	if strings.HasPrefix(lower, "file:") || strings.HasPrefix(lower, "wikimedia_commons:") {

		parts := strings.SplitN(v, ":", 2)
		fname := strings.ReplaceAll(strings.TrimSpace(parts[1]), " ", "_")

		if fname == "" {
			return "", false
		}

		return fmt.Sprintf(commons_filepath, fname), true
	}

	if re_wikidata.MatchString(v) {
		return fmt.Sprintf(wikidata_entity, v), true
	}

	if !strings.Contains(v, "/") && strings.Contains(v, ".") {
		return fmt.Sprintf(commons_filepath, strings.ReplaceAll(v, " ", "_")), true
	}

	return "", false
}

// CollectImages normalizes 'candidates' and returns at most 'max' distinct URLs in
// discovery order.
func CollectImages(candidates []string, max int) []string {

	urls := make([]string, 0)
	seen := make(map[string]bool)

	for _, c := range candidates {

		if len(urls) >= max {
			break
		}

		u, ok := NormalizeImage(c)

		if !ok || seen[u] {
			continue
		}

		seen[u] = true
		urls = append(urls, u)
	}

	return urls
}

// ImageCandidates gathers every image reference of a raw record using ImageListProperties
// and ImageProperties.
func ImageCandidates(r gjson.Result) []string {

	candidates := make([]string, 0)

	for _, path := range ImageListProperties {

		rsp := r.Get(path)

		if !rsp.IsArray() {
			continue
		}

		for _, v := range rsp.Array() {
			candidates = append(candidates, v.String())
		}
	}

	for _, path := range ImageProperties {

		rsp := r.Get(path)

		if rsp.Exists() && rsp.Type == gjson.String {
			candidates = append(candidates, rsp.String())
		}
	}

	return candidates
}
