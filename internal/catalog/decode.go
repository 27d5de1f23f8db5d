package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// Wire shapes. Every leaf is decoded loosely and coerced by the helpers
// below, so type drift on a single field never fails a whole page.

type rawPage struct {
	List json.RawMessage `json:"list"`
	Data json.RawMessage `json:"data"`
}

type rawNames struct {
	Ru          any `json:"ru"`
	En          any `json:"en"`
	Alternative any `json:"alternative"`
}

type rawPosterURL struct {
	URL any `json:"url"`
}

type rawPosters struct {
	Small    *rawPosterURL `json:"small"`
	Medium   *rawPosterURL `json:"medium"`
	Original *rawPosterURL `json:"original"`
}

type rawRelease struct {
	ID      any `json:"id"`
	Code    any `json:"code"`
	Ordinal any `json:"ordinal"`
}

type rawFranchise struct {
	Franchise *struct {
		ID   any `json:"id"`
		Name any `json:"name"`
	} `json:"franchise"`
	Releases []json.RawMessage `json:"releases"`
}

type rawSkips struct {
	Opening []any `json:"opening"`
	Ending  []any `json:"ending"`
}

type rawHLS struct {
	FHD any `json:"fhd"`
	HD  any `json:"hd"`
	SD  any `json:"sd"`
}

type rawEpisode struct {
	Episode any       `json:"episode"`
	Name    any       `json:"name"`
	Preview any       `json:"preview"`
	Skips   *rawSkips `json:"skips"`
	HLS     *rawHLS   `json:"hls"`
}

type rawPlayer struct {
	Host     any `json:"host"`
	Episodes *struct {
		First any `json:"first"`
		Last  any `json:"last"`
	} `json:"episodes"`
	List json.RawMessage `json:"list"`
}

type rawTitle struct {
	ID          any               `json:"id"`
	Code        any               `json:"code"`
	Names       *rawNames         `json:"names"`
	Description any               `json:"description"`
	Posters     *rawPosters       `json:"posters"`
	Franchises  []json.RawMessage `json:"franchises"`
	Player      *rawPlayer        `json:"player"`
	Data        json.RawMessage   `json:"data"`
}

// decoder turns wire payloads into Titles. Relative media paths are
// resolved against mediaBase.
type decoder struct {
	mediaBase string
}

// decodePage returns the decoded titles and the number of raw items on the
// page. Items that fail to decode are dropped but still counted, so paging
// decisions follow what the server sent.
func (d decoder) decodePage(body []byte) ([]Title, int, error) {
	var page rawPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	items := page.List
	if isEmptyJSON(items) {
		items = page.Data
	}
	if isEmptyJSON(items) {
		return nil, 0, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(items, &raws); err != nil {
		return nil, 0, fmt.Errorf("%w: list is not an array: %v", ErrDecode, err)
	}

	titles := make([]Title, 0, len(raws))
	for _, raw := range raws {
		t, ok := d.decodeTitle(raw)
		if !ok {
			continue
		}
		titles = append(titles, t)
	}
	return titles, len(raws), nil
}

// decodeSingle decodes a single title object, optionally wrapped in "data".
func (d decoder) decodeSingle(body []byte) (Title, error) {
	var rt rawTitle
	if err := json.Unmarshal(body, &rt); err != nil {
		return Title{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if _, ok := toInt(rt.ID); !ok && !isEmptyJSON(rt.Data) {
		body = rt.Data
	}
	t, ok := d.decodeTitle(body)
	if !ok {
		return Title{}, fmt.Errorf("%w: title without id", ErrDecode)
	}
	return t, nil
}

func (d decoder) decodeTitle(raw json.RawMessage) (Title, bool) {
	var rt rawTitle
	if err := json.Unmarshal(raw, &rt); err != nil {
		return Title{}, false
	}
	id, ok := toInt(rt.ID)
	if !ok {
		return Title{}, false
	}

	t := Title{
		ID:          id,
		Code:        toString(rt.Code),
		Description: toString(rt.Description),
	}
	if rt.Names != nil {
		t.Names = Names{
			Ru:          toString(rt.Names.Ru),
			En:          toString(rt.Names.En),
			Alternative: toString(rt.Names.Alternative),
		}
	}
	if rt.Posters != nil {
		t.Poster = d.mediaURL(firstPoster(rt.Posters))
	}
	for _, rf := range rt.Franchises {
		if f, ok := decodeFranchise(rf); ok {
			t.Franchises = append(t.Franchises, f)
		}
	}
	if rt.Player != nil {
		t.Player = d.decodePlayer(rt.Player)
	}
	return t, true
}

func firstPoster(p *rawPosters) string {
	for _, u := range []*rawPosterURL{p.Original, p.Medium, p.Small} {
		if u == nil {
			continue
		}
		if s := toString(u.URL); s != "" {
			return s
		}
	}
	return ""
}

func decodeFranchise(raw json.RawMessage) (Franchise, bool) {
	var rf rawFranchise
	if err := json.Unmarshal(raw, &rf); err != nil {
		return Franchise{}, false
	}
	var f Franchise
	if rf.Franchise != nil {
		f.ID = toString(rf.Franchise.ID)
		f.Name = toString(rf.Franchise.Name)
	}
	for _, rr := range rf.Releases {
		var r rawRelease
		if err := json.Unmarshal(rr, &r); err != nil {
			continue
		}
		id, ok := toInt(r.ID)
		if !ok {
			continue
		}
		ordinal, _ := toInt(r.Ordinal)
		f.Releases = append(f.Releases, Release{ID: id, Code: toString(r.Code), Ordinal: ordinal})
	}
	return f, true
}

func (d decoder) decodePlayer(rp *rawPlayer) *Player {
	p := &Player{
		Host:     toString(rp.Host),
		Episodes: map[int]Episode{},
	}
	if rp.Episodes != nil {
		if v, ok := toInt(rp.Episodes.First); ok {
			p.FirstEpisode = &v
		}
		if v, ok := toInt(rp.Episodes.Last); ok {
			p.LastEpisode = &v
		}
	}

	list := bytes.TrimSpace(rp.List)
	switch {
	case len(list) == 0:
	case list[0] == '{':
		var byKey map[string]json.RawMessage
		if err := json.Unmarshal(list, &byKey); err != nil {
			break
		}
		keys := make([]string, 0, len(byKey))
		for k := range byKey {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			n, ok := toInt(k)
			if !ok {
				continue
			}
			if ep, ok := d.decodeEpisode(byKey[k], n); ok {
				p.Episodes[ep.Number] = ep
			}
		}
	case list[0] == '[':
		var items []json.RawMessage
		if err := json.Unmarshal(list, &items); err != nil {
			break
		}
		for i, item := range items {
			if ep, ok := d.decodeEpisode(item, i+1); ok {
				p.Episodes[ep.Number] = ep
			}
		}
	}
	return p
}

// decodeEpisode prefers the episode's own number field and falls back to n.
func (d decoder) decodeEpisode(raw json.RawMessage, n int) (Episode, bool) {
	var re rawEpisode
	if err := json.Unmarshal(raw, &re); err != nil {
		return Episode{}, false
	}
	if v, ok := toInt(re.Episode); ok && v > 0 {
		n = v
	}
	if n < 1 {
		return Episode{}, false
	}

	ep := Episode{
		Number:   n,
		Name:     strings.TrimSpace(toString(re.Name)),
		Preview:  d.mediaURL(toString(re.Preview)),
		Variants: map[Quality]string{},
	}
	if re.Skips != nil {
		ep.Opening = toIntervals(re.Skips.Opening)
		ep.Ending = toIntervals(re.Skips.Ending)
	}
	if re.HLS != nil {
		for q, v := range map[Quality]any{QualityFHD: re.HLS.FHD, QualityHD: re.HLS.HD, QualitySD: re.HLS.SD} {
			if s := toString(v); s != "" {
				ep.Variants[q] = s
			}
		}
	}
	return ep, true
}

// mediaURL resolves a relative media path against the media host.
func (d decoder) mediaURL(path string) string {
	switch {
	case path == "":
		return ""
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return path
	case strings.HasPrefix(path, "//"):
		return "https:" + path
	case strings.HasPrefix(path, "/"):
		return strings.TrimRight(d.mediaBase, "/") + path
	default:
		return strings.TrimRight(d.mediaBase, "/") + "/" + path
	}
}

// toInt coerces a JSON scalar to an int, truncating toward zero.
// Empty strings, booleans and non-finite values are treated as absent.
func toInt(v any) (int, bool) {
	switch x := v.(type) {
	case nil, bool:
		return 0, false
	case string:
		if strings.TrimSpace(x) == "" {
			return 0, false
		}
		v = strings.TrimSpace(x)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(math.Trunc(f)), true
}

// toString coerces scalars to a trimmed string; containers become "".
func toString(v any) string {
	switch v.(type) {
	case nil, map[string]any, []any:
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// toIntervals keeps a [start, end] pair only if every element is numeric.
func toIntervals(vs []any) []int {
	if len(vs) == 0 {
		return nil
	}
	out := make([]int, 0, len(vs))
	for _, v := range vs {
		n, ok := toInt(v)
		if !ok {
			return nil
		}
		out = append(out, n)
	}
	return out
}

func isEmptyJSON(raw json.RawMessage) bool {
	s := bytes.TrimSpace(raw)
	return len(s) == 0 || bytes.Equal(s, []byte("null"))
}

// ParseID coerces a loosely typed JSON id (number or numeric string) to a
// positive title id.
func ParseID(v any) (int, bool) {
	id, ok := toInt(v)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}
