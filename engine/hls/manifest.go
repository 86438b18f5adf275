// Package hls is the HLS streaming engine: it resolves manifests with an m3u8
// decoder and hands the stream to a media element.
package hls

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hlsplay/hlsplay/constant"
	"github.com/hlsplay/hlsplay/engine"
	"github.com/mogiioin/hls-m3u8/m3u8"
	"github.com/samber/lo"
)

// ErrNoLevels is returned for a master playlist without playable variants.
var ErrNoLevels = errors.New("manifest has no playable levels")

// HeaderFunc returns the extra request headers for a URL, or nil.
type HeaderFunc func(rawURL string) map[string]string

// Manifest is the resolved structure of a source.
type Manifest struct {
	Source string `json:"source" jsonschema:"description=Source URL as given"`

	// Master is set when the source is a multivariant playlist.
	Master  bool                `json:"master" jsonschema:"description=Whether the source lists several levels"`
	Levels  []engine.Level      `json:"levels" jsonschema:"description=Playable levels in manifest order"`
	Level   int                 `json:"level" jsonschema:"description=Index of the level used for playback"`
	Details engine.LevelDetails `json:"details" jsonschema:"description=Details of the playback level"`
}

// Probe resolves source and the details of its first level without playing it.
func Probe(ctx context.Context, client *http.Client, source string, headers HeaderFunc) (*Manifest, error) {
	f := fetcher{client: client, headers: headers}

	levels, media, err := f.levels(ctx, source)
	if err != nil {
		return nil, err
	}

	master := media == nil
	if master {
		if media, err = f.media(ctx, levels[0].URI); err != nil {
			return nil, err
		}
	}

	return &Manifest{
		Source:  source,
		Master:  master,
		Levels:  levels,
		Level:   0,
		Details: detailsOf(media),
	}, nil
}

type fetcher struct {
	client  *http.Client
	headers HeaderFunc
}

func (f fetcher) fetch(ctx context.Context, rawURL string) (m3u8.Playlist, m3u8.ListType, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}

	req.Header.Set("User-Agent", constant.UserAgent)
	if f.headers != nil {
		for name, value := range f.headers(rawURL) {
			req.Header.Set(name, value)
		}
	}

	client := f.client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("get %s: %s", rawURL, resp.Status)
	}

	playlist, listType, err := m3u8.DecodeFrom(bufio.NewReader(resp.Body), false)
	if err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", rawURL, err)
	}

	return playlist, listType, nil
}

// levels resolves source into its levels. A media playlist source is its own
// single level and is returned as well, so it is not fetched twice.
func (f fetcher) levels(ctx context.Context, source string) ([]engine.Level, *m3u8.MediaPlaylist, error) {
	base, err := url.Parse(source)
	if err != nil {
		return nil, nil, fmt.Errorf("parse source: %w", err)
	}

	playlist, listType, err := f.fetch(ctx, source)
	if err != nil {
		return nil, nil, err
	}

	switch listType {
	case m3u8.MASTER:
		levels := levelsOf(playlist.(*m3u8.MasterPlaylist), base)
		if len(levels) == 0 {
			return nil, nil, ErrNoLevels
		}
		return levels, nil, nil
	case m3u8.MEDIA:
		return []engine.Level{{Index: 0, URI: source}}, playlist.(*m3u8.MediaPlaylist), nil
	default:
		return nil, nil, fmt.Errorf("decode %s: unknown playlist type", source)
	}
}

func (f fetcher) media(ctx context.Context, rawURL string) (*m3u8.MediaPlaylist, error) {
	playlist, listType, err := f.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if listType != m3u8.MEDIA {
		return nil, fmt.Errorf("level %s is not a media playlist", rawURL)
	}

	return playlist.(*m3u8.MediaPlaylist), nil
}

func levelsOf(master *m3u8.MasterPlaylist, base *url.URL) []engine.Level {
	variants := lo.Filter(master.Variants, func(v *m3u8.Variant, _ int) bool {
		return v != nil && v.URI != "" && !v.Iframe
	})

	return lo.Map(variants, func(v *m3u8.Variant, i int) engine.Level {
		return engine.Level{
			Index:     i,
			URI:       resolveURI(base, v.URI),
			Bandwidth: v.Bandwidth,
			Codecs:    v.Codecs,
			Name:      v.Name,
		}
	})
}

func resolveURI(base *url.URL, uri string) string {
	ref, err := url.Parse(uri)
	if err != nil {
		return uri
	}

	return base.ResolveReference(ref).String()
}

// detailsOf sums the segment durations. The playlist's own TotalDuration is only
// an estimate from the target duration, so it is used when no segment reports one.
func detailsOf(media *m3u8.MediaPlaylist) engine.LevelDetails {
	var (
		total    float64
		segments int
	)

	for _, segment := range media.Segments {
		if segment == nil {
			continue
		}
		total += segment.Duration
		segments++
	}

	if total == 0 && segments > 0 {
		total = media.TotalDuration()
	}

	return engine.LevelDetails{
		TotalDuration:  total,
		Live:           !media.Closed && media.MediaType != m3u8.VOD,
		Segments:       segments,
		TargetDuration: float64(media.TargetDuration),
	}
}
