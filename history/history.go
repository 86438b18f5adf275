// Package history keeps the sources that have been played.
package history

import (
	"time"

	"github.com/hlsplay/hlsplay/filesystem"
	"github.com/hlsplay/hlsplay/where"
	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"golang.org/x/exp/slices"
)

var cacher = gache.New[map[string]*Entry](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns every entry keyed by source.
func Get() (map[string]*Entry, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Entry), nil
	}
	return cached, nil
}

// Sorted returns the entries, most recently played first.
func Sorted() ([]*Entry, error) {
	saved, err := Get()
	if err != nil {
		return nil, err
	}

	entries := lo.Values(saved)
	slices.SortFunc(entries, func(a, b *Entry) int {
		return b.PlayedAt.Compare(a.PlayedAt)
	})

	return entries, nil
}

// Latest returns the most recently played entry, if any.
func Latest() (mo.Option[*Entry], error) {
	entries, err := Sorted()
	if err != nil {
		return mo.None[*Entry](), err
	}

	if len(entries) == 0 {
		return mo.None[*Entry](), nil
	}

	return mo.Some(entries[0]), nil
}

// Save records source with its duration and the position reached.
// A zero duration keeps the previously known one.
func Save(source string, duration, position float64, live bool) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	entry, ok := saved[source]
	if !ok {
		entry = &Entry{Source: source}
		saved[source] = entry
	}

	if duration > 0 {
		entry.Duration = duration
	}
	entry.Position = max(position, 0)
	if entry.Duration > 0 {
		entry.Position = min(entry.Position, entry.Duration)
	}
	entry.Live = live
	entry.PlayedAt = time.Now()

	return cacher.Set(saved)
}

// Remove deletes the entry for source.
func Remove(source string) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, source)
	return cacher.Set(saved)
}

// Clear deletes every entry.
func Clear() error {
	return cacher.Set(make(map[string]*Entry))
}
