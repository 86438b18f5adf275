package hls

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hlsplay/hlsplay/engine"
	"github.com/hlsplay/hlsplay/log"
	"github.com/hlsplay/hlsplay/player"
)

// minRefresh bounds how often a live level is refetched.
const minRefresh = time.Second

// Options are shared by every engine built from the same factory.
type Options struct {
	Client  *http.Client
	Headers HeaderFunc
}

// Engine is a single-use HLS engine instance.
type Engine struct {
	fetcher fetcher
	owner   string

	ctx    context.Context
	cancel context.CancelFunc

	element player.Element

	handlerMu sync.RWMutex
	handler   func(engine.Event)

	destroyed atomic.Bool
	once      sync.Once
}

// New creates an engine. It does nothing until AttachMedia.
func New(opts Options) *Engine {
	ctx, cancel := context.WithCancel(context.Background())

	return &Engine{
		fetcher: fetcher{client: opts.Client, headers: opts.Headers},
		owner:   uuid.NewString(),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Factory adapts New to engine.Factory.
func Factory(opts Options) engine.Factory {
	return func() engine.Engine {
		return New(opts)
	}
}

func (e *Engine) On(handler func(engine.Event)) {
	e.handlerMu.Lock()
	defer e.handlerMu.Unlock()
	e.handler = handler
}

// AttachMedia claims element right away, so a second engine is refused while this
// one holds it, then waits for the element in the background.
func (e *Engine) AttachMedia(element player.Element) {
	if err := element.Attach(e.owner); err != nil {
		go e.fail(engine.StageAttach, err)
		return
	}
	e.element = element

	go func() {
		if err := element.Ready(e.ctx); err != nil {
			e.fail(engine.StageAttach, err)
			return
		}

		e.emit(engine.MediaAttached{})
	}()
}

func (e *Engine) LoadSource(source string) {
	if e.element == nil {
		go e.fail(engine.StageManifest, player.ErrDetached)
		return
	}

	go e.load(source)
}

func (e *Engine) load(source string) {
	levels, media, err := e.fetcher.levels(e.ctx, source)
	if err != nil {
		e.fail(engine.StageManifest, err)
		return
	}

	var headers map[string]string
	if e.fetcher.headers != nil {
		headers = e.fetcher.headers(source)
	}

	if err := e.element.Load(e.owner, source, headers); err != nil {
		e.fail(engine.StageManifest, err)
		return
	}

	e.emit(engine.ManifestParsed{Levels: levels})

	level := levels[0]
	if media == nil {
		if media, err = e.fetcher.media(e.ctx, level.URI); err != nil {
			e.fail(engine.StageLevel, err)
			return
		}
	}

	details := detailsOf(media)
	e.emit(engine.LevelLoaded{Level: level.Index, Details: details})

	for details.Live {
		refresh := max(time.Duration(details.TargetDuration*float64(time.Second)), minRefresh)

		select {
		case <-e.ctx.Done():
			return
		case <-time.After(refresh):
		}

		if media, err = e.fetcher.media(e.ctx, level.URI); err != nil {
			if e.ctx.Err() == nil {
				log.Warnf("live refresh of %s: %v", level.URI, err)
			}
			continue
		}

		details = detailsOf(media)
		e.emit(engine.LevelLoaded{Level: level.Index, Details: details})
	}
}

func (e *Engine) fail(stage engine.Stage, err error) {
	if e.ctx.Err() != nil {
		return
	}

	log.WithFields(log.Fields{"stage": stage.String(), "owner": e.owner}).Warnf("engine error: %v", err)
	e.emit(engine.Error{Stage: stage, Err: err})
}

func (e *Engine) emit(event engine.Event) {
	if e.destroyed.Load() {
		return
	}

	e.handlerMu.RLock()
	handler := e.handler
	e.handlerMu.RUnlock()

	if handler != nil {
		handler(event)
	}
}

// Destroy cancels fetches and releases the element.
func (e *Engine) Destroy() {
	e.once.Do(func() {
		e.destroyed.Store(true)
		e.cancel()

		if e.element != nil {
			e.element.Detach(e.owner)
		}
	})
}
