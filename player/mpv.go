package player

import (
	"context"
	"crypto/rand"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hlsplay/hlsplay/constant"
	"github.com/hlsplay/hlsplay/log"
	"github.com/hlsplay/hlsplay/where"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

const socketWaitDelay = 100 * time.Millisecond

// Options configures the mpv process.
type Options struct {
	// Binary is the mpv executable, looked up in PATH when not absolute.
	Binary string

	// Args are appended to the fixed audio-only argument list.
	Args []string

	// Volume and Muted are the initial audio settings.
	Volume float64
	Muted  bool

	// TimeUpdatesPerSecond caps how often TimeUpdated is emitted. Zero means unthrottled.
	TimeUpdatesPerSecond int
}

// MPV is an Element backed by an idle mpv process controlled through JSON IPC.
// The process is spawned on the first Ready call and reused by every session.
type MPV struct {
	binding

	opts       Options
	socketPath string

	startMu  sync.Mutex
	cmd      *exec.Cmd
	exited   chan struct{}
	listener *eventListener

	ipcMu sync.Mutex

	// loadMu keeps a Load and a Detach from interleaving their commands
	loadMu sync.Mutex

	handlerMu sync.RWMutex
	handler   func(Event)

	audioMu sync.Mutex
	volume  float64
	muted   bool
}

// NewMPV creates an element. No process is started until Ready.
func NewMPV(opts Options) *MPV {
	if opts.Binary == "" {
		opts.Binary = "mpv"
	}

	return &MPV{
		opts:   opts,
		volume: lo.Clamp(opts.Volume, 0, 1),
		muted:  opts.Muted,
	}
}

func (m *MPV) Attach(owner string) error {
	if owner == "" {
		return fmt.Errorf("attach: empty owner")
	}

	return m.claim(owner)
}

func (m *MPV) Detach(owner string) {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()

	if !m.release(owner) {
		return
	}

	if !m.running() {
		return
	}

	// pausing first makes mpv report Paused like a reset media element does
	if _, err := m.sendCommand("set_property", "pause", true); err != nil {
		log.Warnf("mpv pause on detach: %v", err)
	}

	if _, err := m.sendCommand("stop"); err != nil {
		log.Warnf("mpv stop: %v", err)
	}
}

// Ready starts mpv if needed and waits for its IPC socket.
func (m *MPV) Ready(ctx context.Context) error {
	m.startMu.Lock()
	defer m.startMu.Unlock()

	if m.runningLocked() {
		return nil
	}

	if err := m.start(); err != nil {
		return err
	}

	if err := m.waitForSocket(ctx); err != nil {
		m.killLocked()
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	listener, err := newEventListener(m.socketPath, m.opts.TimeUpdatesPerSecond, m.emit)
	if err != nil {
		m.killLocked()
		return err
	}
	m.listener = listener

	return nil
}

func (m *MPV) start() error {
	if m.socketPath == "" {
		randomBytes := make([]byte, 4)
		if _, err := rand.Read(randomBytes); err != nil {
			return fmt.Errorf("generate socket name: %w", err)
		}
		m.socketPath = filepath.Join(where.Temp(), fmt.Sprintf("%s-%x.sock", constant.App, randomBytes))
	}

	m.audioMu.Lock()
	volume, muted := m.volume, m.muted
	m.audioMu.Unlock()

	args := []string{
		"--idle=yes",
		"--no-video",
		"--no-terminal",
		"--really-quiet",
		"--keep-open=yes",
		"--pause=yes",
		fmt.Sprintf("--input-ipc-server=%s", m.socketPath),
		fmt.Sprintf("--volume=%d", mpvVolume(volume)),
		fmt.Sprintf("--mute=%s", lo.Ternary(muted, "yes", "no")),
	}
	args = append(args, m.opts.Args...)

	cmd := exec.Command(m.opts.Binary, args...)
	cmd.SysProcAttr = sysProcAttr()
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	m.cmd = cmd
	m.exited = make(chan struct{})
	go func(exited chan struct{}) {
		_ = cmd.Wait()
		close(exited)
	}(m.exited)

	log.Infof("mpv started with pid %d", cmd.Process.Pid)
	return nil
}

func (m *MPV) waitForSocket(ctx context.Context) error {
	ticker := time.NewTicker(socketWaitDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		case <-ticker.C:
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			_ = conn.Close()
			return nil
		}
	}
}

func (m *MPV) running() bool {
	m.startMu.Lock()
	defer m.startMu.Unlock()
	return m.runningLocked()
}

func (m *MPV) runningLocked() bool {
	if m.exited == nil || m.listener == nil {
		return false
	}

	select {
	case <-m.exited:
		return false
	default:
		return true
	}
}

func (m *MPV) killLocked() {
	if m.listener != nil {
		m.listener.Stop()
		m.listener = nil
	}

	if m.exited == nil {
		return
	}

	select {
	case <-m.exited:
	default:
		log.Warnf("killing mpv")
		_ = killProcess(m.cmd)
		<-m.exited
	}
}

// Load replaces whatever is playing with url, paused at the start.
// A Detach by owner waits for the load to finish and then stops it.
func (m *MPV) Load(owner, url string, headers map[string]string) error {
	m.loadMu.Lock()
	defer m.loadMu.Unlock()

	if !m.holds(owner) {
		return ErrDetached
	}

	if !m.running() {
		return ErrNotReady
	}

	target, err := sanitizeMediaTarget(url)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	if _, err := m.sendCommand("set_property", "http-header-fields", headerFields(headers)); err != nil {
		return fmt.Errorf("set headers: %w", err)
	}

	if _, err := m.sendCommand("set_property", "pause", true); err != nil {
		return fmt.Errorf("pause before load: %w", err)
	}

	if _, err := m.sendCommand("loadfile", target, "replace"); err != nil {
		return fmt.Errorf("loadfile: %w", err)
	}

	return nil
}

func (m *MPV) Play() error {
	return m.set("pause", false)
}

func (m *MPV) Pause() error {
	return m.set("pause", true)
}

func (m *MPV) SetCurrentTime(seconds float64) error {
	if !m.running() {
		return ErrNotReady
	}

	_, err := m.sendCommand("seek", seconds, "absolute")
	return err
}

func (m *MPV) SetVolume(volume float64) error {
	volume = lo.Clamp(volume, 0, 1)

	m.audioMu.Lock()
	m.volume = volume
	m.audioMu.Unlock()

	if !m.running() {
		// applied on start
		return nil
	}

	return m.set("volume", mpvVolume(volume))
}

func (m *MPV) SetMuted(muted bool) error {
	m.audioMu.Lock()
	m.muted = muted
	m.audioMu.Unlock()

	if !m.running() {
		return nil
	}

	return m.set("mute", muted)
}

func (m *MPV) OnEvent(handler func(Event)) {
	m.handlerMu.Lock()
	defer m.handlerMu.Unlock()
	m.handler = handler
}

func (m *MPV) emit(event Event) {
	m.handlerMu.RLock()
	handler := m.handler
	m.handlerMu.RUnlock()

	if handler != nil {
		handler(event)
	}
}

func (m *MPV) set(property string, value any) error {
	if !m.running() {
		return ErrNotReady
	}

	_, err := m.sendCommand("set_property", property, value)
	return err
}

// Close quits mpv and removes its socket.
func (m *MPV) Close() error {
	m.startMu.Lock()
	defer m.startMu.Unlock()

	if m.exited == nil {
		return nil
	}

	if m.listener != nil {
		m.listener.Stop()
		m.listener = nil
	}

	_, _ = m.sendCommand("quit")

	select {
	case <-m.exited:
	case <-time.After(3 * time.Second):
		_ = killProcess(m.cmd)
	}

	_ = os.Remove(m.socketPath)
	return nil
}

func mpvVolume(volume float64) int {
	return int(lo.Clamp(volume, 0, 1)*100 + 0.5)
}

// headerFields renders headers in mpv's "Name: value" list form, sorted for stable output.
func headerFields(headers map[string]string) []string {
	fields := make([]string, 0, len(headers))
	for name, value := range headers {
		fields = append(fields, fmt.Sprintf("%s: %s", name, strings.ReplaceAll(value, ",", "%2C")))
	}
	slices.Sort(fields)
	return fields
}

// sanitizeMediaTarget keeps a source from being read by mpv as a flag.
func sanitizeMediaTarget(link string) (string, error) {
	if link == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(link, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	if strings.HasPrefix(link, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	return link, nil
}
