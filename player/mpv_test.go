package player

import (
	"bufio"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeServer answers every IPC command with success after delay and records
// the command names in arrival order.
type fakeServer struct {
	listener net.Listener
	delay    time.Duration

	mu       sync.Mutex
	commands []string
}

func newFakeServer(socket string, delay time.Duration) (*fakeServer, error) {
	listener, err := net.Listen("unix", socket)
	if err != nil {
		return nil, err
	}

	s := &fakeServer{listener: listener, delay: delay}
	go s.serve()
	return s, nil
}

func (s *fakeServer) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *fakeServer) handle(conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var command ipcCommand
		if err := json.Unmarshal(scanner.Bytes(), &command); err != nil || len(command.Command) == 0 {
			continue
		}

		name, _ := command.Command[0].(string)
		if name != "observe_property" {
			time.Sleep(s.delay)
			s.mu.Lock()
			s.commands = append(s.commands, name)
			s.mu.Unlock()
		}

		reply, _ := json.Marshal(map[string]any{"request_id": command.RequestID, "error": "success"})
		_, _ = conn.Write(append(reply, '\n'))
	}
}

func (s *fakeServer) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...)
}

func (s *fakeServer) Close() error {
	return s.listener.Close()
}

// runningMPV returns an element wired to socket as if mpv had started.
func runningMPV(socket string) (*MPV, error) {
	m := NewMPV(Options{})
	m.socketPath = socket
	m.exited = make(chan struct{})

	listener, err := newEventListener(socket, 0, m.emit)
	if err != nil {
		return nil, err
	}
	m.listener = listener
	return m, nil
}

func TestLoadDetach(t *testing.T) {
	Convey("Given a running element owned by a session", t, func() {
		dir, err := os.MkdirTemp("", "hp")
		So(err, ShouldBeNil)
		defer os.RemoveAll(dir)

		socket := filepath.Join(dir, "mpv.sock")
		server, err := newFakeServer(socket, 5*time.Millisecond)
		So(err, ShouldBeNil)
		defer server.Close()

		m, err := runningMPV(socket)
		So(err, ShouldBeNil)
		defer m.listener.Stop()

		So(m.Attach("old"), ShouldBeNil)

		Convey("When the session is detached while its load is in flight", func() {
			loaded := make(chan error, 1)
			go func() {
				loaded <- m.Load("old", "https://example.com/a.m3u8", nil)
			}()

			time.Sleep(2 * time.Millisecond)
			m.Detach("old")
			<-loaded

			Convey("Then nothing is loaded after the stop", func() {
				commands := server.recorded()
				_, lastLoad, _ := lo.FindLastIndexOf(commands, func(c string) bool { return c == "loadfile" })
				_, lastStop, _ := lo.FindLastIndexOf(commands, func(c string) bool { return c == "stop" })

				So(lastStop, ShouldBeGreaterThan, lastLoad)
			})

			Convey("Then the next owner's load goes through", func() {
				So(m.Attach("new"), ShouldBeNil)
				So(m.Load("new", "https://example.com/b.m3u8", nil), ShouldBeNil)
				So(lo.LastOrEmpty(server.recorded()), ShouldEqual, "loadfile")
			})
		})

		Convey("When a detached owner loads", func() {
			m.Detach("old")

			Convey("Then it is refused and nothing is sent", func() {
				before := len(server.recorded())
				So(m.Load("old", "https://example.com/a.m3u8", nil), ShouldEqual, ErrDetached)
				So(server.recorded(), ShouldHaveLength, before)
			})
		})
	})
}

func TestRemoveStaleSockets(t *testing.T) {
	Convey("Given a directory with a live and a stale socket", t, func() {
		dir, err := os.MkdirTemp("", "hp")
		So(err, ShouldBeNil)
		defer os.RemoveAll(dir)

		live := filepath.Join(dir, "hlsplay-live.sock")
		server, err := newFakeServer(live, 0)
		So(err, ShouldBeNil)
		defer server.Close()

		stale := filepath.Join(dir, "hlsplay-stale.sock")
		crashed, err := net.Listen("unix", stale)
		So(err, ShouldBeNil)
		crashed.(*net.UnixListener).SetUnlinkOnClose(false)
		So(crashed.Close(), ShouldBeNil)

		other := filepath.Join(dir, "notes.txt")
		So(os.WriteFile(other, []byte("keep"), 0o600), ShouldBeNil)

		Convey("When cleaning up", func() {
			removed := RemoveStaleSockets(dir)

			Convey("Then only the stale socket is removed", func() {
				So(removed, ShouldEqual, 1)
				_, err := os.Stat(stale)
				So(os.IsNotExist(err), ShouldBeTrue)
				_, err = os.Stat(other)
				So(err, ShouldBeNil)
			})

			Convey("Then the running player still answers", func() {
				m := NewMPV(Options{})
				m.socketPath = live
				_, err := m.sendCommand("set_property", "pause", false)
				So(err, ShouldBeNil)
			})
		})
	})
}
