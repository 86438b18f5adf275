package player

import (
	"net"
	"path/filepath"

	"github.com/hlsplay/hlsplay/constant"
	"github.com/hlsplay/hlsplay/filesystem"
	"github.com/hlsplay/hlsplay/log"
	"github.com/spf13/afero"
)

// RemoveStaleSockets deletes the IPC sockets in dir left behind by crashed
// players. A socket that still accepts connections belongs to a running
// player and is kept.
func RemoveStaleSockets(dir string) (removed int) {
	paths, err := afero.Glob(filesystem.API(), filepath.Join(dir, constant.App+"-*.sock"))
	if err != nil {
		log.Warnf("list sockets: %v", err)
		return 0
	}

	for _, path := range paths {
		if conn, err := net.Dial("unix", path); err == nil {
			_ = conn.Close()
			continue
		}

		if err := filesystem.API().Remove(path); err != nil {
			log.Warnf("remove stale socket %s: %v", path, err)
			continue
		}
		removed++
	}

	return removed
}
