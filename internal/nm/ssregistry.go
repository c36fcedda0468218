// Package nm implements the name server: storage-server membership and
// health tracking, the file and folder metadata index, the user registry,
// the access-request workflow, and client request routing between metadata
// operations (handled locally) and data operations (forwarded to the owning
// storage server).
package nm

import (
	"net"
	"sync"
	"time"

	"github.com/shraw06/docsplusplus/internal/fserrors"
	"github.com/shraw06/docsplusplus/internal/logger"
)

// heartbeatInterval is how often the health monitor sweeps the registry.
const heartbeatInterval = 5 * time.Second

// heartbeatTimeout is the max silence before an SS is marked inactive.
const heartbeatTimeout = 15 * time.Second

// registrationGrace is the window after (re)registration during which a
// missing heartbeat does not yet count against an SS.
const registrationGrace = 60 * time.Second

// SSRecord is one storage server's membership state.
type SSRecord struct {
	ID           int
	IP           string
	NMPort       int
	ClientPort   int
	Files        map[string]struct{}
	LastHeartbeat time.Time
	RegisteredAt time.Time
	Active       bool

	mu         sync.Mutex // serializes command-channel forwards to this SS
	commandConn net.Conn
	heartbeatConn net.Conn
}

// Endpoint returns the "ip:client_port" string clients dial for data ops.
func (r *SSRecord) Endpoint() string {
	return r.IP + ":" + itoa(r.ClientPort)
}

// Lock/Unlock serialize concurrent command forwards to this SS so one
// goroutine's reply is never consumed by another.
func (r *SSRecord) Lock()   { r.mu.Lock() }
func (r *SSRecord) Unlock() { r.mu.Unlock() }

// SSRegistry tracks every storage server known to the name server.
type SSRegistry struct {
	mu      sync.RWMutex
	servers map[int]*SSRecord
}

// NewSSRegistry returns an empty SSRegistry.
func NewSSRegistry() *SSRegistry {
	return &SSRegistry{servers: make(map[int]*SSRecord)}
}

// Register adds a fresh SS or reconnects an existing one. On reconnect, the
// prior command/heartbeat sockets are closed and the record's endpoint
// fields are refreshed. onFileSeen, when non-nil, is called once for each
// reported file; the registry itself does not touch the file index.
func (reg *SSRegistry) Register(id int, ip string, nmPort, clientPort int, files []string, onFileSeen func(file string, ssID int)) *SSRecord {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	rec, exists := reg.servers[id]
	if exists {
		if rec.commandConn != nil {
			rec.commandConn.Close()
		}
		if rec.heartbeatConn != nil {
			rec.heartbeatConn.Close()
		}
		logger.Info("storage server reconnecting", logger.SSID(int32(id)))
	} else {
		rec = &SSRecord{ID: id, Files: make(map[string]struct{})}
		reg.servers[id] = rec
	}

	rec.IP = ip
	rec.NMPort = nmPort
	rec.ClientPort = clientPort
	rec.RegisteredAt = time.Now()
	rec.LastHeartbeat = time.Now()
	rec.Active = true

	for _, f := range files {
		rec.Files[f] = struct{}{}
		if onFileSeen != nil {
			onFileSeen(f, id)
		}
	}

	return rec
}

// BindConns attaches the live command and heartbeat sockets to rec, used so
// a later reconnect can close the prior pair.
func (reg *SSRegistry) BindConns(id int, command, heartbeat net.Conn) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if rec, ok := reg.servers[id]; ok {
		rec.commandConn = command
		rec.heartbeatConn = heartbeat
	}
}

// AddFile records that a newly created file now lives on SS id, so later
// PickForCreate calls see an accurate load count.
func (reg *SSRegistry) AddFile(id int, file string) {
	reg.mu.RLock()
	rec, ok := reg.servers[id]
	reg.mu.RUnlock()
	if !ok {
		return
	}
	rec.mu.Lock()
	rec.Files[file] = struct{}{}
	rec.mu.Unlock()
}

// BindHeartbeatConn attaches the heartbeat socket for an SS that has
// already registered its command channel, without disturbing that
// existing command connection.
func (reg *SSRegistry) BindHeartbeatConn(id int, heartbeat net.Conn) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if rec, ok := reg.servers[id]; ok {
		rec.heartbeatConn = heartbeat
	}
}

// Heartbeat records a liveness ping from SS id.
func (reg *SSRegistry) Heartbeat(id int) error {
	reg.mu.RLock()
	rec, ok := reg.servers[id]
	reg.mu.RUnlock()
	if !ok {
		return fserrors.New(fserrors.CodeNotFound, "unknown storage server id")
	}
	rec.mu.Lock()
	rec.LastHeartbeat = time.Now()
	rec.mu.Unlock()
	return nil
}

// Get returns the SSRecord owning a given id.
func (reg *SSRegistry) Get(id int) (*SSRecord, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	rec, ok := reg.servers[id]
	return rec, ok
}

// All returns every known SS record, active or not, for admin/inventory
// views that need to show health rather than just the routable set.
func (reg *SSRegistry) All() []*SSRecord {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]*SSRecord, 0, len(reg.servers))
	for _, rec := range reg.servers {
		out = append(out, rec)
	}
	return out
}

// Active returns every currently-active SS record.
func (reg *SSRegistry) Active() []*SSRecord {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	var out []*SSRecord
	for _, rec := range reg.servers {
		if rec.Active {
			out = append(out, rec)
		}
	}
	return out
}

// PickForCreate returns the active SS with the fewest known files, the
// simplest placement policy that still spreads new files across the fleet
// rather than always choosing the first registrant.
func (reg *SSRegistry) PickForCreate() (*SSRecord, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	var best *SSRecord
	for _, rec := range reg.servers {
		if !rec.Active {
			continue
		}
		if best == nil || len(rec.Files) < len(best.Files) {
			best = rec
		}
	}
	return best, best != nil
}

// sweep marks any SS inactive whose heartbeat is overdue, outside its
// post-registration grace window, closing its heartbeat socket.
func (reg *SSRegistry) sweep(now time.Time) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for _, rec := range reg.servers {
		if !rec.Active {
			continue
		}
		if now.Sub(rec.RegisteredAt) < registrationGrace {
			continue
		}
		if now.Sub(rec.LastHeartbeat) > heartbeatTimeout {
			rec.Active = false
			if rec.heartbeatConn != nil {
				rec.heartbeatConn.Close()
			}
			logger.Warn("storage server marked inactive", logger.SSID(int32(rec.ID)))
		}
	}
}

// RunHealthMonitor blocks, sweeping the registry every heartbeatInterval
// until stop is closed.
func (reg *SSRegistry) RunHealthMonitor(stop <-chan struct{}) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			reg.sweep(now)
		}
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
