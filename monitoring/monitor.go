// Package monitoring serves a small HTTP API for watching and controlling a
// running A/B test.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/rs/xid"
	"github.com/sarchlab/lockstep/abtest"
	"github.com/sarchlab/lockstep/monitoring/web"
	"github.com/sarchlab/lockstep/sim/dual"
	"github.com/sarchlab/lockstep/sim/simulation"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// Controller is the loop the monitor talks to. A driver.Driver implements it.
type Controller interface {
	Submit(c abtest.Command) error
	Inspect(fn func(m *abtest.Mode)) error
}

// ProfileDuration is how long /api/profile samples the CPU.
var ProfileDuration = time.Second

// Monitor turns a session into a server that allows external monitoring and
// controlling.
type Monitor struct {
	ctrl       Controller
	portNumber int
	session    string
	server     *http.Server
}

// NewMonitor creates a new Monitor
func NewMonitor(ctrl Controller) *Monitor {
	return &Monitor{
		ctrl:    ctrl,
		session: xid.New().String(),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// Session returns the id reported by /api/status.
func (m *Monitor) Session() string {
	return m.session
}

// Handler returns the router of the monitor.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	fs := web.GetAssets()
	fServer := http.FileServer(fs)
	r.HandleFunc("/api/status", m.status).Methods(http.MethodGet)
	r.HandleFunc("/api/command/{name}", m.command).Methods(http.MethodPost)
	r.HandleFunc("/api/simulation/{slot}", m.simulation).
		Methods(http.MethodGet)
	r.HandleFunc("/api/field/{slot}/{path}", m.field).Methods(http.MethodGet)
	r.HandleFunc("/api/progress", m.listProgressBars).Methods(http.MethodGet)
	r.HandleFunc("/api/resource", m.listResources).Methods(http.MethodGet)
	r.HandleFunc("/api/profile", m.collectProfile).Methods(http.MethodGet)
	r.PathPrefix("/").Handler(fServer)

	return r
}

// listenAddress is the address the server binds. Port 0 picks a random port.
func (m *Monitor) listenAddress() string {
	if m.portNumber >= 1000 {
		return ":" + strconv.Itoa(m.portNumber)
	}

	return ":0"
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() string {
	listener, err := net.Listen("tcp", m.listenAddress())
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	m.server = &http.Server{
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		err := m.server.Serve(listener)
		if !errors.Is(err, http.ErrServerClosed) {
			dieOnErr(err)
		}
	}()

	return url
}

// Shutdown stops a started server.
func (m *Monitor) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

type statusRsp struct {
	Session string `json:"session"`
	abtest.Status
}

func (m *Monitor) status(w http.ResponseWriter, _ *http.Request) {
	rsp := statusRsp{Session: m.session}

	err := m.ctrl.Inspect(func(mode *abtest.Mode) {
		rsp.Status = mode.Status()
	})
	if err != nil {
		httpError(w, http.StatusServiceUnavailable, err)
		return
	}

	writeJSON(w, rsp)
}

func (m *Monitor) command(w http.ResponseWriter, r *http.Request) {
	c, err := abtest.ParseCommand(mux.Vars(r)["name"])
	if err != nil {
		httpError(w, http.StatusNotFound, err)
		return
	}

	err = m.ctrl.Submit(c)
	if err != nil {
		httpError(w, http.StatusServiceUnavailable, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// withHandle runs fn on the loop with the handle in the requested slot.
// It reports false after writing an error response.
func (m *Monitor) withHandle(
	w http.ResponseWriter,
	r *http.Request,
	fn func(h *simulation.Handle),
) bool {
	slot, err := dual.ParseSlot(mux.Vars(r)["slot"])
	if err != nil {
		httpError(w, http.StatusNotFound, err)
		return false
	}

	found := false

	err = m.ctrl.Inspect(func(mode *abtest.Mode) {
		pair := mode.Pair()
		if pair == nil {
			return
		}

		h := pair.Handle(slot)
		if h == nil {
			return
		}

		found = true
		fn(h)
	})

	switch {
	case err != nil:
		httpError(w, http.StatusServiceUnavailable, err)
		return false
	case !found:
		httpError(w, http.StatusConflict,
			fmt.Errorf("no %s simulation", slot))
		return false
	}

	return true
}

func (m *Monitor) simulation(w http.ResponseWriter, r *http.Request) {
	buf := bytes.NewBuffer(nil)

	var err error

	ok := m.withHandle(w, r, func(h *simulation.Handle) {
		serializer := goseth.NewSerializer()
		serializer.SetRoot(h.Simulation())
		serializer.SetMaxDepth(1)
		err = serializer.Serialize(buf)
	})
	if !ok {
		return
	}

	dieOnErr(err)

	_, err = w.Write(buf.Bytes())
	dieOnErr(err)
}

func (m *Monitor) field(w http.ResponseWriter, r *http.Request) {
	fields := strings.Split(mux.Vars(r)["path"], ".")
	buf := bytes.NewBuffer(nil)

	var err error

	ok := m.withHandle(w, r, func(h *simulation.Handle) {
		serializer := goseth.NewSerializer()
		serializer.SetRoot(h.Simulation())
		serializer.SetMaxDepth(1)

		err = serializer.SetEntryPoint(fields)
		if err != nil {
			return
		}

		err = serializer.Serialize(buf)
	})
	if !ok {
		return
	}

	if err != nil {
		httpError(w, http.StatusBadRequest, err)
		return
	}

	_, err = w.Write(buf.Bytes())
	dieOnErr(err)
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	var bars []*ProgressBar

	err := m.ctrl.Inspect(func(mode *abtest.Mode) {
		bars = progressBars(mode.Pair())
	})
	if err != nil {
		httpError(w, http.StatusServiceUnavailable, err)
		return
	}

	if bars == nil {
		bars = []*ProgressBar{}
	}

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	writeJSON(w, rsp)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		httpError(w, http.StatusConflict, err)
		return
	}

	time.Sleep(ProfileDuration)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func httpError(w http.ResponseWriter, code int, err error) {
	w.WriteHeader(code)
	fmt.Fprintf(w, "Error: %s", err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
