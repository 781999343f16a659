package sdk

import (
	"net"
	"strconv"
)

// Server is a directory entry as served by GET /api/servers.
type Server struct {
	Name string `json:"name"`
	Host string `json:"host"`
	User string `json:"user"`
	Port int    `json:"port"`
}

// Address returns host:port for display.
func (s Server) Address() string {
	if s.Port == 0 {
		return s.Host
	}
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// ServerReport is one server's result from the most recent completed run.
type ServerReport struct {
	ServerName   string  `json:"serverName"`
	ServerHost   string  `json:"serverHost"`
	IsOnline     bool    `json:"isOnline"`
	Error        string  `json:"error"`
	CacheCleared bool    `json:"cacheCleared"`
	CPUUsage     float64 `json:"cpuUsage"`
	MemTotalMB   int     `json:"memTotalMB"`
	MemUsedMB    int     `json:"memUsedMB"`
	MemFreeMB    int     `json:"memFreeMB"`
	SwapTotalMB  int     `json:"swapTotalMB"`
	SwapUsedMB   int     `json:"swapUsedMB"`
	TopProcesses string  `json:"topProcesses"`
	Timestamp    string  `json:"timestamp"`
}

// SwapFreeMB is derived from the swap totals and never negative.
func (r ServerReport) SwapFreeMB() int {
	if free := r.SwapTotalMB - r.SwapUsedMB; free > 0 {
		return free
	}
	return 0
}

// MemUsedPercent returns used/total memory as a percentage, 0 when total is unknown.
func (r ServerReport) MemUsedPercent() float64 {
	if r.MemTotalMB <= 0 {
		return 0
	}
	return float64(r.MemUsedMB) / float64(r.MemTotalMB) * 100
}

// SwapUsedPercent returns used/total swap as a percentage, 0 when no swap is configured.
func (r ServerReport) SwapUsedPercent() float64 {
	if r.SwapTotalMB <= 0 {
		return 0
	}
	return float64(r.SwapUsedMB) / float64(r.SwapTotalMB) * 100
}

// AllServers is the target sentinel understood by the backend as "every configured server".
const AllServers = "all"

// RunRequest is the outbound push-channel message that starts a run.
type RunRequest struct {
	Action  string   `json:"action"`
	Servers []string `json:"servers"`
}

// NewRunRequest builds a run request for the given server names.
// An empty list targets every server.
func NewRunRequest(servers []string) RunRequest {
	if len(servers) == 0 {
		servers = []string{AllServers}
	}
	return RunRequest{Action: "run", Servers: servers}
}
