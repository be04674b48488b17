package mic

import (
	"sync"
	"time"
)

// ResourceMonitor tracks running recorder processes and launch outcomes
type ResourceMonitor struct {
	mu              sync.RWMutex
	activeProcesses map[int]time.Time // PID -> start time
	totalLaunches   int64
	failedLaunches  int64
	exits           int64
}

var (
	monitorInstance *ResourceMonitor
	monitorOnce     sync.Once
)

// GetMonitor returns the process-wide resource monitor used by default
func GetMonitor() *ResourceMonitor {
	monitorOnce.Do(func() {
		monitorInstance = NewResourceMonitor()
	})
	return monitorInstance
}

// NewResourceMonitor creates an empty monitor
func NewResourceMonitor() *ResourceMonitor {
	return &ResourceMonitor{
		activeProcesses: make(map[int]time.Time),
	}
}

// TrackProcess registers a newly launched recorder
func (m *ResourceMonitor) TrackProcess(pid int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activeProcesses[pid] = timeNow()
	m.totalLaunches++
}

// UntrackProcess removes a recorder that has exited
func (m *ResourceMonitor) UntrackProcess(pid int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.activeProcesses[pid]; ok {
		delete(m.activeProcesses, pid)
		m.exits++
	}
}

// RecordFailure counts a recorder that could not be launched
func (m *ResourceMonitor) RecordFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalLaunches++
	m.failedLaunches++
}

// ActiveProcesses returns the number of running recorders
func (m *ResourceMonitor) ActiveProcesses() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.activeProcesses)
}

// TotalLaunches returns the number of launch attempts
func (m *ResourceMonitor) TotalLaunches() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totalLaunches
}

// FailedLaunches returns the number of failed launch attempts
func (m *ResourceMonitor) FailedLaunches() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.failedLaunches
}

// SuccessRate returns the launch success rate as a percentage
func (m *ResourceMonitor) SuccessRate() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.successRateLocked()
}

func (m *ResourceMonitor) successRateLocked() float64 {
	if m.totalLaunches == 0 {
		return 100.0
	}
	successful := m.totalLaunches - m.failedLaunches
	return float64(successful) / float64(m.totalLaunches) * 100.0
}

// OldestProcess returns the age of the longest running recorder
func (m *ResourceMonitor) OldestProcess() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.oldestLocked()
}

func (m *ResourceMonitor) oldestLocked() time.Duration {
	if len(m.activeProcesses) == 0 {
		return 0
	}

	oldest := timeNow()
	for _, startTime := range m.activeProcesses {
		if startTime.Before(oldest) {
			oldest = startTime
		}
	}
	return timeNow().Sub(oldest)
}

// MonitorStats is a snapshot of the monitor counters
type MonitorStats struct {
	ActiveProcesses  int
	TotalLaunches    int64
	FailedLaunches   int64
	Exits            int64
	SuccessRate      float64
	OldestProcessAge time.Duration
}

// GetStats returns current resource monitoring statistics
func (m *ResourceMonitor) GetStats() MonitorStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MonitorStats{
		ActiveProcesses:  len(m.activeProcesses),
		TotalLaunches:    m.totalLaunches,
		FailedLaunches:   m.failedLaunches,
		Exits:            m.exits,
		SuccessRate:      m.successRateLocked(),
		OldestProcessAge: m.oldestLocked(),
	}
}

// Reset clears all monitoring statistics
func (m *ResourceMonitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.activeProcesses = make(map[int]time.Time)
	m.totalLaunches = 0
	m.failedLaunches = 0
	m.exits = 0
}

// timeNow is a variable for testing
var timeNow = time.Now
