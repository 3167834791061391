package sites

import (
	"fmt"
	"time"

	"sitecompare/pkg/types"
)

// Label renders the occupancy counter, e.g. "3 of 10".
func Label(occupied int) string { return fmt.Sprintf("%d of %d", occupied, MaxSites) }

// Status builds the manager part of the /status response.
func (m *Manager) Status() types.StatusResponse {
	m.mu.Lock()
	sites := make([]*Site, 0, len(m.sites))
	for _, s := range m.sites {
		sites = append(sites, s)
	}
	occupied := m.occupied
	m.mu.Unlock()

	resp := types.StatusResponse{
		Occupied:       occupied,
		Max:            MaxSites,
		CanAcceptMore:  occupied < MaxSites,
		Label:          Label(occupied),
		UptimeSeconds:  int64(time.Since(m.startTime).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
	}
	for _, s := range sites {
		switch s.State() {
		case StatePending:
			resp.Pending++
		case StateError:
			resp.Failed++
		}
	}
	return resp
}
